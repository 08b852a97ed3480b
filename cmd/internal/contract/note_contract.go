package contract

type PostNoteRequest struct {
	Username string `json:"username" validate:"required,min=2,max=20,username"`
	Title    string `json:"title" validate:"required,min=2,max=30"`
	Content  string `json:"content" validate:"required,min=2,max=10000"`
}

type NoteResponse struct {
	ID        string `json:"_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

type NotesResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Notes   []*NoteResponse `json:"notes"`
}
