package contract

// MessageResponse is the envelope of every non-error response.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewMessage(msg string) *MessageResponse {
	return &MessageResponse{Success: true, Message: msg}
}

type SignUpRequest struct {
	Username string `json:"username" validate:"required,min=2,max=20,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" sanitize:"-" validate:"required,min=8,max=64,hasupper,haslower,hasdigit,nospaces"`
}

type VerifyCodeRequest struct {
	Username string `json:"username" validate:"required,min=2,max=20,username"`
	Code     string `json:"code" validate:"required,len=6,numeric"`
}

type SignInRequest struct {
	// Identifier is either the username or the email of the account.
	Identifier string `json:"identifier" validate:"required,max=254"`
	Password   string `json:"password" sanitize:"-" validate:"required,max=64"`
}

type UsernameQuery struct {
	Username string `query:"username" validate:"required,min=2,max=20,username"`
}

type SignInResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Token    string `json:"token"`
	Username string `json:"username"`
	Expires  string `json:"expires_at"`
}

// VerificationMessage is what gets handed to the notifier after a sign-up.
// Username is the stored account name, the one verify-code expects.
type VerificationMessage struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Code      string `json:"code"`
	ExpiresAt string `json:"expires_at"`
}
