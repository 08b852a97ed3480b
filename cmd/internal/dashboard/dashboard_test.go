package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"notesboard/cmd/internal/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "token-123"

// fakeAPI is a tiny in-memory stand-in for the notes server.
type fakeAPI struct {
	mu           sync.Mutex
	notes        []*contract.NoteResponse
	nextID       int
	deleteStatus int
	getCalls     int
}

func newFakeAPI(t *testing.T) (*fakeAPI, *Client) {
	t.Helper()
	api := &fakeAPI{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sign-in", api.signIn)
	mux.HandleFunc("GET /api/get-notes", api.authed(api.getNotes))
	mux.HandleFunc("POST /api/post-note", api.authed(api.postNote))
	mux.HandleFunc("DELETE /api/delete-note/{id}", api.authed(api.deleteNote))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return api, NewClient(srv.URL+"/", 0)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (f *fakeAPI) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			writeJSON(w, http.StatusUnauthorized, contract.MessageResponse{Message: "Not authenticated"})
			return
		}
		next(w, r)
	}
}

func (f *fakeAPI) signIn(w http.ResponseWriter, r *http.Request) {
	var req contract.SignInRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Password != "Secret123" {
		writeJSON(w, http.StatusUnauthorized, contract.MessageResponse{Message: "Incorrect username or password"})
		return
	}
	writeJSON(w, http.StatusOK, contract.SignInResponse{Success: true, Token: testToken, Username: req.Identifier})
}

func (f *fakeAPI) getNotes(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	writeJSON(w, http.StatusOK, contract.NotesResponse{Success: true, Notes: f.notes})
}

func (f *fakeAPI) postNote(w http.ResponseWriter, r *http.Request) {
	var req contract.PostNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, contract.MessageResponse{Message: "Malformed JSON body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.notes = append(f.notes, &contract.NoteResponse{ID: "n" + strconv.Itoa(f.nextID), Title: req.Title, Content: req.Content})
	writeJSON(w, http.StatusCreated, contract.NewMessage("Note saved successfully"))
}

func (f *fakeAPI) deleteNote(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteStatus != 0 {
		writeJSON(w, f.deleteStatus, contract.MessageResponse{Message: "boom"})
		return
	}

	id := r.PathValue("id")
	for i, n := range f.notes {
		if n.ID == id {
			f.notes = append(f.notes[:i], f.notes[i+1:]...)
			writeJSON(w, http.StatusOK, contract.NewMessage("Note deleted"))
			return
		}
	}
	writeJSON(w, http.StatusNotFound, contract.MessageResponse{Message: "Note not found or already deleted"})
}

func (f *fakeAPI) seed(titles ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, title := range titles {
		f.nextID++
		f.notes = append(f.notes, &contract.NoteResponse{ID: "n" + strconv.Itoa(f.nextID), Title: title, Content: "body"})
	}
}

func signedIn(t *testing.T) (*fakeAPI, *Client) {
	t.Helper()
	api, client := newFakeAPI(t)
	_, err := client.SignIn(context.Background(), &contract.SignInRequest{Identifier: "alice", Password: "Secret123"})
	require.NoError(t, err)
	return api, client
}

type noticeLog struct {
	mu      sync.Mutex
	notices []Notice
}

func (n *noticeLog) add(notice Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *noticeLog) last() Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notices) == 0 {
		return Notice{}
	}
	return n.notices[len(n.notices)-1]
}

func titles(notes []contract.NoteResponse) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Title
	}
	return out
}

func TestClient_SignInStoresToken(t *testing.T) {
	_, client := newFakeAPI(t)
	ctx := context.Background()

	_, err := client.GetNotes(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = client.SignIn(ctx, &contract.SignInRequest{Identifier: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, client.Token())

	_, err = client.SignIn(ctx, &contract.SignInRequest{Identifier: "alice", Password: "Secret123"})
	require.NoError(t, err)
	assert.Equal(t, testToken, client.Token())

	notes, err := client.GetNotes(ctx)
	require.NoError(t, err)
	assert.NotNil(t, notes)
	assert.Empty(t, notes)
}

func TestDashboard_LoadAndDelete(t *testing.T) {
	api, client := signedIn(t)
	api.seed("first", "second", "third")

	notices := &noticeLog{}
	d := New(client, "alice", notices.add)
	require.NoError(t, d.Load(context.Background()))
	assert.Equal(t, []string{"first", "second", "third"}, titles(d.Visible()))

	require.NoError(t, d.Delete(context.Background(), "n2"))
	assert.Equal(t, []string{"first", "third"}, titles(d.Visible()))
	assert.Equal(t, NoticeSuccess, notices.last().Level)

	_, known := d.State("n2")
	assert.False(t, known)
	assert.ErrorIs(t, d.Delete(context.Background(), "n2"), ErrUnknownNote)
}

func TestDashboard_DeleteFailureRollsBack(t *testing.T) {
	api, client := signedIn(t)
	api.seed("keep me")
	api.deleteStatus = http.StatusInternalServerError

	notices := &noticeLog{}
	d := New(client, "alice", notices.add)
	require.NoError(t, d.Load(context.Background()))

	err := d.Delete(context.Background(), "n1")
	assert.ErrorIs(t, err, ErrServer)
	assert.Equal(t, []string{"keep me"}, titles(d.Visible()))
	assert.Equal(t, Notice{Level: NoticeError, Message: "Failed to delete note"}, notices.last())

	state, known := d.State("n1")
	require.True(t, known)
	assert.Equal(t, StateSynced, state)
}

func TestDashboard_DeleteOfVanishedNoteDropsIt(t *testing.T) {
	api, client := signedIn(t)
	api.seed("stale")

	d := New(client, "alice", nil)
	require.NoError(t, d.Load(context.Background()))

	// Removed from another device in the meantime.
	api.mu.Lock()
	api.notes = nil
	api.mu.Unlock()

	err := d.Delete(context.Background(), "n1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, d.Visible())
}

type blockingAPI struct {
	NotesAPI
	release chan error
	started chan struct{}
}

func (b *blockingAPI) DeleteNote(context.Context, string) error {
	close(b.started)
	return <-b.release
}

func TestDashboard_DeleteIsPendingWhileInFlight(t *testing.T) {
	api, client := signedIn(t)
	api.seed("slow")

	blocking := &blockingAPI{NotesAPI: client, release: make(chan error), started: make(chan struct{})}
	d := New(blocking, "alice", nil)
	require.NoError(t, d.Load(context.Background()))

	done := make(chan error, 1)
	go func() { done <- d.Delete(context.Background(), "n1") }()
	<-blocking.started

	assert.Empty(t, d.Visible())
	state, known := d.State("n1")
	require.True(t, known)
	assert.Equal(t, StatePendingDelete, state)
	assert.ErrorIs(t, d.Delete(context.Background(), "n1"), ErrDeletePending)

	blocking.release <- nil
	require.NoError(t, <-done)
	assert.Empty(t, d.Visible())
}

func TestDashboard_ReloadKeepsPendingDelete(t *testing.T) {
	api, client := signedIn(t)
	api.seed("slow", "other")

	blocking := &blockingAPI{NotesAPI: client, release: make(chan error), started: make(chan struct{})}
	d := New(blocking, "alice", nil)
	require.NoError(t, d.Load(context.Background()))

	done := make(chan error, 1)
	go func() { done <- d.Delete(context.Background(), "n1") }()
	<-blocking.started

	require.NoError(t, d.Load(context.Background()))
	state, known := d.State("n1")
	require.True(t, known)
	assert.Equal(t, StatePendingDelete, state)
	assert.Equal(t, []string{"other"}, titles(d.Visible()))

	blocking.release <- ErrServer
	assert.ErrorIs(t, <-done, ErrServer)

	state, known = d.State("n1")
	require.True(t, known)
	assert.Equal(t, StateSynced, state)
	assert.Equal(t, []string{"slow", "other"}, titles(d.Visible()))
}

func TestDashboard_AddValidatesThenRefreshes(t *testing.T) {
	api, client := signedIn(t)
	d := New(client, "alice", nil)
	ctx := context.Background()

	err := d.Add(ctx, "x", "content")
	assert.ErrorIs(t, err, ErrInvalidNote)
	err = d.Add(ctx, "title", strings.Repeat("c", 10001))
	assert.ErrorIs(t, err, ErrInvalidNote)
	assert.Zero(t, api.getCalls)

	require.NoError(t, d.Add(ctx, "  Groceries ", "milk, eggs"))
	assert.Equal(t, []string{"Groceries"}, titles(d.Visible()))
	assert.Equal(t, 1, api.getCalls)
}

func TestDashboard_AddRequiresUsername(t *testing.T) {
	_, client := signedIn(t)
	d := New(client, "", nil)

	assert.ErrorIs(t, d.Add(context.Background(), "title", "content"), ErrNotSignedIn)
}

func TestProfileURL(t *testing.T) {
	d := New(nil, "alice", nil)
	assert.Equal(t, "https://notes.example.com/u/alice", d.ProfileURL("https://notes.example.com/"))
	assert.Equal(t, "http://localhost:3000/u/bob", ProfileURL("http://localhost:3000", "bob"))
}
