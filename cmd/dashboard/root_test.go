package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"notesboard/cmd/internal/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sign-in", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(contract.SignInResponse{Success: true, Token: "tok", Username: "alice"})
	})
	mux.HandleFunc("GET /api/get-notes", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(contract.MessageResponse{Message: "Not authenticated"})
			return
		}
		_ = json.NewEncoder(w).Encode(contract.NotesResponse{Success: true, Notes: []*contract.NoteResponse{
			{ID: "n1", Title: "Groceries", Content: "milk", CreatedAt: "2024-05-01T12:00:00Z"},
		}})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCLI_LoginThenList(t *testing.T) {
	srv := newServer(t)
	sessionPath := filepath.Join(t.TempDir(), "session.json")
	common := []string{"--server", srv.URL, "--session", sessionPath}

	_, err := run(t, append([]string{"notes", "list"}, common...)...)
	assert.ErrorIs(t, err, errNoSession)

	out, err := run(t, append([]string{"login", "alice", "Secret123"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as alice")

	sess, err := loadSession(sessionPath)
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.Token)

	out, err = run(t, append([]string{"notes", "list"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "n1")
	assert.Contains(t, out, "Groceries")

	out, err = run(t, append([]string{"link"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, srv.URL+"/u/alice")
}
