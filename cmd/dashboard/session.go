package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var errNoSession = errors.New("not logged in, run 'dashboard login' first")

type session struct {
	Username string `json:"username"`
	Token    string `json:"token"`
	Server   string `json:"server"`
}

func loadSession(path string) (*session, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, errNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var sess session
	if err = json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("corrupted session file %s: %w", path, err)
	}

	if sess.Token == "" {
		return nil, errNoSession
	}
	return &sess, nil
}

// saveSession writes the token readable by the current user only.
func saveSession(path string, sess *session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	raw, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}
