package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"notesboard/cmd/internal/contract"
	"notesboard/cmd/internal/utils/validators"

	"github.com/go-playground/validator/v10"
)

type NoteState int

const (
	StateSynced NoteState = iota
	StatePendingDelete
)

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

type Notice struct {
	Level   NoticeLevel
	Message string
}

// NotesAPI is the part of the HTTP API the dashboard drives.
type NotesAPI interface {
	GetNotes(ctx context.Context) ([]*contract.NoteResponse, error)
	PostNote(ctx context.Context, req *contract.PostNoteRequest) error
	DeleteNote(ctx context.Context, noteID string) error
}

type entry struct {
	note  contract.NoteResponse
	state NoteState
}

// Dashboard keeps the signed-in user's notes in server order and reconciles
// local changes with the API. The lock is never held across a network call.
type Dashboard struct {
	api      NotesAPI
	username string
	validate *validator.Validate
	notify   func(Notice)

	mu    sync.Mutex
	notes []*entry
}

// New builds a dashboard for 'username'. 'notify' receives user facing notices and may be nil.
func New(api NotesAPI, username string, notify func(Notice)) *Dashboard {
	if notify == nil {
		notify = func(Notice) {}
	}
	return &Dashboard{
		api:      api,
		username: username,
		validate: validators.New(),
		notify:   notify,
	}
}

// Load replaces the local collection with the server's.
func (d *Dashboard) Load(ctx context.Context) error {
	notes, err := d.api.GetNotes(ctx)
	if err != nil {
		d.notify(Notice{Level: NoticeError, Message: "Failed to fetch notes"})
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// Deletions still in flight stay pending across a reload.
	entries := make([]*entry, len(notes))
	for i, note := range notes {
		state := StateSynced
		if old := d.find(note.ID); old != nil && old.state == StatePendingDelete {
			state = StatePendingDelete
		}
		entries[i] = &entry{note: *note, state: state}
	}
	d.notes = entries
	return nil
}

// Visible lists the notes the user should see, pending deletions excluded.
func (d *Dashboard) Visible() []contract.NoteResponse {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]contract.NoteResponse, 0, len(d.notes))
	for _, e := range d.notes {
		if e.state == StateSynced {
			out = append(out, e.note)
		}
	}
	return out
}

// State reports the local state of a note; false when the note is unknown.
func (d *Dashboard) State(noteID string) (NoteState, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e := d.find(noteID); e != nil {
		return e.state, true
	}
	return 0, false
}

// Delete hides the note right away and asks the server to remove it.
// A failed request puts the note back; a note the server no longer has is dropped.
func (d *Dashboard) Delete(ctx context.Context, noteID string) error {
	d.mu.Lock()
	e := d.find(noteID)
	switch {
	case e == nil:
		d.mu.Unlock()
		return ErrUnknownNote
	case e.state == StatePendingDelete:
		d.mu.Unlock()
		return ErrDeletePending
	}
	e.state = StatePendingDelete
	d.mu.Unlock()

	err := d.api.DeleteNote(ctx, noteID)

	var notice Notice
	d.mu.Lock()
	switch {
	case err == nil:
		d.remove(noteID)
		notice = Notice{Level: NoticeSuccess, Message: "Note deleted"}
	case errors.Is(err, ErrNotFound):
		d.remove(noteID)
		notice = Notice{Level: NoticeError, Message: "Note was already deleted"}
	default:
		// The collection may have been reloaded meanwhile.
		if cur := d.find(noteID); cur != nil {
			cur.state = StateSynced
		}
		notice = Notice{Level: NoticeError, Message: "Failed to delete note"}
	}
	d.mu.Unlock()

	d.notify(notice)
	return err
}

// Add validates locally with the server's bounds, posts the note and reloads the collection.
func (d *Dashboard) Add(ctx context.Context, title, content string) error {
	if d.username == "" {
		return ErrNotSignedIn
	}

	req := &contract.PostNoteRequest{
		Username: d.username,
		Title:    strings.TrimSpace(title),
		Content:  strings.TrimSpace(content),
	}
	if err := d.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidNote, err)
	}

	if err := d.api.PostNote(ctx, req); err != nil {
		d.notify(Notice{Level: NoticeError, Message: "Failed to save note"})
		return err
	}

	d.notify(Notice{Level: NoticeSuccess, Message: "Note saved successfully"})
	return d.Load(ctx)
}

// ProfileURL is the shareable link of the dashboard's owner.
func (d *Dashboard) ProfileURL(base string) string {
	return ProfileURL(base, d.username)
}

func ProfileURL(base, username string) string {
	return strings.TrimRight(base, "/") + "/u/" + url.PathEscape(username)
}

func (d *Dashboard) find(noteID string) *entry {
	for _, e := range d.notes {
		if e.note.ID == noteID {
			return e
		}
	}
	return nil
}

func (d *Dashboard) remove(noteID string) {
	for i, e := range d.notes {
		if e.note.ID == noteID {
			d.notes = append(d.notes[:i], d.notes[i+1:]...)
			return
		}
	}
}
