package service

import (
	"context"

	"notesboard/cmd/internal/contract"
	"notesboard/cmd/internal/domain/entity"
	"notesboard/cmd/internal/domain/events"
	"notesboard/cmd/internal/domain/policy"
	"notesboard/cmd/internal/infrastructure/metrics"
	"notesboard/cmd/internal/utils"
	"notesboard/cmd/internal/utils/apierror"
	"notesboard/cmd/internal/utils/uid"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type NoteRepository interface {
	FindByOwner(ctx context.Context, ownerID int64) ([]*entity.Note, error)
	Append(ctx context.Context, note *entity.Note) error
	DeleteOwned(ctx context.Context, ownerID int64, noteID string) (bool, error)
}

type OwnerRepository interface {
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
}

// EventDispatcher pushes live updates to the sockets of a single user.
type EventDispatcher interface {
	Dispatch(ctx context.Context, userID int64, evt events.SocketEvent)
}

type DefaultNoteService struct {
	NoteRepo  NoteRepository
	OwnerRepo OwnerRepository
	Events    EventDispatcher
	Policy    *policy.NotePolicy
	Validate  *validator.Validate
}

// NewNoteService wires the note collection handler. 'dispatcher' may be nil
// when no websocket gateway is configured.
func NewNoteService(
	noteRepo NoteRepository,
	ownerRepo OwnerRepository,
	dispatcher EventDispatcher,
	notePolicy *policy.NotePolicy,
	validate *validator.Validate,
) *DefaultNoteService {
	return &DefaultNoteService{
		NoteRepo:  noteRepo,
		OwnerRepo: ownerRepo,
		Events:    dispatcher,
		Policy:    notePolicy,
		Validate:  validate,
	}
}

// Append adds a note to the collection of 'req.Username'. The request is
// validated before anything is read from the store.
func (n *DefaultNoteService) Append(ctx context.Context, actor *entity.User, req *contract.PostNoteRequest) (*contract.MessageResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := n.Validate.Struct(req); err != nil {
		return nil, apierror.Validation(err)
	}

	if apierr := n.Policy.CanAccess(actor); apierr != nil {
		return nil, apierr
	}

	owner, err := n.OwnerRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		log.Errorf("failed to fetch note owner (%s): %v", req.Username, err)
		return nil, apierror.InternalServerError
	}

	// An unknown collection is reported before ownership is checked
	if owner == nil {
		return nil, apierror.UserNotFoundError
	}

	if apierr := n.Policy.CanAppend(actor, owner); apierr != nil {
		return nil, apierr
	}

	id, err := uid.NoteID()
	if err != nil {
		log.Errorf("failed to generate note id: %v", err)
		return nil, apierror.InternalServerError
	}

	note := &entity.Note{
		ID:        id,
		OwnerID:   owner.ID,
		Title:     req.Title,
		Content:   req.Content,
		CreatedAt: utils.NowUTC(),
	}

	if err = n.NoteRepo.Append(ctx, note); err != nil {
		log.Errorf("failed to append note to user %d: %v", owner.ID, err)
		return nil, apierror.InternalServerError
	}

	metrics.NotesAppended.Inc()
	n.dispatch(owner.ID, &events.NoteCreated{NoteResponse: toNoteResponse(note)})
	return contract.NewMessage("Note saved successfully"), nil
}

// List returns the caller's whole collection in stored order.
func (n *DefaultNoteService) List(ctx context.Context, actor *entity.User) (*contract.NotesResponse, apierror.ErrorResponse) {
	if apierr := n.Policy.CanAccess(actor); apierr != nil {
		return nil, apierr
	}

	notes, err := n.NoteRepo.FindByOwner(ctx, actor.ID)
	if err != nil {
		log.Errorf("failed to fetch notes of user %d: %v", actor.ID, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*contract.NoteResponse, len(notes))
	for i, note := range notes {
		resp[i] = toNoteResponse(note)
	}

	return &contract.NotesResponse{
		Success: true,
		Message: "Notes fetched successfully",
		Notes:   resp,
	}, nil
}

// Delete removes 'noteID' from the caller's own collection only.
func (n *DefaultNoteService) Delete(ctx context.Context, actor *entity.User, noteID string) (*contract.MessageResponse, apierror.ErrorResponse) {
	if apierr := n.Policy.CanAccess(actor); apierr != nil {
		return nil, apierr
	}

	deleted, err := n.NoteRepo.DeleteOwned(ctx, actor.ID, noteID)
	if err != nil {
		log.Errorf("failed to delete note %s of user %d: %v", noteID, actor.ID, err)
		return nil, apierror.InternalServerError
	}

	if !deleted {
		return nil, apierror.NoteNotFoundError
	}

	metrics.NotesDeleted.Inc()
	n.dispatch(actor.ID, &events.NoteDeleted{NoteID: noteID})
	return contract.NewMessage("Note deleted"), nil
}

func (n *DefaultNoteService) dispatch(userID int64, evt events.SocketEvent) {
	if n.Events == nil {
		return
	}
	go n.Events.Dispatch(context.Background(), userID, evt)
}

func toNoteResponse(note *entity.Note) *contract.NoteResponse {
	return &contract.NoteResponse{
		ID:        note.ID,
		Title:     note.Title,
		Content:   note.Content,
		CreatedAt: utils.FormatEpoch(note.CreatedAt),
	}
}
