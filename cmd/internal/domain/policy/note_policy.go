package policy

import (
	"notesboard/cmd/internal/domain/entity"
	"notesboard/cmd/internal/utils/apierror"
)

// NotePolicy encapsulates all business rules for note manipulation.
// It returns apierror.ErrorResponse directly for seamless integration with handlers.
type NotePolicy struct{}

func NewNotePolicy() *NotePolicy {
	return &NotePolicy{}
}

// CanAppend checks that 'actor' is posting into its own collection, owned by 'owner'.
func (p *NotePolicy) CanAppend(actor, owner *entity.User) apierror.ErrorResponse {
	if actor == nil {
		return apierror.UnauthorizedError
	}

	if owner == nil || actor.ID != owner.ID {
		return apierror.NoteOwnershipError
	}
	return nil
}

// CanAccess checks that a collection operation has an authenticated caller.
// Collections are always scoped to the caller, so no other rule applies.
func (p *NotePolicy) CanAccess(actor *entity.User) apierror.ErrorResponse {
	if actor == nil {
		return apierror.UnauthorizedError
	}
	return nil
}
