package handler

import (
	"context"
	"net/http"
	"strings"

	"notesboard/cmd/internal/contract"
	"notesboard/cmd/internal/domain/entity"
	"notesboard/cmd/internal/utils"
	"notesboard/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

// NoteService receives the authenticated user so ownership is decided
// without hitting the DB again.
type NoteService interface {
	Append(ctx context.Context, actor *entity.User, req *contract.PostNoteRequest) (*contract.MessageResponse, apierror.ErrorResponse)
	List(ctx context.Context, actor *entity.User) (*contract.NotesResponse, apierror.ErrorResponse)
	Delete(ctx context.Context, actor *entity.User, noteID string) (*contract.MessageResponse, apierror.ErrorResponse)
}

type DefaultNoteRoute struct {
	NoteService NoteService
}

func NewNoteDefault(noteService NoteService) *DefaultNoteRoute {
	return &DefaultNoteRoute{NoteService: noteService}
}

func (n *DefaultNoteRoute) PostNote(c echo.Context) error {
	user, cerr := utils.SessionUser(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	var req contract.PostNoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := n.NoteService.Append(c.Request().Context(), user, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (n *DefaultNoteRoute) GetNotes(c echo.Context) error {
	user, cerr := utils.SessionUser(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	resp, apierr := n.NoteService.List(c.Request().Context(), user)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (n *DefaultNoteRoute) DeleteNote(c echo.Context) error {
	user, cerr := utils.SessionUser(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	noteID := strings.TrimSpace(c.Param("noteid"))
	if noteID == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("noteid"))
	}

	resp, apierr := n.NoteService.Delete(c.Request().Context(), user, noteID)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}
