package handler

import (
	"context"
	"net/http"

	"notesboard/cmd/internal/contract"
	"notesboard/cmd/internal/infrastructure/aws/websocket"
	"notesboard/cmd/internal/utils"
	"notesboard/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type WebSocketService interface {
	RegisterConnection(ctx context.Context, userID int64, connID string, exp int64) apierror.ErrorResponse
	RemoveConnection(ctx context.Context, connID string)
	HandleMessage(ctx context.Context, connID string, msg *contract.IncomingSocketMessage) apierror.ErrorResponse
}

// DefaultWSRoute serves the HTTP integrations of the API Gateway websocket routes.
type DefaultWSRoute struct {
	WSService WebSocketService
	Sessions  *utils.SessionTokens
}

func NewWSDefault(wsService WebSocketService, sessions *utils.SessionTokens) *DefaultWSRoute {
	return &DefaultWSRoute{WSService: wsService, Sessions: sessions}
}

func (h *DefaultWSRoute) HandleConnect(c echo.Context) error {
	user, cerr := utils.SessionUser(c)
	if cerr != nil {
		return c.JSON(cerr.Code(), cerr)
	}

	connID := c.Request().Header.Get(websocket.HeaderConnectionID)
	if connID == "" {
		return c.JSON(http.StatusBadRequest, apierror.MissingConnIDError)
	}

	token, err := h.Sessions.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
	}

	if apierr := h.WSService.RegisterConnection(c.Request().Context(), user.ID, connID, token.Exp); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusOK)
}

func (h *DefaultWSRoute) HandleDisconnect(c echo.Context) error {
	connID := c.Request().Header.Get(websocket.HeaderConnectionID)
	if connID != "" {
		h.WSService.RemoveConnection(c.Request().Context(), connID)
	}
	return c.NoContent(http.StatusOK)
}

func (h *DefaultWSRoute) HandleMessage(c echo.Context) error {
	var msg contract.IncomingSocketMessage
	if err := c.Bind(&msg); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	connID := c.Request().Header.Get(websocket.HeaderConnectionID)
	if apierr := h.WSService.HandleMessage(c.Request().Context(), connID, &msg); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusOK)
}
