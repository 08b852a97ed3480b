package service

import (
	"context"
	"errors"

	"notesboard/cmd/internal/contract"
	"notesboard/cmd/internal/domain/entity"
	"notesboard/cmd/internal/domain/events"
	"notesboard/cmd/internal/infrastructure/aws/websocket"
	"notesboard/cmd/internal/utils"
	"notesboard/cmd/internal/utils/apierror"

	"github.com/labstack/gommon/log"
)

type ConnectionRepository interface {
	Save(ctx context.Context, conn *entity.Connection) error
	Delete(ctx context.Context, connID string) error
	FindByUserID(ctx context.Context, userID int64) ([]string, error)
	FindExpired(ctx context.Context, now int64) ([]*entity.Connection, error)
	UpdateHeartbeat(ctx context.Context, connID string, now int64) (bool, error)
}

type WebSocketService struct {
	ConnRepo ConnectionRepository
	Gateway  websocket.GatewayClient
}

func NewWebSocketService(repo ConnectionRepository, gateway websocket.GatewayClient) *WebSocketService {
	return &WebSocketService{
		ConnRepo: repo,
		Gateway:  gateway,
	}
}

// RegisterConnection binds an API Gateway connection to a user until the session expires.
// 'exp' is the token expiry in seconds.
func (s *WebSocketService) RegisterConnection(ctx context.Context, userID int64, connID string, exp int64) apierror.ErrorResponse {
	if connID == "" {
		return apierror.MissingConnIDError
	}

	now := utils.NowUTC()
	conn := &entity.Connection{
		ConnectionID:    connID,
		UserID:          userID,
		ExpiresAt:       exp * 1000,
		LastHeartbeatAt: now, // avoid getting swept before the first ping
		CreatedAt:       now,
	}

	if err := s.ConnRepo.Save(ctx, conn); err != nil {
		log.Errorf("failed to save connection %s: %v", connID, err)
		return apierror.InternalServerError
	}
	return nil
}

// RemoveConnection never fails the caller, the client is already gone.
func (s *WebSocketService) RemoveConnection(ctx context.Context, connID string) {
	if err := s.ConnRepo.Delete(ctx, connID); err != nil {
		log.Warnf("failed to remove connection %s: %v", connID, err)
	}
}

func (s *WebSocketService) HandleMessage(ctx context.Context, connID string, msg *contract.IncomingSocketMessage) apierror.ErrorResponse {
	if connID == "" {
		return apierror.MissingConnIDError
	}

	switch msg.Type {
	case contract.EventPing:
		return s.handlePing(ctx, connID)
	default:
		log.Debugf("ignoring socket message of type %q from %s", msg.Type, connID)
	}
	return nil
}

// Dispatch sends 'evt' to every connection of 'userID'. Connections reported
// gone by the gateway are dropped along the way.
func (s *WebSocketService) Dispatch(ctx context.Context, userID int64, evt events.SocketEvent) {
	conns, err := s.ConnRepo.FindByUserID(ctx, userID)
	if err != nil {
		log.Errorf("failed to fetch connections for user %d: %v", userID, err)
		return
	}

	envelope := wrap(evt)
	for _, connID := range conns {
		s.post(ctx, connID, envelope)
	}
}

// CloseExpired notifies and drops every connection whose session expired or
// that stopped sending heartbeats. It returns how many were closed.
func (s *WebSocketService) CloseExpired(ctx context.Context) (int, error) {
	conns, err := s.ConnRepo.FindExpired(ctx, utils.NowUTC())
	if err != nil {
		return 0, err
	}

	envelope := wrap(&events.SessionExpired{})
	for _, conn := range conns {
		// So clients know not to reconnect with the same session.
		_ = s.Gateway.PostToConnection(ctx, conn.ConnectionID, envelope)

		if err = s.Gateway.DeleteConnection(ctx, conn.ConnectionID); err != nil && !errors.Is(err, websocket.ErrConnectionGone) {
			log.Warnf("failed to close connection %s: %v", conn.ConnectionID, err)
		}
		s.RemoveConnection(ctx, conn.ConnectionID)
	}
	return len(conns), nil
}

func (s *WebSocketService) handlePing(ctx context.Context, connID string) apierror.ErrorResponse {
	found, err := s.ConnRepo.UpdateHeartbeat(ctx, connID, utils.NowUTC())
	if err != nil {
		log.Errorf("failed to update heartbeat of %s: %v", connID, err)
		return apierror.InternalServerError
	}

	if !found {
		return apierror.NotFoundError
	}

	s.post(ctx, connID, wrap(&events.Ack{}))
	return nil
}

func (s *WebSocketService) post(ctx context.Context, connID string, envelope *contract.OutgoingSocketMessage) {
	err := s.Gateway.PostToConnection(ctx, connID, envelope)
	if errors.Is(err, websocket.ErrConnectionGone) {
		s.RemoveConnection(ctx, connID)
		return
	}

	// One stale connection must not block the others
	if err != nil {
		log.Warnf("failed to post %s to %s: %v", envelope.Type, connID, err)
	}
}

func wrap(evt events.SocketEvent) *contract.OutgoingSocketMessage {
	return &contract.OutgoingSocketMessage{
		Type: evt.GetType(),
		Data: evt,
	}
}
