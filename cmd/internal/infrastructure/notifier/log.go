package notifier

import (
	"context"

	"notesboard/cmd/internal/contract"

	"github.com/labstack/gommon/log"
)

// LogNotifier prints verification codes instead of delivering them. Development only.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (*LogNotifier) Notify(_ context.Context, msg *contract.VerificationMessage) error {
	log.Infof("verification code for %s <%s>: %s (expires %s)", msg.Username, msg.Email, msg.Code, msg.ExpiresAt)
	return nil
}

func (*LogNotifier) Close() error {
	return nil
}
