package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"notesboard/cmd/internal/contract"
)

const (
	// DefaultCodeTTL is how long a freshly issued verification code is honored.
	DefaultCodeTTL = time.Hour

	codeMin   = 100000
	codeRange = 900000
)

// Notifier delivers verification codes. A nil error means the message was handed off.
type Notifier interface {
	Notify(ctx context.Context, msg *contract.VerificationMessage) error
}

// CodeIssuer mints 6-digit verification codes along with their expiry.
type CodeIssuer struct {
	ttl time.Duration
	now func() time.Time
}

func NewCodeIssuer(ttl time.Duration) *CodeIssuer {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	return &CodeIssuer{ttl: ttl, now: time.Now}
}

// Issue returns a code in [100000, 999999] and its expiry as epoch millis.
func (i *CodeIssuer) Issue() (string, int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeRange))
	if err != nil {
		return "", 0, fmt.Errorf("failed to generate verification code: %w", err)
	}

	code := fmt.Sprintf("%06d", n.Int64()+codeMin)
	expiry := i.now().Add(i.ttl).UTC().UnixMilli()
	return code, expiry, nil
}
