// Package chatlink issues the one-time codes a user sends to the Telegram bot to link a chat.
package chatlink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long an issued code stays redeemable.
const DefaultTTL = 15 * time.Minute

var ErrMissingUser = errors.New("user must be authenticated to link a chat")

type Store interface {
	CreateLinkCode(ctx context.Context, code, userID string, expiresAt time.Time) error
}

// Code is an issued link code and the command that redeems it.
type Code struct {
	Code      string    `json:"code"`
	Command   string    `json:"command"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Issuer struct {
	log   *slog.Logger
	store Store
	ttl   time.Duration
	now   func() time.Time
}

type Option func(*Issuer)

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(i *Issuer) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

func NewIssuer(log *slog.Logger, store Store, opts ...Option) *Issuer {
	i := &Issuer{
		log:   log,
		store: store,
		ttl:   DefaultTTL,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(i)
	}

	return i
}

// Issue stores a fresh code for userID.
func (i *Issuer) Issue(ctx context.Context, userID string) (*Code, error) {
	const opn = "chatlink.Issuer.Issue"

	if userID == "" {
		return nil, ErrMissingUser
	}

	code := &Code{
		Code:      strings.ReplaceAll(uuid.NewString(), "-", ""),
		ExpiresAt: i.now().Add(i.ttl),
	}
	code.Command = "/subscribe " + code.Code

	if err := i.store.CreateLinkCode(ctx, code.Code, userID, code.ExpiresAt); err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}
	i.log.DebugContext(ctx, "Issued chat link code", "op", opn, "user", userID, "expires_at", code.ExpiresAt)

	return code, nil
}
