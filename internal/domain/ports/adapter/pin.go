package adapter

import (
	"context"
	"time"
)

// PinVerifyResult carries the server's verdict plus any lockout hints it
// chose to return. The client enforces no lockout of its own.
type PinVerifyResult struct {
	OK                bool
	Message           string
	AttemptsRemaining int        // -1 when the server gave no hint
	LockedUntil       *time.Time // nil unless the account is locked
}

// PinAPI is the hex port for the remote transaction-PIN service. PIN material
// and attempt counters are server-authoritative.
type PinAPI interface {
	// Detect reports whether the user already has a PIN configured.
	Detect(ctx context.Context, userID string) (bool, error)
	// Create sets the user's PIN for the first time.
	Create(ctx context.Context, userID, pin string) error
	// Verify checks the PIN. A wrong PIN is returned in the result, not as an
	// error; errors are transport failures.
	Verify(ctx context.Context, userID, pin string) (PinVerifyResult, error)
}
