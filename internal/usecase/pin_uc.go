// File: internal/usecase/pin_uc.go
package usecase

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ppob-settlement/internal/domain"
	"ppob-settlement/internal/domain/model"
	"ppob-settlement/internal/domain/ports/adapter"
	"ppob-settlement/internal/domain/ports/repository"
	"ppob-settlement/internal/infra/metrics"
)

// Compile-time check
var _ PinUseCase = (*pinUC)(nil)

// OrderOutcome reports what happened to the gated order once it was released.
type OrderOutcome struct {
	Reference    model.TransactionReference
	Status       model.OrderStatus
	Message      string
	SerialNumber string
	Polling      bool // true when a poller now tracks the reference
}

// OrderSubmitter releases an authorized pending order. Implemented by the
// order use case; an interface here keeps the dependency one-directional.
type OrderSubmitter interface {
	SubmitAuthorized(ctx context.Context, order model.PendingOrder) (OrderOutcome, error)
}

// PinResult is returned after every digit press.
type PinResult struct {
	Mode              model.PinMode
	Submitted         bool   // terminal: the gated order was released
	Mismatch          bool   // create/confirm buffers differed; back to first entry
	Rejected          bool   // server rejected the PIN; stay in verify
	Message           string
	AttemptsRemaining int        // -1 when the server gave no hint
	LockedUntil       *time.Time // server-authoritative lockout, if any
	Outcome           *OrderOutcome
}

// PinUseCase gates order submission behind PIN authorization. Digit buffers
// are transient and never persisted; PIN material and lockout counters live
// on the remote service.
type PinUseCase interface {
	// StartSession detects whether the user already has a PIN and opens a
	// session in create or verify mode.
	StartSession(ctx context.Context, sessionID, userID string) (model.PinMode, error)
	// Press feeds one digit ('0'..'9') into the session's active buffer.
	Press(ctx context.Context, sessionID string, digit byte) (PinResult, error)
	// Cancel discards the session and its pending order with no side effect.
	Cancel(ctx context.Context, sessionID string) error
}

type pinSession struct {
	userID string
	model.PinSession
}

type pinUC struct {
	pins   adapter.PinAPI
	orders repository.PendingOrderRepository
	submit OrderSubmitter
	log    *zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*pinSession
}

func NewPinUseCase(pins adapter.PinAPI, orders repository.PendingOrderRepository, submit OrderSubmitter, log *zerolog.Logger) *pinUC {
	return &pinUC{
		pins:     pins,
		orders:   orders,
		submit:   submit,
		log:      log,
		sessions: make(map[string]*pinSession),
	}
}

func (u *pinUC) StartSession(ctx context.Context, sessionID, userID string) (model.PinMode, error) {
	if sessionID == "" || userID == "" {
		return "", domain.ErrInvalidArgument
	}
	hasPin, err := u.pins.Detect(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("detect pin: %w", err)
	}
	mode := model.PinModeCreateFirst
	if hasPin {
		mode = model.PinModeVerify
	}

	u.mu.Lock()
	u.sessions[sessionID] = &pinSession{userID: userID, PinSession: model.PinSession{Mode: mode}}
	u.mu.Unlock()

	u.log.Debug().Str("session_id", sessionID).Str("mode", string(mode)).Msg("pin session opened")
	return mode, nil
}

func (u *pinUC) Press(ctx context.Context, sessionID string, digit byte) (PinResult, error) {
	if digit < '0' || digit > '9' {
		return PinResult{}, domain.ErrInvalidArgument
	}

	u.mu.Lock()
	s, ok := u.sessions[sessionID]
	if !ok {
		u.mu.Unlock()
		return PinResult{}, domain.ErrNotFound
	}

	var full bool
	switch s.Mode {
	case model.PinModeCreateFirst, model.PinModeVerify:
		s.Entered = append(s.Entered, digit)
		full = len(s.Entered) == model.PinLength
	case model.PinModeCreateConfirm:
		s.Confirm = append(s.Confirm, digit)
		full = len(s.Confirm) == model.PinLength
	default:
		u.mu.Unlock()
		return PinResult{}, domain.ErrPinSessionClosed
	}

	if !full {
		mode := s.Mode
		u.mu.Unlock()
		return PinResult{Mode: mode, AttemptsRemaining: -1}, nil
	}

	// Sixth digit: act on the completed buffer.
	switch s.Mode {
	case model.PinModeCreateFirst:
		s.Mode = model.PinModeCreateConfirm
		s.Confirm = nil
		u.mu.Unlock()
		return PinResult{Mode: model.PinModeCreateConfirm, AttemptsRemaining: -1}, nil

	case model.PinModeCreateConfirm:
		if !bytes.Equal(s.Entered, s.Confirm) {
			// Local UX correction, no attempt penalty and no remote call.
			s.Entered, s.Confirm = nil, nil
			s.Mode = model.PinModeCreateFirst
			u.mu.Unlock()
			metrics.IncPinSession("mismatch")
			return PinResult{
				Mode:              model.PinModeCreateFirst,
				Mismatch:          true,
				Message:           "PIN entries do not match",
				AttemptsRemaining: -1,
			}, nil
		}
		pin := string(s.Entered)
		u.mu.Unlock()
		return u.create(ctx, sessionID, s, pin)

	case model.PinModeVerify:
		pin := string(s.Entered)
		s.Entered = nil
		u.mu.Unlock()
		return u.verify(ctx, sessionID, s, pin)
	}

	u.mu.Unlock()
	return PinResult{}, domain.ErrPinSessionClosed
}

func (u *pinUC) create(ctx context.Context, sessionID string, s *pinSession, pin string) (PinResult, error) {
	if err := u.pins.Create(ctx, s.userID, pin); err != nil {
		// Keep the session in confirm mode; retyping the confirmation
		// re-submits the create.
		u.mu.Lock()
		s.Confirm = nil
		u.mu.Unlock()
		return PinResult{Mode: model.PinModeCreateConfirm, AttemptsRemaining: -1}, fmt.Errorf("create pin: %w", err)
	}
	return u.release(ctx, sessionID, s)
}

func (u *pinUC) verify(ctx context.Context, sessionID string, s *pinSession, pin string) (PinResult, error) {
	res, err := u.pins.Verify(ctx, s.userID, pin)
	if err != nil {
		metrics.IncPinVerify("error")
		return PinResult{Mode: model.PinModeVerify, AttemptsRemaining: -1}, fmt.Errorf("verify pin: %w", err)
	}
	if !res.OK {
		// Wrong PIN: stay in verify with a cleared buffer; the server's
		// attempts/lockout hints pass through untouched.
		metrics.IncPinVerify("rejected")
		return PinResult{
			Mode:              model.PinModeVerify,
			Rejected:          true,
			Message:           res.Message,
			AttemptsRemaining: res.AttemptsRemaining,
			LockedUntil:       res.LockedUntil,
		}, nil
	}
	metrics.IncPinVerify("ok")
	return u.release(ctx, sessionID, s)
}

// release hands the gated order to the order use case. The pending order is
// only discarded once submission succeeded; on failure the session stays
// open so the user can authorize again and the same reference is re-issued.
func (u *pinUC) release(ctx context.Context, sessionID string, s *pinSession) (PinResult, error) {
	order, err := u.orders.Get(ctx, sessionID)
	if err != nil {
		return PinResult{}, domain.ErrOrderNotFound
	}

	outcome, err := u.submit.SubmitAuthorized(ctx, *order)
	if err != nil {
		u.mu.Lock()
		s.Entered, s.Confirm = nil, nil
		u.mu.Unlock()
		return PinResult{Mode: s.Mode, AttemptsRemaining: -1}, fmt.Errorf("submit order: %w", err)
	}

	if err := u.orders.Delete(ctx, sessionID); err != nil {
		u.log.Warn().Err(err).Str("session_id", sessionID).Msg("pending order cleanup failed")
	}
	u.mu.Lock()
	s.Mode = model.PinModeSubmitted
	delete(u.sessions, sessionID)
	u.mu.Unlock()

	metrics.IncPinSession("authorized")
	u.log.Info().
		Str("session_id", sessionID).
		Str("reference", outcome.Reference.String()).
		Str("status", string(outcome.Status)).
		Msg("order released after pin authorization")

	return PinResult{
		Mode:              model.PinModeSubmitted,
		Submitted:         true,
		Message:           outcome.Message,
		AttemptsRemaining: -1,
		Outcome:           &outcome,
	}, nil
}

func (u *pinUC) Cancel(ctx context.Context, sessionID string) error {
	u.mu.Lock()
	s, ok := u.sessions[sessionID]
	if ok {
		delete(u.sessions, sessionID)
	}
	u.mu.Unlock()

	if !ok {
		return domain.ErrNotFound
	}
	if s.Mode == model.PinModeSubmitted {
		return domain.ErrPinSessionClosed
	}
	if err := u.orders.Delete(ctx, sessionID); err != nil {
		u.log.Warn().Err(err).Str("session_id", sessionID).Msg("pending order cleanup failed")
	}
	metrics.IncPinSession("cancelled")
	return nil
}
