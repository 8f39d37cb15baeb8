//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ppob-settlement/internal/domain"
	"ppob-settlement/internal/domain/model"
	"ppob-settlement/internal/domain/ports/adapter"
	"ppob-settlement/internal/usecase"
)

// mockSubmitter counts order releases.
type mockSubmitter struct {
	mu         sync.Mutex
	Calls      int
	LastOrder  model.PendingOrder
	SubmitFunc func(ctx context.Context, order model.PendingOrder) (usecase.OrderOutcome, error)
}

func (m *mockSubmitter) SubmitAuthorized(ctx context.Context, order model.PendingOrder) (usecase.OrderOutcome, error) {
	m.mu.Lock()
	m.Calls++
	m.LastOrder = order
	m.mu.Unlock()
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, order)
	}
	return usecase.OrderOutcome{Reference: order.Reference, Status: model.OrderStatusSuccess}, nil
}

type pinFixture struct {
	pins      *MockPinAPI
	orders    *MockPendingOrderRepo
	submitter *mockSubmitter
	uc        usecase.PinUseCase
}

func newPinFixture(hasPin bool) *pinFixture {
	f := &pinFixture{
		pins:      &MockPinAPI{HasPin: hasPin},
		orders:    NewMockPendingOrderRepo(),
		submitter: &mockSubmitter{},
	}
	f.uc = usecase.NewPinUseCase(f.pins, f.orders, f.submitter, newTestLogger())
	return f
}

func (f *pinFixture) seedOrder(t *testing.T, sessionID string) model.PendingOrder {
	t.Helper()
	order := model.PendingOrder{
		ID:          "01HX0000000000000000000000",
		Kind:        model.OrderPurchase,
		UserID:      "user-1",
		CustomerRef: "0812000111",
		ProductCode: "PLN20",
		Amount:      20500,
		Reference:   model.NewSyntheticReference(time.Now()),
	}
	if err := f.orders.Set(context.Background(), sessionID, &order); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func press(t *testing.T, uc usecase.PinUseCase, sessionID, digits string) usecase.PinResult {
	t.Helper()
	var last usecase.PinResult
	for i := 0; i < len(digits); i++ {
		res, err := uc.Press(context.Background(), sessionID, digits[i])
		if err != nil {
			t.Fatalf("press %q (digit %d): %v", digits[i], i, err)
		}
		last = res
	}
	return last
}

func TestPinUseCase_CreateFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("matching entries submit exactly one create call and release the order", func(t *testing.T) {
		f := newPinFixture(false)
		f.seedOrder(t, "sess-1")

		mode, err := f.uc.StartSession(ctx, "sess-1", "user-1")
		if err != nil {
			t.Fatalf("start session: %v", err)
		}
		if mode != model.PinModeCreateFirst {
			t.Fatalf("mode = %s, want create_first", mode)
		}

		res := press(t, f.uc, "sess-1", "123456")
		if res.Mode != model.PinModeCreateConfirm {
			t.Fatalf("after first entry mode = %s, want create_confirm", res.Mode)
		}

		res = press(t, f.uc, "sess-1", "123456")
		if !res.Submitted {
			t.Fatal("expected the order to be submitted")
		}
		if f.pins.CreateCalls != 1 {
			t.Errorf("create called %d times, want exactly 1", f.pins.CreateCalls)
		}
		if f.submitter.Calls != 1 {
			t.Errorf("order submitted %d times, want 1", f.submitter.Calls)
		}
		if f.orders.Has("sess-1") {
			t.Error("pending order should be consumed")
		}
	})

	t.Run("mismatching entries clear both buffers and issue zero remote calls", func(t *testing.T) {
		f := newPinFixture(false)
		f.seedOrder(t, "sess-1")
		if _, err := f.uc.StartSession(ctx, "sess-1", "user-1"); err != nil {
			t.Fatalf("start session: %v", err)
		}

		press(t, f.uc, "sess-1", "123456")
		res := press(t, f.uc, "sess-1", "654321")
		if !res.Mismatch {
			t.Fatal("expected a mismatch result")
		}
		if res.Mode != model.PinModeCreateFirst {
			t.Errorf("mode = %s, want create_first", res.Mode)
		}
		if f.pins.CreateCalls != 0 {
			t.Errorf("mismatch must not call the remote service, got %d calls", f.pins.CreateCalls)
		}

		// Buffers are clean: a fresh matching pair still works.
		press(t, f.uc, "sess-1", "111222")
		res = press(t, f.uc, "sess-1", "111222")
		if !res.Submitted {
			t.Fatal("expected submission after re-entry")
		}
		if f.pins.CreateCalls != 1 {
			t.Errorf("create called %d times, want 1", f.pins.CreateCalls)
		}
	})
}

func TestPinUseCase_VerifyFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("correct pin releases the order", func(t *testing.T) {
		f := newPinFixture(true)
		order := f.seedOrder(t, "sess-1")

		mode, err := f.uc.StartSession(ctx, "sess-1", "user-1")
		if err != nil {
			t.Fatalf("start session: %v", err)
		}
		if mode != model.PinModeVerify {
			t.Fatalf("mode = %s, want verify", mode)
		}

		res := press(t, f.uc, "sess-1", "123456")
		if !res.Submitted {
			t.Fatal("expected submission")
		}
		if f.submitter.LastOrder.Reference != order.Reference {
			t.Error("submitted order does not match the gated one")
		}
	})

	t.Run("wrong pin stays in verify and carries server hints", func(t *testing.T) {
		f := newPinFixture(true)
		f.seedOrder(t, "sess-1")
		lockedUntil := time.Now().Add(10 * time.Minute)
		f.pins.VerifyFunc = func(ctx context.Context, userID, pin string) (adapter.PinVerifyResult, error) {
			return adapter.PinVerifyResult{
				OK:                false,
				Message:           "wrong PIN",
				AttemptsRemaining: 2,
				LockedUntil:       &lockedUntil,
			}, nil
		}
		if _, err := f.uc.StartSession(ctx, "sess-1", "user-1"); err != nil {
			t.Fatalf("start session: %v", err)
		}

		res := press(t, f.uc, "sess-1", "999999")
		if !res.Rejected {
			t.Fatal("expected a rejected result")
		}
		if res.Mode != model.PinModeVerify {
			t.Errorf("mode = %s, want verify", res.Mode)
		}
		if res.AttemptsRemaining != 2 || res.LockedUntil == nil {
			t.Error("server lockout hints must pass through")
		}
		if f.submitter.Calls != 0 {
			t.Error("a rejected PIN must not release the order")
		}

		// Buffer was cleared: the next six digits submit a fresh verify.
		f.pins.VerifyFunc = nil
		res = press(t, f.uc, "sess-1", "123456")
		if !res.Submitted {
			t.Fatal("expected submission after correct re-entry")
		}
		if f.pins.VerifyCalls != 2 {
			t.Errorf("verify called %d times, want 2", f.pins.VerifyCalls)
		}
	})

	t.Run("transport failure is surfaced and retryable", func(t *testing.T) {
		f := newPinFixture(true)
		f.seedOrder(t, "sess-1")
		netErr := errors.New("connection reset")
		f.pins.VerifyFunc = func(ctx context.Context, userID, pin string) (adapter.PinVerifyResult, error) {
			return adapter.PinVerifyResult{}, netErr
		}
		if _, err := f.uc.StartSession(ctx, "sess-1", "user-1"); err != nil {
			t.Fatalf("start session: %v", err)
		}

		var lastErr error
		for i, d := range []byte("123456") {
			_, err := f.uc.Press(ctx, "sess-1", d)
			if i == 5 {
				lastErr = err
			} else if err != nil {
				t.Fatalf("press %d: %v", i, err)
			}
		}
		if !errors.Is(lastErr, netErr) {
			t.Fatalf("expected surfaced transport error, got %v", lastErr)
		}
		if f.submitter.Calls != 0 {
			t.Error("order must not be released on transport failure")
		}
	})
}

func TestPinUseCase_Cancel(t *testing.T) {
	ctx := context.Background()

	f := newPinFixture(true)
	f.seedOrder(t, "sess-1")
	if _, err := f.uc.StartSession(ctx, "sess-1", "user-1"); err != nil {
		t.Fatalf("start session: %v", err)
	}
	press(t, f.uc, "sess-1", "12") // mid-entry

	if err := f.uc.Cancel(ctx, "sess-1"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if f.orders.Has("sess-1") {
		t.Error("cancel must discard the pending order")
	}
	if f.submitter.Calls != 0 {
		t.Error("cancel must have no side effect")
	}
	if _, err := f.uc.Press(ctx, "sess-1", '3'); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("pressing a cancelled session should be not-found, got %v", err)
	}
}

func TestPinUseCase_Validation(t *testing.T) {
	ctx := context.Background()
	f := newPinFixture(true)
	if _, err := f.uc.StartSession(ctx, "sess-1", "user-1"); err != nil {
		t.Fatalf("start session: %v", err)
	}

	if _, err := f.uc.Press(ctx, "sess-1", 'x'); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("non-digit press: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := f.uc.Press(ctx, "nope", '1'); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown session: expected ErrNotFound, got %v", err)
	}
	if _, err := f.uc.StartSession(ctx, "", "user-1"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("empty session id: expected ErrInvalidArgument, got %v", err)
	}
}
