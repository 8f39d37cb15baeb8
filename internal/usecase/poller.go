// File: internal/usecase/poller.go
package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"ppob-settlement/internal/domain"
	"ppob-settlement/internal/domain/model"
	"ppob-settlement/internal/domain/ports/adapter"
	"ppob-settlement/internal/domain/ports/repository"
	"ppob-settlement/internal/infra/metrics"
)

// PollerState is the lifecycle of one watched reference.
type PollerState string

const (
	PollerIdle           PollerState = "idle"
	PollerPolling        PollerState = "polling"
	PollerSettledSuccess PollerState = "settled_success"
	PollerSettledFailed  PollerState = "settled_failed"
	PollerExhausted      PollerState = "exhausted" // attempts spent, transaction still pending
)

// Terminal reports whether the poller will not tick again on its own.
func (s PollerState) Terminal() bool {
	switch s {
	case PollerSettledSuccess, PollerSettledFailed, PollerExhausted:
		return true
	}
	return false
}

// PollerDeps are the collaborators a poller needs to interpret a status and
// apply its terminal side effects.
type PollerDeps struct {
	Status  adapter.StatusAPI
	Orders  adapter.OrderAPI
	Settle  SettlementUseCase
	Pending repository.PendingTransactionRepository
	Log     *zerolog.Logger
}

// PollSnapshot is a read-only view of a poller for the ops API.
type PollSnapshot struct {
	Reference   model.TransactionReference
	State       PollerState
	Attempts    int
	MaxAttempts int
	LastStatus  model.GatewayStatus
}

// Poller drives the bounded status-check loop for one transaction reference.
// Automatic ticks run on a fixed interval until a terminal status arrives or
// the attempt budget is spent; CheckNow runs one extra tick at any time, even
// after exhaustion. At most one status request is ever outstanding.
type Poller struct {
	deps        PollerDeps
	tx          model.PendingTransaction
	interval    time.Duration
	maxAttempts int
	onHalt      func(*Poller)

	mu         sync.Mutex
	state      PollerState
	attempts   int
	lastStatus model.GatewayStatus
	cancel     context.CancelFunc
	done       chan struct{}

	inFlight atomic.Bool
}

func NewPoller(deps PollerDeps, tx model.PendingTransaction, interval time.Duration, maxAttempts int) *Poller {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 40
	}
	return &Poller{
		deps:        deps,
		tx:          tx,
		interval:    interval,
		maxAttempts: maxAttempts,
		state:       PollerIdle,
		lastStatus:  model.GatewayStatusUnknown,
	}
}

// Start begins the automatic tick loop. A running poller is stopped and
// restarted with a fresh attempt budget.
func (p *Poller) Start(ctx context.Context) {
	p.Stop()

	p.mu.Lock()
	p.attempts = 0
	p.state = PollerPolling
	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	done := make(chan struct{})
	p.done = done
	p.mu.Unlock()

	go p.loop(loopCtx, done)
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		if p.onHalt != nil {
			p.onHalt(p)
		}
	}()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			halted, err := p.tick(ctx, false)
			if err != nil {
				// Transient failures are swallowed on automatic ticks; the
				// attempt counter already advanced so a dead network cannot
				// keep the loop alive forever.
				p.deps.Log.Debug().Err(err).Str("reference", p.tx.Reference.String()).Msg("poll tick failed")
			}
			if halted {
				return
			}
		}
	}
}

// Stop cancels the tick loop. Safe to call from any state, idempotent.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// CheckNow performs one tick immediately, independent of the timer. It works
// even after the poller exhausted its budget, so a manual re-check can still
// resolve the transaction. Unlike automatic ticks, errors are surfaced and
// the attempt counter does not advance.
func (p *Poller) CheckNow(ctx context.Context) (PollSnapshot, error) {
	_, err := p.tick(ctx, true)
	return p.Snapshot(), err
}

func (p *Poller) Snapshot() PollSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PollSnapshot{
		Reference:   p.tx.Reference,
		State:       p.state,
		Attempts:    p.attempts,
		MaxAttempts: p.maxAttempts,
		LastStatus:  p.lastStatus,
	}
}

// tick performs one status check. It returns halted == true once the poller
// reached a terminal state and the automatic loop must stop.
func (p *Poller) tick(ctx context.Context, manual bool) (halted bool, err error) {
	if !manual {
		// A manual check may have settled the reference between timer fires.
		p.mu.Lock()
		terminal := p.state.Terminal()
		p.mu.Unlock()
		if terminal {
			return true, nil
		}
	}

	// A tick that fires while the previous remote call is still outstanding
	// is skipped, not queued.
	if !p.inFlight.CompareAndSwap(false, true) {
		metrics.IncPollerTick("skipped")
		return false, nil
	}
	defer p.inFlight.Store(false)

	start := time.Now()
	res, err := p.deps.Status.CheckStatus(ctx, p.tx.Reference, p.tx.CustomerRef, p.tx.ProductCode)
	metrics.ObserveTickLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.IncPollerTick("error")
		if manual {
			return false, err
		}
		return p.advanceAttempt(), err
	}

	p.mu.Lock()
	p.lastStatus = res.Status
	p.mu.Unlock()
	metrics.IncPollerTick(string(res.Status))

	switch res.Status {
	case model.GatewayStatusPaid:
		return true, p.settle(ctx, res, true)
	case model.GatewayStatusFailed, model.GatewayStatusExpired:
		return true, p.settle(ctx, res, false)
	default: // UNPAID or UNKNOWN: keep waiting
		if manual {
			return false, nil
		}
		return p.advanceAttempt(), nil
	}
}

// advanceAttempt counts one automatic tick and flips to Exhausted once the
// budget is spent. The transaction stays logically pending; the journal row
// is left unresolved for the reconciler and manual re-checks.
func (p *Poller) advanceAttempt() (halted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attempts++
	if p.attempts < p.maxAttempts {
		return false
	}
	if p.state == PollerPolling {
		p.state = PollerExhausted
		metrics.IncPollerTerminal("exhausted")
		p.deps.Log.Warn().
			Str("reference", p.tx.Reference.String()).
			Int("attempts", p.attempts).
			Msg("polling exhausted, transaction left pending")
	}
	return true
}

// settle applies the terminal outcome. The state flips first so the loop
// halts either way; if a side effect fails the journal row stays unresolved
// and a re-check retries it, guarded by the idempotency store.
func (p *Poller) settle(ctx context.Context, res adapter.StatusResult, success bool) error {
	p.mu.Lock()
	if success {
		p.state = PollerSettledSuccess
	} else {
		p.state = PollerSettledFailed
	}
	p.mu.Unlock()

	var err error
	if success {
		metrics.IncPollerTerminal("success")
		err = p.applySuccess(ctx, res)
	} else {
		metrics.IncPollerTerminal("failed")
		err = p.applyFailure(ctx, res)
	}
	if err != nil {
		p.deps.Log.Error().Err(err).
			Str("reference", p.tx.Reference.String()).
			Bool("success", success).
			Msg("terminal settlement failed, journal left unresolved")
		return err
	}
	if err := p.deps.Pending.Resolve(ctx, p.tx.Reference); err != nil {
		p.deps.Log.Warn().Err(err).
			Str("reference", p.tx.Reference.String()).
			Msg("journal resolve failed")
	}
	return nil
}

func (p *Poller) applySuccess(ctx context.Context, res adapter.StatusResult) error {
	switch p.tx.Kind {
	case model.OrderTopUp:
		return p.deps.Settle.CreditWallet(ctx, p.tx.UserID, p.tx.Amount, p.tx.Reference)
	case model.OrderAgentTopUp:
		profile := model.AgentProfile{
			UserID: p.tx.UserID,
			Tier:   model.AgentTierStandard,
			Phone:  p.tx.CustomerRef,
		}
		return p.deps.Settle.RegisterAgent(ctx, p.tx.UserID, p.tx.Reference, p.tx.Amount, profile)
	default: // purchase: mark the order row, then grant points
		if err := p.deps.Orders.UpdateOrderStatus(ctx, p.tx.Reference, model.OrderStatusSuccess, res.Message, res.SerialNumber, p.tx.Amount); err != nil {
			return err
		}
		return p.deps.Settle.GrantLoyaltyPoints(ctx, p.tx.UserID, p.tx.Reference, p.tx.ProductCode)
	}
}

func (p *Poller) applyFailure(ctx context.Context, res adapter.StatusResult) error {
	if err := p.deps.Settle.RefundWallet(ctx, p.tx.UserID, p.tx.Amount, p.tx.Reference); err != nil {
		return err
	}
	return p.deps.Orders.UpdateOrderStatus(ctx, p.tx.Reference, model.OrderStatusFailed, res.Message, "", 0)
}

// PollerRegistry owns at most one live poller per reference, with explicit
// start/stop lifecycle, instead of ad hoc timer handles scattered across
// callers.
type PollerRegistry struct {
	deps        PollerDeps
	interval    time.Duration
	maxAttempts int

	mu      sync.Mutex
	pollers map[model.TransactionReference]*Poller
}

func NewPollerRegistry(deps PollerDeps, interval time.Duration, maxAttempts int) *PollerRegistry {
	return &PollerRegistry{
		deps:        deps,
		interval:    interval,
		maxAttempts: maxAttempts,
		pollers:     make(map[model.TransactionReference]*Poller),
	}
}

// StartPolling journals the transaction and (re)starts its poller. An
// existing poller for the same reference is stopped and replaced.
func (r *PollerRegistry) StartPolling(ctx context.Context, tx model.PendingTransaction) (*Poller, error) {
	if tx.Reference.IsZero() {
		return nil, domain.ErrNoReference
	}
	if err := r.deps.Pending.Upsert(ctx, &tx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	if old, ok := r.pollers[tx.Reference]; ok {
		delete(r.pollers, tx.Reference)
		go old.Stop()
	}
	p := NewPoller(r.deps, tx, r.interval, r.maxAttempts)
	p.onHalt = r.remove
	r.pollers[tx.Reference] = p
	metrics.SetActivePollers(len(r.pollers))
	r.mu.Unlock()

	p.Start(ctx)
	return p, nil
}

// CheckNow runs one immediate tick for the reference. If no live poller
// exists the journal row is loaded and checked with a one-shot poller, so
// exhausted or restarted transactions can still be resolved manually.
func (r *PollerRegistry) CheckNow(ctx context.Context, ref model.TransactionReference) (PollSnapshot, error) {
	r.mu.Lock()
	p, ok := r.pollers[ref]
	r.mu.Unlock()
	if ok {
		return p.CheckNow(ctx)
	}

	tx, err := r.deps.Pending.FindByReference(ctx, ref)
	if err != nil {
		return PollSnapshot{}, err
	}
	oneShot := NewPoller(r.deps, *tx, r.interval, r.maxAttempts)
	return oneShot.CheckNow(ctx)
}

// Get returns the live poller for a reference, if any.
func (r *PollerRegistry) Get(ref model.TransactionReference) (*Poller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pollers[ref]
	return p, ok
}

// StopAll stops every live poller; used on shutdown.
func (r *PollerRegistry) StopAll() {
	r.mu.Lock()
	pollers := make([]*Poller, 0, len(r.pollers))
	for _, p := range r.pollers {
		pollers = append(pollers, p)
	}
	r.pollers = make(map[model.TransactionReference]*Poller)
	metrics.SetActivePollers(0)
	r.mu.Unlock()

	for _, p := range pollers {
		p.Stop()
	}
}

func (r *PollerRegistry) remove(p *Poller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.pollers[p.tx.Reference]; ok && cur == p {
		delete(r.pollers, p.tx.Reference)
		metrics.SetActivePollers(len(r.pollers))
	}
}
