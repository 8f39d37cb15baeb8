// File: internal/usecase/settlement_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"ppob-settlement/internal/domain"
	"ppob-settlement/internal/domain/model"
	"ppob-settlement/internal/domain/ports/adapter"
	"ppob-settlement/internal/domain/ports/repository"
	"ppob-settlement/internal/infra/metrics"
)

// Compile-time check
var _ SettlementUseCase = (*settlementUC)(nil)

// SettlementUseCase applies financial side effects at most once per
// (operation kind, reference). Every operation follows the same shape:
// serialize on the reference, fast-path out if the record already exists,
// call the remote API, and only then write the durable record. A remote
// failure leaves no record, so a later call may retry.
type SettlementUseCase interface {
	CreditWallet(ctx context.Context, userID string, amount int64, ref model.TransactionReference) error
	RefundWallet(ctx context.Context, userID string, amount int64, ref model.TransactionReference) error
	GrantLoyaltyPoints(ctx context.Context, userID string, ref model.TransactionReference, productCode string) error
	RegisterAgent(ctx context.Context, userID string, ref model.TransactionReference, amount int64, profile model.AgentProfile) error
	// ResolvePrice applies the tier pricing rule for the given buyer.
	ResolvePrice(ctx context.Context, userID, productCode string) (int64, error)
}

const settleLockTTL = 30 * time.Second

type settlementUC struct {
	records  repository.SettlementRecordRepository
	products repository.ProductRepository
	profiles repository.AgentProfileCache
	account  adapter.AccountAPI
	locker   repository.Locker
	log      *zerolog.Logger
}

func NewSettlementUseCase(
	records repository.SettlementRecordRepository,
	products repository.ProductRepository,
	profiles repository.AgentProfileCache,
	account adapter.AccountAPI,
	locker repository.Locker,
	log *zerolog.Logger,
) *settlementUC {
	return &settlementUC{
		records:  records,
		products: products,
		profiles: profiles,
		account:  account,
		locker:   locker,
		log:      log,
	}
}

func (u *settlementUC) CreditWallet(ctx context.Context, userID string, amount int64, ref model.TransactionReference) error {
	return u.runOnce(ctx, model.OpCredit, ref, amount, func(ctx context.Context) error {
		return u.account.CreditWallet(ctx, userID, amount, ref, adapter.CreditMethodGateway)
	})
}

func (u *settlementUC) RefundWallet(ctx context.Context, userID string, amount int64, ref model.TransactionReference) error {
	return u.runOnce(ctx, model.OpRefund, ref, amount, func(ctx context.Context) error {
		return u.account.CreditWallet(ctx, userID, amount, ref, adapter.CreditMethodRefund)
	})
}

func (u *settlementUC) GrantLoyaltyPoints(ctx context.Context, userID string, ref model.TransactionReference, productCode string) error {
	points := model.DefaultRewardPoints
	if p, err := u.products.FindByCode(ctx, productCode); err == nil && p.RewardPoints > 0 {
		points = p.RewardPoints
	}
	return u.runOnce(ctx, model.OpLoyaltyPoints, ref, 0, func(ctx context.Context) error {
		return u.account.GrantPoints(ctx, userID, points, ref)
	})
}

// RegisterAgent is a three-call sequence: credit the registration top-up,
// create the agent record, refresh the cached profile. Any failure reports
// the whole operation failed without a record, so a retry re-runs from the
// top; the remote services dedupe each step by reference.
func (u *settlementUC) RegisterAgent(ctx context.Context, userID string, ref model.TransactionReference, amount int64, profile model.AgentProfile) error {
	return u.runOnce(ctx, model.OpAgentRegistration, ref, amount, func(ctx context.Context) error {
		if err := u.account.CreditWallet(ctx, userID, amount, ref, adapter.CreditMethodAgent); err != nil {
			return fmt.Errorf("registration credit: %w", err)
		}
		if err := u.account.CreateAgent(ctx, profile); err != nil {
			return fmt.Errorf("create agent record: %w", err)
		}
		fresh, err := u.account.FetchProfile(ctx, userID)
		if err != nil {
			return fmt.Errorf("refresh agent profile: %w", err)
		}
		if err := u.profiles.Set(ctx, fresh); err != nil {
			return fmt.Errorf("cache agent profile: %w", err)
		}
		return nil
	})
}

func (u *settlementUC) ResolvePrice(ctx context.Context, userID, productCode string) (int64, error) {
	product, err := u.products.FindByCode(ctx, productCode)
	if err != nil {
		return 0, err
	}
	buyer, err := u.profiles.Get(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		// A cache failure must not block a sale; price as a non-agent.
		u.log.Warn().Err(err).Str("user_id", userID).Msg("profile cache lookup failed")
	}
	return model.ResolvePrice(product, buyer), nil
}

// runOnce is the idempotency envelope shared by every operation.
func (u *settlementUC) runOnce(ctx context.Context, kind model.OperationKind, ref model.TransactionReference, amount int64, apply func(ctx context.Context) error) error {
	if ref.IsZero() {
		return domain.ErrNoReference
	}
	log := u.log.With().Str("kind", string(kind)).Str("reference", ref.String()).Logger()

	lockKey := fmt.Sprintf("settle:%s:%s", kind, ref)
	token, err := u.locker.TryLock(ctx, lockKey, settleLockTTL)
	if err != nil {
		log.Warn().Err(err).Msg("settlement lock unavailable")
		return domain.ErrSettlementBusy
	}
	defer func() {
		if err := u.locker.Unlock(ctx, lockKey, token); err != nil {
			log.Warn().Err(err).Msg("settlement unlock failed")
		}
	}()

	done, err := u.records.HasRun(ctx, kind, ref)
	if err != nil {
		return fmt.Errorf("idempotency check: %w", err)
	}
	if done {
		// Already settled by an earlier call; success without a remote call.
		metrics.IncSettlementDeduped(string(kind))
		log.Debug().Msg("settlement deduped")
		return nil
	}

	if err := apply(ctx); err != nil {
		metrics.IncSettlement(string(kind), "failed")
		log.Error().Err(err).Msg("settlement remote call failed")
		return err
	}

	first, err := u.records.MarkRun(ctx, kind, ref)
	if err != nil {
		// The remote call succeeded but the record did not stick. Surface the
		// error so the caller retries; the remote side dedupes by reference.
		log.Error().Err(err).Msg("settlement applied but record write failed")
		return fmt.Errorf("record settlement: %w", err)
	}
	if !first {
		log.Warn().Msg("settlement raced a concurrent writer")
	}
	metrics.IncSettlement(string(kind), "applied")
	metrics.AddSettlementAmount(string(kind), amount)
	log.Info().Int64("amount", amount).Msg("settlement applied")
	return nil
}
