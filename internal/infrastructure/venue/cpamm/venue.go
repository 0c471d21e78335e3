package cpamm

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"swap-settlement/internal/domain/account"
	"swap-settlement/internal/domain/ledger"
	"swap-settlement/internal/domain/service"
	"swap-settlement/internal/domain/venue"
	otelinfra "swap-settlement/internal/infrastructure/observability/otel"
)

// Pool 登録済みプール
type Pool struct {
	AmmID     solana.PublicKey
	Authority solana.PublicKey // リザーブアカウントの所有者
}

// Transferer 台帳上の送金
type Transferer interface {
	Transfer(ctx context.Context, in service.TransferInput) (*ledger.Entry, error)
}

// Venue 台帳上のリザーブで動く定積型の参照スワップ先
// 呼び出し側のトランザクション内で動作する
type Venue struct {
	programID   solana.PublicKey
	pools       map[solana.PublicKey]solana.PublicKey
	accountRepo account.AccountRepository
	transfers   Transferer
	logger      *otelinfra.Logger
	tracer      trace.Tracer
}

// NewVenue 新しいVenueを作成
func NewVenue(
	programID solana.PublicKey,
	pools []Pool,
	accountRepo account.AccountRepository,
	transfers Transferer,
	logger *otelinfra.Logger,
) *Venue {
	registered := make(map[solana.PublicKey]solana.PublicKey, len(pools))
	for _, p := range pools {
		registered[p.AmmID] = p.Authority
	}
	return &Venue{
		programID:   programID,
		pools:       registered,
		accountRepo: accountRepo,
		transfers:   transfers,
		logger:      logger,
		tracer:      otel.Tracer("cpamm-venue"),
	}
}

// Swap AmountIn を Source からリザーブへ移し、出力を Destination へ送る
func (v *Venue) Swap(ctx context.Context, call venue.SwapCall) error {
	ctx, span := v.tracer.Start(ctx, "Venue.Swap")
	defer span.End()

	span.SetAttributes(
		attribute.String("amm_id", call.Accounts.AmmID.String()),
		attribute.String("reference", call.Reference),
		attribute.Int64("amount_in", int64(min(call.AmountIn, account.MaxBalance))),
	)

	if err := v.swap(ctx, call); err != nil {
		otelinfra.RecordSpanError(span, err)
		return err
	}
	return nil
}

func (v *Venue) swap(ctx context.Context, call venue.SwapCall) error {
	if !call.ProgramID.Equals(v.programID) {
		return fmt.Errorf("%w: %s", venue.ErrProgramMismatch, call.ProgramID)
	}
	authority, ok := v.pools[call.Accounts.AmmID]
	if !ok || !call.Accounts.AmmAuthority.Equals(authority) {
		return fmt.Errorf("%w: %s", venue.ErrUnknownPool, call.Accounts.AmmID)
	}
	if err := call.CheckAccountMetas(); err != nil {
		return err
	}

	coin, err := v.reserve(ctx, call.Accounts.PoolCoinTokenAccount, authority)
	if err != nil {
		return err
	}
	pc, err := v.reserve(ctx, call.Accounts.PoolPcTokenAccount, authority)
	if err != nil {
		return err
	}
	src, err := v.accountRepo.FindByAddress(ctx, call.Source)
	if err != nil {
		return fmt.Errorf("load source: %w", err)
	}
	dst, err := v.accountRepo.FindByAddress(ctx, call.Destination)
	if err != nil {
		return fmt.Errorf("load destination: %w", err)
	}

	var reserveIn, reserveOut *account.Account
	switch {
	case src.Mint().Equals(coin.Mint()) && dst.Mint().Equals(pc.Mint()):
		reserveIn, reserveOut = coin, pc
	case src.Mint().Equals(pc.Mint()) && dst.Mint().Equals(coin.Mint()):
		reserveIn, reserveOut = pc, coin
	default:
		return fmt.Errorf("%w: source and destination mints do not match the pool", venue.ErrInvalidSwapCall)
	}

	out, err := AmountOut(reserveIn.Balance(), reserveOut.Balance(), call.AmountIn)
	if err != nil {
		return err
	}
	if out < call.MinAmountOut {
		return fmt.Errorf("%w: out %d below minimum %d", venue.ErrSlippageExceeded, out, call.MinAmountOut)
	}

	if _, err := v.transfers.Transfer(ctx, service.TransferInput{
		Reference: call.Reference,
		Kind:      ledger.EntryKindSwapIn,
		From:      call.Source,
		To:        reserveIn.Address(),
		Authority: call.Authority,
		Amount:    call.AmountIn,
	}); err != nil {
		return fmt.Errorf("swap in: %w", err)
	}
	if _, err := v.transfers.Transfer(ctx, service.TransferInput{
		Reference: call.Reference,
		Kind:      ledger.EntryKindSwapOut,
		From:      reserveOut.Address(),
		To:        call.Destination,
		Authority: authority,
		Amount:    out,
	}); err != nil {
		return fmt.Errorf("swap out: %w", err)
	}

	v.logger.Debug(ctx, "Swap executed", map[string]interface{}{
		"amm_id":     call.Accounts.AmmID.String(),
		"reference":  call.Reference,
		"amount_in":  call.AmountIn,
		"amount_out": out,
	})
	return nil
}

func (v *Venue) reserve(ctx context.Context, address, authority solana.PublicKey) (*account.Account, error) {
	a, err := v.accountRepo.FindByAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("load reserve %s: %w", address, err)
	}
	if !a.IsOwnedBy(authority) {
		return nil, fmt.Errorf("%w: reserve %s is not owned by the pool", venue.ErrUnknownPool, address)
	}
	return a, nil
}

// AmountOut 定積公式の出力額 reserveOut*amountIn/(reserveIn+amountIn)（切り捨て）
func AmountOut(reserveIn, reserveOut, amountIn uint64) (uint64, error) {
	if reserveIn == 0 || reserveOut == 0 {
		return 0, venue.ErrInsufficientLiquidity
	}
	num := new(uint256.Int).Mul(uint256.NewInt(reserveOut), uint256.NewInt(amountIn))
	den := new(uint256.Int).Add(uint256.NewInt(reserveIn), uint256.NewInt(amountIn))
	out := new(uint256.Int).Div(num, den)
	if out.IsZero() {
		return 0, venue.ErrInsufficientLiquidity
	}
	// out < reserveOut が常に成り立つ
	return out.Uint64(), nil
}
