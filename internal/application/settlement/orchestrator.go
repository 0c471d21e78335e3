package settlement

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	domain "swap-settlement/internal/domain/settlement"
	"swap-settlement/internal/domain/venue"
)

// SwapOrchestrator スワップ先への呼び出しを組み立てて実行する
// 受取額は返さず、成否のみを返す
type SwapOrchestrator struct {
	venue     venue.SwapVenue
	programID solana.PublicKey
}

// NewSwapOrchestrator 新しいSwapOrchestratorを作成
func NewSwapOrchestrator(swapVenue venue.SwapVenue, programID solana.PublicKey) *SwapOrchestrator {
	return &SwapOrchestrator{
		venue:     swapVenue,
		programID: programID,
	}
}

// Swap 支払者の権限で Source から amountIn をスワップし、出力を Destination に受け取る
func (o *SwapOrchestrator) Swap(ctx context.Context, reference string, amountIn, minOut uint64, accts *domain.SettlementAccounts) error {
	call, err := venue.NewSwapCall(
		o.programID,
		accts.Venue,
		accts.Source,
		accts.Destination,
		accts.Payer,
		amountIn,
		minOut,
		reference,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSwapFailed, err)
	}
	if err := o.venue.Swap(ctx, call); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSwapFailed, err)
	}
	return nil
}
