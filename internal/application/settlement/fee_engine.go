package settlement

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"swap-settlement/internal/domain/ledger"
	"swap-settlement/internal/domain/service"
	domain "swap-settlement/internal/domain/settlement"
)

// Transferer 台帳上の送金
type Transferer interface {
	BalanceReader
	Transfer(ctx context.Context, in service.TransferInput) (*ledger.Entry, error)
}

// Distribution 手数料と正味額の分配指示
type Distribution struct {
	Reference string
	From      solana.PublicKey
	Authority solana.PublicKey
	Treasury  solana.PublicKey
	Recipient solana.PublicKey // ゼロ値の場合は正味額を送金しない
	Fee       uint64
	Net       uint64
}

// FeeEngine 手数料の計算と分配
type FeeEngine struct {
	bps       uint32
	transfers Transferer
}

// NewFeeEngine 新しいFeeEngineを作成
func NewFeeEngine(bps uint32, transfers Transferer) *FeeEngine {
	return &FeeEngine{
		bps:       bps,
		transfers: transfers,
	}
}

// Split amount を手数料と正味額に分ける
func (e *FeeEngine) Split(amount uint64) (fee, net uint64, err error) {
	return domain.ComputeFee(amount, e.bps)
}

// Distribute 手数料をトレジャリーへ、正味額を受取先へ送金する
// 金額がゼロの送金は行わない
func (e *FeeEngine) Distribute(ctx context.Context, d Distribution) error {
	if d.Fee > 0 {
		if _, err := e.transfers.Transfer(ctx, service.TransferInput{
			Reference: d.Reference,
			Kind:      ledger.EntryKindFee,
			From:      d.From,
			To:        d.Treasury,
			Authority: d.Authority,
			Amount:    d.Fee,
		}); err != nil {
			return fmt.Errorf("%w: fee transfer: %w", domain.ErrTransferFailed, err)
		}
	}

	if d.Net > 0 && !d.Recipient.IsZero() {
		if _, err := e.transfers.Transfer(ctx, service.TransferInput{
			Reference: d.Reference,
			Kind:      ledger.EntryKindNet,
			From:      d.From,
			To:        d.Recipient,
			Authority: d.Authority,
			Amount:    d.Net,
		}); err != nil {
			return fmt.Errorf("%w: net transfer: %w", domain.ErrTransferFailed, err)
		}
	}
	return nil
}
