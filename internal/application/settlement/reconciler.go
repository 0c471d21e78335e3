package settlement

import (
	"context"

	"github.com/gagliardetto/solana-go"

	domain "swap-settlement/internal/domain/settlement"
)

// BalanceReader 残高の読み取り
type BalanceReader interface {
	BalanceOf(ctx context.Context, address solana.PublicKey) (uint64, error)
}

// BalanceReconciler 操作前後の残高差分から実受取額を求める
type BalanceReconciler struct {
	balances BalanceReader
}

// NewBalanceReconciler 新しいBalanceReconcilerを作成
func NewBalanceReconciler(balances BalanceReader) *BalanceReconciler {
	return &BalanceReconciler{balances: balances}
}

// Measure fn の実行前後で address の残高を読み、増加分を返す
// 増加がない場合は ErrReconciliationInvalid
func (r *BalanceReconciler) Measure(ctx context.Context, address solana.PublicKey, fn func(ctx context.Context) error) (uint64, error) {
	before, err := r.balances.BalanceOf(ctx, address)
	if err != nil {
		return 0, err
	}
	if err := fn(ctx); err != nil {
		return 0, err
	}
	after, err := r.balances.BalanceOf(ctx, address)
	if err != nil {
		return 0, err
	}
	return domain.Reconcile(before, after)
}
