package settlement

import (
	"fmt"
)

// Reconcile スワップ前後の残高から実受取額を求める
// 差分がゼロ以下の場合はスワップ先か環境の不整合とみなす
func Reconcile(before, after uint64) (uint64, error) {
	if after <= before {
		return 0, fmt.Errorf("%w: balance before=%d after=%d", ErrReconciliationInvalid, before, after)
	}
	return after - before, nil
}
