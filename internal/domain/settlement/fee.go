package settlement

import (
	"fmt"

	"github.com/holiman/uint256"
)

// MaxFeeBps 手数料率の上限（100%）
const MaxFeeBps uint32 = 10_000

// FeeMode 手数料の徴収タイミング
type FeeMode string

const (
	FeeModePreSwap  FeeMode = "pre_swap"  // スワップ前に支払い額から徴収
	FeeModePostSwap FeeMode = "post_swap" // スワップ後に実受取額から徴収
)

// NewFeeMode 新しいFeeModeを作成
func NewFeeMode(s string) (FeeMode, error) {
	m := FeeMode(s)
	if !m.Valid() {
		return "", fmt.Errorf("invalid fee mode: %s", s)
	}
	return m, nil
}

// String 文字列表現を返す
func (m FeeMode) String() string {
	return string(m)
}

// Valid 有効なモードかどうかを返す
func (m FeeMode) Valid() bool {
	switch m {
	case FeeModePreSwap, FeeModePostSwap:
		return true
	default:
		return false
	}
}

// ComputeFee 手数料と正味額を計算する
// fee = amount * bps / 10000 (切り捨て)、fee + net == amount
func ComputeFee(amount uint64, bps uint32) (fee uint64, net uint64, err error) {
	if bps > MaxFeeBps {
		return 0, 0, fmt.Errorf("%w: fee bps %d exceeds %d", ErrArithmeticOverflow, bps, MaxFeeBps)
	}

	product, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(amount), uint256.NewInt(uint64(bps)))
	if overflow {
		return 0, 0, ErrArithmeticOverflow
	}
	quotient := new(uint256.Int).Div(product, uint256.NewInt(uint64(MaxFeeBps)))
	if !quotient.IsUint64() {
		return 0, 0, ErrArithmeticOverflow
	}

	fee = quotient.Uint64()
	if fee > amount {
		return 0, 0, ErrArithmeticOverflow
	}
	return fee, amount - fee, nil
}
