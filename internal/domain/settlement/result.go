package settlement

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// Result 決済完了記録エンティティ
// 一度作成された後は変更されない
type Result struct {
	settlementID string
	orderID      string
	payInMint    solana.PublicKey
	payOutMint   solana.PublicKey
	payInAmount  uint64
	payOutAmount uint64 // 加盟店（または支払者）が受け取った正味額
	feeAmount    uint64
	feeMode      FeeMode
	payer        solana.PublicKey
	merchant     solana.PublicKey
	treasury     solana.PublicKey
	settledAt    time.Time
}

// ResultParams Result の生成パラメータ
type ResultParams struct {
	SettlementID string
	OrderID      string
	PayInMint    solana.PublicKey
	PayOutMint   solana.PublicKey
	PayInAmount  uint64
	PayOutAmount uint64
	FeeAmount    uint64
	FeeMode      FeeMode
	Payer        solana.PublicKey
	Merchant     solana.PublicKey
	Treasury     solana.PublicKey
	SettledAt    time.Time
}

// NewResult 新しいResultエンティティを作成
func NewResult(p ResultParams) (*Result, error) {
	if p.SettlementID == "" || p.OrderID == "" {
		return nil, ErrInvalidRequest
	}
	if !p.FeeMode.Valid() {
		return nil, ErrInvalidRequest
	}
	return &Result{
		settlementID: p.SettlementID,
		orderID:      p.OrderID,
		payInMint:    p.PayInMint,
		payOutMint:   p.PayOutMint,
		payInAmount:  p.PayInAmount,
		payOutAmount: p.PayOutAmount,
		feeAmount:    p.FeeAmount,
		feeMode:      p.FeeMode,
		payer:        p.Payer,
		merchant:     p.Merchant,
		treasury:     p.Treasury,
		settledAt:    p.SettledAt.UTC(),
	}, nil
}

// SettlementID 決済IDを返す
func (r *Result) SettlementID() string {
	return r.settlementID
}

// OrderID 注文IDを返す
func (r *Result) OrderID() string {
	return r.orderID
}

// PayInMint 支払い通貨を返す
func (r *Result) PayInMint() solana.PublicKey {
	return r.payInMint
}

// PayOutMint 受取通貨を返す
func (r *Result) PayOutMint() solana.PublicKey {
	return r.payOutMint
}

// PayInAmount 支払い額を返す
func (r *Result) PayInAmount() uint64 {
	return r.payInAmount
}

// PayOutAmount 正味受取額を返す
func (r *Result) PayOutAmount() uint64 {
	return r.payOutAmount
}

// FeeAmount 手数料を返す
// pre_swap では支払い通貨建て、post_swap では受取通貨建て
func (r *Result) FeeAmount() uint64 {
	return r.feeAmount
}

// FeeMode 手数料モードを返す
func (r *Result) FeeMode() FeeMode {
	return r.feeMode
}

// Payer 支払者を返す
func (r *Result) Payer() solana.PublicKey {
	return r.payer
}

// Merchant 加盟店を返す
func (r *Result) Merchant() solana.PublicKey {
	return r.merchant
}

// Treasury 手数料受取アカウントを返す
func (r *Result) Treasury() solana.PublicKey {
	return r.treasury
}

// SettledAt 決済日時を返す
func (r *Result) SettledAt() time.Time {
	return r.settledAt
}
