package history

import (
	"time"

	"swap-settlement/internal/domain/ledger"
	"swap-settlement/internal/domain/settlement"
)

// GetSettlementRequest 決済記録取得リクエスト
type GetSettlementRequest struct {
	OrderID string
	Payer   string // 空の場合は支払者を問わない（管理API）
}

// SettlementItem 決済記録
type SettlementItem struct {
	SettlementID string    `json:"settlement_id"`
	OrderID      string    `json:"order_id"`
	PayInMint    string    `json:"pay_in_mint"`
	PayOutMint   string    `json:"pay_out_mint"`
	PayInAmount  uint64    `json:"pay_in_amount"`
	PayOutAmount uint64    `json:"pay_out_amount"`
	FeeAmount    uint64    `json:"fee_amount"`
	FeeMode      string    `json:"fee_mode"`
	Payer        string    `json:"payer"`
	Merchant     string    `json:"merchant"`
	Treasury     string    `json:"treasury"`
	SettledAt    time.Time `json:"settled_at"`
}

// EntryItem 台帳エントリ
type EntryItem struct {
	EntryID          string    `json:"entry_id"`
	Kind             string    `json:"kind"`
	From             string    `json:"from"`
	To               string    `json:"to"`
	Mint             string    `json:"mint"`
	Amount           uint64    `json:"amount"`
	FromBalanceAfter uint64    `json:"from_balance_after"`
	ToBalanceAfter   uint64    `json:"to_balance_after"`
	CreatedAt        time.Time `json:"created_at"`
}

// ListEntriesResponse 台帳エントリ一覧レスポンス
type ListEntriesResponse struct {
	SettlementID string       `json:"settlement_id"`
	OrderID      string       `json:"order_id"`
	Entries      []*EntryItem `json:"entries"`
}

// ListSettlementsRequest 加盟店の決済記録一覧リクエスト
type ListSettlementsRequest struct {
	Merchant string
	Limit    int
	Offset   int
}

// ListSettlementsResponse 加盟店の決済記録一覧レスポンス
type ListSettlementsResponse struct {
	Settlements []*SettlementItem `json:"settlements"`
	Limit       int               `json:"limit"`
	Offset      int               `json:"offset"`
}

func newSettlementItem(r *settlement.Result) *SettlementItem {
	return &SettlementItem{
		SettlementID: r.SettlementID(),
		OrderID:      r.OrderID(),
		PayInMint:    r.PayInMint().String(),
		PayOutMint:   r.PayOutMint().String(),
		PayInAmount:  r.PayInAmount(),
		PayOutAmount: r.PayOutAmount(),
		FeeAmount:    r.FeeAmount(),
		FeeMode:      r.FeeMode().String(),
		Payer:        r.Payer().String(),
		Merchant:     r.Merchant().String(),
		Treasury:     r.Treasury().String(),
		SettledAt:    r.SettledAt(),
	}
}

func newEntryItem(e *ledger.Entry) *EntryItem {
	return &EntryItem{
		EntryID:          e.EntryID(),
		Kind:             e.Kind().String(),
		From:             e.From().String(),
		To:               e.To().String(),
		Mint:             e.Mint().String(),
		Amount:           e.Amount(),
		FromBalanceAfter: e.FromBalanceAfter(),
		ToBalanceAfter:   e.ToBalanceAfter(),
		CreatedAt:        e.CreatedAt(),
	}
}
