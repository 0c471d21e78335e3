package handler

import (
	"strconv"
	"time"

	historyapp "swap-settlement/internal/application/history"
	settlementapp "swap-settlement/internal/application/settlement"
)

// SettleRequest 決済リクエスト
// @Description 金額は精度を落とさないよう10進文字列で受け取る
type SettleRequest struct {
	OrderID         string                      `json:"order_id" example:"order-20261019-0001"`
	PayInAmount     string                      `json:"pay_in_amount" example:"10000"`
	PayOutAmount    string                      `json:"pay_out_amount,omitempty" example:"9500"`
	MinPayOutAmount string                      `json:"min_pay_out_amount,omitempty" example:"9400"`
	Merchant        string                      `json:"merchant" example:"7Np41oeYqPefeNQEHSv1UDhYrehxin3NStELsSKCT4K2"`
	Expiry          int64                       `json:"expiry" example:"1760864400"`
	Accounts        settlementapp.AccountsInput `json:"accounts"`
}

// SettlementResponse 決済結果
// @Description 決済結果
type SettlementResponse struct {
	SettlementID string    `json:"settlement_id" example:"3f1c2b7e-6a7d-4f0e-9b61-2f1f0f7e9a11"`
	OrderID      string    `json:"order_id" example:"order-20261019-0001"`
	PayInMint    string    `json:"pay_in_mint"`
	PayOutMint   string    `json:"pay_out_mint"`
	PayInAmount  string    `json:"pay_in_amount" example:"10000"`
	PayOutAmount string    `json:"pay_out_amount" example:"9405"`
	FeeAmount    string    `json:"fee_amount" example:"95"`
	FeeMode      string    `json:"fee_mode" example:"post_swap"`
	Payer        string    `json:"payer"`
	Merchant     string    `json:"merchant"`
	Treasury     string    `json:"treasury"`
	SettledAt    time.Time `json:"settled_at"`
	Replayed     bool      `json:"replayed,omitempty"`
	Status       string    `json:"status,omitempty" example:"completed"`
}

// EntryResponse 台帳エントリ
// @Description 台帳エントリ
type EntryResponse struct {
	EntryID          string    `json:"entry_id"`
	Kind             string    `json:"kind" example:"fee"`
	From             string    `json:"from"`
	To               string    `json:"to"`
	Mint             string    `json:"mint"`
	Amount           string    `json:"amount" example:"95"`
	FromBalanceAfter string    `json:"from_balance_after"`
	ToBalanceAfter   string    `json:"to_balance_after"`
	CreatedAt        time.Time `json:"created_at"`
}

// ListEntriesResponse 台帳エントリ一覧
// @Description 決済に紐づく台帳エントリ一覧
type ListEntriesResponse struct {
	SettlementID string          `json:"settlement_id"`
	OrderID      string          `json:"order_id"`
	Entries      []EntryResponse `json:"entries"`
}

// ListSettlementsResponse 決済記録一覧
// @Description 加盟店の決済記録一覧
type ListSettlementsResponse struct {
	Settlements []SettlementResponse `json:"settlements"`
	Limit       int                  `json:"limit" example:"50"`
	Offset      int                  `json:"offset" example:"0"`
}

func formatAmount(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func newSettlementResponseFromSettle(r *settlementapp.SettleResponse) SettlementResponse {
	return SettlementResponse{
		SettlementID: r.SettlementID,
		OrderID:      r.OrderID,
		PayInMint:    r.PayInMint,
		PayOutMint:   r.PayOutMint,
		PayInAmount:  formatAmount(r.PayInAmount),
		PayOutAmount: formatAmount(r.PayOutAmount),
		FeeAmount:    formatAmount(r.FeeAmount),
		FeeMode:      r.FeeMode,
		Payer:        r.Payer,
		Merchant:     r.Merchant,
		Treasury:     r.Treasury,
		SettledAt:    r.SettledAt,
		Replayed:     r.Replayed,
		Status:       r.Status,
	}
}

func newSettlementResponseFromItem(item *historyapp.SettlementItem) SettlementResponse {
	return SettlementResponse{
		SettlementID: item.SettlementID,
		OrderID:      item.OrderID,
		PayInMint:    item.PayInMint,
		PayOutMint:   item.PayOutMint,
		PayInAmount:  formatAmount(item.PayInAmount),
		PayOutAmount: formatAmount(item.PayOutAmount),
		FeeAmount:    formatAmount(item.FeeAmount),
		FeeMode:      item.FeeMode,
		Payer:        item.Payer,
		Merchant:     item.Merchant,
		Treasury:     item.Treasury,
		SettledAt:    item.SettledAt,
	}
}

func newEntryResponse(e *historyapp.EntryItem) EntryResponse {
	return EntryResponse{
		EntryID:          e.EntryID,
		Kind:             e.Kind,
		From:             e.From,
		To:               e.To,
		Mint:             e.Mint,
		Amount:           formatAmount(e.Amount),
		FromBalanceAfter: formatAmount(e.FromBalanceAfter),
		ToBalanceAfter:   formatAmount(e.ToBalanceAfter),
		CreatedAt:        e.CreatedAt,
	}
}
