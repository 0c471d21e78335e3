package notify

import (
	"time"

	"swap-settlement/internal/domain/settlement"
)

// Record 通知先へ送る決済完了レコード
type Record struct {
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

// NewRecord 決済記録から通知レコードを作成
func NewRecord(r *settlement.Result) Record {
	return Record{
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
