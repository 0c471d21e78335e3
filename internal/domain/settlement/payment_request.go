package settlement

import (
	"fmt"
	"regexp"
	"time"

	"github.com/gagliardetto/solana-go"
)

var orderIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-\.:]{1,64}$`)

// PaymentRequest 決済リクエスト値オブジェクト
type PaymentRequest struct {
	orderID         string
	payInAmount     uint64
	payOutAmount    uint64 // 参考値、検証には使わない
	merchant        solana.PublicKey
	expiry          int64 // unix秒
	minPayOutAmount uint64
}

// NewPaymentRequest 新しいPaymentRequestを作成
func NewPaymentRequest(
	orderID string,
	payInAmount uint64,
	payOutAmount uint64,
	merchant solana.PublicKey,
	expiry int64,
	minPayOutAmount uint64,
) (*PaymentRequest, error) {
	if !orderIDRegex.MatchString(orderID) {
		return nil, fmt.Errorf("%w: invalid order id", ErrInvalidRequest)
	}
	if payInAmount == 0 {
		return nil, fmt.Errorf("%w: pay in amount must be positive", ErrInvalidRequest)
	}
	if merchant.IsZero() {
		return nil, fmt.Errorf("%w: merchant is required", ErrInvalidRequest)
	}
	return &PaymentRequest{
		orderID:         orderID,
		payInAmount:     payInAmount,
		payOutAmount:    payOutAmount,
		merchant:        merchant,
		expiry:          expiry,
		minPayOutAmount: minPayOutAmount,
	}, nil
}

// OrderID 注文IDを返す
func (r *PaymentRequest) OrderID() string {
	return r.orderID
}

// PayInAmount 支払い額を返す
func (r *PaymentRequest) PayInAmount() uint64 {
	return r.payInAmount
}

// PayOutAmount 見積もり受取額を返す
func (r *PaymentRequest) PayOutAmount() uint64 {
	return r.payOutAmount
}

// Merchant 加盟店を返す
func (r *PaymentRequest) Merchant() solana.PublicKey {
	return r.merchant
}

// Expiry 有効期限（unix秒）を返す
func (r *PaymentRequest) Expiry() int64 {
	return r.expiry
}

// MinPayOutAmount スワップ受取額の下限を返す（0は未指定）
func (r *PaymentRequest) MinPayOutAmount() uint64 {
	return r.minPayOutAmount
}

// IsExpired 指定時刻で期限切れかどうか
// 期限ちょうどは有効
func (r *PaymentRequest) IsExpired(now time.Time) bool {
	return now.Unix() > r.expiry
}

// MustNewPaymentRequest テスト用ヘルパー: NewPaymentRequestを呼び出し、エラーが発生した場合はpanicする
func MustNewPaymentRequest(orderID string, payInAmount, payOutAmount uint64, merchant solana.PublicKey, expiry int64, minPayOutAmount uint64) *PaymentRequest {
	r, err := NewPaymentRequest(orderID, payInAmount, payOutAmount, merchant, expiry, minPayOutAmount)
	if err != nil {
		panic(err)
	}
	return r
}
