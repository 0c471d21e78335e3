package settlement

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"swap-settlement/internal/domain/venue"
)

// SettlementAccounts 一回の決済に関わるアカウント群
type SettlementAccounts struct {
	Payer           solana.PublicKey // 支払者（Source と Destination の所有者）
	Source          solana.PublicKey // 支払い通貨のトークンアカウント
	Destination     solana.PublicKey // スワップ出力を受け取るトークンアカウント
	Treasury        solana.PublicKey // 手数料の受取先
	MerchantAccount solana.PublicKey // 加盟店のトークンアカウント
	PayInMint       solana.PublicKey
	PayOutMint      solana.PublicKey
	Venue           venue.Accounts
}

// Validate アカウント群の静的な整合性を検証
// merchantRequired が false の場合、加盟店アカウントは省略できる
func (a *SettlementAccounts) Validate(merchantRequired bool) error {
	if a.Payer.IsZero() || a.Source.IsZero() || a.Destination.IsZero() || a.Treasury.IsZero() {
		return fmt.Errorf("%w: payer, source, destination and treasury are required", ErrInvalidRequest)
	}
	if a.PayInMint.IsZero() || a.PayOutMint.IsZero() {
		return fmt.Errorf("%w: mints are required", ErrInvalidRequest)
	}
	if a.PayInMint.Equals(a.PayOutMint) {
		return fmt.Errorf("%w: pay in and pay out mints must differ", ErrInvalidRequest)
	}
	if merchantRequired && a.MerchantAccount.IsZero() {
		return fmt.Errorf("%w: merchant account is required", ErrInvalidRequest)
	}

	seen := map[solana.PublicKey]struct{}{}
	for _, pk := range []solana.PublicKey{a.Source, a.Destination, a.Treasury, a.MerchantAccount} {
		if pk.IsZero() {
			continue
		}
		if _, ok := seen[pk]; ok {
			return fmt.Errorf("%w: settlement accounts must be distinct", ErrInvalidRequest)
		}
		seen[pk] = struct{}{}
	}

	if err := a.Venue.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}
