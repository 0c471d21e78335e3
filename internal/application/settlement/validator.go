package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"

	"swap-settlement/internal/domain/account"
	domain "swap-settlement/internal/domain/settlement"
)

// Validator 決済リクエストの検証
type Validator struct {
	accountRepo   account.AccountRepository
	treasuryOwner solana.PublicKey
	feeMode       domain.FeeMode
}

// NewValidator 新しいValidatorを作成
func NewValidator(accountRepo account.AccountRepository, treasuryOwner solana.PublicKey, feeMode domain.FeeMode) *Validator {
	return &Validator{
		accountRepo:   accountRepo,
		treasuryOwner: treasuryOwner,
		feeMode:       feeMode,
	}
}

// Validate 台帳に触れずに検証する
// 期限切れは他のどの検証よりも先に判定する
func (v *Validator) Validate(req *domain.PaymentRequest, accts *domain.SettlementAccounts, now time.Time) error {
	if req.IsExpired(now) {
		return fmt.Errorf("%w: expiry %d is before %d", domain.ErrExpired, req.Expiry(), now.Unix())
	}
	return accts.Validate(v.feeMode == domain.FeeModePostSwap)
}

// CheckAccounts 台帳上のアカウントの所有者とミントを検証する
// 最初の書き込みより前にトランザクション内で呼ばれる
func (v *Validator) CheckAccounts(ctx context.Context, req *domain.PaymentRequest, accts *domain.SettlementAccounts) error {
	feeMint := accts.PayOutMint
	if v.feeMode == domain.FeeModePreSwap {
		feeMint = accts.PayInMint
	}

	checks := []struct {
		name     string
		address  solana.PublicKey
		owner    solana.PublicKey
		mint     solana.PublicKey
		payerKey bool
	}{
		{name: "source", address: accts.Source, owner: accts.Payer, mint: accts.PayInMint, payerKey: true},
		{name: "destination", address: accts.Destination, owner: accts.Payer, mint: accts.PayOutMint, payerKey: true},
		{name: "treasury", address: accts.Treasury, owner: v.treasuryOwner, mint: feeMint},
	}
	if v.feeMode == domain.FeeModePostSwap {
		checks = append(checks, struct {
			name     string
			address  solana.PublicKey
			owner    solana.PublicKey
			mint     solana.PublicKey
			payerKey bool
		}{name: "merchant account", address: accts.MerchantAccount, owner: req.Merchant(), mint: accts.PayOutMint})
	}

	for _, c := range checks {
		acc, err := v.accountRepo.FindByAddress(ctx, c.address)
		if errors.Is(err, account.ErrAccountNotFound) {
			return fmt.Errorf("%w: %s account %s not found", domain.ErrInvalidRequest, c.name, c.address)
		}
		if err != nil {
			return err
		}
		if !acc.IsOwnedBy(c.owner) {
			if c.payerKey {
				return fmt.Errorf("%w: payer does not own %s account", domain.ErrUnauthorized, c.name)
			}
			return fmt.Errorf("%w: %s account owner mismatch", domain.ErrInvalidRequest, c.name)
		}
		if !acc.Mint().Equals(c.mint) {
			return fmt.Errorf("%w: %s account mint mismatch", domain.ErrInvalidRequest, c.name)
		}
	}
	return nil
}
