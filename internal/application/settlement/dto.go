package settlement

import (
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"

	domain "swap-settlement/internal/domain/settlement"
	"swap-settlement/internal/domain/venue"
)

// SettleRequest 決済リクエスト
type SettleRequest struct {
	OrderID         string        `json:"order_id"`
	PayInAmount     uint64        `json:"pay_in_amount"`
	PayOutAmount    uint64        `json:"pay_out_amount"`
	MinPayOutAmount uint64        `json:"min_pay_out_amount"`
	Merchant        string        `json:"merchant"`
	Expiry          int64         `json:"expiry"`
	Payer           string        `json:"-"` // 認証済みの支払者
	Accounts        AccountsInput `json:"accounts"`
}

// AccountsInput 決済に使うアカウント群（base58）
type AccountsInput struct {
	Source          string             `json:"source"`
	Destination     string             `json:"destination"`
	Treasury        string             `json:"treasury"`
	MerchantAccount string             `json:"merchant_account"`
	PayInMint       string             `json:"pay_in_mint"`
	PayOutMint      string             `json:"pay_out_mint"`
	Venue           VenueAccountsInput `json:"venue"`
}

// VenueAccountsInput スワップ先のアカウント群（base58）
type VenueAccountsInput struct {
	AmmID                string `json:"amm_id"`
	AmmAuthority         string `json:"amm_authority"`
	AmmOpenOrders        string `json:"amm_open_orders"`
	AmmTargetOrders      string `json:"amm_target_orders"`
	PoolCoinTokenAccount string `json:"pool_coin_token_account"`
	PoolPcTokenAccount   string `json:"pool_pc_token_account"`
	SerumProgram         string `json:"serum_program"`
	SerumMarket          string `json:"serum_market"`
	SerumBids            string `json:"serum_bids"`
	SerumAsks            string `json:"serum_asks"`
	SerumEventQueue      string `json:"serum_event_queue"`
	SerumCoinVault       string `json:"serum_coin_vault"`
	SerumPcVault         string `json:"serum_pc_vault"`
	SerumVaultSigner     string `json:"serum_vault_signer"`
}

// SettleResponse 決済レスポンス
type SettleResponse struct {
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
	Replayed     bool      `json:"replayed"`
	Status       string    `json:"status"`
}

func newSettleResponse(r *domain.Result, replayed bool) *SettleResponse {
	return &SettleResponse{
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
		Replayed:     replayed,
		Status:       "completed",
	}
}

// toDomain リクエストをドメインの値に変換
func (req *SettleRequest) toDomain() (*domain.PaymentRequest, *domain.SettlementAccounts, error) {
	p := keyParser{}
	merchant := p.required("merchant", req.Merchant)
	accts := &domain.SettlementAccounts{
		Payer:           p.required("payer", req.Payer),
		Source:          p.required("accounts.source", req.Accounts.Source),
		Destination:     p.required("accounts.destination", req.Accounts.Destination),
		Treasury:        p.required("accounts.treasury", req.Accounts.Treasury),
		MerchantAccount: p.optional("accounts.merchant_account", req.Accounts.MerchantAccount),
		PayInMint:       p.required("accounts.pay_in_mint", req.Accounts.PayInMint),
		PayOutMint:      p.required("accounts.pay_out_mint", req.Accounts.PayOutMint),
		Venue:           req.Accounts.Venue.toDomain(&p),
	}
	if p.err != nil {
		return nil, nil, p.err
	}

	payReq, err := domain.NewPaymentRequest(
		req.OrderID,
		req.PayInAmount,
		req.PayOutAmount,
		merchant,
		req.Expiry,
		req.MinPayOutAmount,
	)
	if err != nil {
		return nil, nil, err
	}
	return payReq, accts, nil
}

func (v VenueAccountsInput) toDomain(p *keyParser) venue.Accounts {
	return venue.Accounts{
		AmmID:                p.required("accounts.venue.amm_id", v.AmmID),
		AmmAuthority:         p.required("accounts.venue.amm_authority", v.AmmAuthority),
		AmmOpenOrders:        p.optional("accounts.venue.amm_open_orders", v.AmmOpenOrders),
		AmmTargetOrders:      p.optional("accounts.venue.amm_target_orders", v.AmmTargetOrders),
		PoolCoinTokenAccount: p.required("accounts.venue.pool_coin_token_account", v.PoolCoinTokenAccount),
		PoolPcTokenAccount:   p.required("accounts.venue.pool_pc_token_account", v.PoolPcTokenAccount),
		SerumProgram:         p.optional("accounts.venue.serum_program", v.SerumProgram),
		SerumMarket:          p.optional("accounts.venue.serum_market", v.SerumMarket),
		SerumBids:            p.optional("accounts.venue.serum_bids", v.SerumBids),
		SerumAsks:            p.optional("accounts.venue.serum_asks", v.SerumAsks),
		SerumEventQueue:      p.optional("accounts.venue.serum_event_queue", v.SerumEventQueue),
		SerumCoinVault:       p.optional("accounts.venue.serum_coin_vault", v.SerumCoinVault),
		SerumPcVault:         p.optional("accounts.venue.serum_pc_vault", v.SerumPcVault),
		SerumVaultSigner:     p.optional("accounts.venue.serum_vault_signer", v.SerumVaultSigner),
	}
}

// keyParser base58アドレスを解析し、最初のエラーを保持する
type keyParser struct {
	err error
}

func (p *keyParser) required(field, value string) solana.PublicKey {
	if value == "" {
		p.fail(fmt.Errorf("%w: %s is required", domain.ErrInvalidRequest, field))
		return solana.PublicKey{}
	}
	return p.optional(field, value)
}

func (p *keyParser) optional(field, value string) solana.PublicKey {
	if value == "" || p.err != nil {
		return solana.PublicKey{}
	}
	pk, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		p.fail(fmt.Errorf("%w: %s is not a valid address", domain.ErrInvalidRequest, field))
		return solana.PublicKey{}
	}
	return pk
}

func (p *keyParser) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}
