package venue

import (
	"github.com/gagliardetto/solana-go"
)

// Accounts スワップ先のプール・オーダーブックのアカウント群
// 決済処理はこれらを解釈せず、そのままスワップ先へ渡す
type Accounts struct {
	AmmID                solana.PublicKey `json:"amm_id"`
	AmmAuthority         solana.PublicKey `json:"amm_authority"`
	AmmOpenOrders        solana.PublicKey `json:"amm_open_orders"`
	AmmTargetOrders      solana.PublicKey `json:"amm_target_orders"`
	PoolCoinTokenAccount solana.PublicKey `json:"pool_coin_token_account"`
	PoolPcTokenAccount   solana.PublicKey `json:"pool_pc_token_account"`
	SerumProgram         solana.PublicKey `json:"serum_program"`
	SerumMarket          solana.PublicKey `json:"serum_market"`
	SerumBids            solana.PublicKey `json:"serum_bids"`
	SerumAsks            solana.PublicKey `json:"serum_asks"`
	SerumEventQueue      solana.PublicKey `json:"serum_event_queue"`
	SerumCoinVault       solana.PublicKey `json:"serum_coin_vault"`
	SerumPcVault         solana.PublicKey `json:"serum_pc_vault"`
	SerumVaultSigner     solana.PublicKey `json:"serum_vault_signer"`
}

// Validate 必須アカウントが指定されているかを検証
// オーダーブック側のアカウントはスワップ先によっては使われないため任意
func (a Accounts) Validate() error {
	required := []solana.PublicKey{
		a.AmmID,
		a.AmmAuthority,
		a.PoolCoinTokenAccount,
		a.PoolPcTokenAccount,
	}
	for _, pk := range required {
		if pk.IsZero() {
			return ErrInvalidSwapCall
		}
	}
	return nil
}
