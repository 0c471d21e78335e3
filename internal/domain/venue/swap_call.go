package venue

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// SwapCall スワップ先への呼び出し記述子
type SwapCall struct {
	ProgramID    solana.PublicKey
	Accounts     Accounts
	Source       solana.PublicKey // 支払い側トークンアカウント
	Destination  solana.PublicKey // 受取側トークンアカウント
	Authority    solana.PublicKey // Source の所有者
	AmountIn     uint64
	MinAmountOut uint64
	Reference    string // 台帳エントリに記録する決済ID
}

// NewSwapCall 新しいSwapCallを作成
func NewSwapCall(
	programID solana.PublicKey,
	accounts Accounts,
	source, destination, authority solana.PublicKey,
	amountIn, minAmountOut uint64,
	reference string,
) (SwapCall, error) {
	if programID.IsZero() {
		return SwapCall{}, fmt.Errorf("%w: program id is required", ErrInvalidSwapCall)
	}
	if err := accounts.Validate(); err != nil {
		return SwapCall{}, err
	}
	if source.IsZero() || destination.IsZero() || authority.IsZero() {
		return SwapCall{}, fmt.Errorf("%w: source, destination and authority are required", ErrInvalidSwapCall)
	}
	if amountIn == 0 {
		return SwapCall{}, fmt.Errorf("%w: amount in must be positive", ErrInvalidSwapCall)
	}
	return SwapCall{
		ProgramID:    programID,
		Accounts:     accounts,
		Source:       source,
		Destination:  destination,
		Authority:    authority,
		AmountIn:     amountIn,
		MinAmountOut: minAmountOut,
		Reference:    reference,
	}, nil
}

// AccountMetas スワップ命令に渡すアカウント一覧を返す
// 並び順はAMMのswap_base_in命令と同一。未設定のオープンオーダーとターゲットオーダーは省く
func (c SwapCall) AccountMetas() solana.AccountMetaSlice {
	a := c.Accounts
	metas := solana.AccountMetaSlice{
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(a.AmmID, true, false),
		solana.NewAccountMeta(a.AmmAuthority, false, false),
	}
	if !a.AmmOpenOrders.IsZero() {
		metas = append(metas, solana.NewAccountMeta(a.AmmOpenOrders, true, false))
	}
	if !a.AmmTargetOrders.IsZero() {
		metas = append(metas, solana.NewAccountMeta(a.AmmTargetOrders, true, false))
	}
	metas = append(metas,
		solana.NewAccountMeta(a.PoolCoinTokenAccount, true, false),
		solana.NewAccountMeta(a.PoolPcTokenAccount, true, false),
		solana.NewAccountMeta(a.SerumProgram, false, false),
		solana.NewAccountMeta(a.SerumMarket, true, false),
		solana.NewAccountMeta(a.SerumBids, true, false),
		solana.NewAccountMeta(a.SerumAsks, true, false),
		solana.NewAccountMeta(a.SerumEventQueue, true, false),
		solana.NewAccountMeta(a.SerumCoinVault, true, false),
		solana.NewAccountMeta(a.SerumPcVault, true, false),
		solana.NewAccountMeta(a.SerumVaultSigner, false, false),
		solana.NewAccountMeta(c.Source, true, false),
		solana.NewAccountMeta(c.Destination, true, false),
		solana.NewAccountMeta(c.Authority, false, true),
	)
	return metas
}

// CheckAccountMetas 命令のアカウント一覧で権限を確認
// 送金元と送金先およびプールのリザーブは書き込み可能、権限者は署名者でなければならない
func (c SwapCall) CheckAccountMetas() error {
	if c.Source.Equals(c.Destination) {
		return fmt.Errorf("%w: source and destination must differ", ErrInvalidSwapCall)
	}
	metas := c.AccountMetas()
	required := []struct {
		name     string
		key      solana.PublicKey
		writable bool
		signer   bool
	}{
		{name: "source", key: c.Source, writable: true},
		{name: "destination", key: c.Destination, writable: true},
		{name: "pool coin", key: c.Accounts.PoolCoinTokenAccount, writable: true},
		{name: "pool pc", key: c.Accounts.PoolPcTokenAccount, writable: true},
		{name: "authority", key: c.Authority, signer: true},
	}
	for _, r := range required {
		if r.key.IsZero() {
			return fmt.Errorf("%w: %s account is required", ErrInvalidSwapCall, r.name)
		}
		if !hasMeta(metas, r.key, r.writable, r.signer) {
			return fmt.Errorf("%w: %s account lacks required permission", ErrInvalidSwapCall, r.name)
		}
	}
	return nil
}

func hasMeta(metas solana.AccountMetaSlice, key solana.PublicKey, writable, signer bool) bool {
	for _, m := range metas {
		if !m.PublicKey.Equals(key) {
			continue
		}
		if (!writable || m.IsWritable) && (!signer || m.IsSigner) {
			return true
		}
	}
	return false
}

// SwapVenue 外部スワップ先のポート
// 成否のみを返し、受取額は返さない
type SwapVenue interface {
	Swap(ctx context.Context, call SwapCall) error
}
