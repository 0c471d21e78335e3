package account

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// AccountRepository トークンアカウントリポジトリインターフェース
type AccountRepository interface {
	// FindByAddress アドレスでアカウントを取得（トランザクション内では行ロックを取得）
	FindByAddress(ctx context.Context, address solana.PublicKey) (*Account, error)

	// Save 残高を保存（楽観的ロック対応）
	Save(ctx context.Context, account *Account) error

	// Create 新しいアカウントを作成
	Create(ctx context.Context, account *Account) error
}
