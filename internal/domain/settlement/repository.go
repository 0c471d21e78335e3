package settlement

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// ResultRepository 決済記録リポジトリインターフェース（追記のみ）
type ResultRepository interface {
	// Save 決済記録を保存（注文IDが重複する場合は ErrDuplicateOrder）
	Save(ctx context.Context, result *Result) error

	// FindByOrderID 注文IDで決済記録を取得
	FindByOrderID(ctx context.Context, orderID string) (*Result, error)

	// FindByMerchant 加盟店の決済記録一覧を取得（新しい順、ページネーション対応）
	FindByMerchant(ctx context.Context, merchant solana.PublicKey, limit, offset int) ([]*Result, error)
}

// Sink 決済完了の通知先
type Sink interface {
	Publish(ctx context.Context, result *Result) error
}
