package ledger

import (
	"context"
)

// TransactionManager トランザクション管理インターフェース
// fn に渡される ctx にはトランザクションが紐づいており、
// リポジトリはその ctx を使う限り同一トランザクションで動作する
type TransactionManager interface {
	// WithTransaction トランザクション内で関数を実行
	// fn がエラーを返すかpanicした場合はロールバックする
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
