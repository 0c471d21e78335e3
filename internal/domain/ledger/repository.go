package ledger

import (
	"context"
)

// EntryRepository 台帳エントリリポジトリインターフェース
type EntryRepository interface {
	// Save エントリを保存
	Save(ctx context.Context, entry *Entry) error

	// FindByReference 決済IDでエントリ一覧を取得（作成順）
	FindByReference(ctx context.Context, reference string) ([]*Entry, error)
}
