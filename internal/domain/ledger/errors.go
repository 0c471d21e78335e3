package ledger

import "errors"

var (
	// ErrInvalidEntry 無効な台帳エントリ
	ErrInvalidEntry = errors.New("invalid ledger entry")
	// ErrEntryNotFound 台帳エントリが見つからない
	ErrEntryNotFound = errors.New("ledger entry not found")
)
