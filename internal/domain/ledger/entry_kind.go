package ledger

import (
	"fmt"
)

// EntryKind 台帳エントリの種別を表す値オブジェクト
type EntryKind string

const (
	EntryKindSwapIn  EntryKind = "swap_in"  // スワップ入力
	EntryKindSwapOut EntryKind = "swap_out" // スワップ出力
	EntryKindFee     EntryKind = "fee"      // 手数料
	EntryKindNet     EntryKind = "net"      // 加盟店への送金
)

// NewEntryKind 新しいEntryKindを作成
func NewEntryKind(s string) (EntryKind, error) {
	k := EntryKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("invalid entry kind: %s", s)
	}
	return k, nil
}

// String 文字列表現を返す
func (k EntryKind) String() string {
	return string(k)
}

// Valid 有効な種別かどうかを返す
func (k EntryKind) Valid() bool {
	switch k {
	case EntryKindSwapIn, EntryKindSwapOut, EntryKindFee, EntryKindNet:
		return true
	default:
		return false
	}
}
