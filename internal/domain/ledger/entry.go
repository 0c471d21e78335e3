package ledger

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// Entry 台帳エントリエンティティ
// 一回の送金（from から to へ amount）を記録する
type Entry struct {
	entryID          string
	reference        string
	kind             EntryKind
	from             solana.PublicKey
	to               solana.PublicKey
	mint             solana.PublicKey
	amount           uint64
	fromBalanceAfter uint64
	toBalanceAfter   uint64
	createdAt        time.Time
}

// NewEntry 新しいEntryエンティティを作成
func NewEntry(
	entryID string,
	reference string,
	kind EntryKind,
	from, to, mint solana.PublicKey,
	amount uint64,
	fromBalanceAfter, toBalanceAfter uint64,
	createdAt time.Time,
) (*Entry, error) {
	if entryID == "" || reference == "" || !kind.Valid() {
		return nil, ErrInvalidEntry
	}
	if from.IsZero() || to.IsZero() || mint.IsZero() || from.Equals(to) {
		return nil, ErrInvalidEntry
	}
	if amount == 0 {
		return nil, ErrInvalidEntry
	}
	return &Entry{
		entryID:          entryID,
		reference:        reference,
		kind:             kind,
		from:             from,
		to:               to,
		mint:             mint,
		amount:           amount,
		fromBalanceAfter: fromBalanceAfter,
		toBalanceAfter:   toBalanceAfter,
		createdAt:        createdAt,
	}, nil
}

// EntryID エントリIDを返す
func (e *Entry) EntryID() string {
	return e.entryID
}

// Reference 紐づく決済IDを返す
func (e *Entry) Reference() string {
	return e.reference
}

// Kind 種別を返す
func (e *Entry) Kind() EntryKind {
	return e.kind
}

// From 送金元アカウントを返す
func (e *Entry) From() solana.PublicKey {
	return e.from
}

// To 送金先アカウントを返す
func (e *Entry) To() solana.PublicKey {
	return e.to
}

// Mint ミントを返す
func (e *Entry) Mint() solana.PublicKey {
	return e.mint
}

// Amount 金額を返す
func (e *Entry) Amount() uint64 {
	return e.amount
}

// FromBalanceAfter 送金後の送金元残高を返す
func (e *Entry) FromBalanceAfter() uint64 {
	return e.fromBalanceAfter
}

// ToBalanceAfter 送金後の送金先残高を返す
func (e *Entry) ToBalanceAfter() uint64 {
	return e.toBalanceAfter
}

// CreatedAt 作成日時を返す
func (e *Entry) CreatedAt() time.Time {
	return e.createdAt
}
