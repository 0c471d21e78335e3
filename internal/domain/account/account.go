package account

import (
	"math"

	"github.com/gagliardetto/solana-go"
)

// MaxBalance 最大残高
// 永続化層が符号付き64bit整数で保持するため int64 の上限に揃える
const MaxBalance uint64 = math.MaxInt64

// Account トークンアカウントエンティティ
// 単一ミントの残高を保持し、所有者のみが引き出しを承認できる
type Account struct {
	address solana.PublicKey
	mint    solana.PublicKey
	owner   solana.PublicKey
	balance uint64
	version int // 楽観的ロック用
}

// NewAccount 新しいAccountエンティティを作成
func NewAccount(address, mint, owner solana.PublicKey, balance uint64, version int) (*Account, error) {
	if address.IsZero() || mint.IsZero() || owner.IsZero() {
		return nil, ErrInvalidAddress
	}
	if balance > MaxBalance {
		return nil, ErrBalanceOutOfRange
	}
	return &Account{
		address: address,
		mint:    mint,
		owner:   owner,
		balance: balance,
		version: version,
	}, nil
}

// Address アカウントアドレスを返す
func (a *Account) Address() solana.PublicKey {
	return a.address
}

// Mint ミントを返す
func (a *Account) Mint() solana.PublicKey {
	return a.mint
}

// Owner 所有者を返す
func (a *Account) Owner() solana.PublicKey {
	return a.owner
}

// Balance 残高を返す
func (a *Account) Balance() uint64 {
	return a.balance
}

// Version バージョンを返す（楽観的ロック用）
func (a *Account) Version() int {
	return a.version
}

// IsOwnedBy 指定した署名者が所有者かどうか
func (a *Account) IsOwnedBy(owner solana.PublicKey) bool {
	return a.owner.Equals(owner)
}

// Debit 残高を減らす
func (a *Account) Debit(amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	if a.balance < amount {
		return ErrInsufficientBalance
	}
	a.balance -= amount
	return nil
}

// Credit 残高を増やす
func (a *Account) Credit(amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	if amount > MaxBalance || a.balance > MaxBalance-amount {
		return ErrBalanceOutOfRange
	}
	a.balance += amount
	return nil
}

// IncrementVersion バージョンをインクリメント（保存成功後に呼ばれる）
func (a *Account) IncrementVersion() {
	a.version++
}

// MustNewAccount テスト用ヘルパー: NewAccountを呼び出し、エラーが発生した場合はpanicする
func MustNewAccount(address, mint, owner solana.PublicKey, balance uint64, version int) *Account {
	a, err := NewAccount(address, mint, owner, balance, version)
	if err != nil {
		panic(err)
	}
	return a
}
