package account

import "errors"

var (
	// ErrAccountNotFound アカウントが見つからないエラー
	ErrAccountNotFound = errors.New("account not found")
	// ErrInsufficientBalance 残高不足エラー
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvalidAmount 無効な金額エラー
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidAddress 無効なアドレスエラー
	ErrInvalidAddress = errors.New("invalid address")
	// ErrBalanceOutOfRange 残高が範囲外
	ErrBalanceOutOfRange = errors.New("balance out of range")
	// ErrMintMismatch ミントが一致しない
	ErrMintMismatch = errors.New("mint mismatch")
	// ErrOwnerMismatch 署名者がアカウント所有者ではない
	ErrOwnerMismatch = errors.New("owner mismatch")
	// ErrVersionConflict 楽観的ロックの競合
	ErrVersionConflict = errors.New("version conflict")
)
