package settlement

import "errors"

var (
	// ErrExpired 決済期限切れ
	ErrExpired = errors.New("payment expired")
	// ErrInvalidRequest リクエストが不正
	ErrInvalidRequest = errors.New("invalid payment request")
	// ErrUnauthorized 支払者がアカウントの引き出し権限を持たない
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSwapFailed スワップ失敗
	ErrSwapFailed = errors.New("swap failed")
	// ErrReconciliationInvalid スワップ前後の残高差分が不正
	ErrReconciliationInvalid = errors.New("reconciliation invalid")
	// ErrTransferFailed 分配送金失敗
	ErrTransferFailed = errors.New("transfer failed")
	// ErrArithmeticOverflow 手数料計算のオーバーフロー
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
	// ErrSettlementNotFound 決済記録が見つからない
	ErrSettlementNotFound = errors.New("settlement not found")
	// ErrDuplicateOrder 同じ注文IDの決済記録が既に存在する
	ErrDuplicateOrder = errors.New("duplicate order")
)
