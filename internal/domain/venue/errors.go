package venue

import "errors"

var (
	// ErrInvalidSwapCall スワップ呼び出しの構成が不正
	ErrInvalidSwapCall = errors.New("invalid swap call")
	// ErrProgramMismatch 呼び出し先プログラムが一致しない
	ErrProgramMismatch = errors.New("venue program mismatch")
	// ErrUnknownPool 未登録のプール
	ErrUnknownPool = errors.New("unknown pool")
	// ErrInsufficientLiquidity 流動性不足
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	// ErrSlippageExceeded 受取額が下限を下回る
	ErrSlippageExceeded = errors.New("slippage exceeded")
)
