package auth

// GenerateTokenRequest トークン生成リクエスト
// Signature は LoginMessage(Timestamp) に対する支払者の署名（base58）
type GenerateTokenRequest struct {
	Payer     string
	Timestamp int64
	Signature string
}

// GenerateTokenResponse トークン生成レスポンス
type GenerateTokenResponse struct {
	Token     string
	ExpiresIn int64  // 秒単位
	TokenType string // "Bearer"
}
