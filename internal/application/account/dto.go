package account

// GetAccountRequest アカウント取得リクエスト
type GetAccountRequest struct {
	Address string
	Owner   string // 空の場合は所有者を問わない
}

// GetAccountResponse アカウント取得レスポンス
type GetAccountResponse struct {
	Address string `json:"address"`
	Mint    string `json:"mint"`
	Owner   string `json:"owner"`
	Balance uint64 `json:"balance"`
}
