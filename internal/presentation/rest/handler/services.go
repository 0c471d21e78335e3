package handler

import (
	"context"

	accountapp "swap-settlement/internal/application/account"
	authapp "swap-settlement/internal/application/auth"
	historyapp "swap-settlement/internal/application/history"
	settlementapp "swap-settlement/internal/application/settlement"
)

// AuthService 認証ユースケース
type AuthService interface {
	GenerateToken(ctx context.Context, req *authapp.GenerateTokenRequest) (*authapp.GenerateTokenResponse, error)
}

// SettlementService 決済ユースケース
type SettlementService interface {
	Settle(ctx context.Context, req *settlementapp.SettleRequest) (*settlementapp.SettleResponse, error)
}

// HistoryService 決済記録の参照ユースケース
type HistoryService interface {
	GetSettlement(ctx context.Context, req *historyapp.GetSettlementRequest) (*historyapp.SettlementItem, error)
	ListEntries(ctx context.Context, req *historyapp.GetSettlementRequest) (*historyapp.ListEntriesResponse, error)
	ListMerchantSettlements(ctx context.Context, req *historyapp.ListSettlementsRequest) (*historyapp.ListSettlementsResponse, error)
}

// AccountService アカウント参照ユースケース
type AccountService interface {
	GetAccount(ctx context.Context, req *accountapp.GetAccountRequest) (*accountapp.GetAccountResponse, error)
}
