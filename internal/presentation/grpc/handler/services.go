package handler

import (
	"context"

	historyapp "swap-settlement/internal/application/history"
	settlementapp "swap-settlement/internal/application/settlement"
)

// SettlementService 決済ユースケース
type SettlementService interface {
	Settle(ctx context.Context, req *settlementapp.SettleRequest) (*settlementapp.SettleResponse, error)
}

// HistoryService 決済記録の参照ユースケース
type HistoryService interface {
	GetSettlement(ctx context.Context, req *historyapp.GetSettlementRequest) (*historyapp.SettlementItem, error)
	ListMerchantSettlements(ctx context.Context, req *historyapp.ListSettlementsRequest) (*historyapp.ListSettlementsResponse, error)
}
