package history

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"swap-settlement/internal/domain/ledger"
	"swap-settlement/internal/domain/settlement"
	otelinfra "swap-settlement/internal/infrastructure/observability/otel"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

// HistoryApplicationService 決済履歴アプリケーションサービス
type HistoryApplicationService struct {
	resultRepo settlement.ResultRepository
	entryRepo  ledger.EntryRepository
	logger     *otelinfra.Logger
	tracer     trace.Tracer
}

// NewHistoryApplicationService 新しいHistoryApplicationServiceを作成
func NewHistoryApplicationService(
	resultRepo settlement.ResultRepository,
	entryRepo ledger.EntryRepository,
	logger *otelinfra.Logger,
) *HistoryApplicationService {
	return &HistoryApplicationService{
		resultRepo: resultRepo,
		entryRepo:  entryRepo,
		logger:     logger,
		tracer:     otel.Tracer("history-service"),
	}
}

// GetSettlement 注文IDで決済記録を取得
// 支払者が指定されている場合、他人の記録は見つからない扱いにする
func (s *HistoryApplicationService) GetSettlement(ctx context.Context, req *GetSettlementRequest) (*SettlementItem, error) {
	ctx, span := s.tracer.Start(ctx, "HistoryApplicationService.GetSettlement")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", req.OrderID))

	result, err := s.find(ctx, req)
	if err != nil {
		otelinfra.RecordSpanError(span, err)
		return nil, err
	}
	return newSettlementItem(result), nil
}

// ListEntries 決済に紐づく台帳エントリを取得
func (s *HistoryApplicationService) ListEntries(ctx context.Context, req *GetSettlementRequest) (*ListEntriesResponse, error) {
	ctx, span := s.tracer.Start(ctx, "HistoryApplicationService.ListEntries")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", req.OrderID))

	result, err := s.find(ctx, req)
	if err != nil {
		otelinfra.RecordSpanError(span, err)
		return nil, err
	}

	entries, err := s.entryRepo.FindByReference(ctx, result.SettlementID())
	if err != nil {
		otelinfra.RecordSpanError(span, err)
		s.logger.Error(ctx, "Failed to get ledger entries", err, map[string]interface{}{
			"settlement_id": result.SettlementID(),
		})
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}

	items := make([]*EntryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, newEntryItem(e))
	}
	return &ListEntriesResponse{
		SettlementID: result.SettlementID(),
		OrderID:      result.OrderID(),
		Entries:      items,
	}, nil
}

// ListMerchantSettlements 加盟店の決済記録一覧を取得
func (s *HistoryApplicationService) ListMerchantSettlements(ctx context.Context, req *ListSettlementsRequest) (*ListSettlementsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "HistoryApplicationService.ListMerchantSettlements")
	defer span.End()

	span.SetAttributes(
		attribute.String("merchant", req.Merchant),
		attribute.Int("limit", req.Limit),
		attribute.Int("offset", req.Offset),
	)

	merchant, err := solana.PublicKeyFromBase58(req.Merchant)
	if err != nil {
		err = fmt.Errorf("%w: merchant is not a valid address", settlement.ErrInvalidRequest)
		otelinfra.RecordSpanError(span, err)
		return nil, err
	}

	// バリデーション
	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}
	if req.Limit > maxLimit {
		req.Limit = maxLimit
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	results, err := s.resultRepo.FindByMerchant(ctx, merchant, req.Limit, req.Offset)
	if err != nil {
		otelinfra.RecordSpanError(span, err)
		s.logger.Error(ctx, "Failed to list settlements", err, map[string]interface{}{
			"merchant": req.Merchant,
		})
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}

	items := make([]*SettlementItem, 0, len(results))
	for _, r := range results {
		items = append(items, newSettlementItem(r))
	}
	return &ListSettlementsResponse{
		Settlements: items,
		Limit:       req.Limit,
		Offset:      req.Offset,
	}, nil
}

func (s *HistoryApplicationService) find(ctx context.Context, req *GetSettlementRequest) (*settlement.Result, error) {
	result, err := s.resultRepo.FindByOrderID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if req.Payer != "" && result.Payer().String() != req.Payer {
		return nil, settlement.ErrSettlementNotFound
	}
	return result, nil
}
