package handler

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	historyapp "swap-settlement/internal/application/history"
	settlementapp "swap-settlement/internal/application/settlement"
	"swap-settlement/internal/domain/account"
	"swap-settlement/internal/domain/settlement"
	"swap-settlement/internal/presentation/grpc/interceptor"
	"swap-settlement/internal/presentation/grpc/pb"
)

// SettlementHandler gRPC決済サービスハンドラー
type SettlementHandler struct {
	pb.UnimplementedSettlementServiceServer
	settlementService SettlementService
	historyService    HistoryService
}

// NewSettlementHandler 新しいSettlementHandlerを作成
func NewSettlementHandler(settlementService SettlementService, historyService HistoryService) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
		historyService:    historyService,
	}
}

// Settle 決済実行
func (h *SettlementHandler) Settle(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	payer, ok := interceptor.PayerFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "payer not found in token")
	}

	r := newFieldReader(req)
	appReq := &settlementapp.SettleRequest{
		OrderID:         r.String("order_id"),
		PayInAmount:     r.Amount("pay_in_amount"),
		PayOutAmount:    r.Amount("pay_out_amount"),
		MinPayOutAmount: r.Amount("min_pay_out_amount"),
		Merchant:        r.String("merchant"),
		Expiry:          r.Int64("expiry"),
		Payer:           payer,
		Accounts:        readAccounts(r),
	}
	if r.err != nil {
		return nil, status.Error(codes.InvalidArgument, r.err.Error())
	}

	resp, err := h.settlementService.Settle(ctx, appReq)
	if err != nil {
		return nil, h.handleError(err)
	}

	return structpb.NewStruct(map[string]interface{}{
		"settlement_id":  resp.SettlementID,
		"order_id":       resp.OrderID,
		"pay_in_mint":    resp.PayInMint,
		"pay_out_mint":   resp.PayOutMint,
		"pay_in_amount":  formatAmount(resp.PayInAmount),
		"pay_out_amount": formatAmount(resp.PayOutAmount),
		"fee_amount":     formatAmount(resp.FeeAmount),
		"fee_mode":       resp.FeeMode,
		"payer":          resp.Payer,
		"merchant":       resp.Merchant,
		"treasury":       resp.Treasury,
		"settled_at":     formatTime(resp.SettledAt),
		"replayed":       resp.Replayed,
		"status":         resp.Status,
	})
}

// GetSettlement 決済記録取得（自分の決済のみ）
func (h *SettlementHandler) GetSettlement(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	payer, ok := interceptor.PayerFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "payer not found in token")
	}

	r := newFieldReader(req)
	orderID := r.String("order_id")
	if r.err != nil {
		return nil, status.Error(codes.InvalidArgument, r.err.Error())
	}
	if orderID == "" {
		return nil, status.Error(codes.InvalidArgument, "order_id is required")
	}

	item, err := h.historyService.GetSettlement(ctx, &historyapp.GetSettlementRequest{
		OrderID: orderID,
		Payer:   payer,
	})
	if err != nil {
		return nil, h.handleError(err)
	}

	return structpb.NewStruct(settlementItemMap(item))
}

// ListMerchantSettlements 加盟店の決済記録一覧（管理API）
func (h *SettlementHandler) ListMerchantSettlements(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r := newFieldReader(req)
	appReq := &historyapp.ListSettlementsRequest{
		Merchant: r.String("merchant"),
		Limit:    int(r.Int64("limit")),
		Offset:   int(r.Int64("offset")),
	}
	if r.err != nil {
		return nil, status.Error(codes.InvalidArgument, r.err.Error())
	}

	resp, err := h.historyService.ListMerchantSettlements(ctx, appReq)
	if err != nil {
		return nil, h.handleError(err)
	}

	settlements := make([]interface{}, len(resp.Settlements))
	for i, item := range resp.Settlements {
		settlements[i] = settlementItemMap(item)
	}

	return structpb.NewStruct(map[string]interface{}{
		"settlements": settlements,
		"limit":       resp.Limit,
		"offset":      resp.Offset,
	})
}

func readAccounts(r *fieldReader) settlementapp.AccountsInput {
	a := r.Struct("accounts")
	v := a.Struct("venue")
	in := settlementapp.AccountsInput{
		Source:          a.String("source"),
		Destination:     a.String("destination"),
		Treasury:        a.String("treasury"),
		MerchantAccount: a.String("merchant_account"),
		PayInMint:       a.String("pay_in_mint"),
		PayOutMint:      a.String("pay_out_mint"),
		Venue: settlementapp.VenueAccountsInput{
			AmmID:                v.String("amm_id"),
			AmmAuthority:         v.String("amm_authority"),
			AmmOpenOrders:        v.String("amm_open_orders"),
			AmmTargetOrders:      v.String("amm_target_orders"),
			PoolCoinTokenAccount: v.String("pool_coin_token_account"),
			PoolPcTokenAccount:   v.String("pool_pc_token_account"),
			SerumProgram:         v.String("serum_program"),
			SerumMarket:          v.String("serum_market"),
			SerumBids:            v.String("serum_bids"),
			SerumAsks:            v.String("serum_asks"),
			SerumEventQueue:      v.String("serum_event_queue"),
			SerumCoinVault:       v.String("serum_coin_vault"),
			SerumPcVault:         v.String("serum_pc_vault"),
			SerumVaultSigner:     v.String("serum_vault_signer"),
		},
	}
	a.merge(v)
	r.merge(a)
	return in
}

func settlementItemMap(item *historyapp.SettlementItem) map[string]interface{} {
	return map[string]interface{}{
		"settlement_id":  item.SettlementID,
		"order_id":       item.OrderID,
		"pay_in_mint":    item.PayInMint,
		"pay_out_mint":   item.PayOutMint,
		"pay_in_amount":  formatAmount(item.PayInAmount),
		"pay_out_amount": formatAmount(item.PayOutAmount),
		"fee_amount":     formatAmount(item.FeeAmount),
		"fee_mode":       item.FeeMode,
		"payer":          item.Payer,
		"merchant":       item.Merchant,
		"treasury":       item.Treasury,
		"settled_at":     formatTime(item.SettledAt),
	}
}

// handleError エラーをgRPCステータスコードに変換
func (h *SettlementHandler) handleError(err error) error {
	switch {
	case errors.Is(err, settlement.ErrExpired):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, settlement.ErrInvalidRequest),
		errors.Is(err, account.ErrInvalidAddress):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, settlement.ErrUnauthorized):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, settlement.ErrSwapFailed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, settlement.ErrTransferFailed),
		errors.Is(err, settlement.ErrReconciliationInvalid),
		errors.Is(err, settlement.ErrArithmeticOverflow):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, settlement.ErrDuplicateOrder):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, settlement.ErrSettlementNotFound),
		errors.Is(err, account.ErrAccountNotFound):
		return status.Error(codes.NotFound, err.Error())
	}

	// gRPCステータスエラーの場合はそのまま返す
	if _, ok := status.FromError(err); ok {
		return err
	}

	// 予期しないエラー
	return status.Error(codes.Internal, "internal server error")
}
