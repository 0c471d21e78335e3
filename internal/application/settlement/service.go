package settlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"swap-settlement/internal/domain/account"
	"swap-settlement/internal/domain/ledger"
	domain "swap-settlement/internal/domain/settlement"
	"swap-settlement/internal/domain/venue"
	otelinfra "swap-settlement/internal/infrastructure/observability/otel"
)

// Policy 決済エンジンの設定値
type Policy struct {
	FeeBps         uint32
	FeeMode        domain.FeeMode
	VenueProgramID solana.PublicKey
	TreasuryOwner  solana.PublicKey
	DefaultMinOut  uint64 // リクエストで下限が指定されない場合のスワップ受取額の下限
}

// SettlementApplicationService 決済アプリケーションサービス
type SettlementApplicationService struct {
	resultRepo   domain.ResultRepository
	txManager    ledger.TransactionManager
	validator    *Validator
	orchestrator *SwapOrchestrator
	reconciler   *BalanceReconciler
	feeEngine    *FeeEngine
	notifier     *Notifier
	clock        domain.Clock
	policy       Policy
	logger       *otelinfra.Logger
	metrics      *otelinfra.Metrics
	tracer       trace.Tracer
	newID        func() string
}

// NewSettlementApplicationService 新しいSettlementApplicationServiceを作成
func NewSettlementApplicationService(
	accountRepo account.AccountRepository,
	resultRepo domain.ResultRepository,
	txManager ledger.TransactionManager,
	transfers Transferer,
	swapVenue venue.SwapVenue,
	sinks []domain.Sink,
	clock domain.Clock,
	policy Policy,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *SettlementApplicationService {
	return &SettlementApplicationService{
		resultRepo:   resultRepo,
		txManager:    txManager,
		validator:    NewValidator(accountRepo, policy.TreasuryOwner, policy.FeeMode),
		orchestrator: NewSwapOrchestrator(swapVenue, policy.VenueProgramID),
		reconciler:   NewBalanceReconciler(transfers),
		feeEngine:    NewFeeEngine(policy.FeeBps, transfers),
		notifier:     NewNotifier(sinks, logger, metrics),
		clock:        clock,
		policy:       policy,
		logger:       logger,
		metrics:      metrics,
		tracer:       otel.Tracer("settlement-service"),
		newID:        uuid.NewString,
	}
}

// settleOutcome トランザクション内で確定した金額
type settleOutcome struct {
	payOut uint64
	fee    uint64
}

// Settle 支払い通貨をスワップし、手数料を差し引いて加盟店へ送金する
// すべての送金は一つのトランザクションで確定し、途中で失敗した場合は何も反映されない
func (s *SettlementApplicationService) Settle(ctx context.Context, req *SettleRequest) (*SettleResponse, error) {
	ctx, span := s.tracer.Start(ctx, "SettlementApplicationService.Settle")
	defer span.End()

	span.SetAttributes(
		attribute.String("order_id", req.OrderID),
		attribute.String("payer", req.Payer),
		attribute.String("merchant", req.Merchant),
		attribute.String("fee_mode", s.policy.FeeMode.String()),
	)

	s.logger.Info(ctx, "Processing settlement", map[string]interface{}{
		"order_id":      req.OrderID,
		"payer":         req.Payer,
		"merchant":      req.Merchant,
		"pay_in_amount": req.PayInAmount,
	})

	res, err := s.settle(ctx, req)
	if err != nil {
		otelinfra.RecordSpanError(span, err)
		s.recordFailure(ctx, req, err)
		return nil, err
	}
	return res, nil
}

func (s *SettlementApplicationService) settle(ctx context.Context, req *SettleRequest) (*SettleResponse, error) {
	payReq, accts, err := req.toDomain()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := s.validator.Validate(payReq, accts, now); err != nil {
		return nil, err
	}

	// 既存の決済記録を確認（冪等性保証）
	if res, err := s.replay(ctx, payReq.OrderID(), accts.Payer); res != nil || err != nil {
		return res, err
	}

	minOut := payReq.MinPayOutAmount()
	if minOut == 0 {
		minOut = s.policy.DefaultMinOut
	}
	if minOut == 0 {
		s.logger.Warn(ctx, "Swap has no minimum output, slippage is unbounded", map[string]interface{}{
			"order_id": payReq.OrderID(),
		})
	}

	settlementID := s.newID()
	var result *domain.Result
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.validator.CheckAccounts(ctx, payReq, accts); err != nil {
			return err
		}

		var out settleOutcome
		var err error
		switch s.policy.FeeMode {
		case domain.FeeModePreSwap:
			out, err = s.settlePreSwap(ctx, settlementID, payReq, accts, minOut)
		default:
			out, err = s.settlePostSwap(ctx, settlementID, payReq, accts, minOut)
		}
		if err != nil {
			return err
		}

		result, err = domain.NewResult(domain.ResultParams{
			SettlementID: settlementID,
			OrderID:      payReq.OrderID(),
			PayInMint:    accts.PayInMint,
			PayOutMint:   accts.PayOutMint,
			PayInAmount:  payReq.PayInAmount(),
			PayOutAmount: out.payOut,
			FeeAmount:    out.fee,
			FeeMode:      s.policy.FeeMode,
			Payer:        accts.Payer,
			Merchant:     payReq.Merchant(),
			Treasury:     accts.Treasury,
			SettledAt:    now,
		})
		if err != nil {
			return err
		}
		return s.resultRepo.Save(ctx, result)
	})
	if errors.Is(err, domain.ErrDuplicateOrder) {
		// 同じ注文IDの決済が並行して確定した
		if res, rerr := s.replay(ctx, payReq.OrderID(), accts.Payer); res != nil || rerr != nil {
			return res, rerr
		}
	}
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, result)

	feeMint := result.PayOutMint()
	if result.FeeMode() == domain.FeeModePreSwap {
		feeMint = result.PayInMint()
	}
	if s.metrics != nil {
		s.metrics.RecordSettlement(ctx, "completed", result.FeeMode().String())
		s.metrics.RecordSettledAmount(ctx, result.PayOutMint().String(), result.PayOutAmount())
		s.metrics.RecordFee(ctx, feeMint.String(), result.FeeAmount())
	}

	s.logger.Info(ctx, "Settlement completed", map[string]interface{}{
		"settlement_id":  result.SettlementID(),
		"order_id":       result.OrderID(),
		"pay_out_amount": result.PayOutAmount(),
		"fee_amount":     result.FeeAmount(),
	})

	return newSettleResponse(result, false), nil
}

// settlePostSwap 支払い額の全額をスワップし、実受取額から手数料を差し引いて加盟店へ送金する
func (s *SettlementApplicationService) settlePostSwap(
	ctx context.Context,
	settlementID string,
	payReq *domain.PaymentRequest,
	accts *domain.SettlementAccounts,
	minOut uint64,
) (settleOutcome, error) {
	received, err := s.reconciler.Measure(ctx, accts.Destination, func(ctx context.Context) error {
		return s.orchestrator.Swap(ctx, settlementID, payReq.PayInAmount(), minOut, accts)
	})
	if err != nil {
		return settleOutcome{}, err
	}

	fee, net, err := s.feeEngine.Split(received)
	if err != nil {
		return settleOutcome{}, err
	}

	if err := s.feeEngine.Distribute(ctx, Distribution{
		Reference: settlementID,
		From:      accts.Destination,
		Authority: accts.Payer,
		Treasury:  accts.Treasury,
		Recipient: accts.MerchantAccount,
		Fee:       fee,
		Net:       net,
	}); err != nil {
		return settleOutcome{}, err
	}
	return settleOutcome{payOut: net, fee: fee}, nil
}

// settlePreSwap 支払い額から手数料を差し引き、残りをスワップする
// スワップ出力は支払者の受取アカウントに残る
func (s *SettlementApplicationService) settlePreSwap(
	ctx context.Context,
	settlementID string,
	payReq *domain.PaymentRequest,
	accts *domain.SettlementAccounts,
	minOut uint64,
) (settleOutcome, error) {
	fee, net, err := s.feeEngine.Split(payReq.PayInAmount())
	if err != nil {
		return settleOutcome{}, err
	}
	if net == 0 {
		return settleOutcome{}, fmt.Errorf("%w: nothing left to swap after fee", domain.ErrInvalidRequest)
	}

	if err := s.feeEngine.Distribute(ctx, Distribution{
		Reference: settlementID,
		From:      accts.Source,
		Authority: accts.Payer,
		Treasury:  accts.Treasury,
		Fee:       fee,
	}); err != nil {
		return settleOutcome{}, err
	}

	received, err := s.reconciler.Measure(ctx, accts.Destination, func(ctx context.Context) error {
		return s.orchestrator.Swap(ctx, settlementID, net, minOut, accts)
	})
	if err != nil {
		return settleOutcome{}, err
	}
	return settleOutcome{payOut: received, fee: fee}, nil
}

// replay 確定済みの決済記録があればそのまま返す
func (s *SettlementApplicationService) replay(ctx context.Context, orderID string, payer solana.PublicKey) (*SettleResponse, error) {
	existing, err := s.resultRepo.FindByOrderID(ctx, orderID)
	if errors.Is(err, domain.ErrSettlementNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find settlement: %w", err)
	}
	if !existing.Payer().Equals(payer) {
		return nil, fmt.Errorf("%w: order %s belongs to another payer", domain.ErrDuplicateOrder, orderID)
	}

	s.logger.Info(ctx, "Settlement already completed", map[string]interface{}{
		"settlement_id": existing.SettlementID(),
		"order_id":      orderID,
	})
	if s.metrics != nil {
		s.metrics.RecordSettlement(ctx, "replayed", existing.FeeMode().String())
	}
	return newSettleResponse(existing, true), nil
}

func (s *SettlementApplicationService) recordFailure(ctx context.Context, req *SettleRequest, err error) {
	status := FailureStatus(err)
	fields := map[string]interface{}{
		"order_id": req.OrderID,
		"status":   status,
	}
	switch status {
	case "expired", "invalid_request", "unauthorized", "duplicate_order":
		s.logger.Warn(ctx, "Settlement rejected", fields)
	default:
		s.logger.Error(ctx, "Settlement failed", err, fields)
	}
	if s.metrics != nil {
		s.metrics.RecordSettlement(ctx, status, s.policy.FeeMode.String())
	}
}

// FailureStatus エラーを決済結果の分類に変換
func FailureStatus(err error) string {
	switch {
	case errors.Is(err, domain.ErrExpired):
		return "expired"
	case errors.Is(err, domain.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrDuplicateOrder):
		return "duplicate_order"
	case errors.Is(err, domain.ErrSwapFailed):
		return "swap_failed"
	case errors.Is(err, domain.ErrReconciliationInvalid):
		return "reconciliation_invalid"
	case errors.Is(err, domain.ErrTransferFailed):
		return "transfer_failed"
	case errors.Is(err, domain.ErrArithmeticOverflow):
		return "arithmetic_overflow"
	default:
		return "error"
	}
}
