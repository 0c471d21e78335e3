package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"swap-settlement/internal/domain/account"
	otelinfra "swap-settlement/internal/infrastructure/observability/otel"
)

// AccountApplicationService アカウントアプリケーションサービス
type AccountApplicationService struct {
	accountRepo account.AccountRepository
	logger      *otelinfra.Logger
	tracer      trace.Tracer
}

// NewAccountApplicationService 新しいAccountApplicationServiceを作成
func NewAccountApplicationService(accountRepo account.AccountRepository, logger *otelinfra.Logger) *AccountApplicationService {
	return &AccountApplicationService{
		accountRepo: accountRepo,
		logger:      logger,
		tracer:      otel.Tracer("account-service"),
	}
}

// GetAccount 残高を取得
// 所有者が指定されている場合、他人のアカウントは見つからない扱いにする
func (s *AccountApplicationService) GetAccount(ctx context.Context, req *GetAccountRequest) (*GetAccountResponse, error) {
	ctx, span := s.tracer.Start(ctx, "AccountApplicationService.GetAccount")
	defer span.End()

	span.SetAttributes(
		attribute.String("address", req.Address),
	)

	address, err := solana.PublicKeyFromBase58(req.Address)
	if err != nil {
		err = fmt.Errorf("%w: %s", account.ErrInvalidAddress, req.Address)
		otelinfra.RecordSpanError(span, err)
		return nil, err
	}

	acc, err := s.accountRepo.FindByAddress(ctx, address)
	if err != nil {
		otelinfra.RecordSpanError(span, err)
		if !errors.Is(err, account.ErrAccountNotFound) {
			s.logger.Error(ctx, "Failed to find account", err, map[string]interface{}{
				"address": req.Address,
			})
			return nil, fmt.Errorf("failed to find account: %w", err)
		}
		return nil, err
	}
	if req.Owner != "" && acc.Owner().String() != req.Owner {
		return nil, account.ErrAccountNotFound
	}

	return &GetAccountResponse{
		Address: acc.Address().String(),
		Mint:    acc.Mint().String(),
		Owner:   acc.Owner().String(),
		Balance: acc.Balance(),
	}, nil
}
