package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"swap-settlement/internal/domain/settlement"
	otelinfra "swap-settlement/internal/infrastructure/observability/otel"
)

const settlementColumns = `settlement_id, order_id, pay_in_mint, pay_out_mint,
			pay_in_amount, pay_out_amount, fee_amount, fee_mode,
			payer, merchant, treasury, settled_at`

// SettlementRepository SQL実装のResultRepository
type SettlementRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewSettlementRepository 新しいSettlementRepositoryを作成
func NewSettlementRepository(db *DB) *SettlementRepository {
	return &SettlementRepository{
		db:     db,
		tracer: otel.Tracer("settlement-repository"),
	}
}

// Save 決済記録を保存
func (r *SettlementRepository) Save(ctx context.Context, res *settlement.Result) error {
	ctx, span := r.tracer.Start(ctx, "SettlementRepository.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.settlement_id", res.SettlementID()),
		attribute.String("db.order_id", res.OrderID()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "settlements"),
	)

	query := `INSERT INTO settlements (` + settlementColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		res.SettlementID(),
		res.OrderID(),
		res.PayInMint().String(),
		res.PayOutMint().String(),
		int64(res.PayInAmount()),
		int64(res.PayOutAmount()),
		int64(res.FeeAmount()),
		res.FeeMode().String(),
		res.Payer().String(),
		res.Merchant().String(),
		res.Treasury().String(),
		res.SettledAt().UnixMilli(),
	)
	if err != nil {
		otelinfra.RecordSpanError(span, err)
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: %s", settlement.ErrDuplicateOrder, res.OrderID())
		}
		return fmt.Errorf("failed to save settlement: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "settlement saved")
	return nil
}

// FindByOrderID 注文IDで決済記録を取得
func (r *SettlementRepository) FindByOrderID(ctx context.Context, orderID string) (*settlement.Result, error) {
	ctx, span := r.tracer.Start(ctx, "SettlementRepository.FindByOrderID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.order_id", orderID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "settlements"),
	)

	query := `SELECT ` + settlementColumns + ` FROM settlements WHERE order_id = ?`

	res, err := scanSettlement(r.db.conn(ctx).QueryRowContext(ctx, query, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(otelcodes.Ok, "settlement not found")
		return nil, settlement.ErrSettlementNotFound
	}
	if err != nil {
		otelinfra.RecordSpanError(span, err)
		return nil, fmt.Errorf("failed to find settlement: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "settlement found")
	return res, nil
}

// FindByMerchant 加盟店の決済記録一覧を取得
func (r *SettlementRepository) FindByMerchant(ctx context.Context, merchant solana.PublicKey, limit, offset int) ([]*settlement.Result, error) {
	ctx, span := r.tracer.Start(ctx, "SettlementRepository.FindByMerchant")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.merchant", merchant.String()),
		attribute.Int("db.limit", limit),
		attribute.Int("db.offset", offset),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "settlements"),
	)

	query := `SELECT ` + settlementColumns + ` FROM settlements
		WHERE merchant = ?
		ORDER BY settled_at DESC, settlement_id ASC
		LIMIT ? OFFSET ?`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, merchant.String(), limit, offset)
	if err != nil {
		otelinfra.RecordSpanError(span, err)
		return nil, fmt.Errorf("failed to find settlements: %w", err)
	}
	defer rows.Close()

	var results []*settlement.Result
	for rows.Next() {
		res, err := scanSettlement(rows)
		if err != nil {
			otelinfra.RecordSpanError(span, err)
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		otelinfra.RecordSpanError(span, err)
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	span.SetAttributes(attribute.Int("db.rows", len(results)))
	span.SetStatus(otelcodes.Ok, "settlements found")
	return results, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSettlement(row rowScanner) (*settlement.Result, error) {
	var settlementID, orderID, payInMint, payOutMint, feeMode, payer, merchant, treasury string
	var payIn, payOut, fee, settledAt int64

	if err := row.Scan(
		&settlementID,
		&orderID,
		&payInMint,
		&payOutMint,
		&payIn,
		&payOut,
		&fee,
		&feeMode,
		&payer,
		&merchant,
		&treasury,
		&settledAt,
	); err != nil {
		return nil, err
	}

	keys, err := parseKeys(payInMint, payOutMint, payer, merchant, treasury)
	if err != nil {
		return nil, err
	}
	mode, err := settlement.NewFeeMode(feeMode)
	if err != nil {
		return nil, err
	}

	return settlement.NewResult(settlement.ResultParams{
		SettlementID: settlementID,
		OrderID:      orderID,
		PayInMint:    keys[0],
		PayOutMint:   keys[1],
		PayInAmount:  uint64(payIn),
		PayOutAmount: uint64(payOut),
		FeeAmount:    uint64(fee),
		FeeMode:      mode,
		Payer:        keys[2],
		Merchant:     keys[3],
		Treasury:     keys[4],
		SettledAt:    time.UnixMilli(settledAt),
	})
}
