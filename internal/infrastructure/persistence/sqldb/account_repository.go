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

	"swap-settlement/internal/domain/account"
	otelinfra "swap-settlement/internal/infrastructure/observability/otel"
)

// AccountRepository SQL実装のAccountRepository
type AccountRepository struct {
	db     *DB
	tracer trace.Tracer
	now    func() time.Time
}

// NewAccountRepository 新しいAccountRepositoryを作成
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{
		db:     db,
		tracer: otel.Tracer("account-repository"),
		now:    time.Now,
	}
}

// FindByAddress アドレスでアカウントを取得
// トランザクション内ではコミットまで行ロックを保持する
func (r *AccountRepository) FindByAddress(ctx context.Context, address solana.PublicKey) (*account.Account, error) {
	ctx, span := r.tracer.Start(ctx, "AccountRepository.FindByAddress")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.address", address.String()),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "token_accounts"),
	)

	query := `
		SELECT address, mint, owner, balance, version
		FROM token_accounts
		WHERE address = ?`
	if inTx(ctx) {
		query += r.db.lockClause()
	}

	var dbAddress, mint, owner string
	var balance int64
	var version int

	err := r.db.conn(ctx).QueryRowContext(ctx, query, address.String()).Scan(
		&dbAddress,
		&mint,
		&owner,
		&balance,
		&version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(otelcodes.Ok, "account not found")
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		otelinfra.RecordSpanError(span, err)
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	span.SetAttributes(
		attribute.Int64("db.balance", balance),
		attribute.Int("db.version", version),
	)
	span.SetStatus(otelcodes.Ok, "account found")

	return scanAccount(dbAddress, mint, owner, balance, version)
}

// Save 残高を保存（楽観的ロック対応）
func (r *AccountRepository) Save(ctx context.Context, a *account.Account) error {
	ctx, span := r.tracer.Start(ctx, "AccountRepository.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.address", a.Address().String()),
		attribute.Int("db.version", a.Version()),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.table", "token_accounts"),
	)

	query := `
		UPDATE token_accounts
		SET balance = ?, version = version + 1, updated_at = ?
		WHERE address = ? AND version = ?`

	result, err := r.db.conn(ctx).ExecContext(ctx, query,
		int64(a.Balance()),
		r.now().UnixMilli(),
		a.Address().String(),
		a.Version(),
	)
	if err != nil {
		otelinfra.RecordSpanError(span, err)
		return fmt.Errorf("failed to save account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		otelinfra.RecordSpanError(span, err)
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		err := fmt.Errorf("%w: account %s", account.ErrVersionConflict, a.Address())
		otelinfra.RecordSpanError(span, err)
		return err
	}

	a.IncrementVersion()
	span.SetStatus(otelcodes.Ok, "account saved")
	return nil
}

// Create 新しいアカウントを作成
func (r *AccountRepository) Create(ctx context.Context, a *account.Account) error {
	ctx, span := r.tracer.Start(ctx, "AccountRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.address", a.Address().String()),
		attribute.String("db.mint", a.Mint().String()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "token_accounts"),
	)

	query := `
		INSERT INTO token_accounts (address, mint, owner, balance, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	now := r.now().UnixMilli()
	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		a.Address().String(),
		a.Mint().String(),
		a.Owner().String(),
		int64(a.Balance()),
		a.Version(),
		now,
		now,
	)
	if err != nil {
		otelinfra.RecordSpanError(span, err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "account created")
	return nil
}

func scanAccount(address, mint, owner string, balance int64, version int) (*account.Account, error) {
	if balance < 0 {
		return nil, fmt.Errorf("negative balance stored for %s", address)
	}
	addr, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("invalid stored address: %w", err)
	}
	m, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return nil, fmt.Errorf("invalid stored mint: %w", err)
	}
	o, err := solana.PublicKeyFromBase58(owner)
	if err != nil {
		return nil, fmt.Errorf("invalid stored owner: %w", err)
	}
	a, err := account.NewAccount(addr, m, o, uint64(balance), version)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct account entity: %w", err)
	}
	return a, nil
}
