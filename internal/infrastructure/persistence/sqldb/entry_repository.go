package sqldb

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"swap-settlement/internal/domain/ledger"
	otelinfra "swap-settlement/internal/infrastructure/observability/otel"
)

// EntryRepository SQL実装のEntryRepository
type EntryRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewEntryRepository 新しいEntryRepositoryを作成
func NewEntryRepository(db *DB) *EntryRepository {
	return &EntryRepository{
		db:     db,
		tracer: otel.Tracer("entry-repository"),
	}
}

// Save エントリを保存
func (r *EntryRepository) Save(ctx context.Context, e *ledger.Entry) error {
	ctx, span := r.tracer.Start(ctx, "EntryRepository.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.entry_id", e.EntryID()),
		attribute.String("db.reference", e.Reference()),
		attribute.String("db.kind", e.Kind().String()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "ledger_entries"),
	)

	query := `
		INSERT INTO ledger_entries (
			entry_id, reference, kind, from_address, to_address, mint,
			amount, from_balance_after, to_balance_after, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		e.EntryID(),
		e.Reference(),
		e.Kind().String(),
		e.From().String(),
		e.To().String(),
		e.Mint().String(),
		int64(e.Amount()),
		int64(e.FromBalanceAfter()),
		int64(e.ToBalanceAfter()),
		e.CreatedAt().UnixMilli(),
	)
	if err != nil {
		otelinfra.RecordSpanError(span, err)
		return fmt.Errorf("failed to save ledger entry: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "ledger entry saved")
	return nil
}

// FindByReference 決済IDでエントリ一覧を取得
func (r *EntryRepository) FindByReference(ctx context.Context, reference string) ([]*ledger.Entry, error) {
	ctx, span := r.tracer.Start(ctx, "EntryRepository.FindByReference")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.reference", reference),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "ledger_entries"),
	)

	query := `
		SELECT entry_id, reference, kind, from_address, to_address, mint,
			amount, from_balance_after, to_balance_after, created_at
		FROM ledger_entries
		WHERE reference = ?
		ORDER BY seq ASC`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, reference)
	if err != nil {
		otelinfra.RecordSpanError(span, err)
		return nil, fmt.Errorf("failed to find ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*ledger.Entry
	for rows.Next() {
		var entryID, ref, kind, from, to, mint string
		var amount, fromAfter, toAfter, createdAt int64
		if err := rows.Scan(&entryID, &ref, &kind, &from, &to, &mint, &amount, &fromAfter, &toAfter, &createdAt); err != nil {
			otelinfra.RecordSpanError(span, err)
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}

		e, err := scanEntry(entryID, ref, kind, from, to, mint, amount, fromAfter, toAfter, createdAt)
		if err != nil {
			otelinfra.RecordSpanError(span, err)
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		otelinfra.RecordSpanError(span, err)
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}

	span.SetAttributes(attribute.Int("db.rows", len(entries)))
	span.SetStatus(otelcodes.Ok, "ledger entries found")
	return entries, nil
}

func scanEntry(entryID, reference, kind, from, to, mint string, amount, fromAfter, toAfter, createdAt int64) (*ledger.Entry, error) {
	k, err := ledger.NewEntryKind(kind)
	if err != nil {
		return nil, err
	}
	keys, err := parseKeys(from, to, mint)
	if err != nil {
		return nil, err
	}
	return ledger.NewEntry(
		entryID,
		reference,
		k,
		keys[0], keys[1], keys[2],
		uint64(amount),
		uint64(fromAfter),
		uint64(toAfter),
		time.UnixMilli(createdAt).UTC(),
	)
}

func parseKeys(values ...string) ([]solana.PublicKey, error) {
	keys := make([]solana.PublicKey, len(values))
	for i, v := range values {
		pk, err := solana.PublicKeyFromBase58(v)
		if err != nil {
			return nil, fmt.Errorf("invalid stored public key %q: %w", v, err)
		}
		keys[i] = pk
	}
	return keys, nil
}
