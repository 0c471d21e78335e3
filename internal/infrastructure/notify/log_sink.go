package notify

import (
	"context"

	"swap-settlement/internal/domain/settlement"
	otelinfra "swap-settlement/internal/infrastructure/observability/otel"
)

// LogSink 決済完了をログに出力する
type LogSink struct {
	logger *otelinfra.Logger
}

// NewLogSink 新しいLogSinkを作成
func NewLogSink(logger *otelinfra.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Name 通知先名
func (s *LogSink) Name() string {
	return "log"
}

// Publish 決済完了レコードをINFOで出力
func (s *LogSink) Publish(ctx context.Context, result *settlement.Result) error {
	rec := NewRecord(result)
	s.logger.Info(ctx, "Settlement record", map[string]interface{}{
		"settlement_id":  rec.SettlementID,
		"order_id":       rec.OrderID,
		"pay_in_mint":    rec.PayInMint,
		"pay_out_mint":   rec.PayOutMint,
		"pay_in_amount":  rec.PayInAmount,
		"pay_out_amount": rec.PayOutAmount,
		"fee_amount":     rec.FeeAmount,
		"fee_mode":       rec.FeeMode,
		"payer":          rec.Payer,
		"merchant":       rec.Merchant,
		"treasury":       rec.Treasury,
	})
	return nil
}
