package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics メトリクス定義
type Metrics struct {
	// 決済件数（結果・手数料モード別）
	SettlementCount metric.Int64Counter

	// 加盟店への正味送金額
	SettledAmount metric.Int64Histogram

	// 徴収した手数料の累計
	FeesCollected metric.Int64Counter

	// 通知先への配信失敗件数
	SinkFailureCount metric.Int64Counter

	// リクエスト数
	RequestCount metric.Int64Counter

	// レスポンス時間
	ResponseTime metric.Float64Histogram

	// エラー率
	ErrorCount metric.Int64Counter
}

// NewMetrics 新しいMetricsを作成
func NewMetrics(meterName string) (*Metrics, error) {
	meter := otel.Meter(meterName)

	settlementCount, err := meter.Int64Counter(
		"settlements_total",
		metric.WithDescription("Total number of settlements by status and fee mode"),
	)
	if err != nil {
		return nil, err
	}

	settledAmount, err := meter.Int64Histogram(
		"settled_amount",
		metric.WithDescription("Net amount delivered per settlement in base units"),
	)
	if err != nil {
		return nil, err
	}

	feesCollected, err := meter.Int64Counter(
		"fees_collected_total",
		metric.WithDescription("Total protocol fees collected in base units"),
	)
	if err != nil {
		return nil, err
	}

	sinkFailureCount, err := meter.Int64Counter(
		"settlement_sink_failures_total",
		metric.WithDescription("Total number of failed completion notifications"),
	)
	if err != nil {
		return nil, err
	}

	requestCount, err := meter.Int64Counter(
		"requests_total",
		metric.WithDescription("Total number of requests"),
	)
	if err != nil {
		return nil, err
	}

	responseTime, err := meter.Float64Histogram(
		"response_time_seconds",
		metric.WithDescription("Response time in seconds"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"errors_total",
		metric.WithDescription("Total number of errors"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		SettlementCount:  settlementCount,
		SettledAmount:    settledAmount,
		FeesCollected:    feesCollected,
		SinkFailureCount: sinkFailureCount,
		RequestCount:     requestCount,
		ResponseTime:     responseTime,
		ErrorCount:       errorCount,
	}, nil
}

// RecordSettlement 決済結果を記録
func (m *Metrics) RecordSettlement(ctx context.Context, status, feeMode string) {
	m.SettlementCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("status", status),
			attribute.String("fee_mode", feeMode),
		),
	)
}

// RecordSettledAmount 正味送金額を記録
func (m *Metrics) RecordSettledAmount(ctx context.Context, mint string, amount uint64) {
	m.SettledAmount.Record(ctx, clampInt64(amount),
		metric.WithAttributes(
			attribute.String("mint", mint),
		),
	)
}

// RecordFee 手数料を記録
func (m *Metrics) RecordFee(ctx context.Context, mint string, amount uint64) {
	if amount == 0 {
		return
	}
	m.FeesCollected.Add(ctx, clampInt64(amount),
		metric.WithAttributes(
			attribute.String("mint", mint),
		),
	)
}

// RecordSinkFailure 通知失敗を記録
func (m *Metrics) RecordSinkFailure(ctx context.Context, sink string) {
	m.SinkFailureCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("sink", sink),
		),
	)
}

// RecordRequest リクエストを記録
func (m *Metrics) RecordRequest(ctx context.Context, method, path string) {
	m.RequestCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordResponseTime レスポンス時間を記録
func (m *Metrics) RecordResponseTime(ctx context.Context, method, path string, duration float64) {
	m.ResponseTime.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordError エラーを記録
func (m *Metrics) RecordError(ctx context.Context, errorType string) {
	m.ErrorCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error_type", errorType),
		),
	)
}

func clampInt64(v uint64) int64 {
	const maxInt64 = 1<<63 - 1
	if v > maxInt64 {
		return maxInt64
	}
	return int64(v)
}
