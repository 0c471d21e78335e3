package settlement

import (
	"context"
	"fmt"

	domain "swap-settlement/internal/domain/settlement"
	otelinfra "swap-settlement/internal/infrastructure/observability/otel"
)

// Notifier 決済完了を通知先へ配信する
// 配信の失敗は決済結果に影響しない
type Notifier struct {
	sinks   []domain.Sink
	logger  *otelinfra.Logger
	metrics *otelinfra.Metrics
}

// NewNotifier 新しいNotifierを作成
func NewNotifier(sinks []domain.Sink, logger *otelinfra.Logger, metrics *otelinfra.Metrics) *Notifier {
	return &Notifier{
		sinks:   sinks,
		logger:  logger,
		metrics: metrics,
	}
}

// Publish すべての通知先へ配信する
func (n *Notifier) Publish(ctx context.Context, result *domain.Result) {
	for _, sink := range n.sinks {
		if err := sink.Publish(ctx, result); err != nil {
			name := sinkName(sink)
			n.logger.Error(ctx, "Failed to publish settlement", err, map[string]interface{}{
				"sink":          name,
				"settlement_id": result.SettlementID(),
				"order_id":      result.OrderID(),
			})
			if n.metrics != nil {
				n.metrics.RecordSinkFailure(ctx, name)
			}
		}
	}
}

func sinkName(s domain.Sink) string {
	if named, ok := s.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", s)
}
