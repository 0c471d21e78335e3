package notify

import (
	"context"
	"errors"

	"swap-settlement/internal/domain/settlement"
	otelinfra "swap-settlement/internal/infrastructure/observability/otel"
)

// ErrQueueFull 配信キューが満杯
var ErrQueueFull = errors.New("notification queue is full")

type job struct {
	ctx    context.Context
	result *settlement.Result
}

// AsyncSink 配信をバックグラウンドのワーカーで行う
// Publish はキューへの投入のみを行い、配信の失敗はワーカーがログに残す
type AsyncSink struct {
	inner   settlement.Sink
	name    string
	queue   chan job
	logger  *otelinfra.Logger
	metrics *otelinfra.Metrics
}

// NewAsyncSink 新しいAsyncSinkを作成
func NewAsyncSink(inner settlement.Sink, name string, size int, logger *otelinfra.Logger, metrics *otelinfra.Metrics) *AsyncSink {
	return &AsyncSink{
		inner:   inner,
		name:    name,
		queue:   make(chan job, size),
		logger:  logger,
		metrics: metrics,
	}
}

// Name 通知先名
func (s *AsyncSink) Name() string {
	return s.name
}

// Publish 配信をキューに投入する
func (s *AsyncSink) Publish(ctx context.Context, result *settlement.Result) error {
	select {
	case s.queue <- job{ctx: context.WithoutCancel(ctx), result: result}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run ctx が終了するまでキューを処理する
// 終了時点でキューに残っている配信は処理してから戻る
func (s *AsyncSink) Run(ctx context.Context) error {
	for {
		select {
		case j := <-s.queue:
			s.deliver(j)
		case <-ctx.Done():
			for {
				select {
				case j := <-s.queue:
					s.deliver(j)
				default:
					return nil
				}
			}
		}
	}
}

func (s *AsyncSink) deliver(j job) {
	if err := s.inner.Publish(j.ctx, j.result); err != nil {
		s.logger.Error(j.ctx, "Failed to deliver settlement", err, map[string]interface{}{
			"sink":          s.name,
			"settlement_id": j.result.SettlementID(),
		})
		if s.metrics != nil {
			s.metrics.RecordSinkFailure(j.ctx, s.name)
		}
	}
}
