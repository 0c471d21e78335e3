package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	otelinfra "swap-settlement/internal/infrastructure/observability/otel"
)

// LoggingInterceptor リクエストのログとメトリクスを記録するインターセプター
// 認証失敗も記録するため認証インターセプターより外側に置く
func LoggingInterceptor(logger *otelinfra.Logger, metrics *otelinfra.Metrics) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		metrics.RecordRequest(ctx, "grpc", info.FullMethod)

		resp, err := handler(ctx, req)

		elapsed := time.Since(start)
		metrics.RecordResponseTime(ctx, "grpc", info.FullMethod, elapsed.Seconds())

		code := status.Code(err)
		fields := map[string]interface{}{
			"method":      info.FullMethod,
			"code":        code.String(),
			"duration_ms": elapsed.Milliseconds(),
		}

		if err != nil {
			metrics.RecordError(ctx, "grpc_"+code.String())
			logger.Warn(ctx, "gRPC request failed", fields)
		} else {
			logger.Info(ctx, "gRPC request completed", fields)
		}
		return resp, err
	}
}
