package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	otelinfra "swap-settlement/internal/infrastructure/observability/otel"
)

// MetricsMiddleware メトリクス記録ミドルウェア
// エラーハンドリングミドルウェアより外側に置き、確定したステータスコードを記録する
func MetricsMiddleware(metrics *otelinfra.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			ctx := c.Request().Context()

			metrics.RecordRequest(ctx, c.Request().Method, c.Path())

			err := next(c)

			// レスポンス時間を記録（秒単位）
			metrics.RecordResponseTime(ctx, c.Request().Method, c.Path(), time.Since(start).Seconds())

			if statusCode := responseStatus(c, err); statusCode >= 400 {
				errorType := "client_error"
				if statusCode >= 500 {
					errorType = "server_error"
				}
				metrics.RecordError(ctx, errorType)
			}

			return err
		}
	}
}
