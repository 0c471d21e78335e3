package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"swap-settlement/internal/infrastructure/config"
	otelinfra "swap-settlement/internal/infrastructure/observability/otel"
)

// RateLimitMiddleware レート制限ミドルウェア
// 認証済みの場合は支払者単位、それ以外はクライアントIP単位で制限する
func RateLimitMiddleware(cfg *config.RateLimitConfig, logger *otelinfra.Logger) echo.MiddlewareFunc {
	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:  rate.Limit(cfg.RPS),
		Burst: cfg.Burst,
	})

	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return !cfg.Enabled
		},
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if payer := PayerFrom(c); payer != "" {
				return "payer:" + payer, nil
			}
			return "ip:" + c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: "Unable to identify client",
			})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			logger.Warn(c.Request().Context(), "Rate limit exceeded", map[string]interface{}{
				"identifier": identifier,
			})
			return c.JSON(http.StatusTooManyRequests, ErrorResponse{
				Error:   "rate_limited",
				Message: "Too many requests",
			})
		},
	})
}
