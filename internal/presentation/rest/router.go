package rest

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"swap-settlement/internal/infrastructure/config"
	otelinfra "swap-settlement/internal/infrastructure/observability/otel"
	"swap-settlement/internal/presentation/rest/handler"
	restmiddleware "swap-settlement/internal/presentation/rest/middleware"
)

// Services ルーターが公開するユースケース群
type Services struct {
	Auth       handler.AuthService
	Settlement handler.SettlementService
	History    handler.HistoryService
	Account    handler.AccountService
}

// HealthChecker 依存先のヘルスチェック
type HealthChecker interface {
	HealthCheck() error
}

// Router REST APIルーター
type Router struct {
	echo *echo.Echo
}

// NewRouter 新しいRouterを作成
func NewRouter(
	cfg *config.Config,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	services Services,
	health HealthChecker,
) (*Router, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout

	// Echoのデフォルトエラーハンドラーを無効化（カスタムエラーハンドラーを使用）
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		// エラーハンドリングミドルウェアで処理される
	}

	// ミドルウェアの設定
	setupMiddleware(e, logger, metrics)

	// ルーティングの設定
	setupRoutes(e, cfg, logger, services, health)

	// Swagger UI / ReDoc統合
	SetupSwagger(e)

	return &Router{echo: e}, nil
}

// setupMiddleware ミドルウェアを設定
func setupMiddleware(e *echo.Echo, logger *otelinfra.Logger, metrics *otelinfra.Metrics) {
	// リカバリーミドルウェア
	e.Use(middleware.Recover())

	// CORS設定
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-API-Key"},
	}))

	// リクエストIDの設定
	e.Use(middleware.RequestID())

	// リクエストボディの上限
	e.Use(middleware.BodyLimit("64K"))

	// セキュリティヘッダー
	e.Use(restmiddleware.SecurityHeadersMiddleware())

	// トレーシングミドルウェア
	e.Use(restmiddleware.TracingMiddleware())

	// メトリクスミドルウェア
	e.Use(restmiddleware.MetricsMiddleware(metrics))

	// ログミドルウェア
	e.Use(restmiddleware.LoggingMiddleware(logger))

	// エラーハンドリングミドルウェア
	e.Use(restmiddleware.ErrorHandlerMiddleware(logger))
}

// setupRoutes ルーティングを設定
func setupRoutes(e *echo.Echo, cfg *config.Config, logger *otelinfra.Logger, services Services, health HealthChecker) {
	authHandler := handler.NewAuthHandler(services.Auth)
	settlementHandler := handler.NewSettlementHandler(services.Settlement, services.History)
	historyHandler := handler.NewHistoryHandler(services.History)
	accountHandler := handler.NewAccountHandler(services.Account)

	// API v1グループ
	api := e.Group("/api/v1")

	// 認証（レート制限はIP単位）
	api.POST("/auth/token", authHandler.GenerateToken, restmiddleware.RateLimitMiddleware(&cfg.RateLimit, logger))

	// 認証が必要なエンドポイント（レート制限は支払者単位）
	authGroup := api.Group("",
		restmiddleware.AuthMiddleware(&cfg.JWT, logger),
		restmiddleware.RateLimitMiddleware(&cfg.RateLimit, logger),
	)

	// 決済関連エンドポイント
	authGroup.POST("/settlements", settlementHandler.Settle)
	authGroup.GET("/settlements/:order_id", settlementHandler.GetSettlement)
	authGroup.GET("/settlements/:order_id/entries", settlementHandler.ListEntries)

	// アカウント関連エンドポイント
	authGroup.GET("/accounts/:address", accountHandler.GetAccount)

	// 管理API（インデクサ向け）
	admin := api.Group("/admin", restmiddleware.APIKeyMiddleware(&cfg.AdminAPI, logger))
	admin.GET("/merchants/:merchant/settlements", historyHandler.ListMerchantSettlements)
	admin.GET("/settlements/:order_id", historyHandler.GetSettlementAdmin)

	// ヘルスチェックエンドポイント（認証不要）
	e.GET("/health", func(c echo.Context) error {
		if health != nil {
			if err := health.HealthCheck(); err != nil {
				logger.Error(c.Request().Context(), "Health check failed", err, nil)
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

// Handler HTTPハンドラーを返す
func (r *Router) Handler() http.Handler {
	return r.echo
}

// Start サーバーを起動
func (r *Router) Start(address string) error {
	return r.echo.Start(address)
}

// Shutdown 処理中のリクエストを待ってサーバーを停止
func (r *Router) Shutdown(ctx context.Context) error {
	return r.echo.Shutdown(ctx)
}
