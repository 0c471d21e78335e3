package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"golang.org/x/sync/errgroup"

	accountapp "swap-settlement/internal/application/account"
	authapp "swap-settlement/internal/application/auth"
	historyapp "swap-settlement/internal/application/history"
	settlementapp "swap-settlement/internal/application/settlement"
	"swap-settlement/internal/domain/service"
	"swap-settlement/internal/domain/settlement"
	"swap-settlement/internal/infrastructure/config"
	"swap-settlement/internal/infrastructure/notify"
	otelinfra "swap-settlement/internal/infrastructure/observability/otel"
	"swap-settlement/internal/infrastructure/persistence/sqldb"
	"swap-settlement/internal/infrastructure/venue/cpamm"
	grpcserver "swap-settlement/internal/presentation/grpc"
	"swap-settlement/internal/presentation/rest"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// OpenTelemetryの初期化
	tracerShutdown, err := otelinfra.InitTracer(&cfg.OpenTelemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	meterShutdown, err := otelinfra.InitMeter(&cfg.OpenTelemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize meter: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown meter: %v", err)
		}
	}()

	// ロガーとメトリクスの初期化
	logger := otelinfra.NewLoggerFromConfig(otelinfra.Tracer("swap-settlement"), &cfg.Log)
	defer logger.Close()
	metrics, err := otelinfra.NewMetrics("swap-settlement")
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// データベース接続の初期化
	db, err := sqldb.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// リポジトリの初期化
	accountRepo := sqldb.NewAccountRepository(db)
	entryRepo := sqldb.NewEntryRepository(db)
	resultRepo := sqldb.NewSettlementRepository(db)
	txManager := sqldb.NewTransactionManager(db)

	// ドメインサービスの初期化
	transferService := service.NewTransferService(accountRepo, entryRepo)

	policy, pools, err := settlementPolicy(&cfg.Settlement)
	if err != nil {
		return err
	}
	if policy.DefaultMinOut == 0 {
		logger.Warn(ctx, "Default minimum swap output is zero; requests without a floor accept any price", nil)
	}
	swapVenue := cpamm.NewVenue(policy.VenueProgramID, pools, accountRepo, transferService, logger)

	// 決済完了の通知先
	sinks := []settlement.Sink{notify.NewLogSink(logger)}
	var webhook *notify.AsyncSink
	if cfg.Notify.WebhookURL != "" {
		webhook = notify.NewAsyncSink(notify.NewWebhookSink(&cfg.Notify), "webhook", cfg.Notify.QueueSize, logger, metrics)
		sinks = append(sinks, webhook)
	}

	// アプリケーションサービスの初期化
	settlementAppService := settlementapp.NewSettlementApplicationService(
		accountRepo,
		resultRepo,
		txManager,
		transferService,
		swapVenue,
		sinks,
		settlement.SystemClock{},
		policy,
		logger,
		metrics,
	)
	historyAppService := historyapp.NewHistoryApplicationService(resultRepo, entryRepo, logger)
	accountAppService := accountapp.NewAccountApplicationService(accountRepo, logger)
	authAppService := authapp.NewAuthApplicationService(&cfg.JWT, logger)

	// REST APIルーターの初期化
	router, err := rest.NewRouter(cfg, logger, metrics, rest.Services{
		Auth:       authAppService,
		Settlement: settlementAppService,
		History:    historyAppService,
		Account:    accountAppService,
	}, db)
	if err != nil {
		return fmt.Errorf("failed to create router: %w", err)
	}

	// gRPCサーバーの初期化
	grpcSrv, err := grpcserver.NewServer(cfg, logger, metrics, settlementAppService, historyAppService)
	if err != nil {
		return fmt.Errorf("failed to create gRPC server: %w", err)
	}

	address := fmt.Sprintf(":%d", cfg.Server.Port)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info(gctx, "REST API server starting", map[string]interface{}{"address": address})
		if err := router.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("REST API server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return grpcSrv.Start()
	})

	// Webhook配信はサーバー停止後にキューを処理しきってから終わる
	deliveryCtx, stopDelivery := context.WithCancel(context.WithoutCancel(ctx))
	defer stopDelivery()
	delivered := make(chan struct{})
	if webhook != nil {
		go func() {
			defer close(delivered)
			_ = webhook.Run(deliveryCtx)
		}()
	} else {
		close(delivered)
	}

	// シグナルかサーバーの異常終了を待ってシャットダウン
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(context.Background(), "Shutting down servers", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := router.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("REST API shutdown: %w", err))
		}
		if err := grpcSrv.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("gRPC shutdown: %w", err))
		}
		return errors.Join(errs...)
	})

	err = g.Wait()
	stopDelivery()
	<-delivered
	logger.Info(context.Background(), "Servers stopped", nil)
	return err
}

// settlementPolicy 設定値を決済エンジンのポリシーとプール一覧に変換
func settlementPolicy(cfg *config.SettlementConfig) (settlementapp.Policy, []cpamm.Pool, error) {
	feeMode, err := settlement.NewFeeMode(cfg.FeeMode)
	if err != nil {
		return settlementapp.Policy{}, nil, fmt.Errorf("invalid fee mode: %w", err)
	}
	programID, err := solana.PublicKeyFromBase58(cfg.VenueProgramID)
	if err != nil {
		return settlementapp.Policy{}, nil, fmt.Errorf("invalid venue program id: %w", err)
	}
	treasuryOwner, err := solana.PublicKeyFromBase58(cfg.TreasuryOwner)
	if err != nil {
		return settlementapp.Policy{}, nil, fmt.Errorf("invalid treasury owner: %w", err)
	}

	pools := make([]cpamm.Pool, 0, len(cfg.VenuePools))
	for _, p := range cfg.VenuePools {
		ammID, err := solana.PublicKeyFromBase58(p.AmmID)
		if err != nil {
			return settlementapp.Policy{}, nil, fmt.Errorf("invalid pool amm id: %w", err)
		}
		authority, err := solana.PublicKeyFromBase58(p.Authority)
		if err != nil {
			return settlementapp.Policy{}, nil, fmt.Errorf("invalid pool authority: %w", err)
		}
		pools = append(pools, cpamm.Pool{AmmID: ammID, Authority: authority})
	}

	return settlementapp.Policy{
		FeeBps:         cfg.FeeBps,
		FeeMode:        feeMode,
		VenueProgramID: programID,
		TreasuryOwner:  treasuryOwner,
		DefaultMinOut:  cfg.DefaultMinOut,
	}, pools, nil
}
