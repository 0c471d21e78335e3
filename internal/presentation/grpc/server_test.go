package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	historyapp "swap-settlement/internal/application/history"
	settlementapp "swap-settlement/internal/application/settlement"
	"swap-settlement/internal/infrastructure/config"
	otelinfra "swap-settlement/internal/infrastructure/observability/otel"
	"swap-settlement/internal/presentation/grpc/pb"
)

// MockSettlementService モック決済サービス
type MockSettlementService struct {
	mock.Mock
}

func (m *MockSettlementService) Settle(ctx context.Context, req *settlementapp.SettleRequest) (*settlementapp.SettleResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlementapp.SettleResponse), args.Error(1)
}

// MockHistoryService モック履歴サービス
type MockHistoryService struct {
	mock.Mock
}

func (m *MockHistoryService) GetSettlement(ctx context.Context, req *historyapp.GetSettlementRequest) (*historyapp.SettlementItem, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*historyapp.SettlementItem), args.Error(1)
}

func (m *MockHistoryService) ListMerchantSettlements(ctx context.Context, req *historyapp.ListSettlementsRequest) (*historyapp.ListSettlementsResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*historyapp.ListSettlementsResponse), args.Error(1)
}

type testServer struct {
	server            *Server
	client            pb.SettlementServiceClient
	cfg               *config.Config
	settlementService *MockSettlementService
	historyService    *MockHistoryService
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		Environment: "test",
		Server:      config.ServerConfig{Port: 8080},
		JWT: config.JWTConfig{
			Secret:     "test-secret",
			Issuer:     "swap-settlement",
			Expiration: time.Hour,
		},
		AdminAPI: config.AdminAPIConfig{Enabled: true, APIKey: "admin-key"},
	}

	logger := otelinfra.NewLogger(noop.NewTracerProvider().Tracer("test"))
	metrics, err := otelinfra.NewMetrics("test")
	require.NoError(t, err)

	settlementService := new(MockSettlementService)
	historyService := new(MockHistoryService)

	// bufconnを使用してメモリ内リスナーを作成（実際のポートバインドを回避）
	listener := bufconn.Listen(1024 * 1024)
	server, err := NewServerWithListener(cfg, logger, metrics, settlementService, historyService, listener, cfg.Server.Port+1)
	require.NoError(t, err)

	go func() {
		_ = server.Start()
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Stop(ctx)
	})

	return &testServer{
		server:            server,
		client:            pb.NewSettlementServiceClient(conn),
		cfg:               cfg,
		settlementService: settlementService,
		historyService:    historyService,
	}
}

func bearerContext(t *testing.T, cfg *config.JWTConfig, payer solana.PublicKey) context.Context {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": payer.String(),
		"iss": cfg.Issuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(cfg.Secret))
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

func TestServer_Port(t *testing.T) {
	ts := setupTestServer(t)
	// REST APIのポート+1であることを確認
	assert.Equal(t, 8081, ts.server.Port())
}

func TestServer_Settle(t *testing.T) {
	ts := setupTestServer(t)
	payer := solana.NewWallet().PublicKey()

	ts.settlementService.On("Settle", mock.Anything, mock.MatchedBy(func(req *settlementapp.SettleRequest) bool {
		return req.Payer == payer.String() && req.OrderID == "order-1" && req.PayInAmount == 1000
	})).Return(&settlementapp.SettleResponse{
		SettlementID: "settle-1",
		OrderID:      "order-1",
		PayInAmount:  1000,
		PayOutAmount: 990,
		FeeAmount:    10,
		Payer:        payer.String(),
		Status:       "completed",
	}, nil)

	req, err := structpb.NewStruct(map[string]interface{}{
		"order_id":      "order-1",
		"pay_in_amount": "1000",
	})
	require.NoError(t, err)

	resp, err := ts.client.Settle(bearerContext(t, &ts.cfg.JWT, payer), req)
	require.NoError(t, err)
	assert.Equal(t, "settle-1", resp.GetFields()["settlement_id"].GetStringValue())
	assert.Equal(t, "990", resp.GetFields()["pay_out_amount"].GetStringValue())
	ts.settlementService.AssertExpectations(t)
}

func TestServer_Authentication(t *testing.T) {
	tests := []struct {
		name     string
		call     func(ts *testServer) error
		wantCode codes.Code
	}{
		{
			name: "異常系: トークンなしで決済",
			call: func(ts *testServer) error {
				_, err := ts.client.Settle(context.Background(), &structpb.Struct{})
				return err
			},
			wantCode: codes.Unauthenticated,
		},
		{
			name: "異常系: トークンなしで決済記録取得",
			call: func(ts *testServer) error {
				_, err := ts.client.GetSettlement(context.Background(), &structpb.Struct{})
				return err
			},
			wantCode: codes.Unauthenticated,
		},
		{
			name: "異常系: 管理APIにJWTのみ",
			call: func(ts *testServer) error {
				ctx := bearerContext(t, &ts.cfg.JWT, solana.NewWallet().PublicKey())
				_, err := ts.client.ListMerchantSettlements(ctx, &structpb.Struct{})
				return err
			},
			wantCode: codes.Unauthenticated,
		},
		{
			name: "異常系: 管理APIキー不一致",
			call: func(ts *testServer) error {
				ctx := metadata.AppendToOutgoingContext(context.Background(), "x-api-key", "wrong")
				_, err := ts.client.ListMerchantSettlements(ctx, &structpb.Struct{})
				return err
			},
			wantCode: codes.Unauthenticated,
		},
		{
			name: "正常系: 管理APIキーで一覧取得",
			call: func(ts *testServer) error {
				ts.historyService.On("ListMerchantSettlements", mock.Anything, &historyapp.ListSettlementsRequest{
					Merchant: "merchant",
				}).Return(&historyapp.ListSettlementsResponse{Limit: 50}, nil)

				ctx := metadata.AppendToOutgoingContext(context.Background(), "x-api-key", "admin-key")
				req, err := structpb.NewStruct(map[string]interface{}{"merchant": "merchant"})
				if err != nil {
					return err
				}
				_, err = ts.client.ListMerchantSettlements(ctx, req)
				return err
			},
			wantCode: codes.OK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupTestServer(t)
			err := tt.call(ts)
			if tt.wantCode == codes.OK {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, status.Code(err))
			}
			ts.settlementService.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything)
		})
	}
}

func TestServer_Stop(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{Port: 9000}}
	logger := otelinfra.NewLogger(noop.NewTracerProvider().Tracer("test"))
	metrics, err := otelinfra.NewMetrics("test")
	require.NoError(t, err)

	server, err := NewServerWithListener(cfg, logger, metrics,
		new(MockSettlementService), new(MockHistoryService), bufconn.Listen(1024*1024), 9001)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- server.Start()
	}()

	// 少し待ってから停止
	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Stop(ctx))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("server did not stop")
	}
}
