package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"go.opentelemetry.io/otel/trace/noop"

	accountapp "swap-settlement/internal/application/account"
	authapp "swap-settlement/internal/application/auth"
	historyapp "swap-settlement/internal/application/history"
	settlementapp "swap-settlement/internal/application/settlement"
	otelinfra "swap-settlement/internal/infrastructure/observability/otel"
	restmiddleware "swap-settlement/internal/presentation/rest/middleware"
)

const (
	testPayer    = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
	testMerchant = "7Np41oeYqPefeNQEHSv1UDhYrehxin3NStELsSKCT4K2"
)

// MockAuthService モック認証サービス
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) GenerateToken(ctx context.Context, req *authapp.GenerateTokenRequest) (*authapp.GenerateTokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authapp.GenerateTokenResponse), args.Error(1)
}

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

func (m *MockHistoryService) ListEntries(ctx context.Context, req *historyapp.GetSettlementRequest) (*historyapp.ListEntriesResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*historyapp.ListEntriesResponse), args.Error(1)
}

func (m *MockHistoryService) ListMerchantSettlements(ctx context.Context, req *historyapp.ListSettlementsRequest) (*historyapp.ListSettlementsResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*historyapp.ListSettlementsResponse), args.Error(1)
}

// MockAccountService モックアカウントサービス
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccount(ctx context.Context, req *accountapp.GetAccountRequest) (*accountapp.GetAccountResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accountapp.GetAccountResponse), args.Error(1)
}

// newTestEcho エラーハンドリングと支払者の注入を行うEchoを作成
func newTestEcho(payer string) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {}
	logger := otelinfra.NewLoggerWithWriter(noop.NewTracerProvider().Tracer("test"), io.Discard, otelinfra.LogLevelError)
	e.Use(restmiddleware.ErrorHandlerMiddleware(logger))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if payer != "" {
				c.Set(restmiddleware.PayerKey, payer)
			}
			return next(c)
		}
	})
	return e
}

// doRequest リクエストを実行してレスポンスを返す
func doRequest(t *testing.T, e *echo.Echo, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// errorCode エラーレスポンスのコードを取得
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal error response: %v", err)
	}
	return resp.Error
}
