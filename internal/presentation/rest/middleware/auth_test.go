package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"swap-settlement/internal/infrastructure/config"
	otelinfra "swap-settlement/internal/infrastructure/observability/otel"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		Secret:     "test-secret",
		Issuer:     "swap-settlement",
		Expiration: time.Hour,
	}
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testJWTConfig()
	payer := solana.NewWallet().PublicKey()
	now := time.Now()

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantPayer  string
	}{
		{
			name:       "異常系: Authorizationヘッダーなし",
			header:     "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "異常系: Bearer形式でない",
			header:     "InvalidFormat token",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "異常系: 不正なトークン",
			header:     "Bearer invalid-token",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "異常系: 署名鍵が異なる",
			header: "Bearer " + signToken(t, "other-secret", jwt.MapClaims{
				"sub": payer.String(), "iss": cfg.Issuer, "exp": now.Add(time.Hour).Unix(),
			}),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "異常系: 期限切れ",
			header: "Bearer " + signToken(t, cfg.Secret, jwt.MapClaims{
				"sub": payer.String(), "iss": cfg.Issuer, "exp": now.Add(-time.Minute).Unix(),
			}),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "異常系: 発行者が異なる",
			header: "Bearer " + signToken(t, cfg.Secret, jwt.MapClaims{
				"sub": payer.String(), "iss": "someone-else", "exp": now.Add(time.Hour).Unix(),
			}),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "異常系: subがアドレスでない",
			header: "Bearer " + signToken(t, cfg.Secret, jwt.MapClaims{
				"sub": "user123", "iss": cfg.Issuer, "exp": now.Add(time.Hour).Unix(),
			}),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "正常系: 有効なトークン",
			header: "Bearer " + signToken(t, cfg.Secret, jwt.MapClaims{
				"sub": payer.String(), "iss": cfg.Issuer, "exp": now.Add(time.Hour).Unix(),
			}),
			wantStatus: http.StatusOK,
			wantPayer:  payer.String(),
		},
	}

	tracer := noop.NewTracerProvider().Tracer("test")
	logger := otelinfra.NewLogger(tracer)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var gotPayer string
			handler := AuthMiddleware(cfg, logger)(func(c echo.Context) error {
				gotPayer = PayerFrom(c)
				return c.String(http.StatusOK, "ok")
			})

			err := handler(c)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantPayer, gotPayer)
		})
	}
}

func TestPayerFrom_Unset(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Empty(t, PayerFrom(c))
}
