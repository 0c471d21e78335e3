package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityHeadersMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		https    bool
		wantCSP  string
		wantHSTS bool
	}{
		{
			name:    "APIパスは厳格なCSP",
			path:    "/api/v1/settlements",
			wantCSP: "default-src 'none'; frame-ancestors 'none'",
		},
		{
			name:    "Swagger UIは外部CDNを許可",
			path:    "/swagger/index.html",
			wantCSP: "default-src 'self'; script-src 'self' 'unsafe-inline' https://unpkg.com https://cdn.jsdelivr.net; style-src 'self' 'unsafe-inline' https://unpkg.com; img-src 'self' data: https:;",
		},
		{
			name:     "HTTPSではHSTSを付与",
			path:     "/health",
			https:    true,
			wantCSP:  "default-src 'none'; frame-ancestors 'none'",
			wantHSTS: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.https {
				req.Header.Set(echo.HeaderXForwardedProto, "https")
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := SecurityHeadersMiddleware()(func(c echo.Context) error {
				return c.String(http.StatusOK, "ok")
			})(c)
			require.NoError(t, err)

			h := rec.Header()
			assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
			assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
			assert.Equal(t, "no-referrer", h.Get("Referrer-Policy"))
			assert.Equal(t, "no-store", h.Get("Cache-Control"))
			assert.Equal(t, tt.wantCSP, h.Get("Content-Security-Policy"))
			if tt.wantHSTS {
				assert.Equal(t, "max-age=31536000; includeSubDomains", h.Get("Strict-Transport-Security"))
			} else {
				assert.Empty(t, h.Get("Strict-Transport-Security"))
			}
		})
	}
}

func TestIsSwaggerPath(t *testing.T) {
	assert.True(t, isSwaggerPath("/swagger"))
	assert.True(t, isSwaggerPath("/swagger/doc.json"))
	assert.True(t, isSwaggerPath("/openapi.yaml"))
	assert.True(t, isSwaggerPath("/redoc"))
	assert.False(t, isSwaggerPath("/swaggerish"))
	assert.False(t, isSwaggerPath("/api/v1/settlements"))
}
