package interceptor

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"swap-settlement/internal/infrastructure/config"
	otelinfra "swap-settlement/internal/infrastructure/observability/otel"
)

func TestAPIKeyInterceptor(t *testing.T) {
	withPeer := func(ctx context.Context, ip string) context.Context {
		return peer.NewContext(ctx, &peer.Peer{Addr: &net.TCPAddr{IP: net.ParseIP(ip), Port: 5000}})
	}

	tests := []struct {
		name     string
		cfg      *config.AdminAPIConfig
		ctx      func() context.Context
		wantCode codes.Code
	}{
		{
			name:     "異常系: 管理APIが無効",
			cfg:      &config.AdminAPIConfig{Enabled: false, APIKey: "key"},
			ctx:      context.Background,
			wantCode: codes.PermissionDenied,
		},
		{
			name:     "異常系: メタデータなし",
			cfg:      &config.AdminAPIConfig{Enabled: true, APIKey: "key"},
			ctx:      context.Background,
			wantCode: codes.Unauthenticated,
		},
		{
			name: "異常系: APIキーなし",
			cfg:  &config.AdminAPIConfig{Enabled: true, APIKey: "key"},
			ctx: func() context.Context {
				return metadata.NewIncomingContext(context.Background(), metadata.New(nil))
			},
			wantCode: codes.Unauthenticated,
		},
		{
			name: "異常系: APIキー不一致",
			cfg:  &config.AdminAPIConfig{Enabled: true, APIKey: "key"},
			ctx: func() context.Context {
				return metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-api-key", "wrong"))
			},
			wantCode: codes.Unauthenticated,
		},
		{
			name: "正常系: 有効なAPIキー",
			cfg:  &config.AdminAPIConfig{Enabled: true, APIKey: "key"},
			ctx: func() context.Context {
				return metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-api-key", "key"))
			},
			wantCode: codes.OK,
		},
		{
			name: "正常系: 接続元IPがCIDR範囲内",
			cfg:  &config.AdminAPIConfig{Enabled: true, APIKey: "key", AllowedIPs: []string{"10.0.0.0/8"}},
			ctx: func() context.Context {
				ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-api-key", "key"))
				return withPeer(ctx, "10.1.2.3")
			},
			wantCode: codes.OK,
		},
		{
			name: "正常系: X-Forwarded-Forの先頭IPで判定",
			cfg:  &config.AdminAPIConfig{Enabled: true, APIKey: "key", AllowedIPs: []string{"192.168.1.10"}},
			ctx: func() context.Context {
				ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(
					"x-api-key", "key",
					"x-forwarded-for", "192.168.1.10, 10.0.0.1",
				))
				return withPeer(ctx, "172.16.0.1")
			},
			wantCode: codes.OK,
		},
		{
			name: "異常系: 許可されていないIP",
			cfg:  &config.AdminAPIConfig{Enabled: true, APIKey: "key", AllowedIPs: []string{"10.0.0.0/8"}},
			ctx: func() context.Context {
				ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-api-key", "key"))
				return withPeer(ctx, "172.16.0.1")
			},
			wantCode: codes.PermissionDenied,
		},
		{
			name: "異常系: IP制限ありで接続元が不明",
			cfg:  &config.AdminAPIConfig{Enabled: true, APIKey: "key", AllowedIPs: []string{"10.0.0.0/8"}},
			ctx: func() context.Context {
				return metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-api-key", "key"))
			},
			wantCode: codes.PermissionDenied,
		},
	}

	logger := otelinfra.NewLogger(noop.NewTracerProvider().Tracer("test"))
	info := &grpc.UnaryServerInfo{FullMethod: "/settlement.v1.SettlementService/ListMerchantSettlements"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return "success", nil
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := APIKeyInterceptor(tt.cfg, logger)(tt.ctx(), nil, info, handler)
			if tt.wantCode == codes.OK {
				require.NoError(t, err)
				assert.Equal(t, "success", resp)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, status.Code(err))
		})
	}
}

func TestIsIPAllowed(t *testing.T) {
	assert.True(t, isIPAllowed("10.0.0.1", []string{"10.0.0.1"}))
	assert.True(t, isIPAllowed("10.200.0.1", []string{"10.0.0.0/8"}))
	assert.False(t, isIPAllowed("100.0.0.1", []string{"10.0.0.0/8"}))
	// 文字列の前方一致では許可しない
	assert.False(t, isIPAllowed("10.0.0.10", []string{"10.0.0.1/32"}))
	assert.False(t, isIPAllowed("", []string{"10.0.0.0/8"}))
}
