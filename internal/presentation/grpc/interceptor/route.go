package interceptor

import (
	"context"

	"google.golang.org/grpc"
)

// ByMethod メソッドごとに認証インターセプターを切り替える
// routes に無いメソッドには fallback を適用する
func ByMethod(routes map[string]grpc.UnaryServerInterceptor, fallback grpc.UnaryServerInterceptor) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if in, ok := routes[info.FullMethod]; ok {
			return in(ctx, req, info, handler)
		}
		return fallback(ctx, req, info, handler)
	}
}
