// Package pb settlement.v1.SettlementService のサービス定義
//
// メッセージは google.protobuf.Struct で受け渡す。金額は精度を保つため10進文字列で表す。
package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	SettlementService_Settle_FullMethodName                  = "/settlement.v1.SettlementService/Settle"
	SettlementService_GetSettlement_FullMethodName           = "/settlement.v1.SettlementService/GetSettlement"
	SettlementService_ListMerchantSettlements_FullMethodName = "/settlement.v1.SettlementService/ListMerchantSettlements"
)

// SettlementServiceClient 決済サービスのクライアントAPI
type SettlementServiceClient interface {
	Settle(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetSettlement(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListMerchantSettlements(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type settlementServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewSettlementServiceClient 新しいクライアントを作成
func NewSettlementServiceClient(cc grpc.ClientConnInterface) SettlementServiceClient {
	return &settlementServiceClient{cc}
}

func (c *settlementServiceClient) Settle(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SettlementService_Settle_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *settlementServiceClient) GetSettlement(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SettlementService_GetSettlement_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *settlementServiceClient) ListMerchantSettlements(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SettlementService_ListMerchantSettlements_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// SettlementServiceServer 決済サービスのサーバーAPI
type SettlementServiceServer interface {
	Settle(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSettlement(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListMerchantSettlements(context.Context, *structpb.Struct) (*structpb.Struct, error)
	mustEmbedUnimplementedSettlementServiceServer()
}

// UnimplementedSettlementServiceServer 未実装メソッドの既定実装
type UnimplementedSettlementServiceServer struct{}

func (UnimplementedSettlementServiceServer) Settle(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Settle not implemented")
}

func (UnimplementedSettlementServiceServer) GetSettlement(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSettlement not implemented")
}

func (UnimplementedSettlementServiceServer) ListMerchantSettlements(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListMerchantSettlements not implemented")
}

func (UnimplementedSettlementServiceServer) mustEmbedUnimplementedSettlementServiceServer() {}

// RegisterSettlementServiceServer サーバーに決済サービスを登録
func RegisterSettlementServiceServer(s grpc.ServiceRegistrar, srv SettlementServiceServer) {
	s.RegisterService(&SettlementService_ServiceDesc, srv)
}

func unaryHandler(
	fullMethod string,
	call func(srv SettlementServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error),
) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SettlementServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(SettlementServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// SettlementService_ServiceDesc settlement.v1.SettlementService のサービス記述子
var SettlementService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "settlement.v1.SettlementService",
	HandlerType: (*SettlementServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Settle",
			Handler: unaryHandler(SettlementService_Settle_FullMethodName,
				func(srv SettlementServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
					return srv.Settle(ctx, in)
				}),
		},
		{
			MethodName: "GetSettlement",
			Handler: unaryHandler(SettlementService_GetSettlement_FullMethodName,
				func(srv SettlementServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
					return srv.GetSettlement(ctx, in)
				}),
		},
		{
			MethodName: "ListMerchantSettlements",
			Handler: unaryHandler(SettlementService_ListMerchantSettlements_FullMethodName,
				func(srv SettlementServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
					return srv.ListMerchantSettlements(ctx, in)
				}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "settlement/v1/settlement.proto",
}
