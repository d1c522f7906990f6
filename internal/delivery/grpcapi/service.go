package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "cupom.v1.RedemptionService"

	MethodResolve       = "/" + ServiceName + "/Resolve"
	MethodConfirmUse    = "/" + ServiceName + "/ConfirmUse"
	MethodLastValidated = "/" + ServiceName + "/LastValidated"
)

// RedemptionServer exposes the validation protocol to counter terminals.
// Messages are google.protobuf.Struct so no generated code is needed.
type RedemptionServer interface {
	Resolve(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ConfirmUse(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	LastValidated(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(srv RedemptionServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func unary(fullMethod string, call unaryCall) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RedemptionServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RedemptionServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var RedemptionServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RedemptionServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Resolve",
			Handler: unary(MethodResolve, func(s RedemptionServer, ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
				return s.Resolve(ctx, r)
			}),
		},
		{
			MethodName: "ConfirmUse",
			Handler: unary(MethodConfirmUse, func(s RedemptionServer, ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
				return s.ConfirmUse(ctx, r)
			}),
		},
		{
			MethodName: "LastValidated",
			Handler: unary(MethodLastValidated, func(s RedemptionServer, ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
				return s.LastValidated(ctx, r)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cupom/v1/redemption.proto",
}

func RegisterRedemptionServer(s grpc.ServiceRegistrar, srv RedemptionServer) {
	s.RegisterService(&RedemptionServiceDesc, srv)
}

// RedemptionClient calls the service over any client connection.
type RedemptionClient struct {
	cc grpc.ClientConnInterface
}

func NewRedemptionClient(cc grpc.ClientConnInterface) *RedemptionClient {
	return &RedemptionClient{cc: cc}
}

func (c *RedemptionClient) call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RedemptionClient) Resolve(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, MethodResolve, req, opts...)
}

func (c *RedemptionClient) ConfirmUse(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, MethodConfirmUse, req, opts...)
}

func (c *RedemptionClient) LastValidated(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, MethodLastValidated, req, opts...)
}
