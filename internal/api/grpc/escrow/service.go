package escrow

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "escrow.v1.EscrowService"

// Method names of the escrow service.
const (
	MethodInit          = "Init"
	MethodAdmin         = "Admin"
	MethodFund          = "Fund"
	MethodCreatePackage = "CreatePackage"
	MethodClaim         = "Claim"
	MethodDisburse      = "Disburse"
	MethodRevoke        = "Revoke"
	MethodRefund        = "Refund"
	MethodGetPackage    = "GetPackage"
	MethodBalance       = "Balance"
	MethodLocked        = "Locked"
	MethodAvailable     = "Available"
	MethodMint          = "Mint"
)

// Request and response fields beyond the package record fields of the codec.
const (
	FieldAdmin  = "admin"
	FieldFrom   = "from"
	FieldTo     = "to"
	FieldHolder = "holder"
)

// FullMethod returns the invocation path of a method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// EscrowServer is the server API for the escrow service.
type EscrowServer interface {
	Init(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Admin(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Fund(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CreatePackage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Claim(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Disburse(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Revoke(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Refund(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetPackage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Balance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Locked(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Available(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Mint(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// unaryMethod is an EscrowServer method expression.
type unaryMethod func(EscrowServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// ServiceDesc describes the escrow service for grpc.ServiceRegistrar.
//
//nolint:gochecknoglobals // Same shape as generated service descriptors.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EscrowServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodInit, EscrowServer.Init),
		unary(MethodAdmin, EscrowServer.Admin),
		unary(MethodFund, EscrowServer.Fund),
		unary(MethodCreatePackage, EscrowServer.CreatePackage),
		unary(MethodClaim, EscrowServer.Claim),
		unary(MethodDisburse, EscrowServer.Disburse),
		unary(MethodRevoke, EscrowServer.Revoke),
		unary(MethodRefund, EscrowServer.Refund),
		unary(MethodGetPackage, EscrowServer.GetPackage),
		unary(MethodBalance, EscrowServer.Balance),
		unary(MethodLocked, EscrowServer.Locked),
		unary(MethodAvailable, EscrowServer.Available),
		unary(MethodMint, EscrowServer.Mint),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "escrow/v1/escrow.proto",
}

// RegisterEscrowServer registers srv on registrar.
func RegisterEscrowServer(registrar grpc.ServiceRegistrar, srv EscrowServer) {
	registrar.RegisterService(&ServiceDesc, srv)
}

// unary builds the descriptor of one unary method.
func unary(name string, method unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(
			srv any,
			ctx context.Context,
			dec func(any) error,
			interceptor grpc.UnaryServerInterceptor,
		) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}

			server, _ := srv.(EscrowServer)
			if interceptor == nil {
				return method(server, ctx, in)
			}

			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(name),
			}

			handler := func(ctx context.Context, req any) (any, error) {
				request, _ := req.(*structpb.Struct)

				return method(server, ctx, request)
			}

			return interceptor(ctx, in, info, handler)
		},
	}
}
