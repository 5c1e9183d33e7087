// Package storagerpc is the gRPC contract between the gateway and storage
// nodes. Messages are protobuf well-known types so no generated code is
// needed; the object key of a Put travels in request metadata.
package storagerpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "fgw.storage.v1.ObjectStore"

const (
	PutMethod      = "/" + ServiceName + "/Put"
	GetMethod      = "/" + ServiceName + "/Get"
	DeleteMethod   = "/" + ServiceName + "/Delete"
	ExistsMethod   = "/" + ServiceName + "/Exists"
	TopologyMethod = "/" + ServiceName + "/Topology"
)

// ObjectStoreServer is implemented by storage nodes.
type ObjectStoreServer interface {
	// Put stores the payload under the key carried in metadata.
	Put(context.Context, *wrapperspb.BytesValue) (*emptypb.Empty, error)
	Get(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
	Delete(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	Exists(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	// Topology reports the node's view of the cluster, see EncodeTopology.
	Topology(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// UnimplementedObjectStoreServer can be embedded for forward compatibility.
type UnimplementedObjectStoreServer struct{}

func (UnimplementedObjectStoreServer) Put(context.Context, *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method Put not implemented")
}

func (UnimplementedObjectStoreServer) Get(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Get not implemented")
}

func (UnimplementedObjectStoreServer) Delete(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method Delete not implemented")
}

func (UnimplementedObjectStoreServer) Exists(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Exists not implemented")
}

func (UnimplementedObjectStoreServer) Topology(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Topology not implemented")
}

func RegisterObjectStoreServer(s grpc.ServiceRegistrar, srv ObjectStoreServer) {
	s.RegisterService(&ObjectStoreServiceDesc, srv)
}

var ObjectStoreServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ObjectStoreServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Put",
			Handler: unary(PutMethod, func() *wrapperspb.BytesValue { return new(wrapperspb.BytesValue) },
				func(s ObjectStoreServer, ctx context.Context, in *wrapperspb.BytesValue) (*emptypb.Empty, error) {
					return s.Put(ctx, in)
				}),
		},
		{
			MethodName: "Get",
			Handler: unary(GetMethod, func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) },
				func(s ObjectStoreServer, ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
					return s.Get(ctx, in)
				}),
		},
		{
			MethodName: "Delete",
			Handler: unary(DeleteMethod, func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) },
				func(s ObjectStoreServer, ctx context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
					return s.Delete(ctx, in)
				}),
		},
		{
			MethodName: "Exists",
			Handler: unary(ExistsMethod, func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) },
				func(s ObjectStoreServer, ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
					return s.Exists(ctx, in)
				}),
		},
		{
			MethodName: "Topology",
			Handler: unary(TopologyMethod, func() *emptypb.Empty { return new(emptypb.Empty) },
				func(s ObjectStoreServer, ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error) {
					return s.Topology(ctx, in)
				}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storagerpc/service.go",
}

// unary builds a method handler the same way protoc-gen-go-grpc does.
func unary[Req, Resp proto.Message](
	fullMethod string,
	newReq func() Req,
	call func(ObjectStoreServer, context.Context, Req) (Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(ObjectStoreServer)
		if interceptor == nil {
			return call(s, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(s, ctx, req.(Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
