package grpc_handler

import (
	"context"
	"errors"

	"github.com/anthanhphan/go-file-gateway/internal/storage/domain"
	"github.com/anthanhphan/go-file-gateway/internal/storage/port"
	"github.com/anthanhphan/go-file-gateway/pkg/storagerpc"
	"github.com/anthanhphan/gosdk/logger"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Server implements storagerpc.ObjectStoreServer.
type Server struct {
	storagerpc.UnimplementedObjectStoreServer
	service port.StorageService
}

var _ storagerpc.ObjectStoreServer = (*Server)(nil)

func NewServer(service port.StorageService) *Server {
	return &Server{
		service: service,
	}
}

func (s *Server) Put(ctx context.Context, req *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	key, ok := storagerpc.ObjectKeyFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "object key metadata is required")
	}
	if err := s.service.PutObject(ctx, key, req.GetValue()); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Server) Get(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	data, err := s.service.GetObject(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Bytes(data), nil
}

func (s *Server) Delete(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.service.DeleteObject(ctx, req.GetValue()); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Server) Exists(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	ok, err := s.service.HasObject(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Bool(ok), nil
}

func (s *Server) Topology(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	nodes, err := s.service.GetClusterTopology(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to get topology: %v", err)
	}
	out, err := storagerpc.EncodeTopology(nodes)
	if err != nil {
		logger.Errorw("Topology encoding failed", "nodes", len(nodes), "error", err.Error())
		return nil, status.Errorf(codes.Internal, "failed to encode topology: %v", err)
	}
	return out, nil
}

// toStatus maps storage errors onto codes the gateway maps back.
func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidKey):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrObjectNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrQuotaExceeded):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
