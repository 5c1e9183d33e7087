package grpc_handler

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/anthanhphan/go-file-gateway/internal/storage/adapter/outbound/diskstore"
	"github.com/anthanhphan/go-file-gateway/internal/storage/domain"
	"github.com/anthanhphan/go-file-gateway/internal/storage/service"
	"github.com/anthanhphan/go-file-gateway/pkg/shard"
	"github.com/anthanhphan/go-file-gateway/pkg/storagerpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func startNode(t *testing.T, quota int64) storagerpc.ObjectStoreClient {
	t.Helper()

	store, err := diskstore.New(diskstore.Config{Root: t.TempDir(), QuotaBytes: quota})
	require.NoError(t, err)
	ring := shard.NewRing(4)
	ring.AddNode(shard.Node{ID: "node-1", Addr: "10.0.0.1:8081"})

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	storagerpc.RegisterObjectStoreServer(srv, NewServer(service.NewStorageService(store, ring, "node-1")))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return storagerpc.NewObjectStoreClient(conn)
}

func TestServer_ObjectLifecycle(t *testing.T) {
	client := startNode(t, 0)
	ctx := context.Background()
	key := "objects/ab/0d5c"

	_, err := client.Put(storagerpc.WithObjectKey(ctx, key), wrapperspb.Bytes([]byte("bytes")))
	require.NoError(t, err)

	exists, err := client.Exists(ctx, wrapperspb.String(key))
	require.NoError(t, err)
	assert.True(t, exists.GetValue())

	got, err := client.Get(ctx, wrapperspb.String(key))
	require.NoError(t, err)
	assert.Equal(t, []byte("bytes"), got.GetValue())

	_, err = client.Delete(ctx, wrapperspb.String(key))
	require.NoError(t, err)
	_, err = client.Delete(ctx, wrapperspb.String(key))
	require.NoError(t, err)

	_, err = client.Get(ctx, wrapperspb.String(key))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestServer_ErrorCodes(t *testing.T) {
	client := startNode(t, 4)
	ctx := context.Background()

	_, err := client.Put(ctx, wrapperspb.Bytes([]byte("x")))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Get(ctx, wrapperspb.String("../etc/passwd"))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Put(storagerpc.WithObjectKey(ctx, "objects/ab/big"), wrapperspb.Bytes([]byte("too large")))
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestServer_Topology(t *testing.T) {
	client := startNode(t, 0)

	resp, err := client.Topology(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)

	nodes := storagerpc.DecodeTopology(resp)
	require.Len(t, nodes, 1)
	assert.Equal(t, "node-1", nodes[0].ID)
	assert.Equal(t, "10.0.0.1:8081", nodes[0].Addr)
}

func TestToStatus(t *testing.T) {
	cases := []struct {
		err  error
		code codes.Code
	}{
		{domain.ErrInvalidKey, codes.InvalidArgument},
		{domain.NewStorageError(domain.KindNotFound, "get", "k", nil), codes.NotFound},
		{domain.NewStorageError(domain.KindQuotaExceeded, "put", "k", nil), codes.ResourceExhausted},
		{domain.NewStorageError(domain.KindIOFailure, "put", "k", errors.New("eio")), codes.Internal},
		{context.Canceled, codes.Canceled},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, status.Code(toStatus(tc.err)), tc.err.Error())
	}
}
