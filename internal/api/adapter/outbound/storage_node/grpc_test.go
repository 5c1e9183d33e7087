package storage_node

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	grpc_handler "github.com/anthanhphan/go-file-gateway/internal/storage/adapter/inbound/grpc"
	"github.com/anthanhphan/go-file-gateway/internal/storage/adapter/outbound/diskstore"
	"github.com/anthanhphan/go-file-gateway/internal/storage/domain"
	"github.com/anthanhphan/go-file-gateway/internal/storage/service"
	"github.com/anthanhphan/go-file-gateway/pkg/resilience"
	"github.com/anthanhphan/go-file-gateway/pkg/shard"
	"github.com/anthanhphan/go-file-gateway/pkg/storagerpc"
)

// startNodes serves one disk-backed storage node per address over bufconn.
func startNodes(t *testing.T, quota int64, addrs ...string) *GrpcAdapter {
	t.Helper()

	listeners := make(map[string]*bufconn.Listener, len(addrs))
	for _, addr := range addrs {
		store, err := diskstore.New(diskstore.Config{Root: t.TempDir(), QuotaBytes: quota})
		require.NoError(t, err)

		lis := bufconn.Listen(1 << 20)
		srv := grpc.NewServer()
		storagerpc.RegisterObjectStoreServer(srv, grpc_handler.NewServer(service.NewStorageService(store, shard.NewRing(4), addr)))
		go func() { _ = srv.Serve(lis) }()
		t.Cleanup(srv.Stop)
		listeners[addr] = lis
	}

	adapter := NewGrpcAdapter()
	adapter.SetClientFactory(func(addr string) (storagerpc.ObjectStoreClient, io.Closer, error) {
		lis, ok := listeners[addr]
		if !ok {
			return nil, nil, errors.New("unknown node " + addr)
		}
		conn, err := grpc.NewClient("passthrough:///"+addr,
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
		if err != nil {
			return nil, nil, err
		}
		return storagerpc.NewObjectStoreClient(conn), conn, nil
	})
	t.Cleanup(adapter.Close)
	return adapter
}

func TestGrpcAdapter_ObjectLifecycle(t *testing.T) {
	adapter := startNodes(t, 0, "node-a:8081")
	ctx := context.Background()
	key := domain.NewStorageKey()

	require.NoError(t, adapter.Put(ctx, "node-a:8081", key, []byte("payload")))

	ok, err := adapter.Exists(ctx, "node-a:8081", key)
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := adapter.Get(ctx, "node-a:8081", key)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	require.NoError(t, adapter.Delete(ctx, "node-a:8081", key))
	require.NoError(t, adapter.Delete(ctx, "node-a:8081", key))

	_, err = adapter.Get(ctx, "node-a:8081", key)
	assert.ErrorIs(t, err, domain.ErrObjectNotFound)
}

func TestGrpcAdapter_EmptyObject(t *testing.T) {
	adapter := startNodes(t, 0, "node-a:8081")
	ctx := context.Background()
	key := domain.NewStorageKey()

	require.NoError(t, adapter.Put(ctx, "node-a:8081", key, []byte{}))
	data, err := adapter.Get(ctx, "node-a:8081", key)
	require.NoError(t, err)
	assert.NotNil(t, data)
	assert.Empty(t, data)
}

func TestGrpcAdapter_MapsNodeErrors(t *testing.T) {
	adapter := startNodes(t, 4, "node-a:8081")
	ctx := context.Background()

	err := adapter.Put(ctx, "node-a:8081", domain.NewStorageKey(), []byte("too large"))
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)

	err = adapter.Put(ctx, "node-a:8081", "../escape", []byte("x"))
	assert.ErrorIs(t, err, domain.ErrInvalidKey)

	// Caller errors must not trip the breaker.
	for i := 0; i < 5; i++ {
		_, err = adapter.Get(ctx, "node-a:8081", domain.NewStorageKey())
		assert.ErrorIs(t, err, domain.ErrObjectNotFound)
	}
	assert.Equal(t, resilience.CircuitClosed, adapter.getBreaker("node-a:8081").State())
}

func TestGrpcAdapter_UnreachableNodeOpensBreaker(t *testing.T) {
	adapter := startNodes(t, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := adapter.Get(ctx, "node-x:8081", "objects/ab/k")
		assert.ErrorIs(t, err, domain.ErrIOFailure)
	}

	_, err := adapter.Get(ctx, "node-x:8081", "objects/ab/k")
	assert.ErrorIs(t, err, domain.ErrIOFailure)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
}

func TestNormalizeRPCErr(t *testing.T) {
	t.Run("grpc canceled to context canceled", func(t *testing.T) {
		err := normalizeRPCErr(context.Background(), status.Error(codes.Canceled, "canceled"))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("eof with canceled context to context canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := normalizeRPCErr(ctx, io.EOF)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("deadline exceeded stays as failure", func(t *testing.T) {
		input := status.Error(codes.DeadlineExceeded, "timeout")
		err := normalizeRPCErr(context.Background(), input)
		assert.Equal(t, codes.DeadlineExceeded, status.Code(err))
	})
}

func TestToStorageError(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		in   error
		want error
	}{
		{name: "not found", in: status.Error(codes.NotFound, "gone"), want: domain.ErrObjectNotFound},
		{name: "quota", in: status.Error(codes.ResourceExhausted, "full"), want: domain.ErrQuotaExceeded},
		{name: "invalid key", in: status.Error(codes.InvalidArgument, "bad"), want: domain.ErrInvalidKey},
		{name: "unavailable", in: status.Error(codes.Unavailable, "down"), want: domain.ErrIOFailure},
		{name: "node deadline", in: status.Error(codes.DeadlineExceeded, "slow"), want: domain.ErrIOFailure},
		{name: "dial failure", in: errors.New("connection refused"), want: domain.ErrIOFailure},
		{name: "canceled", in: context.Canceled, want: context.Canceled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, toStorageError(ctx, "get", "objects/ab/k", tc.in), tc.want)
		})
	}
}

func TestIsNodeFailure(t *testing.T) {
	assert.False(t, isNodeFailure(status.Error(codes.NotFound, "")))
	assert.False(t, isNodeFailure(status.Error(codes.ResourceExhausted, "")))
	assert.False(t, isNodeFailure(status.Error(codes.InvalidArgument, "")))
	assert.True(t, isNodeFailure(status.Error(codes.Unavailable, "")))
	assert.True(t, isNodeFailure(errors.New("dial")))
}
