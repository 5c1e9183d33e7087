package storage_node

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/anthanhphan/go-file-gateway/internal/api/port"
	"github.com/anthanhphan/go-file-gateway/internal/storage/domain"
	"github.com/anthanhphan/go-file-gateway/pkg/resilience"
	"github.com/anthanhphan/go-file-gateway/pkg/storagerpc"
	"github.com/anthanhphan/gosdk/logger"
)

// ClientFactory builds a client for addr. Tests swap it for bufconn.
type ClientFactory func(addr string) (storagerpc.ObjectStoreClient, io.Closer, error)

// GrpcAdapter calls storage nodes by address with one circuit breaker per
// node. Every failure is returned as a *domain.StorageError except invalid
// keys and caller cancellation.
type GrpcAdapter struct {
	clients  map[string]storagerpc.ObjectStoreClient
	conns    map[string]io.Closer
	breakers map[string]*resilience.CircuitBreaker
	factory  ClientFactory
	mu       sync.RWMutex
}

var _ port.StorageNode = (*GrpcAdapter)(nil)

func NewGrpcAdapter() *GrpcAdapter {
	return &GrpcAdapter{
		clients:  make(map[string]storagerpc.ObjectStoreClient),
		conns:    make(map[string]io.Closer),
		breakers: make(map[string]*resilience.CircuitBreaker),
		factory:  dialNode,
	}
}

// SetClientFactory replaces how connections are made.
func (a *GrpcAdapter) SetClientFactory(f ClientFactory) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.factory = f
}

func (a *GrpcAdapter) Put(ctx context.Context, addr, key string, data []byte) error {
	return a.call(ctx, addr, "put", key, func(ctx context.Context, client storagerpc.ObjectStoreClient) error {
		_, err := client.Put(storagerpc.WithObjectKey(ctx, key), wrapperspb.Bytes(data))
		return err
	})
}

func (a *GrpcAdapter) Get(ctx context.Context, addr, key string) ([]byte, error) {
	var data []byte
	err := a.call(ctx, addr, "get", key, func(ctx context.Context, client storagerpc.ObjectStoreClient) error {
		resp, err := client.Get(ctx, wrapperspb.String(key))
		if err != nil {
			return err
		}
		data = resp.GetValue()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

func (a *GrpcAdapter) Delete(ctx context.Context, addr, key string) error {
	return a.call(ctx, addr, "delete", key, func(ctx context.Context, client storagerpc.ObjectStoreClient) error {
		_, err := client.Delete(ctx, wrapperspb.String(key))
		return err
	})
}

func (a *GrpcAdapter) Exists(ctx context.Context, addr, key string) (bool, error) {
	var ok bool
	err := a.call(ctx, addr, "exists", key, func(ctx context.Context, client storagerpc.ObjectStoreClient) error {
		resp, err := client.Exists(ctx, wrapperspb.String(key))
		if err != nil {
			return err
		}
		ok = resp.GetValue()
		return nil
	})
	return ok, err
}

func (a *GrpcAdapter) call(ctx context.Context, addr, op, key string, fn func(context.Context, storagerpc.ObjectStoreClient) error) error {
	breaker := a.getBreaker(addr)
	err := breaker.Execute(ctx, func(execCtx context.Context) error {
		client, err := a.getClient(addr)
		if err != nil {
			return err
		}
		return normalizeRPCErr(execCtx, fn(execCtx, client))
	})
	if err != nil {
		a.handleRPCErr(addr, err, op)
		return toStorageError(ctx, op, key, err)
	}
	return nil
}

func (a *GrpcAdapter) getClient(addr string) (storagerpc.ObjectStoreClient, error) {
	a.mu.RLock()
	client, ok := a.clients[addr]
	a.mu.RUnlock()
	if ok {
		return client, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if client, ok := a.clients[addr]; ok {
		return client, nil
	}

	client, conn, err := a.factory(addr)
	if err != nil {
		return nil, err
	}
	a.clients[addr] = client
	if conn != nil {
		a.conns[addr] = conn
	}
	return client, nil
}

func dialNode(addr string) (storagerpc.ObjectStoreClient, io.Closer, error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(storagerpc.MaxMessageSize),
			grpc.MaxCallSendMsgSize(storagerpc.MaxMessageSize),
		),
	)
	if err != nil {
		return nil, nil, err
	}
	return storagerpc.NewObjectStoreClient(conn), conn, nil
}

func (a *GrpcAdapter) getBreaker(addr string) *resilience.CircuitBreaker {
	a.mu.RLock()
	cb, ok := a.breakers[addr]
	a.mu.RUnlock()
	if ok {
		return cb
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if cb, ok = a.breakers[addr]; ok {
		return cb
	}
	cb = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:              addr,
		FailureThreshold:  3,
		SuccessThreshold:  2,
		OpenTimeout:       10 * time.Second,
		HalfOpenMaxFlight: 5,
		IsFailure:         isNodeFailure,
		OnStateChange: func(name string, from, to resilience.CircuitBreakerState) {
			logger.Infow("Storage node breaker changed state", "addr", name, "from", string(from), "to", string(to))
		},
	})
	a.breakers[addr] = cb
	return cb
}

// isNodeFailure excludes answers that prove the node is healthy.
func isNodeFailure(err error) bool {
	switch status.Code(err) {
	case codes.NotFound, codes.InvalidArgument, codes.ResourceExhausted:
		return false
	}
	return true
}

func (a *GrpcAdapter) handleRPCErr(addr string, err error, op string) {
	if errors.Is(err, resilience.ErrCircuitOpen) {
		logger.Warnw("Storage RPC short-circuited", "op", op, "addr", addr, "error", err.Error())
		var openErr *resilience.CircuitOpenError
		if errors.As(err, &openErr) && openErr.RetryAfter <= 0 {
			// Force reconnect when breaker is ready to probe immediately.
			a.dropClient(addr)
		}
		return
	}
	if errors.Is(err, context.Canceled) || !isNodeFailure(err) {
		return
	}

	logger.Warnw("Storage RPC failed", "op", op, "addr", addr, "error", err.Error())
	a.dropClient(addr)
}

func (a *GrpcAdapter) dropClient(addr string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if conn, ok := a.conns[addr]; ok {
		_ = conn.Close()
		delete(a.conns, addr)
	}
	delete(a.clients, addr)
}

func normalizeRPCErr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || status.Code(err) == codes.Canceled {
		return context.Canceled
	}
	// Transport errors can surface as EOF after the caller canceled.
	if errors.Is(err, io.EOF) && ctx != nil && errors.Is(ctx.Err(), context.Canceled) {
		return context.Canceled
	}
	return err
}

// toStorageError maps node answers back to the storage error model.
func toStorageError(ctx context.Context, op, key string, err error) error {
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	st, isStatus := status.FromError(err)
	if !isStatus {
		return domain.NewStorageError(domain.KindIOFailure, op, key, err)
	}
	switch st.Code() {
	case codes.NotFound:
		return domain.NewStorageError(domain.KindNotFound, op, key, nil)
	case codes.ResourceExhausted:
		return domain.NewStorageError(domain.KindQuotaExceeded, op, key, errors.New(st.Message()))
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", domain.ErrInvalidKey, st.Message())
	default:
		return domain.NewStorageError(domain.KindIOFailure, op, key, err)
	}
}

func (a *GrpcAdapter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for addr, conn := range a.conns {
		_ = conn.Close()
		delete(a.conns, addr)
		delete(a.clients, addr)
	}
}
