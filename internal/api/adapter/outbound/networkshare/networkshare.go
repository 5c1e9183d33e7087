// Package networkshare spreads objects over gRPC storage nodes placed on a
// consistent hash ring. Writes go to the first healthy owner of the key;
// reads probe owners in ring order so objects stay reachable while
// membership changes.
package networkshare

import (
	"context"
	"errors"

	"github.com/anthanhphan/go-file-gateway/internal/api/port"
	"github.com/anthanhphan/go-file-gateway/internal/storage/domain"
	"github.com/anthanhphan/go-file-gateway/pkg/shard"
	"github.com/anthanhphan/gosdk/logger"
	"golang.org/x/sync/errgroup"
)

var errNoNodes = errors.New("no storage node available")

type Backend struct {
	ring  *shard.Ring
	nodes port.StorageNode
}

var _ port.StorageBackend = (*Backend)(nil)

func New(ring *shard.Ring, nodes port.StorageNode) *Backend {
	return &Backend{ring: ring, nodes: nodes}
}

func (b *Backend) Put(ctx context.Context, key string, data []byte) error {
	if err := domain.ValidateKey(key); err != nil {
		return err
	}

	candidates := b.ring.Candidates([]byte(key), b.ring.Len(), true)
	if len(candidates) == 0 {
		return domain.NewStorageError(domain.KindIOFailure, "put", key, errNoNodes)
	}

	var lastErr error
	for _, node := range candidates {
		err := b.nodes.Put(ctx, node.Addr, key, data)
		if err == nil {
			logger.Debugw("Object stored", "node", node.ID, "key", key, "bytes", len(data))
			return nil
		}
		if !domain.IsRetryable(err) {
			return err
		}
		logger.Warnw("Storage node rejected put, trying next owner", "node", node.ID, "key", key, "error", err.Error())
		lastErr = err
	}
	return lastErr
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	if err := domain.ValidateKey(key); err != nil {
		return nil, err
	}

	var data []byte
	err := b.probe(ctx, "get", key, func(node shard.Node) (bool, error) {
		got, err := b.nodes.Get(ctx, node.Addr, key)
		if errors.Is(err, domain.ErrObjectNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		data = got
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (b *Backend) Exists(ctx context.Context, key string) (bool, error) {
	if err := domain.ValidateKey(key); err != nil {
		return false, err
	}

	err := b.probe(ctx, "exists", key, func(node shard.Node) (bool, error) {
		return b.nodes.Exists(ctx, node.Addr, key)
	})
	if errors.Is(err, domain.ErrObjectNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete is sent to every owner. Failures on nodes that are already marked
// unhealthy or gone are logged and do not fail the call.
func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := domain.ValidateKey(key); err != nil {
		return err
	}

	candidates := b.ring.Candidates([]byte(key), b.ring.Len(), false)
	if len(candidates) == 0 {
		return domain.NewStorageError(domain.KindIOFailure, "delete", key, errNoNodes)
	}

	// Owners are independent; one failing must not cancel the others.
	var g errgroup.Group
	for _, node := range candidates {
		g.Go(func() error {
			err := b.nodes.Delete(ctx, node.Addr, key)
			if err == nil || errors.Is(err, domain.ErrObjectNotFound) {
				return nil
			}
			if domain.IsRetryable(err) && !node.Healthy() {
				logger.Warnw("Skipping delete on unavailable storage node", "node", node.ID, "status", string(node.Status), "key", key)
				return nil
			}
			return err
		})
	}
	return g.Wait()
}

// probe visits owners, healthy ones first, until visit reports a hit. It
// returns NotFound only when every node answered; otherwise the last I/O
// failure is returned.
func (b *Backend) probe(ctx context.Context, op, key string, visit func(shard.Node) (bool, error)) error {
	candidates := probeOrder(b.ring.Candidates([]byte(key), b.ring.Len(), false))
	if len(candidates) == 0 {
		return domain.NewStorageError(domain.KindIOFailure, op, key, errNoNodes)
	}

	var ioErr error
	for _, node := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}
		found, err := visit(node)
		if err != nil {
			if !domain.IsRetryable(err) {
				return err
			}
			logger.Debugw("Storage node probe failed", "op", op, "node", node.ID, "key", key, "error", err.Error())
			ioErr = err
			continue
		}
		if found {
			return nil
		}
	}
	if ioErr != nil {
		return ioErr
	}
	return domain.NewStorageError(domain.KindNotFound, op, key, nil)
}

// probeOrder keeps ring order but moves unhealthy nodes to the back.
func probeOrder(nodes []shard.Node) []shard.Node {
	ordered := make([]shard.Node, 0, len(nodes))
	var rest []shard.Node
	for _, n := range nodes {
		if n.Healthy() {
			ordered = append(ordered, n)
		} else {
			rest = append(rest, n)
		}
	}
	return append(ordered, rest...)
}
