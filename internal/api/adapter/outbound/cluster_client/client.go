// Package cluster_client keeps the gateway's hash ring in step with the
// storage cluster. The gateway never joins gossip; it asks any reachable node
// for the topology it sees.
package cluster_client

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/anthanhphan/go-file-gateway/pkg/shard"
	"github.com/anthanhphan/go-file-gateway/pkg/storagerpc"
	"github.com/anthanhphan/gosdk/logger"
)

const (
	defaultPollInterval = 5 * time.Second
	seedInterval        = time.Minute
	topologyTimeout     = 2 * time.Second
)

type ClientFactory func(addr string) (storagerpc.ObjectStoreClient, error)

type ClusterClient struct {
	ring         *shard.Ring
	seeds        []string
	pollInterval time.Duration
	newClient    ClientFactory

	mu           sync.Mutex
	clients      map[string]storagerpc.ObjectStoreClient
	conns        map[string]*grpc.ClientConn
	targets      map[string]*targetState
	lastSeedPoll time.Time
	failedPolls  int

	stop     chan struct{}
	stopOnce sync.Once
}

func NewClusterClient(ring *shard.Ring, seeds []string, pollInterval time.Duration) *ClusterClient {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &ClusterClient{
		ring:         ring,
		seeds:        seeds,
		pollInterval: pollInterval,
		clients:      make(map[string]storagerpc.ObjectStoreClient),
		conns:        make(map[string]*grpc.ClientConn),
		targets:      make(map[string]*targetState),
		stop:         make(chan struct{}),
	}
}

// SetClientFactory replaces how topology clients are made.
func (c *ClusterClient) SetClientFactory(f ClientFactory) {
	c.newClient = f
}

// Start polls once immediately, then on every interval until ctx is done or
// Stop is called.
func (c *ClusterClient) Start(ctx context.Context) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	c.PollTopology(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		case <-ticker.C:
			c.PollTopology(ctx)
		}
	}
}

func (c *ClusterClient) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })

	c.mu.Lock()
	defer c.mu.Unlock()
	for addr := range c.conns {
		c.dropClientLocked(addr)
	}
}

// PollTopology asks every eligible target at once and applies the first
// answer; the rest are cancelled.
func (c *ClusterClient) PollTopology(ctx context.Context) {
	targets := c.pollTargets(time.Now())
	if len(targets) == 0 {
		return
	}

	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		first    sync.Once
		reported []shard.Node
		answered bool
		g        errgroup.Group
	)
	for _, addr := range targets {
		g.Go(func() error {
			nodes, err := c.fetchTopology(pollCtx, addr)
			if err != nil {
				if isIgnorablePollError(err) {
					return nil
				}
				c.targetFailed(addr)
				logger.Debugw("Failed to poll topology from node", "addr", addr, "error", err.Error())
				return err
			}
			c.targetSucceeded(addr)
			first.Do(func() {
				reported = nodes
				answered = true
				cancel()
			})
			return nil
		})
	}
	err := g.Wait()

	if answered {
		c.pollSucceeded()
		c.updateRing(reported)
		return
	}
	if ctx.Err() != nil {
		return
	}
	c.pollFailed()
	if err != nil {
		logger.Warnw("Failed to poll topology from all known nodes", "targets", len(targets), "error", err.Error())
	} else {
		logger.Warnw("Failed to poll topology from all known nodes", "targets", len(targets))
	}
}

func (c *ClusterClient) fetchTopology(ctx context.Context, addr string) ([]shard.Node, error) {
	client, err := c.client(addr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, topologyTimeout)
	defer cancel()

	resp, err := client.Topology(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, err
	}
	return storagerpc.DecodeTopology(resp), nil
}

func (c *ClusterClient) client(addr string) (storagerpc.ObjectStoreClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[addr]; ok {
		return client, nil
	}

	if c.newClient != nil {
		client, err := c.newClient(addr)
		if err != nil {
			return nil, err
		}
		c.clients[addr] = client
		return client, nil
	}

	// grpc.NewClient does not dial, so holding the lock here is cheap.
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	client := storagerpc.NewObjectStoreClient(conn)
	c.clients[addr] = client
	c.conns[addr] = conn
	return client, nil
}

// updateRing applies a reported topology. Nodes missing from the report are
// marked left instead of removed so their tokens, and the objects placed by
// them, stay where readers look.
func (c *ClusterClient) updateRing(reported []shard.Node) {
	currentMap := make(map[string]shard.Node)
	for _, n := range c.ring.GetNodes() {
		currentMap[n.ID] = n
	}

	seen := make(map[string]struct{}, len(reported))
	for _, node := range reported {
		existing, exists := currentMap[node.ID]
		if !isUsableNodeAddr(node.Addr) {
			// Wildcard/self-bind addresses would poison routing.
			if exists {
				seen[node.ID] = struct{}{}
				logger.Debugw("Ignoring unusable topology addr, keeping current addr",
					"id", node.ID, "reported_addr", node.Addr, "current_addr", existing.Addr)
			} else {
				logger.Warnw("Ignoring unusable topology addr", "id", node.ID, "reported_addr", node.Addr)
			}
			continue
		}
		if node.Status == "" {
			node.Status = shard.NodeStatusHealthy
		}
		seen[node.ID] = struct{}{}

		switch {
		case !exists:
			logger.Infow("Adding node to ring", "id", node.ID, "addr", node.Addr, "status", string(node.Status))
			c.ring.AddNode(node)
		case existing.Addr != node.Addr || existing.Status != node.Status:
			logger.Infow("Updating node in ring", "id", node.ID, "addr", node.Addr, "status", string(node.Status))
			if existing.Addr != node.Addr {
				c.dropClientByAddr(existing.Addr)
			}
			c.ring.AddNode(node)
		}
	}

	for id, n := range currentMap {
		if _, ok := seen[id]; ok || n.Status == shard.NodeStatusLeft {
			continue
		}
		logger.Infow("Node missing from topology, marking left", "id", id)
		c.dropClientByAddr(n.Addr)
		c.ring.SetNodeStatus(id, shard.NodeStatusLeft)
	}
}

func isIgnorablePollError(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	code := status.Code(err)
	return code == codes.Canceled || code == codes.DeadlineExceeded
}

func isUsableNodeAddr(addr string) bool {
	if strings.TrimSpace(addr) == "" {
		return false
	}

	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if host == "" {
		return false
	}

	ip := net.ParseIP(host)
	if ip != nil && ip.IsUnspecified() {
		return false
	}
	return true
}

func (c *ClusterClient) dropClientByAddr(addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropClientLocked(addr)
}

func (c *ClusterClient) dropClientLocked(addr string) {
	if conn, ok := c.conns[addr]; ok {
		_ = conn.Close()
		delete(c.conns, addr)
	}
	delete(c.clients, addr)
}
