package app

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"

	grpcHandler "github.com/anthanhphan/go-file-gateway/internal/storage/adapter/inbound/grpc"
	"github.com/anthanhphan/go-file-gateway/internal/storage/adapter/outbound/diskstore"
	"github.com/anthanhphan/go-file-gateway/internal/storage/config"
	"github.com/anthanhphan/go-file-gateway/internal/storage/port"
	"github.com/anthanhphan/go-file-gateway/internal/storage/service"
	"github.com/anthanhphan/go-file-gateway/pkg/gossip"
	"github.com/anthanhphan/go-file-gateway/pkg/shard"
	"github.com/anthanhphan/go-file-gateway/pkg/storagerpc"
	"github.com/anthanhphan/gosdk/logger"
)

const (
	joinAttempts = 5
	joinBackoff  = 2 * time.Second
)

type App struct {
	cfg        *config.Config
	server     *grpc.Server
	membership port.MembershipPort
	store      *diskstore.Store
}

func New(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.InitLogger(&cfg.Logger)

	store, err := diskstore.New(cfg.Disk)
	if err != nil {
		return nil, fmt.Errorf("failed to init disk store: %w", err)
	}

	ring := shard.NewRing(shard.DefaultVNodesPerNode)

	nodeID := cfg.Server.NodeID
	if nodeID == "" {
		host, _ := os.Hostname()
		nodeID = fmt.Sprintf("%s-%d", host, cfg.Server.Port)
	}

	membership, err := gossip.New(gossip.Config{
		NodeID:     nodeID,
		BindAddr:   cfg.Server.Hostname,
		BindPort:   cfg.Gossip.Port,
		ServerPort: cfg.Server.Port,
		DataDir:    cfg.Disk.Root,
	}, ring)
	if err != nil {
		return nil, fmt.Errorf("failed to init gossip: %w", err)
	}

	grpcServer := grpc.NewServer(
		grpc.MaxRecvMsgSize(storagerpc.MaxMessageSize),
		grpc.MaxSendMsgSize(storagerpc.MaxMessageSize),
	)
	storageService := service.NewStorageService(store, ring, nodeID)
	storagerpc.RegisterObjectStoreServer(grpcServer, grpcHandler.NewServer(storageService))

	return &App{
		cfg:        cfg,
		server:     grpcServer,
		membership: membership,
		store:      store,
	}, nil
}

func (a *App) Run() error {
	a.joinCluster()

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", a.cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", a.cfg.Server.Port, err)
	}

	used, quota := a.store.Usage()
	logger.Infow("Storage node starting",
		"id", a.membership.LocalNode().ID,
		"port", a.cfg.Server.Port,
		"gossip", a.cfg.Gossip.Port,
		"used_bytes", used,
		"quota_bytes", quota)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := a.server.Serve(listener); err != nil {
			serverErrCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case sig := <-stop:
		logger.Infow("Shutdown signal received", "signal", sig.String())
	case err := <-serverErrCh:
		if !errors.Is(err, grpc.ErrServerStopped) && !strings.Contains(err.Error(), "use of closed network connection") {
			runErr = fmt.Errorf("gRPC server failed: %w", err)
			logger.Errorw("Storage gRPC server exited unexpectedly", "error", err.Error())
		}
	}

	logger.Info("Shutting down storage node")
	if err := a.membership.Leave(); err != nil {
		logger.Warnw("Gossip leave failed", "error", err.Error())
	}
	a.server.GracefulStop()

	return runErr
}

// joinCluster retries a few times; a node that cannot join still serves
// the objects it holds.
func (a *App) joinCluster() {
	seeds := a.seeds()
	if len(seeds) == 0 {
		return
	}

	var joinErr error
	for i := 0; i < joinAttempts; i++ {
		if joinErr = a.membership.Join(seeds); joinErr == nil {
			return
		}
		logger.Warnw("Failed to join cluster, retrying...", "attempt", i+1, "error", joinErr.Error())
		time.Sleep(joinBackoff)
	}
	logger.Errorw("Failed to join cluster after retries", "error", joinErr.Error())
}

// seeds drops blanks and this node's own gossip address.
func (a *App) seeds() []string {
	self := net.JoinHostPort(a.cfg.Server.Hostname, fmt.Sprint(a.cfg.Gossip.Port))
	out := make([]string, 0, len(a.cfg.Gossip.Seeds))
	for _, seed := range a.cfg.Gossip.Seeds {
		seed = strings.TrimSpace(seed)
		if seed == "" || seed == self {
			continue
		}
		out = append(out, seed)
	}
	return out
}
