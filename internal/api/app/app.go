package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpHandler "github.com/anthanhphan/go-file-gateway/internal/api/adapter/inbound/http"
	"github.com/anthanhphan/go-file-gateway/internal/api/adapter/outbound/cluster_client"
	"github.com/anthanhphan/go-file-gateway/internal/api/adapter/outbound/networkshare"
	"github.com/anthanhphan/go-file-gateway/internal/api/adapter/outbound/objectstore"
	"github.com/anthanhphan/go-file-gateway/internal/api/adapter/outbound/registry"
	"github.com/anthanhphan/go-file-gateway/internal/api/adapter/outbound/resilient"
	storageNode "github.com/anthanhphan/go-file-gateway/internal/api/adapter/outbound/storage_node"
	"github.com/anthanhphan/go-file-gateway/internal/api/config"
	"github.com/anthanhphan/go-file-gateway/internal/api/port"
	"github.com/anthanhphan/go-file-gateway/internal/api/service"
	"github.com/anthanhphan/go-file-gateway/internal/storage/adapter/outbound/diskstore"
	"github.com/anthanhphan/go-file-gateway/pkg/idgen"
	"github.com/anthanhphan/go-file-gateway/pkg/mimetype"
	"github.com/anthanhphan/go-file-gateway/pkg/shard"
	"github.com/anthanhphan/go-file-gateway/pkg/signedurl"
	"github.com/anthanhphan/gosdk/logger"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	cfg           *config.Config
	server        *httpHandler.Server
	registry      *registry.Registry
	redis         *redis.Client
	clusterClient *cluster_client.ClusterClient
	nodes         *storageNode.GrpcAdapter
	purger        *service.Purger
}

func New(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.InitLogger(&cfg.Logger)

	a := &App{cfg: cfg}
	if err := a.init(); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *App) init() error {
	cfg := a.cfg

	// Redis backs the snowflake clock and, optionally, the object backend.
	a.redis = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	seq, err := idgen.New(cfg.App.NodeID, idgen.NewRedisClock(a.redis))
	if err != nil {
		return fmt.Errorf("failed to init snowflake: %w", err)
	}
	fileIDs, err := idgen.NewFileIDGenerator()
	if err != nil {
		return err
	}

	db, err := registry.Open(cfg.Registry.Path)
	if err != nil {
		return err
	}
	a.registry, err = registry.New(db, fileIDs.NewFileID, seq)
	if err != nil {
		return fmt.Errorf("failed to init registry: %w", err)
	}

	backend, err := a.buildBackend()
	if err != nil {
		return err
	}
	backend = resilient.New(backend, resilient.Config{
		Timeout:    cfg.BackendTimeout(),
		MaxRetries: cfg.App.MaxRetries,
		Backoff:    cfg.RetryBackoff(),
	})

	signer, err := signedurl.New(&signedurl.Config{
		Secret:    []byte(cfg.Signing.Secret),
		ClockSkew: time.Duration(cfg.Signing.ClockSkewSeconds) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to init url signer: %w", err)
	}

	mimes := mimetype.New(mimetype.DefaultTable, cfg.Mime.Overrides)
	svc := service.NewFileService(cfg, a.registry, backend, signer, mimes)

	if cfg.Purge.Enabled {
		a.purger = service.NewPurger(cfg.Purge, a.registry, backend)
	}

	a.server = httpHandler.NewServer(cfg, svc)

	logger.Infow("Gateway initialised",
		"backend", cfg.Storage.Backend,
		"registry", cfg.Registry.Path,
		"max_upload_bytes", cfg.App.MaxUploadBytes,
		"purge_enabled", cfg.Purge.Enabled,
	)
	return nil
}

func (a *App) buildBackend() (port.StorageBackend, error) {
	cfg := a.cfg.Storage

	switch cfg.Backend {
	case config.BackendLocal:
		store, err := diskstore.New(cfg.Local)
		if err != nil {
			return nil, fmt.Errorf("failed to init local store: %w", err)
		}
		return store, nil

	case config.BackendNetwork:
		// The gateway is not a gossip peer; it polls the seeds for topology.
		ring := shard.NewRing(shard.DefaultVNodesPerNode)
		pollInterval := time.Duration(cfg.Network.PollIntervalMS) * time.Millisecond
		a.clusterClient = cluster_client.NewClusterClient(ring, cfg.Network.Seeds, pollInterval)
		a.nodes = storageNode.NewGrpcAdapter()
		return networkshare.New(ring, a.nodes), nil

	case config.BackendObject:
		store, err := objectstore.New(a.redis, objectstore.Config{
			KeyPrefix:  cfg.Object.KeyPrefix,
			QuotaBytes: cfg.Object.QuotaBytes,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to init object store: %w", err)
		}
		return store, nil
	}

	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.clusterClient != nil {
		go a.clusterClient.Start(ctx)
	}

	purgeDone := make(chan struct{})
	if a.purger != nil {
		go func() {
			defer close(purgeDone)
			a.purger.Run(ctx)
		}()
	} else {
		close(purgeDone)
	}

	logger.Infow("API Gateway starting", "addr", a.cfg.Server.Addr, "public_base_url", a.cfg.Server.PublicBaseURL)
	serverErrCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
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
		runErr = fmt.Errorf("http server failed: %w", err)
		logger.Errorw("API server exited unexpectedly", "error", err.Error())
	}

	logger.Info("Shutting down API services")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	// Drain in-flight requests before the backends go away.
	if err := a.server.Stop(shutdownCtx); err != nil {
		logger.Errorw("API shutdown error", "error", err.Error())
		if runErr == nil {
			runErr = err
		}
	}

	cancel()
	<-purgeDone
	a.close()

	return runErr
}

func (a *App) close() {
	if a.clusterClient != nil {
		a.clusterClient.Stop()
	}
	if a.nodes != nil {
		a.nodes.Close()
	}
	if a.registry != nil {
		if err := a.registry.Close(); err != nil {
			logger.Warnw("Failed to close registry", "error", err.Error())
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Warnw("Failed to close redis client", "error", err.Error())
		}
	}
}
