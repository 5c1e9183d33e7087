package app

import (
	"testing"

	"github.com/anthanhphan/go-file-gateway/internal/api/adapter/outbound/networkshare"
	"github.com/anthanhphan/go-file-gateway/internal/api/config"
	"github.com/anthanhphan/go-file-gateway/internal/storage/adapter/outbound/diskstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBackend_Local(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Local.Root = t.TempDir()

	a := &App{cfg: cfg}
	backend, err := a.buildBackend()
	require.NoError(t, err)
	assert.IsType(t, &diskstore.Store{}, backend)
	assert.Nil(t, a.clusterClient)
}

func TestBuildBackend_NetworkStartsTopologyPolling(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Backend = config.BackendNetwork

	a := &App{cfg: cfg}
	backend, err := a.buildBackend()
	require.NoError(t, err)
	assert.IsType(t, &networkshare.Backend{}, backend)
	assert.NotNil(t, a.clusterClient)
	assert.NotNil(t, a.nodes)

	a.close()
}

func TestBuildBackend_Unknown(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Backend = "tape"

	a := &App{cfg: cfg}
	_, err := a.buildBackend()
	assert.Error(t, err)
}
