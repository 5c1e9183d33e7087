package idgen

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileIDGenerator_Format(t *testing.T) {
	gen, err := NewFileIDGenerator()
	require.NoError(t, err)

	id := gen.NewFileID()
	assert.True(t, IsFileID(id), id)
	assert.Len(t, id, len(FileIDPrefix)+FileIDLength)
}

func TestIsFileID(t *testing.T) {
	assert.True(t, IsFileID("file_rxW1Vo7BgEKDqB8Lx7mN2"))
	assert.False(t, IsFileID("file_rxW1Vo7BgEKDqB8Lx7mN"), "20 chars")
	assert.False(t, IsFileID("file_rxW1Vo7BgEKDqB8Lx7mN2f"), "22 chars")
	assert.False(t, IsFileID("blob_rxW1Vo7BgEKDqB8Lx7mN2"))
	assert.False(t, IsFileID("file_rxW1Vo7BgEKDqB8Lx7m-_"))
	assert.False(t, IsFileID(""))
}

func TestFileIDGenerator_ConcurrentUnique(t *testing.T) {
	gen, err := NewFileIDGenerator()
	require.NoError(t, err)

	const workers, perWorker = 16, 500
	ids := make(chan string, workers*perWorker)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				ids <- gen.NewFileID()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{}, workers*perWorker)
	for id := range ids {
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}
