package registry

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anthanhphan/go-file-gateway/internal/api/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterSeq struct{ n atomic.Int64 }

func (c *counterSeq) Next() (int64, error) { return c.n.Add(1), nil }

type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time { return c.t }

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("file-%04d", n.Add(1)) }
}

func newTestRegistry(t *testing.T, newID func() string, clock *fixedClock) *Registry {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)

	r, err := New(db, newID, &counterSeq{}, WithClock(clock.now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func newRecord(owner string, purpose domain.Purpose, name string) domain.NewFileRecord {
	return domain.NewFileRecord{
		OwnerID:    owner,
		Purpose:    purpose,
		FileName:   name,
		MimeType:   "text/plain",
		SizeBytes:  3,
		StorageKey: "objects/ab/" + name,
	}
}

func TestRegistry_CreateAndGet(t *testing.T) {
	clock := &fixedClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	r := newTestRegistry(t, sequentialIDs(), clock)
	ctx := context.Background()

	rec, err := r.Create(ctx, newRecord("u1", domain.PurposeAssistants, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "file-0001", rec.ID)
	assert.Equal(t, domain.StatusActive, rec.Status)
	assert.Equal(t, clock.t, rec.CreatedAt)
	assert.Nil(t, rec.DeletedAt)

	got, err := r.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = r.Get(ctx, "file-9999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegistry_CreateRegeneratesOnCollision(t *testing.T) {
	ids := []string{"dup", "dup", "fresh"}
	var i atomic.Int64
	newID := func() string { return ids[int(i.Add(1)-1)%len(ids)] }
	r := newTestRegistry(t, newID, &fixedClock{t: time.Now().UTC()})
	ctx := context.Background()

	first, err := r.Create(ctx, newRecord("u1", domain.PurposeBatch, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "dup", first.ID)

	second, err := r.Create(ctx, newRecord("u1", domain.PurposeBatch, "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "fresh", second.ID)
}

func TestRegistry_CreateGivesUpAfterRepeatedCollisions(t *testing.T) {
	r := newTestRegistry(t, func() string { return "same" }, &fixedClock{t: time.Now().UTC()})
	ctx := context.Background()

	_, err := r.Create(ctx, newRecord("u1", domain.PurposeBatch, "a.txt"))
	require.NoError(t, err)

	_, err = r.Create(ctx, newRecord("u1", domain.PurposeBatch, "b.txt"))
	assert.ErrorIs(t, err, ErrIDExhausted)
}

func TestRegistry_Delete(t *testing.T) {
	clock := &fixedClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	r := newTestRegistry(t, sequentialIDs(), clock)
	ctx := context.Background()

	rec, err := r.Create(ctx, newRecord("owner", domain.PurposeVision, "p.png"))
	require.NoError(t, err)

	assert.ErrorIs(t, r.Delete(ctx, rec.ID, "intruder"), domain.ErrForbidden)
	_, err = r.Get(ctx, rec.ID)
	require.NoError(t, err, "forbidden delete must leave the record alone")

	require.NoError(t, r.Delete(ctx, rec.ID, "owner"))
	_, err = r.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, r.Delete(ctx, rec.ID, "owner"), domain.ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, "missing", "owner"), domain.ErrNotFound)
}

func TestRegistry_ListOrderingAndFilter(t *testing.T) {
	clock := &fixedClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	r := newTestRegistry(t, sequentialIDs(), clock)
	ctx := context.Background()

	// Same timestamp for the first two, so order falls back to Seq.
	a, err := r.Create(ctx, newRecord("u1", domain.PurposeAssistants, "a.txt"))
	require.NoError(t, err)
	b, err := r.Create(ctx, newRecord("u1", domain.PurposeBatch, "b.txt"))
	require.NoError(t, err)
	clock.t = clock.t.Add(time.Second)
	c, err := r.Create(ctx, newRecord("u1", domain.PurposeAssistants, "c.txt"))
	require.NoError(t, err)
	_, err = r.Create(ctx, newRecord("u2", domain.PurposeAssistants, "other.txt"))
	require.NoError(t, err)

	all, err := r.List(ctx, "u1", "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	assistants, err := r.List(ctx, "u1", domain.PurposeAssistants)
	require.NoError(t, err)
	require.Len(t, assistants, 2)
	assert.Equal(t, a.ID, assistants[0].ID)
	assert.Equal(t, c.ID, assistants[1].ID)

	require.NoError(t, r.Delete(ctx, b.ID, "u1"))
	all, err = r.List(ctx, "u1", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := r.List(ctx, "nobody", "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRegistry_ListDeletedAndPurge(t *testing.T) {
	clock := &fixedClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	r := newTestRegistry(t, sequentialIDs(), clock)
	ctx := context.Background()

	old, err := r.Create(ctx, newRecord("u1", domain.PurposeBatch, "old.txt"))
	require.NoError(t, err)
	recent, err := r.Create(ctx, newRecord("u1", domain.PurposeBatch, "recent.txt"))
	require.NoError(t, err)
	live, err := r.Create(ctx, newRecord("u1", domain.PurposeBatch, "live.txt"))
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, old.ID, "u1"))
	clock.t = clock.t.Add(time.Hour)
	require.NoError(t, r.Delete(ctx, recent.ID, "u1"))

	due, err := r.ListDeleted(ctx, clock.t.Add(-time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, old.ID, due[0].ID)
	assert.Equal(t, "objects/ab/old.txt", due[0].StorageKey)
	require.NotNil(t, due[0].DeletedAt)

	require.NoError(t, r.Purge(ctx, old.ID))
	require.NoError(t, r.Purge(ctx, old.ID))

	// Active records are not purgeable.
	require.NoError(t, r.Purge(ctx, live.ID))
	_, err = r.Get(ctx, live.ID)
	require.NoError(t, err)

	due, err = r.ListDeleted(ctx, clock.t.Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, recent.ID, due[0].ID)
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(nil, sequentialIDs(), &counterSeq{})
	assert.Error(t, err)
}
