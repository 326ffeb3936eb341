package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	propseekerrors "github.com/propseek/propseek/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("", DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testProperty(id, owner string) Property {
	return Property{
		PropertyID:     id,
		OwnerName:      owner,
		OwnerAddress:   "100 Main St",
		OwnerCity:      "Sacramento",
		OwnerState:     "CA",
		AmountReported: 10,
		HolderName:     "First National Bank",
		RawPayload:     `{"PROPERTY_ID":"` + id + `"}`,
	}
}

func TestLoadBatch_InsertsAndIndexes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	inserted, skipped, err := s.LoadBatch(ctx, []Property{
		testProperty("P1", "Smith"),
		testProperty("P2", "Jones"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
	assert.Equal(t, 0, skipped)

	// Index watermark caught up with the committed rows.
	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Records)
	assert.Equal(t, stats.Records, stats.IndexWatermark)
}

func TestLoadBatch_FirstWriteWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Given: two rows with the same property id in one batch
	inserted, skipped, err := s.LoadBatch(ctx, []Property{
		testProperty("P1", "Smith"),
		testProperty("P1", "Jones"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.Equal(t, 1, skipped)

	// Then: the first committed version is retained unchanged
	p, err := s.GetByID(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, "Smith", p.OwnerName)

	// And: the duplicate's fields are never indexed
	ids, err := s.Search(ctx, "Jones", 5)
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = s.Search(ctx, "Smith", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"P1"}, ids)
}

func TestLoadBatch_RepeatIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	batch := []Property{testProperty("P1", "Smith"), testProperty("P2", "Jones")}

	inserted, skipped, err := s.LoadBatch(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
	assert.Equal(t, 0, skipped)

	// Re-running the identical batch only skips.
	inserted, skipped, err = s.LoadBatch(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)
	assert.Equal(t, 2, skipped)

	// No duplicate index entries: the watermark did not move.
	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Records)
	assert.Equal(t, int64(2), stats.IndexWatermark)

	ids, err := s.Search(ctx, "Smith", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"P1"}, ids)
}

func TestLoadBatch_CrashBetweenCommitAndIndexHeals(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Given: a chunk whose store commit landed but whose index extension
	// did not (simulated crash between the two steps)
	inserted, _, err := s.insertWithoutIndex(ctx, []Property{testProperty("P1", "Smith")})
	require.NoError(t, err)
	require.Equal(t, 1, inserted)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.Records)
	require.Equal(t, int64(0), stats.IndexWatermark, "record committed but unindexed")

	// When: the same chunk load is re-invoked
	inserted, skipped, err := s.LoadBatch(ctx, []Property{testProperty("P1", "Smith")})
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)
	assert.Equal(t, 1, skipped)

	// Then: the record is indexed exactly once
	ids, err := s.Search(ctx, "Smith", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"P1"}, ids)

	stats, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.IndexWatermark)
}

func TestExtendIndex_RepairsWithoutReload(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, _, err := s.insertWithoutIndex(ctx, []Property{testProperty("P1", "Smith")})
	require.NoError(t, err)

	require.NoError(t, s.ExtendIndex(ctx))
	// Second call is a no-op past the watermark.
	require.NoError(t, s.ExtendIndex(ctx))

	ids, err := s.Search(ctx, "Smith", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"P1"}, ids)
}

func TestLoadBatch_EmptyIDNeverStored(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	inserted, skipped, err := s.LoadBatch(ctx, []Property{testProperty("", "Ghost")})
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)
	assert.Equal(t, 1, skipped)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Records)
}

func TestLoadBatch_EmptyBatchIsNoop(t *testing.T) {
	s := newTestStore(t)

	inserted, skipped, err := s.LoadBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, inserted)
	assert.Zero(t, skipped)
}

func TestLoadBatch_ClosedStoreFails(t *testing.T) {
	s, err := Open("", DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, _, err = s.LoadBatch(context.Background(), []Property{testProperty("P1", "Smith")})
	require.Error(t, err)
	assert.True(t, propseekerrors.HasCode(err, propseekerrors.ErrCodeLoadFailed))
}

func TestLoadBatch_WatermarkAdvancesAcrossChunks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Sequential chunks, as the orchestrator drives them.
	for chunk := 0; chunk < 3; chunk++ {
		var batch []Property
		for i := 0; i < 4; i++ {
			id := fmt.Sprintf("P%d-%d", chunk, i)
			batch = append(batch, testProperty(id, "Holder"+id))
		}
		_, _, err := s.LoadBatch(ctx, batch)
		require.NoError(t, err)

		// Invariant: watermark equals committed rows at every chunk boundary.
		stats, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, stats.Records, stats.IndexWatermark)
	}
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unclaimed.db")
	ctx := context.Background()

	s, err := Open(path, DefaultOptions())
	require.NoError(t, err)
	_, _, err = s.LoadBatch(ctx, []Property{testProperty("P1", "Smith")})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopen: data and index survive, re-ingestion dedups.
	s, err = Open(path, DefaultOptions())
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	inserted, skipped, err := s.LoadBatch(ctx, []Property{testProperty("P1", "Smith")})
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)
	assert.Equal(t, 1, skipped)

	ids, err := s.Search(ctx, "Smith", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"P1"}, ids)
}
