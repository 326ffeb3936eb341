// Package ingest drives end-to-end ingestion runs: fetch an archive,
// stream and normalize its rows, and load them into the store in
// fixed-size chunks.
//
// A run is the unit of idempotency. Re-invoking Run with the same or
// overlapping locations is always safe: dedup absorbs repeated records
// and the index watermark absorbs partially-indexed chunks, so a run
// interrupted anywhere can simply be run again.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	propseekerrors "github.com/propseek/propseek/internal/errors"
	"github.com/propseek/propseek/internal/fetch"
	"github.com/propseek/propseek/internal/normalize"
	"github.com/propseek/propseek/internal/store"
)

// DefaultChunkSize is the number of records committed per chunk.
// A throughput tunable, not a correctness parameter.
const DefaultChunkSize = 10000

// Summary reports what one ingestion run accomplished. On failure it
// holds the chunk-granular committed-so-far counts, which stay valid:
// aborted chunks roll back entirely.
type Summary struct {
	// Processed counts source rows read, including identity-less rows
	// that were dropped before loading.
	Processed int `json:"processed"`
	// Inserted counts records newly committed to the store.
	Inserted int `json:"inserted"`
	// Skipped counts duplicates discarded by first-write-wins dedup.
	Skipped int `json:"skipped"`
}

// Runner executes ingestion runs against one store.
type Runner struct {
	store     *store.Store
	fetcher   *fetch.Client
	chunkSize int
	lock      *RunLock
	logger    *slog.Logger
}

// NewRunner creates a runner. chunkSize <= 0 selects DefaultChunkSize;
// lock may be nil when external serialization is guaranteed.
func NewRunner(st *store.Store, fetcher *fetch.Client, chunkSize int, lock *RunLock, logger *slog.Logger) *Runner {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		store:     st,
		fetcher:   fetcher,
		chunkSize: chunkSize,
		lock:      lock,
		logger:    logger,
	}
}

// Run ingests each location fully before moving to the next. A failure
// aborts the run and reports which location failed along with the
// committed-so-far counts; the store and index are left consistent at
// the last committed chunk, and the run is safe to re-invoke.
func (r *Runner) Run(ctx context.Context, locations []string) (Summary, error) {
	var sum Summary

	if r.lock != nil {
		acquired, err := r.lock.TryLock()
		if err != nil {
			return sum, propseekerrors.Wrap(propseekerrors.ErrCodeRunLocked, err)
		}
		if !acquired {
			return sum, propseekerrors.Newf(propseekerrors.ErrCodeRunLocked,
				"another ingestion run is in progress")
		}
		defer func() { _ = r.lock.Unlock() }()
	}

	for _, location := range locations {
		if err := r.runLocation(ctx, location, &sum); err != nil {
			return sum, r.annotate(err, location, &sum)
		}
		r.logger.Info("location_ingested",
			slog.String("location", location),
			slog.Int("processed", sum.Processed),
			slog.Int("inserted", sum.Inserted),
			slog.Int("skipped", sum.Skipped))
	}

	return sum, nil
}

// runLocation streams one archive through normalize and chunked loads.
func (r *Runner) runLocation(ctx context.Context, location string, sum *Summary) error {
	blob, err := r.fetcher.Fetch(ctx, location)
	if err != nil {
		return err
	}

	reader, err := fetch.OpenFirstTable(blob)
	if err != nil {
		return err
	}
	defer func() { _ = reader.Close() }()

	batch := make([]store.Property, 0, r.chunkSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		inserted, skipped, err := r.store.LoadBatch(ctx, batch)
		if err != nil {
			return err
		}
		sum.Inserted += inserted
		sum.Skipped += skipped
		r.logger.Debug("chunk_committed",
			slog.String("location", location),
			slog.Int("chunk_rows", len(batch)),
			slog.Int("inserted", inserted),
			slog.Int("skipped", skipped))
		batch = batch[:0]
		return nil
	}

	for {
		row, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return propseekerrors.FetchFailed(
				fmt.Sprintf("table read failed in %s", location), err)
		}

		sum.Processed++
		record, ok := normalize.Normalize(row)
		if !ok {
			continue
		}

		batch = append(batch, record)
		if len(batch) >= r.chunkSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	return flush()
}

// annotate attaches run context to a failure for safe manual retry.
func (r *Runner) annotate(err error, location string, sum *Summary) error {
	pe, ok := err.(*propseekerrors.Error)
	if !ok {
		pe = propseekerrors.Wrap(propseekerrors.ErrCodeInternal, err)
	}
	return pe.
		WithDetail("location", location).
		WithDetail("processed", strconv.Itoa(sum.Processed)).
		WithDetail("inserted", strconv.Itoa(sum.Inserted)).
		WithDetail("skipped", strconv.Itoa(sum.Skipped))
}
