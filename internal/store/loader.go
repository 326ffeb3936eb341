package store

import (
	"context"
	"database/sql"
	"fmt"

	propseekerrors "github.com/propseek/propseek/internal/errors"
)

// LoadBatch commits one chunk of records and extends the search index to
// cover exactly the rows committed, all in a single transaction.
//
// Insertion uses INSERT OR IGNORE on property_id: the first committed
// version of a record wins and later duplicates are counted as skipped.
// Index extension is computed from the watermark ("all store rows beyond
// the index's max covered rowid"), so re-running a chunk after a crash
// re-derives the same delta and never double-indexes.
//
// The chunk is the unit of atomicity: a storage fault rolls the whole
// chunk back, leaving store and index consistent at the prior chunk.
func (s *Store) LoadBatch(ctx context.Context, records []Property) (inserted, skipped int, err error) {
	if len(records) == 0 {
		return 0, 0, nil
	}

	s.writerMu.Lock()
	defer s.writerMu.Unlock()

	if s.closed {
		return 0, 0, propseekerrors.LoadFailed("store is closed", nil)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, propseekerrors.LoadFailed("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted, skipped, err = insertRecordsTx(ctx, tx, records)
	if err != nil {
		return 0, 0, err
	}

	if err := extendIndexTx(ctx, tx); err != nil {
		return 0, 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, propseekerrors.LoadFailed("failed to commit chunk", err)
	}
	return inserted, skipped, nil
}

// insertRecordsTx inserts records with dedup-on-conflict semantics.
func insertRecordsTx(ctx context.Context, tx *sql.Tx, records []Property) (inserted, skipped int, err error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO properties (
			property_id, owner_name, owner_address, owner_city,
			owner_state, owner_zip, amount_reported, cash_reported,
			property_type, holder_name, holder_address, reported_date,
			raw_payload
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, 0, propseekerrors.LoadFailed("failed to prepare insert", err)
	}
	defer stmt.Close()

	for i := range records {
		p := &records[i]
		if p.PropertyID == "" {
			// Identity-less records never reach the store.
			skipped++
			continue
		}

		res, err := stmt.ExecContext(ctx,
			p.PropertyID, p.OwnerName, p.OwnerAddress, p.OwnerCity,
			p.OwnerState, p.OwnerZip, p.AmountReported, p.CashReported,
			p.PropertyType, p.HolderName, p.HolderAddress, p.ReportedDate,
			p.RawPayload)
		if err != nil {
			return 0, 0, propseekerrors.LoadFailed(
				fmt.Sprintf("failed to insert record %s", p.PropertyID), err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return 0, 0, propseekerrors.LoadFailed("failed to read rows affected", err)
		}
		if n > 0 {
			inserted++
		} else {
			skipped++
		}
	}

	return inserted, skipped, nil
}

// extendIndexTx advances the FTS index over every committed row past its
// watermark. Idempotent: rows at or below the watermark are never re-read.
func extendIndexTx(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO properties_fts (rowid, owner_name, owner_address, owner_city, holder_name)
		SELECT p.rowid,
		       IFNULL(p.owner_name, ''),
		       IFNULL(p.owner_address, ''),
		       IFNULL(p.owner_city, ''),
		       IFNULL(p.holder_name, '')
		FROM properties p
		WHERE p.rowid > (SELECT IFNULL(MAX(rowid), 0) FROM properties_fts)`)
	if err != nil {
		return propseekerrors.LoadFailed("failed to extend search index", err)
	}
	return nil
}

// ExtendIndex catches the search index up to the committed store state.
// Safe to call at any time; loading is self-healing because the delta is
// re-derived from the watermark, so a crash between a store commit and
// its index extension is repaired by the next load or by this call.
func (s *Store) ExtendIndex(ctx context.Context) error {
	s.writerMu.Lock()
	defer s.writerMu.Unlock()

	if s.closed {
		return propseekerrors.LoadFailed("store is closed", nil)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return propseekerrors.LoadFailed("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := extendIndexTx(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return propseekerrors.LoadFailed("failed to commit index extension", err)
	}
	return nil
}

// insertWithoutIndex commits records without extending the index.
// Test hook simulating a crash between the store commit and the index
// extension of a chunk.
func (s *Store) insertWithoutIndex(ctx context.Context, records []Property) (inserted, skipped int, err error) {
	s.writerMu.Lock()
	defer s.writerMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = tx.Rollback() }()

	inserted, skipped, err = insertRecordsTx(ctx, tx, records)
	if err != nil {
		return 0, 0, err
	}
	return inserted, skipped, tx.Commit()
}
