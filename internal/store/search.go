package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	propseekerrors "github.com/propseek/propseek/internal/errors"
)

// Search returns the property ids whose indexed fields match the query,
// best match first, at most limit entries. Relevance comes from FTS5's
// bm25() scoring; ties break by store insertion order. Matching an id
// requires it to be indexed, and the index only ever covers committed
// store rows, so Search never returns an id absent from the store.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]string, error) {
	tokens := TokenizeQuery(query)
	if len(tokens) == 0 || limit <= 0 {
		return []string{}, nil
	}

	// bm25() is negative with lower = better, so ascending order ranks
	// best matches first.
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.property_id
		FROM properties_fts
		JOIN properties p ON p.rowid = properties_fts.rowid
		WHERE properties_fts MATCH ?
		ORDER BY bm25(properties_fts), properties_fts.rowid
		LIMIT ?`,
		buildMatchExpr(tokens), limit)
	if err != nil {
		// FTS5 reports malformed match expressions as errors; quoting
		// should prevent them, but treat any residue as no results.
		if strings.Contains(err.Error(), "fts5") {
			return []string{}, nil
		}
		return nil, propseekerrors.Wrap(propseekerrors.ErrCodeStoreFailed, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, propseekerrors.Wrap(propseekerrors.ErrCodeStoreFailed, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, propseekerrors.Wrap(propseekerrors.ErrCodeStoreFailed, err)
	}

	return ids, nil
}

// GetByID fetches one property by its identity key.
func (s *Store) GetByID(ctx context.Context, propertyID string) (*Property, error) {
	var p Property
	err := s.db.QueryRowContext(ctx, `
		SELECT property_id, owner_name, owner_address, owner_city,
		       owner_state, owner_zip, amount_reported, cash_reported,
		       property_type, holder_name, holder_address, reported_date,
		       raw_payload
		FROM properties
		WHERE property_id = ?`, propertyID).Scan(
		&p.PropertyID, &p.OwnerName, &p.OwnerAddress, &p.OwnerCity,
		&p.OwnerState, &p.OwnerZip, &p.AmountReported, &p.CashReported,
		&p.PropertyType, &p.HolderName, &p.HolderAddress, &p.ReportedDate,
		&p.RawPayload)
	if err == sql.ErrNoRows {
		return nil, propseekerrors.NotFound(fmt.Sprintf("property %s not found", propertyID))
	}
	if err != nil {
		return nil, propseekerrors.Wrap(propseekerrors.ErrCodeStoreFailed, err)
	}
	return &p, nil
}
