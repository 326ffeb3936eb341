// Package store provides the SQLite record store and its derived FTS5
// search index. This is the persistence layer for all ingested data.
//
// The properties table is the source of truth, keyed by property_id with
// SQLite's rowid as the insertion sequence. The properties_fts table is a
// derived full-text index keyed by the same rowid; it is only ever extended
// from committed store rows past its watermark, so it can always be rebuilt
// forward from store state alone.
package store

// Property is one canonical unclaimed-property record.
// Records are immutable once committed: amendments arrive as new source
// rows and are discarded by first-write-wins dedup on PropertyID.
type Property struct {
	PropertyID     string  `json:"property_id"`
	OwnerName      string  `json:"owner_name"`
	OwnerAddress   string  `json:"owner_address,omitempty"`
	OwnerCity      string  `json:"owner_city,omitempty"`
	OwnerState     string  `json:"owner_state,omitempty"`
	OwnerZip       string  `json:"owner_zip,omitempty"`
	AmountReported float64 `json:"amount_reported"`
	CashReported   string  `json:"cash_reported,omitempty"`
	PropertyType   string  `json:"property_type,omitempty"`
	HolderName     string  `json:"holder_name,omitempty"`
	HolderAddress  string  `json:"holder_address,omitempty"`
	ReportedDate   string  `json:"reported_date,omitempty"`

	// RawPayload is the serialized original source row, retained for
	// audit and debugging. It is never parsed back.
	RawPayload string `json:"-"`
}

// Stats describes the current state of the store and its index.
type Stats struct {
	// Records is the number of committed property records.
	Records int64 `json:"records"`

	// IndexWatermark is the highest rowid covered by the search index.
	// It equals the max committed rowid whenever no load is in flight.
	IndexWatermark int64 `json:"index_watermark"`
}
