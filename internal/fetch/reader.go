package fetch

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	propseekerrors "github.com/propseek/propseek/internal/errors"
)

// Row is one raw source row, keyed by the table's header names.
// Fields beyond the header width are dropped; missing trailing fields
// read as absent keys.
type Row map[string]string

// RowReader streams rows from a single delimited table. It is lazy and
// single-pass: the table is never materialized in memory, and restart
// means reopening from the archive blob.
type RowReader struct {
	cr     *csv.Reader
	header []string
	closer io.Closer
}

// OpenFirstTable opens the single table contained in an archive blob.
// ZIP and GZIP archives are detected by magic bytes; anything else is
// treated as a bare delimited table. An archive with no contained file
// or no header row fails with ERR_202_ARCHIVE_EMPTY.
func OpenFirstTable(blob []byte) (*RowReader, error) {
	var src io.Reader
	var closer io.Closer

	switch {
	// "PK" covers both populated archives (PK\x03\x04) and empty ones,
	// which open with the end-of-central-directory marker.
	case len(blob) >= 4 && bytes.HasPrefix(blob, []byte("PK")):
		zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
		if err != nil {
			return nil, propseekerrors.FetchFailed("unreadable zip archive", err)
		}
		if len(zr.File) == 0 {
			return nil, propseekerrors.ArchiveEmpty("zip archive contains no table")
		}
		rc, err := zr.File[0].Open()
		if err != nil {
			return nil, propseekerrors.FetchFailed(
				fmt.Sprintf("cannot open %s in zip archive", zr.File[0].Name), err)
		}
		src, closer = rc, rc

	case len(blob) >= 2 && blob[0] == 0x1f && blob[1] == 0x8b:
		gr, err := gzip.NewReader(bytes.NewReader(blob))
		if err != nil {
			return nil, propseekerrors.FetchFailed("unreadable gzip archive", err)
		}
		src, closer = gr, gr

	default:
		if len(bytes.TrimSpace(blob)) == 0 {
			return nil, propseekerrors.ArchiveEmpty("archive contains no table")
		}
		src = bytes.NewReader(blob)
	}

	cr := csv.NewReader(src)
	// Government dumps are ragged: tolerate varying widths and stray quotes.
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, propseekerrors.ArchiveEmpty("table has no header row")
	}
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, propseekerrors.FetchFailed("unreadable table header", err)
	}

	return &RowReader{cr: cr, header: header, closer: closer}, nil
}

// Header returns the table's column names in order.
func (r *RowReader) Header() []string {
	return r.header
}

// Next returns the next row, or io.EOF when the table is exhausted.
func (r *RowReader) Next() (Row, error) {
	record, err := r.cr.Read()
	if err != nil {
		return nil, err
	}

	row := make(Row, len(r.header))
	for i, name := range r.header {
		if i < len(record) {
			row[name] = record[i]
		}
	}
	return row, nil
}

// Close releases the underlying archive entry, if any.
func (r *RowReader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
