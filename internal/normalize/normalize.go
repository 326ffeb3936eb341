// Package normalize maps raw source rows into canonical Property records.
//
// Normalization is pure and total: the same raw row always yields the
// same Property, malformed values degrade to defaults instead of failing
// the row, and only rows with no id-bearing field at all are dropped.
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/propseek/propseek/internal/fetch"
	"github.com/propseek/propseek/internal/store"
)

// Header spellings per logical field, in priority order. The upstream
// dumps have changed header conventions across publications; the first
// present, non-empty spelling wins.
var (
	propertyIDHeaders    = []string{"PROPERTY_ID", "Property ID"}
	ownerNameHeaders     = []string{"OWNER_NAME", "OWNER_FIRST_NAME"}
	ownerAddressHeaders  = []string{"OWNER_ADDRESS", "OWNER_STREET_1"}
	ownerCityHeaders     = []string{"OWNER_CITY"}
	ownerStateHeaders    = []string{"OWNER_STATE"}
	ownerZipHeaders      = []string{"OWNER_ZIP"}
	amountHeaders        = []string{"AMOUNT_REPORTED"}
	cashReportedHeaders  = []string{"CASH_REPORTED"}
	propertyTypeHeaders  = []string{"PROPERTY_TYPE"}
	holderNameHeaders    = []string{"HOLDER_NAME"}
	holderAddressHeaders = []string{"HOLDER_ADDRESS", "HOLDER_STREET_1"}
	reportedDateHeaders  = []string{"REPORTED_DATE", "DATE_REPORTED"}
)

// Normalize converts one raw row into a canonical Property.
// Returns false when the row carries no property id under any known
// header; such rows have no identity and are dropped, never an error.
func Normalize(row fetch.Row) (store.Property, bool) {
	id := first(row, propertyIDHeaders)
	if id == "" {
		return store.Property{}, false
	}

	return store.Property{
		PropertyID:     id,
		OwnerName:      first(row, ownerNameHeaders),
		OwnerAddress:   first(row, ownerAddressHeaders),
		OwnerCity:      first(row, ownerCityHeaders),
		OwnerState:     first(row, ownerStateHeaders),
		OwnerZip:       first(row, ownerZipHeaders),
		AmountReported: amount(row),
		CashReported:   first(row, cashReportedHeaders),
		PropertyType:   first(row, propertyTypeHeaders),
		HolderName:     first(row, holderNameHeaders),
		HolderAddress:  first(row, holderAddressHeaders),
		ReportedDate:   first(row, reportedDateHeaders),
		RawPayload:     rawPayload(row),
	}, true
}

// first returns the first present, non-empty value among the header
// spellings, or empty.
func first(row fetch.Row, headers []string) string {
	for _, h := range headers {
		if v := strings.TrimSpace(row[h]); v != "" {
			return v
		}
	}
	return ""
}

// amount parses the reported amount, defaulting to zero when the field
// is absent or unparsable rather than failing the row.
func amount(row fetch.Row) float64 {
	raw := first(row, amountHeaders)
	if raw == "" {
		return 0
	}
	// Dumps occasionally format amounts with thousands separators.
	raw = strings.ReplaceAll(raw, ",", "")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

// rawPayload serializes the original row for audit. json.Marshal sorts
// map keys, so the payload is deterministic for a given row.
func rawPayload(row fetch.Row) string {
	data, err := json.Marshal(row)
	if err != nil {
		return ""
	}
	return string(data)
}
