package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesCategoryFromCode(t *testing.T) {
	tests := []struct {
		code     string
		category Category
	}{
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodeFetchFailed, CategorySource},
		{ErrCodeArchiveEmpty, CategorySource},
		{ErrCodeLoadFailed, CategoryStorage},
		{ErrCodeQueryTooShort, CategoryRequest},
		{ErrCodeNotFound, CategoryRequest},
		{ErrCodeInternal, CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test", nil)
			assert.Equal(t, tt.category, err.Category)
		})
	}
}

func TestNew_SourceAndStorageErrorsAreFatal(t *testing.T) {
	assert.True(t, IsFatal(FetchFailed("download failed", nil)))
	assert.True(t, IsFatal(ArchiveEmpty("no table in archive")))
	assert.True(t, IsFatal(LoadFailed("disk full", nil)))

	// Read-path errors are local to a single query, never fatal.
	assert.False(t, IsFatal(QueryTooShort("query too short")))
	assert.False(t, IsFatal(NotFound("no such property")))
}

func TestIsRetryable_OnlyFetchAndLock(t *testing.T) {
	assert.True(t, IsRetryable(FetchFailed("timeout", nil)))
	assert.False(t, IsRetryable(ArchiveEmpty("empty")))
	assert.False(t, IsRetryable(LoadFailed("fault", nil)))
	assert.False(t, IsRetryable(stderrors.New("plain")))
	assert.False(t, IsRetryable(nil))
}

func TestError_ErrorIncludesCode(t *testing.T) {
	err := FetchFailed("connection refused", nil)
	assert.Equal(t, "[ERR_201_FETCH_FAILED] connection refused", err.Error())
}

func TestError_UnwrapPreservesCause(t *testing.T) {
	cause := stderrors.New("socket closed")
	err := FetchFailed("download failed", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, cause, err.Unwrap())
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := NotFound("property XY123 not found")

	assert.True(t, stderrors.Is(err, New(ErrCodeNotFound, "", nil)))
	assert.False(t, stderrors.Is(err, New(ErrCodeQueryTooShort, "", nil)))
}

func TestHasCode_WalksWrappedChain(t *testing.T) {
	inner := LoadFailed("constraint violated", nil)
	outer := fmt.Errorf("location 00_All_Records.zip: %w", inner)

	assert.True(t, HasCode(outer, ErrCodeLoadFailed))
	assert.False(t, HasCode(outer, ErrCodeFetchFailed))
}

func TestWithDetail_AccumulatesContext(t *testing.T) {
	err := LoadFailed("chunk aborted", nil).
		WithDetail("location", "00_All_Records.zip").
		WithDetail("chunk_offset", "30000")

	assert.Equal(t, "00_All_Records.zip", err.Details["location"])
	assert.Equal(t, "30000", err.Details["chunk_offset"])
}

func TestWrap_NilErrorYieldsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeLoadFailed, nil))
}
