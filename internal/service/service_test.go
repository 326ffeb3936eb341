package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	propseekerrors "github.com/propseek/propseek/internal/errors"
	"github.com/propseek/propseek/internal/store"
)

func newTestService(t *testing.T, records ...store.Property) *Properties {
	t.Helper()
	st, err := store.Open("", store.DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	if len(records) > 0 {
		_, _, err = st.LoadBatch(context.Background(), records)
		require.NoError(t, err)
	}

	return NewProperties(st, nil, 16, 10)
}

func TestSearch_QueryFloor(t *testing.T) {
	svc := newTestService(t, store.Property{PropertyID: "P1", OwnerName: "Abel"})
	ctx := context.Background()

	// Length 1 is rejected before touching the index.
	_, err := svc.Search(ctx, "a", 10)
	require.Error(t, err)
	assert.True(t, propseekerrors.HasCode(err, propseekerrors.ErrCodeQueryTooShort))

	// Length 2 is accepted.
	_, err = svc.Search(ctx, "ab", 10)
	assert.NoError(t, err)

	// Whitespace padding does not satisfy the floor.
	_, err = svc.Search(ctx, " a ", 10)
	require.Error(t, err)
	assert.True(t, propseekerrors.HasCode(err, propseekerrors.ErrCodeQueryTooShort))
}

func TestSearch_HydratesFullRecords(t *testing.T) {
	svc := newTestService(t,
		store.Property{PropertyID: "P1", OwnerName: "Smith", AmountReported: 12.5},
		store.Property{PropertyID: "P2", OwnerName: "Jones"},
	)

	results, err := svc.Search(context.Background(), "Smith", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "P1", results[0].PropertyID)
	assert.Equal(t, 12.5, results[0].AmountReported)
}

func TestSearch_EmptyResultIsNotAnError(t *testing.T) {
	svc := newTestService(t, store.Property{PropertyID: "P1", OwnerName: "Smith"})

	results, err := svc.Search(context.Background(), "zzzz", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_ClampsLimitToMaxResults(t *testing.T) {
	var records []store.Property
	for _, id := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"} {
		records = append(records, store.Property{PropertyID: id, OwnerName: "Common"})
	}
	svc := newTestService(t, records...) // maxResults = 10

	results, err := svc.Search(context.Background(), "Common", 9999)
	require.NoError(t, err)
	assert.Len(t, results, 10)
}

func TestGetByID_NotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetByID(context.Background(), "NOPE")
	require.Error(t, err)
	assert.True(t, propseekerrors.HasCode(err, propseekerrors.ErrCodeNotFound))
}

func TestGetByID_ServesRepeatsFromCache(t *testing.T) {
	svc := newTestService(t, store.Property{PropertyID: "P1", OwnerName: "Smith"})
	ctx := context.Background()

	first, err := svc.GetByID(ctx, "P1")
	require.NoError(t, err)

	// Same pointer on the second call proves a cache hit.
	second, err := svc.GetByID(ctx, "P1")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestStartClaim_AcknowledgesValidClaim(t *testing.T) {
	svc := newTestService(t, store.Property{PropertyID: "P1", OwnerName: "Smith"})

	claim, err := svc.StartClaim(context.Background(), ClaimRequest{
		PropertyID:      "P1",
		ClaimantName:    "John Smith",
		ClaimantAddress: "1 Elm St",
		ClaimantEmail:   "john@example.com",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, claim.ClaimID)
	assert.Equal(t, "received", claim.Status)
	assert.Equal(t, "P1", claim.Property.PropertyID)
}

func TestStartClaim_UnknownPropertyFails(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.StartClaim(context.Background(), ClaimRequest{
		PropertyID:   "NOPE",
		ClaimantName: "John",
		ClaimantEmail: "john@example.com",
	})
	require.Error(t, err)
	assert.True(t, propseekerrors.HasCode(err, propseekerrors.ErrCodeNotFound))
}

func TestStartClaim_MissingFieldsRejected(t *testing.T) {
	svc := newTestService(t, store.Property{PropertyID: "P1"})

	_, err := svc.StartClaim(context.Background(), ClaimRequest{PropertyID: "P1"})
	require.Error(t, err)
	assert.True(t, propseekerrors.HasCode(err, propseekerrors.ErrCodeInvalidInput))
}

func TestIngest_UnconfiguredRunnerFails(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Ingest(context.Background(), []string{"records.zip"})
	assert.Error(t, err)
}
