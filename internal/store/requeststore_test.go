package store

import (
	"context"
	"database/sql/driver"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIndexingRequestInsertsPending(t *testing.T) {
	fq := &fakeQueryer{execResult: []driver.Result{fakeResult{rowsAffected: 1}}}
	s := NewFeatureStore(fq)

	req := IndexingRequest{ID: "req-1", Player: "hikaru", Platform: "chess.com", StartMonth: "2026-01", EndMonth: "2026-02"}
	err := s.CreateIndexingRequest(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, fq.execCalls, 1)
	assert.Contains(t, fq.execCalls[0].query, "INSERT INTO indexing_requests")
	assert.Equal(t, StatusPending, fq.execCalls[0].args[5])
}

func TestTransitionStatusSetsErrorMessage(t *testing.T) {
	fq := &fakeQueryer{execResult: []driver.Result{fakeResult{rowsAffected: 1}}}
	s := NewFeatureStore(fq)

	err := s.TransitionStatus(context.Background(), "req-1", StatusFailed, "fetch failed")
	require.NoError(t, err)
	require.Len(t, fq.execCalls, 1)
	assert.Equal(t, StatusFailed, fq.execCalls[0].args[0])
	assert.Equal(t, "fetch failed", fq.execCalls[0].args[1])
}

func TestTransitionStatusNullsEmptyErrorMessage(t *testing.T) {
	fq := &fakeQueryer{execResult: []driver.Result{fakeResult{rowsAffected: 1}}}
	s := NewFeatureStore(fq)

	err := s.TransitionStatus(context.Background(), "req-1", StatusCompleted, "")
	require.NoError(t, err)
	assert.Nil(t, fq.execCalls[0].args[1])
}

func TestUpdateGamesIndexedSetsCounter(t *testing.T) {
	fq := &fakeQueryer{execResult: []driver.Result{fakeResult{rowsAffected: 1}}}
	s := NewFeatureStore(fq)

	err := s.UpdateGamesIndexed(context.Background(), "req-1", 42)
	require.NoError(t, err)
	assert.Equal(t, 42, fq.execCalls[0].args[0])
}
