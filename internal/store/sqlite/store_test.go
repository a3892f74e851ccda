package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"marlin/internal/store/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLookupUnseenKey(t *testing.T) {
	s := newTestStore(t)
	sub, err := s.Lookup(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestPendingThenSubmitted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordPending(ctx, "key-1", "AAPL", "buy", 100))
	require.NoError(t, s.MarkSubmitted(ctx, "key-1", "broker-7"))

	sub, err := s.Lookup(ctx, "key-1")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, model.SubmissionStatusSubmitted, sub.Status)
	assert.Equal(t, "broker-7", sub.BrokerOrderID)
	assert.Equal(t, "AAPL", sub.Symbol)
	assert.Equal(t, 100, sub.Qty)
	assert.Equal(t, 1, sub.Attempts)
}

func TestRepeatedPendingBumpsAttempts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordPending(ctx, "key-1", "AAPL", "buy", 100))
	require.NoError(t, s.MarkFailed(ctx, "key-1", "network down"))
	require.NoError(t, s.RecordPending(ctx, "key-1", "AAPL", "buy", 100))

	sub, err := s.Lookup(ctx, "key-1")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, model.SubmissionStatusPending, sub.Status)
	assert.Equal(t, 2, sub.Attempts)
	assert.Equal(t, "network down", sub.Message)
}

func TestMarkFailed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordPending(ctx, "key-1", "TSLA", "buy", 5))
	require.NoError(t, s.MarkFailed(ctx, "key-1", "insufficient buying power"))

	sub, err := s.Lookup(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionStatusFailed, sub.Status)
	assert.Equal(t, "insufficient buying power", sub.Message)
}

func TestOutcomeForUnknownKey(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.MarkSubmitted(context.Background(), "ghost", "id"))
}
