package worker

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/atinm/chesstactics/internal/fetcher"
	"github.com/atinm/chesstactics/internal/replayer"
	"github.com/atinm/chesstactics/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResult is a minimal sql.Result; see internal/store's fakeResult for
// the same rationale (no SQL-mock library in the pack).
type fakeResult struct{ rowsAffected int64 }

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rowsAffected, nil }

// stubQueryer scripts ExecContext by matching a substring of the query
// text, since the worker drives several distinct statements (claim,
// upsert, flush, transition) through the same store.Queryer.
type stubQueryer struct {
	execCalls    []string
	rowsAffected map[string]int64 // substring -> rows affected, default 1
	failOn       map[string]error // substring -> error
}

func (q *stubQueryer) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	q.execCalls = append(q.execCalls, query)
	for substr, err := range q.failOn {
		if strings.Contains(query, substr) {
			return nil, err
		}
	}
	ra := int64(1)
	for substr, n := range q.rowsAffected {
		if strings.Contains(query, substr) {
			ra = n
		}
	}
	return fakeResult{rowsAffected: ra}, nil
}

func (q *stubQueryer) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	panic("not exercised by these tests")
}

func (q *stubQueryer) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	panic("not exercised by these tests")
}

func (q *stubQueryer) countContaining(substr string) int {
	n := 0
	for _, c := range q.execCalls {
		if strings.Contains(c, substr) {
			n++
		}
	}
	return n
}

type fakeFetcher struct {
	games map[string][]fetcher.PlatformGame
	err   error
}

func (f *fakeFetcher) FetchMonth(ctx context.Context, player, platform, yearMonth string) ([]fetcher.PlatformGame, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.games[yearMonth], nil
}

type fakeReplayer struct{ err error }

func (r *fakeReplayer) ParseGame(pgn string) (map[string]string, []replayer.Position, error) {
	if r.err != nil {
		return nil, nil, r.err
	}
	return map[string]string{}, []replayer.Position{{FEN: "4k3/8/8/8/8/8/8/4K3 w - - 0 1", Ply: 0}}, nil
}

func newPlatformGame(url string) fetcher.PlatformGame {
	return fetcher.PlatformGame{GameURL: url, White: "hikaru", Black: "magnus", PlayedAt: time.Now()}
}

func TestProcessSkipsRequestNotPending(t *testing.T) {
	q := &stubQueryer{rowsAffected: map[string]int64{"AND status = ?": 0}}
	fs := store.NewFeatureStore(q)
	w := New(NewQueue(0), fs, &fakeFetcher{}, &fakeReplayer{}, 10)

	w.process(context.Background(), IndexMessage{RequestID: "req-1", StartMonth: "2026-01", EndMonth: "2026-01"})

	require.Len(t, q.execCalls, 1)
	assert.Contains(t, q.execCalls[0], "AND status = ?")
}

func TestProcessCompletesRequestOnSuccess(t *testing.T) {
	q := &stubQueryer{}
	fs := store.NewFeatureStore(q)
	ff := &fakeFetcher{games: map[string][]fetcher.PlatformGame{
		"2026-01": {newPlatformGame("g1"), newPlatformGame("g2")},
	}}
	w := New(NewQueue(0), fs, ff, &fakeReplayer{}, 10)

	w.process(context.Background(), IndexMessage{RequestID: "req-1", StartMonth: "2026-01", EndMonth: "2026-01"})

	assert.Equal(t, 1, q.countContaining("AND status = ?")) // claim
	assert.Equal(t, 2, q.countContaining("INSERT IGNORE INTO game_features"))
	assert.Equal(t, 1, q.countContaining("SET status = ?, error_message = ?"))
	last := q.execCalls[len(q.execCalls)-1]
	assert.Contains(t, last, "SET status = ?, error_message = ?")
}

func TestProcessFailsRequestOnFetchError(t *testing.T) {
	q := &stubQueryer{}
	fs := store.NewFeatureStore(q)
	ff := &fakeFetcher{err: errors.New("platform unavailable")}
	w := New(NewQueue(0), fs, ff, &fakeReplayer{}, 10)

	w.process(context.Background(), IndexMessage{RequestID: "req-1", StartMonth: "2026-01", EndMonth: "2026-01"})

	require.Equal(t, 1, q.countContaining("SET status = ?, error_message = ?"))
	assert.Zero(t, q.countContaining("INSERT IGNORE INTO game_features"))
}

func TestProcessContinuesPastPerGameError(t *testing.T) {
	q := &stubQueryer{}
	fs := store.NewFeatureStore(q)
	ff := &fakeFetcher{games: map[string][]fetcher.PlatformGame{
		"2026-01": {newPlatformGame("g1"), newPlatformGame("g2")},
	}}
	calls := 0
	rp := &replayerFunc{fn: func(pgn string) (map[string]string, []replayer.Position, error) {
		calls++
		if calls == 1 {
			return nil, nil, errors.New("bad pgn")
		}
		return map[string]string{}, []replayer.Position{{FEN: "4k3/8/8/8/8/8/8/4K3 w - - 0 1", Ply: 0}}, nil
	}}
	w := New(NewQueue(0), fs, ff, rp, 10)

	w.process(context.Background(), IndexMessage{RequestID: "req-1", StartMonth: "2026-01", EndMonth: "2026-01"})

	// One game fails to parse, the other still gets indexed and the
	// request still completes.
	assert.Equal(t, 1, q.countContaining("INSERT IGNORE INTO game_features"))
	last := q.execCalls[len(q.execCalls)-1]
	assert.Contains(t, last, "SET status = ?, error_message = ?")
}

type replayerFunc struct {
	fn func(pgn string) (map[string]string, []replayer.Position, error)
}

func (r *replayerFunc) ParseGame(pgn string) (map[string]string, []replayer.Position, error) {
	return r.fn(pgn)
}

func TestMonthRangeIsChronologicalAndInclusive(t *testing.T) {
	months, err := monthRange("2025-11", "2026-02")
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-11", "2025-12", "2026-01", "2026-02"}, months)
}

func TestMonthRangeRejectsInvertedRange(t *testing.T) {
	_, err := monthRange("2026-02", "2026-01")
	require.Error(t, err)
}

func TestMonthRangeRejectsMalformedMonth(t *testing.T) {
	_, err := monthRange("2026-2", "2026-03")
	require.Error(t, err)
}
