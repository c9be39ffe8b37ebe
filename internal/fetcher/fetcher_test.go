package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchMonthRejectsUnsupportedPlatform(t *testing.T) {
	f := NewChessComFetcher()
	_, err := f.FetchMonth(context.Background(), "hikaru", "lichess.org", "2026-01")
	require.Error(t, err)
}

func TestFetchMonthRejectsMalformedYearMonth(t *testing.T) {
	f := NewChessComFetcher()
	_, err := f.FetchMonth(context.Background(), "hikaru", "chess.com", "2026/01")
	require.Error(t, err)
}

func TestFetchMonthReturnsEmptyOn404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := &ChessComFetcher{client: srv.Client(), baseURL: srv.URL}
	games, err := f.FetchMonth(context.Background(), "hikaru", "chess.com", "2026-01")
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestFetchMonthDecodesGames(t *testing.T) {
	body := `{"games":[{"url":"https://chess.com/game/1","pgn":"1. e4 e5","time_class":"blitz","eco":"C20","end_time":1700000000,"white":{"username":"hikaru","rating":2800,"result":"win"},"black":{"username":"magnus","rating":2830,"result":"checkmated"}}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pub/player/hikaru/games/2026/01", r.URL.Path)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	f := &ChessComFetcher{client: srv.Client(), baseURL: srv.URL}
	games, err := f.FetchMonth(context.Background(), "hikaru", "chess.com", "2026-01")
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "https://chess.com/game/1", games[0].GameURL)
	assert.Equal(t, "hikaru", games[0].White)
	assert.Equal(t, "magnus", games[0].Black)
	assert.Equal(t, 2800, games[0].WhiteElo)
	assert.Equal(t, "win", games[0].Result)
	assert.Equal(t, "1. e4 e5", games[0].PGN)
}

func TestFetchMonthPropagatesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := &ChessComFetcher{client: srv.Client(), baseURL: srv.URL}
	_, err := f.FetchMonth(context.Background(), "hikaru", "chess.com", "2026-01")
	require.Error(t, err)
}

func TestSplitYearMonth(t *testing.T) {
	year, month, err := splitYearMonth("2026-01")
	require.NoError(t, err)
	assert.Equal(t, "2026", year)
	assert.Equal(t, "01", month)

	_, _, err = splitYearMonth("bad")
	require.Error(t, err)
}
