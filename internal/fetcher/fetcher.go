// Package fetcher defines the contract the worker consumes to list a
// player's games for a given month, and a reference implementation against
// the chess.com public API (spec §6).
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PlatformGame is one game as reported by the external platform (spec §6).
type PlatformGame struct {
	GameURL   string
	White     string
	Black     string
	WhiteElo  int
	BlackElo  int
	TimeClass string
	ECO       string
	Result    string
	PlayedAt  time.Time
	PGN       string
}

// Fetcher lists a player's games for one calendar month on one platform.
type Fetcher interface {
	FetchMonth(ctx context.Context, player, platform, yearMonth string) ([]PlatformGame, error)
}

// ChessComFetcher is the reference Fetcher against api.chess.com. It is the
// only concrete implementation; "platform" is validated but otherwise
// ignored since chess.com is presently the sole supported platform.
type ChessComFetcher struct {
	client  *http.Client
	baseURL string
}

// NewChessComFetcher returns a ChessComFetcher with a bounded per-call
// timeout, mirroring the rest of the pack's http.Client usage against third
// party chess APIs.
func NewChessComFetcher() *ChessComFetcher {
	return &ChessComFetcher{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: "https://api.chess.com",
	}
}

type chessComArchiveResponse struct {
	Games []chessComGame `json:"games"`
}

type chessComGame struct {
	URL       string `json:"url"`
	PGN       string `json:"pgn"`
	TimeClass string `json:"time_class"`
	ECO       string `json:"eco"`
	EndTime   int64  `json:"end_time"`
	White     chessComPlayer `json:"white"`
	Black     chessComPlayer `json:"black"`
}

type chessComPlayer struct {
	Username string `json:"username"`
	Rating   int    `json:"rating"`
	Result   string `json:"result"`
}

// FetchMonth lists every game player played on platform during yearMonth
// ("YYYY-MM"). platform must be "chess.com"; any other value is an error
// since this fetcher has no other backend to dispatch to.
func (f *ChessComFetcher) FetchMonth(ctx context.Context, player, platform, yearMonth string) ([]PlatformGame, error) {
	if platform != "chess.com" {
		return nil, fmt.Errorf("fetcher: unsupported platform %q", platform)
	}
	year, month, err := splitYearMonth(yearMonth)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/pub/player/%s/games/%s/%s", f.baseURL, player, year, month)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetcher: build request for %s: %w", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetcher: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// No games archived for this month; not an error.
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetcher: %s returned status %d", url, resp.StatusCode)
	}

	var archive chessComArchiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&archive); err != nil {
		return nil, fmt.Errorf("fetcher: decode %s: %w", url, err)
	}

	games := make([]PlatformGame, 0, len(archive.Games))
	for _, g := range archive.Games {
		games = append(games, PlatformGame{
			GameURL:   g.URL,
			White:     g.White.Username,
			Black:     g.Black.Username,
			WhiteElo:  g.White.Rating,
			BlackElo:  g.Black.Rating,
			TimeClass: g.TimeClass,
			ECO:       g.ECO,
			Result:    g.White.Result,
			PlayedAt:  time.Unix(g.EndTime, 0).UTC(),
			PGN:       g.PGN,
		})
	}
	return games, nil
}

func splitYearMonth(yearMonth string) (year, month string, err error) {
	if len(yearMonth) != 7 || yearMonth[4] != '-' {
		return "", "", fmt.Errorf("fetcher: malformed yearMonth %q, want YYYY-MM", yearMonth)
	}
	return yearMonth[:4], yearMonth[5:], nil
}
