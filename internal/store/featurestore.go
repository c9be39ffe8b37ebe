// Package store implements the MySQL-backed feature store: schema
// bootstrap, idempotent game-feature upsert, indexing-request lifecycle
// persistence, and ChessQL query execution (spec §4.8, §6).
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/atinm/chesstactics/internal/chessql"
	"github.com/atinm/chesstactics/internal/motif"
)

// GameMetadata is the non-motif half of a game_features row: everything
// the platform fetcher already knows about a game before the extractor
// runs. Kept separate from fetcher.PlatformGame so this package does not
// depend on the fetcher package.
type GameMetadata struct {
	GameURL       string
	Platform      string
	WhiteUsername string
	BlackUsername string
	WhiteElo      int
	BlackElo      int
	TimeClass     string
	ECO           string
	Result        string
	PlayedAt      time.Time
}

// GameFeatureRow is the query-path projection of one game_features row
// (spec §3 GameFeatureRow, §4.8).
type GameFeatureRow struct {
	GameURL       string
	Platform      string
	WhiteUsername string
	BlackUsername string
	WhiteElo      int
	BlackElo      int
	TimeClass     string
	ECO           string
	Result        string
	PlayedAt      time.Time
	NumMoves      int

	HasPin                    bool
	HasCrossPin               bool
	HasFork                   bool
	HasSkewer                 bool
	HasDiscoveredAttack       bool
	HasCheck                  bool
	HasCheckmate              bool
	HasPromotion              bool
	HasPromotionWithCheck     bool
	HasPromotionWithCheckmate bool

	MotifsJSON string
}

// Queryer is the slice of *sql.DB (and *sql.Tx) that FeatureStore needs.
// Tests substitute an in-process fake satisfying this interface instead
// of pulling in a SQL-mock library, since none appears anywhere in the
// retrieved pack.
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// FeatureStore implements the store-side contracts spec §4.8/§4.9/§4.12
// describe. Grounded on the teacher's direct database/sql +
// go-sql-driver/mysql usage: prepared-statement-shaped calls, bound `?`
// placeholders, and res.RowsAffected() for feedback.
type FeatureStore struct {
	db Queryer
}

// NewFeatureStore wraps an already-open database handle (or any other
// Queryer, e.g. a fake in tests).
func NewFeatureStore(db Queryer) *FeatureStore {
	return &FeatureStore{db: db}
}

// UpsertGameFeatures inserts one game_features row and its motif
// occurrences. Per spec §4.8, this uses the platform's on-conflict-do-
// nothing facility (MySQL: INSERT IGNORE) keyed by game_url, so
// re-indexing the same game is a no-op rather than an error. Reports
// whether a new row was actually inserted.
func (s *FeatureStore) UpsertGameFeatures(ctx context.Context, meta GameMetadata, features *motif.Features) (bool, error) {
	motifsJSON, err := json.Marshal(features.Occurrences)
	if err != nil {
		return false, fmt.Errorf("marshal occurrences for %s: %w", meta.GameURL, err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT IGNORE INTO game_features (
			game_url, platform, white_username, black_username,
			white_elo, black_elo, time_class, eco, result, played_at, num_moves,
			has_pin, has_cross_pin, has_fork, has_skewer, has_discovered_attack,
			has_check, has_checkmate, has_promotion,
			has_promotion_with_check, has_promotion_with_checkmate,
			motifs_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.GameURL, meta.Platform, meta.WhiteUsername, meta.BlackUsername,
		meta.WhiteElo, meta.BlackElo, meta.TimeClass, meta.ECO, meta.Result, meta.PlayedAt, features.NumMoves,
		features.HasMotif(motif.Pin), features.HasMotif(motif.CrossPin), features.HasMotif(motif.Fork),
		features.HasMotif(motif.Skewer), features.HasMotif(motif.DiscoveredAttack),
		features.HasMotif(motif.Check), features.HasMotif(motif.Checkmate), features.HasMotif(motif.Promotion),
		features.HasMotif(motif.PromotionWithCheck), features.HasMotif(motif.PromotionWithCheckmate),
		string(motifsJSON),
	)
	if err != nil {
		return false, fmt.Errorf("insert game_features for %s: %w", meta.GameURL, err)
	}

	rowCnt, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected for %s: %w", meta.GameURL, err)
	}
	if rowCnt == 0 {
		// Already indexed; occurrences were inserted the first time too.
		return false, nil
	}

	for _, o := range features.Occurrences {
		if err := s.insertOccurrence(ctx, o); err != nil {
			return true, fmt.Errorf("insert occurrence for %s: %w", meta.GameURL, err)
		}
	}
	return true, nil
}

func (s *FeatureStore) insertOccurrence(ctx context.Context, o motif.Occurrence) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT IGNORE INTO motif_occurrences (
			game_url, ply, motif, move_number, side, attacker, target, is_discovered, is_mate
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.GameURL, o.Ply, string(o.Motif), o.MoveNumber, o.Side, o.Attacker, o.Target, o.IsDiscovered, o.IsMate,
	)
	return err
}

// buildSelectQuery assembles the full query template spec §4.12
// specifies: "SELECT g.* FROM game_features g WHERE <fragment> ORDER BY
// g.played_at DESC LIMIT ? OFFSET ?", expanded to named columns, with a
// deterministic tiebreaker (spec §4.8: "deterministic by playedAt DESC,
// gameUrl unless the query specifies otherwise"). Kept free of any
// *sql.DB dependency so it is testable without a live connection.
func buildSelectQuery(compiled *chessql.Compiled, limit, offset int) (string, []any) {
	query := fmt.Sprintf(`
		SELECT
			g.game_url, g.platform, g.white_username, g.black_username,
			g.white_elo, g.black_elo, g.time_class, g.eco, g.result, g.played_at, g.num_moves,
			g.has_pin, g.has_cross_pin, g.has_fork, g.has_skewer, g.has_discovered_attack,
			g.has_check, g.has_checkmate, g.has_promotion,
			g.has_promotion_with_check, g.has_promotion_with_checkmate,
			g.motifs_json
		FROM game_features g WHERE %s ORDER BY g.played_at DESC, g.game_url LIMIT ? OFFSET ?`, compiled.SQL)

	args := make([]any, 0, len(compiled.Args)+2)
	args = append(args, compiled.Args...)
	args = append(args, limit, offset)
	return query, args
}

// ExecuteQuery runs a compiled ChessQL predicate against game_features
// and maps rows to GameFeatureRow in the driver's return order.
func (s *FeatureStore) ExecuteQuery(ctx context.Context, compiled *chessql.Compiled, limit, offset int) ([]GameFeatureRow, error) {
	query, args := buildSelectQuery(compiled, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	var out []GameFeatureRow
	for rows.Next() {
		var r GameFeatureRow
		var playedAt sql.NullTime
		if err := rows.Scan(
			&r.GameURL, &r.Platform, &r.WhiteUsername, &r.BlackUsername,
			&r.WhiteElo, &r.BlackElo, &r.TimeClass, &r.ECO, &r.Result, &playedAt, &r.NumMoves,
			&r.HasPin, &r.HasCrossPin, &r.HasFork, &r.HasSkewer, &r.HasDiscoveredAttack,
			&r.HasCheck, &r.HasCheckmate, &r.HasPromotion,
			&r.HasPromotionWithCheck, &r.HasPromotionWithCheckmate,
			&r.MotifsJSON,
		); err != nil {
			return nil, fmt.Errorf("scan game_features row: %w", err)
		}
		if playedAt.Valid {
			r.PlayedAt = playedAt.Time
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate game_features rows: %w", err)
	}
	return out, nil
}
