package store

import (
	"database/sql"
	"fmt"
)

// migrations is the fixed, ordered list of DDL statements that bring a
// fresh MySQL database up to the schema spec §6 defines. Running it
// against an already-bootstrapped database is a no-op: every statement
// is `CREATE TABLE IF NOT EXISTS`.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS indexing_requests (
		id VARCHAR(64) PRIMARY KEY,
		player VARCHAR(255) NOT NULL,
		platform VARCHAR(32) NOT NULL,
		start_month VARCHAR(7) NOT NULL,
		end_month VARCHAR(7) NOT NULL,
		status VARCHAR(16) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		error_message TEXT,
		games_indexed INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS game_features (
		game_url VARCHAR(512) PRIMARY KEY,
		platform VARCHAR(32) NOT NULL,
		white_username VARCHAR(255),
		black_username VARCHAR(255),
		white_elo INTEGER,
		black_elo INTEGER,
		time_class VARCHAR(32),
		eco VARCHAR(8),
		result VARCHAR(16),
		played_at TIMESTAMP NULL,
		num_moves INTEGER NOT NULL DEFAULT 0,
		has_pin BOOLEAN NOT NULL DEFAULT FALSE,
		has_cross_pin BOOLEAN NOT NULL DEFAULT FALSE,
		has_fork BOOLEAN NOT NULL DEFAULT FALSE,
		has_skewer BOOLEAN NOT NULL DEFAULT FALSE,
		has_discovered_attack BOOLEAN NOT NULL DEFAULT FALSE,
		has_check BOOLEAN NOT NULL DEFAULT FALSE,
		has_checkmate BOOLEAN NOT NULL DEFAULT FALSE,
		has_promotion BOOLEAN NOT NULL DEFAULT FALSE,
		has_promotion_with_check BOOLEAN NOT NULL DEFAULT FALSE,
		has_promotion_with_checkmate BOOLEAN NOT NULL DEFAULT FALSE,
		motifs_json TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS motif_occurrences (
		game_url VARCHAR(512) NOT NULL,
		ply INTEGER NOT NULL,
		motif VARCHAR(32) NOT NULL,
		move_number INTEGER NOT NULL,
		side VARCHAR(8) NOT NULL,
		attacker VARCHAR(16) NOT NULL DEFAULT '',
		target VARCHAR(16),
		is_discovered BOOLEAN NOT NULL DEFAULT FALSE,
		is_mate BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (game_url, ply, motif, attacker)
	)`,
}

// Bootstrap runs every migration in order against db. It is safe to call
// on every process startup: each statement is idempotent.
func Bootstrap(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
