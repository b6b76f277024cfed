// Package results stores finished benchmark episodes in a SQLite database
// and aggregates them per map and agent.
package results

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// EpisodeRow is one finished episode. ID and CreatedAt are filled in by
// InsertEpisode when left empty.
type EpisodeRow struct {
	ID          string
	CreatedAt   time.Time
	Map         string
	Agent       string
	Robots      int
	Packages    int
	Horizon     int
	Seed        int64
	AgentSeed   int64
	Ticks       int
	TotalReward float64
	Delivered   int
	OnTime      int
	Late        int
	RuntimeMS   int64
	ReplayPath  string
}

// Summary aggregates the episodes of one map and agent pairing.
type Summary struct {
	Map           string
	Agent         string
	Episodes      int
	MeanTicks     float64
	MeanReward    float64
	MeanDelivered float64
	MeanOnTime    float64
}

// Store is a SQLite-backed episode index.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS episodes (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			map TEXT NOT NULL,
			agent TEXT NOT NULL,
			robots INTEGER NOT NULL,
			packages INTEGER NOT NULL,
			horizon INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			agent_seed INTEGER NOT NULL,
			ticks INTEGER NOT NULL,
			total_reward REAL NOT NULL,
			delivered INTEGER NOT NULL,
			on_time INTEGER NOT NULL,
			late INTEGER NOT NULL,
			runtime_ms INTEGER NOT NULL,
			replay_path TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_episodes_map_agent ON episodes(map, agent);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// InsertEpisode writes one episode and returns its ID.
func (s *Store) InsertEpisode(row EpisodeRow) (string, error) {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO episodes (
			id, created_at, map, agent, robots, packages, horizon, seed, agent_seed,
			ticks, total_reward, delivered, on_time, late, runtime_ms, replay_path
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.CreatedAt.Format(time.RFC3339Nano), row.Map, row.Agent,
		row.Robots, row.Packages, row.Horizon, row.Seed, row.AgentSeed,
		row.Ticks, row.TotalReward, row.Delivered, row.OnTime, row.Late,
		row.RuntimeMS, row.ReplayPath,
	)
	if err != nil {
		return "", fmt.Errorf("insert episode: %w", err)
	}
	return row.ID, nil
}

// Summarize aggregates all stored episodes per map and agent, ordered by
// map then agent.
func (s *Store) Summarize() ([]Summary, error) {
	rows, err := s.db.Query(
		`SELECT map, agent, COUNT(*), AVG(ticks), AVG(total_reward), AVG(delivered), AVG(on_time)
		 FROM episodes GROUP BY map, agent ORDER BY map, agent`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.Map, &sm.Agent, &sm.Episodes, &sm.MeanTicks,
			&sm.MeanReward, &sm.MeanDelivered, &sm.MeanOnTime); err != nil {
			return nil, err
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
