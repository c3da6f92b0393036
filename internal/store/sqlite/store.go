// internal/store/sqlite/store.go
package sqlite

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ovalhq/pavilion/internal/models"
	"github.com/ovalhq/pavilion/internal/store"
)

type SQLiteStore struct {
	store.BaseStore
}

func NewSQLiteStore(dsn, migrationsDir string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			return query
		},
	}}

	if err := s.ApplyMigrations(migrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, translateToSQLite)
}

// translateToSQLite converts Postgres SQL to SQLite dialect
func translateToSQLite(sql string) string {
	replacements := map[string]string{
		"BIGSERIAL":        "INTEGER PRIMARY KEY AUTOINCREMENT",
		"SERIAL":           "INTEGER PRIMARY KEY AUTOINCREMENT",
		"BIGINT":           "INTEGER",
		"UUID":             "TEXT",
		"TIMESTAMPTZ":      "DATETIME",
		"DOUBLE PRECISION": "REAL",
		"TRUE":             "1",
		"FALSE":            "0",
		"now()":            "CURRENT_TIMESTAMP",
	}
	result := sql
	for from, to := range replacements {
		result = strings.ReplaceAll(result, from, to)
	}
	return result
}

// QuickScore is the live-scoring fast path: one UPDATE keeps the wicket
// clamp atomic no matter how many increments race.
func (s *SQLiteStore) QuickScore(id, team string, runs int, wicket bool) (*models.Match, error) {
	if team != "team1" && team != "team2" {
		return nil, fmt.Errorf("unknown team %q", team)
	}

	wicketInc := 0
	if wicket {
		wicketInc = 1
	}

	query := fmt.Sprintf(`
		UPDATE matches SET
			%[1]s_score = %[1]s_score + ?,
			%[1]s_wickets = MIN(10, %[1]s_wickets + ?),
			updated_at = ?
		WHERE id = ?
	`, team)

	res, err := s.DB.Exec(query, runs, wicketInc, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to apply quick score: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, store.ErrNotFound
	}

	return s.GetMatch(id)
}
