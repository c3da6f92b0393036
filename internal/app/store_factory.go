package app

import (
	"strings"

	"github.com/ovalhq/pavilion/internal/store"
	"github.com/ovalhq/pavilion/internal/store/postgres"
	"github.com/ovalhq/pavilion/internal/store/sqlite"
)

func NewStore(dsn, migrationsDir string) (store.ScoreboardStore, error) {
	if strings.HasPrefix(dsn, "postgres") {
		return postgres.NewPostgresStore(dsn, migrationsDir)
	}
	return sqlite.NewSQLiteStore(dsn, migrationsDir)
}
