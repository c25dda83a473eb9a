package db

import (
	"errors"
	"log"
)

// RunMigrations applies the SQL migrations in ./migrations against
// DATABASE_DSN. This backs the --migrate-only flag, so unlike
// ConnectAndMigrate it does not wait for MIGRATIONS to be set and it
// refuses sqlite DSNs (dev and test schemas come from AutoMigrate).
func RunMigrations() error {
	dsn := GetNormalizedDSN()
	if dsn == "" {
		return errors.New("DATABASE_DSN is not set")
	}
	if IsSQLiteDSN(dsn) {
		return errors.New("sql migrations require a postgres DSN")
	}
	log.Println("Applying SQL migrations...")
	return runSQLMigrations(dsn)
}
