package database

import (
	migrate "github.com/rubenv/sql-migrate"
)

// Migrate applies the SQL migrations in dir and returns how many ran.
// Schema changes beyond the baseline are AutoMigrated by the migration
// command; the SQL files carry the baseline and data backfills.
func (s *DB) Migrate(dir string) (int, error) {
	log := s.log.Function("Migrate")

	sqlDB, err := s.SQL.DB()
	if err != nil {
		return 0, log.Err("failed to get database handle", err)
	}

	source := migrate.FileMigrationSource{Dir: dir}
	applied, err := migrate.Exec(sqlDB, "sqlite3", source, migrate.Up)
	if err != nil {
		return 0, log.Err("failed to run migrations", err, "dir", dir)
	}

	if applied > 0 {
		log.Info("applied migrations", "count", applied)
	}
	return applied, nil
}
