package main

import (
	"flag"
	"os"

	"monitor/cmd/migration/initialize"
	"monitor/cmd/migration/seed"
	"monitor/config"
	"monitor/internal/database"
	"monitor/internal/logger"
)

func main() {
	log := logger.New("migration")

	migrationsDir := flag.String("dir", "migrations", "directory of SQL migrations")
	runSeed := flag.Bool("seed", false, "load development fixtures after migrating")
	flag.Parse()

	config, err := config.InitConfig()
	if err != nil {
		log.Er("failed to initialize config", err)
		os.Exit(1)
	}

	db, err := database.New(config)
	if err != nil {
		log.Er("failed to open database", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := initialize.InitializeTables(db.SQL, config, log); err != nil {
		log.Er("failed to initialize tables", err)
		os.Exit(1)
	}

	// SQL migrations run after AutoMigrate; they hold the statements gorm
	// cannot express, partial indexes mostly.
	if _, err := db.Migrate(*migrationsDir); err != nil {
		log.Er("failed to run sql migrations", err)
		os.Exit(1)
	}

	if *runSeed {
		if err := seed.Seed(db.SQL, config, log); err != nil {
			log.Er("failed to seed database", err)
			os.Exit(1)
		}
	}

	log.Info("Migration complete")
}
