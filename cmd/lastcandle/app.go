package main

import (
	"time"

	"lastcandle.games/internal/config"
	"lastcandle.games/internal/logging"
	"lastcandle.games/internal/storage"
)

func loadConfigOrExit(path string) *config.LoadedConfig {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logging.Fatal("Missing or invalid server configuration", err, logging.Fields{"config_path": path, "hint": "create a lastcandle_config.json; all keys are optional: server.address, action_timeout_seconds, selection_timeout_seconds, public_matches_ttl_minutes, archive_dir, debug"})
	}
	return cfg
}

func createRepositoryOrExit(dbPath string, publicMatchesTTL time.Duration) storage.Repository {
	db, err := storage.OpenAndMigrate(dbPath)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, nil)
	}
	return storage.NewSQLiteRepository(db, publicMatchesTTL)
}
