package main

import (
	"os"

	"lastcandle.games/internal/api"
	"lastcandle.games/internal/archive"
	"lastcandle.games/internal/config"
	"lastcandle.games/internal/constants"
	"lastcandle.games/internal/logging"
	"lastcandle.games/internal/stream"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func main() {
	checkEnvVars([]string{constants.EnvSessionSecret, constants.EnvGoogleClientID, constants.EnvGoogleClientSecret})

	// Server configuration. Path may be provided via LASTCANDLE_CONFIG or
	// defaults to ./lastcandle_config.json in the current working directory.
	configPath := os.Getenv(constants.EnvConfigPath)
	if configPath == "" {
		configPath = "./lastcandle_config.json"
	}
	cfg := loadConfigOrExit(configPath)
	if cfg.Debug {
		logging.EnableDebug()
	}

	// Night rules. Optional: without a file the built-in defaults apply.
	rulesPath := os.Getenv(constants.EnvRulesPath)
	if rulesPath == "" {
		rulesPath = "./night_rules.yaml"
		if _, err := os.Stat(rulesPath); err != nil {
			rulesPath = ""
		}
	}
	rules, err := config.LoadRules(rulesPath)
	if err != nil {
		logging.Fatal("Invalid night rules", err, logging.Fields{"rules_path": rulesPath})
	}

	// Allow the DB path to be configured via LASTCANDLE_DB. Default to a
	// data/ directory inside the module for local development.
	dbPath := os.Getenv(constants.EnvDBPath)
	if dbPath == "" {
		dbPath = "./data/lastcandle.db"
	}
	repo := createRepositoryOrExit(dbPath, cfg.PublicMatchesTTL)

	archive.Configure(cfg.ArchiveDir)
	defer archive.Close()

	broker := stream.NewBroker()
	handler := api.NewMatchHandler(repo, broker, rules, cfg.ActionTimeout, cfg.SelectionTimeout)
	authHandler := api.NewAuthHandler(repo)

	// Background scanners resolve nights and draw selections whose deadline
	// passed. The worker id scopes the claim window, so several server
	// instances can share one database without double-resolving.
	workerID := uuid.NewString()
	startTimeoutScanner(repo, broker, cfg.ActionTimeout, cfg.SelectionTimeout, workerID)
	startSelectionScanner(repo, broker, cfg.ActionTimeout, cfg.SelectionTimeout, workerID)

	router := gin.Default()

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		// Public endpoints
		apiRoutes.GET(constants.RoutePublicMatches, handler.ListPublicMatches)
		apiRoutes.GET(constants.RouteLeaderboard, handler.ListLeaderboard)
		apiRoutes.GET(constants.RouteVersion, api.Version)

		apiRoutes.POST(constants.RouteAuthGoogleCallBack, authHandler.GoogleOAuthCallback)
		apiRoutes.POST(constants.RouteAuthLogout, authHandler.Logout)

		// Authenticated endpoints
		protected := apiRoutes.Group("")
		protected.Use(api.AuthRequired())

		protected.GET(constants.RoutePlayerStats, handler.GetPlayerStats)
		protected.POST(constants.RoutePlayerStats, handler.UpdatePlayerProfile)

		protected.POST(constants.RouteMatches, handler.CreateMatch)
		protected.POST(constants.RouteMatchesJoin, handler.JoinMatch)
		protected.GET(constants.RouteMatchByCode, handler.GetMatch)
		protected.POST(constants.RouteMatchStart, handler.StartMatch)
		protected.POST(constants.RouteMatchLeave, handler.LeaveMatch)
		protected.POST(constants.RouteMatchAction, handler.SubmitAction)
		protected.POST(constants.RouteMatchSelection, handler.SubmitSelection)
		protected.GET(constants.RouteMatchStream, handler.StreamMatch)
	}

	addr := cfg.ServerAddress
	logging.Info("Server started", logging.Fields{constants.LogFieldAddr: addr})
	if err := router.Run(addr); err != nil {
		logging.Fatal("Failed to start server", err, nil)
	}
}

func checkEnvVars(vars []string) {
	for _, v := range vars {
		if os.Getenv(v) == "" {
			logging.Fatal("Required environment variable not set", nil, logging.Fields{"var": v})
		}
	}
}
