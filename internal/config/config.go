package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type rawConfig struct {
	Server *struct {
		Address string `json:"address"`
	} `json:"server"`
	// Seconds until a night is resolved without the missing submissions.
	ActionTimeoutSeconds int `json:"action_timeout_seconds"`
	// Seconds the killer gets to pick an item before the pick is made
	// for them.
	SelectionTimeoutSeconds int `json:"selection_timeout_seconds"`
	// How long a waiting match stays in the public list before it is
	// hidden. Minutes.
	PublicMatchesTTLMinutes int `json:"public_matches_ttl_minutes"`
	// Directory for the compressed night journals. Empty disables
	// archiving.
	ArchiveDir string `json:"archive_dir"`
	Debug      bool   `json:"debug"`
}

// LoadedConfig holds the server settings after defaulting and validation.
type LoadedConfig struct {
	ServerAddress    string
	ActionTimeout    time.Duration
	SelectionTimeout time.Duration
	PublicMatchesTTL time.Duration
	ArchiveDir       string
	Debug            bool
}

// LoadConfig reads the configuration file at path and returns the server
// settings. All keys are optional; a missing file is an error so typos in
// the path surface immediately.
func LoadConfig(path string) (*LoadedConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var rc rawConfig
	if err := json.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if rc.ActionTimeoutSeconds < 0 {
		return nil, fmt.Errorf("config file %s: action_timeout_seconds must not be negative", path)
	}
	if rc.SelectionTimeoutSeconds < 0 {
		return nil, fmt.Errorf("config file %s: selection_timeout_seconds must not be negative", path)
	}

	addr := ":8080"
	if rc.Server != nil && rc.Server.Address != "" {
		addr = rc.Server.Address
	}
	actionTimeout := 120 * time.Second
	if rc.ActionTimeoutSeconds > 0 {
		actionTimeout = time.Duration(rc.ActionTimeoutSeconds) * time.Second
	}
	selectionTimeout := 60 * time.Second
	if rc.SelectionTimeoutSeconds > 0 {
		selectionTimeout = time.Duration(rc.SelectionTimeoutSeconds) * time.Second
	}
	publicTTL := 30 * time.Minute
	if rc.PublicMatchesTTLMinutes > 0 {
		publicTTL = time.Duration(rc.PublicMatchesTTLMinutes) * time.Minute
	}

	return &LoadedConfig{
		ServerAddress:    addr,
		ActionTimeout:    actionTimeout,
		SelectionTimeout: selectionTimeout,
		PublicMatchesTTL: publicTTL,
		ArchiveDir:       rc.ArchiveDir,
		Debug:            rc.Debug,
	}, nil
}
