package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"lastcandle.games/internal/game"
)

// LoadRules reads the night rules file at path and returns the validated
// rule set. An empty path returns the built-in defaults, so deployments
// without a rules file keep working.
func LoadRules(path string) (game.Rules, error) {
	if path == "" {
		return game.DefaultRules(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return game.Rules{}, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}
	rules := game.DefaultRules()
	if err := yaml.Unmarshal(b, &rules); err != nil {
		return game.Rules{}, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	if err := validateRules(path, rules); err != nil {
		return game.Rules{}, err
	}
	return rules, nil
}

func validateRules(path string, r game.Rules) error {
	if r.MinPlayers < 3 {
		return fmt.Errorf("rules file %s: min_players must be at least 3", path)
	}
	if r.MaxPlayers < r.MinPlayers {
		return fmt.Errorf("rules file %s: max_players must be at least min_players", path)
	}
	if r.HoldingCapacity < 1 {
		return fmt.Errorf("rules file %s: holding_capacity must be at least 1", path)
	}
	if r.MaxIdleNights < 1 {
		return fmt.Errorf("rules file %s: max_idle_nights must be at least 1", path)
	}
	// The dagger is dealt separately to exactly one guest; letting it into
	// a kit would mint duplicates.
	for _, k := range r.StartingKit {
		if k == game.ItemDagger {
			return fmt.Errorf("rules file %s: starting_kit must not contain the dagger", path)
		}
		if !validKitItem(k) {
			return fmt.Errorf("rules file %s: unknown item kind %q in starting_kit", path, k)
		}
	}
	for _, k := range r.ExtraItems {
		if k == game.ItemDagger {
			return fmt.Errorf("rules file %s: extra_items must not contain the dagger", path)
		}
		if !validKitItem(k) {
			return fmt.Errorf("rules file %s: unknown item kind %q in extra_items", path, k)
		}
	}
	// Every guest must be able to carry their opening hand plus the dagger.
	if len(r.StartingKit)+1 > r.HoldingCapacity {
		return fmt.Errorf("rules file %s: starting_kit (%d items) plus the dagger exceeds holding_capacity %d",
			path, len(r.StartingKit), r.HoldingCapacity)
	}
	return nil
}

func validKitItem(k game.ItemKind) bool {
	switch k {
	case game.ItemKnife, game.ItemTalisman, game.ItemSpyglass, game.ItemAutopsyKit:
		return true
	}
	return false
}
