package game

// Rules are the per-match tunables. The scalar fields are embedded into the
// match row when the match is created, so later config edits never change a
// running match. The kit fields only matter at start time and stay out of
// the database.
type Rules struct {
	MinPlayers      int `json:"min_players" yaml:"min_players"`
	MaxPlayers      int `json:"max_players" yaml:"max_players"`
	HoldingCapacity int `json:"holding_capacity" yaml:"holding_capacity"`
	MaxIdleNights   int `json:"max_idle_nights" yaml:"max_idle_nights"`

	// StartingKit is dealt to every guest. ExtraItems are shuffled and
	// dealt round-robin on top. Neither may contain the dagger; exactly
	// one dagger enters the match, handed to a random guest at start.
	StartingKit []ItemKind `json:"-" yaml:"starting_kit" gorm:"-"`
	ExtraItems  []ItemKind `json:"-" yaml:"extra_items" gorm:"-"`
}

// DefaultRules returns the rules used when no night_rules.yaml is provided.
func DefaultRules() Rules {
	return Rules{
		MinPlayers:      4,
		MaxPlayers:      10,
		HoldingCapacity: 6,
		MaxIdleNights:   3,
		StartingKit:     []ItemKind{ItemKnife, ItemTalisman, ItemSpyglass, ItemAutopsyKit},
		ExtraItems:      []ItemKind{ItemKnife, ItemKnife, ItemTalisman},
	}
}
