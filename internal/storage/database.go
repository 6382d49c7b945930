package storage

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"lastcandle.games/internal/game"
)

func OpenAndMigrate(dataSourceName string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Keep schema updated via AutoMigrate; the DB file is disposable in
	// development.
	err = db.AutoMigrate(
		&game.User{},
		&game.Match{},
		&game.Player{},
		&game.Item{},
		&game.NightAction{},
		&game.DeathRecord{},
		&game.Event{},
		&game.PendingSelection{},
	)
	if err != nil {
		return nil, err
	}

	// The event and action tables are always read per match and night;
	// AutoMigrate does not create composite indexes, so add them here.
	if execErr := db.Exec("CREATE INDEX IF NOT EXISTS idx_match_events_match_night ON match_events(match_id, night);").Error; execErr != nil {
		return nil, execErr
	}
	if execErr := db.Exec("CREATE INDEX IF NOT EXISTS idx_night_actions_match_night ON night_actions(match_id, night);").Error; execErr != nil {
		return nil, execErr
	}
	return db, nil
}
