package storage

import (
	"time"

	"gorm.io/gorm"

	"lastcandle.games/internal/game"
)

type sqliteRepository struct {
	db *gorm.DB
	// publicMatchesTTL bounds how long a waiting room stays listed.
	publicMatchesTTL time.Duration
}

func NewSQLiteRepository(db *gorm.DB, publicMatchesTTL time.Duration) Repository {
	return &sqliteRepository{db: db, publicMatchesTTL: publicMatchesTTL}
}

func (r *sqliteRepository) CreateMatch(m *game.Match) error {
	return r.db.Create(m).Error
}

func (r *sqliteRepository) GetMatchByID(id uint) (*game.Match, error) {
	var m game.Match
	err := r.db.
		Preload("Players").
		Preload("Items").
		Preload("Actions").
		Preload("Deaths").
		Preload("Events").
		Preload("Pending").
		First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *sqliteRepository) FindMatchByJoinCode(code string) (*game.Match, error) {
	var m game.Match
	err := r.db.Preload("Players").Where("join_code = ?", code).First(&m).Error
	return &m, err
}

func (r *sqliteRepository) GetPublicMatches() ([]game.Match, error) {
	var matches []game.Match
	cutoff := time.Now().Add(-r.publicMatchesTTL)
	if err := r.db.Preload("Players").
		Where("private = ? AND status = ? AND created_at > ?", false, game.StatusWaiting, cutoff).
		Order("created_at desc").
		Find(&matches).Error; err != nil {
		return nil, err
	}
	// Only list rooms with at least one seated guest.
	filtered := make([]game.Match, 0, len(matches))
	for i := range matches {
		if len(matches[i].Players) >= 1 {
			filtered = append(filtered, matches[i])
		}
	}
	return filtered, nil
}

func (r *sqliteRepository) UpdateMatch(m *game.Match) error {
	return r.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(m).Error
}

func (r *sqliteRepository) RemovePlayerByEmail(matchID uint, email string) error {
	tx := r.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var p game.Player
	if err := tx.Where("match_id = ? AND player_email = ?", matchID, email).First(&p).Error; err != nil {
		tx.Rollback()
		return err
	}

	// Players only leave this way from the waiting room, before items are
	// dealt, but clear any just in case the row is older than that.
	if err := tx.Model(&game.Item{}).
		Where("match_id = ? AND player_id = ?", matchID, p.ID).
		Updates(map[string]interface{}{"player_id": nil, "location": game.LocationExcess}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&p).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

func (r *sqliteRepository) DeletePendingSelection(matchID uint) error {
	return r.db.Where("match_id = ?", matchID).Delete(&game.PendingSelection{}).Error
}

func (r *sqliteRepository) UpsertUser(email, name string) error {
	var u game.User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			u = game.User{Email: email, PlayerName: name}
		} else {
			return err
		}
	}
	if name != "" {
		u.PlayerName = name
	}
	return r.db.Save(&u).Error
}

func (r *sqliteRepository) GetStatsByEmail(email string) (*game.User, error) {
	var u game.User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return &game.User{Email: email, MatchesPlayed: 0, Wins: 0, Resignations: 0}, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *sqliteRepository) SaveUser(u *game.User) error {
	return r.db.Save(u).Error
}

func (r *sqliteRepository) RecordResignation(email string) error {
	ps, err := r.GetStatsByEmail(email)
	if err != nil {
		return err
	}
	ps.Resignations++
	return r.db.Save(ps).Error
}

func (r *sqliteRepository) UpdateStatsOnMatchEnd(m *game.Match, resignedEmail string) error {
	// Helper to upsert and add deltas
	upsert := func(email, name string, played, wins, resigns int) error {
		var ps game.User
		if err := r.db.Where("email = ?", email).First(&ps).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				ps = game.User{Email: email, PlayerName: name, MatchesPlayed: 0, Wins: 0, Resignations: 0}
			} else {
				return err
			}
		}
		ps.PlayerName = name
		ps.MatchesPlayed += played
		ps.Wins += wins
		ps.Resignations += resigns
		return r.db.Save(&ps).Error
	}
	for i := range m.Players {
		p := &m.Players[i]
		if p.PlayerEmail == "" {
			continue
		}
		wins := 0
		if m.Winner != "" && p.PlayerName == m.Winner {
			wins = 1
		}
		resigns := 0
		if resignedEmail != "" && p.PlayerEmail == resignedEmail {
			resigns = 1
		}
		if err := upsert(p.PlayerEmail, p.PlayerName, 1, wins, resigns); err != nil {
			return err
		}
	}
	return nil
}

// GetTopPlayers returns top N players ordered by Wins desc, then MatchesPlayed desc
func (r *sqliteRepository) GetTopPlayers(limit int) ([]game.User, error) {
	if limit <= 0 {
		limit = 10
	}
	var users []game.User
	if err := r.db.Model(&game.User{}).
		Order("wins DESC").
		Order("matches_played DESC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *sqliteRepository) ClaimTimedOutMatchIDs(now time.Time, limit int, claimTTL time.Duration, workerID string) ([]uint, error) {
	if limit <= 0 {
		limit = 20
	}
	staleClaim := now.Add(-claimTTL)
	var ids []uint
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var matches []game.Match
		if err := tx.Select("id").
			Where("status = ? AND phase = ?", game.StatusInProgress, game.PhaseNight).
			Where("action_deadline > ? AND action_deadline <= ?", time.Time{}, now).
			Where("claimed_at <= ?", staleClaim).
			Limit(limit).
			Find(&matches).Error; err != nil {
			return err
		}
		if len(matches) == 0 {
			return nil
		}
		for _, m := range matches {
			ids = append(ids, m.ID)
		}
		return tx.Model(&game.Match{}).Where("id IN ?", ids).
			Updates(map[string]interface{}{"claimed_by": workerID, "claimed_at": now}).Error
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *sqliteRepository) ClaimExpiredSelectionIDs(now time.Time, limit int, claimTTL time.Duration, workerID string) ([]uint, error) {
	if limit <= 0 {
		limit = 20
	}
	staleClaim := now.Add(-claimTTL)
	var ids []uint
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var sels []game.PendingSelection
		if err := tx.
			Where("deadline > ? AND deadline <= ?", time.Time{}, now).
			Where("claimed_at <= ?", staleClaim).
			Limit(limit).
			Find(&sels).Error; err != nil {
			return err
		}
		if len(sels) == 0 {
			return nil
		}
		selIDs := make([]uint, 0, len(sels))
		for _, s := range sels {
			selIDs = append(selIDs, s.ID)
			ids = append(ids, s.MatchID)
		}
		return tx.Model(&game.PendingSelection{}).Where("id IN ?", selIDs).
			Updates(map[string]interface{}{"claimed_by": workerID, "claimed_at": now}).Error
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
