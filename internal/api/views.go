package api

import (
	"time"

	"lastcandle.games/internal/game"
)

// The view types are the only match shapes that leave the server. They are
// rebuilt per request for the session viewer, because most of the match row
// is secret: another guest's curse reads as alive, holdings and the dagger
// are known only to their owner, and private log entries never cross over.

type MatchView struct {
	ID               uint           `json:"id"`
	Name             string         `json:"name"`
	JoinCode         string         `json:"join_code"`
	Private          bool           `json:"private"`
	Status           string         `json:"status"`
	Phase            string         `json:"phase"`
	NightNumber      int            `json:"night_number"`
	ActionDeadline   time.Time      `json:"action_deadline"`
	Winner           string         `json:"winner"`
	Message          string         `json:"message"`
	LastNightSummary string         `json:"last_night_summary"`
	Rules            game.Rules     `json:"rules"`
	Players          []PlayerView   `json:"players"`
	Events           []EventView    `json:"events"`
	You              *YourView      `json:"you,omitempty"`
	Selection        *SelectionView `json:"selection,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

type PlayerView struct {
	ID           uint              `json:"id"`
	PlayerUUID   string            `json:"player_uuid"`
	PlayerName   string            `json:"player_name"`
	PlayerEmail  string            `json:"player_email,omitempty"`
	Seat         int               `json:"seat"`
	Status       game.PlayerStatus `json:"status"`
	HasSubmitted bool              `json:"has_submitted"`
	DeathNight   int               `json:"death_night,omitempty"`
}

// YourView carries the viewer's own secrets: true status, holdings and the
// curse clock.
type YourView struct {
	PlayerID          uint              `json:"player_id"`
	Status            game.PlayerStatus `json:"status"`
	HoldsDagger       bool              `json:"holds_dagger"`
	NightsWithoutKill int               `json:"nights_without_kill"`
	HasSubmitted      bool              `json:"has_submitted"`
	Items             []ItemView        `json:"items"`
}

type ItemView struct {
	UID   string        `json:"uid"`
	Kind  game.ItemKind `json:"kind"`
	Label string        `json:"label"`
}

type EventView struct {
	Night   int            `json:"night"`
	Type    game.EventType `json:"type"`
	Private bool           `json:"private"`
	Message string         `json:"message"`
}

// SelectionView is attached only for the killer whose pick is open.
type SelectionView struct {
	VictimName string     `json:"victim_name"`
	Night      int        `json:"night"`
	Deadline   time.Time  `json:"deadline"`
	Choices    []ItemView `json:"choices"`
}

// BuildMatchView renders the match as seen by viewerEmail. An empty email is
// a spectator: every guest reads as alive or dead, and no private section is
// attached.
func BuildMatchView(m *game.Match, viewerEmail string) *MatchView {
	viewer := m.PlayerByEmail(viewerEmail)

	v := &MatchView{
		ID:               m.ID,
		Name:             m.Name,
		JoinCode:         m.JoinCode,
		Private:          m.Private,
		Status:           m.Status,
		Phase:            m.Phase,
		NightNumber:      m.NightNumber,
		ActionDeadline:   m.ActionDeadline,
		Winner:           m.Winner,
		Message:          m.Message,
		LastNightSummary: m.LastNightSummary,
		Rules:            m.Rules,
		CreatedAt:        m.CreatedAt,
	}

	for i := range m.Players {
		p := &m.Players[i]
		pv := PlayerView{
			ID:           p.ID,
			PlayerUUID:   p.PlayerUUID,
			PlayerName:   p.PlayerName,
			PlayerEmail:  p.PlayerEmail,
			Seat:         p.Seat,
			Status:       maskStatus(p, viewer),
			HasSubmitted: p.HasSubmitted,
			DeathNight:   p.DeathNight,
		}
		v.Players = append(v.Players, pv)
	}

	for i := range m.Events {
		e := &m.Events[i]
		if e.Visibility == game.VisibilityPrivate {
			if viewer == nil || !e.VisibleTo(viewer.ID) {
				continue
			}
		}
		v.Events = append(v.Events, EventView{
			Night:   e.Night,
			Type:    e.Type,
			Private: e.Visibility == game.VisibilityPrivate,
			Message: e.Message,
		})
	}

	if viewer != nil {
		v.You = buildYourView(m, viewer)
		if m.Pending != nil && m.Pending.KillerID == viewer.ID {
			v.Selection = buildSelectionView(m)
		}
	}
	return v
}

// maskStatus hides the curse from everyone but its carrier. Death and
// collapse are public the moment they happen.
func maskStatus(p *game.Player, viewer *game.Player) game.PlayerStatus {
	if p.Status == game.StatusCursed {
		if viewer == nil || viewer.ID != p.ID {
			return game.StatusAlive
		}
	}
	return p.Status
}

func buildYourView(m *game.Match, viewer *game.Player) *YourView {
	y := &YourView{
		PlayerID:          viewer.ID,
		Status:            viewer.Status,
		HoldsDagger:       viewer.HoldsDagger,
		NightsWithoutKill: viewer.NoKillStreak,
		HasSubmitted:      viewer.HasSubmitted,
	}
	for _, it := range m.HeldItems(viewer.ID) {
		y.Items = append(y.Items, itemView(it))
	}
	return y
}

func buildSelectionView(m *game.Match) *SelectionView {
	rec := m.DeathByVictim(m.Pending.VictimID)
	if rec == nil {
		return nil
	}
	sv := &SelectionView{
		Night:    m.Pending.Night,
		Deadline: m.Pending.Deadline,
	}
	if victim := m.PlayerByID(m.Pending.VictimID); victim != nil {
		sv.VictimName = victim.PlayerName
	}
	for _, uid := range rec.DropUIDs {
		if it := m.ItemByUID(uid); it != nil && it.Location == game.LocationDropped {
			sv.Choices = append(sv.Choices, itemView(it))
		}
	}
	return sv
}

func itemView(it *game.Item) ItemView {
	return ItemView{UID: it.UID, Kind: it.Kind, Label: it.Kind.Label()}
}
