package game

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Match struct {
	gorm.Model
	Name     string `json:"name" gorm:"size:32"`
	Private  bool   `json:"private"`
	JoinCode string `json:"join_code" gorm:"unique"`
	// HostEmail identifies the creator; only the host may start the match.
	HostEmail string `json:"-"`
	Status    string `json:"status"`
	Phase     string `json:"phase"`
	// NightNumber is 1-based once the match starts.
	NightNumber    int       `json:"night_number"`
	ActionDeadline time.Time `json:"action_deadline"`
	// IdleNights counts consecutive nights resolved entirely from
	// auto-passes; the scanner abandons the match past Rules.MaxIdleNights.
	IdleNights       int    `json:"-"`
	Winner           string `json:"winner"`
	Message          string `json:"message"`
	LastNightSummary string `json:"last_night_summary"`
	StatsCounted     bool   `json:"-"`
	// ClaimedBy/ClaimedAt implement the scanner's claim window so two
	// server instances do not resolve the same timed-out match twice.
	ClaimedBy string    `json:"-"`
	ClaimedAt time.Time `json:"-"`

	Rules Rules `json:"rules" gorm:"embedded;embeddedPrefix:rule_"`

	Players []Player `json:"players"`
	// Items holds every item of the match regardless of location, so the
	// resolver can account for all of them in one place.
	Items   []Item            `json:"-"`
	Actions []NightAction     `json:"-"`
	Deaths  []DeathRecord     `json:"-"`
	Events  []Event           `json:"-"`
	Pending *PendingSelection `json:"-"`
}

// Player is the per-match secret record for one guest. Holdings are derived
// from the match item pool rather than stored here.
type Player struct {
	gorm.Model
	MatchID     uint         `json:"-"`
	PlayerUUID  string       `json:"player_uuid"`
	PlayerName  string       `json:"player_name"`
	PlayerEmail string       `json:"player_email"`
	Seat        int          `json:"seat"`
	Status      PlayerStatus `json:"status"`
	HoldsDagger bool         `json:"-"`
	// Shielded is only meaningful within a night; the resolver clears it
	// when the night closes.
	Shielded bool `json:"-"`
	// NoKillStreak counts consecutive nights a cursed guest went without a
	// successful kill. Reaching the collapse threshold is fatal.
	NoKillStreak int        `json:"-"`
	HasSubmitted bool       `json:"has_submitted"`
	DeathNight   int        `json:"death_night,omitempty"`
	DeathCause   DeathCause `json:"-"`
	KillerID     *uint      `json:"-"`
}

func (Player) TableName() string { return "match_players" }

func (p *Player) BeforeCreate(tx *gorm.DB) error {
	if p.PlayerUUID == "" {
		p.PlayerUUID = uuid.NewString()
	}
	return nil
}

// Alive reports whether the guest still acts at night. Cursed guests are
// alive; the curse only marks the kill-or-collapse obligation.
func (p *Player) Alive() bool { return p.Status == StatusAlive || p.Status == StatusCursed }

// UnderCurse reports whether the collapse clock runs for this guest. The
// dagger binds its holder to the same obligation the curse does.
func (p *Player) UnderCurse() bool { return p.Status == StatusCursed || p.HoldsDagger }

// MarkCursed moves an alive guest onto the collapse clock. Dead guests and
// guests already cursed are left as they are.
func (p *Player) MarkCursed() {
	if p.Status == StatusAlive {
		p.Status = StatusCursed
	}
}

// MarkDead records a death exactly once; a second call is a no-op so the
// status never moves backwards. Collapses use their own terminal status.
func (p *Player) MarkDead(cause DeathCause, killerID *uint, night int) {
	if !p.Alive() {
		return
	}
	if cause == CauseCollapse {
		p.Status = StatusCollapsed
	} else {
		p.Status = StatusDead
	}
	p.DeathCause = cause
	p.DeathNight = night
	p.KillerID = killerID
	p.Shielded = false
}

// Item is one physical object in a match. Items are created when the match
// starts and only ever move; the resolver never mints or destroys them.
type Item struct {
	gorm.Model
	UID      string       `json:"uid" gorm:"uniqueIndex"`
	MatchID  uint         `json:"-"`
	PlayerID *uint        `json:"-"`
	Kind     ItemKind     `json:"kind"`
	Location ItemLocation `json:"-"`
}

func (Item) TableName() string { return "match_items" }

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.UID == "" {
		i.UID = uuid.NewString()
	}
	return nil
}

// NightAction is one guest's submission for one night. The resolver writes
// the outcome fields (Executed, FailureReason, ItemSeized) in place; after
// the night closes the row is read-only and feeds the action log.
type NightAction struct {
	gorm.Model
	MatchID uint `json:"-"`
	Night   int  `json:"night"`
	ActorID uint `json:"actor_id"`
	// ItemID is nil for a pass. ItemKind is denormalized so ordering does
	// not need an item lookup.
	ItemID      *uint     `json:"-"`
	ItemKind    ItemKind  `json:"item_kind,omitempty"`
	TargetID    *uint     `json:"target_id,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
	// Auto marks actions filed by the timeout scanner on behalf of a
	// silent player.
	Auto          bool          `json:"-"`
	Executed      bool          `json:"executed"`
	FailureReason FailureReason `json:"failure_reason,omitempty"`
	// ItemSeized is set when a mid-night dagger transfer pulled the item
	// out of this unresolved action; consumption then leaves it alone.
	ItemSeized bool `json:"-"`
}

func (NightAction) TableName() string { return "night_actions" }

// Pass reports whether the action is an empty submission.
func (a *NightAction) Pass() bool { return a.ItemID == nil }

// DeathRecord is the append-only account of one death. It is created at most
// once per guest; the countdown path produces one too.
type DeathRecord struct {
	gorm.Model
	MatchID  uint       `json:"-"`
	Night    int        `json:"night"`
	PlayerID uint       `json:"player_id"`
	Cause    DeathCause `json:"cause"`
	KillerID *uint      `json:"-"`
	// Policy and Distributed drive the distribution queue; DropUIDs
	// freezes which items left the body so conservation is checkable.
	Policy      DropPolicy `json:"-"`
	Distributed bool       `json:"-"`
	DropUIDs    []string   `json:"-" gorm:"serializer:json"`
	ReceiverIDs []uint     `json:"-" gorm:"serializer:json"`
}

func (DeathRecord) TableName() string { return "death_records" }

// Event is one row of the match log. Private rows name their viewer; the
// API and the stream filter on Visibility before anything leaves the server.
type Event struct {
	gorm.Model
	MatchID    uint       `json:"-"`
	Night      int        `json:"night"`
	Type       EventType  `json:"type"`
	Visibility Visibility `json:"visibility"`
	PlayerID   *uint      `json:"-"`
	Message    string     `json:"message"`
}

func (Event) TableName() string { return "match_events" }

// VisibleTo reports whether the given player may read this event.
func (e *Event) VisibleTo(playerID uint) bool {
	if e.Visibility == VisibilityPublic {
		return true
	}
	return e.PlayerID != nil && *e.PlayerID == playerID
}

// PendingSelection suspends a killer-pick distribution between resolution
// and the killer's choice (or its timeout). At most one exists per match.
type PendingSelection struct {
	gorm.Model
	MatchID  uint      `json:"-"`
	VictimID uint      `json:"victim_id"`
	KillerID uint      `json:"killer_id"`
	Night    int       `json:"night"`
	Deadline time.Time `json:"deadline"`
	// Claim window for the selection-timeout scanner.
	ClaimedBy string    `json:"-"`
	ClaimedAt time.Time `json:"-"`
}

func (PendingSelection) TableName() string { return "pending_selections" }

// User stores unique player identity and aggregate stats across matches.
type User struct {
	gorm.Model
	PlayerUUID    string `gorm:"index"`
	PlayerName    string
	Email         string `gorm:"uniqueIndex"`
	MatchesPlayed int
	Wins          int
	Resignations  int
}

func (User) TableName() string { return "player_profiles" }

// --- lookup helpers -------------------------------------------------------

// PlayerByID returns a pointer into the match's player slice, or nil.
func (m *Match) PlayerByID(id uint) *Player {
	for i := range m.Players {
		if m.Players[i].ID == id {
			return &m.Players[i]
		}
	}
	return nil
}

func (m *Match) PlayerByEmail(email string) *Player {
	for i := range m.Players {
		if m.Players[i].PlayerEmail == email {
			return &m.Players[i]
		}
	}
	return nil
}

func (m *Match) ItemByID(id uint) *Item {
	for i := range m.Items {
		if m.Items[i].ID == id {
			return &m.Items[i]
		}
	}
	return nil
}

func (m *Match) ItemByUID(uid string) *Item {
	for i := range m.Items {
		if m.Items[i].UID == uid {
			return &m.Items[i]
		}
	}
	return nil
}

// HeldItems returns the player's current holdings, ordered by item ID so
// walks over them are reproducible.
func (m *Match) HeldItems(playerID uint) []*Item {
	var held []*Item
	for i := range m.Items {
		it := &m.Items[i]
		if it.Location == LocationHeld && it.PlayerID != nil && *it.PlayerID == playerID {
			held = append(held, it)
		}
	}
	sort.Slice(held, func(i, j int) bool { return held[i].ID < held[j].ID })
	return held
}

func (m *Match) HeldCount(playerID uint) int { return len(m.HeldItems(playerID)) }

// AlivePlayers returns the living guests ordered by ID.
func (m *Match) AlivePlayers() []*Player {
	var out []*Player
	for i := range m.Players {
		if m.Players[i].Alive() {
			out = append(out, &m.Players[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ActionsForNight returns pointers to the night's submissions in insertion
// order.
func (m *Match) ActionsForNight(night int) []*NightAction {
	var out []*NightAction
	for i := range m.Actions {
		if m.Actions[i].Night == night {
			out = append(out, &m.Actions[i])
		}
	}
	return out
}

// DeathByVictim returns the death record for a player, or nil. Records are
// unique per player so the first hit is the only one.
func (m *Match) DeathByVictim(playerID uint) *DeathRecord {
	for i := range m.Deaths {
		if m.Deaths[i].PlayerID == playerID {
			return &m.Deaths[i]
		}
	}
	return nil
}

// AppendEvent stages a log row on the match; persistence happens with the
// next match save.
func (m *Match) AppendEvent(night int, t EventType, vis Visibility, playerID *uint, msg string) {
	m.Events = append(m.Events, Event{
		MatchID:    m.ID,
		Night:      night,
		Type:       t,
		Visibility: vis,
		PlayerID:   playerID,
		Message:    msg,
	})
}
