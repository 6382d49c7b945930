package game

// ItemKind identifies one of the five items a guest can carry. The set is
// closed: every phase of the night resolver switches over these values, so a
// new kind means touching every consumer.
type ItemKind string

const (
	// ItemDagger is the cursed dagger: unique per match, never consumed,
	// and binding. While holding it a player may submit no other item.
	ItemDagger     ItemKind = "dagger"
	ItemKnife      ItemKind = "knife"
	ItemTalisman   ItemKind = "talisman"
	ItemSpyglass   ItemKind = "spyglass"
	ItemAutopsyKit ItemKind = "autopsy_kit"
)

// Lethal reports whether the item kills its target when it lands.
func (k ItemKind) Lethal() bool { return k == ItemDagger || k == ItemKnife }

// Consumable reports whether the item can be spent. The cursed dagger is the
// one exception: it survives every use and every failure.
func (k ItemKind) Consumable() bool { return k != ItemDagger }

// Label returns the human-readable name used in event messages.
func (k ItemKind) Label() string {
	switch k {
	case ItemDagger:
		return "cursed dagger"
	case ItemKnife:
		return "knife"
	case ItemTalisman:
		return "talisman"
	case ItemSpyglass:
		return "spyglass"
	case ItemAutopsyKit:
		return "autopsy kit"
	}
	return string(k)
}

// PlayerStatus tracks a guest through the match. Transitions only move
// forward: alive -> {cursed, dead} and cursed -> {dead, collapsed}.
type PlayerStatus string

const (
	StatusAlive     PlayerStatus = "alive"
	StatusCursed    PlayerStatus = "cursed"
	StatusDead      PlayerStatus = "dead"
	StatusCollapsed PlayerStatus = "collapsed"
)

// DeathCause records what ended a guest.
type DeathCause string

const (
	CauseDagger   DeathCause = "dagger"
	CauseKnife    DeathCause = "knife"
	CauseCollapse DeathCause = "collapse"
)

// FailureReason explains why a submitted action did not execute. An empty
// value means the action was not rejected.
type FailureReason string

const (
	FailureNone              FailureReason = ""
	FailureActorDead         FailureReason = "actor_dead"
	FailureTargetProtected   FailureReason = "target_protected"
	FailureQuotaExceeded     FailureReason = "quota_exceeded"
	FailureTargetAlreadyDead FailureReason = "target_already_dead"
	FailureTalismanBlocked   FailureReason = "talisman_blocked"
)

// DropPolicy selects how a dead guest's belongings are handed out.
type DropPolicy string

const (
	// PolicyKillerExcluded hands each item to a random eligible survivor,
	// never the killer.
	PolicyKillerExcluded DropPolicy = "killer_excluded"
	// PolicyKillerPick offers the killer one item first; the rest follow
	// PolicyKillerExcluded.
	PolicyKillerPick DropPolicy = "killer_pick"
	// PolicyAnySurvivor hands each item to a random eligible survivor with
	// no exclusions. Used for collapses, where there is no killer.
	PolicyAnySurvivor DropPolicy = "any_survivor"
)

// ItemLocation tracks where an item physically is.
type ItemLocation string

const (
	LocationHeld      ItemLocation = "held"
	LocationSubmitted ItemLocation = "submitted"
	LocationDropped   ItemLocation = "dropped"
	LocationDiscarded ItemLocation = "discarded"
	LocationExcess    ItemLocation = "excess"
)

// EventType tags an entry in the match log.
type EventType string

const (
	EventNightBegin     EventType = "night_begin"
	EventDeath          EventType = "death"
	EventWardReport     EventType = "ward_report"
	EventScoutReport    EventType = "scout_report"
	EventAutopsyReport  EventType = "autopsy_report"
	EventKillReport     EventType = "kill_report"
	EventCurseReport    EventType = "curse_report"
	EventItemReceived   EventType = "item_received"
	EventItemExcess     EventType = "item_excess"
	EventSelectionOffer EventType = "selection_offer"
	EventMatchEnd       EventType = "match_end"
)

// Visibility controls who may read an event. Private rows carry the viewer
// in PlayerID; public rows are shown to everyone.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Match status values.
const (
	StatusWaiting    = "waiting_for_players"
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"
)

// Match phase values. The phase is empty while waiting and after the match
// finishes.
const (
	PhaseNight     = "night"
	PhaseSelection = "selection"
)
