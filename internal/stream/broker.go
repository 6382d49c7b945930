// Package stream fans match updates out to websocket subscribers. The
// server pushes lightweight notifications and clients refetch their view of
// the match; no game state travels over the socket, so the per-viewer
// redaction stays in one place.
package stream

import "sync"

// Update tells subscribers that a match changed and roughly why.
type Update struct {
	MatchID uint   `json:"match_id"`
	Kind    string `json:"kind"`
	Night   int    `json:"night"`
}

// Update kinds.
const (
	KindLobby     = "lobby"
	KindNight     = "night"
	KindResolved  = "resolved"
	KindSelection = "selection"
	KindEnded     = "ended"
)

type subscriber struct {
	ch chan Update
}

// Broker routes updates to the subscribers of each match.
type Broker struct {
	mu   sync.Mutex
	subs map[uint]map[*subscriber]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[uint]map[*subscriber]struct{})}
}

// Subscribe registers for one match's updates. The returned cancel func
// must be called when the consumer goes away; after cancel the channel is
// closed.
func (b *Broker) Subscribe(matchID uint) (<-chan Update, func()) {
	sub := &subscriber{ch: make(chan Update, 16)}
	b.mu.Lock()
	set, ok := b.subs[matchID]
	if !ok {
		set = make(map[*subscriber]struct{})
		b.subs[matchID] = set
	}
	set[sub] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if set, ok := b.subs[matchID]; ok {
			if _, live := set[sub]; live {
				delete(set, sub)
				close(sub.ch)
			}
			if len(set) == 0 {
				delete(b.subs, matchID)
			}
		}
		b.mu.Unlock()
	}
	return sub.ch, cancel
}

// Publish delivers the update to every subscriber of its match. Slow
// consumers drop updates rather than block the caller; a dropped update is
// harmless because clients refetch full state on every notification.
func (b *Broker) Publish(u Update) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs[u.MatchID] {
		select {
		case sub.ch <- u:
		default:
		}
	}
}
