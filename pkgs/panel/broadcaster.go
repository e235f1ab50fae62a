// Package panel fans lamp-state changes out to the Arduino transport and to
// the tablet panel: an HTTP server pushing updates over Server-Sent Events.
package panel

import (
	"sync"

	"github.com/giako888/trainbridge/pkgs/rules"
)

// Event is one lamp change as seen by SSE subscribers.
type Event struct {
	Lamp  int `json:"lamp"`
	State int `json:"state"`
}

// subscriberBuffer is the per-subscriber event queue. A client that cannot
// keep up loses intermediate events; its writer drops it on a stuck write.
const subscriberBuffer = 64

// NewBroadcaster constructor.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan Event)}
}

// Broadcaster owns the desired lamp map and the subscriber list. Publish
// diff-updates the map and notifies every subscriber with the changes, in
// production order per subscriber.
type Broadcaster struct {
	// OnApply, when set, receives the full lamp map after each Publish.
	// The Arduino transport hangs off this hook (it keeps its own
	// change-detection cache).
	OnApply func(rules.LampMap)

	mu     sync.Mutex
	lamps  rules.LampMap
	subs   map[int]chan Event
	nextID int
}

// Publish applies the new lamp map and notifies subscribers of every lamp
// whose state changed.
func (b *Broadcaster) Publish(m rules.LampMap) {
	b.mu.Lock()
	var events []Event
	for i, lit := range m {
		if b.lamps[i] == lit {
			continue
		}
		st := 0
		if lit {
			st = 1
		}
		events = append(events, Event{Lamp: i + 1, State: st})
	}
	b.lamps = m
	for _, ch := range b.subs {
		for _, ev := range events {
			select {
			case ch <- ev:
			default:
				// subscriber queue full: the event is skipped for it
			}
		}
	}
	onApply := b.OnApply
	b.mu.Unlock()

	if onApply != nil {
		onApply(m)
	}
}

// Snapshot returns the current lamp map.
func (b *Broadcaster) Snapshot() rules.LampMap {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lamps
}

// Reset blanks the lamp map without emitting events. Used on profile swap
// before the next evaluation repopulates it.
func (b *Broadcaster) Reset() {
	b.mu.Lock()
	b.lamps = rules.LampMap{}
	b.mu.Unlock()
}

// Subscribe registers a new event stream and returns its id and channel.
func (b *Broadcaster) Subscribe() (int, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a stream.
func (b *Broadcaster) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

// SubscriberCount returns the number of live streams.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
