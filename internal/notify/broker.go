package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Event is the payload streamed to group subscribers
type Event struct {
	GroupID int64     `json:"group_id"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}

// Broker is an in-process pub/sub for group notifications
type Broker struct {
	mu   sync.RWMutex
	subs map[int64]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[int64]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the group.
func (b *Broker) Subscribe(groupID int64) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[groupID] == nil {
		b.subs[groupID] = make(map[chan []byte]struct{})
	}
	b.subs[groupID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the group's subscribers.
func (b *Broker) Unsubscribe(groupID int64, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[groupID], ch)
	if len(b.subs[groupID]) == 0 {
		delete(b.subs, groupID)
	}
	b.mu.Unlock()
}

// Subscribers counts the listeners of a group. Callers use it to wait
// until a stream is attached before publishing.
func (b *Broker) Subscribers(groupID int64) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[groupID])
}

// Send publishes text to every subscriber of the group. It never blocks:
// slow subscribers miss the event.
func (b *Broker) Send(_ context.Context, groupID int64, text string) error {
	data, err := json.Marshal(Event{GroupID: groupID, Text: text, At: time.Now().UTC()})
	if err != nil {
		return err
	}
	b.mu.RLock()
	for ch := range b.subs[groupID] {
		select {
		case ch <- data:
		default:
		}
	}
	b.mu.RUnlock()
	return nil
}
