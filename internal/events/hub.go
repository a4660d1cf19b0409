package events

import (
	"sync"

	"github.com/google/uuid"

	"github.com/sk88studiosinc-maker/Soulsound/internal/model"
)

// Hub fans session events out to live subscribers, keyed by artist ID.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[string]chan model.ProjectEvent
}

func NewHub() *Hub {
	return &Hub{
		subs: map[string]map[string]chan model.ProjectEvent{},
	}
}

func (h *Hub) Subscribe(topic string, buf int) (string, <-chan model.ProjectEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subID := uuid.NewString()
	if _, ok := h.subs[topic]; !ok {
		h.subs[topic] = map[string]chan model.ProjectEvent{}
	}
	ch := make(chan model.ProjectEvent, buf)
	h.subs[topic][subID] = ch

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			topicSubs, ok := h.subs[topic]
			if !ok {
				return
			}
			c, ok := topicSubs[subID]
			if !ok {
				return
			}
			delete(topicSubs, subID)
			close(c)
			if len(topicSubs) == 0 {
				delete(h.subs, topic)
			}
		})
	}
	return subID, ch, unsubscribe
}

func (h *Hub) Publish(topic string, evt model.ProjectEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[topic] {
		select {
		case ch <- evt:
		default:
			// Drop for slow subscribers to keep the producer non-blocking.
		}
	}
}

func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}
