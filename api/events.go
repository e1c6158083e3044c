package api

import (
	"sync"

	"github.com/0ji3/a2a-supply-chain-project/core/pipeline"
)

// hub fans pipeline events out to SSE subscribers. Slow subscribers
// drop events rather than blocking the pipeline.
type hub struct {
	mu   sync.Mutex
	subs map[chan pipeline.Event]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[chan pipeline.Event]struct{})}
}

// subscribe registers a new subscriber channel
func (h *hub) subscribe() chan pipeline.Event {
	ch := make(chan pipeline.Event, 64)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// unsubscribe removes and closes a subscriber channel
func (h *hub) unsubscribe(ch chan pipeline.Event) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// broadcast delivers an event to every subscriber without blocking
func (h *hub) broadcast(ev pipeline.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			// subscriber is behind; drop
		}
	}
}
