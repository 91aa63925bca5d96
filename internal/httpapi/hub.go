package httpapi

import (
	"sync"

	"github.com/jhendrikx/podforge/internal/store"
)

// hub fans run events out to websocket subscribers by run id. Slow
// subscribers lose events rather than blocking the pipeline.
type hub struct {
	mu   sync.Mutex
	subs map[string]map[chan store.Run]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[chan store.Run]struct{})}
}

func (h *hub) subscribe(runID string) chan store.Run {
	ch := make(chan store.Run, 32)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[runID] == nil {
		h.subs[runID] = make(map[chan store.Run]struct{})
	}
	h.subs[runID][ch] = struct{}{}
	return ch
}

func (h *hub) unsubscribe(runID string, ch chan store.Run) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.subs[runID]; ok {
		delete(subs, ch)
		if len(subs) == 0 {
			delete(h.subs, runID)
		}
	}
}

func (h *hub) publish(run store.Run) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[run.ID] {
		select {
		case ch <- run:
		default:
		}
	}
}
