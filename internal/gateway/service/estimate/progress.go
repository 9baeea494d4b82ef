package estimatesvc

import (
	"sync"
	"time"

	"bidforge/internal/estimate"
)

// ProgressEvent is one stage transition of a running synthesis, keyed by the
// caller-supplied progress token.
type ProgressEvent struct {
	Stage estimate.Stage `json:"stage"`
	At    time.Time      `json:"at"`
}

// ProgressHub fans stage events out to websocket subscribers. Publishing
// never blocks: a slow subscriber loses events rather than stalling the
// pipeline.
type ProgressHub struct {
	mu   sync.RWMutex
	subs map[string][]chan ProgressEvent
}

func NewProgressHub() *ProgressHub {
	return &ProgressHub{subs: make(map[string][]chan ProgressEvent)}
}

// Subscribe registers a listener for the given token. The returned cancel
// func must be called when the listener goes away.
func (h *ProgressHub) Subscribe(token string) (<-chan ProgressEvent, func()) {
	ch := make(chan ProgressEvent, 16)
	h.mu.Lock()
	h.subs[token] = append(h.subs[token], ch)
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		chans := h.subs[token]
		for i, c := range chans {
			if c == ch {
				h.subs[token] = append(chans[:i], chans[i+1:]...)
				break
			}
		}
		if len(h.subs[token]) == 0 {
			delete(h.subs, token)
		}
	}
	return ch, cancel
}

// Publish delivers a stage event to every subscriber of token.
func (h *ProgressHub) Publish(token string, stage estimate.Stage) {
	if token == "" {
		return
	}
	ev := ProgressEvent{Stage: stage, At: time.Now()}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[token] {
		select {
		case ch <- ev:
		default:
		}
	}
}
