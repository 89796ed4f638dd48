package service

import (
	"sync"

	"github.com/nandanugg/geofence-alerts/module/core/domain"
)

// watchHub fans geofence snapshots out to subscribers. Sends never block:
// a subscriber that has not consumed the previous snapshot gets it replaced
// by the newer one.
type watchHub struct {
	mu   sync.Mutex
	next int
	subs map[int]chan []domain.Geofence
}

func newWatchHub() *watchHub {
	return &watchHub{subs: make(map[int]chan []domain.Geofence)}
}

func (h *watchHub) subscribe() (int, chan []domain.Geofence) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan []domain.Geofence, 1)
	h.subs[id] = ch
	return id, ch
}

func (h *watchHub) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

func (h *watchHub) broadcast(snap []domain.Geofence) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- snap:
		default:
			// drop the stale snapshot, keep the newest
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
