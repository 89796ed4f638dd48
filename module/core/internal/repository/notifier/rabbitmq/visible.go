package rabbitmq

import (
	"sync"

	"github.com/nandanugg/geofence-alerts/module/core/domain"
)

// visibleSet tracks the one currently visible notification per identity.
type visibleSet struct {
	mu  sync.Mutex
	ids map[domain.NotificationKind]string
}

func newVisibleSet() *visibleSet {
	return &visibleSet{ids: make(map[domain.NotificationKind]string)}
}

func (v *visibleSet) set(kind domain.NotificationKind, id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ids[kind] = id
}

func (v *visibleSet) get(kind domain.NotificationKind) (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	id, ok := v.ids[kind]
	return id, ok
}

func (v *visibleSet) clear(kind domain.NotificationKind) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.ids, kind)
}
