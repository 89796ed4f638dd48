package registrar

import (
	"context"
	"time"
)

// ProximityRegistrar installs and removes monitored regions with the
// external proximity-monitoring facility. Callers are responsible for
// checking location-access authorization first.
type ProximityRegistrar interface {
	Register(ctx context.Context, id int64, lat, lon, radiusMeters float64, expireAt time.Time) error
	Unregister(ctx context.Context, id int64, lat, lon float64) error
}
