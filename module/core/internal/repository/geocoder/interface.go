package geocoder

import (
	"context"

	"github.com/nandanugg/geofence-alerts/module/core/domain"
)

type PlaceLookup interface {
	Lookup(ctx context.Context, lat, lon float64) (*domain.Place, error)
}
