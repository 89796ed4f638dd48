package database

import (
	"context"

	"github.com/nandanugg/geofence-alerts/module/core/domain"
)

type GeofenceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Geofence, error)
	GetByPoint(ctx context.Context, lat, lon float64) (*domain.Geofence, error)
	List(ctx context.Context) ([]domain.Geofence, error)
	Insert(ctx context.Context, g *domain.Geofence) (int64, error)
	Update(ctx context.Context, g *domain.Geofence) (int64, error)
	MarkTriggered(ctx context.Context, id int64) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}
