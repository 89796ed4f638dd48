package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/nandanugg/geofence-alerts/module/core/domain"
	"github.com/nandanugg/geofence-alerts/module/core/internal/repository/database"
	"github.com/nandanugg/geofence-alerts/module/core/internal/repository/geocoder"
	"github.com/nandanugg/geofence-alerts/module/core/internal/repository/registrar"
)

// Authorizer reports whether location access has been granted. Register and
// unregister calls require it; the registrar itself does not re-check.
type Authorizer interface {
	LocationAccessGranted() bool
}

type StaticAuthorizer bool

func (a StaticAuthorizer) LocationAccessGranted() bool { return bool(a) }

type GeofenceService struct {
	repo      database.GeofenceRepository
	registrar registrar.ProximityRegistrar
	places    geocoder.PlaceLookup
	auth      Authorizer
	now       func() time.Time
	hub       *watchHub
}

func NewGeofenceService(repo database.GeofenceRepository, reg registrar.ProximityRegistrar, places geocoder.PlaceLookup, auth Authorizer) *GeofenceService {
	return &GeofenceService{
		repo:      repo,
		registrar: reg,
		places:    places,
		auth:      auth,
		now:       time.Now,
		hub:       newWatchHub(),
	}
}

// Add persists a geofence at the point and registers it with the monitor.
// A lookup failure falls back to the coordinate label; the add proceeds.
func (s *GeofenceService) Add(ctx context.Context, lat, lon float64) (*domain.Geofence, error) {
	if !s.auth.LocationAccessGranted() {
		return nil, domain.ErrAuthorizationMissing
	}

	address := domain.FallbackAddress(lat, lon)
	if place, err := s.places.Lookup(ctx, lat, lon); err != nil {
		log.Printf("place lookup failed for %f,%f: %v", lat, lon, err)
	} else {
		address = place.Address
	}

	g := &domain.Geofence{
		Address:    address,
		Latitude:   lat,
		Longitude:  lon,
		ExpireTime: s.now().Add(domain.GeofenceExpiration).UnixMilli(),
	}

	id, err := s.repo.Insert(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("insert geofence: %w", err)
	}
	if id == 0 {
		return nil, domain.ErrDuplicatePoint
	}
	g.ID = id

	if err := s.registrar.Register(ctx, id, lat, lon, domain.GeofenceRadiusMeters, g.ExpireAt()); err != nil {
		log.Printf("register geofence %d: %v", id, err)
		return nil, err
	}

	s.broadcast(ctx)
	return g, nil
}

// Remove unregisters the monitored region first, keyed by id, then deletes
// the row. A failed unregister is logged and the delete proceeds; the
// reconciler drops any stray events for the deleted id.
func (s *GeofenceService) Remove(ctx context.Context, id int64) error {
	if !s.auth.LocationAccessGranted() {
		return domain.ErrAuthorizationMissing
	}

	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.registrar.Unregister(ctx, g.ID, g.Latitude, g.Longitude); err != nil {
		log.Printf("unregister geofence %d: %v", g.ID, err)
	}

	affected, err := s.repo.Delete(ctx, g.ID)
	if err != nil {
		return fmt.Errorf("delete geofence: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	s.broadcast(ctx)
	return nil
}

// RemoveByPoint maps a selected point back to its geofence and removes it.
func (s *GeofenceService) RemoveByPoint(ctx context.Context, lat, lon float64) error {
	g, err := s.repo.GetByPoint(ctx, lat, lon)
	if err != nil {
		return err
	}
	return s.Remove(ctx, g.ID)
}

func (s *GeofenceService) GetByID(ctx context.Context, id int64) (*domain.Geofence, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *GeofenceService) GetByPoint(ctx context.Context, lat, lon float64) (*domain.Geofence, error) {
	return s.repo.GetByPoint(ctx, lat, lon)
}

func (s *GeofenceService) List(ctx context.Context) ([]domain.Geofence, error) {
	return s.repo.List(ctx)
}

// Watch delivers the current snapshot immediately and a fresh one after
// every mutation until ctx is cancelled, at which point the channel closes.
func (s *GeofenceService) Watch(ctx context.Context) (<-chan []domain.Geofence, error) {
	snap, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list geofences: %w", err)
	}

	id, ch := s.hub.subscribe()
	ch <- snap

	go func() {
		<-ctx.Done()
		s.hub.unsubscribe(id)
	}()

	return ch, nil
}

func (s *GeofenceService) broadcast(ctx context.Context) {
	snap, err := s.repo.List(ctx)
	if err != nil {
		log.Printf("refresh geofence snapshot: %v", err)
		return
	}
	s.hub.broadcast(snap)
}
