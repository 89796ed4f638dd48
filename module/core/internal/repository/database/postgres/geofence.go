package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/nandanugg/geofence-alerts/module/core/domain"
	"github.com/nandanugg/geofence-alerts/module/core/internal/repository/database"
)

var _ database.GeofenceRepository = (*GeofenceRepo)(nil)

type GeofenceRepo struct {
	db *sql.DB
}

func NewGeofenceRepo(db *sql.DB) *GeofenceRepo {
	return &GeofenceRepo{db: db}
}

func (r *GeofenceRepo) GetByID(ctx context.Context, id int64) (*domain.Geofence, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, address, latitude, longitude, expire_time, is_triggered FROM geofences WHERE id = $1`,
		id,
	)
	return scanGeofence(row)
}

func (r *GeofenceRepo) GetByPoint(ctx context.Context, lat, lon float64) (*domain.Geofence, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, address, latitude, longitude, expire_time, is_triggered FROM geofences WHERE latitude = $1 AND longitude = $2`,
		lat, lon,
	)
	return scanGeofence(row)
}

func (r *GeofenceRepo) List(ctx context.Context) ([]domain.Geofence, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, address, latitude, longitude, expire_time, is_triggered FROM geofences ORDER BY id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []domain.Geofence
	for rows.Next() {
		var g domain.Geofence
		if err := rows.Scan(&g.ID, &g.Address, &g.Latitude, &g.Longitude, &g.ExpireTime, &g.IsTriggered); err != nil {
			return nil, err
		}
		results = append(results, g)
	}
	return results, rows.Err()
}

// Insert assigns a fresh id, or returns id 0 when a geofence already exists
// at the same point.
func (r *GeofenceRepo) Insert(ctx context.Context, g *domain.Geofence) (int64, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO geofences (address, latitude, longitude, expire_time, is_triggered) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (latitude, longitude) DO NOTHING RETURNING id`,
		g.Address, g.Latitude, g.Longitude, g.ExpireTime, g.IsTriggered,
	)

	var id int64
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return id, nil
}

func (r *GeofenceRepo) Update(ctx context.Context, g *domain.Geofence) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE geofences SET address = $1, latitude = $2, longitude = $3, expire_time = $4, is_triggered = $5 WHERE id = $6`,
		g.Address, g.Latitude, g.Longitude, g.ExpireTime, g.IsTriggered, g.ID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkTriggered is a single-statement update so a concurrent delete of the
// same row can never be interleaved into a resurrecting read-then-write.
func (r *GeofenceRepo) MarkTriggered(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE geofences SET is_triggered = TRUE WHERE id = $1`,
		id,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *GeofenceRepo) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM geofences WHERE id = $1`,
		id,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanGeofence(row *sql.Row) (*domain.Geofence, error) {
	var g domain.Geofence
	if err := row.Scan(&g.ID, &g.Address, &g.Latitude, &g.Longitude, &g.ExpireTime, &g.IsTriggered); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}
