package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/nandanugg/geofence-alerts/module/core/domain"
	"github.com/nandanugg/geofence-alerts/module/core/internal/repository/registrar"
)

var _ registrar.ProximityRegistrar = (*ProximityRegistrar)(nil)

type registerCommand struct {
	GeofenceID   int64   `json:"geofence_id"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radius_meters"`
	ExpireTime   int64   `json:"expire_time"`
}

type unregisterCommand struct {
	GeofenceID int64 `json:"geofence_id"`
}

type ProximityRegistrar struct {
	client paho.Client
}

func NewProximityRegistrar(client paho.Client) *ProximityRegistrar {
	return &ProximityRegistrar{client: client}
}

func (r *ProximityRegistrar) Register(ctx context.Context, id int64, lat, lon, radiusMeters float64, expireAt time.Time) error {
	payload, err := json.Marshal(registerCommand{
		GeofenceID:   id,
		Latitude:     lat,
		Longitude:    lon,
		RadiusMeters: radiusMeters,
		ExpireTime:   expireAt.UnixMilli(),
	})
	if err != nil {
		return &domain.RegistrationError{Op: "register", GeofenceID: id, Err: err}
	}
	if err := r.publish(ctx, registerTopic(id), payload); err != nil {
		return &domain.RegistrationError{Op: "register", GeofenceID: id, Err: err}
	}
	return nil
}

// Unregister keys the command by id alone. The monitor silently ignores
// removals keyed any other way, so the center never participates.
func (r *ProximityRegistrar) Unregister(ctx context.Context, id int64, _, _ float64) error {
	payload, err := json.Marshal(unregisterCommand{GeofenceID: id})
	if err != nil {
		return &domain.RegistrationError{Op: "unregister", GeofenceID: id, Err: err}
	}
	if err := r.publish(ctx, unregisterTopic(id), payload); err != nil {
		return &domain.RegistrationError{Op: "unregister", GeofenceID: id, Err: err}
	}
	return nil
}

func (r *ProximityRegistrar) publish(ctx context.Context, topic string, payload []byte) error {
	token := r.client.Publish(topic, 1, false, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func registerTopic(id int64) string {
	return fmt.Sprintf("/geofence/monitor/%d/register", id)
}

func unregisterTopic(id int64) string {
	return fmt.Sprintf("/geofence/monitor/%d/unregister", id)
}
