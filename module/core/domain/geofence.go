package domain

import "time"

const (
	// Every monitored region uses the same radius.
	GeofenceRadiusMeters = 200.0
	// Monitoring registrations are only guaranteed for a week.
	GeofenceExpiration = 7 * 24 * time.Hour
)

type Geofence struct {
	ID          int64   `json:"id"`
	Address     string  `json:"address"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	ExpireTime  int64   `json:"expire_time"`
	IsTriggered bool    `json:"is_triggered"`
}

func (g *Geofence) ExpireAt() time.Time {
	return time.UnixMilli(g.ExpireTime)
}

type NotificationKind int

const (
	NotificationEnter NotificationKind = 1 << 1
	NotificationExit  NotificationKind = 1 << 2
)

func (k NotificationKind) String() string {
	switch k {
	case NotificationEnter:
		return "enter"
	case NotificationExit:
		return "exit"
	}
	return "unknown"
}
