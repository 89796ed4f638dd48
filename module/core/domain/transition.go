package domain

// TransitionEvent is a proximity transition delivered by the monitoring
// facility. Delivery is unordered and may be duplicated.
type TransitionEvent struct {
	GeofenceID int64 `json:"geofence_id"`
	Entering   bool  `json:"entering"`
}
