package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/nandanugg/geofence-alerts/module/core/domain"
	"github.com/nandanugg/geofence-alerts/module/core/internal/repository/database"
	"github.com/nandanugg/geofence-alerts/module/core/internal/repository/notifier"
)

const (
	titleEnter         = "Geofence enter"
	titleExit          = "Geofence exit"
	messageEnterFormat = "You are near %s."
	messageExitFormat  = "You have left %s."
)

// TransitionReconciler turns raw proximity transitions into state updates
// and notifications. The monitor delivers events unordered, possibly
// duplicated, and possibly after the geofence is gone, so every step here
// has to be idempotent.
type TransitionReconciler struct {
	repo      database.GeofenceRepository
	presenter notifier.NotificationPresenter
	// optional; refreshes live watchers after a persisted change
	lifecycle *GeofenceService
}

func NewTransitionReconciler(repo database.GeofenceRepository, presenter notifier.NotificationPresenter, lifecycle *GeofenceService) *TransitionReconciler {
	return &TransitionReconciler{
		repo:      repo,
		presenter: presenter,
		lifecycle: lifecycle,
	}
}

func (r *TransitionReconciler) HandleTransition(ctx context.Context, ev *domain.TransitionEvent) error {
	g, err := r.repo.GetByID(ctx, ev.GeofenceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// deleted or unknown geofence, the monitor may keep
			// delivering for it
			log.Printf("dropping transition for unknown geofence %d", ev.GeofenceID)
			return nil
		}
		return fmt.Errorf("load geofence %d: %w", ev.GeofenceID, err)
	}

	var kind domain.NotificationKind
	var title, message string
	if ev.Entering {
		kind = domain.NotificationEnter
		title = titleEnter
		message = fmt.Sprintf(messageEnterFormat, g.Address)
	} else {
		// The exit event closes the enter-then-exit cycle, so only it
		// persists state. Re-marking an already triggered row is a
		// harmless no-op.
		if _, err := r.repo.MarkTriggered(ctx, g.ID); err != nil {
			// not fatal, the user still gets the notification
			log.Printf("mark geofence %d triggered: %v", g.ID, err)
		} else if r.lifecycle != nil {
			r.lifecycle.broadcast(ctx)
		}
		kind = domain.NotificationExit
		title = titleExit
		message = fmt.Sprintf(messageExitFormat, g.Address)
	}

	if err := r.presenter.Present(ctx, kind, title, message); err != nil {
		return fmt.Errorf("present %s notification for geofence %d: %w", kind, g.ID, err)
	}
	return nil
}
