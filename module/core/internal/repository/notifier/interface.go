package notifier

import (
	"context"

	"github.com/nandanugg/geofence-alerts/module/core/domain"
)

// NotificationPresenter shows at most one visible notification per identity
// kind. Presenting the same kind again replaces the visible one.
type NotificationPresenter interface {
	Present(ctx context.Context, kind domain.NotificationKind, title, message string) error
	Dismiss(ctx context.Context, kind domain.NotificationKind) error
}
