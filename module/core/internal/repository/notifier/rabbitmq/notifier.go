package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nandanugg/geofence-alerts/module/core/domain"
	"github.com/nandanugg/geofence-alerts/module/core/internal/repository/notifier"
)

var _ notifier.NotificationPresenter = (*Notifier)(nil)

const (
	exchangeName = "geofence.notifications"
	queueName    = "geofence_notifications"
)

type notificationMessage struct {
	Action         string `json:"action"`
	Identity       string `json:"identity"`
	NotificationID string `json:"notification_id,omitempty"`
	Title          string `json:"title,omitempty"`
	Message        string `json:"message,omitempty"`
	Link           string `json:"link,omitempty"`
}

type Notifier struct {
	conn *amqp.Connection
	link string

	setupOnce sync.Once
	setupErr  error
	ch        *amqp.Channel

	visible *visibleSet
}

// NewNotifier defers channel setup until the first Present or Dismiss.
// link is the UI surface a tapped notification routes back to.
func NewNotifier(conn *amqp.Connection, link string) *Notifier {
	return &Notifier{conn: conn, link: link, visible: newVisibleSet()}
}

func (n *Notifier) Present(ctx context.Context, kind domain.NotificationKind, title, message string) error {
	if err := n.ensureChannel(); err != nil {
		return err
	}

	id := uuid.NewString()
	msg := notificationMessage{
		Action:         "present",
		Identity:       kind.String(),
		NotificationID: id,
		Title:          title,
		Message:        message,
		Link:           n.link,
	}
	if err := n.publish(ctx, id, msg); err != nil {
		return fmt.Errorf("present %s notification: %w", kind, err)
	}
	n.visible.set(kind, id)
	return nil
}

func (n *Notifier) Dismiss(ctx context.Context, kind domain.NotificationKind) error {
	id, ok := n.visible.get(kind)
	if !ok {
		return nil
	}
	if err := n.ensureChannel(); err != nil {
		return err
	}

	msg := notificationMessage{
		Action:         "dismiss",
		Identity:       kind.String(),
		NotificationID: id,
	}
	if err := n.publish(ctx, uuid.NewString(), msg); err != nil {
		return fmt.Errorf("dismiss %s notification: %w", kind, err)
	}
	n.visible.clear(kind)
	return nil
}

func (n *Notifier) ensureChannel() error {
	n.setupOnce.Do(func() {
		ch, err := n.conn.Channel()
		if err != nil {
			n.setupErr = fmt.Errorf("rabbitmq channel: %w", err)
			return
		}

		if err := ch.ExchangeDeclare(exchangeName, "fanout", true, false, false, false, nil); err != nil {
			n.setupErr = fmt.Errorf("declare exchange: %w", err)
			return
		}

		if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
			n.setupErr = fmt.Errorf("declare queue: %w", err)
			return
		}

		if err := ch.QueueBind(queueName, "", exchangeName, false, nil); err != nil {
			n.setupErr = fmt.Errorf("bind queue: %w", err)
			return
		}

		n.ch = ch
	})
	return n.setupErr
}

func (n *Notifier) publish(ctx context.Context, messageID string, msg notificationMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	return n.ch.PublishWithContext(ctx, exchangeName, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   messageID,
		Body:        body,
	})
}
