package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nandanugg/geofence-alerts/module/core/domain"
)

const topicPattern = "/geofence/monitor/+/transition"

type transitionReconciler interface {
	HandleTransition(ctx context.Context, ev *domain.TransitionEvent) error
}

type transitionMessage struct {
	GeofenceID int64 `json:"geofence_id"`
	Entering   bool  `json:"entering"`
}

type TransitionSubscriber struct {
	client     mqtt.Client
	reconciler transitionReconciler
}

func NewTransitionSubscriber(client mqtt.Client, reconciler transitionReconciler) *TransitionSubscriber {
	return &TransitionSubscriber{
		client:     client,
		reconciler: reconciler,
	}
}

func (s *TransitionSubscriber) Start() error {
	token := s.client.Subscribe(topicPattern, 1, s.handleMessage)
	token.Wait()
	return token.Error()
}

func (s *TransitionSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw transitionMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		log.Printf("invalid transition message: %v", err)
		return
	}

	if err := validateTransitionMessage(&raw); err != nil {
		log.Printf("validation error: %v", err)
		return
	}

	ev := &domain.TransitionEvent{
		GeofenceID: raw.GeofenceID,
		Entering:   raw.Entering,
	}

	if err := s.reconciler.HandleTransition(context.Background(), ev); err != nil {
		log.Printf("reconcile transition error: %v", err)
	}
}

func validateTransitionMessage(msg *transitionMessage) error {
	if msg.GeofenceID <= 0 {
		return fmt.Errorf("geofence_id: must be positive")
	}
	return nil
}
