// A stand-in for the platform proximity-monitoring facility. It accepts
// register/unregister commands, follows device position updates, and emits
// enter/exit transition events. QoS 1 delivery means the server may see the
// same transition more than once; the reconciler is expected to cope.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

const (
	registerPattern   = "/geofence/monitor/+/register"
	unregisterPattern = "/geofence/monitor/+/unregister"
	locationPattern   = "/geofence/device/+/location"
)

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

type locationMessage struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

type transitionMessage struct {
	GeofenceID int64 `json:"geofence_id"`
	Entering   bool  `json:"entering"`
}

type fence struct {
	center   orb.Point
	radius   float64
	expireAt time.Time
	inside   bool
}

type monitor struct {
	client mqtt.Client

	mu     sync.Mutex
	fences map[int64]*fence
}

func newMonitor(client mqtt.Client) *monitor {
	return &monitor{client: client, fences: make(map[int64]*fence)}
}

func (m *monitor) handleRegister(_ mqtt.Client, msg mqtt.Message) {
	var cmd registerCommand
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		log.Printf("invalid register command: %v", err)
		return
	}

	m.mu.Lock()
	m.fences[cmd.GeofenceID] = &fence{
		center:   orb.Point{cmd.Longitude, cmd.Latitude},
		radius:   cmd.RadiusMeters,
		expireAt: time.UnixMilli(cmd.ExpireTime),
	}
	m.mu.Unlock()

	log.Printf("monitoring geofence %d (r=%.0fm)", cmd.GeofenceID, cmd.RadiusMeters)
}

func (m *monitor) handleUnregister(_ mqtt.Client, msg mqtt.Message) {
	var cmd unregisterCommand
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		log.Printf("invalid unregister command: %v", err)
		return
	}

	m.mu.Lock()
	delete(m.fences, cmd.GeofenceID)
	m.mu.Unlock()

	log.Printf("stopped monitoring geofence %d", cmd.GeofenceID)
}

func (m *monitor) handleLocation(_ mqtt.Client, msg mqtt.Message) {
	var loc locationMessage
	if err := json.Unmarshal(msg.Payload(), &loc); err != nil {
		log.Printf("invalid location message: %v", err)
		return
	}

	position := orb.Point{loc.Longitude, loc.Latitude}
	now := time.Now()

	m.mu.Lock()
	var transitions []transitionMessage
	for id, f := range m.fences {
		if now.After(f.expireAt) {
			delete(m.fences, id)
			log.Printf("geofence %d expired", id)
			continue
		}
		inside := geo.Distance(position, f.center) <= f.radius
		if inside != f.inside {
			f.inside = inside
			transitions = append(transitions, transitionMessage{GeofenceID: id, Entering: inside})
		}
	}
	m.mu.Unlock()

	for _, tr := range transitions {
		payload, _ := json.Marshal(tr)
		topic := fmt.Sprintf("/geofence/monitor/%d/transition", tr.GeofenceID)
		token := m.client.Publish(topic, 1, false, payload)
		token.Wait()
		log.Printf("published to %s: %s", topic, payload)
	}
}

func main() {
	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("geofence-monitor")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("mqtt connect: %v", token.Error())
	}
	defer client.Disconnect(250)

	m := newMonitor(client)

	for pattern, handler := range map[string]mqtt.MessageHandler{
		registerPattern:   m.handleRegister,
		unregisterPattern: m.handleUnregister,
		locationPattern:   m.handleLocation,
	} {
		if token := client.Subscribe(pattern, 1, handler); token.Wait() && token.Error() != nil {
			log.Fatalf("subscribe %s: %v", pattern, token.Error())
		}
	}

	log.Printf("connected to %s, monitoring proximity...", broker)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("shutting down")
}
