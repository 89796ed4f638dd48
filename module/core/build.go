package core

import (
	"database/sql"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"

	handler "github.com/nandanugg/geofence-alerts/module/core/internal/handler/http"
	"github.com/nandanugg/geofence-alerts/module/core/internal/handler/subscriber"
	"github.com/nandanugg/geofence-alerts/module/core/internal/repository/database/postgres"
	"github.com/nandanugg/geofence-alerts/module/core/internal/repository/geocoder/nominatim"
	notifrabbit "github.com/nandanugg/geofence-alerts/module/core/internal/repository/notifier/rabbitmq"
	regmqtt "github.com/nandanugg/geofence-alerts/module/core/internal/repository/registrar/mqtt"
	"github.com/nandanugg/geofence-alerts/module/core/service"
)

type Options struct {
	GeocoderBaseURL       string
	NotificationLink      string
	LocationAccessGranted bool
}

type Module struct {
	GeofenceSvc *service.GeofenceService
	Reconciler  *service.TransitionReconciler
	handler     *handler.GeofenceHandler
	subscriber  *subscriber.TransitionSubscriber
}

func Build(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client, opts Options) *Module {
	repo := postgres.NewGeofenceRepo(db)
	reg := regmqtt.NewProximityRegistrar(mqttClient)
	notif := notifrabbit.NewNotifier(amqpConn, opts.NotificationLink)
	places := nominatim.NewClient(opts.GeocoderBaseURL)

	geofenceSvc := service.NewGeofenceService(repo, reg, places, service.StaticAuthorizer(opts.LocationAccessGranted))
	reconciler := service.NewTransitionReconciler(repo, notif, geofenceSvc)

	h := handler.NewGeofenceHandler(geofenceSvc)
	sub := subscriber.NewTransitionSubscriber(mqttClient, reconciler)

	return &Module{
		GeofenceSvc: geofenceSvc,
		Reconciler:  reconciler,
		handler:     h,
		subscriber:  sub,
	}
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.handler.Register(r)
}

func (m *Module) StartSubscribers() error {
	return m.subscriber.Start()
}
