package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/geofence-alerts/module/core/domain"
)

type geofenceService interface {
	Add(ctx context.Context, lat, lon float64) (*domain.Geofence, error)
	Remove(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Geofence, error)
	GetByPoint(ctx context.Context, lat, lon float64) (*domain.Geofence, error)
	List(ctx context.Context) ([]domain.Geofence, error)
	Watch(ctx context.Context) (<-chan []domain.Geofence, error)
}

type createGeofenceRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func validateCreateRequest(req *createGeofenceRequest) error {
	if req.Latitude < -90 || req.Latitude > 90 {
		return errors.New("latitude: must be between -90 and 90")
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		return errors.New("longitude: must be between -180 and 180")
	}
	return nil
}

type geofenceResponse struct {
	ID          int64   `json:"id"`
	Address     string  `json:"address"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	ExpireTime  int64   `json:"expire_time"`
	IsTriggered bool    `json:"is_triggered"`
}

type GeofenceHandler struct {
	geofenceSvc geofenceService
}

func NewGeofenceHandler(geofenceSvc geofenceService) *GeofenceHandler {
	return &GeofenceHandler{geofenceSvc: geofenceSvc}
}

func (h *GeofenceHandler) Register(r *gin.RouterGroup) {
	r.POST("/geofences", h.Create)
	r.GET("/geofences", h.List)
	r.GET("/geofences/lookup", h.Lookup)
	r.GET("/geofences/watch", h.Watch)
	r.GET("/geofences/:id", h.Get)
	r.DELETE("/geofences/:id", h.Delete)
}

func (h *GeofenceHandler) Create(c *gin.Context) {
	var req createGeofenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := validateCreateRequest(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g, err := h.geofenceSvc.Add(c.Request.Context(), req.Latitude, req.Longitude)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAuthorizationMissing):
			c.JSON(http.StatusForbidden, gin.H{"error": "location access not granted"})
		case errors.Is(err, domain.ErrDuplicatePoint):
			c.JSON(http.StatusConflict, gin.H{"error": "geofence already exists at point"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add geofence"})
		}
		return
	}

	c.JSON(http.StatusCreated, toGeofenceResponse(g))
}

func (h *GeofenceHandler) List(c *gin.Context) {
	geofences, err := h.geofenceSvc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch geofences"})
		return
	}

	results := make([]geofenceResponse, len(geofences))
	for i := range geofences {
		results[i] = toGeofenceResponse(&geofences[i])
	}
	c.JSON(http.StatusOK, results)
}

func (h *GeofenceHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id parameter"})
		return
	}

	g, err := h.geofenceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "geofence not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch geofence"})
		return
	}

	c.JSON(http.StatusOK, toGeofenceResponse(g))
}

// Lookup maps a tapped map point back to its geofence. Exact match, no
// spatial tolerance.
func (h *GeofenceHandler) Lookup(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("latitude"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid latitude parameter"})
		return
	}

	lon, err := strconv.ParseFloat(c.Query("longitude"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid longitude parameter"})
		return
	}

	g, err := h.geofenceSvc.GetByPoint(c.Request.Context(), lat, lon)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "geofence not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch geofence"})
		return
	}

	c.JSON(http.StatusOK, toGeofenceResponse(g))
}

func (h *GeofenceHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id parameter"})
		return
	}

	if err := h.geofenceSvc.Remove(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "geofence not found"})
		case errors.Is(err, domain.ErrAuthorizationMissing):
			c.JSON(http.StatusForbidden, gin.H{"error": "location access not granted"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove geofence"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// Watch streams geofence snapshots as server-sent events until the client
// disconnects.
func (h *GeofenceHandler) Watch(c *gin.Context) {
	ch, err := h.geofenceSvc.Watch(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to watch geofences"})
		return
	}

	c.Stream(func(_ io.Writer) bool {
		snap, ok := <-ch
		if !ok {
			return false
		}
		results := make([]geofenceResponse, len(snap))
		for i := range snap {
			results[i] = toGeofenceResponse(&snap[i])
		}
		c.SSEvent("geofences", results)
		return true
	})
}

func toGeofenceResponse(g *domain.Geofence) geofenceResponse {
	return geofenceResponse{
		ID:          g.ID,
		Address:     g.Address,
		Latitude:    g.Latitude,
		Longitude:   g.Longitude,
		ExpireTime:  g.ExpireTime,
		IsTriggered: g.IsTriggered,
	}
}
