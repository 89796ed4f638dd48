package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/geofence-alerts/module/core/domain"
)

type mockGeofenceService struct {
	addFn        func(ctx context.Context, lat, lon float64) (*domain.Geofence, error)
	removeFn     func(ctx context.Context, id int64) error
	getByIDFn    func(ctx context.Context, id int64) (*domain.Geofence, error)
	getByPointFn func(ctx context.Context, lat, lon float64) (*domain.Geofence, error)
	listFn       func(ctx context.Context) ([]domain.Geofence, error)
	watchFn      func(ctx context.Context) (<-chan []domain.Geofence, error)
}

func (m *mockGeofenceService) Add(ctx context.Context, lat, lon float64) (*domain.Geofence, error) {
	return m.addFn(ctx, lat, lon)
}

func (m *mockGeofenceService) Remove(ctx context.Context, id int64) error {
	return m.removeFn(ctx, id)
}

func (m *mockGeofenceService) GetByID(ctx context.Context, id int64) (*domain.Geofence, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockGeofenceService) GetByPoint(ctx context.Context, lat, lon float64) (*domain.Geofence, error) {
	return m.getByPointFn(ctx, lat, lon)
}

func (m *mockGeofenceService) List(ctx context.Context) ([]domain.Geofence, error) {
	return m.listFn(ctx)
}

func (m *mockGeofenceService) Watch(ctx context.Context) (<-chan []domain.Geofence, error) {
	return m.watchFn(ctx)
}

func setupRouter(svc geofenceService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewGeofenceHandler(svc)
	h.Register(r.Group(""))
	return r
}

func TestCreate_Success(t *testing.T) {
	svc := &mockGeofenceService{
		addFn: func(_ context.Context, lat, lon float64) (*domain.Geofence, error) {
			if lat != 31.23 || lon != 121.47 {
				t.Fatalf("unexpected point: %f,%f", lat, lon)
			}
			return &domain.Geofence{
				ID:         1,
				Address:    "Oriental Perl",
				Latitude:   lat,
				Longitude:  lon,
				ExpireTime: 1715608256000,
			}, nil
		},
	}

	r := setupRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/geofences", strings.NewReader(`{"latitude":31.23,"longitude":121.47}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}

	var resp geofenceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.ID != 1 {
		t.Errorf("expected id 1, got %d", resp.ID)
	}
	if resp.Address != "Oriental Perl" {
		t.Errorf("expected Oriental Perl, got %s", resp.Address)
	}
	if resp.IsTriggered {
		t.Error("expected is_triggered false")
	}
}

func TestCreate_InvalidBody(t *testing.T) {
	svc := &mockGeofenceService{}
	r := setupRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/geofences", strings.NewReader("not json"))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCreate_InvalidCoordinates(t *testing.T) {
	svc := &mockGeofenceService{}
	r := setupRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/geofences", strings.NewReader(`{"latitude":91,"longitude":0}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCreate_DuplicatePoint(t *testing.T) {
	svc := &mockGeofenceService{
		addFn: func(_ context.Context, _, _ float64) (*domain.Geofence, error) {
			return nil, domain.ErrDuplicatePoint
		},
	}

	r := setupRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/geofences", strings.NewReader(`{"latitude":31.23,"longitude":121.47}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestCreate_AuthorizationMissing(t *testing.T) {
	svc := &mockGeofenceService{
		addFn: func(_ context.Context, _, _ float64) (*domain.Geofence, error) {
			return nil, domain.ErrAuthorizationMissing
		},
	}

	r := setupRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/geofences", strings.NewReader(`{"latitude":31.23,"longitude":121.47}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestList_Success(t *testing.T) {
	svc := &mockGeofenceService{
		listFn: func(_ context.Context) ([]domain.Geofence, error) {
			return []domain.Geofence{
				{ID: 1, Address: "A"},
				{ID: 2, Address: "B", IsTriggered: true},
			}, nil
		},
	}

	r := setupRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/geofences", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp []geofenceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp))
	}
	if !resp[1].IsTriggered {
		t.Error("expected second row triggered")
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := &mockGeofenceService{
		getByIDFn: func(_ context.Context, _ int64) (*domain.Geofence, error) {
			return nil, domain.ErrNotFound
		},
	}

	r := setupRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/geofences/99", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGet_InvalidID(t *testing.T) {
	svc := &mockGeofenceService{}
	r := setupRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/geofences/abc", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestLookup_Success(t *testing.T) {
	svc := &mockGeofenceService{
		getByPointFn: func(_ context.Context, lat, lon float64) (*domain.Geofence, error) {
			if lat != 31.23 || lon != 121.47 {
				t.Fatalf("unexpected point: %f,%f", lat, lon)
			}
			return &domain.Geofence{ID: 1, Address: "Oriental Perl", Latitude: lat, Longitude: lon}, nil
		},
	}

	r := setupRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/geofences/lookup?latitude=31.23&longitude=121.47", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp geofenceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.ID != 1 {
		t.Errorf("expected id 1, got %d", resp.ID)
	}
}

func TestLookup_MissingParams(t *testing.T) {
	svc := &mockGeofenceService{}
	r := setupRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/geofences/lookup?latitude=31.23", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestDelete_Success(t *testing.T) {
	var removedID int64
	svc := &mockGeofenceService{
		removeFn: func(_ context.Context, id int64) error {
			removedID = id
			return nil
		},
	}

	r := setupRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/geofences/1", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if removedID != 1 {
		t.Errorf("expected removal of id 1, got %d", removedID)
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc := &mockGeofenceService{
		removeFn: func(_ context.Context, _ int64) error {
			return domain.ErrNotFound
		},
	}

	r := setupRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/geofences/99", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestDelete_ServiceError(t *testing.T) {
	svc := &mockGeofenceService{
		removeFn: func(_ context.Context, _ int64) error {
			return errors.New("db error")
		},
	}

	r := setupRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/geofences/1", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

// closeNotifyRecorder adds the http.CloseNotifier method gin's Stream
// requires, which httptest.ResponseRecorder does not implement.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func newCloseNotifyRecorder() *closeNotifyRecorder {
	return &closeNotifyRecorder{httptest.NewRecorder(), make(chan bool, 1)}
}

func (r *closeNotifyRecorder) CloseNotify() <-chan bool {
	return r.closed
}

func TestWatch_StreamsSnapshots(t *testing.T) {
	ch := make(chan []domain.Geofence, 2)
	ch <- []domain.Geofence{{ID: 1, Address: "Oriental Perl"}}
	close(ch)

	svc := &mockGeofenceService{
		watchFn: func(_ context.Context) (<-chan []domain.Geofence, error) {
			return ch, nil
		},
	}

	r := setupRouter(svc)
	w := newCloseNotifyRecorder()
	req, _ := http.NewRequest("GET", "/geofences/watch", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "event:geofences") {
		t.Errorf("expected SSE event in body, got %q", body)
	}
	if !strings.Contains(body, "Oriental Perl") {
		t.Errorf("expected snapshot data in body, got %q", body)
	}
}
