package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"multiroute/pkg/graph"
	"multiroute/pkg/phantom"
	"multiroute/pkg/routing"
)

// mockRouter implements routing.Router for testing.
type mockRouter struct {
	result *routing.RouteResult
	err    error
}

func (m *mockRouter) Route(ctx context.Context, waypoints []routing.LatLng) (*routing.RouteResult, error) {
	return m.result, m.err
}

func testCHGraph() *graph.CHGraph {
	return &graph.CHGraph{
		NumNodes:   2,
		NameID:     []uint32{1, 1},
		SelfWeight: []uint32{1000, 1000},
		Duration:   []uint32{100, 100},
		FromLat:    []float64{1.3, 1.35},
		FromLon:    []float64{103.8, 103.85},
		ToLat:      []float64{1.35, 1.4},
		ToLon:      []float64{103.85, 103.9},
	}
}

func newTestHandlers(router routing.Router, stats StatsResponse) *Handlers {
	return NewHandlers(router, testCHGraph(), []string{"", "Test Street"}, stats)
}

func TestHandleRoute_Success(t *testing.T) {
	mock := &mockRouter{
		result: &routing.RouteResult{
			TotalDistanceMeters: 1234.5,
			Nodes:               []uint32{0, 1},
			Segments: []routing.Segment{
				{
					DistanceMeters: 1234.5,
					Geometry: []routing.LatLng{
						{Lat: 1.3, Lng: 103.8},
						{Lat: 1.35, Lng: 103.85},
					},
				},
			},
		},
	}
	h := newTestHandlers(mock, StatsResponse{NumNodes: 100})

	body := `{"waypoints":[{"lat":1.3,"lng":103.8},{"lat":1.35,"lng":103.85}]}`
	req := httptest.NewRequest("POST", "/api/v1/route", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleRoute(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200. body: %s", w.Code, w.Body.String())
	}

	var resp RouteResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Legs) != 1 {
		t.Errorf("Legs length = %d, want 1", len(resp.Legs))
	}
	if len(resp.Steps) == 0 {
		t.Error("Steps should not be empty")
	}
	if resp.Polyline == "" {
		t.Error("Polyline should not be empty")
	}
}

func TestHandleRoute_InvalidJSON(t *testing.T) {
	h := newTestHandlers(&mockRouter{}, StatsResponse{})

	req := httptest.NewRequest("POST", "/api/v1/route", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleRoute(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleRoute_MissingContentType(t *testing.T) {
	h := newTestHandlers(&mockRouter{}, StatsResponse{})

	body := `{"waypoints":[{"lat":1.3,"lng":103.8},{"lat":1.35,"lng":103.85}]}`
	req := httptest.NewRequest("POST", "/api/v1/route", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.HandleRoute(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleRoute_OutOfBounds(t *testing.T) {
	h := newTestHandlers(&mockRouter{}, StatsResponse{})

	// Latitude out of valid range (-90 to 90).
	body := `{"waypoints":[{"lat":91.0,"lng":103.8},{"lat":1.35,"lng":103.85}]}`
	req := httptest.NewRequest("POST", "/api/v1/route", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleRoute(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleRoute_TooFewWaypoints(t *testing.T) {
	h := newTestHandlers(&mockRouter{}, StatsResponse{})

	body := `{"waypoints":[{"lat":1.3,"lng":103.8}]}`
	req := httptest.NewRequest("POST", "/api/v1/route", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleRoute(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleRoute_NoRoute(t *testing.T) {
	mock := &mockRouter{err: routing.ErrNoRoute}
	h := newTestHandlers(mock, StatsResponse{})

	body := `{"waypoints":[{"lat":1.3,"lng":103.8},{"lat":1.35,"lng":103.85}]}`
	req := httptest.NewRequest("POST", "/api/v1/route", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleRoute(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHandleRoute_PointTooFar(t *testing.T) {
	mock := &mockRouter{err: phantom.ErrPointTooFar}
	h := newTestHandlers(mock, StatsResponse{})

	body := `{"waypoints":[{"lat":1.3,"lng":103.8},{"lat":1.35,"lng":103.85}]}`
	req := httptest.NewRequest("POST", "/api/v1/route", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleRoute(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	h := newTestHandlers(&mockRouter{}, StatsResponse{})

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()

	h.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	var resp HealthResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != "ok" {
		t.Errorf("status = %q, want 'ok'", resp.Status)
	}
}

func TestHandleStats(t *testing.T) {
	stats := StatsResponse{NumNodes: 500000, NumFwdEdges: 1000000, NumBwdEdges: 900000}
	h := newTestHandlers(&mockRouter{}, stats)

	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	w := httptest.NewRecorder()

	h.HandleStats(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	var resp StatsResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.NumNodes != 500000 {
		t.Errorf("NumNodes = %d, want 500000", resp.NumNodes)
	}
}
