package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"mime"
	"net/http"

	"multiroute/pkg/description"
	"multiroute/pkg/graph"
	"multiroute/pkg/phantom"
	"multiroute/pkg/routing"
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	router routing.Router
	chg    *graph.CHGraph
	names  []string
	stats  StatsResponse
}

// NewHandlers creates handlers with the given router. chg and names are
// used to turn a RouteResult back into turn-by-turn steps and a polyline;
// names is the street-name table written alongside the CH graph by
// cmd/preprocess.
func NewHandlers(router routing.Router, chg *graph.CHGraph, names []string, stats StatsResponse) *Handlers {
	return &Handlers{
		router: router,
		chg:    chg,
		names:  names,
		stats:  stats,
	}
}

// HandleRoute handles POST /api/v1/route.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request) {
	// Enforce Content-Type.
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	// Parse request.
	var req RouteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	if len(req.Waypoints) < 2 {
		writeError(w, http.StatusBadRequest, "invalid_request", "waypoints")
		return
	}

	waypoints := make([]routing.LatLng, len(req.Waypoints))
	for i, wp := range req.Waypoints {
		if err := validateCoord(wp); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_coordinates", "waypoints")
			return
		}
		waypoints[i] = routing.LatLng{Lat: wp.Lat, Lng: wp.Lng}
	}

	result, err := h.router.Route(r.Context(), waypoints)
	if err != nil {
		if errors.Is(err, phantom.ErrPointTooFar) || errors.Is(err, routing.ErrNoPhantom) {
			writeError(w, http.StatusUnprocessableEntity, "point_too_far_from_road", "")
			return
		}
		if errors.Is(err, routing.ErrNoRoute) {
			writeError(w, http.StatusNotFound, "no_route_found", "")
			return
		}
		if errors.Is(err, routing.ErrTooFewWaypoints) {
			writeError(w, http.StatusBadRequest, "invalid_request", "waypoints")
			return
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			writeError(w, http.StatusServiceUnavailable, "request_timeout", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	summary := description.BuildRouteSummary(h.chg, result, h.names)

	resp := RouteResponse{
		TotalDistanceMeters: summary.DistanceMeters,
		DurationSeconds:     summary.DurationSec,
		Polyline:            summary.Polyline,
	}
	for _, seg := range result.Segments {
		geom := make([]LatLngJSON, len(seg.Geometry))
		for i, ll := range seg.Geometry {
			geom[i] = LatLngJSON{Lat: ll.Lat, Lng: ll.Lng}
		}
		resp.Legs = append(resp.Legs, SegmentJSON{
			DistanceMeters: seg.DistanceMeters,
			Geometry:       geom,
		})
	}
	for _, s := range summary.Segments {
		resp.Steps = append(resp.Steps, StepJSON{
			Name:            s.Name,
			DistanceMeters:  s.DistanceMeters,
			DurationSeconds: s.DurationSec,
			Turn:            turnName(s.Turn),
			Bearing:         s.Bearing,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.stats)
}

func validateCoord(ll LatLngJSON) error {
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lng) || math.IsInf(ll.Lat, 0) || math.IsInf(ll.Lng, 0) {
		return errors.New("coordinates must be finite numbers")
	}
	if ll.Lat < -90 || ll.Lat > 90 || ll.Lng < -180 || ll.Lng > 180 {
		return errors.New("coordinates out of range")
	}
	return nil
}

func turnName(t description.TurnType) string {
	switch t {
	case description.TurnSlightRight:
		return "slight_right"
	case description.TurnRight:
		return "right"
	case description.TurnSharpRight:
		return "sharp_right"
	case description.TurnUTurn:
		return "uturn"
	case description.TurnSharpLeft:
		return "sharp_left"
	case description.TurnLeft:
		return "left"
	case description.TurnSlightLeft:
		return "slight_left"
	case description.TurnArrive:
		return "arrive"
	default:
		return "continue"
	}
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: code, Field: field})
}
