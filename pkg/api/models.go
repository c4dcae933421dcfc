package api

// RouteRequest is the JSON body for POST /api/v1/route. Waypoints are
// visited in order; two waypoints is a simple A-to-B route, more than two
// routes through each via point in sequence.
type RouteRequest struct {
	Waypoints []LatLngJSON `json:"waypoints"`
}

// LatLngJSON represents a lat/lng pair in JSON.
type LatLngJSON struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RouteResponse is the JSON response for a successful route query.
type RouteResponse struct {
	TotalDistanceMeters float64       `json:"total_distance_meters"`
	DurationSeconds     float64       `json:"duration_seconds"`
	Polyline            string        `json:"polyline"`
	Legs                []SegmentJSON `json:"legs"`
	Steps               []StepJSON    `json:"steps"`
}

// SegmentJSON is the raw road geometry for one leg between two consecutive
// waypoints.
type SegmentJSON struct {
	DistanceMeters float64      `json:"distance_meters"`
	Geometry       []LatLngJSON `json:"geometry"`
}

// StepJSON is one turn-by-turn instruction, built from pkg/description.
type StepJSON struct {
	Name            string  `json:"name"`
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
	Turn            string  `json:"turn"`
	Bearing         float64 `json:"bearing"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error          string  `json:"error"`
	Field          string  `json:"field,omitempty"`
	DistanceMeters float64 `json:"distance_meters,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	NumNodes    uint32 `json:"num_nodes"`
	NumFwdEdges int    `json:"num_fwd_edges"`
	NumBwdEdges int    `json:"num_bwd_edges"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}
