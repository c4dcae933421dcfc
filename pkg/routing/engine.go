package routing

import (
	"context"
	"errors"
	"sync"

	"multiroute/pkg/graph"
)

// ErrNoPhantom reports a waypoint that could not be snapped to a road. Route
// does not return it itself: an error from the WaypointResolver is passed
// through unchanged.
var ErrNoPhantom = errors.New("routing: waypoint could not be snapped to a road")

// LatLng represents a geographic coordinate.
type LatLng struct {
	Lat float64
	Lng float64
}

// Segment is one leg of a multi-waypoint route: its distance and the
// combined geometry of the original edge-based nodes it passes through.
type Segment struct {
	DistanceMeters float64
	Geometry       []LatLng
}

// RouteResult is the output of a route query.
type RouteResult struct {
	TotalDistanceMeters float64
	Segments            []Segment
	// Nodes is the full unpacked original edge-based node sequence for the
	// whole route, exposed for pkg/description's turn-by-turn generation.
	Nodes []uint32
}

// WaypointResolver snaps a query coordinate to the road network. Satisfied
// by pkg/phantom.Resolver; kept as an interface here so pkg/routing never
// has to import pkg/phantom (which itself imports pkg/routing for the
// PhantomNode types it produces).
type WaypointResolver interface {
	Resolve(lat, lon float64) (PhantomNodePair, error)
}

// Router is the interface for multi-waypoint route queries.
type Router interface {
	Route(ctx context.Context, waypoints []LatLng) (*RouteResult, error)
}

// Engine implements Router using a CH graph and a waypoint resolver.
type Engine struct {
	chg      *graph.CHGraph
	resolver WaypointResolver
	sedPool  sync.Pool
}

// NewEngine creates a routing engine from a preprocessed CH graph.
func NewEngine(chg *graph.CHGraph, resolver WaypointResolver) *Engine {
	e := &Engine{chg: chg, resolver: resolver}
	e.sedPool.New = func() any {
		return NewSearchEngineData(chg.NumNodes)
	}
	return e
}

// Route computes the shortest route visiting every waypoint in order.
func (e *Engine) Route(ctx context.Context, waypoints []LatLng) (*RouteResult, error) {
	if len(waypoints) < 2 {
		return nil, ErrTooFewWaypoints
	}

	pairs := make([]PhantomNodePair, len(waypoints))
	for i, wp := range waypoints {
		pair, err := e.resolver.Resolve(wp.Lat, wp.Lng)
		if err != nil {
			return nil, err
		}
		pairs[i] = pair
	}

	sed := e.sedPool.Get().(*SearchEngineData)
	defer func() {
		sed.Clear()
		e.sedPool.Put(sed)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	packedLegs, legWeights, totalWeight, err := ShortestPathRouting(e.chg, sed, pairs)
	if err != nil {
		return nil, err
	}

	segments := make([]Segment, len(packedLegs))
	var allNodes []uint32
	for i, packed := range packedLegs {
		legNodes, err := UnpackPath(e.chg, packed)
		if err != nil {
			return nil, err
		}
		segments[i] = Segment{
			DistanceMeters: float64(legWeights[i]) / 1000.0,
			Geometry:       e.buildGeometry(legNodes),
		}
		if i > 0 && len(legNodes) > 0 {
			legNodes = legNodes[1:]
		}
		allNodes = append(allNodes, legNodes...)
	}

	return &RouteResult{
		TotalDistanceMeters: float64(totalWeight) / 1000.0,
		Segments:            segments,
		Nodes:               allNodes,
	}, nil
}

// buildGeometry converts a sequence of original edge-based node ids into
// lat/lng coordinates, including each segment's interior shape points.
func (e *Engine) buildGeometry(nodes []uint32) []LatLng {
	if len(nodes) == 0 {
		return nil
	}

	geom := make([]LatLng, 0, len(nodes)*2)
	geom = append(geom, LatLng{Lat: e.chg.FromLat[nodes[0]], Lng: e.chg.FromLon[nodes[0]]})

	for _, n := range nodes {
		if e.chg.GeoFirstOut != nil {
			geoStart := e.chg.GeoFirstOut[n]
			geoEnd := e.chg.GeoFirstOut[n+1]
			for k := geoStart; k < geoEnd; k++ {
				geom = append(geom, LatLng{Lat: e.chg.GeoShapeLat[k], Lng: e.chg.GeoShapeLon[k]})
			}
		}
		geom = append(geom, LatLng{Lat: e.chg.ToLat[n], Lng: e.chg.ToLon[n]})
	}

	return geom
}
