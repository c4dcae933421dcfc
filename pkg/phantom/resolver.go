// Package phantom resolves a query waypoint's lat/lng to the nearest road
// segment in the edge-based graph, producing the PhantomNode pair the
// routing package seeds its searches with. It supersedes the flat sorted
// grid the node-based graph used for snapping: the edge-based graph's
// bounding boxes are per-directed-segment, and an R-tree scales far better
// than a fixed grid cell size once segment lengths vary by orders of
// magnitude (a 2km highway link vs a 5m driveway).
package phantom

import (
	"errors"
	"math"

	"github.com/tidwall/rtree"

	"multiroute/pkg/geo"
	"multiroute/pkg/graph"
	"multiroute/pkg/routing"
)

// ErrPointTooFar is returned when a query point has no road segment within
// maxSnapDistMeters.
var ErrPointTooFar = errors.New("phantom: point too far from any road")

const maxSnapDistMeters = 500.0

// metersPerDegreeLat is the constant used to turn maxSnapDistMeters into a
// bounding-box padding in degrees for the R-tree query; longitude padding
// is widened by 1/cos(lat) at query time to account for meridian
// convergence away from the equator.
const metersPerDegreeLat = 111320.0

// Resolver snaps coordinates to the nearest edge-based graph segment.
type Resolver struct {
	g  *graph.Graph
	tr rtree.RTreeG[uint32] // bounding box of segment i -> edge-based node id i
}

// NewResolver builds an R-tree over every directed segment's bounding box.
// Both directions of a bidirectional street are indexed separately (they
// are different edge-based nodes with the same geometry), so a single
// nearest-segment search naturally surfaces whichever direction is closer
// and Resolve pairs it with its twin.
func NewResolver(g *graph.Graph) *Resolver {
	r := &Resolver{g: g}
	for i := uint32(0); i < g.NumNodes; i++ {
		minLat := math.Min(g.FromLat[i], g.ToLat[i])
		maxLat := math.Max(g.FromLat[i], g.ToLat[i])
		minLon := math.Min(g.FromLon[i], g.ToLon[i])
		maxLon := math.Max(g.FromLon[i], g.ToLon[i])
		r.tr.Insert([2]float64{minLon, minLat}, [2]float64{maxLon, maxLat}, i)
	}
	return r
}

// Resolve finds the nearest segment to (lat, lon) and builds the
// PhantomNodePair a routing query seeds its heaps with.
func (r *Resolver) Resolve(lat, lon float64) (routing.PhantomNodePair, error) {
	latPad := maxSnapDistMeters / metersPerDegreeLat
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	lonPad := latPad / cosLat

	minPt := [2]float64{lon - lonPad, lat - latPad}
	maxPt := [2]float64{lon + lonPad, lat + latPad}

	bestDist := math.Inf(1)
	bestSeg := uint32(0)
	bestRatio := 0.0
	found := false

	r.tr.Search(minPt, maxPt, func(_, _ [2]float64, seg uint32) bool {
		dist, ratio := geo.PointToSegmentDist(
			lat, lon,
			r.g.FromLat[seg], r.g.FromLon[seg],
			r.g.ToLat[seg], r.g.ToLon[seg],
		)
		if dist < bestDist {
			bestDist = dist
			bestSeg = seg
			bestRatio = ratio
			found = true
		}
		return true
	})

	if !found || bestDist > maxSnapDistMeters {
		return routing.PhantomNodePair{}, ErrPointTooFar
	}

	return r.buildPair(bestSeg, bestRatio, lat, lon), nil
}

// buildPair constructs the PhantomNodePair for a point that snapped to seg
// at the given ratio along seg's own stored direction.
func (r *Resolver) buildPair(seg uint32, ratio, lat, lon float64) routing.PhantomNodePair {
	weight := r.g.SelfWeight[seg]
	duration := r.g.Duration[seg]

	fwdWeight := uint32(math.Round(float64(weight) * ratio))
	fwdOffset := uint32(math.Round(float64(duration) * ratio))

	pair := routing.PhantomNodePair{
		Lat: lat,
		Lon: lon,
		Forward: routing.PhantomNode{
			ForwardNode:   seg,
			ReverseNode:   noNodeOf(r.g.Twin[seg]),
			ForwardWeight: fwdWeight,
			ReverseWeight: weight - fwdWeight,
			ForwardOffset: fwdOffset,
			ReverseOffset: duration - fwdOffset,
			Ratio:         ratio,
			Lat:           lat,
			Lon:           lon,
		},
	}

	if twin := r.g.Twin[seg]; twin >= 0 {
		twinRatio := 1 - ratio
		twinWeight := r.g.SelfWeight[twin]
		twinDuration := r.g.Duration[twin]
		twinFwdWeight := uint32(math.Round(float64(twinWeight) * twinRatio))
		twinFwdOffset := uint32(math.Round(float64(twinDuration) * twinRatio))

		pair.HasReverse = true
		pair.Reverse = routing.PhantomNode{
			ForwardNode:   uint32(twin),
			ReverseNode:   seg,
			ForwardWeight: twinFwdWeight,
			ReverseWeight: twinWeight - twinFwdWeight,
			ForwardOffset: twinFwdOffset,
			ReverseOffset: twinDuration - twinFwdOffset,
			Ratio:         twinRatio,
			Lat:           lat,
			Lon:           lon,
		}
	}

	return pair
}

func noNodeOf(twin int32) uint32 {
	if twin < 0 {
		return ^uint32(0)
	}
	return uint32(twin)
}
