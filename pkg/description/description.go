// Package description turns a routed sequence of edge-based graph nodes
// into the human-facing parts of a route response: per-segment travel
// instructions and an encoded polyline geometry.
package description

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/polyline"

	"multiroute/pkg/geo"
	"multiroute/pkg/graph"
	"multiroute/pkg/routing"
)

// TurnType classifies the bearing change between two consecutive segments.
type TurnType int

const (
	TurnContinue TurnType = iota
	TurnSlightRight
	TurnRight
	TurnSharpRight
	TurnUTurn
	TurnSharpLeft
	TurnLeft
	TurnSlightLeft
	TurnArrive
)

// SegmentInformation describes one leg of the route in terms a turn-by-turn
// UI can render directly.
type SegmentInformation struct {
	Name           string
	DistanceMeters float64
	DurationSec    float64
	Turn           TurnType
	Bearing        float64
}

// DescriptionFactory accumulates SegmentInformation entries for a single
// route and, unlike a simple per-node dump, merges consecutive original
// edge-based nodes that share a street name into one instruction — a route
// along a single long avenue should read as one step, not one step per
// block.
type DescriptionFactory struct {
	names    []string
	segments []SegmentInformation
}

// NewDescriptionFactory creates a factory that resolves NameID values
// against the given street-name table (ParseResult.Names / the
// cmd/preprocess sidecar file, loaded at server startup).
func NewDescriptionFactory(names []string) *DescriptionFactory {
	return &DescriptionFactory{names: names}
}

func (f *DescriptionFactory) nameFor(nameID uint32) string {
	if int(nameID) < len(f.names) {
		return f.names[nameID]
	}
	return ""
}

// SetStartSegment begins the description with the route's first original
// edge-based node.
func (f *DescriptionFactory) SetStartSegment(chg *graph.CHGraph, node uint32, distanceMM, durationCS uint32) {
	f.segments = []SegmentInformation{{
		Name:           f.nameFor(chg.NameID[node]),
		DistanceMeters: float64(distanceMM) / 1000.0,
		DurationSec:    float64(durationCS) / 100.0,
		Turn:           TurnContinue,
	}}
}

// AppendSegment adds the next original edge-based node's travel distance to
// the description. If it shares a name with the last instruction and the
// bearing change is negligible, it is folded into that instruction instead
// of starting a new one — the "dedup-patch" rule: repeated same-name,
// same-direction segments collapse to a single step.
func (f *DescriptionFactory) AppendSegment(chg *graph.CHGraph, node uint32, distanceMM, durationCS uint32, bearingDelta float64) {
	name := f.nameFor(chg.NameID[node])
	turn := classifyTurn(bearingDelta)

	if len(f.segments) > 0 {
		last := &f.segments[len(f.segments)-1]
		if last.Name == name && turn == TurnContinue {
			last.DistanceMeters += float64(distanceMM) / 1000.0
			last.DurationSec += float64(durationCS) / 100.0
			return
		}
	}

	f.segments = append(f.segments, SegmentInformation{
		Name:           name,
		DistanceMeters: float64(distanceMM) / 1000.0,
		DurationSec:    float64(durationCS) / 100.0,
		Turn:           turn,
		Bearing:        bearingDelta,
	})
}

// SetEndSegment marks the final instruction as the arrival step.
func (f *DescriptionFactory) SetEndSegment() {
	if len(f.segments) == 0 {
		return
	}
	f.segments[len(f.segments)-1].Turn = TurnArrive
}

// classifyTurn buckets a signed bearing delta (degrees, positive = turning
// right) into the turn types a turn-by-turn UI distinguishes.
func classifyTurn(delta float64) TurnType {
	for delta > 180 {
		delta -= 360
	}
	for delta < -180 {
		delta += 360
	}

	switch {
	case delta > 160 || delta < -160:
		return TurnUTurn
	case delta > 45:
		return TurnRight
	case delta > 20:
		return TurnSlightRight
	case delta < -45:
		return TurnLeft
	case delta < -20:
		return TurnSlightLeft
	default:
		return TurnContinue
	}
}

// RouteSummary is the fully built description of a route: its turn-by-turn
// steps plus an encoded polyline of the whole geometry.
type RouteSummary struct {
	Segments       []SegmentInformation
	Polyline       string
	DistanceMeters float64
	DurationSec    float64
}

// BuildRouteSummary assembles a RouteSummary from a routing.RouteResult: it
// walks the route's original node sequence to produce per-segment
// instructions (computing bearing deltas from each segment's stored
// endpoints) and encodes the result's full geometry as a Google polyline.
func BuildRouteSummary(chg *graph.CHGraph, result *routing.RouteResult, names []string) RouteSummary {
	f := NewDescriptionFactory(names)

	nodes := result.Nodes
	if len(nodes) > 0 {
		f.SetStartSegment(chg, nodes[0], chg.SelfWeight[nodes[0]], chg.Duration[nodes[0]])
		prevBearing := geo.Bearing(
			geo.FixedPointCoordinate{Lat: toFixed(chg.FromLat[nodes[0]]), Lon: toFixed(chg.FromLon[nodes[0]])},
			geo.FixedPointCoordinate{Lat: toFixed(chg.ToLat[nodes[0]]), Lon: toFixed(chg.ToLon[nodes[0]])},
		)
		for _, n := range nodes[1:] {
			bearing := geo.Bearing(
				geo.FixedPointCoordinate{Lat: toFixed(chg.FromLat[n]), Lon: toFixed(chg.FromLon[n])},
				geo.FixedPointCoordinate{Lat: toFixed(chg.ToLat[n]), Lon: toFixed(chg.ToLon[n])},
			)
			f.AppendSegment(chg, n, chg.SelfWeight[n], chg.Duration[n], bearing-prevBearing)
			prevBearing = bearing
		}
		f.SetEndSegment()
	}

	var line orb.LineString
	for _, seg := range result.Segments {
		for _, pt := range seg.Geometry {
			line = append(line, orb.Point{pt.Lng, pt.Lat})
		}
	}

	codec := polyline.Codec{Dim: 2, Precision: 5}

	return RouteSummary{
		Segments:       f.segments,
		Polyline:       codec.Encode([]orb.Point(line)),
		DistanceMeters: result.TotalDistanceMeters,
		DurationSec:    totalDuration(f.segments),
	}
}

func totalDuration(segments []SegmentInformation) float64 {
	var total float64
	for _, s := range segments {
		total += s.DurationSec
	}
	return total
}

func toFixed(deg float64) int32 {
	return int32(deg * geo.CoordinatePrecision)
}
