package graph

import (
	"github.com/paulmach/osm"

	osmparser "multiroute/pkg/osm"
)

// Build creates an edge-based CSR Graph from parsed OSM edges. Edge-based
// node ids are assigned 1:1 from the RawEdge slice in the order the parser
// emitted them: a bidirectional way segment's forward RawEdge is
// immediately followed by its reverse, so Twin pairing is a simple
// sequential scan rather than an adjacency search.
func Build(result *osmparser.ParseResult) *Graph {
	edges := result.Edges
	numNodes := uint32(len(edges))
	if numNodes == 0 {
		return &Graph{}
	}

	twin := make([]int32, numNodes)
	for i := uint32(0); i < numNodes; {
		if edges[i].Bidirected {
			twin[i] = int32(i + 1)
			twin[i+1] = int32(i)
			i += 2
		} else {
			twin[i] = -1
			i++
		}
	}

	nameID := make([]uint32, numNodes)
	selfWeight := make([]uint32, numNodes)
	duration := make([]uint32, numNodes)
	fromLat := make([]float64, numNodes)
	fromLon := make([]float64, numNodes)
	toLat := make([]float64, numNodes)
	toLon := make([]float64, numNodes)
	geoFirstOut := make([]uint32, numNodes+1)
	var geoShapeLat, geoShapeLon []float64

	for i, e := range edges {
		nameID[i] = e.NameID
		selfWeight[i] = e.Weight
		duration[i] = e.Duration
		fromLat[i] = result.NodeLat[e.FromNodeID]
		fromLon[i] = result.NodeLon[e.FromNodeID]
		toLat[i] = result.NodeLat[e.ToNodeID]
		toLon[i] = result.NodeLon[e.ToNodeID]
		geoFirstOut[i] = uint32(len(geoShapeLat))
		geoShapeLat = append(geoShapeLat, e.ShapeLats...)
		geoShapeLon = append(geoShapeLon, e.ShapeLons...)
	}
	geoFirstOut[numNodes] = uint32(len(geoShapeLat))

	// Group edge-based nodes by the OSM node they start at, so arcs can be
	// built as "segment i -> every segment j that continues from i's head".
	startingAt := make(map[osm.NodeID][]uint32)
	for i, e := range edges {
		startingAt[e.FromNodeID] = append(startingAt[e.FromNodeID], uint32(i))
	}

	type arc struct {
		from, to uint32
		weight   uint32
	}
	var arcs []arc
	for i, e := range edges {
		u := uint32(i)
		for _, v := range startingAt[e.ToNodeID] {
			if v == uint32(twin[u]) {
				// Forbid an immediate U-turn back onto the same segment.
				continue
			}
			arcs = append(arcs, arc{from: u, to: v, weight: edges[v].Weight})
		}
	}

	numArcs := uint32(len(arcs))
	firstOut := make([]uint32, numNodes+1)
	for _, a := range arcs {
		firstOut[a.from+1]++
	}
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	head := make([]uint32, numArcs)
	weight := make([]uint32, numArcs)
	cursor := make([]uint32, numNodes)
	copy(cursor, firstOut[:numNodes])
	for _, a := range arcs {
		pos := cursor[a.from]
		head[pos] = a.to
		weight[pos] = a.weight
		cursor[a.from]++
	}

	return &Graph{
		NumNodes:    numNodes,
		NumArcs:     numArcs,
		FirstOut:    firstOut,
		Head:        head,
		Weight:      weight,
		Twin:        twin,
		NameID:      nameID,
		SelfWeight:  selfWeight,
		Duration:    duration,
		FromLat:     fromLat,
		FromLon:     fromLon,
		ToLat:       toLat,
		ToLon:       toLon,
		GeoFirstOut: geoFirstOut,
		GeoShapeLat: geoShapeLat,
		GeoShapeLon: geoShapeLon,
	}
}
