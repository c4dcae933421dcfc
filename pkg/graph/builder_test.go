package graph

import (
	"testing"

	"github.com/paulmach/osm"

	osmparser "multiroute/pkg/osm"
)

func TestBuildTriangle(t *testing.T) {
	// Three one-way segments forming a triangle: 100->200->300->100.
	// Each edge-based node has exactly one continuation arc.
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 100, ToNodeID: 200, Weight: 1000},
			{FromNodeID: 200, ToNodeID: 300, Weight: 2000},
			{FromNodeID: 300, ToNodeID: 100, Weight: 3000},
		},
		NodeLat: map[osm.NodeID]float64{100: 1.0, 200: 1.1, 300: 1.0},
		NodeLon: map[osm.NodeID]float64{100: 103.0, 200: 103.0, 300: 103.1},
	}

	g := Build(result)

	if g.NumNodes != 3 {
		t.Fatalf("NumNodes = %d, want 3", g.NumNodes)
	}
	if g.NumArcs != 3 {
		t.Fatalf("NumArcs = %d, want 3", g.NumArcs)
	}
	for i := uint32(0); i < g.NumNodes; i++ {
		if g.Twin[i] != -1 {
			t.Errorf("segment %d Twin = %d, want -1 (one-way)", i, g.Twin[i])
		}
		start, end := g.ArcsFrom(i)
		if end-start != 1 {
			t.Errorf("segment %d has %d outgoing arcs, want 1", i, end-start)
		}
	}
}

func TestBuildEmptyGraph(t *testing.T) {
	result := &osmparser.ParseResult{
		Edges:   nil,
		NodeLat: map[osm.NodeID]float64{},
		NodeLon: map[osm.NodeID]float64{},
	}

	g := Build(result)

	if g.NumNodes != 0 {
		t.Errorf("NumNodes = %d, want 0", g.NumNodes)
	}
	if g.NumArcs != 0 {
		t.Errorf("NumArcs = %d, want 0", g.NumArcs)
	}
}

func TestBuildBidirectedPairing(t *testing.T) {
	// A <-> B is a single bidirectional way segment: the parser emits the
	// forward RawEdge immediately followed by its reverse, so segments 0
	// and 1 must be paired as twins.
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 1, ToNodeID: 2, Weight: 500, Bidirected: true},
			{FromNodeID: 2, ToNodeID: 1, Weight: 500, Bidirected: true},
		},
		NodeLat: map[osm.NodeID]float64{1: 1.0, 2: 1.1},
		NodeLon: map[osm.NodeID]float64{1: 103.0, 2: 103.1},
	}

	g := Build(result)

	if g.NumNodes != 2 {
		t.Fatalf("NumNodes = %d, want 2", g.NumNodes)
	}
	if g.Twin[0] != 1 || g.Twin[1] != 0 {
		t.Errorf("Twin = [%d,%d], want [1,0]", g.Twin[0], g.Twin[1])
	}
	// Both segments dead-end at each other's tail with no other
	// continuation, so a U-turn back onto the twin must be forbidden —
	// neither segment has any outgoing arc at all.
	for i := uint32(0); i < g.NumNodes; i++ {
		start, end := g.ArcsFrom(i)
		if end-start != 0 {
			t.Errorf("segment %d has %d outgoing arcs, want 0 (only continuation is its twin)", i, end-start)
		}
	}
}

func TestBuildCSRInvariants(t *testing.T) {
	// A star junction: one segment arrives at the center (5->10),
	// and three segments continue on from it.
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 5, ToNodeID: 10, Weight: 50},
			{FromNodeID: 10, ToNodeID: 20, Weight: 100},
			{FromNodeID: 10, ToNodeID: 30, Weight: 200},
			{FromNodeID: 10, ToNodeID: 40, Weight: 300},
		},
		NodeLat: map[osm.NodeID]float64{5: 0.9, 10: 1.0, 20: 1.1, 30: 1.2, 40: 1.3},
		NodeLon: map[osm.NodeID]float64{5: 102.9, 10: 103.0, 20: 103.1, 30: 103.2, 40: 103.3},
	}

	g := Build(result)

	if g.NumNodes != 4 {
		t.Fatalf("NumNodes = %d, want 4", g.NumNodes)
	}

	// Segment 0 (5->10) continues onto the three segments leaving 10.
	start, end := g.ArcsFrom(0)
	if end-start != 3 {
		t.Errorf("segment 0 has %d outgoing arcs, want 3", end-start)
	}

	// CSR invariant: FirstOut is monotonically non-decreasing.
	for i := uint32(1); i <= g.NumNodes; i++ {
		if g.FirstOut[i] < g.FirstOut[i-1] {
			t.Errorf("FirstOut[%d]=%d < FirstOut[%d]=%d — not monotonic", i, g.FirstOut[i], i-1, g.FirstOut[i-1])
		}
	}

	// CSR invariant: FirstOut[NumNodes] == NumArcs.
	if g.FirstOut[g.NumNodes] != g.NumArcs {
		t.Errorf("FirstOut[%d]=%d != NumArcs=%d", g.NumNodes, g.FirstOut[g.NumNodes], g.NumArcs)
	}

	// All Head values < NumNodes.
	for i, h := range g.Head {
		if h >= g.NumNodes {
			t.Errorf("Head[%d]=%d >= NumNodes=%d", i, h, g.NumNodes)
		}
	}
}
