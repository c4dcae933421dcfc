package routing

import (
	"math"
	"testing"

	"github.com/paulmach/osm"

	"multiroute/pkg/ch"
	"multiroute/pkg/graph"
	osmparser "multiroute/pkg/osm"
)

// buildTestGraphAndCH creates a test graph and its CH overlay.
//
//	10 ---100--- 20 ---200--- 30
//	|                         |
//	300                      400
//	|                         |
//	40 ---500--- 50 ---600--- 60
//
// All streets bidirectional, so the edge-based graph has 12 segments.
func buildTestGraphAndCH(t *testing.T) (*graph.Graph, *graph.CHGraph) {
	t.Helper()
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 10, ToNodeID: 20, Weight: 100, Duration: 10, Bidirected: true},
			{FromNodeID: 20, ToNodeID: 10, Weight: 100, Duration: 10, Bidirected: true},
			{FromNodeID: 20, ToNodeID: 30, Weight: 200, Duration: 20, Bidirected: true},
			{FromNodeID: 30, ToNodeID: 20, Weight: 200, Duration: 20, Bidirected: true},
			{FromNodeID: 10, ToNodeID: 40, Weight: 300, Duration: 30, Bidirected: true},
			{FromNodeID: 40, ToNodeID: 10, Weight: 300, Duration: 30, Bidirected: true},
			{FromNodeID: 30, ToNodeID: 60, Weight: 400, Duration: 40, Bidirected: true},
			{FromNodeID: 60, ToNodeID: 30, Weight: 400, Duration: 40, Bidirected: true},
			{FromNodeID: 40, ToNodeID: 50, Weight: 500, Duration: 50, Bidirected: true},
			{FromNodeID: 50, ToNodeID: 40, Weight: 500, Duration: 50, Bidirected: true},
			{FromNodeID: 50, ToNodeID: 60, Weight: 600, Duration: 60, Bidirected: true},
			{FromNodeID: 60, ToNodeID: 50, Weight: 600, Duration: 60, Bidirected: true},
		},
		NodeLat: map[osm.NodeID]float64{10: 1.300, 20: 1.300, 30: 1.300, 40: 1.301, 50: 1.301, 60: 1.301},
		NodeLon: map[osm.NodeID]float64{10: 103.800, 20: 103.801, 30: 103.802, 40: 103.800, 50: 103.801, 60: 103.802},
	}
	g := graph.Build(result)
	chg := ch.Contract(g)
	return g, chg
}

// plainDijkstra runs standard Dijkstra on the original edge-based graph.
func plainDijkstra(g *graph.Graph, source, target uint32) uint32 {
	dist := make([]uint32, g.NumNodes)
	for i := range dist {
		dist[i] = math.MaxUint32
	}
	dist[source] = 0

	type item struct {
		node uint32
		dist uint32
	}
	var pq []item
	pq = append(pq, item{source, 0})

	for len(pq) > 0 {
		minIdx := 0
		for i := 1; i < len(pq); i++ {
			if pq[i].dist < pq[minIdx].dist {
				minIdx = i
			}
		}
		cur := pq[minIdx]
		pq[minIdx] = pq[len(pq)-1]
		pq = pq[:len(pq)-1]

		if cur.dist > dist[cur.node] {
			continue
		}

		start, end := g.ArcsFrom(cur.node)
		for e := start; e < end; e++ {
			v := g.Head[e]
			newDist := cur.dist + g.Weight[e]
			if newDist < dist[v] {
				dist[v] = newDist
				pq = append(pq, item{v, newDist})
			}
		}
	}

	return dist[target]
}

func TestCHBiDijkstraCorrectness(t *testing.T) {
	g, chg := buildTestGraphAndCH(t)
	sed := NewSearchEngineData(chg.NumNodes)

	for s := uint32(0); s < g.NumNodes; s++ {
		for d := uint32(0); d < g.NumNodes; d++ {
			if s == d {
				continue
			}
			expected := plainDijkstra(g, s, d)

			weight, path, err := biDijkstra(chg, sed, s, d)
			if err != nil {
				t.Errorf("s=%d d=%d: biDijkstra error: %v", s, d, err)
				continue
			}
			if uint32(weight) != expected {
				t.Errorf("s=%d d=%d: CH=%d, Dijkstra=%d", s, d, weight, expected)
			}
			if len(path) == 0 || path[0] != s || path[len(path)-1] != d {
				t.Errorf("s=%d d=%d: path endpoints wrong: %v", s, d, path)
			}
		}
	}
}

func TestQueryHeapOrdering(t *testing.T) {
	h := NewQueryHeap(8)

	h.Insert(1, 30, HeapData{Parent: 1})
	h.Insert(2, 10, HeapData{Parent: 2})
	h.Insert(3, 20, HeapData{Parent: 3})

	if h.MinKey() != 10 {
		t.Fatalf("MinKey = %d, want 10", h.MinKey())
	}

	if got := h.DeleteMin(); got != 2 {
		t.Errorf("DeleteMin = %d, want 2", got)
	}
	if got := h.DeleteMin(); got != 3 {
		t.Errorf("DeleteMin = %d, want 3", got)
	}
	if got := h.DeleteMin(); got != 1 {
		t.Errorf("DeleteMin = %d, want 1", got)
	}
	if !h.Empty() {
		t.Errorf("Empty = false, want true")
	}
}

func TestQueryHeapNegativeKeys(t *testing.T) {
	h := NewQueryHeap(4)
	h.Insert(0, -50, HeapData{Parent: 0})
	h.Insert(1, 10, HeapData{Parent: 1})
	h.Insert(2, -100, HeapData{Parent: 2})

	if got := h.DeleteMin(); got != 2 {
		t.Errorf("DeleteMin = %d, want 2 (key -100)", got)
	}
	if got := h.DeleteMin(); got != 0 {
		t.Errorf("DeleteMin = %d, want 0 (key -50)", got)
	}
}

func TestQueryHeapDecreaseKey(t *testing.T) {
	h := NewQueryHeap(4)
	h.Insert(0, 100, HeapData{Parent: 0})
	h.Insert(1, 50, HeapData{Parent: 1})
	h.DecreaseKey(0, 10, HeapData{Parent: 1})

	if got := h.DeleteMin(); got != 0 {
		t.Errorf("DeleteMin = %d, want 0 after DecreaseKey", got)
	}
	if data := h.GetData(0); data.Parent != 1 {
		t.Errorf("GetData(0).Parent = %d, want 1", data.Parent)
	}
}

func TestQueryHeapWasInsertedAfterDeleteMin(t *testing.T) {
	h := NewQueryHeap(2)
	h.Insert(0, 5, HeapData{Parent: 0})
	h.DeleteMin()

	if !h.WasInserted(0) {
		t.Error("WasInserted should remain true after DeleteMin, until Clear")
	}
	if !h.WasRemoved(0) {
		t.Error("WasRemoved should be true after DeleteMin")
	}
	if h.GetKey(0) != 5 {
		t.Errorf("GetKey after DeleteMin = %d, want 5", h.GetKey(0))
	}
}

func TestQueryHeapClearResetsEpoch(t *testing.T) {
	h := NewQueryHeap(2)
	h.Insert(0, 5, HeapData{Parent: 0})
	h.Clear()

	if h.WasInserted(0) {
		t.Error("WasInserted should be false for a new epoch after Clear")
	}
	if !h.Empty() {
		t.Error("Empty should be true right after Clear")
	}
}

func TestUnpackPathExpandsShortcut(t *testing.T) {
	// Linear chain of one-way segments: heavy contraction should produce at
	// least one shortcut somewhere in a 4-node chain.
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 1, ToNodeID: 2, Weight: 100},
			{FromNodeID: 2, ToNodeID: 3, Weight: 200},
			{FromNodeID: 3, ToNodeID: 4, Weight: 300},
			{FromNodeID: 4, ToNodeID: 5, Weight: 400},
		},
		NodeLat: map[osm.NodeID]float64{1: 1.0, 2: 1.1, 3: 1.2, 4: 1.3, 5: 1.4},
		NodeLon: map[osm.NodeID]float64{1: 103.0, 2: 103.1, 3: 103.2, 4: 103.3, 5: 103.4},
	}
	g := graph.Build(result)
	chg := ch.Contract(g)
	sed := NewSearchEngineData(chg.NumNodes)

	weight, packed, err := biDijkstra(chg, sed, 0, 3)
	if err != nil {
		t.Fatalf("biDijkstra: %v", err)
	}
	unpacked, err := UnpackPath(chg, packed)
	if err != nil {
		t.Fatalf("UnpackPath: %v", err)
	}
	if unpacked[0] != 0 || unpacked[len(unpacked)-1] != 3 {
		t.Errorf("unpacked path endpoints wrong: %v", unpacked)
	}

	// Every consecutive pair in the unpacked path must be a direct original
	// arc (middle == -1), never a shortcut.
	var sum uint32
	for i := 0; i+1 < len(unpacked); i++ {
		w, middle, found := chg.FindEdgeInEitherDirection(unpacked[i], unpacked[i+1])
		if !found {
			t.Fatalf("no arc between unpacked[%d]=%d and unpacked[%d]=%d", i, unpacked[i], i+1, unpacked[i+1])
		}
		if middle >= 0 {
			t.Errorf("unpacked path still contains a shortcut at %d->%d", unpacked[i], unpacked[i+1])
		}
		sum += w
	}
	if int(sum) != weight {
		t.Errorf("unpacked arc weights sum to %d, want %d", sum, weight)
	}
}
