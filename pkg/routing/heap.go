package routing

// IntMax is the sentinel for "unreachable" / "no route" distances, the
// signed counterpart of the original node-based INT_MAX convention. Leg
// distances that never improve on this value indicate an unroutable leg.
const IntMax = int(^uint32(0) >> 1) // 2^31 - 1

// noNode marks the absence of a node in predecessor/parent fields.
const noNode = ^uint32(0)

// HeapData is the satellite data carried alongside each QueryHeap entry.
// Parent is the node this entry was reached from; a heap-seeded node is
// its own parent, which RetrievePackedPathFromHeap uses as the "root of
// this search direction" sentinel instead of a separate out-of-band flag.
type HeapData struct {
	Parent uint32
}

// QueryHeap is an addressable binary min-heap over edge-based node ids. Keys
// are signed: a leg's seed key is accumulated_distance - weight1, which is
// negative whenever weight1 exceeds the distance accumulated so far (in the
// first leg, whenever weight1 > 0), so this cannot be a uint32 heap. Clearing
// between queries is epoch-tagged: Clear() does not walk or zero any
// per-node array, it just bumps curEpoch, which is O(1) and therefore
// within the O(touched) bound the query loop relies on.
type QueryHeap struct {
	heapArr  []uint32 // binary heap array of node ids, indexed by heap position
	heapPos  []int32  // node -> position in heapArr, or -1 if not currently in the heap
	keyOf    []int    // node -> key, valid only if epoch[node] == curEpoch
	dataOf   []HeapData
	epoch    []uint32
	curEpoch uint32
	seq      []uint32 // node -> insertion/decrease sequence number, for FIFO tie-break
	nextSeq  uint32
}

// NewQueryHeap creates a QueryHeap sized for a graph with numNodes nodes.
func NewQueryHeap(numNodes uint32) *QueryHeap {
	h := &QueryHeap{
		heapArr: make([]uint32, 0, 256),
		heapPos: make([]int32, numNodes),
		keyOf:   make([]int, numNodes),
		dataOf:  make([]HeapData, numNodes),
		epoch:   make([]uint32, numNodes),
		seq:     make([]uint32, numNodes),

		// Start one epoch past the zeroed epoch array so that no node
		// reports WasInserted before its first Insert.
		curEpoch: 1,
	}
	for i := range h.heapPos {
		h.heapPos[i] = -1
	}
	return h
}

// Clear resets the heap for a new query in O(1), by invalidating every
// node's epoch tag rather than walking the touched set.
func (h *QueryHeap) Clear() {
	h.heapArr = h.heapArr[:0]
	h.curEpoch++
}

// Size returns the number of nodes currently in the heap (not counting
// nodes that were inserted and later deleted).
func (h *QueryHeap) Size() int { return len(h.heapArr) }

// Empty reports whether the heap currently holds no nodes.
func (h *QueryHeap) Empty() bool { return len(h.heapArr) == 0 }

// WasInserted reports whether node has been inserted during the current
// query, including nodes already popped by DeleteMin — GetKey/GetData
// remain valid for those until the next Clear.
func (h *QueryHeap) WasInserted(node uint32) bool {
	return h.epoch[node] == h.curEpoch
}

// WasRemoved reports whether node was inserted and then removed from the
// heap by DeleteMin (it is "settled": its key is final for this query).
func (h *QueryHeap) WasRemoved(node uint32) bool {
	return h.WasInserted(node) && h.heapPos[node] == -1
}

// GetKey returns node's current key. Valid only if WasInserted(node).
func (h *QueryHeap) GetKey(node uint32) int { return h.keyOf[node] }

// GetData returns node's satellite data. Valid only if WasInserted(node).
func (h *QueryHeap) GetData(node uint32) HeapData { return h.dataOf[node] }

// Insert adds node to the heap with the given key and data. node must not
// already be present in the current query epoch.
func (h *QueryHeap) Insert(node uint32, key int, data HeapData) {
	h.epoch[node] = h.curEpoch
	h.keyOf[node] = key
	h.dataOf[node] = data
	h.seq[node] = h.nextSeq
	h.nextSeq++

	pos := int32(len(h.heapArr))
	h.heapArr = append(h.heapArr, node)
	h.heapPos[node] = pos
	h.siftUp(pos)
}

// DecreaseKey lowers node's key and its heap position accordingly. The
// caller is responsible for only calling this with a key less than the
// current one (per the QueryHeap contract); no-op otherwise.
func (h *QueryHeap) DecreaseKey(node uint32, key int, data HeapData) {
	if key >= h.keyOf[node] {
		return
	}
	h.keyOf[node] = key
	h.dataOf[node] = data
	h.seq[node] = h.nextSeq
	h.nextSeq++
	h.siftUp(h.heapPos[node])
}

// DeleteMin removes and returns the node with the smallest key. The node
// remains "inserted" (GetKey/GetData stay valid) until the heap is cleared.
func (h *QueryHeap) DeleteMin() uint32 {
	min := h.heapArr[0]
	last := len(h.heapArr) - 1
	h.heapArr[0] = h.heapArr[last]
	h.heapPos[h.heapArr[0]] = 0
	h.heapArr = h.heapArr[:last]
	h.heapPos[min] = -1
	if last > 0 {
		h.siftDown(0)
	}
	return min
}

// MinKey returns the smallest key currently in the heap, or IntMax if empty.
func (h *QueryHeap) MinKey() int {
	if len(h.heapArr) == 0 {
		return IntMax
	}
	return h.keyOf[h.heapArr[0]]
}

// less orders heap positions by (key, sequence) so that nodes with equal
// keys pop in first-inserted-or-decreased order (FIFO tie-break).
func (h *QueryHeap) less(a, b uint32) bool {
	ka, kb := h.keyOf[a], h.keyOf[b]
	if ka != kb {
		return ka < kb
	}
	return h.seq[a] < h.seq[b]
}

func (h *QueryHeap) siftUp(pos int32) {
	node := h.heapArr[pos]
	for pos > 0 {
		parentPos := (pos - 1) / 2
		parentNode := h.heapArr[parentPos]
		if !h.less(node, parentNode) {
			break
		}
		h.heapArr[pos] = parentNode
		h.heapPos[parentNode] = pos
		pos = parentPos
	}
	h.heapArr[pos] = node
	h.heapPos[node] = pos
}

func (h *QueryHeap) siftDown(pos int32) {
	n := int32(len(h.heapArr))
	node := h.heapArr[pos]
	for {
		left := 2*pos + 1
		if left >= n {
			break
		}
		smallest := left
		if right := left + 1; right < n && h.less(h.heapArr[right], h.heapArr[left]) {
			smallest = right
		}
		if !h.less(h.heapArr[smallest], node) {
			break
		}
		h.heapArr[pos] = h.heapArr[smallest]
		h.heapPos[h.heapArr[pos]] = pos
		pos = smallest
	}
	h.heapArr[pos] = node
	h.heapPos[node] = pos
}

// SearchEngineData bundles the four heaps a single query needs: one
// forward/reverse pair per target orientation. Pooled per worker via
// sync.Pool (see engine.go) so a query never allocates heap backing arrays.
type SearchEngineData struct {
	ForwardHeap1 *QueryHeap
	ForwardHeap2 *QueryHeap
	ReverseHeap1 *QueryHeap
	ReverseHeap2 *QueryHeap
}

// NewSearchEngineData allocates a SearchEngineData sized for numNodes.
func NewSearchEngineData(numNodes uint32) *SearchEngineData {
	return &SearchEngineData{
		ForwardHeap1: NewQueryHeap(numNodes),
		ForwardHeap2: NewQueryHeap(numNodes),
		ReverseHeap1: NewQueryHeap(numNodes),
		ReverseHeap2: NewQueryHeap(numNodes),
	}
}

// Clear resets all four heaps for reuse by the next query.
func (d *SearchEngineData) Clear() {
	d.ForwardHeap1.Clear()
	d.ForwardHeap2.Clear()
	d.ReverseHeap1.Clear()
	d.ReverseHeap2.Clear()
}
