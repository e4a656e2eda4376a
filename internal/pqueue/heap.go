// Package pqueue implements the indexed binary min-heap the classical solver
// uses as its open-set frontier: insert, extract-min, and an O(log n)
// decrease-key keyed by compact vertex index, with an explicit operation
// counter so the solver can report heap-operation metrics without
// re-deriving them from a stdlib container/heap wrapper.
package pqueue

// entry is one heap slot: a vertex key and its current priority.
type entry struct {
	key      int
	priority float64
}

// IndexedHeap is a 0-indexed binary min-heap over (key, priority) pairs,
// with a position map enabling decrease-key without a linear scan.
type IndexedHeap struct {
	items []entry
	pos   map[int]int // key -> index into items, absent if key not in heap
	ops   uint64
}

// New returns an empty heap with room for capacity entries pre-allocated.
func New(capacity int) *IndexedHeap {
	return &IndexedHeap{
		items: make([]entry, 0, capacity),
		pos:   make(map[int]int, capacity),
	}
}

// Len returns the number of entries currently in the heap.
func (h *IndexedHeap) Len() int { return len(h.items) }

// IsEmpty reports whether the heap has no entries.
func (h *IndexedHeap) IsEmpty() bool { return len(h.items) == 0 }

// Operations returns the running count of heap mutations (insert,
// extract-min, decrease-key), exposed for solver metrics as heapOperations.
func (h *IndexedHeap) Operations() uint64 { return h.ops }

// Contains reports whether key currently has an entry in the heap.
func (h *IndexedHeap) Contains(key int) bool {
	_, ok := h.pos[key]
	return ok
}

// Insert adds key with the given priority. If key is already present this
// behaves like DecreaseKey: a no-op unless priority improves on the
// existing one, since a caller asking to insert an already-open vertex is
// really asking to relax it.
func (h *IndexedHeap) Insert(key int, priority float64) {
	if _, ok := h.pos[key]; ok {
		h.DecreaseKey(key, priority)
		return
	}
	h.items = append(h.items, entry{key: key, priority: priority})
	i := len(h.items) - 1
	h.pos[key] = i
	h.ops++
	h.siftUp(i)
}

// DecreaseKey lowers key's priority. If key is not yet in the heap it is
// inserted. If the new priority does not improve on the current one, this
// is a no-op (the heap never increases a key's priority).
func (h *IndexedHeap) DecreaseKey(key int, priority float64) {
	i, ok := h.pos[key]
	if !ok {
		h.Insert(key, priority)
		return
	}
	if priority >= h.items[i].priority {
		return
	}
	h.decreaseAt(i, priority)
}

func (h *IndexedHeap) decreaseAt(i int, priority float64) {
	h.items[i].priority = priority
	h.ops++
	h.siftUp(i)
}

// ExtractMin removes and returns the entry with the lowest priority.
func (h *IndexedHeap) ExtractMin() (key int, priority float64, ok bool) {
	if len(h.items) == 0 {
		return 0, 0, false
	}
	h.ops++
	top := h.items[0]
	last := len(h.items) - 1
	h.swap(0, last)
	h.items = h.items[:last]
	delete(h.pos, top.key)
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return top.key, top.priority, true
}

func (h *IndexedHeap) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.pos[h.items[i].key] = i
	h.pos[h.items[j].key] = j
}

func (h *IndexedHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[parent].priority <= h.items[i].priority {
			break
		}
		h.swap(parent, i)
		i = parent
	}
}

func (h *IndexedHeap) siftDown(i int) {
	n := len(h.items)
	for {
		left, right := 2*i+1, 2*i+2
		smallest := i
		if left < n && h.items[left].priority < h.items[smallest].priority {
			smallest = left
		}
		if right < n && h.items[right].priority < h.items[smallest].priority {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.swap(i, smallest)
		i = smallest
	}
}
