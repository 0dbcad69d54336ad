package csr

// Levels is a depth-sliced CSR encoding of an n-gram trie.
//   - Depth 0 is the (implicit) root, depth d holds the n-grams of length d.
//   - IDs[d-1] and Counts[d-1] are parallel arrays with one entry per node at
//     depth d. Children of one parent are contiguous and sorted ascending by id.
//   - Pointers[d] has one entry per node at depth d plus a trailing end marker.
//     The children of the i-th node at depth d live in
//     IDs[d][Pointers[d][i]:Pointers[d][i+1]].
//
// Pointers[0] therefore is always [0, len(IDs[0])]. Nodes at the deepest
// level have no pointer array.
type Levels struct {
	IDs      [][]int32  // token ids per level
	Counts   [][]uint32 // occurrence counts per level
	Pointers [][]int32  // child spans per parent level
}

// NewLevels allocates empty arrays for n levels.
func NewLevels(n int) *Levels {
	l := &Levels{
		IDs:      make([][]int32, n),
		Counts:   make([][]uint32, n),
		Pointers: make([][]int32, n),
	}
	for d := 0; d < n; d++ {
		l.IDs[d] = []int32{}
		l.Counts[d] = []uint32{}
		l.Pointers[d] = []int32{0}
	}
	if n > 0 {
		l.Pointers[0] = []int32{0, 0} // the root is the one and only node at depth 0
	}
	return l
}

// Depth returns the number of levels.
func (l *Levels) Depth() int { return len(l.IDs) }

// Width returns the number of nodes at depth d (1-based). Depth 0 is the root.
func (l *Levels) Width(d int) int {
	if d == 0 {
		return 1
	}
	if d < 0 || d > len(l.IDs) {
		return 0
	}
	return len(l.IDs[d-1])
}

// Span returns the children range [low, high) of node i at depth d,
// indexing into IDs[d]/Counts[d]. For the deepest level the span is empty.
func (l *Levels) Span(d int, i int) (low, high int) {
	if d < 0 || d >= len(l.Pointers) {
		return 0, 0
	}
	p := l.Pointers[d]
	if i < 0 || i+1 >= len(p) {
		return 0, 0
	}
	return int(p[i]), int(p[i+1])
}

// Size returns the total number of array cells held, a rough memory figure.
func (l *Levels) Size() int {
	size := 0
	for d := range l.IDs {
		size += len(l.IDs[d]) + len(l.Counts[d]) + len(l.Pointers[d])
	}
	return size
}

// Insert places a new node with token id at position pos of depth d (1-based),
// as a child of node parent at depth d-1. pos has to lie within (or at the
// end of) the parent's span.
//
// It splices IDs/Counts at depth d, gives the new node an empty child span
// (if depth d is not the deepest level), and shifts every pointer of the
// parent level after parent by one. This costs O(total array size) and
// should only be used sparingly after compaction.
func (l *Levels) Insert(d int, parent int, pos int, id int32) {
	assert(d >= 1 && d <= len(l.IDs), "csr insert depth out of range")
	l.IDs[d-1] = insertInt32(l.IDs[d-1], pos, id)
	l.Counts[d-1] = insertUint32(l.Counts[d-1], pos, 0)
	if d < len(l.Pointers) {
		// empty span starting where the former occupant of pos started
		l.Pointers[d] = insertInt32(l.Pointers[d], pos, l.Pointers[d][pos])
	}
	above := l.Pointers[d-1]
	for i := parent + 1; i < len(above); i++ {
		above[i]++
	}
}

func insertInt32(arr []int32, index int, value int32) []int32 {
	arr = append(arr, 0)
	copy(arr[index+1:], arr[index:])
	arr[index] = value
	return arr
}

func insertUint32(arr []uint32, index int, value uint32) []uint32 {
	arr = append(arr, 0)
	copy(arr[index+1:], arr[index:])
	arr[index] = value
	return arr
}

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
