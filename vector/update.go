package vector

// Update is a dense value array paired with a compact list of active
// indices — the "SSVector" of the Harris ratio test. Between calls to
// Setup the index list is only a superset of the true nonzeros (a
// write that zeroes an entry does not immediately drop its index;
// ClearNum does that explicitly, and Setup rebuilds the list from
// scratch). This matches the ratio test's own usage: it calls
// ClearNum on indices it determines are spurious while scanning, then
// relies on Setup before the next scan.
type Update struct {
	vals   []float64
	active []int
	// pos[i]-1 is the position of index i within active, or 0 if i is
	// not currently listed. Kept so SetValue and ClearNum are O(1).
	pos []int
}

// NewUpdate returns a zeroed update vector of length n.
func NewUpdate(n int) *Update {
	return &Update{
		vals: make([]float64, n),
		pos:  make([]int, n),
	}
}

// Len returns the vector's logical length.
func (u *Update) Len() int { return len(u.vals) }

// Size returns the number of currently active (listed) indices. This
// may exceed the true nonzero count between Setup calls.
func (u *Update) Size() int { return len(u.active) }

// Index returns the k-th active index.
func (u *Update) Index(k int) int { return u.active[k] }

// IndexMem exposes the raw active-index slice, mirroring the source
// API's indexMem() used by the ratio test's phase-1 scan.
func (u *Update) IndexMem() []int { return u.active }

// At returns the value at index i regardless of whether i is listed.
func (u *Update) At(i int) float64 { return u.vals[i] }

// Values returns the raw dense value slice.
func (u *Update) Values() []float64 { return u.vals }

// SetValue writes v at index i, appending i to the active list the
// first time a nonzero value lands there.
func (u *Update) SetValue(i int, v float64) {
	if u.pos[i] == 0 {
		if v == 0 {
			u.vals[i] = 0
			return
		}
		u.active = append(u.active, i)
		u.pos[i] = len(u.active)
	}
	u.vals[i] = v
}

// ClearNum removes the k-th active index from the list and zeroes its
// value, per spec.md §4.2. The removal is a swap-with-last to keep it
// O(1); this reorders the active list but that order is never
// semantically meaningful (the ratio test indexes by Index, not by
// original insertion order).
func (u *Update) ClearNum(k int) {
	i := u.active[k]
	u.vals[i] = 0
	u.pos[i] = 0
	last := len(u.active) - 1
	if k != last {
		moved := u.active[last]
		u.active[k] = moved
		u.pos[moved] = k + 1
	}
	u.active = u.active[:last]
}

// Reset clears every active entry and its value.
func (u *Update) Reset() {
	for _, i := range u.active {
		u.vals[i] = 0
		u.pos[i] = 0
	}
	u.active = u.active[:0]
}

// Setup rebuilds the active list from the current dense values so it
// exactly enumerates the nonzeros, dropping any stale entries left
// behind by in-flight writes that landed on zero.
func (u *Update) Setup() {
	u.active = u.active[:0]
	for i := range u.pos {
		u.pos[i] = 0
	}
	for i, v := range u.vals {
		if v != 0 {
			u.active = append(u.active, i)
			u.pos[i] = len(u.active)
		}
	}
}

// LoadDense overwrites the update vector's contents with a fresh
// dense vector and calls Setup, used when a new direction is computed
// by the LU solve each iteration.
func (u *Update) LoadDense(d *Dense) {
	copy(u.vals, d.Raw())
	u.Setup()
}
