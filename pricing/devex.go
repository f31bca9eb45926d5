package pricing

// Devex implements the Devex approximate steepest-edge pricing rule:
// a reference weight per variable that tracks an estimate of the
// entering column's length in the current basis, updated in O(row
// size) per pivot rather than the O(m) exact steepest-edge update.
//
// Grounded on spec.md §4.5's description of the rule and on the
// standard Devex recurrence (Forrest & Goldfarb); no example in the
// retrieval pack implements Devex, so the recurrence itself is not
// transcribed from a pack source — see DESIGN.md.
type Devex struct {
	weight map[int]float64
	basicW []float64 // per basic position, for SelectLeave (dual)
	ref    float64
}

// NewDevex returns a Devex pricer with every weight reset to 1.
func NewDevex(m int) *Devex {
	d := &Devex{weight: make(map[int]float64), ref: 1}
	d.Reset(m)
	return d
}

func (d *Devex) weightOf(id int) float64 {
	if w, ok := d.weight[id]; ok {
		return w
	}
	return 1
}

// SelectEnter picks the candidate maximizing reducedCost(id)^2/weight.
func (d *Devex) SelectEnter(candidates []Candidate, reducedCost func(id int) float64) (Candidate, bool) {
	best := Candidate{}
	bestScore := 0.0
	found := false
	const eps = 1e-9
	for _, c := range candidates {
		rc := reducedCost(c.ID)
		if rc*c.Sign >= -eps {
			continue
		}
		score := (rc * rc) / d.weightOf(c.ID)
		if !found || score > bestScore {
			bestScore = score
			best = c
			found = true
		}
	}
	return best, found
}

// SelectLeave picks the basic position maximizing
// infeasibility(pos)^2/basicW[pos].
func (d *Devex) SelectLeave(m int, infeasibility func(pos int) float64) (int, bool) {
	best := -1
	bestScore := 0.0
	const eps = 1e-9
	for pos := 0; pos < m; pos++ {
		inf := infeasibility(pos)
		if inf > -eps && inf < eps {
			continue
		}
		w := 1.0
		if pos < len(d.basicW) {
			w = d.basicW[pos]
		}
		score := (inf * inf) / w
		if best < 0 || score > bestScore {
			bestScore = score
			best = pos
		}
	}
	return best, best >= 0
}

// UpdateWeights applies the Devex recurrence: every candidate q in the
// pivot row gets gamma_q = max(gamma_q, (alpha_q/alpha_r)^2 * gamma_enter),
// and the leaving variable (now non-basic) is re-seeded at
// max(gamma_enter/alpha_r^2, 1).
func (d *Devex) UpdateWeights(leavePos int, leaveID, enterID int, pivotColumn []float64, pivotRow map[int]float64) {
	alphaR := pivotColumn[leavePos]
	if alphaR == 0 {
		return
	}
	gammaEnter := d.weightOf(enterID)

	for id, alphaQ := range pivotRow {
		if id == enterID {
			continue
		}
		ratio := alphaQ / alphaR
		candidate := ratio * ratio * gammaEnter
		if candidate > d.weightOf(id) {
			d.weight[id] = candidate
		}
	}

	leaveW := gammaEnter / (alphaR * alphaR)
	if leaveW < 1 {
		leaveW = 1
	}
	d.weight[leaveID] = leaveW
	delete(d.weight, enterID)
	if leavePos < len(d.basicW) {
		d.basicW[leavePos] = 1
	}
}

// Reset reinitializes all weights to 1.
func (d *Devex) Reset(m int) {
	d.weight = make(map[int]float64)
	d.basicW = make([]float64, m)
	for i := range d.basicW {
		d.basicW[i] = 1
	}
	d.ref = 1
}

// Clone returns an independent copy.
func (d *Devex) Clone() Pricer {
	cp := &Devex{weight: make(map[int]float64, len(d.weight)), basicW: append([]float64(nil), d.basicW...), ref: d.ref}
	for k, v := range d.weight {
		cp.weight[k] = v
	}
	return cp
}
