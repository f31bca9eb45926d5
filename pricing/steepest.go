package pricing

// SteepestEdge implements a steepest-edge-weighted pricing rule: γ_j
// approximates ‖B^{-1}a_j‖² so that the chosen entering variable
// promises the largest actual movement in x-space per unit of reduced
// cost, not just the largest reduced cost.
//
// The exact steepest-edge recurrence needs the cross term
// τ_q = a_qᵀ B^{-T}B^{-1}a_r, which requires retaining the whole
// reference framework's direction history. This implementation uses
// the common cheap approximation τ_q ≈ α_q (the pivot-row entry
// itself) rather than carrying that extra state, trading exactness for
// the same O(row size) update cost as Devex — flagged here as an
// approximation rather than attributed to a specific
// pack source, since the pack contains no Go steepest-edge
// implementation to ground it on directly.
type SteepestEdge struct {
	weight map[int]float64
	basicW []float64
}

// NewSteepestEdge returns a SteepestEdge pricer with every weight
// initialized to 1 (equivalent to Dantzig's rule until the first
// update).
func NewSteepestEdge(m int) *SteepestEdge {
	s := &SteepestEdge{weight: make(map[int]float64)}
	s.Reset(m)
	return s
}

func (s *SteepestEdge) weightOf(id int) float64 {
	if w, ok := s.weight[id]; ok {
		return w
	}
	return 1
}

// SelectEnter picks the candidate maximizing reducedCost(id)^2/weight.
func (s *SteepestEdge) SelectEnter(candidates []Candidate, reducedCost func(id int) float64) (Candidate, bool) {
	best := Candidate{}
	bestScore := 0.0
	found := false
	const eps = 1e-9
	for _, c := range candidates {
		rc := reducedCost(c.ID)
		if rc*c.Sign >= -eps {
			continue
		}
		score := (rc * rc) / s.weightOf(c.ID)
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
func (s *SteepestEdge) SelectLeave(m int, infeasibility func(pos int) float64) (int, bool) {
	best := -1
	bestScore := 0.0
	const eps = 1e-9
	for pos := 0; pos < m; pos++ {
		inf := infeasibility(pos)
		if inf > -eps && inf < eps {
			continue
		}
		w := 1.0
		if pos < len(s.basicW) {
			w = s.basicW[pos]
		}
		score := (inf * inf) / w
		if best < 0 || score > bestScore {
			bestScore = score
			best = pos
		}
	}
	return best, best >= 0
}

// UpdateWeights applies the approximate steepest-edge recurrence
// described in the type's doc comment.
func (s *SteepestEdge) UpdateWeights(leavePos int, leaveID, enterID int, pivotColumn []float64, pivotRow map[int]float64) {
	alphaR := pivotColumn[leavePos]
	if alphaR == 0 {
		return
	}
	gammaEnter := s.weightOf(enterID)

	for id, alphaQ := range pivotRow {
		if id == enterID {
			continue
		}
		ratio := alphaQ / alphaR
		updated := s.weightOf(id) - 2*ratio*alphaQ + ratio*ratio*gammaEnter
		if updated < 1e-10 {
			updated = 1e-10
		}
		s.weight[id] = updated
	}

	leaveW := gammaEnter / (alphaR * alphaR)
	if leaveW < 1e-10 {
		leaveW = 1e-10
	}
	s.weight[leaveID] = leaveW
	delete(s.weight, enterID)
	if leavePos < len(s.basicW) {
		s.basicW[leavePos] = 1
	}
}

// Reset reinitializes all weights to 1.
func (s *SteepestEdge) Reset(m int) {
	s.weight = make(map[int]float64)
	s.basicW = make([]float64, m)
	for i := range s.basicW {
		s.basicW[i] = 1
	}
}

// Clone returns an independent copy.
func (s *SteepestEdge) Clone() Pricer {
	cp := &SteepestEdge{weight: make(map[int]float64, len(s.weight)), basicW: append([]float64(nil), s.basicW...)}
	for k, v := range s.weight {
		cp.weight[k] = v
	}
	return cp
}
