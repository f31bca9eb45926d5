package simplex

import "github.com/qlog/revsimplex/model"

// basisSource adapts a Basis+Problem pair to lu.ColumnSource, letting
// the lu package depend on neither model nor simplex.
type basisSource struct {
	p *model.Problem
	b *model.Basis
}

func (s basisSource) Dim() int { return s.b.Size() }

func (s basisSource) VisitColumn(pos int, f func(row int, val float64)) {
	id := s.b.At(pos)
	s.p.Column(id).Visit(f)
}
