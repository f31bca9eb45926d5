// Command demo builds a small LP with gonum's dense matrix type (the
// teacher's own representation for A before it reaches the solver),
// converts it to the sparse Matrix the engine works over, solves it
// with the primal simplex, polishes the result with the refinement
// driver, and prints the statistics report — the same
// PrintC/PrintA/PrintB/Solve sequence the teacher's main.go runs, now
// against the revised-simplex engine instead of lp.
package main

import (
	"context"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/qlog/revsimplex/model"
	"github.com/qlog/revsimplex/pricing"
	"github.com/qlog/revsimplex/refine"
	"github.com/qlog/revsimplex/simplex"
)

// denseToMatrix converts a dense gonum matrix (row-major, the shape a
// hand-built or file-read LP naturally arrives in) to the engine's
// column-major sparse Matrix.
func denseToMatrix(a *mat.Dense) *model.Matrix {
	rows, cols := a.Dims()
	columns := make([][]float64, cols)
	for j := 0; j < cols; j++ {
		col := make([]float64, rows)
		for i := 0; i < rows; i++ {
			col[i] = a.At(i, j)
		}
		columns[j] = col
	}
	return model.NewMatrixFromColumns(rows, columns)
}

func main() {
	// minimize x + 2y s.t. 2 <= x + y <= inf, x - y <= 1, 0 <= x,y <= 10
	a := mat.NewDense(2, 2, []float64{
		1, 1,
		1, -1,
	})
	c := []float64{1, 2}
	lhs := []float64{2, -model.Inf}
	rhs := []float64{model.Inf, 1}
	lo := []float64{0, 0}
	hi := []float64{10, 10}

	p := model.NewProblem(model.Minimize, c, denseToMatrix(a), lhs, rhs, lo, hi)

	fmt.Println("c:", c)
	fmt.Println("lhs:", lhs, "rhs:", rhs)
	fmt.Println("lo:", lo, "hi:", hi)

	e := simplex.New(p, pricing.NewDevex(p.NumRows()), simplex.DefaultConfig())
	status, err := e.Solve(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "solve failed:", err)
		os.Exit(1)
	}
	fmt.Println("status:", status)
	if status != simplex.Optimal {
		e.Stats().Report(os.Stdout)
		return
	}
	fmt.Printf("objective: %v\n", e.Value())

	d, err := refine.New(e, refine.DefaultConfig())
	if err != nil {
		fmt.Fprintln(os.Stderr, "refine setup failed:", err)
		os.Exit(1)
	}
	result, err := d.Refine(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "refine failed:", err)
		os.Exit(1)
	}
	fmt.Println("refine status:", result.Status, "float-adjacent:", result.FloatAdjacent)
	for id, x := range result.X[:p.NumCols()] {
		fmt.Printf("x[%d] = %s\n", id, x.String())
	}
	result.Quality.ReportQuality(os.Stdout)

	e.Stats().Report(os.Stdout)
}
