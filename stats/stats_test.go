package stats

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReportShowsHundredPercentTotal(t *testing.T) {
	s := Stats{
		SolvingTime:       10 * time.Millisecond,
		SimplexTime:       8 * time.Millisecond,
		Iterations:        12,
		IterationsPrimal:  10,
		IterationsDual:    2,
		LUFactorizations:  1,
		LUSolves:          12,
		Refinements:       3,
		StallRefinements:  1,
	}

	var buf bytes.Buffer
	s.Report(&buf)
	out := buf.String()

	assert.Contains(t, out, "100.00%")
	assert.Contains(t, out, "refinements        : 3 (1 stalled)")
}

func TestReportZeroSolvingTimeDoesNotDivideByZero(t *testing.T) {
	var buf bytes.Buffer
	Stats{}.Report(&buf)
	assert.Contains(t, buf.String(), "0.00%")
}

func TestReportQualityIncludesShadowSize(t *testing.T) {
	q := Quality{
		ConstraintViolation: 1e-9,
		ShadowSize:          42,
		DenominatorBits:     7,
	}
	var buf bytes.Buffer
	q.ReportQuality(&buf)
	out := buf.String()

	assert.Contains(t, out, "shadow size (bits)  : 42 (max denominator 7)")
}
