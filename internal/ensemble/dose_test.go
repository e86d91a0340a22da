package ensemble

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSecondDoseWeekly(t *testing.T) {
	ones := make([]float64, 64)
	for i := range ones {
		ones[i] = 1
	}
	single := make([]float64, 7)
	single[0] = 7

	tests := []struct {
		name  string
		daily []float64
		want  []float64
	}{
		// Echoes start on day 30, so days 28..34 hold 1, 1, 2, 2, 2, 2, 2.
		// The last window covers day 63 only and must not read past it.
		{"partial last week", ones, []float64{1, 1, 1, 1, 12.0 / 7, 2, 2, 2, 2, 2}},
		{"one week", single, []float64{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := SecondDoseWeekly(mat.NewDense(1, len(tt.daily), tt.daily))
			rows, cols := out.Dims()
			if rows != 1 || cols != len(tt.want) {
				t.Fatalf("Dims() = %d x %d, want 1 x %d", rows, cols, len(tt.want))
			}
			for w, want := range tt.want {
				if got := out.At(0, w); math.Abs(got-want) > 1e-12 {
					t.Errorf("week %d = %v, want %v", w, got, want)
				}
			}
		})
	}
}

func TestSecondDoseWeekly_RowsIndependent(t *testing.T) {
	daily := mat.NewDense(2, 7, []float64{
		7, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 14,
	})
	out := SecondDoseWeekly(daily)
	if out.At(0, 0) != 1 || out.At(1, 0) != 2 {
		t.Errorf("got rows %v and %v", out.At(0, 0), out.At(1, 0))
	}
}

func TestSecondDoseWeekly_TrailingWeekHasNoDip(t *testing.T) {
	for _, days := range []int{36, 40, 45, 64} {
		daily := make([]float64, days)
		for i := range daily {
			daily[i] = 3
		}
		out := SecondDoseWeekly(mat.NewDense(1, days, daily))
		_, weeks := out.Dims()
		last := out.At(0, weeks-1)
		if prev := out.At(0, weeks-2); last < prev {
			t.Errorf("days=%d: last week %v below previous %v", days, last, prev)
		}
	}
}
