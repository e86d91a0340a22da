package ensemble

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestQuantileLevels(t *testing.T) {
	tests := []struct {
		ci, lo, hi float64
	}{
		{0.95, 1 - 0.95, 0.95},
		{0.5, 0.5, 0.5},
		{0.2, 0.2, 0.8},
	}
	for _, tt := range tests {
		lo, hi := QuantileLevels(tt.ci)
		if lo != tt.lo || hi != tt.hi {
			t.Errorf("QuantileLevels(%v) = (%v, %v), want (%v, %v)", tt.ci, lo, hi, tt.lo, tt.hi)
		}
	}
}

func TestBands(t *testing.T) {
	// Column 0 is symmetric, column 1 is skewed so its mean exceeds the
	// upper quantile at a 50% level.
	samples := mat.NewDense(5, 2, []float64{
		1, 0,
		2, 0,
		3, 0,
		4, 0,
		5, 100,
	})

	bands := Bands(samples, 0.5)
	if len(bands) != 2 {
		t.Fatalf("got %d bands, want 2", len(bands))
	}
	if bands[0].Mean != 3 {
		t.Errorf("column 0 mean = %v, want 3", bands[0].Mean)
	}
	if bands[1].Mean != 20 {
		t.Errorf("column 1 mean = %v, want 20", bands[1].Mean)
	}
	for j, b := range bands {
		if !(b.Lower <= b.Mean && b.Mean <= b.Upper) {
			t.Errorf("column %d: %v <= %v <= %v violated", j, b.Lower, b.Mean, b.Upper)
		}
	}
	if bands[1].Upper != 20 {
		t.Errorf("column 1 upper = %v, want widened to the mean 20", bands[1].Upper)
	}

	// Sorting a column must not reorder the caller's matrix.
	if samples.At(4, 1) != 100 || samples.At(0, 0) != 1 {
		t.Error("Bands mutated its input")
	}
}

func TestQuantile_LinearBetweenOrderStatistics(t *testing.T) {
	hundred := make([]float64, 100)
	for i := range hundred {
		hundred[i] = float64(i + 1)
	}

	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"three upper", []float64{1, 2, 3}, 0.95, 2.9},
		{"three lower", []float64{1, 2, 3}, 0.05, 1.1},
		{"three median", []float64{1, 2, 3}, 0.5, 2},
		{"hundred upper", hundred, 0.95, 95.05},
		{"hundred lower", hundred, 0.05, 5.95},
		{"minimum", hundred, 0, 1},
		{"maximum", hundred, 1, 100},
		{"single value", []float64{7}, 0.95, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := quantile(tt.p, tt.sorted); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("quantile(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestBands_MatchesPercentileDefaults(t *testing.T) {
	samples := mat.NewDense(3, 1, []float64{3, 1, 2})
	b := Bands(samples, 0.95)[0]
	if math.Abs(b.Lower-1.1) > 1e-9 || math.Abs(b.Upper-2.9) > 1e-9 {
		t.Errorf("band = [%v, %v], want [1.1, 2.9]", b.Lower, b.Upper)
	}
}
