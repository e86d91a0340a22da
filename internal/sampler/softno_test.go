package sampler

import (
	"math"
	"testing"
)

func TestSoftNo(t *testing.T) {
	res := &Result{Agnostic: []float64{0.1, 0.2, 0.3}}

	got := res.SoftNo()
	if math.Abs(got.Mean-20) > 1e-9 {
		t.Errorf("Mean = %v, want 20", got.Mean)
	}
	// Population standard deviation of {10, 20, 30}.
	wantStd := math.Sqrt(200.0 / 3)
	if math.Abs(got.Std-wantStd) > 1e-9 {
		t.Errorf("Std = %v, want %v", got.Std, wantStd)
	}
	if math.Abs(got.Lower-(20-wantStd)) > 1e-9 || math.Abs(got.Upper-(20+wantStd)) > 1e-9 {
		t.Errorf("interval = [%v, %v]", got.Lower, got.Upper)
	}
}

func TestSoftNo_ClampsAtZero(t *testing.T) {
	res := &Result{Agnostic: []float64{0, 0, 0, 0.4}}
	got := res.SoftNo()
	if got.Lower != 0 {
		t.Errorf("Lower = %v, want 0", got.Lower)
	}
}

func TestSoftNo_Empty(t *testing.T) {
	if got := (&Result{}).SoftNo(); got != (SoftNoSummary{}) {
		t.Errorf("SoftNo() on empty result = %+v", got)
	}
	var r *Result
	if got := r.SoftNo(); got != (SoftNoSummary{}) {
		t.Errorf("SoftNo() on nil result = %+v", got)
	}
}

func TestSoftNoSummary_String(t *testing.T) {
	tests := []struct {
		name string
		s    SoftNoSummary
		want string
	}{
		{"narrow collapses", SoftNoSummary{Lower: 14.8, Upper: 15.3}, "15%"},
		{"wide range", SoftNoSummary{Lower: 9.6, Upper: 20.2}, "10 - 20%"},
		{"zero", SoftNoSummary{}, "0%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
