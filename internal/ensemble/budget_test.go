package ensemble

import (
	"testing"
	"time"
)

func TestBudget(t *testing.T) {
	tests := []struct {
		name      string
		budget    Budget
		elapsed   time.Duration
		exhausted bool
	}{
		{"zero value never runs out", Budget{}, time.Hour, false},
		{"unlimited", Unlimited(), 24 * time.Hour, false},
		{"zero limit", Limit(0), 0, true},
		{"negative limit clamps to zero", Limit(-time.Second), 0, true},
		{"under limit", Limit(time.Second), 500 * time.Millisecond, false},
		{"at limit", Limit(time.Second), time.Second, true},
		{"over limit", Limit(time.Second), 2 * time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.budget.Exhausted(tt.elapsed); got != tt.exhausted {
				t.Errorf("Exhausted(%v) = %v, want %v", tt.elapsed, got, tt.exhausted)
			}
		})
	}
}

func TestBudget_String(t *testing.T) {
	if got := Unlimited().String(); got != "unlimited" {
		t.Errorf("String() = %q", got)
	}
	b := Limit(30 * time.Second)
	if got := b.String(); got != "30s" {
		t.Errorf("String() = %q", got)
	}
	if !b.Bounded() || b.Duration() != 30*time.Second {
		t.Errorf("Limit(30s) = %+v", b)
	}
}
