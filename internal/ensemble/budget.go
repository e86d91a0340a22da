package ensemble

import "time"

// Budget is an optional wall-clock limit on an aggregation.
// The zero value is unlimited.
type Budget struct {
	limit   time.Duration
	bounded bool
}

// Unlimited returns a budget that never runs out.
func Unlimited() Budget {
	return Budget{}
}

// Limit returns a budget of d. A zero budget stops after the first
// completed realization.
func Limit(d time.Duration) Budget {
	if d < 0 {
		d = 0
	}
	return Budget{limit: d, bounded: true}
}

// Bounded reports whether the budget has a limit.
func (b Budget) Bounded() bool {
	return b.bounded
}

// Duration is the limit, or zero for an unlimited budget.
func (b Budget) Duration() time.Duration {
	return b.limit
}

// Exhausted reports whether elapsed has used up the budget.
func (b Budget) Exhausted(elapsed time.Duration) bool {
	return b.bounded && elapsed >= b.limit
}

func (b Budget) String() string {
	if !b.bounded {
		return "unlimited"
	}
	return b.limit.String()
}
