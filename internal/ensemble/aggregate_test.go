package ensemble

import (
	"bytes"
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/logging"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/models"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/realization"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/sampler"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testRequest(t *testing.T, n int) Request {
	t.Helper()
	bounds := models.ParameterBounds{
		PPro:     models.Bound{Lower: 0.6, Upper: 0.7},
		PAnti:    models.Bound{Lower: 0.15, Upper: 0.25},
		Pressure: models.Bound{Lower: 0.02, Upper: 0.05},
		Tau:      models.Bound{Lower: 4, Upper: 5},
		NV0:      models.Bound{Lower: 0.0004, Upper: 0.002},
		NVMax:    models.Bound{Lower: 0.04, Upper: 0.07},
	}
	res, err := sampler.Sample(bounds, n, rand.NewPCG(12345, 0))
	if err != nil {
		t.Fatalf("sampling: %v", err)
	}
	dates, err := models.ParseDateRange("2020-12-30", "2021-03-31")
	if err != nil {
		t.Fatal(err)
	}
	return Request{
		Sets:   res.Sets,
		Config: models.SimulationConfig{N: 1000, CI: 0.95, Dates: dates},
		Seed:   12345,
	}
}

func TestAggregate_Shape(t *testing.T) {
	req := testRequest(t, 20)
	res, err := New(WithWorkers(1)).Aggregate(req)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if res.NumberFinishedSamples != 20 || res.Requested != 20 || res.Truncated() {
		t.Errorf("finished %d of %d", res.NumberFinishedSamples, res.Requested)
	}
	horizon := req.Config.Horizon()
	weeks := len(req.Config.Dates.Weekly())
	for _, m := range models.Metrics() {
		s, ok := res.Series[m]
		if !ok {
			t.Fatalf("missing metric %s", m)
		}
		want := horizon
		if m == models.MetricDaily {
			want = weeks
		}
		if s.Len() != want || len(s.Mean) != want || len(s.Lower) != want || len(s.Upper) != want {
			t.Errorf("%s: got %d dates, %d means; want %d", m, s.Len(), len(s.Mean), want)
		}
		for i := range s.Mean {
			if !(s.Lower[i] <= s.Mean[i] && s.Mean[i] <= s.Upper[i]) {
				t.Errorf("%s[%d]: band %v <= %v <= %v violated", m, i, s.Lower[i], s.Mean[i], s.Upper[i])
			}
			if math.IsNaN(s.Mean[i]) {
				t.Errorf("%s[%d]: NaN mean", m, i)
			}
		}
	}
	if got := res.Series[models.MetricDaily].Dates[1].Sub(res.Series[models.MetricDaily].Dates[0]); got != 7*24*time.Hour {
		t.Errorf("daily metric grid spacing = %v, want one week", got)
	}
}

func TestAggregate_SingleRealizationCollapses(t *testing.T) {
	req := testRequest(t, 1)
	res, err := New().Aggregate(req)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	for m, s := range res.Series {
		for i := range s.Mean {
			if s.Lower[i] != s.Mean[i] || s.Upper[i] != s.Mean[i] {
				t.Fatalf("%s[%d]: expected a collapsed band, got %v/%v/%v", m, i, s.Lower[i], s.Mean[i], s.Upper[i])
			}
		}
	}
}

func TestAggregate_SameResultForAnyWorkerCount(t *testing.T) {
	req := testRequest(t, 30)

	want, err := New(WithWorkers(1)).Aggregate(req)
	if err != nil {
		t.Fatalf("sequential Aggregate: %v", err)
	}
	for _, workers := range []int{2, 4, 8} {
		got, err := New(WithWorkers(workers)).Aggregate(req)
		if err != nil {
			t.Fatalf("Aggregate(workers=%d): %v", workers, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("workers=%d differs from sequential (-want +got):\n%s", workers, diff)
		}
	}
}

func TestAggregate_ZeroBudgetRunsOne(t *testing.T) {
	req := testRequest(t, 50)
	req.Budget = Limit(0)

	res, err := New(WithWorkers(1)).Aggregate(req)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if res.NumberFinishedSamples != 1 {
		t.Errorf("finished = %d, want 1", res.NumberFinishedSamples)
	}
	if !res.Truncated() {
		t.Error("expected a truncated result")
	}
	for m, s := range res.Series {
		for i := range s.Mean {
			if math.IsNaN(s.Mean[i]) || math.IsNaN(s.Lower[i]) || math.IsNaN(s.Upper[i]) {
				t.Fatalf("%s[%d]: NaN in truncated result", m, i)
			}
		}
	}
}

func TestAggregate_ZeroBudgetParallel(t *testing.T) {
	req := testRequest(t, 50)
	req.Budget = Limit(0)

	res, err := New(WithWorkers(4)).Aggregate(req)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if res.NumberFinishedSamples < 1 || res.NumberFinishedSamples > 50 {
		t.Errorf("finished = %d, want within [1, 50]", res.NumberFinishedSamples)
	}
}

func TestAggregate_BudgetWithFakeClock(t *testing.T) {
	req := testRequest(t, 10)
	req.Budget = Limit(2500 * time.Millisecond)

	a := New(WithWorkers(1))
	var ticks atomic.Int64
	base := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	// Every clock reading advances one second.
	a.now = func() time.Time {
		return base.Add(time.Duration(ticks.Add(1)-1) * time.Second)
	}

	res, err := a.Aggregate(req)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if res.NumberFinishedSamples != 3 {
		t.Errorf("finished = %d, want 3", res.NumberFinishedSamples)
	}
}

func TestAggregate_TruncatedIsPrefix(t *testing.T) {
	full := testRequest(t, 10)
	prefix := full
	prefix.Sets = full.Sets[:3]

	want, err := New(WithWorkers(1)).Aggregate(prefix)
	if err != nil {
		t.Fatal(err)
	}

	full.Budget = Limit(2500 * time.Millisecond)
	a := New(WithWorkers(1))
	var ticks atomic.Int64
	a.now = func() time.Time {
		return time.Unix(ticks.Add(1)-1, 0)
	}
	got, err := a.Aggregate(full)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(want.Series, got.Series); diff != "" {
		t.Errorf("truncated run differs from the 3-set prefix (-want +got):\n%s", diff)
	}
}

func TestAggregate_Observer(t *testing.T) {
	req := testRequest(t, 4)
	var days atomic.Int64
	eng := realization.New(realization.WithObserver(func(realization.State) { days.Add(1) }))

	if _, err := New(WithWorkers(2), WithEngine(eng)).Aggregate(req); err != nil {
		t.Fatal(err)
	}
	if want := int64(4 * req.Config.Horizon()); days.Load() != want {
		t.Errorf("observer saw %d days, want %d", days.Load(), want)
	}
}

func TestAggregate_InvalidRequest(t *testing.T) {
	good := testRequest(t, 2)

	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{"no sets", func(r *Request) { r.Sets = nil }},
		{"zero population", func(r *Request) { r.Config.N = 0 }},
		{"bad ci", func(r *Request) { r.Config.CI = 1.5 }},
		{"infeasible set", func(r *Request) {
			r.Sets = []models.ParameterSet{{PPro: 0.9, PAnti: 0.9, Tau: 1}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := good
			req.Sets = append([]models.ParameterSet(nil), good.Sets...)
			tt.mutate(&req)
			if _, err := New().Aggregate(req); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := New().Aggregate(Request{}); !errors.Is(err, ErrNoParameterSets) {
		t.Errorf("expected ErrNoParameterSets, got %v", err)
	}
}

func TestNew_Workers(t *testing.T) {
	if got := New(WithWorkers(3)).Workers(); got != 3 {
		t.Errorf("Workers() = %d, want 3", got)
	}
	if got := New(WithWorkers(0)).Workers(); got < 1 {
		t.Errorf("Workers() = %d, want at least 1", got)
	}
}

func TestAggregate_TracesEveryRealization(t *testing.T) {
	req := testRequest(t, 6)
	for _, workers := range []int{1, 3} {
		var buf bytes.Buffer
		agg := New(WithWorkers(workers), WithLogger(logging.NewLogger("trace", &buf)))
		if _, err := agg.Aggregate(req); err != nil {
			t.Fatalf("workers=%d: Aggregate: %v", workers, err)
		}
		if got := strings.Count(buf.String(), "realization finished"); got != 6 {
			t.Errorf("workers=%d: %d realization lines, want 6", workers, got)
		}
	}

	var buf bytes.Buffer
	if _, err := New(WithWorkers(2), WithLogger(logging.NewLogger("debug", &buf))).Aggregate(req); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "realization finished") {
		t.Error("realization lines should only appear at trace level")
	}
}
