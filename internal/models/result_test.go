package models

import (
	"testing"
	"time"
)

func TestEnsembleResult_CloneIsDeep(t *testing.T) {
	d := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	orig := &EnsembleResult{
		Series: map[Metric]Series{
			MetricVaccinated: {
				Dates: []time.Time{d},
				Mean:  []float64{1},
				Lower: []float64{0.5},
				Upper: []float64{1.5},
			},
		},
		NumberFinishedSamples: 3,
		Requested:             4,
	}

	c := orig.Clone()
	c.Series[MetricVaccinated].Mean[0] = 99
	c.Series[MetricVaccinated].Dates[0] = d.AddDate(1, 0, 0)
	delete(c.Series, MetricVaccinated)

	s, ok := orig.Series[MetricVaccinated]
	if !ok {
		t.Fatal("deleting from clone affected original map")
	}
	if s.Mean[0] != 1 {
		t.Errorf("original mean mutated to %v", s.Mean[0])
	}
	if !s.Dates[0].Equal(d) {
		t.Errorf("original date mutated to %v", s.Dates[0])
	}
	if !orig.Truncated() {
		t.Error("3 of 4 samples should be truncated")
	}
	if (*EnsembleResult)(nil).Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}

func TestMetric_Valid(t *testing.T) {
	for _, m := range Metrics() {
		if !m.Valid() {
			t.Errorf("%s should be valid", m)
		}
	}
	if Metric("cases").Valid() {
		t.Error("unknown metric reported valid")
	}
}

func TestTrajectory_Series(t *testing.T) {
	tr := NewTrajectory(2)
	tr.VaccinatedPct = append(tr.VaccinatedPct, 1, 2)
	tr.StockPerHundred = append(tr.StockPerHundred, 3, 4)

	if tr.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tr.Len())
	}
	if got := tr.Series(MetricStock); len(got) != 2 || got[1] != 4 {
		t.Errorf("Series(stock) = %v", got)
	}
	if tr.Series(Metric("bogus")) != nil {
		t.Error("unknown metric should return nil")
	}
}

func TestSimulationConfig_Validate(t *testing.T) {
	r, _ := ParseDateRange("2021-01-01", "2021-01-31")
	tests := []struct {
		name    string
		cfg     SimulationConfig
		wantErr bool
	}{
		{"valid", SimulationConfig{N: 1000, CI: 0.95, Dates: r}, false},
		{"zero population", SimulationConfig{N: 0, CI: 0.95, Dates: r}, true},
		{"ci of one", SimulationConfig{N: 10, CI: 1, Dates: r}, true},
		{"missing dates", SimulationConfig{N: 10, CI: 0.9}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
	if h := (SimulationConfig{Dates: r}).Horizon(); h != 31 {
		t.Errorf("Horizon() = %d, want 31", h)
	}
}

func TestSeries_Every(t *testing.T) {
	r, _ := ParseDateRange("2021-01-01", "2021-01-15")
	dates := r.Dates()
	s := Series{Dates: dates}
	for i := range dates {
		s.Mean = append(s.Mean, float64(i))
		s.Lower = append(s.Lower, float64(i)-1)
		s.Upper = append(s.Upper, float64(i)+1)
	}

	w := s.Every(7)
	if w.Len() != 3 {
		t.Fatalf("Every(7) len = %d, want 3", w.Len())
	}
	for i, want := range []float64{0, 7, 14} {
		if w.Mean[i] != want {
			t.Errorf("Mean[%d] = %v, want %v", i, w.Mean[i], want)
		}
		if !w.Dates[i].Equal(dates[int(want)]) {
			t.Errorf("Dates[%d] = %v, want %v", i, w.Dates[i], dates[int(want)])
		}
	}

	all := s.Every(1)
	all.Mean[0] = 99
	if s.Mean[0] != 0 {
		t.Error("Every(1) should return a copy")
	}
}
