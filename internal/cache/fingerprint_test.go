package cache

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/kastellane/COVID19-Vaccination-Model/internal/models"
)

func TestFingerprint_Stable(t *testing.T) {
	a := NewFingerprint(request(1))
	b := NewFingerprint(request(1))
	if !bytes.Equal(a.Key, b.Key) || a.Sum != b.Sum {
		t.Error("equal requests produced different fingerprints")
	}
	if len(a.String()) != 16 {
		t.Errorf("String() = %q, want 16 hex digits", a.String())
	}
}

func TestFingerprint_NegativeZero(t *testing.T) {
	pos := request(1)
	neg := request(1)
	neg.Sets = append([]models.ParameterSet(nil), pos.Sets...)
	pos.Sets[0].Pressure = 0
	neg.Sets[0].Pressure = math.Copysign(0, -1)

	if !bytes.Equal(NewFingerprint(pos).Key, NewFingerprint(neg).Key) {
		t.Error("-0 and +0 produced different keys")
	}
}

func TestFingerprint_DatesByCalendarDay(t *testing.T) {
	a := request(1)
	b := request(1)
	b.Config.Dates.Start = b.Config.Dates.Start.Add(13 * time.Hour)

	if !bytes.Equal(NewFingerprint(a).Key, NewFingerprint(b).Key) {
		t.Error("time of day changed the key")
	}

	c := request(1)
	c.Config.Dates.End = c.Config.Dates.End.AddDate(0, 0, 1)
	if bytes.Equal(NewFingerprint(a).Key, NewFingerprint(c).Key) {
		t.Error("different end dates produced the same key")
	}
}

func TestFingerprint_CI(t *testing.T) {
	a := request(1)
	b := request(1)
	b.Config.CI = 0.9
	if bytes.Equal(NewFingerprint(a).Key, NewFingerprint(b).Key) {
		t.Error("different CI produced the same key")
	}
}
