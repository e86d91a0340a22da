package cache

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/ensemble"
	"github.com/kastellane/COVID19-Vaccination-Model/internal/models"
)

// Fingerprint identifies an aggregation by the exact values of its inputs.
// Key is a canonical byte encoding of the ordered parameter sets, the date
// range, CI, N and the realization seed; Sum is its xxhash digest. The time
// budget is not part of the fingerprint.
type Fingerprint struct {
	Key []byte
	Sum uint64
}

// NewFingerprint canonicalizes req. Dates are reduced to UTC calendar days
// and negative zeros are folded into zero so that equal inputs always
// produce equal keys.
func NewFingerprint(req ensemble.Request) Fingerprint {
	b := make([]byte, 0, 8*(6*len(req.Sets)+6))
	b = binary.BigEndian.AppendUint64(b, uint64(len(req.Sets)))
	for _, ps := range req.Sets {
		for _, v := range [...]float64{ps.PPro, ps.PAnti, ps.Pressure, ps.Tau, ps.NV0, ps.NVMax} {
			b = appendFloat(b, v)
		}
	}
	b = binary.BigEndian.AppendUint64(b, uint64(models.Day(req.Config.Dates.Start).Unix()))
	b = binary.BigEndian.AppendUint64(b, uint64(models.Day(req.Config.Dates.End).Unix()))
	b = appendFloat(b, req.Config.CI)
	b = binary.BigEndian.AppendUint64(b, uint64(req.Config.N))
	b = binary.BigEndian.AppendUint64(b, req.Seed)
	return Fingerprint{Key: b, Sum: xxhash.Sum64(b)}
}

func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", f.Sum)
}

func appendFloat(b []byte, v float64) []byte {
	if v == 0 {
		v = 0
	}
	return binary.BigEndian.AppendUint64(b, math.Float64bits(v))
}
