package sequencer

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/zeebo/xxh3"
)

// Fingerprint returns a 64-bit xxh3 hash of the instance a request describes:
// products in order, transition rules and CIP durations. Requests with equal
// fingerprints produce the same cost matrix. Time budget, algorithm, seed and
// id do not contribute.
func Fingerprint(req Request) uint64 {
	h := xxh3.New()

	var sep = []byte{0}
	for _, p := range req.Products {
		_, _ = h.WriteString(p)
		_, _ = h.Write(sep)
	}
	_, _ = h.Write(sep)

	for i := range req.Transitions {
		// MarshalJSON sorts exception targets, so equal rules hash equally.
		b, err := json.Marshal(req.Transitions[i])
		if err != nil {
			continue
		}
		_, _ = h.Write(b)
		_, _ = h.Write(sep)
	}
	_, _ = h.Write(sep)

	var buf [8]byte
	for _, v := range []float64{req.CipDurations.CIP1, req.CipDurations.CIP2, req.CipDurations.CIP3} {
		bits := math.Float64bits(v)
		for i := range buf {
			buf[i] = byte(bits >> (8 * i))
		}
		_, _ = h.Write(buf[:])
	}

	return h.Sum64()
}

// fingerprintHex formats a fingerprint for logs.
func fingerprintHex(fp uint64) string {
	return strconv.FormatUint(fp, 16)
}
