package oahash_test

import (
	"math/rand/v2"
	"runtime"
	"testing"
	"time"

	"github.com/theflywheel/oahash"
)

// reportMemory adds the live heap and the process footprint in megabytes.
func reportMemory(b *testing.B) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), "alloc_mb")
	b.ReportMetric(float64(m.Sys)/(1024*1024), "sys_mb")
}

// reportTable adds the table's shape after a run.
func reportTable(b *testing.B, st oahash.Stats) {
	b.ReportMetric(float64(st.Capacity), "capacity")
	b.ReportMetric(float64(st.Growths), "growths")
	b.ReportMetric(float64(st.MaxProbe), "max_probe")
	b.ReportMetric(st.Load, "load")
}

func reportRate(b *testing.B, unit string, n int, elapsed time.Duration) {
	if elapsed > 0 {
		b.ReportMetric(float64(n)/elapsed.Seconds(), unit)
	}
}

// generateUUID returns a version 4 UUID drawn from r.
func generateUUID(r *rand.Rand) [16]byte {
	var uuid [16]byte
	for i := 0; i < len(uuid); i += 8 {
		v := r.Uint64()
		for j := 0; j < 8; j++ {
			uuid[i+j] = byte(v >> (8 * j))
		}
	}
	uuid[6] = (uuid[6] & 0x0F) | 0x40
	uuid[8] = (uuid[8] & 0x3F) | 0x80
	return uuid
}

// generateAlphanumeric returns a random alphanumeric string of length n.
func generateAlphanumeric(r *rand.Rand, n int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = charset[r.IntN(len(charset))]
	}
	return string(buf)
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}
