package oahash

import (
	"fmt"
	"strings"
)

// Stats is a snapshot of a table's occupancy. It is meant for diagnostics;
// computing it walks every slot.
type Stats struct {
	// Capacity is the number of slots.
	Capacity int
	// Size is the number of live entries.
	Size int
	// Used is live entries plus tombstones, the figure compared against
	// the load factor.
	Used int
	// Tombstones is the number of removed entries not yet dropped by a resize.
	Tombstones int
	// Growths is the number of resizes since the table was created.
	Growths int
	// LoadFactor is the configured resize threshold.
	LoadFactor float64
	// Load is Used divided by Capacity.
	Load float64
	// MaxProbe is the longest distance between a live entry and its home slot.
	MaxProbe int
}

// String returns a multi-line representation of the stats.
func (s Stats) String() string {
	var sb strings.Builder
	sb.WriteString("Stats{\n")
	fmt.Fprintf(&sb, "Capacity:   %d\n", s.Capacity)
	fmt.Fprintf(&sb, "Size:       %d\n", s.Size)
	fmt.Fprintf(&sb, "Used:       %d\n", s.Used)
	fmt.Fprintf(&sb, "Tombstones: %d\n", s.Tombstones)
	fmt.Fprintf(&sb, "Growths:    %d\n", s.Growths)
	fmt.Fprintf(&sb, "LoadFactor: %.2f\n", s.LoadFactor)
	fmt.Fprintf(&sb, "Load:       %.4f\n", s.Load)
	fmt.Fprintf(&sb, "MaxProbe:   %d\n", s.MaxProbe)
	sb.WriteString("}\n")
	return sb.String()
}

// Stats returns occupancy statistics for the table.
func (t *Table[K, V]) Stats() Stats {
	capacity := len(t.slots)
	stats := Stats{
		Capacity:   capacity,
		Size:       t.live,
		Used:       t.used,
		Tombstones: t.used - t.live,
		Growths:    t.growths,
		LoadFactor: t.loadFactor,
		Load:       float64(t.used) / float64(capacity),
	}
	for i := range t.slots {
		s := &t.slots[i]
		if s.state != slotOccupied {
			continue
		}
		home := hashIndex(t.hash(s.key), capacity)
		dist := i - home
		if dist < 0 {
			dist += capacity
		}
		stats.MaxProbe = max(stats.MaxProbe, dist)
	}
	return stats
}
