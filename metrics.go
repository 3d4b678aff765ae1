package tierarena

// ArenaMetrics contains statistical information about one tier.
type ArenaMetrics struct {
	Tier        Tier
	ChunkSize   int     // Default chunk capacity
	MaxAlloc    int     // Largest aligned request served
	NumChunks   int     // Number of chunks
	Capacity    int     // Total capacity in bytes
	BytesCarved int     // Bytes below the high-water marks, headers included
	SizeInUse   int     // Payload bytes of in-use blocks
	Blocks      int     // Carved blocks
	FreeBlocks  int     // Carved blocks not in use
	Utilization float64 // SizeInUse / Capacity (0.0-1.0)
	// CorruptChunks counts chunks whose block walk hit an invalid header.
	// Blocks past that header are missing from the other fields.
	CorruptChunks int
	Stats         Stats
}

// Metrics is a snapshot of every tier plus totals.
type Metrics struct {
	Tiers         []ArenaMetrics
	NumChunks     int
	Capacity      int
	SizeInUse     int
	CorruptChunks int
}

// SizeInUse returns the payload bytes of blocks currently in use.
// Freed blocks awaiting reuse are not counted. A corrupt chunk only
// contributes the blocks before its first bad header; run Verify to find it.
func (a *Arena) SizeInUse() int {
	sum := 0
	for c := a.begin; c != nil; c = c.next {
		_ = c.walk(func(_ int, h header) bool {
			if h.inUse() {
				sum += h.size()
			}
			return true
		})
	}
	return sum
}

// NumChunks returns the number of chunks in the chain.
func (a *Arena) NumChunks() int { return a.nchunks }

// Capacity returns the total capacity (in bytes) of all chunks.
func (a *Arena) Capacity() int {
	sum := 0
	for c := a.begin; c != nil; c = c.next {
		sum += c.total()
	}
	return sum
}

// Utilization returns the ratio of in-use payload to total capacity
// (0.0 to 1.0). Returns 0.0 if the arena has no chunks.
func (a *Arena) Utilization() float64 {
	capacity := a.Capacity()
	if capacity == 0 {
		return 0
	}
	return float64(a.SizeInUse()) / float64(capacity)
}

// Stats returns the arena's historical counters.
func (a *Arena) Stats() Stats { return a.stats }

// Metrics returns a snapshot of arena statistics. It never panics on a
// damaged chunk: the chunk is counted in CorruptChunks and Verify reports
// the details.
func (a *Arena) Metrics() ArenaMetrics {
	m := ArenaMetrics{
		Tier:      a.tier,
		ChunkSize: a.chunkSize,
		MaxAlloc:  a.maxAlloc,
		NumChunks: a.nchunks,
		Stats:     a.stats,
	}
	for c := a.begin; c != nil; c = c.next {
		m.Capacity += c.total()
		m.BytesCarved += c.used
		err := c.walk(func(_ int, h header) bool {
			m.Blocks++
			if h.inUse() {
				m.SizeInUse += h.size()
			} else {
				m.FreeBlocks++
			}
			return true
		})
		if err != nil {
			m.CorruptChunks++
		}
	}
	if m.Capacity > 0 {
		m.Utilization = float64(m.SizeInUse) / float64(m.Capacity)
	}
	return m
}

// Metrics returns a snapshot of allocator statistics.
func (a *Allocator) Metrics() Metrics {
	a.live("metrics")
	var m Metrics
	for i := range a.arenas {
		am := a.arenas[i].Metrics()
		m.Tiers = append(m.Tiers, am)
		m.NumChunks += am.NumChunks
		m.Capacity += am.Capacity
		m.SizeInUse += am.SizeInUse
		m.CorruptChunks += am.CorruptChunks
	}
	return m
}
