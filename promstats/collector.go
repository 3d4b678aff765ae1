// Package promstats exports tierarena allocator metrics to Prometheus.
package promstats

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pavanmanishd/tierarena"
)

const namespace = "tierarena"

// Collector is a prometheus.Collector that snapshots an Allocator on every
// collection.
//
// The allocator is not goroutine-safe, so Collect must run on the goroutine
// that owns it. Gather the registry explicitly from that goroutine rather
// than serving it from an HTTP handler.
type Collector struct {
	alloc *tierarena.Allocator

	chunks        *prometheus.Desc
	capacity      *prometheus.Desc
	carved        *prometheus.Desc
	inUse         *prometheus.Desc
	blocks        *prometheus.Desc
	utilization   *prometheus.Desc
	corrupt       *prometheus.Desc
	allocs        *prometheus.Desc
	frees         *prometheus.Desc
	reuses        *prometheus.Desc
	carves        *prometheus.Desc
	chunksCreated *prometheus.Desc
}

// NewCollector returns a collector for a. constLabels are attached to every
// metric and may be nil.
func NewCollector(a *tierarena.Allocator, constLabels prometheus.Labels) *Collector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help,
			append([]string{"tier"}, labels...), constLabels)
	}
	return &Collector{
		alloc:         a,
		chunks:        desc("chunks", "Chunks mapped by the tier's arena."),
		capacity:      desc("capacity_bytes", "Total chunk capacity of the tier."),
		carved:        desc("carved_bytes", "Bytes below the chunks' high-water marks, headers included."),
		inUse:         desc("in_use_bytes", "Payload bytes of blocks currently in use."),
		blocks:        desc("blocks", "Carved blocks by state.", "state"),
		utilization:   desc("utilization_ratio", "In-use payload bytes over capacity (0.0-1.0)."),
		corrupt:       desc("corrupt_chunks", "Chunks with an invalid block header."),
		allocs:        desc("allocs_total", "Blocks handed out."),
		frees:         desc("frees_total", "Blocks released."),
		reuses:        desc("reuses_total", "Allocations served by a previously freed block."),
		carves:        desc("carves_total", "Allocations served by carving fresh space."),
		chunksCreated: desc("chunks_created_total", "Chunks obtained from the memory source."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.chunks
	ch <- c.capacity
	ch <- c.carved
	ch <- c.inUse
	ch <- c.blocks
	ch <- c.utilization
	ch <- c.corrupt
	ch <- c.allocs
	ch <- c.frees
	ch <- c.reuses
	ch <- c.carves
	ch <- c.chunksCreated
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, m := range c.alloc.Metrics().Tiers {
		tier := m.Tier.String()
		gauge := func(d *prometheus.Desc, v float64, labels ...string) {
			ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, append([]string{tier}, labels...)...)
		}
		counter := func(d *prometheus.Desc, v uint64) {
			ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), tier)
		}

		gauge(c.chunks, float64(m.NumChunks))
		gauge(c.capacity, float64(m.Capacity))
		gauge(c.carved, float64(m.BytesCarved))
		gauge(c.inUse, float64(m.SizeInUse))
		gauge(c.blocks, float64(m.Blocks-m.FreeBlocks), "in_use")
		gauge(c.blocks, float64(m.FreeBlocks), "free")
		gauge(c.utilization, m.Utilization)
		gauge(c.corrupt, float64(m.CorruptChunks))

		counter(c.allocs, m.Stats.Allocs)
		counter(c.frees, m.Stats.Frees)
		counter(c.reuses, m.Stats.Reuses)
		counter(c.carves, m.Stats.Carves)
		counter(c.chunksCreated, m.Stats.ChunksCreated)
	}
}
