package main

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/pavanmanishd/tierarena"
	"github.com/pavanmanishd/tierarena/promstats"
)

var (
	stressIterations int
	stressSeed       uint64
	stressMinSize    int
	stressMaxSize    int
	stressWindow     int
	stressRepr       bool
	stressMetrics    bool
	stressHeap       bool
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVarP(&stressIterations, "iterations", "n", 1000, "Number of allocations")
	cmd.Flags().Uint64Var(&stressSeed, "seed", 1, "Random seed")
	cmd.Flags().IntVar(&stressMinSize, "min-size", 1, "Smallest request in bytes")
	cmd.Flags().IntVar(&stressMaxSize, "max-size", 1000, "Largest request in bytes")
	cmd.Flags().IntVar(&stressWindow, "window", 10, "Number of blocks kept live before freeing")
	cmd.Flags().BoolVar(&stressRepr, "repr", false, "Print the block tree at the end")
	cmd.Flags().BoolVar(&stressMetrics, "metrics", false, "Print Prometheus metrics at the end")
	cmd.Flags().BoolVar(&stressHeap, "heap", false, "Back chunks with Go heap memory")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stress",
		Short: "Run a randomized alloc/free workload",
		Long: `The stress command allocates random sizes, keeps a rolling window of
live blocks and frees the oldest one on every step. Each block is filled with a
pattern that is checked before it is freed, and every header is verified at the
end. Any contract violation fails the command.

Example:
  tierarena stress
  tierarena stress -n 100000 --max-size 65536 --window 64
  tierarena stress --repr --log-level trace`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStress(cmd)
		},
	}
}

type stressConfig struct {
	iterations int
	seed       uint64
	minSize    int
	maxSize    int
	window     int
}

func (c stressConfig) validate() error {
	switch {
	case c.iterations < 0:
		return fmt.Errorf("--iterations must not be negative, got %d", c.iterations)
	case c.minSize < 1:
		return fmt.Errorf("--min-size must be at least 1, got %d", c.minSize)
	case c.maxSize < c.minSize:
		return fmt.Errorf("--max-size %d is below --min-size %d", c.maxSize, c.minSize)
	case c.maxSize > tierarena.MaxAllocSize:
		return fmt.Errorf("--max-size %d exceeds the largest tier (%d)", c.maxSize, tierarena.MaxAllocSize)
	case c.window < 1:
		return fmt.Errorf("--window must be at least 1, got %d", c.window)
	}
	return nil
}

type stressSummary struct {
	Iterations int           `json:"iterations"`
	Seed       uint64        `json:"seed"`
	Allocs     uint64        `json:"allocs"`
	Frees      uint64        `json:"frees"`
	Reuses     uint64        `json:"reuses"`
	Chunks     int           `json:"chunks"`
	Capacity   int           `json:"capacity"`
	InUse      int           `json:"in_use"`
	Verified   bool          `json:"verified"`
	Tiers      []tierSummary `json:"tiers"`
}

type tierSummary struct {
	Tier        string  `json:"tier"`
	Chunks      int     `json:"chunks"`
	Blocks      int     `json:"blocks"`
	FreeBlocks  int     `json:"free_blocks"`
	Utilization float64 `json:"utilization"`
}

func runStress(cmd *cobra.Command) error {
	cfg := stressConfig{
		iterations: stressIterations,
		seed:       stressSeed,
		minSize:    stressMinSize,
		maxSize:    stressMaxSize,
		window:     stressWindow,
	}
	if err := cfg.validate(); err != nil {
		return err
	}
	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	opts := []tierarena.Option{tierarena.WithLogger(logger)}
	if stressHeap {
		opts = append(opts, tierarena.WithHeapChunks())
	}
	a := tierarena.New(opts...)
	defer a.Destroy()

	if err := stress(a, cfg); err != nil {
		return err
	}
	verifyErr := a.Verify()

	out := cmd.OutOrStdout()
	if stressRepr {
		if err := a.WriteRepr(out); err != nil && verifyErr == nil {
			return err
		}
	}
	if stressMetrics {
		if err := writeMetrics(out, a); err != nil {
			return err
		}
	}
	if err := printStressSummary(out, cfg, a, verifyErr == nil); err != nil {
		return err
	}
	if verifyErr != nil {
		return fmt.Errorf("verify: %w", verifyErr)
	}
	return nil
}

// stress runs the workload. A fatal allocator panic is returned as an error.
func stress(a *tierarena.Allocator, cfg stressConfig) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fe, ok := r.(*tierarena.FatalError)
			if !ok {
				panic(r)
			}
			err = fe
		}
	}()

	rng := rand.New(rand.NewPCG(cfg.seed, cfg.seed^0x9e3779b97f4a7c15))
	window := make([][]byte, cfg.window)
	for i := range cfg.iterations {
		size := cfg.minSize + rng.IntN(cfg.maxSize-cfg.minSize+1)
		b := a.Alloc(size)
		fill(b, byte(i))

		slot := i % cfg.window
		if old := window[slot]; old != nil {
			if err := check(old, byte(i-cfg.window)); err != nil {
				return fmt.Errorf("iteration %d: %w", i, err)
			}
			a.Free(old)
		}
		window[slot] = b
	}
	for _, b := range window {
		if b != nil {
			a.Free(b)
		}
	}
	return nil
}

var errOverwritten = errors.New("block contents overwritten")

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}

func check(b []byte, v byte) error {
	for i, c := range b {
		if c != v {
			return fmt.Errorf("%w: byte %d is %#02x, want %#02x", errOverwritten, i, c, v)
		}
	}
	return nil
}

func writeMetrics(w io.Writer, a *tierarena.Allocator) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(promstats.NewCollector(a, nil)); err != nil {
		return err
	}
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func printStressSummary(w io.Writer, cfg stressConfig, a *tierarena.Allocator, verified bool) error {
	m := a.Metrics()
	s := stressSummary{
		Iterations: cfg.iterations,
		Seed:       cfg.seed,
		Chunks:     m.NumChunks,
		Capacity:   m.Capacity,
		InUse:      m.SizeInUse,
		Verified:   verified,
	}
	for _, tm := range m.Tiers {
		s.Allocs += tm.Stats.Allocs
		s.Frees += tm.Stats.Frees
		s.Reuses += tm.Stats.Reuses
		s.Tiers = append(s.Tiers, tierSummary{
			Tier:        tm.Tier.String(),
			Chunks:      tm.NumChunks,
			Blocks:      tm.Blocks,
			FreeBlocks:  tm.FreeBlocks,
			Utilization: tm.Utilization,
		})
	}

	if jsonOut {
		return printJSON(w, s)
	}
	_, err := fmt.Fprintf(w, "%d allocs, %d frees, %d reused; %d chunks (%s); verified=%t\n",
		s.Allocs, s.Frees, s.Reuses, s.Chunks, humanize.IBytes(uint64(s.Capacity)), s.Verified)
	return err
}
