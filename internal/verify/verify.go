// Package verify sweeps the smoothing filter over many region sizes and input
// patterns and checks a backend against the scalar reference, both with a
// separate destination and in place.
package verify

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/smooth5x5/internal/pattern"
	"github.com/cwbudde/smooth5x5/internal/smooth"
	"github.com/cwbudde/smooth5x5/internal/store"
)

// Config describes a sweep over every width and height in [MinSize, MaxSize).
type Config struct {
	Backend       smooth.Backend
	Stride        int
	MinSize       int
	MaxSize       int // exclusive
	Patterns      []string
	Seed          int64
	Workers       int // concurrent cases; <= 0 means GOMAXPROCS
	FilterWorkers int // > 1 runs the backend through Smooth5x5Parallel
}

// DefaultConfig is the stride-640 sweep over 16..63 with spiral and random
// content.
func DefaultConfig() Config {
	return Config{
		Backend:  smooth.ActiveBackend,
		Stride:   640,
		MinSize:  16,
		MaxSize:  64,
		Patterns: []string{"spiral", "random"},
		Seed:     1,
	}
}

func (c Config) validate() error {
	if c.MinSize < 0 || c.MaxSize < c.MinSize {
		return fmt.Errorf("invalid size range [%d, %d)", c.MinSize, c.MaxSize)
	}
	if c.Stride <= 0 || c.MaxSize-1 > c.Stride {
		return fmt.Errorf("stride %d must cover sizes up to %d", c.Stride, c.MaxSize-1)
	}
	if len(c.Patterns) == 0 {
		return fmt.Errorf("at least one pattern is required")
	}
	for _, p := range c.Patterns {
		if _, err := pattern.Generate(p, 1, 1, 1, 0); err != nil {
			return err
		}
	}
	return nil
}

type testCase struct {
	pattern       string
	width, height int
}

// Run executes the sweep. Each (pattern, width, height) case counts once and
// fails if either the separate-destination or the in-place run differs from
// the reference; the first differing sample of each failing run is recorded.
func Run(ctx context.Context, cfg Config) (*store.Report, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid verify config: %w", err)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	slog.Info("Starting verification",
		"backend", cfg.Backend, "stride", cfg.Stride,
		"min_size", cfg.MinSize, "max_size", cfg.MaxSize,
		"patterns", cfg.Patterns, "workers", workers)

	start := time.Now()

	var (
		mu         sync.Mutex
		cases      int
		failed     int
		mismatches []store.Mismatch
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

loop:
	for _, name := range cfg.Patterns {
		for width := cfg.MinSize; width < cfg.MaxSize; width++ {
			for height := cfg.MinSize; height < cfg.MaxSize; height++ {
				if gctx.Err() != nil {
					break loop
				}
				tc := testCase{pattern: name, width: width, height: height}
				g.Go(func() error {
					if err := gctx.Err(); err != nil {
						return err
					}
					found, err := runCase(cfg, tc)
					if err != nil {
						return err
					}
					mu.Lock()
					cases++
					if len(found) > 0 {
						failed++
						mismatches = append(mismatches, found...)
					}
					mu.Unlock()
					return nil
				})
			}
		}
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("verification aborted: %w", err)
	}
	// gctx is always done after Wait; only the caller's context says whether
	// the sweep was cut short.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("verification aborted: %w", err)
	}

	sort.Slice(mismatches, func(i, j int) bool {
		a, b := mismatches[i], mismatches[j]
		if a.Pattern != b.Pattern {
			return a.Pattern < b.Pattern
		}
		if a.Width != b.Width {
			return a.Width < b.Width
		}
		if a.Height != b.Height {
			return a.Height < b.Height
		}
		return !a.InPlace && b.InPlace
	})

	report := &store.Report{
		ID: uuid.New().String(),
		Config: store.RunConfig{
			Backend:  cfg.Backend.String(),
			Workers:  workers,
			Stride:   cfg.Stride,
			MinSize:  cfg.MinSize,
			MaxSize:  cfg.MaxSize,
			Patterns: cfg.Patterns,
			Seed:     cfg.Seed,
		},
		Cases:      cases,
		Failed:     failed,
		Mismatches: mismatches,
		Elapsed:    time.Since(start),
		Timestamp:  time.Now(),
	}

	slog.Info("Verification complete",
		"id", report.ID, "cases", report.Cases, "failed", report.Failed,
		"elapsed", report.Elapsed)

	return report, nil
}

// runCase filters one input with the reference and with the backend under
// test, with a separate destination and in place.
func runCase(cfg Config, tc testCase) ([]store.Mismatch, error) {
	seed := cfg.Seed + int64(tc.width*cfg.Stride+tc.height)
	in, err := pattern.Generate(tc.pattern, cfg.Stride, tc.width, tc.height, seed)
	if err != nil {
		return nil, err
	}

	want := clone(in)
	if err := smooth.Reference5x5(cfg.Stride, tc.width, tc.height, want, want); err != nil {
		return nil, fmt.Errorf("reference %s %dx%d: %w", tc.pattern, tc.width, tc.height, err)
	}

	var found []store.Mismatch
	for _, inPlace := range []bool{false, true} {
		dst := make([]uint8, len(in))
		src := in
		if inPlace {
			dst = clone(in)
			src = dst
		}

		if err := filter(cfg, src, dst, tc.width, tc.height); err != nil {
			return nil, fmt.Errorf("%s %s %dx%d: %w", cfg.Backend, tc.pattern, tc.width, tc.height, err)
		}

		if m, ok := firstMismatch(cfg.Stride, tc, want, dst); ok {
			m.InPlace = inPlace
			found = append(found, m)
		}
	}
	return found, nil
}

func filter(cfg Config, src, dst []uint8, width, height int) error {
	if cfg.FilterWorkers > 1 && cfg.Backend == smooth.BackendSWAR {
		return smooth.Smooth5x5Parallel(cfg.Stride, width, height, src, dst, cfg.FilterWorkers)
	}
	return smooth.Run(cfg.Backend, cfg.Stride, width, height, src, dst)
}

func firstMismatch(stride int, tc testCase, want, got []uint8) (store.Mismatch, bool) {
	for i := 0; i < tc.height; i++ {
		for j := 0; j < tc.width; j++ {
			if w, g := want[i*stride+j], got[i*stride+j]; w != g {
				return store.Mismatch{
					Pattern: tc.pattern,
					Width:   tc.width,
					Height:  tc.height,
					Row:     i,
					Col:     j,
					Want:    w,
					Got:     g,
				}, true
			}
		}
	}
	return store.Mismatch{}, false
}

func clone(b []uint8) []uint8 {
	c := make([]uint8, len(b))
	copy(c, b)
	return c
}
