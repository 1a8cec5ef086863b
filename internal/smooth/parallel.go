package smooth

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Smooth5x5Parallel is Smooth5x5 on the SWAR backend with the work split
// across up to workers goroutines (workers <= 0 means GOMAXPROCS).
//
// The vertical pass is split into column strips whose boundaries fall on
// word boundaries, so no two goroutines touch the same byte. The horizontal
// pass starts only after every strip has finished and is split into row
// bands. Each output byte is computed exactly as in the sequential filter.
func Smooth5x5Parallel(stride, width, height int, src, dst []uint8, workers int) error {
	if err := validate(stride, width, height, src, dst); err != nil {
		return err
	}
	if width == 0 || height == 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers == 1 {
		smooth5x5SWAR(stride, width, height, src, dst)
		return nil
	}

	strip := (width + workers - 1) / workers
	strip = (strip + lanes - 1) / lanes * lanes

	var vertical errgroup.Group
	vertical.SetLimit(workers)
	for c0 := 0; c0 < width; c0 += strip {
		c1 := min(c0+strip, width)
		vertical.Go(guarded(func() {
			verticalSWAR(stride, height, src, dst, c0, c1)
		}))
	}
	if err := vertical.Wait(); err != nil {
		return fmt.Errorf("vertical pass: %w", err)
	}

	band := (height + workers - 1) / workers

	var horizontal errgroup.Group
	horizontal.SetLimit(workers)
	for r0 := 0; r0 < height; r0 += band {
		r1 := min(r0+band, height)
		horizontal.Go(guarded(func() {
			pad := getScratch(padLen(width))
			defer putScratch(pad)
			horizontalSWAR(stride, width, dst, r0, r1, pad)
		}))
	}
	if err := horizontal.Wait(); err != nil {
		return fmt.Errorf("horizontal pass: %w", err)
	}
	return nil
}

// guarded runs fn as an errgroup task. A panic in a worker goroutine would
// otherwise take down the process; it is returned as an error instead.
func guarded(fn func()) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("worker panicked: %v", r)
			}
		}()
		fn()
		return nil
	}
}
