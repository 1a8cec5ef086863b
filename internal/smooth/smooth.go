// Package smooth implements a fixed-point, separable 5x5 smoothing filter for
// 8-bit single-channel images.
//
// The filter runs a 5-tap pass down every column and then a 5-tap pass along
// every row. Each output sample is built from the five-sample window at
// offsets -2..+2 using only rounding halving adds (see combine5), which
// approximates the binomial kernel (1,4,6,4,1)/16. Samples outside the region
// are mirrored without repeating the edge sample.
//
// Implementations:
//   - smooth_scalar.go: reference filter; defines the exact output
//   - smooth_swar.go:   eight byte lanes per uint64 word, bit-exact with the reference
//   - parallel.go:      SWAR filter split across goroutines
//
// All entry points accept a stride (row pitch in samples) shared by source and
// destination. The destination may be the same slice as the source; any
// other overlap is rejected with ErrInvalidArgument.
package smooth

import (
	"errors"
	"fmt"
	"log/slog"
	"math/bits"
	"strings"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// ErrInvalidArgument is returned (wrapped) when a precondition on the
// dimensions or buffers does not hold.
var ErrInvalidArgument = errors.New("smooth: invalid argument")

// Backend identifies a filter implementation.
type Backend int

const (
	BackendScalar Backend = iota
	BackendSWAR
)

func (b Backend) String() string {
	switch b {
	case BackendScalar:
		return "scalar"
	case BackendSWAR:
		return "swar"
	default:
		return "unknown"
	}
}

// ParseBackend maps a backend name to its Backend. "auto" and "" select
// ActiveBackend.
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return ActiveBackend, nil
	case "scalar", "reference":
		return BackendScalar, nil
	case "swar":
		return BackendSWAR, nil
	default:
		return 0, fmt.Errorf("%w: unknown backend %q", ErrInvalidArgument, name)
	}
}

// ActiveBackend reports which backend Smooth5x5 dispatches to.
var ActiveBackend Backend

// fastSmooth is the dispatched implementation behind Smooth5x5.
var fastSmooth func(stride, width, height int, src, dst []uint8)

func init() {
	// 64-bit words are emulated on 32-bit targets, where the scalar path wins.
	if bits.UintSize == 64 {
		ActiveBackend = BackendSWAR
		fastSmooth = smooth5x5SWAR
		slog.Debug("smooth kernel initialized", "backend", "swar", "lanes", 8,
			"avx2", cpu.X86.HasAVX2, "asimd", cpu.ARM64.HasASIMD)
	} else {
		ActiveBackend = BackendScalar
		fastSmooth = smooth5x5Scalar
		slog.Debug("smooth kernel initialized", "backend", "scalar")
	}
}

// CPUFeatures reports the SIMD features detected on this machine. It is
// informational; the filter itself is portable Go.
func CPUFeatures() map[string]bool {
	return map[string]bool{
		"sse2":   cpu.X86.HasSSE2,
		"ssse3":  cpu.X86.HasSSSE3,
		"avx2":   cpu.X86.HasAVX2,
		"avx512": cpu.X86.HasAVX512F && cpu.X86.HasAVX512BW,
		"asimd":  cpu.ARM64.HasASIMD,
		"sve":    cpu.ARM64.HasSVE,
	}
}

// Smooth5x5 filters the width x height region of src into dst using the
// active backend. Rows are stride samples apart in both buffers. dst may be
// src itself. A zero width or height writes nothing.
func Smooth5x5(stride, width, height int, src, dst []uint8) error {
	if err := validate(stride, width, height, src, dst); err != nil {
		return err
	}
	if width == 0 || height == 0 {
		return nil
	}
	fastSmooth(stride, width, height, src, dst)
	return nil
}

// Reference5x5 is Smooth5x5 computed by the scalar reference filter.
func Reference5x5(stride, width, height int, src, dst []uint8) error {
	return Run(BackendScalar, stride, width, height, src, dst)
}

// Run filters with an explicitly chosen backend.
func Run(b Backend, stride, width, height int, src, dst []uint8) error {
	var fn func(stride, width, height int, src, dst []uint8)
	switch b {
	case BackendScalar:
		fn = smooth5x5Scalar
	case BackendSWAR:
		fn = smooth5x5SWAR
	default:
		return fmt.Errorf("%w: unknown backend %d", ErrInvalidArgument, int(b))
	}
	if err := validate(stride, width, height, src, dst); err != nil {
		return err
	}
	if width == 0 || height == 0 {
		return nil
	}
	fn(stride, width, height, src, dst)
	return nil
}

// validate checks the preconditions shared by every entry point. Buffers must
// cover the bytes the region touches: (height-1)*stride + width.
func validate(stride, width, height int, src, dst []uint8) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: negative dimensions %dx%d", ErrInvalidArgument, width, height)
	}
	if stride < width {
		return fmt.Errorf("%w: stride %d is smaller than width %d", ErrInvalidArgument, stride, width)
	}
	if width == 0 || height == 0 {
		return nil
	}
	need := (height-1)*stride + width
	if len(src) < need {
		return fmt.Errorf("%w: source holds %d samples, region needs %d", ErrInvalidArgument, len(src), need)
	}
	if len(dst) < need {
		return fmt.Errorf("%w: destination holds %d samples, region needs %d", ErrInvalidArgument, len(dst), need)
	}
	if partialOverlap(src[:need], dst[:need]) {
		return fmt.Errorf("%w: source and destination overlap without being the same buffer", ErrInvalidArgument)
	}
	return nil
}

// partialOverlap reports whether a and b share memory but do not start at
// the same address. Identical buffers are the supported in-place case.
func partialOverlap(a, b []uint8) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	pa := uintptr(unsafe.Pointer(unsafe.SliceData(a)))
	pb := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	if pa == pb {
		return false
	}
	return pa < pb+uintptr(len(b)) && pb < pa+uintptr(len(a))
}

// sameStart reports whether a and b begin at the same address.
func sameStart(a, b []uint8) bool {
	return len(a) > 0 && len(b) > 0 && unsafe.SliceData(a) == unsafe.SliceData(b)
}
