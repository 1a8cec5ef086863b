package smooth

// Rounding halving add on 8-bit samples.
//
// Every combine step of the filter goes through roundedAverage (or its
// eight-lane form roundedAverage8), so the scalar and packed paths round
// identically. The chain order in combine5 is part of the filter's contract:
//
//	x = R(a, e)
//	y = R(b, d)
//	x = R(x, c)
//	x = R(x, c)
//	out = R(x, y)
//
// In expectation this reproduces the binomial weights (1,4,6,4,1)/16; the
// rounding of each step is what makes it differ from a true weighted sum.

const (
	laneLow7 = 0x7f7f7f7f7f7f7f7f // bits 0..6 of every byte lane
	laneBit0 = 0x0101010101010101 // bit 0 of every byte lane
)

// roundedAverage returns round((a+b)/2) with halves rounded up, computed
// without widening.
func roundedAverage(a, b uint8) uint8 {
	return (a >> 1) + (b >> 1) + ((a | b) & 1)
}

// roundedAverage8 applies roundedAverage to eight byte lanes packed in a
// uint64. Each lane sum is at most 127+127+1, so no carry crosses a lane.
func roundedAverage8(a, b uint64) uint64 {
	return (a>>1)&laneLow7 + (b>>1)&laneLow7 + (a|b)&laneBit0
}

// combine5 evaluates the halving-add chain for one window whose samples are
// at offsets -2, -1, 0, +1, +2.
func combine5(a, b, c, d, e uint8) uint8 {
	x := roundedAverage(a, e)
	y := roundedAverage(b, d)
	x = roundedAverage(x, c)
	x = roundedAverage(x, c)
	return roundedAverage(x, y)
}

// combine5x8 is combine5 over eight independent lanes.
func combine5x8(a, b, c, d, e uint64) uint64 {
	x := roundedAverage8(a, e)
	y := roundedAverage8(b, d)
	x = roundedAverage8(x, c)
	x = roundedAverage8(x, c)
	return roundedAverage8(x, y)
}

// Combine5 exposes the per-sample chain for analysis tools. It is the exact
// value the filter produces for a window (a, b, c, d, e).
func Combine5(a, b, c, d, e uint8) uint8 {
	return combine5(a, b, c, d, e)
}

// mirror reflects index i into [0, n) without repeating the edge sample:
// -k maps to k and n-1+k maps to n-1-k. Reflection repeats with period
// 2(n-1) so that indices far outside a short sequence stay defined. For n == 1
// every index maps to 0.
func mirror(i, n int) int {
	if n <= 1 {
		return 0
	}
	if i < 0 {
		i = -i
	}
	period := 2 * (n - 1)
	i %= period
	if i >= n {
		i = period - i
	}
	return i
}
