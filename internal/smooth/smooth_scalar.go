package smooth

// Scalar reference implementation. Every other backend must reproduce its
// output byte for byte.

// smooth5x5Scalar runs the vertical pass from src into dst, then the
// horizontal pass over dst in place.
func smooth5x5Scalar(stride, width, height int, src, dst []uint8) {
	for j := 0; j < width; j++ {
		pass5Scalar(src, dst, j, stride, height)
	}
	for i := 0; i < height; i++ {
		pass5Scalar(dst, dst, i*stride, 1, width)
	}
}

// pass5Scalar filters the n samples at off, off+step, ... reading src and
// writing dst.
//
// The window (a, b, c, d) holds samples i-2..i+1 as they were before any
// write, and only sample i+2 is read per step. Position i is written after
// that read, so dst may alias src. The two samples past the end mirror onto
// values the window already holds: index n mirrors to n-2 (c at i = n-2) and
// n+1 mirrors to n-3 (a at i = n-1).
func pass5Scalar(src, dst []uint8, off, step, n int) {
	at := func(k int) uint8 {
		return src[off+mirror(k, n)*step]
	}
	a, b, c, d := at(-2), at(-1), at(0), at(1)

	for i := 0; i < n; i++ {
		var e uint8
		switch i + 2 {
		case n:
			e = c
		case n + 1:
			e = a
		default:
			e = src[off+(i+2)*step]
		}

		dst[off+i*step] = combine5(a, b, c, d, e)

		a, b, c, d = b, c, d, e
	}
}
