package smooth

import (
	"encoding/binary"
	"sync"
)

// SWAR (SIMD within a register) implementation.
//
// Eight byte lanes are packed into a uint64 and combined with
// roundedAverage8, which performs the same rounding halving add per lane as
// the scalar path. Lanes never interact, so each output byte goes through the
// identical combine5 chain on the identical mirrored window.
//
//   - vertical pass:   eight adjacent columns per word, same window shift as
//                      pass5Scalar, partial words at the right edge
//   - horizontal pass: the row is copied into a mirrored, padded scratch line,
//                      then eight outputs per step load five overlapping words

const lanes = 8

// smooth5x5SWAR is the sequential SWAR filter.
func smooth5x5SWAR(stride, width, height int, src, dst []uint8) {
	verticalSWAR(stride, height, src, dst, 0, width)

	pad := getScratch(padLen(width))
	horizontalSWAR(stride, width, dst, 0, height, pad)
	putScratch(pad)
}

// verticalSWAR filters columns [col0, col1) down height rows from src into
// dst. dst may alias src for the same reason as in pass5Scalar.
func verticalSWAR(stride, height int, src, dst []uint8, col0, col1 int) {
	for j := col0; j < col1; j += lanes {
		n := min(lanes, col1-j)
		row := func(k int) uint64 {
			return load8(src[mirror(k, height)*stride+j:], n)
		}
		a, b, c, d := row(-2), row(-1), row(0), row(1)

		for i := 0; i < height; i++ {
			var e uint64
			switch i + 2 {
			case height:
				e = c
			case height + 1:
				e = a
			default:
				e = load8(src[(i+2)*stride+j:], n)
			}

			store8(dst[i*stride+j:], combine5x8(a, b, c, d, e), n)

			a, b, c, d = b, c, d, e
		}
	}
}

// horizontalSWAR filters rows [row0, row1) of buf in place. pad must hold at
// least padLen(width) bytes and is overwritten.
func horizontalSWAR(stride, width int, buf []uint8, row0, row1 int, pad []uint8) {
	for i := row0; i < row1; i++ {
		line := buf[i*stride : i*stride+width]

		// pad[k] = line[mirror(k-2)] for k in [0, width+4)
		copy(pad[2:], line)
		pad[0] = line[mirror(-2, width)]
		pad[1] = line[mirror(-1, width)]
		pad[width+2] = line[mirror(width, width)]
		pad[width+3] = line[mirror(width+1, width)]

		for j := 0; j < width; j += lanes {
			out := combine5x8(
				binary.LittleEndian.Uint64(pad[j:]),
				binary.LittleEndian.Uint64(pad[j+1:]),
				binary.LittleEndian.Uint64(pad[j+2:]),
				binary.LittleEndian.Uint64(pad[j+3:]),
				binary.LittleEndian.Uint64(pad[j+4:]),
			)
			store8(line[j:], out, min(lanes, width-j))
		}
	}
}

// padLen is the scratch size horizontalSWAR needs for a row of width
// samples: two mirrored samples on each side, and room for full-word loads
// past the last partial word.
func padLen(width int) int {
	return (width+lanes-1)/lanes*lanes + 4
}

// load8 packs the first n (1..8) bytes of p into the low lanes of a word.
func load8(p []uint8, n int) uint64 {
	if n == lanes {
		return binary.LittleEndian.Uint64(p)
	}
	var v uint64
	for k := n - 1; k >= 0; k-- {
		v = v<<8 | uint64(p[k])
	}
	return v
}

// store8 writes the low n (1..8) lanes of v to p.
func store8(p []uint8, v uint64, n int) {
	if n == lanes {
		binary.LittleEndian.PutUint64(p, v)
		return
	}
	for k := 0; k < n; k++ {
		p[k] = uint8(v >> (8 * k))
	}
}

// Scratch lines for the horizontal pass. Only filter-private memory is
// pooled; caller buffers are never retained.
var scratchPool = sync.Pool{
	New: func() any {
		b := make([]uint8, 0, 1024)
		return &b
	},
}

func getScratch(size int) []uint8 {
	bp := scratchPool.Get().(*[]uint8)
	if cap(*bp) < size {
		*bp = make([]uint8, size)
	}
	return (*bp)[:size]
}

func putScratch(b []uint8) {
	b = b[:0]
	scratchPool.Put(&b)
}
