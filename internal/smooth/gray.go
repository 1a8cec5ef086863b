package smooth

import (
	"fmt"
	"image"
)

// GrayInPlace smooths img over its bounds, overwriting its pixels.
func GrayInPlace(img *image.Gray) error {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	pix := img.Pix[img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y):]
	return Smooth5x5(img.Stride, w, h, pix, pix)
}

// Gray writes the smoothed src into dst. Both images must have the same
// size; their strides may differ. dst may be src, or another image over the
// same pixels and bounds; images whose regions otherwise share memory are
// rejected.
func Gray(dst, src *image.Gray) error {
	if dst.Rect.Dx() != src.Rect.Dx() || dst.Rect.Dy() != src.Rect.Dy() {
		return fmt.Errorf("%w: size mismatch %v vs %v", ErrInvalidArgument, dst.Rect.Size(), src.Rect.Size())
	}
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	srcRegion := grayRegion(src)
	dstRegion := grayRegion(dst)
	switch {
	case sameStart(srcRegion, dstRegion) && src.Stride == dst.Stride:
		return GrayInPlace(dst)
	case sameStart(srcRegion, dstRegion) || partialOverlap(srcRegion, dstRegion):
		return fmt.Errorf("%w: source and destination images overlap", ErrInvalidArgument)
	}

	for y := 0; y < h; y++ {
		copy(dstRegion[y*dst.Stride:y*dst.Stride+w], srcRegion[y*src.Stride:y*src.Stride+w])
	}
	return GrayInPlace(dst)
}

// grayRegion is the slice of img.Pix spanned by its bounds, from the first
// sample of the top row to the last sample of the bottom row.
func grayRegion(img *image.Gray) []uint8 {
	start := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y)
	return img.Pix[start : start+(img.Rect.Dy()-1)*img.Stride+img.Rect.Dx()]
}
