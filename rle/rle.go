/*
Package rle implements the run-length and packing schemes used by the
supported formats.

Each scheme is a standalone pair of functions sharing no state:

	PKM runs         PackPKM / UnpackPKM with two recognition bytes
	escape RLE       MeasureEscape + UnpackEscape (two passes) / PackEscape
	MJH blocks       UnpackMJH / PackMJH (OCP Art Studio)
	deflate          Inflate

Decoders never read or write outside the slices they are given.
*/
package rle

import (
	"fmt"

	"github.com/Abhisheknishant/grafx2/codec"
)

var (
	errTruncated = fmt.Errorf("rle: %w", codec.ErrTruncated)
	errOverflow  = fmt.Errorf("rle: %w: unpacked data larger than measured", codec.ErrFormat)
	errTooLarge  = fmt.Errorf("rle: %w: inflated data too large", codec.ErrResource)
)
