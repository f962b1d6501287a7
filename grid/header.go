package grid

import (
	"errors"
	"fmt"
	"math"
)

const (
	// Magic is the 8-byte ASCII tag opening every grid. Eight bytes keeps the
	// header a whole number of 4-byte words so the file can be mapped into a
	// typed array directly.
	Magic = "ACCESSGR"

	// Version is the format version this package produces.
	Version = 0

	// HeaderSize is the byte offset of the data section: the magic plus seven
	// 4-byte integers.
	HeaderSize = len(Magic) + 7*4

	// Unreached is the sentinel value meaning "no path found / cell never
	// written", distinct from any legitimate computed value.
	Unreached = math.MaxInt32
)

// Sentinel errors for grid encoding and decoding.
var (
	// ErrFormat is returned when bytes do not parse as a valid grid: magic
	// mismatch, version mismatch, or a declared size inconsistent with the
	// input length. Always fatal to the call, never retried.
	ErrFormat = errors.New("invalid grid format")

	// ErrCapacityExceeded is returned when a grid's encoded size would not fit
	// in 31-bit addressable space. Fatal at construction, before any result
	// is accepted.
	ErrCapacityExceeded = errors.New("grid size exceeds 31-bit addressable space")
)

// Header holds the seven integer fields following the magic bytes.
type Header struct {
	// Zoom is the web mercator zoom level.
	Zoom int32

	// West and North are how many pixels the grid sits east of the left edge
	// and south of the top edge of the world.
	West  int32
	North int32

	// Width and Height are the grid dimensions in pixels.
	Width  int32
	Height int32

	// ValuesPerCell is the number of values stored per pixel.
	ValuesPerCell int32
}

// CellCount returns the number of pixels in the grid.
func (h Header) CellCount() int {
	return int(h.Width) * int(h.Height)
}

// ValueCount returns the total number of 32-bit values in the data section.
func (h Header) ValueCount() int {
	return h.CellCount() * int(h.ValuesPerCell)
}

// SizeBytes returns the full encoded size, header included. Computed in 64
// bits so oversized grids are detected rather than wrapped.
func (h Header) SizeBytes() int64 {
	return int64(HeaderSize) + int64(h.Width)*int64(h.Height)*int64(h.ValuesPerCell)*4
}

// Validate rejects non-positive dimensions and grids whose encoded size would
// exceed the 31-bit limit.
func (h Header) Validate() error {
	if h.Width <= 0 || h.Height <= 0 || h.ValuesPerCell <= 0 {
		return fmt.Errorf("%w: dimensions %dx%dx%d must be positive", ErrFormat, h.Width, h.Height, h.ValuesPerCell)
	}
	if h.SizeBytes() > math.MaxInt32 {
		return fmt.Errorf("%w: %dx%dx%d needs %d bytes", ErrCapacityExceeded, h.Width, h.Height, h.ValuesPerCell, h.SizeBytes())
	}

	return nil
}
