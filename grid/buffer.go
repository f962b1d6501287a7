package grid

import "fmt"

// Buffer accumulates per-origin values into a flattened grid prior to
// encoding. It owns the row-major index arithmetic and validates bounds once,
// so callers never re-derive the formula.
//
// Every cell starts at the Unreached sentinel, never zero, so a partially
// filled or wholly unfilled buffer still encodes to a well-formed grid in
// which unwritten cells decode as unreachable.
//
// Buffer is not safe for concurrent use; its owning assembler serializes
// access.
type Buffer struct {
	header Header
	values []int32
}

// NewBuffer allocates a sentinel-filled buffer for the given header.
//
// Returns ErrCapacityExceeded if the encoded grid would not fit in 31-bit
// addressable space. This is the construction-time check that rejects a job
// before any result traffic is accepted.
func NewBuffer(h Header) (*Buffer, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}

	values := make([]int32, h.ValueCount())
	for i := range values {
		values[i] = Unreached
	}

	return &Buffer{header: h, values: values}, nil
}

// Header returns the buffer's grid header.
func (b *Buffer) Header() Header {
	return b.header
}

// WriteCell stores one origin's values at cell (x, y). Writes are idempotent
// per position: rewriting a cell with the same values leaves the grid
// unchanged.
//
// Returns ErrFormat if the cell is out of bounds or vals has the wrong length.
func (b *Buffer) WriteCell(x, y int, vals []int32) error {
	if x < 0 || x >= int(b.header.Width) || y < 0 || y >= int(b.header.Height) {
		return fmt.Errorf("%w: cell (%d,%d) outside %dx%d grid", ErrFormat, x, y, b.header.Width, b.header.Height)
	}
	if len(vals) != int(b.header.ValuesPerCell) {
		return fmt.Errorf("%w: %d values for cell, grid stores %d per cell", ErrFormat, len(vals), b.header.ValuesPerCell)
	}

	base := (y*int(b.header.Width) + x) * int(b.header.ValuesPerCell)
	copy(b.values[base:base+len(vals)], vals)

	return nil
}

// ValueAt returns the value at cell (x, y), layer v. Exported for tests and
// readers; panics on out-of-range indices like any slice access.
func (b *Buffer) ValueAt(x, y, v int) int32 {
	return b.values[(y*int(b.header.Width)+x)*int(b.header.ValuesPerCell)+v]
}

// Encode serializes the buffer's current contents.
func (b *Buffer) Encode() ([]byte, error) {
	return Encode(b.header, b.values)
}
