package grid

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Encode serializes a header and its flattened value array into the binary
// grid format.
//
// values is indexed as (row*width+col)*valuesPerCell + valueIndex. Each of
// the ValuesPerCell logical layers is written as a delta run over all cells
// in row-major order, starting from an implicit zero at the top of the layer.
//
// Returns ErrFormat if len(values) disagrees with the header, or
// ErrCapacityExceeded via Header.Validate for oversized grids.
func Encode(h Header, values []int32) ([]byte, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	if len(values) != h.ValueCount() {
		return nil, fmt.Errorf("%w: %d values for a %dx%dx%d grid", ErrFormat, len(values), h.Width, h.Height, h.ValuesPerCell)
	}

	out := make([]byte, h.SizeBytes())
	copy(out, Magic)
	putHeaderInts(out[len(Magic):], h)

	vpc := int(h.ValuesPerCell)
	cells := h.CellCount()
	pos := HeaderSize
	for layer := 0; layer < vpc; layer++ {
		prev := int32(0)
		for cell := 0; cell < cells; cell++ {
			cur := values[cell*vpc+layer]
			binary.LittleEndian.PutUint32(out[pos:], uint32(cur-prev))
			prev = cur
			pos += 4
		}
	}

	return out, nil
}

// Decode parses binary grid bytes back into a header and flattened value
// array, integrating each layer's delta run from zero.
//
// Returns ErrFormat if the magic or version do not match, or if the declared
// dimensions imply a byte length inconsistent with the input.
func Decode(data []byte) (Header, []int32, error) {
	if len(data) < HeaderSize {
		return Header{}, nil, fmt.Errorf("%w: %d bytes is shorter than the %d-byte header", ErrFormat, len(data), HeaderSize)
	}
	if !bytes.Equal(data[:len(Magic)], []byte(Magic)) {
		return Header{}, nil, fmt.Errorf("%w: bad magic %q", ErrFormat, data[:len(Magic)])
	}
	version := int32(binary.LittleEndian.Uint32(data[len(Magic):]))
	if version != Version {
		return Header{}, nil, fmt.Errorf("%w: version %d, expected %d", ErrFormat, version, Version)
	}

	h := Header{
		Zoom:          int32(binary.LittleEndian.Uint32(data[12:])),
		West:          int32(binary.LittleEndian.Uint32(data[16:])),
		North:         int32(binary.LittleEndian.Uint32(data[20:])),
		Width:         int32(binary.LittleEndian.Uint32(data[24:])),
		Height:        int32(binary.LittleEndian.Uint32(data[28:])),
		ValuesPerCell: int32(binary.LittleEndian.Uint32(data[32:])),
	}
	if err := h.Validate(); err != nil {
		return Header{}, nil, err
	}
	if int64(len(data)) != h.SizeBytes() {
		return Header{}, nil, fmt.Errorf("%w: %d bytes, header declares %d", ErrFormat, len(data), h.SizeBytes())
	}

	vpc := int(h.ValuesPerCell)
	cells := h.CellCount()
	values := make([]int32, h.ValueCount())
	pos := HeaderSize
	for layer := 0; layer < vpc; layer++ {
		running := int32(0)
		for cell := 0; cell < cells; cell++ {
			running += int32(binary.LittleEndian.Uint32(data[pos:]))
			values[cell*vpc+layer] = running
			pos += 4
		}
	}

	return h, values, nil
}

// putHeaderInts writes the seven post-magic header fields, version first.
func putHeaderInts(dst []byte, h Header) {
	for i, v := range [7]int32{Version, h.Zoom, h.West, h.North, h.Width, h.Height, h.ValuesPerCell} {
		binary.LittleEndian.PutUint32(dst[i*4:], uint32(v))
	}
}
