// Package grid implements the binary access-grid format: a 9-field
// little-endian header followed by delta-coded 32-bit values, and a
// positional buffer for accumulating per-origin results before encoding.
//
// The format is deliberately little-endian regardless of host byte order
// because the primary consumers read typed arrays in processor byte order,
// which is uniformly little-endian. Delta coding stores each value as the
// plain signed difference from the previous value in the same layer;
// spatially adjacent cells usually hold similar values, so deltas materially
// improve downstream compression without the codec compressing anything
// itself.
//
// The package is pure: no I/O beyond the supplied byte slices and writers.
package grid
