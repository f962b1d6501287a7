// Package worker runs origin computations on the compute side of the
// pipeline: regional tasks whose results are published to the result channel
// for asynchronous assembly, and interactive single-point tasks answered
// synchronously with an encoded travel-time surface.
//
// The routing computation itself is behind the Computer interface; this
// package owns task routing, fault injection, and result publication.
package worker
