// Package cache provides an asynchronous, polling loader for expensive
// build-on-first-use values such as street networks and destination grids.
//
// Callers never block on a build. Get returns immediately with the current
// state of the requested key: waiting, building, present, or failed. The
// first Get for a key enqueues exactly one background build; subsequent
// calls observe its progress by polling.
package cache
