// Package testing provides test utilities for the assembly library.
//
// It offers helpers for setting up test environments, particularly an
// embedded NATS server with JetStream for integration testing. It follows
// Go's convention of providing testing utilities in a dedicated package
// (similar to net/http/httptest).
//
// Example usage:
//
//	import (
//	    "testing"
//	    assemblytest "github.com/conveyal/r5-sub005/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := assemblytest.StartEmbeddedNATS(t)
//	    // Use nc for your tests
//	}
package testing
