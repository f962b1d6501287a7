// Package channel provides types.ResultChannel implementations.
//
// NATS is the primary transport, backed by a JetStream work-queue stream with
// explicit acknowledgment. AMQP adapts a RabbitMQ queue with manual acks.
// Memory is an in-process channel for tests, with explicit redelivery control
// so duplicate and late delivery can be simulated deterministically.
//
// All three deliver at-least-once: a fetched message that is never
// acknowledged becomes visible again after the transport's redelivery
// timeout.
package channel
