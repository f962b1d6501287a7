package logging

import "github.com/conveyal/r5-sub005/types"

// NopLogger discards all log messages. Used as the default when no logger is
// configured and in tests that should stay quiet.
type NopLogger struct{}

// Compile-time assertion that NopLogger implements Logger.
var _ types.Logger = (*NopLogger)(nil)

// NewNop creates a no-op logger.
func NewNop() *NopLogger {
	return &NopLogger{}
}

// Debug discards the message.
func (n *NopLogger) Debug(_ string, _ ...any) {}

// Info discards the message.
func (n *NopLogger) Info(_ string, _ ...any) {}

// Warn discards the message.
func (n *NopLogger) Warn(_ string, _ ...any) {}

// Error discards the message.
func (n *NopLogger) Error(_ string, _ ...any) {}

// Fatal discards the message. Unlike production loggers it does not terminate
// the process; tests rely on this.
func (n *NopLogger) Fatal(_ string, _ ...any) {}
