package assembly

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/conveyal/r5-sub005/internal/logging"
	"github.com/conveyal/r5-sub005/internal/metrics"
	"github.com/conveyal/r5-sub005/internal/natsutil"
	"github.com/conveyal/r5-sub005/types"
)

// Consumer is the long-running loop that drains the result channel and routes
// each message to the assembler registered for its job.
//
// One Consumer runs per assembling process; dispatch is single-threaded.
// Messages are acknowledged as a batch only after the dispatch pass for a
// poll cycle completes, never before, so a crash mid-processing causes
// redelivery rather than silent loss.
type Consumer struct {
	channel  types.ResultChannel
	registry *Registry
	cfg      Config
	logger   types.Logger
	metrics  types.MetricsCollector
}

// NewConsumer creates a consumer draining ch into reg.
//
// A nil cfg gets defaults; a non-nil cfg is defaulted and validated.
func NewConsumer(ch types.ResultChannel, reg *Registry, cfg *Config, opts ...Option) (*Consumer, error) {
	if ch == nil || reg == nil {
		return nil, errors.New("channel and registry are required")
	}

	var conf Config
	if cfg != nil {
		conf = *cfg
	}
	conf.SetDefaults()
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	o := options{
		logger:  logging.NewNop(),
		metrics: metrics.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Consumer{
		channel:  ch,
		registry: reg,
		cfg:      conf,
		logger:   o.logger,
		metrics:  o.metrics,
	}, nil
}

// Run polls the channel until ctx is cancelled.
//
// Transient channel errors are logged and retried indefinitely after a fixed
// backoff; only cancellation exits the loop, and the in-flight batch is
// allowed to finish first. Individual malformed or unroutable messages are
// never retried by this loop: they are acknowledged and dropped, or left for
// the channel's own redelivery, per policy.
//
// Always returns nil on a clean shutdown.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("result consumer started",
		"batchSize", c.cfg.ReceiveBatchSize,
		"receiveWait", c.cfg.ReceiveWait,
		"unknownJobPolicy", c.cfg.UnknownJobPolicy,
	)

	for {
		if ctx.Err() != nil {
			c.logger.Info("shutdown requested, stopping result consumer")

			return nil
		}

		msgs, err := c.channel.Fetch(ctx, c.cfg.ReceiveBatchSize, c.cfg.ReceiveWait)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.logger.Info("shutdown requested, stopping result consumer")

				return nil
			}
			c.metrics.RecordChannelError()
			if natsutil.IsConnectivityError(err) {
				c.logger.Warn("result channel unreachable, retrying",
					"error", err, "backoff", c.cfg.RetryBackoff)
			} else {
				c.logger.Error("error fetching from result channel, assuming transient and retrying",
					"error", err, "backoff", c.cfg.RetryBackoff)
			}
			select {
			case <-ctx.Done():
				c.logger.Info("shutdown requested, stopping result consumer")

				return nil
			case <-time.After(c.cfg.RetryBackoff):
			}

			continue
		}
		if len(msgs) == 0 {
			continue
		}

		acks := make([]types.Message, 0, len(msgs))
		for _, msg := range msgs {
			if c.route(msg) {
				acks = append(acks, msg)
			}
		}
		if len(acks) > 0 {
			if err := c.channel.Ack(ctx, acks); err != nil {
				// Redelivery of already-routed messages is harmless: the
				// assembler's received-set check absorbs the duplicates.
				c.logger.Warn("failed to acknowledge routed messages, expecting redelivery",
					"count", len(acks), "error", err)
			}
		}
	}
}

// route dispatches one message and reports whether it should be acknowledged.
func (c *Consumer) route(msg types.Message) bool {
	jobID := msg.Attribute(types.AttrJobID)
	if jobID == "" {
		c.logger.Error("discarding unroutable message",
			"messageId", msg.ID(), "error", types.ErrMissingJobAttribute)
		c.metrics.RecordUnroutableMessage("malformed")

		return true
	}

	var res types.OriginResult
	if err := json.Unmarshal(msg.Body(), &res); err != nil {
		c.logger.Error("undecodable result payload, discarding",
			"messageId", msg.ID(), "jobId", jobID, "error", err)
		c.metrics.RecordUnroutableMessage("malformed")

		return true
	}

	status, err := c.registry.Dispatch(jobID, &res)
	switch status {
	case Dispatched:
		if err != nil {
			// Rejected or failed results are not retried; redelivering the
			// same payload cannot succeed.
			c.logger.Error("assembler could not process result",
				"jobId", jobID, "taskId", res.TaskID, "error", err)
		}

		return true
	case JobRetired:
		c.logger.Debug("late result for retired job, discarding", "jobId", jobID, "taskId", res.TaskID)
		c.metrics.RecordUnroutableMessage("retired-job")

		return true
	case JobUnknown:
		c.metrics.RecordUnroutableMessage("unknown-job")
		if c.cfg.UnknownJobPolicy == UnknownJobDrop {
			c.logger.Warn("result for unknown job, discarding per policy", "jobId", jobID)

			return true
		}
		c.logger.Warn("result for unknown job, leaving for redelivery", "jobId", jobID)

		return false
	default:
		c.logger.Error("unexpected dispatch status", "jobId", jobID, "status", int(status))

		return false
	}
}
