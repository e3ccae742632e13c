package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Handler processes one message. A returned error counts as a failed attempt.
type Handler func(ctx context.Context, msg Message) error

// Observer is notified as messages leave the queue.
type Observer interface {
	ExportMessage(stage string)
}

// ConsumerConfig tunes a Consumer.
type ConsumerConfig struct {
	Queue        string
	Workers      int
	PollInterval time.Duration
	// MaxAttempts is how many times a message is tried before it is dead-lettered.
	MaxAttempts int
}

// Consumer drains a queue with a fixed pool of workers.
type Consumer struct {
	q        *Queue
	cfg      ConsumerConfig
	handler  Handler
	logger   *slog.Logger
	observer Observer
}

// NewConsumer creates a consumer. observer may be nil.
func NewConsumer(q *Queue, cfg ConsumerConfig, handler Handler, logger *slog.Logger, observer Observer) *Consumer {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{q: q, cfg: cfg, handler: handler, logger: logger, observer: observer}
}

// Run consumes until ctx is cancelled. Messages left in flight by an earlier
// run are returned to the queue first.
func (c *Consumer) Run(ctx context.Context) error {
	if n, err := c.q.Recover(ctx, c.cfg.Queue); err != nil {
		return fmt.Errorf("recover in-flight messages: %w", err)
	} else if n > 0 {
		c.logger.Info("recovered in-flight messages", "queue", c.cfg.Queue, "count", n)
	}

	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan Message)

	for range c.cfg.Workers {
		g.Go(func() error {
			for msg := range jobs {
				c.handle(ctx, msg)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(jobs)
		ticker := time.NewTicker(c.cfg.PollInterval)
		defer ticker.Stop()

		for {
			msgs, err := c.q.Claim(ctx, c.cfg.Queue, c.cfg.Workers)
			if err != nil {
				c.logger.Warn("claim failed", "queue", c.cfg.Queue, "error", err)
			}
			for _, m := range msgs {
				select {
				case jobs <- m:
				case <-ctx.Done():
					// Unsent claims are recovered on the next start.
					return nil
				}
			}
			if len(msgs) > 0 {
				continue
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return nil
			}
		}
	})

	return g.Wait()
}

// DrainOnce claims and processes every message currently pending, sequentially.
// Used by tooling and tests.
func (c *Consumer) DrainOnce(ctx context.Context) (int, error) {
	processed := 0
	for {
		msgs, err := c.q.Claim(ctx, c.cfg.Queue, c.cfg.Workers)
		if err != nil {
			return processed, err
		}
		if len(msgs) == 0 {
			return processed, nil
		}
		for _, m := range msgs {
			c.handle(ctx, m)
			processed++
		}
	}
}

func (c *Consumer) handle(ctx context.Context, m Message) {
	log := c.logger.With("queue", m.Queue, "message_id", m.ID, "attempt", m.Attempts)

	err := c.handler(ctx, m)
	switch {
	case err == nil:
		if ackErr := c.q.Ack(ctx, m); ackErr != nil {
			log.Error("ack failed", "error", ackErr)
			return
		}
		c.observe("processed")
		log.Debug("message processed")

	case m.Attempts >= c.cfg.MaxAttempts:
		if dlErr := c.q.DeadLetter(ctx, m, err); dlErr != nil {
			log.Error("dead-letter failed", "error", dlErr)
			return
		}
		c.observe("dead_lettered")
		log.Warn("message dead-lettered", "error", err)

	default:
		if nackErr := c.q.Nack(ctx, m, err); nackErr != nil {
			log.Error("nack failed", "error", nackErr)
			return
		}
		c.observe("retried")
		log.Warn("message failed, will retry", "error", err)
	}
}

func (c *Consumer) observe(stage string) {
	if c.observer != nil {
		c.observer.ExportMessage(stage)
	}
}
