package race

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"

	"slotrace/internal/pkg/metrics"
	"slotrace/internal/pkg/ws"
)

// Feed is an established, subscribed upstream connection.
type Feed interface {
	// Next blocks until the next raw inbound frame.
	Next() ([]byte, error)
	// Pong replies to a server heartbeat, echoing its correlation id.
	Pong(id int64) error
	Close() error
}

// Dialer establishes a subscribed Feed for one stream.
type Dialer interface {
	Dial(ctx context.Context, stream StreamIdentity, commitment Commitment) (Feed, error)
}

// BackoffFactory builds the retry policy for one runner lifecycle. Tests
// substitute a deterministic or zero-wait policy.
type BackoffFactory func() backoff.BackOff

// DefaultBackoff retries forever with the library's default initial delay,
// multiplier and cap.
func DefaultBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 0
	return bo
}

// Runner owns the connect, subscribe, consume lifecycle for one stream.
// Failures are transient by definition: the loop backs off and reconnects
// until the process exits, independent of the other streams.
type Runner struct {
	stream      StreamIdentity
	commitment  Commitment
	dialer      Dialer
	clock       Clock
	queue       *EventQueue
	passthrough *Passthrough
	metrics     *metrics.Metrics
	newBackoff  BackoffFactory
}

// NewRunner wires a runner for one stream. A nil factory selects
// DefaultBackoff.
func NewRunner(
	stream StreamIdentity,
	commitment Commitment,
	dialer Dialer,
	clock Clock,
	queue *EventQueue,
	passthrough *Passthrough,
	m *metrics.Metrics,
	factory BackoffFactory,
) *Runner {
	if factory == nil {
		factory = DefaultBackoff
	}

	return &Runner{
		stream:      stream,
		commitment:  commitment,
		dialer:      dialer,
		clock:       clock,
		queue:       queue,
		passthrough: passthrough,
		metrics:     m,
		newBackoff:  factory,
	}
}

// Run drives the lifecycle until ctx is cancelled. The backoff policy resets
// after every successful subscribe, so a stream that recovers and later fails
// again starts over from the initial delay.
func (r *Runner) Run(ctx context.Context) {
	bo := r.newBackoff()

	for {
		err := r.connectAndConsume(ctx, bo)
		if ctx.Err() != nil {
			return
		}

		r.metrics.Reconnects.WithLabelValues(r.stream.Name).Inc()

		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			log.Errorf("[%s] retry policy exhausted: %v", r.stream, err)
			return
		}
		log.Errorf("[%s] connection failed, retrying in %s: %v", r.stream, wait, err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

func (r *Runner) connectAndConsume(ctx context.Context, bo backoff.BackOff) error {
	log.Infof("[%s] connecting to %s", r.stream, r.stream.Endpoint)

	feed, err := r.dialer.Dial(ctx, r.stream, r.commitment)
	if err != nil {
		return fmt.Errorf("connect and subscribe: %w", err)
	}
	defer func() {
		if err := feed.Close(); err != nil {
			log.Errorf("[%s] cannot close feed: %v", r.stream, err)
		}
	}()

	log.Infof("[%s] subscribed to slot updates at commitment %q, waiting for messages", r.stream, r.commitment)
	bo.Reset()

	return r.consume(feed)
}

func (r *Runner) consume(feed Feed) error {
	for {
		raw, err := feed.Next()
		// Timestamp before any decoding, so measurement skew stays bounded
		// by the read itself.
		ts := r.clock.ElapsedNanos()
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}

		env, err := ws.Decode(raw)
		if err != nil {
			return fmt.Errorf("decode frame: %w", err)
		}

		switch env.Kind {
		case ws.KindSlot:
			log.Debugf("[%s] slot update: slot=%d, parent=%d, status=%s, received_at=%dns",
				r.stream, env.Slot.Slot, env.Slot.Parent, env.Slot.Status, ts)
			r.queue.Push(SlotReport{Slot: env.Slot.Slot, Stream: r.stream.ID, Timestamp: ts})
			r.metrics.SlotNotifications.WithLabelValues(r.stream.Name).Inc()

		case ws.KindPing:
			log.Debugf("[%s] ping from server, replying to keep the connection alive", r.stream)
			if err := feed.Pong(env.PingID); err != nil {
				return fmt.Errorf("heartbeat reply: %w", err)
			}

		case ws.KindPong:
			log.Debugf("[%s] pong response with id %d", r.stream, env.PongID)

		case ws.KindAccount, ws.KindTransaction, ws.KindBlock:
			r.passthrough.Observe(r.stream, env)
			r.metrics.PassthroughUpdates.WithLabelValues(r.stream.Name, env.Kind.String()).Inc()

		default:
			log.Warnf("[%s] received unknown update type", r.stream)
		}
	}
}
