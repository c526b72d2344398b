package race

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Reporter periodically requests a metrics snapshot through the consumer's
// handler channel and logs a ranked summary. It never reads the referee
// directly: the closure it submits runs on the consumer goroutine, so reads
// are serialized with ledger mutation.
type Reporter struct {
	interval time.Duration
	handlers chan<- handler
	referee  *Referee
}

// NewReporter creates a reporter ticking at the given interval.
func NewReporter(interval time.Duration, handlers chan<- handler, referee *Referee) *Reporter {
	return &Reporter{
		interval: interval,
		handlers: handlers,
		referee:  referee,
	}
}

// Run ticks until ctx is cancelled or the race completes.
func (r *Reporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			summary, complete, ok := r.snapshot(ctx)
			if !ok {
				return
			}

			log.Info(summary)

			if complete {
				return
			}
		}
	}
}

// snapshot round-trips one closure through the consumer. ok is false when ctx
// was cancelled before the consumer answered.
func (r *Reporter) snapshot(ctx context.Context) (summary string, complete bool, ok bool) {
	done := make(chan struct{})

	h := func() error {
		summary = Summarize(r.referee)
		complete = r.referee.IsComplete()
		close(done)
		return nil
	}

	select {
	case r.handlers <- h:
	case <-ctx.Done():
		return "", false, false
	}

	select {
	case <-done:
	case <-ctx.Done():
		return "", false, false
	}

	return summary, complete, true
}

// Summarize formats the ranked race summary. It must run on the consumer
// goroutine, or after the consumer has stopped.
func Summarize(ref *Referee) string {
	var (
		streams  = ref.SnapshotMetrics()
		complete = ref.CompleteCount()
		b        strings.Builder
	)

	fmt.Fprintf(&b, "\nRace summary\n")
	fmt.Fprintf(&b, "Total slots tracked: %d\n", ref.Len())
	fmt.Fprintf(&b, "Complete records (every stream finished): %d\n", complete)
	fmt.Fprintf(&b, "Partial records: %d\n", ref.Len()-complete)

	for i, m := range streams {
		fmt.Fprintf(&b, "#%d %s: wins %d/%d (%.1f%%), behind winner median=%.3fms P90=%.3fms P95=%.3fms P99=%.3fms\n",
			i+1, m.Identity.Name, m.Wins, m.Participation, m.WinRate,
			m.MedianBehind/1e6,
			float64(m.P90Behind)/1e6,
			float64(m.P95Behind)/1e6,
			float64(m.P99Behind)/1e6)
	}

	if len(streams) > 0 {
		fmt.Fprintf(&b, ">>> fastest stream: %s\n", streams[0].Identity.Name)
	}

	return b.String()
}
