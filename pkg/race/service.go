package race

import (
	"context"
	"encoding/csv"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"slotrace/internal/pkg/config"
	"slotrace/internal/pkg/flags"
	"slotrace/internal/pkg/logger"
	"slotrace/internal/pkg/metrics"
)

type handler func() error

// RaceService wires the runners, the event queue, the referee's single
// consumer and the reporter together.
type RaceService struct {
	handlers chan handler
	queue    *EventQueue
	metrics  *metrics.Metrics

	referee *Referee

	complete     chan struct{}
	completeOnce sync.Once
}

// NewRaceService creates and initializes a RaceService instance.
func NewRaceService() *RaceService {
	return &RaceService{
		handlers: make(chan handler),
		queue:    NewEventQueue(),
		metrics:  metrics.New(),
		complete: make(chan struct{}),
	}
}

// Run is the entry point to the RaceService.
func (s *RaceService) Run(c *cli.Context) error {
	cfg, err := config.Load(c.String(flags.Config.Name))
	if err != nil {
		return err
	}

	if lvl := c.String(flags.LogLevel.Name); lvl != "" {
		cfg.LogLevel = lvl
	}
	if f := c.String(flags.LogFile.Name); f != "" {
		cfg.LogFile = f
	}
	if addr := c.String(flags.MetricsAddr.Name); addr != "" {
		cfg.MetricsAddr = addr
	}

	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return err
	}

	commitment, err := ParseCommitment(cfg.Commitment)
	if err != nil {
		return err
	}

	streams := make([]StreamIdentity, 0, len(cfg.Streams))
	for i, sc := range cfg.Streams {
		streams = append(streams, StreamIdentity{ID: StreamID(i), Name: sc.Name, Endpoint: sc.Endpoint})
	}

	s.referee = NewReferee(streams, cfg.MaxSlots, cfg.StopAtMax, cfg.WarmupSlots)

	log.Infof("starting slot race with %d streams", len(streams))
	for _, st := range streams {
		log.Infof("stream %d: %s - %s", st.ID+1, st.Name, st.Endpoint)
	}
	log.Infof("race configuration: max_slots=%d, stop_at_max=%t, commitment=%s, warmup_slots=%d, report_interval=%ds",
		cfg.MaxSlots, cfg.StopAtMax, cfg.Commitment, cfg.WarmupSlots, cfg.ReportInterval)

	if cfg.MetricsAddr != "" {
		lis, err := net.Listen("tcp", cfg.MetricsAddr)
		if err != nil {
			return fmt.Errorf("metrics listener: %w", err)
		}
		go func() {
			if err := s.metrics.Serve(lis); err != nil {
				log.Errorf("metrics endpoint: %v", err)
			}
		}()
		log.Infof("serving metrics on %s/metrics", cfg.MetricsAddr)
	}

	var (
		ctx, cancel   = context.WithCancel(context.Background())
		consumerGroup sync.WaitGroup
		clock         = NewEpochClock()
		passthrough   = NewPassthrough()
	)
	defer cancel()

	consumerGroup.Add(1)
	go s.processEvents(ctx, &consumerGroup)

	for i, st := range streams {
		runner := NewRunner(st, commitment, NewWSDialer(cfg.Streams[i].AccessToken),
			clock, s.queue, passthrough, s.metrics, nil)
		go runner.Run(ctx)
	}

	reporter := NewReporter(time.Duration(cfg.ReportInterval)*time.Second, s.handlers, s.referee)
	go reporter.Run(ctx)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	select {
	case <-s.complete:
		log.Info("race complete, maximum slots reached")
	case <-interrupt:
		log.Info("interrupted, reporting what was gathered so far")
	}

	cancel()
	consumerGroup.Wait()

	// The consumer has stopped; the ledger is safe to read directly now.
	fmt.Print(Summarize(s.referee))

	if path := c.String(flags.Dump.Name); path != "" {
		if err := s.dumpLedger(path, streams); err != nil {
			log.Errorf("cannot dump ledger to %q: %v", path, err)
		}
	}

	return nil
}

// processEvents is the single consumer task: the only goroutine that mutates
// the ledger or reads it on behalf of others. Events and handler closures are
// interleaved in arrival order, so no two mutations ever race.
func (s *RaceService) processEvents(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case h := <-s.handlers:
			if err := h(); err != nil {
				log.Errorf("error in handler: %v", err)
			}
		case ev := <-s.queue.Events():
			if !s.referee.Report(ev.Slot, ev.Stream, ev.Timestamp) && s.referee.IsComplete() {
				// Admission stopped, but runners stay up: late finishes for
				// already-admitted slots keep merging until the process exits.
				s.completeOnce.Do(func() { close(s.complete) })
			}
			s.metrics.TrackedSlots.Set(float64(s.referee.Len()))
		}
	}
}

// dumpLedger writes every tracked slot with its winner and per-stream finish
// timestamps to a CSV file.
func (s *RaceService) dumpLedger(path string, streams []StreamIdentity) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot open file %q: %w", path, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Errorf("cannot close file %q: %v", path, err)
		}
	}()

	names := make(map[StreamID]string, len(streams))
	header := []string{"slot", "winner"}
	for _, st := range streams {
		names[st.ID] = st.Name
		header = append(header, st.Name+" finish (ns)")
	}

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("cannot write CSV header: %w", err)
	}

	records := s.referee.Records()
	for _, rec := range records {
		row := []string{strconv.FormatUint(rec.Slot, 10), names[rec.Winner]}
		for _, st := range streams {
			if ts, ok := rec.Finishes[st.ID]; ok {
				row = append(row, strconv.FormatUint(ts, 10))
			} else {
				row = append(row, "not received")
			}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("cannot write record for slot %d: %w", rec.Slot, err)
		}
	}
	w.Flush()

	log.Infof("dumped %d slot records to %s", len(records), path)

	return w.Error()
}
