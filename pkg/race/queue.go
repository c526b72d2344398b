package race

// EventQueue is the sole path by which race data reaches the referee: many
// producing runners, exactly one consumer. It is unbounded, so producers never
// observe backpressure from a slow consumer, and delivery order equals enqueue
// order. A slot's winner is therefore decided by processing order, which only
// approximates true network-arrival order; that trade is what makes the
// lock-free single-writer referee possible.
type EventQueue struct {
	in  chan SlotReport
	out chan SlotReport
}

// NewEventQueue creates the queue and starts its pump.
func NewEventQueue() *EventQueue {
	q := &EventQueue{
		in:  make(chan SlotReport, 64),
		out: make(chan SlotReport),
	}
	go q.pump()
	return q
}

// pump moves events from the intake side to the consumer side through an
// unbounded buffer. The intake case stays enabled even while the consumer is
// idle, which is what keeps producers from ever waiting on it.
func (q *EventQueue) pump() {
	defer close(q.out)

	var buf []SlotReport
	for {
		var (
			out  chan SlotReport
			next SlotReport
		)
		if len(buf) > 0 {
			out = q.out
			next = buf[0]
		}

		select {
		case ev, ok := <-q.in:
			if !ok {
				for _, pending := range buf {
					q.out <- pending
				}
				return
			}
			buf = append(buf, ev)
		case out <- next:
			buf = buf[1:]
		}
	}
}

// Push enqueues a report. It never waits on the consumer.
func (q *EventQueue) Push(ev SlotReport) {
	q.in <- ev
}

// Events is the consumer side of the queue.
func (q *EventQueue) Events() <-chan SlotReport {
	return q.out
}

// Close stops intake. Already-enqueued events are still delivered, then the
// Events channel closes. Push must not be called after Close.
func (q *EventQueue) Close() {
	close(q.in)
}
