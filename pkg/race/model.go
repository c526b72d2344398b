// Package race contains the core of the benchmark: the shared epoch clock,
// the per-stream runners, the event ordering queue, the referee that decides
// per-slot winners, and the reporting on top of it.
package race

import "fmt"

// StreamID identifies a configured stream. IDs are assigned in configuration
// order at startup and stay stable for the process lifetime; streams are
// always compared by ID, never by matching display strings.
type StreamID int

// StreamIdentity couples a StreamID with its display name and endpoint.
type StreamIdentity struct {
	ID       StreamID
	Name     string
	Endpoint string
}

func (s StreamIdentity) String() string {
	return s.Name
}

// SlotReport is the race event a runner emits for every slot notification.
type SlotReport struct {
	Slot      uint64
	Stream    StreamID
	Timestamp uint64
}

// SlotRecord tracks one slot race. The winner is the stream whose report
// created the record; it is never revised, even if a later report carries an
// earlier timestamp. Finishes holds the latest reported timestamp per stream,
// the winner included.
type SlotRecord struct {
	Slot            uint64
	Winner          StreamID
	WinnerTimestamp uint64
	Finishes        map[StreamID]uint64
}

// Commitment is the durability tier of slot notifications to subscribe to.
type Commitment string

const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

// ParseCommitment validates a configured commitment string.
func ParseCommitment(s string) (Commitment, error) {
	switch Commitment(s) {
	case CommitmentProcessed, CommitmentConfirmed, CommitmentFinalized:
		return Commitment(s), nil
	}
	return "", fmt.Errorf("invalid commitment level %q, must be one of: processed, confirmed, finalized", s)
}
