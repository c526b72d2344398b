package race

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testStreams() []StreamIdentity {
	return []StreamIdentity{
		{ID: 0, Name: "stream-a", Endpoint: "wss://a.example.com"},
		{ID: 1, Name: "stream-b", Endpoint: "wss://b.example.com"},
	}
}

func metricsFor(t *testing.T, snapshot []StreamMetrics, name string) StreamMetrics {
	t.Helper()
	for _, m := range snapshot {
		if m.Identity.Name == name {
			return m
		}
	}
	t.Fatalf("no metrics for stream %q", name)
	return StreamMetrics{}
}

func TestRefereeTwoSlotRace(t *testing.T) {
	ref := NewReferee(testStreams(), 10, false, 0)

	require.True(t, ref.Report(1, 0, 100))
	require.True(t, ref.Report(1, 1, 250))
	require.True(t, ref.Report(2, 1, 50))
	require.True(t, ref.Report(2, 0, 900))

	require.Equal(t, 2, ref.Len())
	require.Equal(t, 2, ref.CompleteCount())

	records := ref.Records()
	require.Equal(t, uint64(1), records[0].Slot)
	require.Equal(t, StreamID(0), records[0].Winner)
	require.Equal(t, uint64(100), records[0].WinnerTimestamp)
	require.Equal(t, uint64(250), records[0].Finishes[1])

	require.Equal(t, uint64(2), records[1].Slot)
	require.Equal(t, StreamID(1), records[1].Winner)

	snapshot := ref.SnapshotMetrics()
	require.Len(t, snapshot, 2)

	a := metricsFor(t, snapshot, "stream-a")
	require.Equal(t, 1, a.Wins)
	require.Equal(t, 2, a.Participation)
	require.InDelta(t, 50.0, a.WinRate, 1e-9)
	require.InDelta(t, 425.0, a.MedianBehind, 1e-9)

	b := metricsFor(t, snapshot, "stream-b")
	require.Equal(t, 1, b.Wins)
	require.Equal(t, 2, b.Participation)
	require.InDelta(t, 75.0, b.MedianBehind, 1e-9)

	// Fastest stream first.
	require.Equal(t, "stream-b", snapshot[0].Identity.Name)
}

func TestRefereeFrozenAtCapacity(t *testing.T) {
	ref := NewReferee(testStreams(), 3, true, 0)

	require.True(t, ref.Report(10, 0, 100))
	require.True(t, ref.Report(11, 0, 200))
	require.False(t, ref.IsComplete())
	require.True(t, ref.Report(12, 0, 300))
	require.True(t, ref.IsComplete())

	// A fourth, unseen slot is refused and the ledger stays put.
	require.False(t, ref.Report(13, 1, 400))
	require.Equal(t, 3, ref.Len())

	// Late finishes for admitted slots still merge.
	require.True(t, ref.Report(11, 1, 500))
	require.Equal(t, uint64(500), ref.Records()[1].Finishes[1])
	require.Equal(t, 3, ref.Len())
}

func TestRefereeRingEviction(t *testing.T) {
	ref := NewReferee(testStreams(), 3, false, 0)

	for slot := uint64(1); slot <= 5; slot++ {
		require.True(t, ref.Report(slot, 0, slot*10))
		require.LessOrEqual(t, ref.Len(), 3)
	}

	records := ref.Records()
	require.Len(t, records, 3)
	require.Equal(t, uint64(3), records[0].Slot)
	require.Equal(t, uint64(5), records[2].Slot)

	// An evicted slot is treated as brand new again.
	require.True(t, ref.Report(1, 1, 999))
	require.Equal(t, StreamID(1), ref.Records()[2].Winner)
}

func TestRefereeWinnerIsFirstArrival(t *testing.T) {
	ref := NewReferee(testStreams(), 10, false, 0)

	// Arrival order decides, not the embedded timestamps: a later report
	// carrying an earlier timestamp never rewrites the winner.
	require.True(t, ref.Report(7, 1, 500))
	require.True(t, ref.Report(7, 0, 100))

	rec := ref.Records()[0]
	require.Equal(t, StreamID(1), rec.Winner)
	require.Equal(t, uint64(500), rec.WinnerTimestamp)

	// The earlier-timestamp finisher is behind by zero, never negative.
	a := metricsFor(t, ref.SnapshotMetrics(), "stream-a")
	require.InDelta(t, 0.0, a.MedianBehind, 1e-9)
}

func TestRefereeDuplicateFinishLastWriteWins(t *testing.T) {
	ref := NewReferee(testStreams(), 10, false, 0)

	require.True(t, ref.Report(1, 0, 100))
	require.True(t, ref.Report(1, 1, 200))
	require.True(t, ref.Report(1, 1, 300))

	rec := ref.Records()[0]
	require.Len(t, rec.Finishes, 2)
	require.Equal(t, uint64(300), rec.Finishes[1])
}

func TestParseCommitment(t *testing.T) {
	for _, valid := range []string{"processed", "confirmed", "finalized"} {
		c, err := ParseCommitment(valid)
		require.NoError(t, err)
		require.Equal(t, Commitment(valid), c)
	}

	_, err := ParseCommitment("optimistic")
	require.Error(t, err)

	_, err = ParseCommitment("")
	require.Error(t, err)
}
