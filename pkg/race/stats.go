package race

import (
	"math"
	"sort"

	"slotrace/internal/pkg/utils"
)

// StreamMetrics is a point-in-time latency summary for one stream. Behind
// times measure how far each finish trailed the slot winner; a stream's own
// wins contribute zero.
type StreamMetrics struct {
	Identity      StreamIdentity
	Wins          int
	Participation int
	WinRate       float64
	MedianBehind  float64
	P90Behind     uint64
	P95Behind     uint64
	P99Behind     uint64
}

// median returns the standard median: the middle element for odd n, the mean
// of the two middle elements for even n.
func median(data []uint64) float64 {
	if len(data) == 0 {
		return 0
	}

	sorted := make([]uint64, len(data))
	copy(sorted, data)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

// worstTail returns the nearest-rank percentile over the worst-first ordering:
// data sorted descending, indexed at ceil(n*q)-1. q is the tail share, so
// q=0.10 yields P90. On small samples the tail collapses to the single worst
// value.
func worstTail(data []uint64, q float64) uint64 {
	if len(data) == 0 {
		return 0
	}

	sorted := make([]uint64, len(data))
	copy(sorted, data)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] > sorted[j]
	})

	idx := int(math.Ceil(float64(len(sorted))*q)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// snapshotMetrics recomputes per-stream statistics over the given records,
// sorted ascending by median behind time (fastest stream first). Streams with
// zero participation are skipped.
func snapshotMetrics(records []*SlotRecord, lookup map[StreamID]StreamIdentity) []StreamMetrics {
	var (
		observed = utils.NewHashSet[StreamID]()
		behind   = make(map[StreamID][]uint64)
		wins     = make(map[StreamID]int)
	)

	for _, rec := range records {
		wins[rec.Winner]++
		for id, ts := range rec.Finishes {
			observed.Add(id)

			d := uint64(0)
			if ts > rec.WinnerTimestamp {
				d = ts - rec.WinnerTimestamp
			}
			behind[id] = append(behind[id], d)
		}
	}

	out := make([]StreamMetrics, 0, len(observed))
	for id := range observed {
		times := behind[id]
		if len(times) == 0 {
			continue
		}

		m := StreamMetrics{
			Identity:      lookup[id],
			Wins:          wins[id],
			Participation: len(times),
			MedianBehind:  median(times),
			P90Behind:     worstTail(times, 0.10),
			P95Behind:     worstTail(times, 0.05),
			P99Behind:     worstTail(times, 0.01),
		}
		m.WinRate = float64(m.Wins) / float64(m.Participation) * 100
		out = append(out, m)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].MedianBehind < out[j].MedianBehind
	})

	return out
}
