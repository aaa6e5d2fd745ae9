package session

import (
	"container/heap"
	"context"
	"time"

	"pks/internal/keys"
)

// indTimer is one independent key on a fixed cadence: each firing is
// scheduled relative to the previous due time, not the send time, so
// emission jitter does not accumulate.
type indTimer struct {
	combo    keys.Combo
	interval time.Duration
	due      time.Time
	order    int // configuration position, breaks due-time ties
}

type timerHeap []*indTimer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].order < h[j].order
	}
	return h[i].due.Before(h[j].due)
}

func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x any) { *h = append(*h, x.(*indTimer)) }

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

// runIndependent drives all per-key timers from a single goroutine: sleep
// until the earliest due time, send that key, and reschedule it one
// interval later. Simultaneous due times fire in configuration order.
func (s *Session) runIndependent(ctx context.Context) error {
	now := time.Now()
	h := make(timerHeap, len(s.timers))
	for i, spec := range s.timers {
		h[i] = &indTimer{combo: spec.combo, interval: spec.interval, due: now.Add(spec.interval), order: i}
	}
	heap.Init(&h)

	base := s.shiftSnapshot()
	for {
		if cur := s.shiftSnapshot(); cur != base {
			// A pause ended; push every cadence forward by the paused
			// time. A uniform shift preserves the heap order.
			delta := cur - base
			base = cur
			for _, t := range h {
				t.due = t.due.Add(delta)
			}
		}

		next := h[0]
		fired, err := s.sleepUntil(ctx, next.due)
		if err != nil {
			return err
		}
		if !fired {
			continue
		}

		t := heap.Pop(&h).(*indTimer)
		if err := s.emitStep(ctx, t.combo, 0, 0); err != nil {
			return err
		}
		t.due = t.due.Add(t.interval)
		// If a stall (pause, relocation) pushed the cadence fully into
		// the past, skip ahead instead of firing a burst of catch-ups.
		if now := time.Now(); t.due.Before(now) {
			behind := now.Sub(t.due)
			t.due = t.due.Add(behind.Truncate(t.interval) + t.interval)
		}
		heap.Push(&h, t)
	}
}
