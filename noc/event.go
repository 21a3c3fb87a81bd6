package noc

// Event wheel: the simulator kernel's per-cycle wakeup mechanism (spec
// §6). Grounded on sim/cluster/event_heap.go's deterministic
// EventHeap, adapted to this package's single event kind — every NI
// self-reschedules its own wakeup every cycle (spec §6: "the dataflow
// mode always self-reschedules").

import "container/heap"

// WakeupEvent is the only event kind the kernel drives: "wake NI id at
// cycle timestamp".
type WakeupEvent struct {
	timestamp int64
	ni        NIID
}

func (e *WakeupEvent) Timestamp() int64 { return e.timestamp }

// eventHeap implements heap.Interface ordering by (timestamp, NI id)
// so that, for events sharing a timestamp, lower NI ids are processed
// first — a fixed, deterministic tie-break (spec §5: "all NIs' cycle-N
// happen before any cycle-(N+1)").
type eventHeap []*WakeupEvent

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].timestamp != h[j].timestamp {
		return h[i].timestamp < h[j].timestamp
	}
	return h[i].ni < h[j].ni
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) { *h = append(*h, x.(*WakeupEvent)) }

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// EventQueue wraps eventHeap with the heap.Interface plumbing.
type EventQueue struct {
	h eventHeap
}

func NewEventQueue() *EventQueue {
	eq := &EventQueue{}
	heap.Init(&eq.h)
	return eq
}

func (eq *EventQueue) Len() int { return eq.h.Len() }

func (eq *EventQueue) Schedule(timestamp int64, ni NIID) {
	heap.Push(&eq.h, &WakeupEvent{timestamp: timestamp, ni: ni})
}

func (eq *EventQueue) PopNext() *WakeupEvent {
	if eq.h.Len() == 0 {
		return nil
	}
	return heap.Pop(&eq.h).(*WakeupEvent)
}
