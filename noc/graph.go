package noc

// GraphTask / GraphEdge model: the immutable task-graph topology plus
// mutable per-iteration execution/token-memory state (spec §3). Tasks
// and edges live in flat arenas keyed by stable ids (spec §9) rather
// than holding owning pointers into each other's NI — cross-NI
// interaction happens only via flits and the InMemoryUpdate inbox
// (network.go).

// GraphTask is one vertex of a task graph, bound to a specific core.
type GraphTask struct {
	ID       TaskID
	Core     CoreID
	App      AppIdx
	Incoming []EdgeID
	Outgoing []EdgeID

	RequiredIterations int64
	Completed          int64 // invariant: Completed <= CETimes <= RequiredIterations
	CETimes            int64 // "currently entered" iteration count

	ExecDist Distribution // per-iteration random execution-time draw

	AllTokensReceivedAt int64 // cycle of the max incoming-edge receive time (or entry cycle if head)
}

// IsHead reports whether this task has no incoming edges.
func (t *GraphTask) IsHead() bool {
	return len(t.Incoming) == 0
}

// EligibleForEntry checks invariant #2 of spec §4.1: every incoming
// edge must have a pending in-token (a head task always passes).
func (t *GraphTask) EligibleForEntry(edges *EdgeArena) bool {
	if t.CETimes >= t.RequiredIterations {
		// spec §4.8: entering a task whose CETimes == required is
		// skipped silently, not an error.
		return false
	}
	for _, eid := range t.Incoming {
		if edges.Get(eid).InTokens <= 0 {
			return false
		}
	}
	return true
}

// HasFullOutMemory checks invariant #1 of spec §4.1: any outgoing edge
// whose out-memory is full makes the task ineligible.
func (t *GraphTask) HasFullOutMemory(edges *EdgeArena) bool {
	for _, eid := range t.Outgoing {
		e := edges.Get(eid)
		if e.OutCapacity-e.OutTokens <= 0 {
			return true
		}
	}
	return false
}

// GraphEdge is one directed arc carrying tokens between two tasks.
type GraphEdge struct {
	ID         EdgeID
	SrcTask    TaskID
	DestTask   TaskID
	SrcCore    CoreID
	DestCore   CoreID
	SrcNI      NIID
	DestNI     NIID
	App        AppIdx
	VCChoice   VCChoice

	InCapacity  int64
	OutCapacity int64

	InReadPtr, InWritePtr   int64
	OutReadPtr, OutWritePtr int64

	InTokens  int64 // 0 <= InTokens <= InCapacity
	OutTokens int64 // 0 <= OutTokens <= OutCapacity

	TokenSizeDist   Distribution // per-token random size (bits)
	InterDeparture  Distribution // per-packet random inter-departure interval

	LastTokenReceivedCycle int64

	nextTokenID int64
	// total counters back the testable invariant:
	// TotalProduced - TotalConsumed == InFlight + InTokens
	TotalProduced int64
	TotalConsumed int64
}

// InFlight returns the number of tokens currently on the wire: sent by
// the producer but not yet committed at the destination.
func (e *GraphEdge) InFlight() int64 {
	return e.TotalProduced - e.TotalConsumed - e.InTokens
}

// NewTokenID allocates and returns the next token id on this edge.
func (e *GraphEdge) NewTokenID() int64 {
	e.nextTokenID++
	return e.nextTokenID
}

// ReserveOutMemory advances the out-memory write pointer, reserving a
// slot for a freshly produced token (called on task entry, spec §4.1).
func (e *GraphEdge) ReserveOutMemory() bool {
	if e.OutCapacity-e.OutTokens <= 0 {
		return false
	}
	e.OutWritePtr = (e.OutWritePtr + 1) % e.OutCapacity
	e.OutTokens++
	e.TotalProduced++
	return true
}

// RecordSentPkt advances the producer's out-memory read pointer; it
// fails (returns false) when the destination's in-memory is currently
// full (spec §4.8), leaving the flit queued for retry next cycle. It
// does not free out-memory occupancy — a token stays reserved
// (OutTokens) until the consumer actually drains it; see
// FreeOutMemory.
func (e *GraphEdge) RecordSentPkt() bool {
	if e.InCapacity-e.InTokens <= 0 {
		return false
	}
	e.OutReadPtr = (e.OutReadPtr + 1) % e.OutCapacity
	return true
}

// FreeOutMemory releases one producer out-memory slot. Called only via
// the cross-NI update_in_memory_info hook (spec §4.1/§9), when the
// consuming task actually drains the corresponding in-token — the only
// point at which out-memory occupancy should decrease, distinct from
// RecordSentPkt's send-time read-pointer advance.
func (e *GraphEdge) FreeOutMemory() {
	e.OutTokens--
}

// RecordPkt commits one arriving token into in-memory on TAIL/HEAD_TAIL
// arrival (spec §4.7).
func (e *GraphEdge) RecordPkt(now int64) {
	e.InWritePtr = (e.InWritePtr + 1) % e.InCapacity
	e.InTokens++
	e.LastTokenReceivedCycle = now
}

// ConsumeInToken is called on task entry (spec §4.1): consumes one
// pending in-token and advances the read pointer.
func (e *GraphEdge) ConsumeInToken() {
	e.InReadPtr = (e.InReadPtr + 1) % e.InCapacity
	e.InTokens--
	e.TotalConsumed++ // in-memory->task transition; see InFlight()
}

// TaskArena is the flat, id-keyed store of all tasks at this NI (and,
// read-only, tasks this NI's edges reference at other NIs for routing
// purposes only).
type TaskArena struct {
	tasks map[TaskID]*GraphTask
}

func NewTaskArena() *TaskArena {
	return &TaskArena{tasks: make(map[TaskID]*GraphTask)}
}

func (a *TaskArena) Add(t *GraphTask) { a.tasks[t.ID] = t }

// Get looks up a task by id, panicking with a MapLookupError-wrapped
// message on miss — per spec §7 kind 5, a missing task id indicates a
// corrupted workload and is always fatal.
func (a *TaskArena) Get(id TaskID) *GraphTask {
	t, ok := a.tasks[id]
	if !ok {
		panic(&MapLookupError{Kind: "task", ID: int64(id)})
	}
	return t
}

func (a *TaskArena) All() map[TaskID]*GraphTask { return a.tasks }

// EdgeArena is the flat, id-keyed store of all edges.
type EdgeArena struct {
	edges map[EdgeID]*GraphEdge
}

func NewEdgeArena() *EdgeArena {
	return &EdgeArena{edges: make(map[EdgeID]*GraphEdge)}
}

func (a *EdgeArena) Add(e *GraphEdge) { a.edges[e.ID] = e }

func (a *EdgeArena) Get(id EdgeID) *GraphEdge {
	e, ok := a.edges[id]
	if !ok {
		panic(&MapLookupError{Kind: "edge", ID: int64(id)})
	}
	return e
}

func (a *EdgeArena) All() map[EdgeID]*GraphEdge { return a.edges }
