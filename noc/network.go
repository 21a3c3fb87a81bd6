package noc

// External collaborators (spec §6). Network is the global network
// object threaded through NI operations as a context value (spec §9) —
// no process-wide singleton. NetworkLink/CreditLink are the external
// fabric this NI's egress/ingress queues hand off to and receive from.

// Network is the global collaborator every NI reads configuration from
// and reports completion/back-pressure through.
type Network interface {
	EntranceNI() NIID
	EntranceCore() CoreID
	NumApplications() int
	RouterID(ni NIID) int
	NIFlitSize() int64
	VCsPerVnet() int
	BuffersPerDataVC() int64
	TokenLenInPkt() int64
	// BackPressure reports whether any downstream in-memory on the
	// entrance's critical path is currently full.
	BackPressure(node NIID) bool
	// UpdateInMemoryInfo posts a cross-NI notification that one slot of
	// the named edge's producer-side out-memory is to be freed; the
	// owning NI applies it at the start of its next cycle (spec §9).
	UpdateInMemoryInfo(core CoreID, app AppIdx, srcTask TaskID, edge EdgeID)
	AddNumCompletedTasks(app AppIdx, iter int64)
	UpdateStartEndTime(app AppIdx, iter int64, start, end int64)
	AddExecutionTimeToTotal(d int64)
}

// InMemoryUpdate is a single posted cross-NI side effect (spec §9):
// the consumer dequeued a token, so one slot of the producer's
// out-memory is freed. Queued at post time, applied at the start of
// the owning NI's next cycle.
type InMemoryUpdate struct {
	Core    CoreID
	App     AppIdx
	SrcTask TaskID
	Edge    EdgeID
}

// NetworkLink is the external consumer of this NI's outbound flit
// queue; it delivers flits onward to the local router.
type NetworkLink interface {
	// Send enqueues a flit for delivery next cycle; the link schedules
	// its own wake-event (spec §4.4's "schedule the link's wake-event
	// for the next cycle").
	Send(f *Flit)
	// Poll returns an arriving flit this cycle, if any.
	Poll() (*Flit, bool)
}

// CreditLink is the external consumer/producer of credits between this
// NI and the local router's input unit.
type CreditLink interface {
	Send(vc int, isFree bool)
	Poll() (vc int, isFree bool, ok bool)
}
