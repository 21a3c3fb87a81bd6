package noc

import (
	"github.com/nocsim/nocsim/noc/trace"
)

// NetworkInterface is the per-node engine described by this package:
// it exclusively owns its thread slots, generator buffer, staging
// buffers, output-VC states, and outbound flit/credit queues (spec
// §3 "Ownership"). Cross-NI interaction happens only through flits and
// the InMemoryUpdate inbox (spec §9); the Network collaborator routes
// those across NIs.
type NetworkInterface struct {
	ID  NIID
	Cfg EngineConfig
	Net Network
	RNG *PartitionedRNG

	Trace *trace.Recorder
	Stats *Stats

	Tasks *TaskArena
	Edges *EdgeArena

	Cores     map[CoreID]*Core
	CoreOrder []CoreID

	GeneratorBuffer []GeneratorBufferEntry

	CrossbarLanes map[CoreID]*CrossbarLane
	IntraStaging  map[CoreID][]*stagingEntry
	InterStaging  map[CoreID][]*stagingEntry
	CoreBufferRR  int

	OutputVCs []*OutputVC
	OutVCRR   int

	OutLink       NetworkLink
	OutCreditLink CreditLink
	InLink        NetworkLink
	InCreditLink  CreditLink

	StallQueue []*Flit

	// Entrance-injector state; only populated/consulted when this NI
	// hosts the entrance core (spec §4.6).
	RatioTokens      map[AppIdx]int64
	RatioConfig      map[AppIdx]int64
	InitialSlots     []*ThreadSlot
	EntranceAppRR    int
	EntranceAppOrder []AppIdx

	// PendingInMemoryUpdates is this NI's inbox of cross-NI
	// UpdateInMemoryInfo notifications (spec §9), drained at the start
	// of this NI's next cycle.
	PendingInMemoryUpdates []InMemoryUpdate

	enqueueOrderCounter int64
}

// NewNetworkInterface constructs an empty NI; callers bind cores,
// tasks, edges, VCs, and links before the first Wakeup.
func NewNetworkInterface(id NIID, cfg EngineConfig, net Network, seed int64, tr *trace.Recorder) *NetworkInterface {
	ni := &NetworkInterface{
		ID:           id,
		Cfg:          cfg,
		Net:          net,
		RNG:          NewPartitionedRNG(seed),
		Trace:        tr,
		Stats:        &Stats{},
		Tasks:        NewTaskArena(),
		Edges:        NewEdgeArena(),
		Cores:        make(map[CoreID]*Core),
		CrossbarLanes: make(map[CoreID]*CrossbarLane),
		IntraStaging: make(map[CoreID][]*stagingEntry),
		InterStaging: make(map[CoreID][]*stagingEntry),
		RatioTokens:  make(map[AppIdx]int64),
		RatioConfig:  make(map[AppIdx]int64),
	}
	ni.OutputVCs = make([]*OutputVC, cfg.VCsPerVnet)
	for i := range ni.OutputVCs {
		ni.OutputVCs[i] = NewOutputVC(i, cfg.BuffersPerDataVC)
	}
	return ni
}

// AddCore registers a core and its crossbar lane at this NI.
func (ni *NetworkInterface) AddCore(c *Core) {
	ni.Cores[c.ID] = c
	ni.CoreOrder = append(ni.CoreOrder, c.ID)
	ni.CrossbarLanes[c.ID] = &CrossbarLane{}
}

// PostInMemoryUpdate enqueues a cross-NI update to be applied at the
// start of this NI's next cycle (spec §9). Called by the Network
// collaborator when routing another NI's UpdateInMemoryInfo call.
func (ni *NetworkInterface) PostInMemoryUpdate(u InMemoryUpdate) {
	ni.PendingInMemoryUpdates = append(ni.PendingInMemoryUpdates, u)
}

// drainInMemoryInbox applies every pending cross-NI update: the
// consumer at the other end already consumed its in-token, so this
// frees the matching out-memory reservation on the producer side (spec
// §4.1/§9's update_in_memory_info hook — the sole point at which
// out-memory occupancy decreases; RecordSentPkt's send-time gate never
// touches it).
func (ni *NetworkInterface) drainInMemoryInbox() {
	if len(ni.PendingInMemoryUpdates) == 0 {
		return
	}
	for _, u := range ni.PendingInMemoryUpdates {
		ni.Edges.Get(u.Edge).FreeOutMemory()
	}
	ni.PendingInMemoryUpdates = ni.PendingInMemoryUpdates[:0]
}

// Wakeup runs exactly one cycle of this NI's control flow (spec §2):
// enqueue-new-tasks → advance-execution → drain-generator-buffer →
// egress-arbitration → ingest-link → ingest-credits → reschedule. It
// may return a *DeadlockError, which the kernel treats as a fatal
// abort (spec §7 kind 2).
func (ni *NetworkInterface) Wakeup(now int64) error {
	ni.drainInMemoryInbox()

	ni.RunEntranceInjector(now)
	ni.AdvanceInitialSlots(now)

	for _, cid := range ni.CoreOrder {
		c := ni.Cores[cid]
		ni.EnqueueTaskInThreadQueue(c, now)
	}
	for _, cid := range ni.CoreOrder {
		c := ni.Cores[cid]
		ni.AdvanceExecution(c, now)
	}

	ni.DrainGeneratorBuffer(now)

	ni.IntraClusterArbitration(now)
	if err := ni.InterClusterArbitration(now); err != nil {
		return err
	}
	ni.ScheduleOutputLink(now)

	// An NI with no inbound flit or credit link (nothing crosses into
	// it) has nothing to ingest.
	if ni.InLink != nil {
		ni.IngestLink(now)
	}
	if ni.InCreditLink != nil {
		ni.IngestCredits(now)
	}

	// Reschedule: the dataflow mode always self-reschedules (spec §6);
	// the kernel performs the actual re-wake, this NI has no further
	// action here.
	return nil
}
