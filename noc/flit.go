package noc

// Flit model, grounded on the original Garnet NetworkInterface.cc/flit
// fields named in spec.md §3. VC id is -1 until allocated; hops is -1
// until the router stamps it (router is external to this package).

// FlitType distinguishes packet boundary roles.
type FlitType int

const (
	FlitHead FlitType = iota
	FlitBody
	FlitTail
	FlitHeadTail // single-flit packet
)

// RouteInfo carries routing metadata a flit needs from source to
// destination; the generator fills the NI/core/vc_choice fields, and
// the hop count is filled by the router (external), not by this
// package.
type RouteInfo struct {
	SrcNI    NIID
	DestNI   NIID
	SrcCore  CoreID
	DestCore CoreID
	VCChoice VCChoice
	Hops     int // -1 until stamped by the router
}

// TaskGraphMeta is the task-graph-specific payload every flit of
// task-graph traffic carries (spec §3's "task-graph metadata").
type TaskGraphMeta struct {
	SrcTask     TaskID
	DestTask    TaskID
	Edge        EdgeID
	TokenID     int64
	App         AppIdx
	PacketFlits int // length, in flits, of this flit's packet
}

// Flit is the transport unit exchanged between NIs and routers.
type Flit struct {
	SeqInPacket int // index within the packet
	VC          int // -1 if not yet allocated
	VNet        int // always TaskGraphVNet for task-graph traffic
	Route       RouteInfo
	Size        int // flits in the packet this flit belongs to
	Type        FlitType
	EnqueueTime int64
	SrcDelay    int64 // src-side queueing delay, stamped at enqueue into an output VC
	DequeueTime int64
	Meta        TaskGraphMeta
}

// IsTail reports whether this flit closes its packet.
func (f *Flit) IsTail() bool {
	return f.Type == FlitTail || f.Type == FlitHeadTail
}

// GeneratorBufferEntry is a pending flit awaiting eligibility, produced
// when a task starts and drained into the per-core egress buffer when
// CyclesUntilEligible reaches zero (spec §3 "Generator-buffer entry").
type GeneratorBufferEntry struct {
	Flit                 *Flit
	CyclesUntilEligible  int64
	SourceCore           CoreID
}
