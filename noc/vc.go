package noc

// VC class policy (deadlock avoidance, spec §4.5) and credit/OutVcState
// module (spec §3, §4.8). Grounded on the original OutputUnit.cc's
// per-VC credit counter and IDLE/ACTIVE state machine.

// VCState is the lifecycle state of one output VC.
type VCState int

const (
	VCIdle VCState = iota
	VCActive
)

// OutputVC tracks one output virtual channel's credit and activity.
type OutputVC struct {
	ID               int
	State            VCState
	Credits          int64
	LastStateChange  int64
	EnqueueTimeMarker int64 // infinity (infiniteEnqueueMarker) when idle; earliest pending enqueue time otherwise
	Pending          []*Flit
	VCBusyCounter    int64 // increments when calculateVC returns -1 for this vnet (spec §4.8)
}

const infiniteEnqueueMarker = int64(1) << 62

// NewOutputVC creates an idle VC with a full credit budget.
func NewOutputVC(id int, bufferCredits int64) *OutputVC {
	return &OutputVC{
		ID:                id,
		State:             VCIdle,
		Credits:           bufferCredits,
		EnqueueTimeMarker: infiniteEnqueueMarker,
	}
}

// IsFree reports whether this VC can accept a new packet.
func (v *OutputVC) IsFree() bool {
	return v.State == VCIdle
}

// vcClassRange returns the [lo, hi) sub-range of VCs within a vnet's
// pool that a given vc_choice class may use (spec §4.5 table). When no
// reservation object is configured, only classes 0 and 1 are valid.
func vcClassRange(choice VCChoice, vcsPerVnet int, vcsForAllocation int, hasAllocationObject bool) (lo, hi int) {
	half := vcsPerVnet / 2
	switch choice {
	case VCChoiceLowHalf:
		return 0, half
	case VCChoiceHighHalf:
		return half, vcsPerVnet
	case VCChoiceReservedLowHalf:
		if !hasAllocationObject {
			return 0, 0
		}
		lo := vcsForAllocation
		hi := (vcsForAllocation + vcsPerVnet) / 2
		return lo, hi
	case VCChoiceReservedHighHalf:
		if !hasAllocationObject {
			return 0, 0
		}
		lo := (vcsForAllocation + vcsPerVnet) / 2
		return lo, vcsPerVnet
	default:
		return 0, 0
	}
}

// calculateVC picks a free output VC within choice's class range,
// returning -1 if none is free. A -1 result increments the watchdog
// counter on every VC in the vnet's pool (spec §4.8); the NI checks
// the counter against garnet_deadlock_threshold after each failure.
func calculateVC(vcs []*OutputVC, choice VCChoice, vcsPerVnet int, vcsForAllocation int, hasAllocationObject bool) int {
	lo, hi := vcClassRange(choice, vcsPerVnet, vcsForAllocation, hasAllocationObject)
	for i := lo; i < hi; i++ {
		if vcs[i].IsFree() {
			return i
		}
	}
	return -1
}

// IdleOutputVCs counts free VCs in the given pool (used to bound the
// inter-cluster arbitration loop, spec §4.4).
func IdleOutputVCs(vcs []*OutputVC) int {
	n := 0
	for _, v := range vcs {
		if v.IsFree() {
			n++
		}
	}
	return n
}
