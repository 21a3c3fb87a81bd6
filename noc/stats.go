package noc

// Stats holds NI-local counters supplemented from the original
// NetworkInterface.cc's inline stat increments in wakeup() (SPEC_FULL
// §12). These are NI-local accounting, distinct from the
// router/topology-wide statistics subsystem excluded by spec.md §1.
type Stats struct {
	FlitsSent           int64
	FlitsReceived        int64
	IntraCoreTokens       int64 // tokens committed without ever touching a link (same-core producer/consumer)
	IntraClusterPackets  int64 // packets committed via the crossbar
	InterClusterPackets  int64 // packets admitted to an output VC
}
