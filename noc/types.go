// Package noc implements the task-graph-driven Network Interface (NI)
// engine: per-node thread-slot scheduling, token-to-flit generation,
// intra/inter-cluster egress arbitration, VC credit flow control, and
// flit ingress. Routers, links, and credit links are external
// collaborators (see Network and Link interfaces in network.go).
package noc

// TaskID identifies a vertex of the task graph. Distinct type (not an
// alias) so a bare int can't be passed where a TaskID is expected.
type TaskID int

// EdgeID identifies a directed arc of the task graph.
type EdgeID int

// CoreID identifies a core local to an NI's node.
type CoreID int

// NIID identifies a node's Network Interface.
type NIID int

// AppIdx identifies one application within a multi-application mix.
type AppIdx int

// HeadTaskID is the reserved id of the head (source) task: the ordinary
// thread-slot scheduler never enters a task with this id (§4.1). The
// entrance injector (§4.6) finds each application's head task by its
// lack of incoming edges, so the head tasks of further applications
// carry other ids.
const HeadTaskID TaskID = 0

// VCChoice is the deadlock-avoidance class tag carried by every flit,
// restricting which VCs within a vnet it may use (spec §4.5).
type VCChoice int

const (
	VCChoiceLowHalf           VCChoice = 0
	VCChoiceHighHalf          VCChoice = 1
	VCChoiceReservedLowHalf   VCChoice = 2
	VCChoiceReservedHighHalf  VCChoice = 3
)

// TaskGraphVNet is the virtual network task-graph traffic always uses.
const TaskGraphVNet = 2
