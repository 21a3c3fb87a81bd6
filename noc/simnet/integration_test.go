package simnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nocsim/nocsim/noc"
	"github.com/nocsim/nocsim/noc/config"
)

// TestIntegration_TwoNodePipelineReachesRequiredIterations is scenario
// 1: a two-node producer/consumer pipeline must drive the downstream
// task to exactly its required iteration count over the real Cluster
// (not fakeNetwork), with no deadlock along the way.
func TestIntegration_TwoNodePipelineReachesRequiredIterations(t *testing.T) {
	engine, arch, graph, apps := twoNodePipelineSpecs()
	engine.GarnetDeadlockThreshold = 1000

	cl, err := Build(engine, arch, graph, apps, 1, 500, nil)
	require.NoError(t, err)
	require.NoError(t, cl.Run())

	task2 := cl.nis[1].Tasks.Get(2)
	assert.Equal(t, int64(5), task2.Completed, "downstream task must reach exactly its required iteration count, no more, no less")
}

// TestIntegration_ProducerOutMemoryFreesOnlyWhenConsumerDrains is
// scenario 5, and a direct regression test for the out-memory
// double-free bug: RecordSentPkt must no longer free out-memory at
// send time, only FreeOutMemory (driven by the consumer's actual
// entry, routed through the real Cluster's UpdateInMemoryInfo ->
// PostInMemoryUpdate -> drainInMemoryInbox round trip) may.
//
// The producer (task 1) has out-memory capacity 1 and a fast exec
// time; the consumer (task 2) is slow (100 cycles/iteration) and has
// a generous in-memory capacity so this test isolates the out-memory
// bug from the generator-buffer retry bug. With the fix, task 1's
// first reservation frees once task 2 enters (drains) its first token,
// and its second reservation frees only once task 2 enters its second
// token — which requires task 2's single thread to free, ~100 cycles
// away — so by cycle 50 task 1 must have completed
// exactly 2 iterations (the two its capacity-1 out-memory permits
// once task 2's first entry frees the first slot) and no more.
// Without the fix, out-memory frees at send time instead, letting the
// producer race far ahead of the consumer within a handful of cycles.
func TestIntegration_ProducerOutMemoryFreesOnlyWhenConsumerDrains(t *testing.T) {
	engine := config.EngineConfig{NIFlitSize: 8, VCsPerVnet: 2, BuffersPerDataVC: 4, TokenPacketLength: 4, GarnetDeadlockThreshold: 1000}
	arch := config.ArchitectureSpec{
		EntranceNI: 0, EntranceCore: 0,
		Nodes: []config.NodeSpec{
			{NI: 0, Cores: []config.CoreSpec{{ID: 0, Threads: 1}}},
			{NI: 1, Cores: []config.CoreSpec{{ID: 1, Threads: 1}}},
		},
	}
	graph := config.TaskGraphSpec{
		Tasks: []config.TaskSpec{
			{ID: 1, Core: 0, App: 0, RequiredIterations: 2, ExecKind: "normal", ExecMean: 1},
			{ID: 2, Core: 1, App: 0, RequiredIterations: 2, ExecKind: "normal", ExecMean: 100},
		},
		Edges: []config.EdgeSpec{
			{ID: 1, SrcTask: 1, DestTask: 2, SrcCore: 0, DestCore: 1, SrcNI: 0, DestNI: 1, App: 0, VCChoice: 0,
				InCapacity: 4, OutCapacity: 1, TokenSizeKind: "normal", TokenSizeMean: 8, InterDepKind: "normal", InterDepMean: 1},
		},
	}
	apps := config.ApplicationSpec{Applications: []config.AppSpec{{App: 0, Ratio: 1}}}

	cl, err := Build(engine, arch, graph, apps, 1, 50, nil)
	require.NoError(t, err)
	require.NoError(t, cl.Run())

	task1 := cl.nis[0].Tasks.Get(1)
	edge := cl.edges.Get(1)
	assert.Equal(t, int64(2), task1.Completed, "producer must stall after its out-memory capacity is reserved, not race ahead of the slow consumer")
	assert.Equal(t, int64(1), edge.OutTokens, "the second reservation must stay held until the consumer actually drains it")
}

// TestIntegration_DeadlockWatchdogTripsOnVCStarvation is scenario 6:
// with zero per-VC credit, the first packet's VC is admitted but can
// never be scheduled off the link, so a second packet contending for
// the same vc_choice class repeatedly finds no free VC and the
// deadlock watchdog must eventually trip.
func TestIntegration_DeadlockWatchdogTripsOnVCStarvation(t *testing.T) {
	engine := config.EngineConfig{NIFlitSize: 8, VCsPerVnet: 2, BuffersPerDataVC: 0, TokenPacketLength: 4, GarnetDeadlockThreshold: 3}
	arch := config.ArchitectureSpec{
		EntranceNI: 0, EntranceCore: 0,
		Nodes: []config.NodeSpec{
			{NI: 0, Cores: []config.CoreSpec{{ID: 0, Threads: 1}}},
			{NI: 1, Cores: []config.CoreSpec{{ID: 1, Threads: 1}}},
		},
	}
	graph := config.TaskGraphSpec{
		Tasks: []config.TaskSpec{
			{ID: 1, Core: 0, App: 0, RequiredIterations: 2, ExecKind: "normal", ExecMean: 1},
			{ID: 2, Core: 1, App: 0, RequiredIterations: 2, ExecKind: "normal", ExecMean: 1},
		},
		Edges: []config.EdgeSpec{
			{ID: 1, SrcTask: 1, DestTask: 2, SrcCore: 0, DestCore: 1, SrcNI: 0, DestNI: 1, App: 0, VCChoice: 0,
				InCapacity: 10, OutCapacity: 2, TokenSizeKind: "normal", TokenSizeMean: 8, InterDepKind: "normal", InterDepMean: 1},
		},
	}
	apps := config.ApplicationSpec{Applications: []config.AppSpec{{App: 0, Ratio: 1}}}

	cl, err := Build(engine, arch, graph, apps, 1, 20, nil)
	require.NoError(t, err)

	runErr := cl.Run()
	require.Error(t, runErr)
	var deadlockErr *noc.DeadlockError
	require.ErrorAs(t, runErr, &deadlockErr)
	assert.Equal(t, noc.TaskGraphVNet, deadlockErr.VNet)
	assert.Equal(t, noc.NIID(0), deadlockErr.NI)
}

// TestIntegration_BidirectionalVCClassesAvoidDeadlock is scenario 3:
// traffic flowing opposite directions between the same two nodes, each
// using its own vc_choice half of the pool, must both make progress
// without tripping the deadlock watchdog.
func TestIntegration_BidirectionalVCClassesAvoidDeadlock(t *testing.T) {
	engine := config.EngineConfig{NIFlitSize: 8, VCsPerVnet: 2, BuffersPerDataVC: 4, TokenPacketLength: 4, GarnetDeadlockThreshold: 10000}
	arch := config.ArchitectureSpec{
		EntranceNI: 0, EntranceCore: 0,
		Nodes: []config.NodeSpec{
			{NI: 0, Cores: []config.CoreSpec{{ID: 0, Threads: 1}}},
			{NI: 1, Cores: []config.CoreSpec{{ID: 1, Threads: 1}}},
		},
	}
	graph := config.TaskGraphSpec{
		Tasks: []config.TaskSpec{
			{ID: 1, Core: 0, App: 0, RequiredIterations: 5, ExecKind: "normal", ExecMean: 1}, // head, NI0 -> NI1
			{ID: 2, Core: 1, App: 0, RequiredIterations: 5, ExecKind: "normal", ExecMean: 1}, // relay, NI1 -> NI0
			{ID: 3, Core: 0, App: 0, RequiredIterations: 5, ExecKind: "normal", ExecMean: 1}, // sink, NI0
		},
		Edges: []config.EdgeSpec{
			{ID: 1, SrcTask: 1, DestTask: 2, SrcCore: 0, DestCore: 1, SrcNI: 0, DestNI: 1, App: 0, VCChoice: 0,
				InCapacity: 4, OutCapacity: 4, TokenSizeKind: "normal", TokenSizeMean: 8, InterDepKind: "normal", InterDepMean: 1},
			{ID: 2, SrcTask: 2, DestTask: 3, SrcCore: 1, DestCore: 0, SrcNI: 1, DestNI: 0, App: 0, VCChoice: 1,
				InCapacity: 4, OutCapacity: 4, TokenSizeKind: "normal", TokenSizeMean: 8, InterDepKind: "normal", InterDepMean: 1},
		},
	}
	apps := config.ApplicationSpec{Applications: []config.AppSpec{{App: 0, Ratio: 1}}}

	cl, err := Build(engine, arch, graph, apps, 1, 300, nil)
	require.NoError(t, err)
	require.NoError(t, cl.Run(), "opposing traffic on disjoint vc_choice halves must not starve either direction")

	task3 := cl.nis[0].Tasks.Get(3)
	assert.Equal(t, int64(5), task3.Completed)
}
