package noc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNI() (*NetworkInterface, *fakeNetwork) {
	net := &fakeNetwork{vcsPerVnet: 2, buffersPerVC: 4}
	ni := NewNetworkInterface(1, EngineConfig{VCsPerVnet: 2, BuffersPerDataVC: 4, NIFlitSize: 8, TokenPacketLength: 4}, net, 1, silentRecorder())
	return ni, net
}

func TestEnterTask_RecordsStartCycleForLaterCompletion(t *testing.T) {
	ni, net := newTestNI()
	core := NewCore(0, 1)
	ni.AddCore(core)

	task := &GraphTask{ID: 1, Core: 0, RequiredIterations: 1, ExecDist: Distribution{Kind: "normal", Mean: 5, Min: 5}}
	ni.Tasks.Add(task)
	core.BindTask(0, task.ID)

	ni.EnqueueTaskInThreadQueue(core, 100)
	require.True(t, core.Slots[0].Busy)
	assert.Equal(t, int64(100), core.Slots[0].StartCycle)

	for cycle := int64(101); cycle <= 105; cycle++ {
		ni.AdvanceExecution(core, cycle)
	}

	require.Len(t, net.startEndCalls, 1)
	call := net.startEndCalls[0]
	assert.Equal(t, int64(100), call.Start, "start cycle must be the cycle the task entered, not cycle-minus-remaining")
	assert.Equal(t, int64(105), call.End)
}

func TestEnqueueTaskInThreadQueue_SkipsHeadTask(t *testing.T) {
	ni, _ := newTestNI()
	core := NewCore(0, 1)
	ni.AddCore(core)

	head := &GraphTask{ID: 0, Core: 0, RequiredIterations: 10}
	ni.Tasks.Add(head)
	core.BindTask(0, head.ID)

	ni.EnqueueTaskInThreadQueue(core, 0)
	assert.False(t, core.Slots[0].Busy, "head task must never enter via the ordinary scheduler")
}

func TestEnqueueTaskInThreadQueue_AppRoundRobinAdvancesRegardlessOfEntry(t *testing.T) {
	ni, _ := newTestNI()
	core := NewCore(0, 0) // zero thread slots: nothing can ever enter
	ni.AddCore(core)

	task := &GraphTask{ID: 1, Core: 0, RequiredIterations: 1}
	ni.Tasks.Add(task)
	core.BindTask(0, task.ID)

	ni.EnqueueTaskInThreadQueue(core, 0)
	assert.Equal(t, 1, core.AppExecRR, "app_exec_rr advances every cycle even with no free slots")
}

func TestAdvanceExecution_SlotNotReusableSameCycleItFinishes(t *testing.T) {
	ni, _ := newTestNI()
	core := NewCore(0, 1)
	ni.AddCore(core)

	task := &GraphTask{ID: 1, Core: 0, RequiredIterations: 5, ExecDist: Distribution{Kind: "normal", Mean: 1, Min: 1}}
	ni.Tasks.Add(task)
	core.BindTask(0, task.ID)

	ni.EnqueueTaskInThreadQueue(core, 0)
	ni.AdvanceExecution(core, 0) // finishes this same cycle (1-cycle execution time)
	assert.False(t, core.Slots[0].Busy)

	// §4.2 ordering: enqueue runs before advance within a cycle, so the
	// just-freed slot is not retried until the NEXT call to
	// EnqueueTaskInThreadQueue (i.e. next cycle) — calling it again now
	// models that next cycle and should succeed.
	ni.EnqueueTaskInThreadQueue(core, 1)
	assert.True(t, core.Slots[0].Busy)
}
