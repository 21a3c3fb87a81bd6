package noc

import "github.com/sirupsen/logrus"

// Thread-slot scheduler (spec §4.1, "enqueueTaskInThreadQueue") and
// execution advance (spec §4.2, "task_execution"). Grounded on
// sim/simulator.go's makeRunningBatch: a resource-budget (thread slots
// here, token budget there) is handed out to candidates in a fixed
// round-robin order each cycle.

// ThreadSlot is a core-local execution lane.
type ThreadSlot struct {
	Busy       bool
	Task       TaskID
	App        AppIdx
	Remaining  int64
	Iteration  int64
	StartCycle int64
}

// Core is a thread pool bound to a subset of the task graph's tasks,
// grouped per application for the §4.1 round-robin fairness rule.
type Core struct {
	ID      CoreID
	Slots   []*ThreadSlot
	Tasks   map[AppIdx][]TaskID // tasks owned by this core, grouped by application, in fixed order

	// AppExecRR is the per-core application round-robin cursor; it
	// advances by 1 every cycle regardless of whether a task entered
	// (spec §4.1 fairness rule).
	AppExecRR int
	// TaskRR is the per-(core,app) task round-robin cursor.
	TaskRR map[AppIdx]int

	appOrder []AppIdx // fixed iteration order over this core's applications
}

func NewCore(id CoreID, numSlots int) *Core {
	slots := make([]*ThreadSlot, numSlots)
	for i := range slots {
		slots[i] = &ThreadSlot{}
	}
	return &Core{
		ID:     id,
		Slots:  slots,
		Tasks:  make(map[AppIdx][]TaskID),
		TaskRR: make(map[AppIdx]int),
	}
}

// BindTask registers a task as owned by this core under its application.
func (c *Core) BindTask(app AppIdx, id TaskID) {
	if _, ok := c.Tasks[app]; !ok {
		c.appOrder = append(c.appOrder, app)
	}
	c.Tasks[app] = append(c.Tasks[app], id)
}

func (c *Core) freeSlot() *ThreadSlot {
	for _, s := range c.Slots {
		if !s.Busy {
			return s
		}
	}
	return nil
}

// EnqueueTaskInThreadQueue tries to start eligible tasks into this
// core's idle thread slots for one cycle, rotating applications and,
// within each application, tasks, per spec §4.1. The global head task
// (id 0) is never entered here (§4.1 rule 4) — it is handled
// exclusively by the entrance injector.
func (ni *NetworkInterface) EnqueueTaskInThreadQueue(c *Core, now int64) {
	if len(c.appOrder) == 0 {
		return
	}
	// Rotate applications starting at AppExecRR; try each at most once
	// this cycle, each one attempting to fill as many free slots as
	// its tasks offer, in task-round-robin order.
	n := len(c.appOrder)
	for offset := 0; offset < n; offset++ {
		app := c.appOrder[(c.AppExecRR+offset)%n]
		ni.tryEnterApplicationTasks(c, app, now)
	}
	// AppExecRR advances by 1 every cycle regardless of whether a task
	// entered (spec §4.1 fairness rule).
	c.AppExecRR++
}

func (ni *NetworkInterface) tryEnterApplicationTasks(c *Core, app AppIdx, now int64) {
	tasks := c.Tasks[app]
	if len(tasks) == 0 {
		return
	}
	m := len(tasks)
	start := c.TaskRR[app]
	for offset := 0; offset < m; offset++ {
		idx := (start + offset) % m
		tid := tasks[idx]
		task := ni.Tasks.Get(tid)
		if task.ID == HeadTaskID {
			continue // §4.1 rule 4: head task never enters here, only via the entrance injector
		}
		slot := c.freeSlot()
		if slot == nil {
			break // no free slot on this core this cycle
		}
		if task.HasFullOutMemory(ni.Edges) {
			continue
		}
		if !task.EligibleForEntry(ni.Edges) {
			continue
		}
		ni.enterTask(c, slot, task, now)
		c.TaskRR[app] = (idx + 1) % m
	}
}

// enterTask performs the atomic on-entry actions of spec §4.1.
func (ni *NetworkInterface) enterTask(c *Core, slot *ThreadSlot, task *GraphTask, now int64) {
	maxRecv := now
	for _, eid := range task.Incoming {
		e := ni.Edges.Get(eid)
		e.ConsumeInToken()
		if e.LastTokenReceivedCycle > maxRecv {
			maxRecv = e.LastTokenReceivedCycle
		}
		// cross-NI hook: tell the producer's NI to free one slot of
		// this edge's producer-side out-memory.
		ni.Net.UpdateInMemoryInfo(e.SrcCore, task.App, e.SrcTask, e.ID)
	}

	task.CETimes++
	execCycles := int64(task.ExecDist.Sample(ni.RNG.ForTask(task.ID)))
	if execCycles < 1 {
		execCycles = 1
	}

	slot.Busy = true
	slot.Task = task.ID
	slot.App = task.App
	slot.Remaining = execCycles
	slot.Iteration = task.CETimes
	slot.StartCycle = now

	if task.IsHead() {
		task.AllTokensReceivedAt = now
	} else {
		task.AllTokensReceivedAt = maxRecv
	}
	ni.Trace.TaskWaiting(int64(task.ID), now-task.AllTokensReceivedAt)

	for _, eid := range task.Outgoing {
		e := ni.Edges.Get(eid)
		if !e.ReserveOutMemory() {
			// HasFullOutMemory already guarded this; defensive only
			// because ReserveOutMemory is also called by other paths.
			logrus.Warnf("cycle=%d task=%d: out-memory reservation failed unexpectedly on edge=%d", now, task.ID, e.ID)
			continue
		}
		tokenID := e.NewTokenID()
		sizeBits := e.TokenSizeDist.Sample(ni.RNG.ForEdge(e.ID))
		numFlits := TokenSizeToFlits(int64(sizeBits), ni.Cfg.NIFlitSize)
		ni.EnqueueFlitsGeneratorBuffer(c, e, task, tokenID, numFlits, execCycles, now)
	}

	if ni.Cfg.PrintTaskExecutionInfo {
		ni.Trace.TaskStart(now, int64(task.ID), int64(task.Core), int64(task.App), task.CETimes)
	}
}

// AdvanceExecution decrements every busy slot's remaining cycles by
// one; slots reaching zero complete this cycle (spec §4.2). Runs after
// EnqueueTaskInThreadQueue within the same cycle so a slot released
// here is not reusable until next cycle (one-cycle reacquisition
// delay, spec §4.2 ordering rule).
func (ni *NetworkInterface) AdvanceExecution(c *Core, now int64) {
	for _, slot := range c.Slots {
		if !slot.Busy {
			continue
		}
		slot.Remaining--
		if slot.Remaining > 0 {
			continue
		}
		task := ni.Tasks.Get(slot.Task)
		task.Completed++
		if task.Completed <= task.RequiredIterations {
			ni.Net.AddNumCompletedTasks(task.App, slot.Iteration)
			ni.Net.UpdateStartEndTime(task.App, slot.Iteration, slot.StartCycle, now)
			ni.Net.AddExecutionTimeToTotal(now - slot.StartCycle)
		}
		if ni.Cfg.PrintTaskExecutionInfo {
			ni.Trace.TaskComplete(int64(task.ID), slot.StartCycle, now, slot.Iteration)
		}
		slot.Busy = false
		slot.Task = 0
		slot.App = 0
		slot.Remaining = 0
		slot.Iteration = 0
		slot.StartCycle = 0
	}
}
