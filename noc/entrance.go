package noc

// Entrance-node head-task injector (spec §4.6). Only meaningful at
// ni.Net.EntranceNI()/EntranceCore(); paces multi-application mixes to
// configured ratio-token quotas via a separate pool of "initial"
// thread slots.

// RunEntranceInjector executes one cycle of the entrance injector, if
// this NI hosts the entrance core. Preserves the source's
// break-on-back-pressure behavior: the application round-robin loop
// exits entirely (not just skipping the blocked application) on the
// first application blocked by global back-pressure this cycle (spec
// §9 open question #2 — intentionally kept, not "fixed").
func (ni *NetworkInterface) RunEntranceInjector(now int64) {
	if ni.ID != ni.Net.EntranceNI() {
		return
	}
	if ni.allRatioTokensExhausted() {
		ni.resetRatioTokens()
	}

	n := len(ni.EntranceAppOrder)
	if n == 0 {
		return
	}
	for offset := 0; offset < n; offset++ {
		app := ni.EntranceAppOrder[(ni.EntranceAppRR+offset)%n]
		if ni.RatioTokens[app] <= 0 {
			continue
		}
		slot := ni.freeInitialSlot()
		if slot == nil {
			continue
		}
		head := ni.headTaskForApp(app)
		if head == nil || head.HasFullOutMemory(ni.Edges) {
			continue
		}
		if ni.Net.BackPressure(ni.ID) {
			break // intentional: stop the whole loop, not just this app
		}

		ni.RatioTokens[app]--
		ni.enterHeadTask(slot, head, now)
	}
	ni.EntranceAppRR = (ni.EntranceAppRR + 1) % n
}

func (ni *NetworkInterface) allRatioTokensExhausted() bool {
	for app := range ni.RatioConfig {
		if ni.RatioTokens[app] > 0 {
			return false
		}
	}
	return len(ni.RatioConfig) > 0
}

func (ni *NetworkInterface) resetRatioTokens() {
	for app, ratio := range ni.RatioConfig {
		ni.RatioTokens[app] = ratio
	}
}

func (ni *NetworkInterface) freeInitialSlot() *ThreadSlot {
	for _, s := range ni.InitialSlots {
		if !s.Busy {
			return s
		}
	}
	return nil
}

func (ni *NetworkInterface) headTaskForApp(app AppIdx) *GraphTask {
	for _, t := range ni.Tasks.All() {
		if t.App == app && t.IsHead() {
			return t
		}
	}
	return nil
}

// enterHeadTask launches the head task into an initial slot and emits
// its outgoing edges via the generator (spec §4.3), mirroring the
// on-entry actions of §4.1 for a task with no incoming edges.
func (ni *NetworkInterface) enterHeadTask(slot *ThreadSlot, task *GraphTask, now int64) {
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
	task.AllTokensReceivedAt = now
	ni.Trace.TaskWaiting(int64(task.ID), 0)

	entranceCore := ni.Cores[ni.Net.EntranceCore()]
	for _, eid := range task.Outgoing {
		e := ni.Edges.Get(eid)
		if !e.ReserveOutMemory() {
			continue
		}
		tokenID := e.NewTokenID()
		sizeBits := e.TokenSizeDist.Sample(ni.RNG.ForEdge(e.ID))
		numFlits := TokenSizeToFlits(int64(sizeBits), ni.Cfg.NIFlitSize)
		ni.EnqueueFlitsGeneratorBuffer(entranceCore, e, task, tokenID, numFlits, execCycles, now)
	}

	if ni.Cfg.PrintTaskExecutionInfo {
		ni.Trace.TaskStart(now, int64(task.ID), int64(task.Core), int64(task.App), task.CETimes)
	}
}

// AdvanceInitialSlots ages the entrance's dedicated initial-thread pool
// exactly like an ordinary core's thread slots (spec §4.2), releasing
// head-task slots on completion.
func (ni *NetworkInterface) AdvanceInitialSlots(now int64) {
	for _, slot := range ni.InitialSlots {
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
