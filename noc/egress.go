package noc

// Egress arbiter (spec §4.4): drain the generator buffer into the
// intra/inter-cluster staging buffers, arbitrate the intra-cluster
// crossbar and the inter-cluster VC path, and schedule the output
// link. Grounded on cluster.go's round-robin-over-instances shape
// (rotate a fixed collection, pick the first eligible candidate).

// stagingEntry is one head flit awaiting crossbar or VC admission,
// tagged with its producing task/edge for the least-iteration-first
// tie-break (spec §4.1, §4.4) and its enqueue order for FIFO-oldest
// selection and VNet-ordered link scheduling.
type stagingEntry struct {
	Flit         *Flit
	Edge         *GraphEdge
	Task         *GraphTask
	EnqueueOrder int64
}

// CrossbarLane is the fixed-delay intra-cluster path to one destination core.
type CrossbarLane struct {
	Busy      bool
	Remaining int64
	Entry     *stagingEntry
}

// DrainGeneratorBuffer decrements every generator-buffer entry's timer;
// entries reaching zero resolve to one of: direct intra-core in-memory
// write, intra-cluster staging, or inter-cluster staging (spec §4.4
// "Drain step").
func (ni *NetworkInterface) DrainGeneratorBuffer(now int64) {
	remaining := ni.GeneratorBuffer[:0]
	var retries []GeneratorBufferEntry
	for _, entry := range ni.GeneratorBuffer {
		entry.CyclesUntilEligible--
		if entry.CyclesUntilEligible > 0 {
			remaining = append(remaining, entry)
			continue
		}
		if retry, ok := ni.resolveGeneratedFlit(entry, now); ok {
			retries = append(retries, retry)
		}
	}
	ni.GeneratorBuffer = append(remaining, retries...)
}

// resolveGeneratedFlit resolves one eligible generator-buffer entry. If
// the intra-core commit path finds the destination in-memory full, it
// returns the entry (with its retry timer reset) for the caller to
// re-queue — resolveGeneratedFlit never appends to ni.GeneratorBuffer
// itself, since that slice is being filtered in place by the caller's
// loop and a direct append here would be silently discarded.
func (ni *NetworkInterface) resolveGeneratedFlit(entry GeneratorBufferEntry, now int64) (GeneratorBufferEntry, bool) {
	f := entry.Flit
	edge := ni.Edges.Get(f.Meta.Edge)
	task := ni.Tasks.Get(f.Meta.SrcTask)

	sameNI := f.Route.DestNI == ni.ID
	sameCore := sameNI && f.Route.DestCore == f.Route.SrcCore

	if sameCore {
		// intra-core: commit the token directly, no flits on any link.
		if edge.RecordSentPkt() {
			edge.RecordPkt(now)
			ni.Stats.IntraCoreTokens++
			return GeneratorBufferEntry{}, false
		}
		// destination in-memory full: retry next cycle (spec §4.8).
		entry.CyclesUntilEligible = 1
		return entry, true
	}

	se := &stagingEntry{Flit: f, Edge: edge, Task: task, EnqueueOrder: ni.nextEnqueueOrder()}
	if sameNI {
		ni.IntraStaging[entry.SourceCore] = append(ni.IntraStaging[entry.SourceCore], se)
	} else {
		ni.InterStaging[entry.SourceCore] = append(ni.InterStaging[entry.SourceCore], se)
	}
	return GeneratorBufferEntry{}, false
}

func (ni *NetworkInterface) nextEnqueueOrder() int64 {
	ni.enqueueOrderCounter++
	return ni.enqueueOrderCounter
}

// IntraClusterArbitration drives the crossbar: for each destination
// core whose lane is idle, scan source cores in round-robin order and
// admit the oldest eligible entry (spec §4.4 "Intra-cluster
// arbitration"), then advances every lane's occupancy by one cycle.
func (ni *NetworkInterface) IntraClusterArbitration(now int64) {
	sources := ni.CoreOrder
	n := len(sources)

	for _, destCore := range ni.CoreOrder {
		lane := ni.CrossbarLanes[destCore]
		if lane.Busy || n == 0 {
			continue
		}
		for offset := 0; offset < n; offset++ {
			srcCore := sources[(ni.CoreBufferRR+offset)%n]
			q := ni.IntraStaging[srcCore]
			idx := indexOfDest(q, destCore)
			if idx < 0 {
				continue
			}
			entry := q[idx]
			if !entry.Edge.RecordSentPkt() {
				// destination in-memory full: leave queued, try again
				// next cycle (spec §4.8).
				continue
			}
			ni.IntraStaging[srcCore] = append(q[:idx], q[idx+1:]...)
			lane.Busy = true
			lane.Remaining = ni.Cfg.CrossbarDelay
			lane.Entry = entry
			break
		}
	}

	ni.CoreBufferRR++
	if n > 0 {
		ni.CoreBufferRR %= n
	}

	for _, lane := range ni.CrossbarLanes {
		if !lane.Busy {
			continue
		}
		lane.Remaining--
		if lane.Remaining > 0 {
			continue
		}
		lane.Entry.Edge.RecordPkt(now)
		ni.Stats.IntraClusterPackets++
		lane.Busy = false
		lane.Entry = nil
	}
}

// indexOfDest returns the index of the first entry in q whose
// destination core matches dest (the staging buffers are FIFO by
// enqueue order, so the first match is always the oldest candidate for
// that destination).
func indexOfDest(q []*stagingEntry, dest CoreID) int {
	for i, e := range q {
		if e.Flit.Route.DestCore == dest {
			return i
		}
	}
	return -1
}

// InterClusterArbitration allocates free output VCs to staged
// inter-cluster packets, least-iteration-first, up to the number of
// currently idle VCs on VNet 2 (spec §4.4 "Inter-cluster arbitration").
func (ni *NetworkInterface) InterClusterArbitration(now int64) *DeadlockError {
	limit := IdleOutputVCs(ni.OutputVCs)
	sources := ni.CoreOrder
	n := len(sources)

	for iter := 0; iter < limit; iter++ {
		best, srcCore, idx := ni.pickLeastIterationEntry(sources, n)
		if best == nil {
			break
		}
		vc := calculateVC(ni.OutputVCs, best.Edge.VCChoice, ni.Cfg.VCsPerVnet, ni.Cfg.VCsForAllocation, ni.Cfg.VCAllocationObject != "")
		if vc < 0 {
			if err := ni.bumpDeadlockCounters(now); err != nil {
				return err
			}
			break
		}
		if !best.Edge.RecordSentPkt() {
			// destination in-memory full: leave queued for next cycle.
			continue
		}
		ni.InterStaging[srcCore] = append(ni.InterStaging[srcCore][:idx], ni.InterStaging[srcCore][idx+1:]...)
		ni.admitToOutputVC(vc, best, now)
	}
	return nil
}

// pickLeastIterationEntry scans source-core staging queues in
// round-robin order and returns the queue-front entry whose task has
// the smallest CETimes, breaking ties by round-robin position (spec
// §4.1/§4.4 fairness tie-break). Only the front entry of each source
// core's queue is compared; entries are not grouped by application.
func (ni *NetworkInterface) pickLeastIterationEntry(sources []CoreID, n int) (*stagingEntry, CoreID, int) {
	var best *stagingEntry
	var bestSrc CoreID
	bestIdx := -1
	for offset := 0; offset < n; offset++ {
		src := sources[(ni.CoreBufferRR+offset)%n]
		q := ni.InterStaging[src]
		if len(q) == 0 {
			continue
		}
		if best == nil || q[0].Task.CETimes < best.Task.CETimes {
			best = q[0]
			bestSrc = src
			bestIdx = 0
		}
	}
	return best, bestSrc, bestIdx
}

// bumpDeadlockCounters increments the VC-busy watchdog counter on
// every VC of VNet 2 (spec §4.8) and returns a DeadlockError once the
// configured threshold is exceeded.
func (ni *NetworkInterface) bumpDeadlockCounters(now int64) *DeadlockError {
	for _, vc := range ni.OutputVCs {
		vc.VCBusyCounter++
		if vc.VCBusyCounter > ni.Cfg.GarnetDeadlockThreshold {
			return &DeadlockError{Cycle: now, NI: ni.ID, VNet: TaskGraphVNet}
		}
	}
	return nil
}

// admitToOutputVC commits a packet to a VC: expands the head flit into
// its full flit sequence (HEAD, BODY..., TAIL, or HEAD_TAIL for a
// single-flit packet), stamps source-side queueing delay, and marks
// the VC active (spec §4.4).
func (ni *NetworkInterface) admitToOutputVC(vc int, entry *stagingEntry, now int64) {
	head := entry.Flit
	numFlits := int64(head.Size)
	v := ni.OutputVCs[vc]
	v.State = VCActive
	v.LastStateChange = now
	if v.EnqueueTimeMarker > head.EnqueueTime {
		v.EnqueueTimeMarker = head.EnqueueTime
	}

	for i := int64(0); i < numFlits; i++ {
		ft := FlitBody
		switch {
		case numFlits == 1:
			ft = FlitHeadTail
		case i == 0:
			ft = FlitHead
		case i == numFlits-1:
			ft = FlitTail
		}
		flit := *head
		flit.SeqInPacket = int(i)
		flit.Type = ft
		flit.VC = vc
		flit.SrcDelay = now - head.EnqueueTime
		v.Pending = append(v.Pending, &flit)
	}
	ni.Stats.InterClusterPackets++
}

// ScheduleOutputLink performs the per-cycle output-link selection: a
// round-robin walk across output VCs picks one ready (has a flit, has
// credit) VC; if the vnet is ordered, the ready VC whose head flit was
// enqueued earliest wins (spec §4.4 "Scheduling of the output link").
func (ni *NetworkInterface) ScheduleOutputLink(now int64) {
	n := len(ni.OutputVCs)
	if n == 0 {
		return
	}
	chosen := -1
	var earliestEnqueue int64 = infiniteEnqueueMarker
	for offset := 0; offset < n; offset++ {
		idx := (ni.OutVCRR + offset) % n
		v := ni.OutputVCs[idx]
		if len(v.Pending) == 0 || v.Credits <= 0 {
			continue
		}
		if !ni.Cfg.VNetOrdered {
			chosen = idx
			break
		}
		if v.Pending[0].EnqueueTime < earliestEnqueue {
			chosen = idx
			earliestEnqueue = v.Pending[0].EnqueueTime
		}
	}
	ni.OutVCRR = (ni.OutVCRR + 1) % n
	if chosen < 0 {
		return
	}

	v := ni.OutputVCs[chosen]
	f := v.Pending[0]
	v.Pending = v.Pending[1:]
	v.Credits--
	f.DequeueTime = now + 1
	ni.OutLink.Send(f)
	ni.Stats.FlitsSent++
	if f.IsTail() {
		v.EnqueueTimeMarker = infiniteEnqueueMarker
	}
}
