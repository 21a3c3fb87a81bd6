package noc

// Ingress handler (spec §4.7) and the inbound credit path (spec §4.8's
// credit-conservation counterpart). Each cycle the attached link and
// credit link are polled once; a stalled TAIL (destination in-memory
// was full when first seen) is retried ahead of newly arriving flits
// via StallQueue (spec §3's protocol-mode stall queue, reused here per
// SPEC_FULL.md §12 for symmetry with the original).

// IngestLink drains one flit from the inbound link (if any) plus any
// previously stalled flit, committing TAIL/HEAD_TAIL arrivals to the
// destination edge and returning credits per flit type.
func (ni *NetworkInterface) IngestLink(now int64) {
	ni.retryStalled(now)

	f, ok := ni.InLink.Poll()
	if !ok {
		return
	}
	f.DequeueTime = now
	ni.commitOrStall(f, now)
}

func (ni *NetworkInterface) retryStalled(now int64) {
	if len(ni.StallQueue) == 0 {
		return
	}
	remaining := ni.StallQueue[:0]
	for _, f := range ni.StallQueue {
		if !ni.tryCommit(f, now) {
			remaining = append(remaining, f)
		}
	}
	ni.StallQueue = remaining
}

func (ni *NetworkInterface) commitOrStall(f *Flit, now int64) {
	if !ni.tryCommit(f, now) {
		ni.StallQueue = append(ni.StallQueue, f)
	}
}

// tryCommit attempts to commit f; returns false (and leaves f for
// retry) when the destination edge's in-memory is currently full.
func (ni *NetworkInterface) tryCommit(f *Flit, now int64) bool {
	edge := ni.Edges.Get(f.Meta.Edge)

	if f.IsTail() {
		if edge.InCapacity-edge.InTokens <= 0 {
			return false // destination buffer full: retry next cycle (spec §4.8)
		}
		edge.RecordPkt(now)
		ni.OutCreditLink.Send(f.VC, true)
	} else {
		ni.OutCreditLink.Send(f.VC, false)
	}

	ni.Stats.FlitsReceived++
	ni.Trace.NetworkPerformance(now, int64(f.Route.SrcNI), int64(f.Route.DestNI), int64(f.Route.VCChoice), f.Route.Hops)
	return true
}

// IngestCredits drains the inbound credit link: every credit increases
// the matching producer-side OutputVC's budget; is_free credits
// transition that VC to IDLE (spec §4.7, §6 OutputUnit contract).
func (ni *NetworkInterface) IngestCredits(now int64) {
	for {
		vcIdx, isFree, ok := ni.InCreditLink.Poll()
		if !ok {
			return
		}
		if vcIdx < 0 || vcIdx >= len(ni.OutputVCs) {
			continue
		}
		v := ni.OutputVCs[vcIdx]
		v.Credits++
		if isFree {
			v.State = VCIdle
			v.LastStateChange = now
		}
	}
}
