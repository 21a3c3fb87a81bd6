package noc

// Token-to-flit generator (spec §4.3, "enqueueFlitsGeneratorBuffer").
// Grounded on the original NetworkInterface.cc's packet fragmentation:
// a token is split into token_len_in_pkt-sized packets, each with a
// random inter-departure delay accumulated from the task's entry
// cycle and clamped to the execution window E.

// TokenSizeToFlits converts a token's bit size into a flit count,
// ceiling-dividing by the NI's flit width (spec §4.1: "compute
// num_flits = ceil(S / flit_bit_width)").
func TokenSizeToFlits(sizeBits int64, flitBitWidth int64) int64 {
	if flitBitWidth <= 0 {
		return sizeBits
	}
	return (sizeBits + flitBitWidth - 1) / flitBitWidth
}

// splitIntoPackets divides numFlits flits into packets of at most
// tokenLenInPkt flits each, clamping the final (possibly short)
// packet's flit count up to minLastPacketFlits. This clamp is a
// deliberate modeling choice preserved from the source (spec §9 open
// question #1): it inflates the last packet's declared size when the
// tail is shorter than one VC buffer, so downstream buffer-granularity
// accounting stays consistent. Not a bug — do not "fix" it away.
func splitIntoPackets(numFlits, tokenLenInPkt, minLastPacketFlits int64) []int64 {
	if tokenLenInPkt <= 0 {
		tokenLenInPkt = numFlits
	}
	if tokenLenInPkt <= 0 {
		return nil
	}
	numPackets := (numFlits + tokenLenInPkt - 1) / tokenLenInPkt
	if numPackets == 0 {
		numPackets = 1
	}
	packets := make([]int64, numPackets)
	for i := int64(0); i < numPackets; i++ {
		packets[i] = tokenLenInPkt
	}
	last := numFlits - (numPackets-1)*tokenLenInPkt
	if last < minLastPacketFlits {
		last = minLastPacketFlits
	}
	packets[numPackets-1] = last
	return packets
}

// EnqueueFlitsGeneratorBuffer fragments one freshly-produced edge token
// into packets spread across the task's execution window [0, E] and
// pushes {flit, cycles-remaining} generator-buffer entries (spec §4.3).
func (ni *NetworkInterface) EnqueueFlitsGeneratorBuffer(c *Core, e *GraphEdge, task *GraphTask, tokenID int64, numFlits int64, execWindow int64, now int64) {
	packets := splitIntoPackets(numFlits, ni.Cfg.TokenPacketLength, ni.Cfg.BuffersPerDataVC)
	var accumulated int64
	rng := ni.RNG.ForEdge(e.ID)
	for i, flitsInPacket := range packets {
		interval := int64(e.InterDeparture.Sample(rng))
		if interval < 1 {
			interval = 1
		}
		accumulated += interval
		eligibleAt := accumulated
		if i == len(packets)-1 || eligibleAt > execWindow {
			eligibleAt = execWindow
		}

		flitType := FlitHead
		if flitsInPacket == 1 {
			flitType = FlitHeadTail
		}

		f := &Flit{
			SeqInPacket: 0,
			VC:          -1,
			VNet:        TaskGraphVNet,
			Route: RouteInfo{
				SrcNI:    ni.ID,
				DestNI:   e.DestNI,
				SrcCore:  e.SrcCore,
				DestCore: e.DestCore,
				VCChoice: e.VCChoice,
				Hops:     -1,
			},
			Size:        int(flitsInPacket),
			Type:        flitType,
			EnqueueTime: now,
			Meta: TaskGraphMeta{
				SrcTask:     e.SrcTask,
				DestTask:    e.DestTask,
				Edge:        e.ID,
				TokenID:     tokenID,
				App:         e.App,
				PacketFlits: int(flitsInPacket),
			},
		}

		entry := GeneratorBufferEntry{
			Flit:                f,
			CyclesUntilEligible: eligibleAt,
			SourceCore:          c.ID,
		}
		ni.GeneratorBuffer = append(ni.GeneratorBuffer, entry)
	}
}
