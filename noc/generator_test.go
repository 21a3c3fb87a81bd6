package noc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenSizeToFlits_CeilingDivision(t *testing.T) {
	assert.Equal(t, int64(4), TokenSizeToFlits(32, 8))
	assert.Equal(t, int64(5), TokenSizeToFlits(33, 8))
	assert.Equal(t, int64(0), TokenSizeToFlits(0, 8))
}

func TestSplitIntoPackets_ClampsShortLastPacket(t *testing.T) {
	// 10 flits split into packets of 4: packets of [4,4,2], but the last
	// packet is clamped up to the minimum buffer granularity of 4 (spec
	// §9 open question #1 — preserved, not a bug).
	packets := splitIntoPackets(10, 4, 4)
	assert.Equal(t, []int64{4, 4, 4}, packets)
}

func TestSplitIntoPackets_ExactMultipleNeedsNoClamp(t *testing.T) {
	packets := splitIntoPackets(8, 4, 4)
	assert.Equal(t, []int64{4, 4}, packets)
}

func TestEnqueueFlitsGeneratorBuffer_PacesWithinExecutionWindow(t *testing.T) {
	ni := &NetworkInterface{
		Cfg: EngineConfig{TokenPacketLength: 2, BuffersPerDataVC: 2},
		RNG: NewPartitionedRNG(7),
	}
	core := &Core{ID: 0}
	edge := &GraphEdge{
		ID:             1,
		SrcCore:        0,
		DestCore:       1,
		InterDeparture: Distribution{Kind: "exponential", Mean: 3, Min: 1},
	}
	task := &GraphTask{ID: 2}

	ni.EnqueueFlitsGeneratorBuffer(core, edge, task, 1, 6, 10, 100)

	assert.Len(t, ni.GeneratorBuffer, 3) // 6 flits / 2-per-packet = 3 packets
	for _, entry := range ni.GeneratorBuffer {
		assert.GreaterOrEqual(t, entry.CyclesUntilEligible, int64(0))
		assert.LessOrEqual(t, entry.CyclesUntilEligible, int64(10), "every packet must be eligible within the execution window")
	}
	last := ni.GeneratorBuffer[len(ni.GeneratorBuffer)-1]
	assert.Equal(t, int64(10), last.CyclesUntilEligible, "final packet is always clamped to the execution window")
}
