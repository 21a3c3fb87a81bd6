package noc

// Partitioned, deterministic per-edge/per-task PRNG (spec §9). Grounded
// on sim/cluster's PartitionedRNG: subsystem streams derived from a
// master seed by XOR-ing with an FNV hash of the subsystem name, so
// construction order never affects the resulting stream. Distributions
// are drawn with gonum/stat/distuv rather than hand-rolled math/rand
// transforms.

import (
	"hash/fnv"
	"math/rand"
	"strconv"

	"gonum.org/v1/gonum/stat/distuv"
)

// PartitionedRNG hands out an isolated rand.Source per named subsystem
// (one per task, one per edge) so that reordering construction never
// perturbs another subsystem's draws.
type PartitionedRNG struct {
	masterSeed int64
	streams    map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG rooted at masterSeed.
func NewPartitionedRNG(masterSeed int64) *PartitionedRNG {
	return &PartitionedRNG{
		masterSeed: masterSeed,
		streams:    make(map[string]*rand.Rand),
	}
}

// ForTask returns the deterministic stream for a task's execution-time draws.
func (p *PartitionedRNG) ForTask(id TaskID) *rand.Rand {
	return p.forSubsystem(subsystemName("task", int64(id)))
}

// ForEdge returns the deterministic stream for an edge's token-size /
// inter-packet-interval draws.
func (p *PartitionedRNG) ForEdge(id EdgeID) *rand.Rand {
	return p.forSubsystem(subsystemName("edge", int64(id)))
}

func (p *PartitionedRNG) forSubsystem(name string) *rand.Rand {
	if r, ok := p.streams[name]; ok {
		return r
	}
	r := rand.New(rand.NewSource(p.deriveSeed(name)))
	p.streams[name] = r
	return r
}

func (p *PartitionedRNG) deriveSeed(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return p.masterSeed ^ int64(h.Sum64())
}

func subsystemName(kind string, id int64) string {
	return kind + "_" + strconv.FormatInt(id, 10)
}

// Distribution draws a non-negative sample from one of a small set of
// named distributions, used for execution-time E, token size S, and
// inter-packet interval. Parameters are workload-config driven.
type Distribution struct {
	Kind string // "exponential" or "normal"
	Mean float64
	// StdDev is only used by Kind == "normal".
	StdDev float64
	// Min clamps the sample from below (distributions here model
	// strictly positive physical quantities: cycles, bits).
	Min float64
}

// Sample draws one value, clamped to be >= d.Min.
func (d Distribution) Sample(rng *rand.Rand) float64 {
	var v float64
	switch d.Kind {
	case "normal":
		n := distuv.Normal{Mu: d.Mean, Sigma: d.StdDev, Src: rng}
		v = n.Rand()
	default:
		e := distuv.Exponential{Rate: 1.0 / d.Mean, Src: rng}
		v = e.Rand()
	}
	if v < d.Min {
		v = d.Min
	}
	return v
}
