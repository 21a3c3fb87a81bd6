package simnet

import (
	"github.com/sirupsen/logrus"

	"github.com/nocsim/nocsim/noc"
	"github.com/nocsim/nocsim/noc/trace"
)

// Cluster is the noc.Network implementation: it knows every NI's
// router id, the entrance NI/core, the flat scalar engine config, and
// aggregates the per-application completion/delay accounting the
// entrance pool needs (spec §6's "global network object").
type Cluster struct {
	Kernel *noc.Kernel

	cfg          noc.EngineConfig
	entranceNI   noc.NIID
	entranceCore noc.CoreID
	routerID     map[noc.NIID]int

	nis   map[noc.NIID]*noc.NetworkInterface
	edges *noc.EdgeArena

	trace *trace.Recorder

	startCycle  map[appIter]int64
	completed   map[noc.AppIdx]int64
	execTimeSum int64
}

type appIter struct {
	app  noc.AppIdx
	iter int64
}

// NewCluster creates an empty Cluster; callers add NIs via AddNI, wire
// edges via the EdgeArena reference, then build the Kernel's horizon
// and call Run.
func NewCluster(cfg noc.EngineConfig, entranceNI noc.NIID, entranceCore noc.CoreID, edges *noc.EdgeArena, tr *trace.Recorder, horizon int64) *Cluster {
	return &Cluster{
		Kernel:       noc.NewKernel(horizon),
		cfg:          cfg,
		entranceNI:   entranceNI,
		entranceCore: entranceCore,
		routerID:     make(map[noc.NIID]int),
		nis:          make(map[noc.NIID]*noc.NetworkInterface),
		edges:        edges,
		trace:        tr,
		startCycle:   make(map[appIter]int64),
		completed:    make(map[noc.AppIdx]int64),
	}
}

// AddNI registers an NI's router id and binds it into the Kernel.
func (c *Cluster) AddNI(ni *noc.NetworkInterface, routerID int) {
	c.nis[ni.ID] = ni
	c.routerID[ni.ID] = routerID
	c.Kernel.AddNI(ni)
}

// Run drives the cluster to completion or fatal error.
func (c *Cluster) Run() error {
	if err := c.Kernel.Run(); err != nil {
		logrus.WithFields(logrus.Fields{
			"cycle": c.Kernel.Clock,
		}).Errorf("cluster run aborted: %v", err)
		return err
	}
	return nil
}

func (c *Cluster) EntranceNI() noc.NIID     { return c.entranceNI }
func (c *Cluster) EntranceCore() noc.CoreID { return c.entranceCore }

func (c *Cluster) NumApplications() int {
	apps := make(map[noc.AppIdx]bool)
	for _, e := range c.edges.All() {
		apps[e.App] = true
	}
	return len(apps)
}

func (c *Cluster) RouterID(ni noc.NIID) int { return c.routerID[ni] }

func (c *Cluster) NIFlitSize() int64       { return c.cfg.NIFlitSize }
func (c *Cluster) VCsPerVnet() int         { return c.cfg.VCsPerVnet }
func (c *Cluster) BuffersPerDataVC() int64 { return c.cfg.BuffersPerDataVC }
func (c *Cluster) TokenLenInPkt() int64    { return c.cfg.TokenPacketLength }

// BackPressure reports whether any edge in the whole task graph
// currently has its in-memory at capacity — a conservative stand-in
// for "any downstream in-memory on the entrance's critical path is
// full" (spec §6), since this package has no topology/critical-path
// model beyond the flat edge arena.
func (c *Cluster) BackPressure(node noc.NIID) bool {
	for _, e := range c.edges.All() {
		if e.InCapacity-e.InTokens <= 0 {
			return true
		}
	}
	return false
}

// UpdateInMemoryInfo routes a cross-NI in-memory-advance notification
// to the NI that owns srcTask's core (spec §9).
func (c *Cluster) UpdateInMemoryInfo(core noc.CoreID, app noc.AppIdx, srcTask noc.TaskID, edge noc.EdgeID) {
	e := c.edges.Get(edge)
	owner, ok := c.nis[e.SrcNI]
	if !ok {
		return
	}
	owner.PostInMemoryUpdate(noc.InMemoryUpdate{Core: core, App: app, SrcTask: srcTask, Edge: edge})
}

func (c *Cluster) AddNumCompletedTasks(app noc.AppIdx, iter int64) {
	c.completed[app]++
	if c.trace != nil {
		c.trace.Throughput(c.Kernel.Clock, c.totalCompleted())
	}
}

func (c *Cluster) totalCompleted() int64 {
	var total int64
	for _, n := range c.completed {
		total += n
	}
	return total
}

// UpdateStartEndTime records one iteration's [start,end] interval and,
// once both ends of an (app, iter) pair are known, emits the
// end-to-end delay trace line (spec §6/SPEC_FULL §13).
func (c *Cluster) UpdateStartEndTime(app noc.AppIdx, iter int64, start, end int64) {
	key := appIter{app: app, iter: iter}
	if prev, ok := c.startCycle[key]; !ok || start < prev {
		c.startCycle[key] = start
	}
	delay := end - c.startCycle[key]
	if c.trace != nil {
		c.trace.AppDelay(int64(app), iter, delay)
	}
}

func (c *Cluster) AddExecutionTimeToTotal(d int64) {
	c.execTimeSum += d
}

// TotalExecutionTime reports the accumulated execution-time total.
func (c *Cluster) TotalExecutionTime() int64 { return c.execTimeSum }

// CompletedIterations reports the per-application completed-iteration
// counts at the point this is called (typically after Run returns).
func (c *Cluster) CompletedIterations() map[noc.AppIdx]int64 {
	out := make(map[noc.AppIdx]int64, len(c.completed))
	for k, v := range c.completed {
		out[k] = v
	}
	return out
}
