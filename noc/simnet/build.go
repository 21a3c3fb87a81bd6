package simnet

import (
	"fmt"

	"github.com/nocsim/nocsim/noc"
	"github.com/nocsim/nocsim/noc/config"
	"github.com/nocsim/nocsim/noc/trace"
)

// Build constructs a fully wired Cluster from the three workload input
// files plus the flat engine config (spec §6's configuration surface),
// ready for Run. Task ids are taken verbatim from taskGraph and must be
// unique (a repeated id is a *noc.ConfigError): a multi-application
// workload gives every application's head task (the task with no
// incoming edges) its own id. Id 0 (noc.HeadTaskID) is never entered by
// the ordinary thread-slot scheduler, so only a head task may carry it.
// A nil tr is replaced by a recorder with every stream switched off.
func Build(cfg config.EngineConfig, arch config.ArchitectureSpec, taskGraph config.TaskGraphSpec, apps config.ApplicationSpec, seed int64, horizon int64, tr *trace.Recorder) (*Cluster, error) {
	runtimeCfg := cfg.ToEngineConfig()
	if tr == nil {
		tr = trace.New(trace.Config{}, trace.Streams{})
	}

	edges := noc.NewEdgeArena()
	for _, es := range taskGraph.Edges {
		choice, err := vcChoiceFromInt(es.VCChoice)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", es.ID, err)
		}
		e := &noc.GraphEdge{
			ID:             noc.EdgeID(es.ID),
			SrcTask:        noc.TaskID(es.SrcTask),
			DestTask:       noc.TaskID(es.DestTask),
			SrcCore:        noc.CoreID(es.SrcCore),
			DestCore:       noc.CoreID(es.DestCore),
			SrcNI:          noc.NIID(es.SrcNI),
			DestNI:         noc.NIID(es.DestNI),
			App:            noc.AppIdx(es.App),
			VCChoice:       choice,
			InCapacity:     es.InCapacity,
			OutCapacity:    es.OutCapacity,
			TokenSizeDist:  noc.Distribution{Kind: es.TokenSizeKind, Mean: es.TokenSizeMean, StdDev: es.TokenSizeStdDev, Min: 1},
			InterDeparture: noc.Distribution{Kind: es.InterDepKind, Mean: es.InterDepMean, StdDev: es.InterDepStdDev, Min: 1},
		}
		edges.Add(e)
	}

	tasks := noc.NewTaskArena()
	incoming := make(map[noc.TaskID][]noc.EdgeID)
	outgoing := make(map[noc.TaskID][]noc.EdgeID)
	for _, e := range edges.All() {
		outgoing[e.SrcTask] = append(outgoing[e.SrcTask], e.ID)
		incoming[e.DestTask] = append(incoming[e.DestTask], e.ID)
	}
	for _, ts := range taskGraph.Tasks {
		id := noc.TaskID(ts.ID)
		if _, dup := tasks.All()[id]; dup {
			return nil, &noc.ConfigError{Reason: fmt.Sprintf("duplicate task id %d", ts.ID)}
		}
		tasks.Add(&noc.GraphTask{
			ID:                 id,
			Core:               noc.CoreID(ts.Core),
			App:                noc.AppIdx(ts.App),
			Incoming:           incoming[id],
			Outgoing:           outgoing[id],
			RequiredIterations: ts.RequiredIterations,
			ExecDist:           noc.Distribution{Kind: ts.ExecKind, Mean: ts.ExecMean, StdDev: ts.ExecStdDev, Min: 1},
		})
	}

	coreNI := make(map[noc.CoreID]noc.NIID)
	coreThreads := make(map[noc.CoreID]int)
	for _, node := range arch.Nodes {
		for _, cs := range node.Cores {
			coreNI[noc.CoreID(cs.ID)] = noc.NIID(node.NI)
			coreThreads[noc.CoreID(cs.ID)] = cs.Threads
		}
	}

	entranceNI := noc.NIID(arch.EntranceNI)
	entranceCore := noc.CoreID(arch.EntranceCore)

	cl := NewCluster(runtimeCfg, entranceNI, entranceCore, edges, tr, horizon)
	clock := &cl.Kernel.Clock

	ratios := make(map[noc.AppIdx]int64)
	for _, a := range apps.Applications {
		ratios[noc.AppIdx(a.App)] = a.Ratio
	}

	niByID := make(map[noc.NIID]*noc.NetworkInterface)
	for _, node := range arch.Nodes {
		id := noc.NIID(node.NI)
		ni := noc.NewNetworkInterface(id, runtimeCfg, cl, seed, tr)
		ni.Tasks = tasks
		ni.Edges = edges
		for _, cs := range node.Cores {
			core := noc.NewCore(noc.CoreID(cs.ID), cs.Threads)
			ni.AddCore(core)
		}
		niByID[id] = ni
		cl.AddNI(ni, int(id))
	}

	for _, t := range tasks.All() {
		ni, ok := niByID[coreNI[t.Core]]
		if !ok {
			return nil, &noc.ConfigError{Reason: fmt.Sprintf("task %d references unknown core %d", t.ID, t.Core)}
		}
		core := ni.Cores[t.Core]
		if core == nil {
			return nil, &noc.ConfigError{Reason: fmt.Sprintf("task %d's core %d not attached to its NI", t.ID, t.Core)}
		}
		if t.IsHead() {
			if ni.ID != entranceNI {
				return nil, &noc.ConfigError{Reason: fmt.Sprintf("head task %d's core %d is not on the entrance NI", t.ID, t.Core)}
			}
			ni.InitialSlots = append(ni.InitialSlots, &noc.ThreadSlot{})
			ni.RatioConfig[t.App] = ratios[t.App]
			alreadyTracked := false
			for _, a := range ni.EntranceAppOrder {
				if a == t.App {
					alreadyTracked = true
					break
				}
			}
			if !alreadyTracked {
				ni.EntranceAppOrder = append(ni.EntranceAppOrder, t.App)
			}
			continue
		}
		core.BindTask(t.App, t.ID)
	}

	// Wire a FlitLink/CreditLink pair for every distinct ordered NI pair
	// an edge crosses (spec §6's NetworkLink/CreditLink externals); NI
	// pairs with no crossing edge get no link (point-to-point topology,
	// router/routing-table computation being out of scope per §1).
	type pair struct{ from, to noc.NIID }
	seen := make(map[pair]bool)
	for _, e := range edges.All() {
		if e.SrcNI == e.DestNI {
			continue
		}
		p := pair{e.SrcNI, e.DestNI}
		if seen[p] {
			continue
		}
		seen[p] = true
		flit := NewFlitLink(clock)
		credit := NewCreditLink(clock)
		src := niByID[e.SrcNI]
		dst := niByID[e.DestNI]
		if src == nil || dst == nil {
			return nil, &noc.ConfigError{Reason: fmt.Sprintf("edge %d references unknown NI(s) %d/%d", e.ID, e.SrcNI, e.DestNI)}
		}
		src.OutLink = flit
		dst.InLink = flit
		dst.OutCreditLink = credit
		src.InCreditLink = credit
	}

	return cl, nil
}

func vcChoiceFromInt(v int) (noc.VCChoice, error) {
	if v < 0 || v > 3 {
		return 0, &noc.ConfigError{Reason: fmt.Sprintf("vc_choice %d out of {0..3}", v)}
	}
	return noc.VCChoice(v), nil
}
