// Package simnet wires many noc.NetworkInterface instances into one
// running cluster: it implements noc.Network (the global collaborator
// every NI reads config from and reports completion through) and
// supplies the NetworkLink/CreditLink externals spec.md §6 declares
// out of scope for the NI engine itself. Grounded on sim/cluster's
// ClusterSimulator wiring shape: one top-level object owns every
// per-node engine plus the glue between them.
package simnet

import "github.com/nocsim/nocsim/noc"

// FlitLink is a one-cycle-delay, point-to-point flit channel between
// two NIs. The sender's ScheduleOutputLink already stamps
// f.DequeueTime = now+1 (spec §4.4), so the link need only hold the
// FIFO and release entries once the clock reaches that stamp.
type FlitLink struct {
	clock *int64
	q     []*noc.Flit
}

// NewFlitLink creates a link that reads the live simulation clock
// through clock (owned by the Kernel) to decide when a queued flit
// becomes pollable.
func NewFlitLink(clock *int64) *FlitLink {
	return &FlitLink{clock: clock}
}

func (l *FlitLink) Send(f *noc.Flit) {
	l.q = append(l.q, f)
}

func (l *FlitLink) Poll() (*noc.Flit, bool) {
	if len(l.q) == 0 || l.q[0].DequeueTime > *l.clock {
		return nil, false
	}
	f := l.q[0]
	l.q = l.q[1:]
	f.Route.Hops = 1
	return f, true
}

// creditMsg is a pending credit with its one-cycle arrival stamp.
type creditMsg struct {
	vc      int
	isFree  bool
	arrival int64
}

// CreditLink is the credit-return counterpart of FlitLink, travelling
// in the opposite direction between the same NI pair.
type CreditLink struct {
	clock *int64
	q     []creditMsg
}

func NewCreditLink(clock *int64) *CreditLink {
	return &CreditLink{clock: clock}
}

func (l *CreditLink) Send(vc int, isFree bool) {
	l.q = append(l.q, creditMsg{vc: vc, isFree: isFree, arrival: *l.clock + 1})
}

func (l *CreditLink) Poll() (int, bool, bool) {
	if len(l.q) == 0 || l.q[0].arrival > *l.clock {
		return 0, false, false
	}
	m := l.q[0]
	l.q = l.q[1:]
	return m.vc, m.isFree, true
}
