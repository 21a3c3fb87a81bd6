package noc

// fakeNetwork is a minimal, single-NI Network stand-in for unit tests
// that exercise one NetworkInterface in isolation (no real cluster
// wiring). It records the calls the NI makes into it so tests can
// assert on cross-NI side effects without a full simnet.Cluster.
type fakeNetwork struct {
	entranceNI   NIID
	entranceCore CoreID
	flitSize     int64
	vcsPerVnet   int
	buffersPerVC int64
	tokenLen     int64
	backPressure bool

	inMemoryUpdates []InMemoryUpdate
	completedIters  []appIterPair
	startEndCalls   []startEndCall
	execTimeTotal   int64
}

type appIterPair struct {
	App  AppIdx
	Iter int64
}

type startEndCall struct {
	App        AppIdx
	Iter       int64
	Start, End int64
}

func (f *fakeNetwork) EntranceNI() NIID      { return f.entranceNI }
func (f *fakeNetwork) EntranceCore() CoreID  { return f.entranceCore }
func (f *fakeNetwork) NumApplications() int  { return 1 }
func (f *fakeNetwork) RouterID(NIID) int     { return 0 }
func (f *fakeNetwork) NIFlitSize() int64     { return f.flitSize }
func (f *fakeNetwork) VCsPerVnet() int       { return f.vcsPerVnet }
func (f *fakeNetwork) BuffersPerDataVC() int64 { return f.buffersPerVC }
func (f *fakeNetwork) TokenLenInPkt() int64  { return f.tokenLen }
func (f *fakeNetwork) BackPressure(NIID) bool { return f.backPressure }

func (f *fakeNetwork) UpdateInMemoryInfo(core CoreID, app AppIdx, srcTask TaskID, edge EdgeID) {
	f.inMemoryUpdates = append(f.inMemoryUpdates, InMemoryUpdate{Core: core, App: app, SrcTask: srcTask, Edge: edge})
}

func (f *fakeNetwork) AddNumCompletedTasks(app AppIdx, iter int64) {
	f.completedIters = append(f.completedIters, appIterPair{App: app, Iter: iter})
}

func (f *fakeNetwork) UpdateStartEndTime(app AppIdx, iter int64, start, end int64) {
	f.startEndCalls = append(f.startEndCalls, startEndCall{App: app, Iter: iter, Start: start, End: end})
}

func (f *fakeNetwork) AddExecutionTimeToTotal(d int64) {
	f.execTimeTotal += d
}

// fakeLink is an in-process, zero-delay NetworkLink for tests that
// don't care about wire timing.
type fakeLink struct {
	sent []*Flit
	in   []*Flit
}

func (l *fakeLink) Send(f *Flit) { l.sent = append(l.sent, f) }
func (l *fakeLink) Poll() (*Flit, bool) {
	if len(l.in) == 0 {
		return nil, false
	}
	f := l.in[0]
	l.in = l.in[1:]
	return f, true
}

type fakeCreditLink struct {
	sent []struct {
		VC     int
		IsFree bool
	}
	in []struct {
		VC     int
		IsFree bool
	}
}

func (l *fakeCreditLink) Send(vc int, isFree bool) {
	l.sent = append(l.sent, struct {
		VC     int
		IsFree bool
	}{vc, isFree})
}

func (l *fakeCreditLink) Poll() (int, bool, bool) {
	if len(l.in) == 0 {
		return 0, false, false
	}
	m := l.in[0]
	l.in = l.in[1:]
	return m.VC, m.IsFree, true
}
