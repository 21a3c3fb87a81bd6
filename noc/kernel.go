package noc

// Kernel drives every NI cooperatively from a shared clock (spec §5):
// single-threaded per NI, one full cycle at NI X completes before NI X
// starts cycle N+1, and every NI finishes cycle N before any NI starts
// cycle N+1 — guaranteed here by always processing the whole batch of
// same-timestamp WakeupEvents (one per NI, see event.go's tie-break)
// before the clock advances. Grounded on sim/cluster/simulator.go's
// ClusterSimulator.Run loop.
type Kernel struct {
	NIs     map[NIID]*NetworkInterface
	NIOrder []NIID

	events  *EventQueue
	Clock   int64
	Horizon int64
}

// NewKernel creates a Kernel with the given simulation horizon (in cycles).
func NewKernel(horizon int64) *Kernel {
	return &Kernel{
		NIs:     make(map[NIID]*NetworkInterface),
		events:  NewEventQueue(),
		Horizon: horizon,
	}
}

// AddNI registers an NI and schedules its first wakeup at cycle 0.
func (k *Kernel) AddNI(ni *NetworkInterface) {
	k.NIs[ni.ID] = ni
	k.NIOrder = append(k.NIOrder, ni.ID)
	k.events.Schedule(0, ni.ID)
}

// Run drives the event wheel until the horizon is reached or every NI
// has stopped rescheduling. Returns the first fatal error encountered
// (spec §7: config errors are validated before Run; only the deadlock
// watchdog and map-lookup failures can fire during Run).
func (k *Kernel) Run() error {
	for k.events.Len() > 0 {
		ev := k.events.PopNext()
		if ev.Timestamp() > k.Horizon {
			break
		}
		k.Clock = ev.Timestamp()
		if err := k.wakeupNI(ev.ni, ev.Timestamp()); err != nil {
			return err
		}
	}
	return nil
}

func (k *Kernel) wakeupNI(id NIID, now int64) (err error) {
	ni := k.NIs[id]
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()
	if werr := ni.Wakeup(now); werr != nil {
		return werr
	}
	// The NI always requests a wake every next cycle (spec §6).
	k.events.Schedule(now+1, id)
	return nil
}
