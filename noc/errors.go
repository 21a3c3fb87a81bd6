package noc

import "fmt"

// Error kinds per spec §7. Only ConfigError, DeadlockError, and
// MapLookupError are ever surfaced to the caller — back-pressure
// stalls and destination-buffer-full retries are transient, local, and
// never returned as errors (§7 policy).

// ConfigError reports a fatal configuration problem detected at load or
// build time: a malformed or invalid config file, unknown core id, a
// head task off the entrance NI, vc_choice out of {0..3}, duplicate
// task id, an edge naming an unknown NI. Core thread counts are taken
// from the architecture file as given and are not cross-checked.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s", e.Reason)
}

// DeadlockError reports the watchdog tripping: VC allocation has
// failed more than garnet_deadlock_threshold times on some vnet. The
// failure count accumulates over the whole run; a successful
// allocation does not reset it.
type DeadlockError struct {
	Cycle int64
	NI    NIID
	VNet  int
}

func (e *DeadlockError) Error() string {
	return fmt.Sprintf("deadlock watchdog tripped: cycle=%d ni=%d vnet=%d", e.Cycle, e.NI, e.VNet)
}

// MapLookupError reports a missing core/task/edge id — always fatal,
// indicates a corrupted workload (spec §7 kind 5).
type MapLookupError struct {
	Kind string // "task", "edge", "core", "ni"
	ID   int64
}

func (e *MapLookupError) Error() string {
	return fmt.Sprintf("map-lookup failure: no such %s id %d", e.Kind, e.ID)
}
