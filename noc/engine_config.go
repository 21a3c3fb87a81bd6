package noc

// EngineConfig is the runtime-facing projection of the NI engine's
// configuration surface (spec §6). The noc/config package loads the
// on-disk YAML shape and converts into this struct so this package
// carries no YAML-tag dependency.
type EngineConfig struct {
	NIFlitSize              int64
	VCsPerVnet              int
	BuffersPerDataVC        int64
	BuffersPerCtrlVC        int64
	GarnetDeadlockThreshold int64
	TokenPacketLength       int64
	RoutingAlgorithm        int
	VCsForAllocation        int
	VCAllocationObject      string
	PrintTaskExecutionInfo  bool
	CrossbarDelay           int64
	VNetOrdered             bool
}
