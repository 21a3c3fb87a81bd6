// Package config loads the NI engine's configuration surface (spec.md
// §6): a flat EngineConfig of scalar options plus the three workload
// input files (architecture, task graph, application). Grounded on
// cmd/default_config.go's strict-YAML loader (KnownFields(true), so a
// typo in a config key is a fatal load-time error rather than a
// silently-ignored field — spec.md §7 kind 1).
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nocsim/nocsim/noc"
)

// EngineConfig is the flat scalar configuration surface of spec.md §6.
type EngineConfig struct {
	NIFlitSize                int64  `yaml:"ni_flit_size"`
	VCsPerVnet                int    `yaml:"vcs_per_vnet"`
	BuffersPerDataVC          int64  `yaml:"buffers_per_data_vc"`
	BuffersPerCtrlVC          int64  `yaml:"buffers_per_ctrl_vc"`
	GarnetDeadlockThreshold   int64  `yaml:"garnet_deadlock_threshold"`
	TaskGraphEnable           bool   `yaml:"task_graph_enable"`
	TaskGraphFile             string `yaml:"task_graph_file"`
	ArchitectureFile          string `yaml:"architecture_file"`
	ApplicationConfig         string `yaml:"application_config"`
	TokenPacketLength         int64  `yaml:"token_packet_length"`
	RoutingAlgorithm          int    `yaml:"routing_algorithm"`
	VCsForAllocation          int    `yaml:"vcs_for_allocation"`
	VCAllocationObject        string `yaml:"vc_allocation_object"`
	PrintTaskExecutionInfo    bool   `yaml:"print_task_execution_info"`
	CrossbarDelay             int64  `yaml:"crossbar_delay"`
	VNetOrdered               bool   `yaml:"vnet_ordered"`
}

// ToEngineConfig converts the on-disk shape to the noc package's
// runtime config struct. Kept as a distinct conversion step (rather
// than reusing this type directly in noc) so noc has no YAML-tag
// dependency on this package's decoding concerns.
func (c EngineConfig) ToEngineConfig() noc.EngineConfig {
	return noc.EngineConfig{
		NIFlitSize:              c.NIFlitSize,
		VCsPerVnet:              c.VCsPerVnet,
		BuffersPerDataVC:        c.BuffersPerDataVC,
		BuffersPerCtrlVC:        c.BuffersPerCtrlVC,
		GarnetDeadlockThreshold: c.GarnetDeadlockThreshold,
		TokenPacketLength:       c.TokenPacketLength,
		RoutingAlgorithm:        c.RoutingAlgorithm,
		VCsForAllocation:        c.VCsForAllocation,
		VCAllocationObject:      c.VCAllocationObject,
		PrintTaskExecutionInfo:  c.PrintTaskExecutionInfo,
		CrossbarDelay:           c.CrossbarDelay,
		VNetOrdered:             c.VNetOrdered,
	}
}

// Validate applies spec §7 kind-1 configuration checks that are purely
// structural (independent of the loaded architecture/task-graph
// files): VC pool sizing constraints and a positive flit size.
// Per-edge vc_choice is checked later, by simnet.Build.
func (c EngineConfig) Validate() error {
	if c.VCsPerVnet <= 0 {
		return &noc.ConfigError{Reason: "vcs_per_vnet must be positive"}
	}
	if c.VCsPerVnet%2 != 0 {
		return &noc.ConfigError{Reason: "vcs_per_vnet must be even (split into class halves, spec §4.5)"}
	}
	if c.VCAllocationObject != "" && (c.VCsForAllocation < 0 || c.VCsForAllocation >= c.VCsPerVnet) {
		return &noc.ConfigError{Reason: "vcs_for_allocation out of range for the configured vnet pool"}
	}
	if c.NIFlitSize <= 0 {
		return &noc.ConfigError{Reason: "ni_flit_size must be positive"}
	}
	return nil
}

// Load reads and strictly decodes a YAML engine config file.
func Load(path string) (EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("reading engine config %s: %w", path, err)
	}
	var cfg EngineConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return EngineConfig{}, &noc.ConfigError{Reason: fmt.Sprintf("parsing engine config %s: %v", path, err)}
	}
	if err := cfg.Validate(); err != nil {
		return EngineConfig{}, err
	}
	return cfg, nil
}

// ArchitectureSpec describes node/core topology (architecture_file):
// NI count, cores per NI with their thread-slot counts, and the
// entrance NI/core. The crossbar delay is not part of it; it is the
// engine config's crossbar_delay.
type ArchitectureSpec struct {
	EntranceNI   int           `yaml:"entrance_ni"`
	EntranceCore int           `yaml:"entrance_core"`
	Nodes        []NodeSpec    `yaml:"nodes"`
}

type NodeSpec struct {
	NI    int        `yaml:"ni"`
	Cores []CoreSpec `yaml:"cores"`
}

type CoreSpec struct {
	ID      int `yaml:"id"`
	Threads int `yaml:"threads"`
}

// LoadArchitecture reads architecture_file.
func LoadArchitecture(path string) (ArchitectureSpec, error) {
	var spec ArchitectureSpec
	if err := loadStrictYAML(path, &spec); err != nil {
		return ArchitectureSpec{}, err
	}
	return spec, nil
}

// TaskGraphSpec describes the task graph (task_graph_file): tasks and
// edges with their distribution parameters, capacities, and vc_choice.
type TaskGraphSpec struct {
	Tasks []TaskSpec `yaml:"tasks"`
	Edges []EdgeSpec `yaml:"edges"`
}

type TaskSpec struct {
	ID                 int     `yaml:"id"`
	Core               int     `yaml:"core"`
	App                int     `yaml:"app"`
	RequiredIterations int64   `yaml:"required_iterations"`
	ExecKind           string  `yaml:"exec_dist_kind"`
	ExecMean           float64 `yaml:"exec_dist_mean"`
	ExecStdDev         float64 `yaml:"exec_dist_stddev"`
}

type EdgeSpec struct {
	ID               int     `yaml:"id"`
	SrcTask          int     `yaml:"src_task"`
	DestTask         int     `yaml:"dest_task"`
	SrcCore          int     `yaml:"src_core"`
	DestCore         int     `yaml:"dest_core"`
	SrcNI            int     `yaml:"src_ni"`
	DestNI           int     `yaml:"dest_ni"`
	App              int     `yaml:"app"`
	VCChoice         int     `yaml:"vc_choice"`
	InCapacity       int64   `yaml:"in_capacity"`
	OutCapacity      int64   `yaml:"out_capacity"`
	TokenSizeKind    string  `yaml:"token_size_kind"`
	TokenSizeMean    float64 `yaml:"token_size_mean"`
	TokenSizeStdDev  float64 `yaml:"token_size_stddev"`
	InterDepKind     string  `yaml:"inter_departure_kind"`
	InterDepMean     float64 `yaml:"inter_departure_mean"`
	InterDepStdDev   float64 `yaml:"inter_departure_stddev"`
}

// LoadTaskGraph reads task_graph_file.
func LoadTaskGraph(path string) (TaskGraphSpec, error) {
	var spec TaskGraphSpec
	if err := loadStrictYAML(path, &spec); err != nil {
		return TaskGraphSpec{}, err
	}
	return spec, nil
}

// ApplicationSpec describes per-application ratio-token weights
// (application_config) for the entrance injector (spec §4.6).
type ApplicationSpec struct {
	Applications []AppSpec `yaml:"applications"`
}

type AppSpec struct {
	App   int   `yaml:"app"`
	Ratio int64 `yaml:"ratio"`
}

// LoadApplicationConfig reads application_config.
func LoadApplicationConfig(path string) (ApplicationSpec, error) {
	var spec ApplicationSpec
	if err := loadStrictYAML(path, &spec); err != nil {
		return ApplicationSpec{}, err
	}
	return spec, nil
}

func loadStrictYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(out); err != nil {
		return &noc.ConfigError{Reason: fmt.Sprintf("parsing %s: %v", path, err)}
	}
	return nil
}
