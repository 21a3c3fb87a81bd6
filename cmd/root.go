// cmd/root.go
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nocsim/nocsim/noc/config"
	"github.com/nocsim/nocsim/noc/simnet"
	"github.com/nocsim/nocsim/noc/trace"
)

var (
	engineConfigPath string
	architecturePath string
	taskGraphPath    string
	applicationPath  string
	outputDir        string
	logLevel         string
	seed             int64
	horizon          int64
	deadlockOverride int64
)

var rootCmd = &cobra.Command{
	Use:   "nocsim",
	Short: "Cycle-accurate task-graph Network-Interface simulator",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a task-graph NI simulation to completion or fatal error",
	RunE:  runSimulation,
}

func runSimulation(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	logrus.SetLevel(level)

	engineCfg, err := config.Load(engineConfigPath)
	if err != nil {
		logrus.Fatalf("loading engine config: %v", err)
	}
	if deadlockOverride > 0 {
		engineCfg.GarnetDeadlockThreshold = deadlockOverride
	}
	arch, err := config.LoadArchitecture(architecturePath)
	if err != nil {
		logrus.Fatalf("loading architecture: %v", err)
	}
	taskGraph, err := config.LoadTaskGraph(taskGraphPath)
	if err != nil {
		logrus.Fatalf("loading task graph: %v", err)
	}
	apps, err := config.LoadApplicationConfig(applicationPath)
	if err != nil {
		logrus.Fatalf("loading application config: %v", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		logrus.Fatalf("creating output dir %s: %v", outputDir, err)
	}
	streams, closers, err := trace.NewFileStreams(func(name string) (io.WriteCloser, error) {
		return os.OpenFile(filepath.Join(outputDir, name+".txt"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	})
	if err != nil {
		logrus.Fatalf("opening trace streams: %v", err)
	}
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	recorder := trace.New(trace.Config{
		PrintTaskExecutionInfo: engineCfg.PrintTaskExecutionInfo,
		Enabled:                true,
	}, streams)

	logrus.Infof("starting task-graph NI simulation: horizon=%d cycles, seed=%d", horizon, seed)

	cluster, err := simnet.Build(engineCfg, arch, taskGraph, apps, seed, horizon, recorder)
	if err != nil {
		logrus.Fatalf("building cluster: %v", err)
	}

	if err := cluster.Run(); err != nil {
		logrus.Fatalf("simulation aborted at cycle %d: %v", cluster.Kernel.Clock, err)
	}

	logrus.Infof("simulation complete: %d cycles, total execution time %d, completed iterations: %v",
		cluster.Kernel.Clock, cluster.TotalExecutionTime(), cluster.CompletedIterations())
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	runCmd.Flags().StringVar(&engineConfigPath, "engine-config", "engine.yaml", "Path to the flat scalar engine config (ni_flit_size, vcs_per_vnet, ...)")
	runCmd.Flags().StringVar(&architecturePath, "architecture", "architecture.yaml", "Path to the NI/core topology file")
	runCmd.Flags().StringVar(&taskGraphPath, "task-graph", "task_graph.yaml", "Path to the task graph file")
	runCmd.Flags().StringVar(&applicationPath, "application-config", "application.yaml", "Path to the per-application ratio-token config")
	runCmd.Flags().StringVar(&outputDir, "output-dir", "./trace", "Directory the seven trace streams are appended to")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().Int64Var(&seed, "seed", 1, "Master seed for the partitioned per-task/per-edge PRNG")
	runCmd.Flags().Int64Var(&horizon, "horizon", 1_000_000, "Simulation horizon in cycles")
	runCmd.Flags().Int64Var(&deadlockOverride, "deadlock-threshold", 0, "Override garnet_deadlock_threshold from the engine config (0 = use config value)")

	rootCmd.AddCommand(runCmd)
}
