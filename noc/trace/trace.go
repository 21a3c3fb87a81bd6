// Package trace implements the seven persisted output streams of
// spec.md §6/SPEC_FULL.md §13. Grounded on sim/trace/trace.go's
// TraceConfig/TraceLevel gate; unlike the teacher's pure in-memory
// record package, these streams are genuinely append-only text files
// (spec.md §6), so Recorder writes
// through io.Writer rather than buffering records for later summary.
package trace

import (
	"bufio"
	"fmt"
	"io"
)

// Config controls which streams are active.
type Config struct {
	// PrintTaskExecutionInfo gates the three per-task-entry streams
	// (task_start_time_vs_id, task_start_end_time_vs_id,
	// task_start_time_vs_id_iters).
	PrintTaskExecutionInfo bool
	// Enabled gates the remaining four streams (throughput_info,
	// app_delay_running_info, network_performance_info,
	// task_waiting_time_info are always written once tracing is on at
	// all, per SPEC_FULL.md §13).
	Enabled bool
}

// Streams bundles the seven writers a Recorder writes through. Any may
// be nil, in which case writes to it are silently dropped (useful for
// tests that only care about a subset of streams).
type Streams struct {
	TaskStartTimeVsID         io.Writer
	TaskStartEndTimeVsID      io.Writer
	TaskStartTimeVsIDIters    io.Writer
	ThroughputInfo            io.Writer
	AppDelayRunningInfo       io.Writer
	NetworkPerformanceInfo    io.Writer
	TaskWaitingTimeInfo       io.Writer
}

// Recorder writes one whitespace-delimited line per event into the
// configured streams.
type Recorder struct {
	cfg     Config
	streams Streams
}

// New creates a Recorder over the given streams and config.
func New(cfg Config, streams Streams) *Recorder {
	return &Recorder{cfg: cfg, streams: streams}
}

func writeLine(w io.Writer, format string, args ...any) {
	if w == nil {
		return
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// TaskStart records a task entry: task_start_time_vs_id,
// task_start_time_vs_id_iters.
func (r *Recorder) TaskStart(cycle int64, taskID, core, app, iteration int64) {
	if !r.cfg.PrintTaskExecutionInfo {
		return
	}
	writeLine(r.streams.TaskStartTimeVsID, "%d %d %d %d %d", cycle, taskID, core, app, iteration)
	writeLine(r.streams.TaskStartTimeVsIDIters, "%d %d %d", taskID, iteration, cycle)
}

// TaskComplete records task_start_end_time_vs_id at task completion.
func (r *Recorder) TaskComplete(taskID, startCycle, endCycle, iteration int64) {
	if !r.cfg.PrintTaskExecutionInfo {
		return
	}
	writeLine(r.streams.TaskStartEndTimeVsID, "%d %d %d %d", taskID, startCycle, endCycle, iteration)
}

// Throughput records a sampled throughput_info point.
func (r *Recorder) Throughput(cycle, completedIterationsTotal int64) {
	if !r.cfg.Enabled {
		return
	}
	writeLine(r.streams.ThroughputInfo, "%d %d", cycle, completedIterationsTotal)
}

// AppDelay records app_delay_running_info at application iteration completion.
func (r *Recorder) AppDelay(app, iteration, endToEndDelay int64) {
	if !r.cfg.Enabled {
		return
	}
	writeLine(r.streams.AppDelayRunningInfo, "%d %d %d", app, iteration, endToEndDelay)
}

// NetworkPerformance records network_performance_info at flit departure.
func (r *Recorder) NetworkPerformance(cycle int64, srcNI, destNI int64, vcChoice int64, hops int) {
	if !r.cfg.Enabled {
		return
	}
	writeLine(r.streams.NetworkPerformanceInfo, "%d %d %d %d %d", cycle, srcNI, destNI, vcChoice, hops)
}

// TaskWaiting records task_waiting_time_info at task entry.
func (r *Recorder) TaskWaiting(taskID, waitCycles int64) {
	if !r.cfg.Enabled {
		return
	}
	writeLine(r.streams.TaskWaitingTimeInfo, "%d %d", taskID, waitCycles)
}

// NewFileStreams opens all seven streams as append-only buffered
// writers, each obtained by name from openAppend, matching the
// corpus's trace-writer convention.
func NewFileStreams(openAppend func(name string) (io.WriteCloser, error)) (Streams, []io.Closer, error) {
	names := map[string]*io.Writer{}
	var s Streams
	names["task_start_time_vs_id"] = &s.TaskStartTimeVsID
	names["task_start_end_time_vs_id"] = &s.TaskStartEndTimeVsID
	names["task_start_time_vs_id_iters"] = &s.TaskStartTimeVsIDIters
	names["throughput_info"] = &s.ThroughputInfo
	names["app_delay_running_info"] = &s.AppDelayRunningInfo
	names["network_performance_info"] = &s.NetworkPerformanceInfo
	names["task_waiting_time_info"] = &s.TaskWaitingTimeInfo

	var closers []io.Closer
	for name, slot := range names {
		f, err := openAppend(name)
		if err != nil {
			for _, c := range closers {
				c.Close()
			}
			return Streams{}, nil, err
		}
		bw := bufio.NewWriter(f)
		*slot = bw
		closers = append(closers, flushCloser{bw, f})
	}
	return s, closers, nil
}

type flushCloser struct {
	bw *bufio.Writer
	f  io.WriteCloser
}

func (fc flushCloser) Close() error {
	fc.bw.Flush()
	return fc.f.Close()
}
