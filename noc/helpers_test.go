package noc

import "github.com/nocsim/nocsim/noc/trace"

// silentRecorder is a trace.Recorder with every stream gated off, for
// tests that exercise scheduling/flow-control logic and don't care
// about the persisted trace output.
func silentRecorder() *trace.Recorder {
	return trace.New(trace.Config{}, trace.Streams{})
}
