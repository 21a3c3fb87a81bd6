package noc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphEdge_ReserveAndRecordSentPkt(t *testing.T) {
	e := &GraphEdge{InCapacity: 2, OutCapacity: 2}

	require.True(t, e.ReserveOutMemory())
	assert.Equal(t, int64(1), e.OutTokens)
	assert.Equal(t, int64(1), e.TotalProduced)

	require.True(t, e.RecordSentPkt())
	assert.Equal(t, int64(1), e.OutTokens, "sending does not free out-memory; only FreeOutMemory does")

	// destination in-memory full: RecordSentPkt must fail without
	// mutating any pointer.
	e.InTokens = e.InCapacity
	require.True(t, e.ReserveOutMemory())
	assert.False(t, e.RecordSentPkt())
}

func TestGraphEdge_InFlightInvariant(t *testing.T) {
	e := &GraphEdge{InCapacity: 4, OutCapacity: 4}
	require.True(t, e.ReserveOutMemory())
	require.True(t, e.RecordSentPkt())
	// token is now on the wire: produced but not yet consumed.
	assert.Equal(t, int64(1), e.InFlight())

	e.RecordPkt(10)
	assert.Equal(t, int64(0), e.InFlight())
	assert.Equal(t, e.TotalProduced-e.TotalConsumed, e.InFlight()+e.InTokens)
}

func TestGraphTask_EligibleForEntry(t *testing.T) {
	edges := NewEdgeArena()
	edges.Add(&GraphEdge{ID: 1, InCapacity: 2})

	head := &GraphTask{ID: 0, RequiredIterations: 5}
	assert.True(t, head.IsHead())
	assert.True(t, head.EligibleForEntry(edges))

	consumer := &GraphTask{ID: 1, Incoming: []EdgeID{1}, RequiredIterations: 5}
	assert.False(t, consumer.EligibleForEntry(edges), "no pending in-token yet")

	edges.Get(1).InTokens = 1
	assert.True(t, consumer.EligibleForEntry(edges))

	consumer.CETimes = consumer.RequiredIterations
	assert.False(t, consumer.EligibleForEntry(edges), "required iterations already entered")
}

func TestGraphTask_HasFullOutMemory(t *testing.T) {
	edges := NewEdgeArena()
	edges.Add(&GraphEdge{ID: 1, OutCapacity: 1, OutTokens: 1})
	task := &GraphTask{Outgoing: []EdgeID{1}}
	assert.True(t, task.HasFullOutMemory(edges))

	edges.Get(1).OutTokens = 0
	assert.False(t, task.HasFullOutMemory(edges))
}

func TestArena_GetMissingIDPanicsWithMapLookupError(t *testing.T) {
	tasks := NewTaskArena()
	assert.PanicsWithValue(t, &MapLookupError{Kind: "task", ID: 99}, func() {
		tasks.Get(99)
	})

	edges := NewEdgeArena()
	assert.PanicsWithValue(t, &MapLookupError{Kind: "edge", ID: 7}, func() {
		edges.Get(7)
	})
}
