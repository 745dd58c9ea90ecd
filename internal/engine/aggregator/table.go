package aggregator

import (
	"PcapSpectra/internal/engine/statistic"
	"PcapSpectra/internal/model"
	"time"
)

// FlowTable holds the flows of one transport protocol. Entries are only ever
// added, never removed or merged.
type FlowTable struct {
	transport model.Transport
	flows     map[model.FlowKey]*statistic.Flow
}

func newFlowTable(transport model.Transport) *FlowTable {
	return &FlowTable{
		transport: transport,
		flows:     make(map[model.FlowKey]*statistic.Flow),
	}
}

// Transport returns the protocol this table aggregates.
func (t *FlowTable) Transport() model.Transport {
	return t.transport
}

// Len returns the number of distinct flows.
func (t *FlowTable) Len() int {
	return len(t.flows)
}

// Get returns the flow for key.
func (t *FlowTable) Get(key model.FlowKey) (*statistic.Flow, bool) {
	flow, ok := t.flows[key]
	return flow, ok
}

// Flows calls fn for every flow in unspecified order.
func (t *FlowTable) Flows(fn func(*statistic.Flow)) {
	for _, flow := range t.flows {
		fn(flow)
	}
}

// ByteTotals returns the byte total of every flow in unspecified order.
func (t *FlowTable) ByteTotals() []uint64 {
	totals := make([]uint64, 0, len(t.flows))
	for _, flow := range t.flows {
		totals = append(totals, flow.ByteCount)
	}
	return totals
}

// Durations returns the resolved duration in seconds of every flow in unspecified order.
func (t *FlowTable) Durations() []float64 {
	durations := make([]float64, 0, len(t.flows))
	for _, flow := range t.flows {
		durations = append(durations, flow.Duration())
	}
	return durations
}

func (t *FlowTable) observe(key model.FlowKey, ts time.Time, frameLength int) {
	flow, ok := t.flows[key]
	if !ok {
		flow = &statistic.Flow{Key: key}
		t.flows[key] = flow
	}
	flow.Observe(ts, frameLength)
}
