package aggregator

import (
	"PcapSpectra/internal/engine/protocol"
	"PcapSpectra/internal/model"
	"slices"
	"time"
)

// Engine owns all running state of a capture pass: protocol counters, the
// packet size log and the TCP and UDP flow tables.
//
// An Engine is driven by a single loop and is not safe for concurrent use.
type Engine struct {
	counters    model.Counters
	packetSizes []int
	tcp         *FlowTable
	udp         *FlowTable
}

// New creates an empty engine.
func New() *Engine {
	return &Engine{
		tcp: newFlowTable(model.TransportTCP),
		udp: newFlowTable(model.TransportUDP),
	}
}

// ObserveFrame is Observe for a model.Frame.
func (e *Engine) ObserveFrame(f model.Frame) {
	e.Observe(f.Timestamp, f.Data)
}

// Observe decodes one frame and folds it into the aggregates. Frames are never
// rejected: anything that does not decode is only counted in the total.
//
// ARP frames log their full frame length as packet size. IP frames log the
// IP-layer length as packet size but add the full frame length to the flow
// byte totals.
func (e *Engine) Observe(ts time.Time, data []byte) {
	e.counters.Total++
	headers := protocol.Decode(data)

	switch headers.Kind {
	case model.KindARP:
		e.counters.ARP++
		e.packetSizes = append(e.packetSizes, headers.FrameLength)
	case model.KindIPv4, model.KindIPv6:
		e.packetSizes = append(e.packetSizes, headers.NetworkLength)
		e.observeTransport(ts, headers)
	case model.KindUnclassified:
	}
}

func (e *Engine) observeTransport(ts time.Time, headers model.Headers) {
	switch headers.Transport {
	case model.TransportTCP:
		e.counters.TCP++
		if key, ok := protocol.DeriveFlowKey(headers); ok {
			e.tcp.observe(key, ts, headers.FrameLength)
		}
	case model.TransportUDP:
		e.counters.UDP++
		if key, ok := protocol.DeriveFlowKey(headers); ok {
			e.udp.observe(key, ts, headers.FrameLength)
		}
	case model.TransportICMP:
		e.counters.ICMP++
	case model.TransportOther:
	}
}

// Counters returns a copy of the protocol counters.
func (e *Engine) Counters() model.Counters {
	return e.counters
}

// PacketSizes returns a copy of the packet size log in arrival order.
func (e *Engine) PacketSizes() []int {
	return slices.Clone(e.packetSizes)
}

// Table returns the flow table for TCP or UDP, and nil for any other transport.
func (e *Engine) Table(transport model.Transport) *FlowTable {
	switch transport {
	case model.TransportTCP:
		return e.tcp
	case model.TransportUDP:
		return e.udp
	default:
		return nil
	}
}
