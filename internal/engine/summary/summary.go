package summary

import (
	"PcapSpectra/internal/engine/aggregator"
	"PcapSpectra/internal/engine/statistic"
	"PcapSpectra/internal/model"
	"errors"
	"log"
	"time"
)

// Series names used when a summary's distributions are exported point by point.
const (
	SeriesPacketSize   = "packet_size"
	SeriesFlowBytes    = "flow_bytes"
	SeriesFlowDuration = "flow_duration"
)

// PerTransport carries one distribution per flow protocol. A nil entry means
// the protocol had no flows, or flows of zero total mass.
type PerTransport struct {
	TCP *statistic.Distribution `json:"tcp,omitempty"`
	UDP *statistic.Distribution `json:"udp,omitempty"`
}

// Get returns the distribution for transport.
func (p PerTransport) Get(transport model.Transport) *statistic.Distribution {
	switch transport {
	case model.TransportTCP:
		return p.TCP
	case model.TransportUDP:
		return p.UDP
	default:
		return nil
	}
}

// FlowCounts is the number of distinct flows per protocol.
type FlowCounts struct {
	TCP int `json:"tcp"`
	UDP int `json:"udp"`
}

// Summary is the read-only result of one capture pass.
type Summary struct {
	RunID       string    `json:"run_id"`
	Source      string    `json:"source"`
	GeneratedAt time.Time `json:"generated_at"`

	Counters model.Counters `json:"counters"`
	Other    uint64         `json:"other"`
	Flows    FlowCounts     `json:"flows"`

	// PacketSizes is the count-weighted ECDF of the packet size log.
	PacketSizes *statistic.Distribution `json:"packet_sizes,omitempty"`
	// FlowBytes and FlowDurations are value-weighted distributions.
	FlowBytes     PerTransport `json:"flow_bytes"`
	FlowDurations PerTransport `json:"flow_durations"`

	ProtocolMix statistic.ProtocolMix `json:"protocol_mix,omitempty"`
}

// Mix returns the protocol mix, or statistic.ErrZeroTotalFrames when the
// capture held no frames.
func (s *Summary) Mix() (statistic.ProtocolMix, error) {
	if s.ProtocolMix == nil {
		return nil, statistic.ErrZeroTotalFrames
	}
	return s.ProtocolMix, nil
}

// Export turns the final engine state into the output series. It reads the
// engine once and does not modify it.
//
// An empty series leaves its field nil. So does a zero frame total for the
// protocol mix.
func Export(e *aggregator.Engine) *Summary {
	counters := e.Counters()
	tcp, udp := e.Table(model.TransportTCP), e.Table(model.TransportUDP)

	s := &Summary{
		Counters: counters,
		Other:    counters.Other(),
		Flows:    FlowCounts{TCP: tcp.Len(), UDP: udp.Len()},
	}

	var err error
	s.PacketSizes, err = statistic.CountWeightedECDF(statistic.Float64s(e.PacketSizes()))
	logExportError(SeriesPacketSize, err)
	s.FlowBytes.TCP, err = statistic.ValueWeightedCDF(statistic.Float64s(tcp.ByteTotals()))
	logExportError(SeriesFlowBytes+"/tcp", err)
	s.FlowBytes.UDP, err = statistic.ValueWeightedCDF(statistic.Float64s(udp.ByteTotals()))
	logExportError(SeriesFlowBytes+"/udp", err)
	s.FlowDurations.TCP, err = statistic.ValueWeightedCDF(tcp.Durations())
	logExportError(SeriesFlowDuration+"/tcp", err)
	s.FlowDurations.UDP, err = statistic.ValueWeightedCDF(udp.Durations())
	logExportError(SeriesFlowDuration+"/udp", err)
	s.ProtocolMix, err = statistic.NewProtocolMix(counters)
	logExportError("protocol_mix", err)

	return s
}

// logExportError logs export failures other than the sentinels that mark a
// series without data.
func logExportError(series string, err error) {
	if err == nil || errors.Is(err, statistic.ErrEmptyDistribution) || errors.Is(err, statistic.ErrZeroTotalFrames) {
		return
	}
	log.Printf("Failed to export %s: %v", series, err)
}
