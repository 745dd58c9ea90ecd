package metrics

import (
	"PcapSpectra/internal/engine/statistic"
	"PcapSpectra/internal/engine/summary"
	"PcapSpectra/internal/model"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus view of a finished run.
type Metrics struct {
	Frames      *prometheus.GaugeVec
	Flows       *prometheus.GaugeVec
	FlowBytes   *prometheus.GaugeVec
	PacketSizes prometheus.Histogram
}

// NewMetrics creates the collectors; call Register to expose them.
func NewMetrics() *Metrics {
	return &Metrics{
		Frames: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pcapspectra_frames",
			Help: "Number of frames in the capture by protocol",
		}, []string{"protocol"}),

		Flows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pcapspectra_flows",
			Help: "Number of distinct flows by transport",
		}, []string{"transport"}),

		FlowBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pcapspectra_flow_bytes",
			Help: "Total bytes carried by flows of a transport",
		}, []string{"transport"}),

		PacketSizes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pcapspectra_packet_size_bytes",
			Help:    "Distribution of logged packet sizes",
			Buckets: []float64{64, 128, 256, 384, 512, 768, 1024, 1518, 9000},
		}),
	}
}

// Register registers all collectors with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.Frames, m.Flows, m.FlowBytes, m.PacketSizes} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Record loads a summary into the collectors. It is meant to be called once per summary.
func (m *Metrics) Record(s *summary.Summary) {
	c := s.Counters
	m.Frames.WithLabelValues("total").Set(float64(c.Total))
	m.Frames.WithLabelValues(statistic.LabelTCP).Set(float64(c.TCP))
	m.Frames.WithLabelValues(statistic.LabelUDP).Set(float64(c.UDP))
	m.Frames.WithLabelValues(statistic.LabelICMP).Set(float64(c.ICMP))
	m.Frames.WithLabelValues(statistic.LabelARP).Set(float64(c.ARP))
	m.Frames.WithLabelValues(statistic.LabelOther).Set(float64(c.Other()))

	m.Flows.WithLabelValues(model.TransportTCP.String()).Set(float64(s.Flows.TCP))
	m.Flows.WithLabelValues(model.TransportUDP.String()).Set(float64(s.Flows.UDP))

	for _, t := range []model.Transport{model.TransportTCP, model.TransportUDP} {
		var total float64
		if d := s.FlowBytes.Get(t); d != nil {
			total = d.Sum()
		}
		m.FlowBytes.WithLabelValues(t.String()).Set(total)
	}

	if s.PacketSizes != nil {
		for _, v := range s.PacketSizes.Values {
			m.PacketSizes.Observe(v)
		}
	}
}
