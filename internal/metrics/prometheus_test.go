package metrics

import (
	"PcapSpectra/internal/engine/statistic"
	"PcapSpectra/internal/engine/summary"
	"PcapSpectra/internal/model"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	s := &summary.Summary{
		Counters:    model.Counters{Total: 10, TCP: 4, UDP: 3, ICMP: 1, ARP: 1},
		Flows:       summary.FlowCounts{TCP: 2, UDP: 1},
		PacketSizes: &statistic.Distribution{Values: []float64{60, 100, 1500}, Cumulative: []float64{0, 1.0 / 3, 2.0 / 3}},
		FlowBytes: summary.PerTransport{
			TCP: &statistic.Distribution{Values: []float64{200, 800}, Cumulative: []float64{0.2, 1}},
		},
	}

	reg := prometheus.NewRegistry()
	m := NewMetrics()
	require.NoError(t, m.Register(reg))
	m.Record(s)

	assert.Equal(t, 10.0, testutil.ToFloat64(m.Frames.WithLabelValues("total")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Frames.WithLabelValues(statistic.LabelTCP)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Frames.WithLabelValues(statistic.LabelOther)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Flows.WithLabelValues("tcp")))
	assert.Equal(t, 1000.0, testutil.ToFloat64(m.FlowBytes.WithLabelValues("tcp")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.FlowBytes.WithLabelValues("udp")))

	families, err := reg.Gather()
	require.NoError(t, err)
	var sampleCount uint64
	for _, mf := range families {
		if mf.GetName() == "pcapspectra_packet_size_bytes" {
			sampleCount = mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	assert.Equal(t, uint64(3), sampleCount)
}

func TestMetrics_RegisterTwiceFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, NewMetrics().Register(reg))
	assert.Error(t, NewMetrics().Register(reg))
}
