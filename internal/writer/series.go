package writer

import (
	"PcapSpectra/internal/engine/statistic"
	"PcapSpectra/internal/engine/summary"
	"PcapSpectra/internal/model"
)

const dirTimestampLayout = "2006-01-02_15-04-05"

// namedSeries is one distribution of a summary with its identifying labels.
// Transport is empty for the packet size series.
type namedSeries struct {
	Name         string
	Transport    string
	Distribution *statistic.Distribution
}

// seriesOf lists the summary's distributions in a fixed order, including the
// ones without data (nil Distribution).
func seriesOf(s *summary.Summary) []namedSeries {
	series := []namedSeries{{Name: summary.SeriesPacketSize, Distribution: s.PacketSizes}}
	for _, t := range []model.Transport{model.TransportTCP, model.TransportUDP} {
		series = append(series,
			namedSeries{Name: summary.SeriesFlowBytes, Transport: t.String(), Distribution: s.FlowBytes.Get(t)},
			namedSeries{Name: summary.SeriesFlowDuration, Transport: t.String(), Distribution: s.FlowDurations.Get(t)},
		)
	}
	return series
}

func (n namedSeries) key() string {
	if n.Transport == "" {
		return n.Name
	}
	return n.Name + "_" + n.Transport
}

func (n namedSeries) points() int {
	if n.Distribution == nil {
		return 0
	}
	return n.Distribution.Len()
}
