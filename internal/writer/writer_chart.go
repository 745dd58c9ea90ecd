package writer

import (
	"PcapSpectra/internal/config"
	"PcapSpectra/internal/engine/statistic"
	"PcapSpectra/internal/engine/summary"
	"PcapSpectra/internal/factory"
	"PcapSpectra/internal/model"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
)

const (
	chartFlowDurations = "FlowDurations-CDF.png"
	chartFlowSizes     = "FlowSize-CDF.png"
	chartTraffic       = "Traffic-Percentages.png"
	chartPacketSizes   = "PacketSize-CDF.png"
)

// ChartWriter renders the summary series as PNG charts.
type ChartWriter struct {
	rootPath string
	width    int
	height   int
}

// NewChartWriter creates a new PNG chart writer.
func NewChartWriter(cfg config.ChartConfig) factory.Writer {
	return &ChartWriter{rootPath: cfg.RootPath, width: cfg.Width, height: cfg.Height}
}

func (w *ChartWriter) Name() string {
	return "chart"
}

// Write renders up to four charts. A chart whose series all lack data is
// skipped; a failing chart does not stop the others.
func (w *ChartWriter) Write(_ context.Context, s *summary.Summary) error {
	dir := filepath.Join(w.rootPath, s.GeneratedAt.Format(dirTimestampLayout))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}

	var errs []error
	written := 0
	render := func(fileName string, r renderer) {
		if r == nil {
			log.Printf("Skipping %s: no data.", fileName)
			return
		}
		if err := w.renderTo(filepath.Join(dir, fileName), r); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", fileName, err))
			return
		}
		written++
	}

	render(chartFlowDurations, w.cdfChart("CDF of Flow Durations", "Flow Duration (in seconds)", s.FlowDurations))
	render(chartFlowSizes, w.cdfChart("CDF of Flow Sizes", "Flow size (in bytes)", s.FlowBytes))
	render(chartTraffic, w.mixChart(s.ProtocolMix))
	render(chartPacketSizes, w.packetSizeChart(s.PacketSizes))

	log.Printf("Successfully wrote %d charts to %s\n", written, dir)
	return errors.Join(errs...)
}

type renderer interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func (w *ChartWriter) renderTo(path string, r renderer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := r.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func (w *ChartWriter) cdfChart(title, xName string, dists summary.PerTransport) renderer {
	var series []chart.Series
	var all []*statistic.Distribution
	for _, t := range []model.Transport{model.TransportTCP, model.TransportUDP} {
		d := dists.Get(t)
		if d == nil {
			continue
		}
		xs, ys := plotPoints(d)
		series = append(series, chart.ContinuousSeries{
			Name:    strings.ToUpper(t.String()),
			XValues: xs,
			YValues: ys,
		})
		all = append(all, d)
	}
	if len(series) == 0 {
		return nil
	}

	graph := &chart.Chart{
		Title:  title,
		Width:  w.width,
		Height: w.height,
		XAxis:  chart.XAxis{Name: xName, Range: xRange(all...)},
		YAxis:  chart.YAxis{Name: "Cumulative Probability", Range: &chart.ContinuousRange{Min: 0, Max: 1}},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(graph)}
	return graph
}

func (w *ChartWriter) packetSizeChart(d *statistic.Distribution) renderer {
	if d == nil {
		return nil
	}
	xs, ys := plotPoints(d)
	return &chart.Chart{
		Title:  "CDF of Packet Size",
		Width:  w.width,
		Height: w.height,
		XAxis:  chart.XAxis{Name: "Packet Size (in bytes)", Range: xRange(d)},
		YAxis:  chart.YAxis{Name: "Cumulative Probability", Range: &chart.ContinuousRange{Min: 0, Max: 1}},
		Series: []chart.Series{chart.ContinuousSeries{XValues: xs, YValues: ys}},
	}
}

func (w *ChartWriter) mixChart(mix statistic.ProtocolMix) renderer {
	if mix == nil {
		return nil
	}
	bars := make([]chart.Value, len(mix))
	for i, share := range mix {
		bars[i] = chart.Value{
			Value: share.Fraction,
			Label: share.Label + " " + strconv.FormatFloat(share.Fraction, 'f', 4, 64),
		}
	}
	return &chart.BarChart{
		Title:    "Percentage for the various Traffic Protocols",
		Width:    w.width,
		Height:   w.height,
		BarWidth: w.width / (2 * len(bars)),
		YAxis:    chart.YAxis{Name: "Traffic Percentages", Range: &chart.ContinuousRange{Min: 0, Max: 1}},
		Bars:     bars,
	}
}

// xRange spans all values of the distributions, widened when it would be
// empty so single-valued series still render.
func xRange(dists ...*statistic.Distribution) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, d := range dists {
		lo = math.Min(lo, d.Values[0])
		hi = math.Max(hi, d.Values[d.Len()-1])
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

// plotPoints returns the plot coordinates of d. A single point is doubled so the
// line renderer gets a segment to draw.
func plotPoints(d *statistic.Distribution) ([]float64, []float64) {
	if d.Len() == 1 {
		return []float64{d.Values[0], d.Values[0]}, []float64{d.Cumulative[0], d.Cumulative[0]}
	}
	return d.Values, d.Cumulative
}
