package writer

import (
	"PcapSpectra/internal/config"
	"PcapSpectra/internal/engine/summary"
	"PcapSpectra/internal/factory"
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SummaryIndex is the metadata written next to the gob-encoded summary.
type SummaryIndex struct {
	RunID       string         `json:"run_id"`
	Source      string         `json:"source"`
	TotalFrames uint64         `json:"total_frames"`
	TCPFlows    int            `json:"tcp_flows"`
	UDPFlows    int            `json:"udp_flows"`
	Points      map[string]int `json:"points"`
	Timestamp   string         `json:"timestamp"`
}

// GobWriter writes the full summary in gob format plus a json index.
type GobWriter struct {
	rootPath string
}

// NewGobWriter creates a new gob writer rooted at rootPath.
func NewGobWriter(cfg config.GobConfig) factory.Writer {
	return &GobWriter{rootPath: cfg.RootPath}
}

func (w *GobWriter) Name() string {
	return "gob"
}

// Write stores summary.gob and summary.json under <root>/<timestamp>/.
func (w *GobWriter) Write(_ context.Context, s *summary.Summary) error {
	dir := filepath.Join(w.rootPath, s.GeneratedAt.Format(dirTimestampLayout))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create summary directory: %w", err)
	}

	gobPath := filepath.Join(dir, "summary.gob")
	gobFile, err := os.Create(gobPath)
	if err != nil {
		return fmt.Errorf("failed to create summary file '%s': %w", gobPath, err)
	}
	defer gobFile.Close()

	if err := gob.NewEncoder(gobFile).Encode(s); err != nil {
		return fmt.Errorf("failed to encode summary to gob for file '%s': %w", gobPath, err)
	}

	index := SummaryIndex{
		RunID:       s.RunID,
		Source:      s.Source,
		TotalFrames: s.Counters.Total,
		TCPFlows:    s.Flows.TCP,
		UDPFlows:    s.Flows.UDP,
		Points:      make(map[string]int),
		Timestamp:   s.GeneratedAt.Format(time.RFC3339),
	}
	for _, series := range seriesOf(s) {
		index.Points[series.key()] = series.points()
	}

	indexPath := filepath.Join(dir, "summary.json")
	indexFile, err := os.Create(indexPath)
	if err != nil {
		return fmt.Errorf("failed to create index file: %w", err)
	}
	defer indexFile.Close()

	jsonEncoder := json.NewEncoder(indexFile)
	jsonEncoder.SetIndent("", "  ")
	if err := jsonEncoder.Encode(index); err != nil {
		return fmt.Errorf("failed to encode index to json: %w", err)
	}

	return nil
}

// ReadGob loads a summary previously written by GobWriter.
func ReadGob(path string) (*summary.Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var s summary.Summary
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode summary from '%s': %w", path, err)
	}
	return &s, nil
}
