package writer

import (
	"PcapSpectra/internal/config"
	"PcapSpectra/internal/engine/summary"
	"PcapSpectra/internal/factory"
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// TextWriter writes a human readable report of the summary.
type TextWriter struct {
	rootPath string
}

// NewTextWriter creates a new text report writer.
func NewTextWriter(cfg config.TextConfig) factory.Writer {
	return &TextWriter{rootPath: cfg.RootPath}
}

func (w *TextWriter) Name() string {
	return "text"
}

func (w *TextWriter) Write(_ context.Context, s *summary.Summary) error {
	dir := filepath.Join(w.rootPath, s.GeneratedAt.Format(dirTimestampLayout))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	filePath := filepath.Join(dir, "report.txt")
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create report file '%s': %w", filePath, err)
	}
	defer file.Close()

	buf := bufio.NewWriter(file)
	if err := WriteReport(buf, s); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	log.Printf("Successfully wrote report to %s\n", filePath)
	return nil
}

// WriteReport renders the summary as plain text.
func WriteReport(out io.Writer, s *summary.Summary) error {
	ew := &errWriter{w: out}

	ew.printf("Source:       %s\n", s.Source)
	ew.printf("Run:          %s\n", s.RunID)
	ew.printf("Total frames: %d\n\n", s.Counters.Total)

	mix, err := s.Mix()
	if err != nil {
		ew.printf("Protocol mix: %v\n", err)
	} else {
		ew.printf("%-8s %10s %10s\n", "Protocol", "Frames", "Fraction")
		for _, share := range mix {
			ew.printf("%-8s %10d %10.4f\n", share.Label, share.Frames, share.Fraction)
		}
	}

	ew.printf("\nFlows: %d TCP, %d UDP\n\n", s.Flows.TCP, s.Flows.UDP)
	for _, series := range seriesOf(s) {
		if series.Distribution == nil {
			ew.printf("%-20s no data\n", series.key())
			continue
		}
		d := series.Distribution
		ew.printf("%-20s %d points, min %g, max %g\n", series.key(), d.Len(), d.Values[0], d.Values[d.Len()-1])
	}
	return ew.err
}

// errWriter keeps the first write error and skips later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
