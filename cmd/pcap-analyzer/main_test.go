package main

import (
	"PcapSpectra/internal/config"
	"PcapSpectra/internal/engine/manager"
	"PcapSpectra/internal/engine/summary"
	"PcapSpectra/internal/model"
	"PcapSpectra/pkg/framegen"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closingWriter struct {
	writes int
	closed bool
}

func (w *closingWriter) Name() string { return "closing" }

func (w *closingWriter) Write(_ context.Context, _ *summary.Summary) error {
	w.writes++
	return nil
}

func (w *closingWriter) Close() error {
	w.closed = true
	return nil
}

func TestAnalyze_MissingCaptureClosesWriters(t *testing.T) {
	w := &closingWriter{}
	m := manager.NewManagerWithWriters(w)

	err := analyze(context.Background(), config.Default(), m, filepath.Join(t.TempDir(), "missing.pcap"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open pcap file")
	assert.True(t, w.closed)
	assert.Zero(t, w.writes)
}

func TestAnalyze_WritesSummaryAndClosesWriters(t *testing.T) {
	frame, err := framegen.TCP("10.0.0.1", "10.0.0.2", 1000, 80, 10)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "capture.pcap")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, framegen.WritePcap(f, []model.Frame{{Timestamp: time.Unix(0, 0), Data: frame}}))
	require.NoError(t, f.Close())

	w := &closingWriter{}
	m := manager.NewManagerWithWriters(w)

	require.NoError(t, analyze(context.Background(), config.Default(), m, path))
	assert.Equal(t, 1, w.writes)
	assert.True(t, w.closed)
}
