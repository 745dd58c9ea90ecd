package manager

import (
	"PcapSpectra/internal/config"
	"PcapSpectra/internal/engine/summary"
	"PcapSpectra/internal/model"
	"PcapSpectra/pkg/framegen"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceSource struct {
	frames []model.Frame
	err    error
	closed bool
}

func (s *sliceSource) Next() (model.Frame, error) {
	if len(s.frames) == 0 {
		if s.err != nil {
			return model.Frame{}, s.err
		}
		return model.Frame{}, io.EOF
	}
	f := s.frames[0]
	s.frames = s.frames[1:]
	return f, nil
}

func (s *sliceSource) Close() error {
	s.closed = true
	return nil
}

type recordingWriter struct {
	name   string
	err    error
	mu     sync.Mutex
	got    []*summary.Summary
	closed bool
}

func (w *recordingWriter) Name() string { return w.name }

func (w *recordingWriter) Write(_ context.Context, s *summary.Summary) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.got = append(w.got, s)
	return w.err
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func newSource(t *testing.T) *sliceSource {
	t.Helper()
	tcp, err := framegen.TCP("10.0.0.1", "10.0.0.2", 1000, 80, 100)
	require.NoError(t, err)
	udp, err := framegen.UDP("10.0.0.1", "10.0.0.3", 2000, 53, 20)
	require.NoError(t, err)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &sliceSource{frames: []model.Frame{
		{Timestamp: start, Data: tcp},
		{Timestamp: start.Add(time.Second), Data: udp},
		{Timestamp: start.Add(3 * time.Second), Data: tcp},
	}}
}

func TestManager_Run(t *testing.T) {
	a := &recordingWriter{name: "a"}
	b := &recordingWriter{name: "b"}
	m := NewManagerWithWriters(a, b)

	s, err := m.Run(context.Background(), "capture.pcap", newSource(t))
	require.NoError(t, err)
	require.NotNil(t, s)

	assert.Equal(t, uint64(3), s.Counters.Total)
	assert.Equal(t, summary.FlowCounts{TCP: 1, UDP: 1}, s.Flows)
	assert.Equal(t, "capture.pcap", s.Source)
	assert.NotEmpty(t, s.RunID)
	assert.False(t, s.GeneratedAt.IsZero())

	require.Len(t, a.got, 1)
	require.Len(t, b.got, 1)
	assert.Same(t, s, a.got[0])
	assert.Same(t, s, b.got[0])

	m.Close()
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

func TestManager_RunIDsAreUnique(t *testing.T) {
	m := NewManagerWithWriters()
	first, err := m.Run(context.Background(), "a", newSource(t))
	require.NoError(t, err)
	second, err := m.Run(context.Background(), "b", newSource(t))
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestManager_WriterFailure(t *testing.T) {
	boom := errors.New("disk full")
	ok := &recordingWriter{name: "ok"}
	failing := &recordingWriter{name: "failing", err: boom}
	m := NewManagerWithWriters(ok, failing)

	s, err := m.Run(context.Background(), "capture.pcap", newSource(t))
	require.NotNil(t, s, "the summary survives writer failures")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failing")
	assert.Len(t, ok.got, 1)
}

func TestManager_SourceError(t *testing.T) {
	src := newSource(t)
	src.err = errors.New("read failed")

	w := &recordingWriter{name: "w"}
	s, err := NewManagerWithWriters(w).Run(context.Background(), "capture.pcap", src)
	assert.Nil(t, s)
	assert.ErrorIs(t, err, src.err)
	assert.Empty(t, w.got)
}

func TestManager_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := &recordingWriter{name: "w"}
	s, err := NewManagerWithWriters(w).Run(ctx, "capture.pcap", newSource(t))
	assert.Nil(t, s)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, w.got)
}

func TestManager_EmptySource(t *testing.T) {
	s, err := NewManagerWithWriters().Run(context.Background(), "empty.pcap", &sliceSource{})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), s.Counters.Total)
	assert.Nil(t, s.PacketSizes)
}

func TestNewManager_FromConfig(t *testing.T) {
	root := t.TempDir()
	cfg := &config.Config{Writers: []config.WriterDef{
		{Type: "text", Enabled: true, Text: config.TextConfig{RootPath: root}},
		{Type: "gob", Enabled: true, Gob: config.GobConfig{RootPath: root}},
		{Type: "chart", Enabled: false},
		{Type: "unknown", Enabled: true},
	}}
	m := NewManager(cfg)
	defer m.Close()
	require.Len(t, m.writers, 2)

	s, err := m.Run(context.Background(), "capture.pcap", newSource(t))
	require.NoError(t, err)

	dir := filepath.Join(root, s.GeneratedAt.Format("2006-01-02_15-04-05"))
	for _, name := range []string{"report.txt", "summary.gob", "summary.json"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}
