package pcap

import (
	"PcapSpectra/internal/model"
	"PcapSpectra/pkg/framegen"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrames(t *testing.T) []model.Frame {
	t.Helper()
	tcp, err := framegen.TCP("192.168.0.1", "8.8.8.8", 12345, 443, 100)
	require.NoError(t, err)
	arp, err := framegen.ARPRequest("192.168.0.1", "192.168.0.254")
	require.NoError(t, err)

	// Microsecond-aligned so pcapng's default resolution keeps them exact.
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return []model.Frame{
		{Timestamp: start, Data: tcp},
		{Timestamp: start.Add(1500 * time.Microsecond), Data: arp},
		{Timestamp: start.Add(2 * time.Second), Data: tcp},
	}
}

func readAll(t *testing.T, r *Reader) []model.Frame {
	t.Helper()
	var frames []model.Frame
	for {
		f, err := r.Next()
		if err == io.EOF {
			return frames
		}
		require.NoError(t, err)
		frames = append(frames, f)
	}
}

func assertFramesEqual(t *testing.T, want, got []model.Frame) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Timestamp.Equal(got[i].Timestamp), "frame %d timestamp: want %v, got %v", i, want[i].Timestamp, got[i].Timestamp)
		assert.Equal(t, want[i].Data, got[i].Data, "frame %d data", i)
	}
}

func TestReader_Pcap(t *testing.T) {
	frames := testFrames(t)
	var buf bytes.Buffer
	require.NoError(t, framegen.WritePcap(&buf, frames))

	r, err := NewReaderFrom(&buf)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, layers.LinkTypeEthernet, r.LinkType())
	assertFramesEqual(t, frames, readAll(t, r))
	assert.Equal(t, uint64(len(frames)), r.Frames())
}

func TestReader_PcapNg(t *testing.T) {
	frames := testFrames(t)
	var buf bytes.Buffer
	require.NoError(t, framegen.WritePcapNg(&buf, frames))

	r, err := NewReaderFrom(&buf)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, layers.LinkTypeEthernet, r.LinkType())
	assertFramesEqual(t, frames, readAll(t, r))
}

func TestReader_File(t *testing.T) {
	frames := testFrames(t)
	path := filepath.Join(t.TempDir(), "capture.pcap")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, framegen.WritePcap(f, frames))
	require.NoError(t, f.Close())

	r, err := NewReader(path)
	require.NoError(t, err)
	assertFramesEqual(t, frames, readAll(t, r))
	assert.NoError(t, r.Close())
}

func TestReader_TruncatedRecordEndsStream(t *testing.T) {
	frames := testFrames(t)
	var buf bytes.Buffer
	require.NoError(t, framegen.WritePcap(&buf, frames))
	data := buf.Bytes()[:buf.Len()-10]

	r, err := NewReaderFrom(bytes.NewReader(data))
	require.NoError(t, err)
	got := readAll(t, r)
	assert.Len(t, got, len(frames)-1)
}

func TestReader_InvalidInput(t *testing.T) {
	_, err := NewReaderFrom(bytes.NewReader([]byte("not a capture file at all, just text")))
	assert.Error(t, err)

	_, err = NewReaderFrom(bytes.NewReader(nil))
	assert.Error(t, err)

	_, err = NewReader(filepath.Join(t.TempDir(), "missing.pcap"))
	assert.Error(t, err)
}
