package pcap

import (
	"PcapSpectra/internal/model"
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// pcapng files start with a Section Header Block.
var pcapngMagic = []byte{0x0a, 0x0d, 0x0d, 0x0a}

type packetDataReader interface {
	gopacket.PacketDataSource
	LinkType() layers.LinkType
}

// Reader reads frames from a pcap or pcapng capture. It implements model.Source.
type Reader struct {
	closer io.Closer
	source packetDataReader
	frames uint64
}

// NewReader opens the capture file at filePath.
func NewReader(filePath string) (*Reader, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	r, err := NewReaderFrom(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read capture header of '%s': %w", filePath, err)
	}
	r.closer = f
	return r, nil
}

// NewReaderFrom reads a capture from an arbitrary stream. The format is
// detected from the leading magic number.
func NewReaderFrom(in io.Reader) (*Reader, error) {
	br := bufio.NewReader(in)
	magic, err := br.Peek(len(pcapngMagic))
	if err != nil {
		return nil, fmt.Errorf("failed to read magic number: %w", err)
	}

	var source packetDataReader
	if bytes.Equal(magic, pcapngMagic) {
		source, err = pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
	} else {
		source, err = pcapgo.NewReader(br)
	}
	if err != nil {
		return nil, err
	}
	return &Reader{source: source}, nil
}

// LinkType returns the link type declared by the capture.
func (r *Reader) LinkType() layers.LinkType {
	return r.source.LinkType()
}

// Next returns the next frame, or io.EOF at the end of the capture.
func (r *Reader) Next() (model.Frame, error) {
	data, ci, err := r.source.ReadPacketData()
	if err != nil {
		if err == io.ErrUnexpectedEOF {
			// A capture cut off mid-record ends the stream like a clean EOF.
			return model.Frame{}, io.EOF
		}
		return model.Frame{}, err
	}
	r.frames++
	return model.Frame{Timestamp: ci.Timestamp, Data: data}, nil
}

// Frames returns the number of frames read so far.
func (r *Reader) Frames() uint64 {
	return r.frames
}

// Close closes the underlying file, if the reader opened one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
