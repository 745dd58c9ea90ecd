package writer

import (
	"PcapSpectra/internal/config"
	"PcapSpectra/internal/engine/summary"
	"PcapSpectra/internal/factory"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const runIDHeader = "Run-Id"

// NATSWriter publishes the summary to a NATS subject as a protobuf Struct.
type NATSWriter struct {
	nc      *nats.Conn
	subject string
}

// NewNATSWriter connects to the NATS server named in cfg.
func NewNATSWriter(cfg config.NATSConfig) (factory.Writer, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", cfg.URL)
	return &NATSWriter{nc: nc, subject: cfg.Subject}, nil
}

func (w *NATSWriter) Name() string {
	return "nats"
}

// Write serializes the summary and publishes it, waiting for the server to
// acknowledge the flush.
func (w *NATSWriter) Write(ctx context.Context, s *summary.Summary) error {
	msg, err := summaryMsg(w.subject, s)
	if err != nil {
		return err
	}
	if err := w.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish summary: %w", err)
	}
	if err := w.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush nats connection: %w", err)
	}
	log.Printf("Published summary of run '%s' to '%s'", s.RunID, w.subject)
	return nil
}

// summaryMsg encodes the summary as a binary protobuf Struct.
func summaryMsg(subject string, s *summary.Summary) (*nats.Msg, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode summary: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to encode summary: %w", err)
	}
	pb, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to convert summary to protobuf: %w", err)
	}
	data, err := proto.Marshal(pb)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}

	msg := nats.NewMsg(subject)
	msg.Header.Set(runIDHeader, s.RunID)
	msg.Data = data
	return msg, nil
}

// Close drains and closes the NATS connection.
func (w *NATSWriter) Close() error {
	if w.nc == nil {
		return nil
	}
	if err := w.nc.Drain(); err != nil {
		return err
	}
	log.Println("NATS connection drained and closed.")
	return nil
}
