package writer

import (
	"PcapSpectra/internal/config"
	"PcapSpectra/internal/engine/summary"
	"PcapSpectra/internal/factory"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

const createPointsTableStatement = `
CREATE TABLE IF NOT EXISTS traffic_distribution_points (
    RunID       String,
    GeneratedAt DateTime64(3),
    Source      String,
    Series      LowCardinality(String),
    Transport   LowCardinality(String),
    Rank        UInt32,
    Value       Float64,
    Cumulative  Float64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(GeneratedAt)
ORDER BY (RunID, Series, Transport, Rank);
`

const createMixTableStatement = `
CREATE TABLE IF NOT EXISTS traffic_protocol_mix (
    RunID       String,
    GeneratedAt DateTime64(3),
    Source      String,
    Label       LowCardinality(String),
    Frames      UInt64,
    Fraction    Float64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(GeneratedAt)
ORDER BY (RunID, Label);
`

// pointRow is one row of traffic_distribution_points.
type pointRow struct {
	RunID       string
	GeneratedAt time.Time
	Source      string
	Series      string
	Transport   string
	Rank        uint32
	Value       float64
	Cumulative  float64
}

// mixRow is one row of traffic_protocol_mix.
type mixRow struct {
	RunID       string
	GeneratedAt time.Time
	Source      string
	Label       string
	Frames      uint64
	Fraction    float64
}

// ClickHouseWriter stores the summary series in ClickHouse.
type ClickHouseWriter struct {
	conn driver.Conn
}

// NewClickHouseWriter connects to ClickHouse and makes sure both tables exist.
func NewClickHouseWriter(cfg config.ClickHouseConfig) (factory.Writer, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	for _, stmt := range []string{createPointsTableStatement, createMixTableStatement} {
		if err := conn.Exec(context.Background(), stmt); err != nil {
			return nil, fmt.Errorf("failed to create table: %w", err)
		}
	}
	log.Println("Successfully connected to ClickHouse and ensured tables exist.")

	return &ClickHouseWriter{conn: conn}, nil
}

func connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

func (w *ClickHouseWriter) Name() string {
	return "clickhouse"
}

// Write inserts every distribution point and the protocol mix of the run.
func (w *ClickHouseWriter) Write(ctx context.Context, s *summary.Summary) error {
	points := pointRows(s)
	if len(points) > 0 {
		batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO traffic_distribution_points")
		if err != nil {
			return fmt.Errorf("failed to prepare batch: %w", err)
		}
		for _, r := range points {
			if err := batch.Append(r.RunID, r.GeneratedAt, r.Source, r.Series, r.Transport, r.Rank, r.Value, r.Cumulative); err != nil {
				return fmt.Errorf("failed to append point to batch: %w", err)
			}
		}
		if err := batch.Send(); err != nil {
			return fmt.Errorf("failed to send batch: %w", err)
		}
	}

	mix := mixRows(s)
	if len(mix) > 0 {
		batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO traffic_protocol_mix")
		if err != nil {
			return fmt.Errorf("failed to prepare batch: %w", err)
		}
		for _, r := range mix {
			if err := batch.Append(r.RunID, r.GeneratedAt, r.Source, r.Label, r.Frames, r.Fraction); err != nil {
				return fmt.Errorf("failed to append share to batch: %w", err)
			}
		}
		if err := batch.Send(); err != nil {
			return fmt.Errorf("failed to send batch: %w", err)
		}
	}

	log.Printf("Wrote %d points and %d shares to ClickHouse for run '%s'", len(points), len(mix), s.RunID)
	return nil
}

func pointRows(s *summary.Summary) []pointRow {
	var rows []pointRow
	for _, series := range seriesOf(s) {
		d := series.Distribution
		if d == nil {
			continue
		}
		for i := range d.Values {
			rows = append(rows, pointRow{
				RunID:       s.RunID,
				GeneratedAt: s.GeneratedAt,
				Source:      s.Source,
				Series:      series.Name,
				Transport:   series.Transport,
				Rank:        uint32(i),
				Value:       d.Values[i],
				Cumulative:  d.Cumulative[i],
			})
		}
	}
	return rows
}

func mixRows(s *summary.Summary) []mixRow {
	rows := make([]mixRow, 0, len(s.ProtocolMix))
	for _, share := range s.ProtocolMix {
		rows = append(rows, mixRow{
			RunID:       s.RunID,
			GeneratedAt: s.GeneratedAt,
			Source:      s.Source,
			Label:       share.Label,
			Frames:      share.Frames,
			Fraction:    share.Fraction,
		})
	}
	return rows
}

// Close closes the ClickHouse connection.
func (w *ClickHouseWriter) Close() error {
	return w.conn.Close()
}
