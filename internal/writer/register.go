package writer

import (
	"PcapSpectra/internal/config"
	"PcapSpectra/internal/factory"
)

// --- Factory Registration ---

func init() {
	factory.RegisterWriter("gob", func(def config.WriterDef) (factory.Writer, error) {
		return NewGobWriter(def.Gob), nil
	})
	factory.RegisterWriter("text", func(def config.WriterDef) (factory.Writer, error) {
		return NewTextWriter(def.Text), nil
	})
	factory.RegisterWriter("chart", func(def config.WriterDef) (factory.Writer, error) {
		return NewChartWriter(def.Chart), nil
	})
	factory.RegisterWriter("clickhouse", func(def config.WriterDef) (factory.Writer, error) {
		return NewClickHouseWriter(def.ClickHouse)
	})
	factory.RegisterWriter("nats", func(def config.WriterDef) (factory.Writer, error) {
		return NewNATSWriter(def.NATS)
	})
}
