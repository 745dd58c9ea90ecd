package factory

import (
	"PcapSpectra/internal/config"
	"PcapSpectra/internal/engine/summary"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type nopWriter struct{ name string }

func (w nopWriter) Name() string                                  { return w.name }
func (w nopWriter) Write(context.Context, *summary.Summary) error { return nil }

func TestCreate(t *testing.T) {
	RegisterWriter("test-ok", func(def config.WriterDef) (Writer, error) {
		return nopWriter{name: def.Type}, nil
	})
	RegisterWriter("test-broken", func(config.WriterDef) (Writer, error) {
		return nil, errors.New("cannot connect")
	})

	writers := Create(&config.Config{Writers: []config.WriterDef{
		{Type: "test-ok", Enabled: true},
		{Type: "test-ok", Enabled: false},
		{Type: "test-broken", Enabled: true},
		{Type: "test-missing", Enabled: true},
	}})

	assert.Equal(t, []Writer{nopWriter{name: "test-ok"}}, writers)
}

func TestRegisterWriter_Duplicate(t *testing.T) {
	RegisterWriter("test-dup", func(config.WriterDef) (Writer, error) { return nopWriter{}, nil })
	assert.Panics(t, func() {
		RegisterWriter("test-dup", func(config.WriterDef) (Writer, error) { return nopWriter{}, nil })
	})
}
