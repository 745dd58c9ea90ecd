package factory

import (
	"PcapSpectra/internal/config"
	"PcapSpectra/internal/engine/summary"
	"context"
	"fmt"
	"log"
)

// Writer persists or publishes the summary of a finished run.
type Writer interface {
	Name() string
	Write(ctx context.Context, s *summary.Summary) error
}

// WriterFactory creates a writer from its config definition.
type WriterFactory func(def config.WriterDef) (Writer, error)

// registry holds the mapping of writer types to their factory functions.
var registry = make(map[string]WriterFactory)

// RegisterWriter registers a new writer type with its factory function.
func RegisterWriter(name string, factory WriterFactory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("writer type '%s' already registered", name))
	}
	registry[name] = factory
}

// Create builds every enabled writer in the config. Unknown types and writers
// that fail to initialise are skipped with a warning.
func Create(cfg *config.Config) []Writer {
	var writers []Writer

	for _, def := range cfg.Writers {
		if !def.Enabled {
			continue
		}
		factory, ok := registry[def.Type]
		if !ok {
			log.Printf("Warning: unknown writer type '%s' in config, skipping.", def.Type)
			continue
		}
		writer, err := factory(def)
		if err != nil {
			log.Printf("Warning: failed to create writer type '%s': %v, skipping.", def.Type, err)
			continue
		}
		log.Printf("Created writer '%s'.", writer.Name())
		writers = append(writers, writer)
	}

	return writers
}
