package manager

import (
	"PcapSpectra/internal/config"
	"PcapSpectra/internal/engine/aggregator"
	"PcapSpectra/internal/engine/summary"
	"PcapSpectra/internal/factory"
	"PcapSpectra/internal/model"
	_ "PcapSpectra/internal/writer" // Registers the summary writers
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

const progressEvery = 100000

// Manager drives one capture pass through the aggregation engine and hands
// the resulting summary to its writers.
type Manager struct {
	writers []factory.Writer
}

// NewManager creates a Manager with the writers enabled in cfg.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{writers: factory.Create(cfg)}
}

// NewManagerWithWriters creates a Manager with an explicit writer set.
func NewManagerWithWriters(writers ...factory.Writer) *Manager {
	return &Manager{writers: writers}
}

// Run reads src to the end, one frame at a time, exports the summary once and
// writes it with every writer. The summary is returned even when writers fail;
// their errors are joined into the returned error.
func (m *Manager) Run(ctx context.Context, name string, src model.Source) (*summary.Summary, error) {
	engine := aggregator.New()

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("capture pass interrupted after %d frames: %w", engine.Counters().Total, err)
		}
		frame, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read frame %d: %w", engine.Counters().Total+1, err)
		}
		engine.ObserveFrame(frame)
		if total := engine.Counters().Total; total%progressEvery == 0 {
			log.Printf("%d frames processed...", total)
		}
	}

	s := summary.Export(engine)
	s.RunID = uuid.NewString()
	s.Source = name
	s.GeneratedAt = time.Now().UTC()
	log.Printf("Capture pass complete: %d frames, %d TCP flows, %d UDP flows.", s.Counters.Total, s.Flows.TCP, s.Flows.UDP)

	return s, m.write(ctx, s)
}

// write fans the summary out to all writers concurrently. The summary is
// read-only from here on.
func (m *Manager) write(ctx context.Context, s *summary.Summary) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	wg.Add(len(m.writers))
	for _, w := range m.writers {
		go func(w factory.Writer) {
			defer wg.Done()
			if err := w.Write(ctx, s); err != nil {
				log.Printf("Error writing summary with writer %s: %v", w.Name(), err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("writer %s: %w", w.Name(), err))
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// Close releases writers that hold connections.
func (m *Manager) Close() {
	for _, w := range m.writers {
		if c, ok := w.(io.Closer); ok {
			if err := c.Close(); err != nil {
				log.Printf("Error closing writer %s: %v", w.Name(), err)
			}
		}
	}
}
