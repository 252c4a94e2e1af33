package sim

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/san-kum/softsim/internal/logging"
	"golang.org/x/sync/errgroup"
)

// SceneFactory builds an independent scene for one ensemble member.
type SceneFactory func(seed int64) (*Scene, error)

// MetricFactory returns fresh metric instances for one ensemble member.
type MetricFactory func() []Metric

// Ensemble runs one scene per seed concurrently. Scenes share nothing; each
// is stepped on its own goroutine.
type Ensemble struct {
	newScene   SceneFactory
	newMetrics MetricFactory
	numRuns    int
	seedStart  int64
	limit      int
	log        *log.Logger
}

func NewEnsemble(newScene SceneFactory, newMetrics MetricFactory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{
		newScene:   newScene,
		newMetrics: newMetrics,
		numRuns:    numRuns,
		seedStart:  seedStart,
		log:        logging.Discard(),
	}
}

// SetLimit caps the number of scenes running at once. Zero means no cap.
func (e *Ensemble) SetLimit(n int) { e.limit = n }

func (e *Ensemble) SetLogger(l *log.Logger) { e.log = l }

// Run returns one result per seed in seed order. The first failure cancels
// the remaining runs.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	if e.numRuns <= 0 {
		return nil, fmt.Errorf("ensemble needs at least one run, got %d", e.numRuns)
	}
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for i := 0; i < e.numRuns; i++ {
		idx := i
		g.Go(func() error {
			seed := e.seedStart + int64(idx)
			scene, err := e.newScene(seed)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}

			cfgCopy := cfg
			cfgCopy.Seed = seed

			s := New(scene, e.log.With("seed", seed))
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					s.AddMetric(m)
				}
			}

			res, err := s.Run(ctx, cfgCopy)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			results[idx] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
