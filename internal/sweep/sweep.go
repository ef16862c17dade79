// Package sweep plans every combination of source, target set, and GE
// pattern in parallel. Each combination is an independent engine run with
// its own state; engines are shared per source.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kingrea/pathway/internal/logging"
	"github.com/kingrea/pathway/internal/pathway"
	"github.com/kingrea/pathway/internal/pathway/engine"
)

// DefaultParallelism bounds concurrent runs when the spec leaves it unset.
const DefaultParallelism = 4

// Loader returns the dataset for one source institution.
type Loader func(source string) (*pathway.Dataset, error)

// Spec lists the combinations to plan.
type Spec struct {
	Sources     []string
	TargetSets  [][]string
	Patterns    []string
	Settings    engine.Settings
	Parallelism int
}

// Combination is one planned source/targets/pattern triple.
type Combination struct {
	Source  string
	Targets []string
	Pattern string
}

func (c Combination) key() string {
	return strings.ToLower(c.Source + "\x00" + strings.Join(c.Targets, "\x00") + "\x00" + c.Pattern)
}

// Outcome is the result of one combination. Err is set when the run could
// not start (for example an unknown target for that source).
type Outcome struct {
	Combination
	Result engine.Result
	Path   string
	Err    error
}

// Summary counts outcomes by terminal status.
type Summary struct {
	Total    int
	Complete int
	Stalled  int
	Aborted  int
	Failed   int
}

// Sweeper runs a Spec.
type Sweeper struct {
	load       Loader
	engineOpts []engine.Option
	store      engine.PlanStore
	logger     *logging.Logger
}

// Option customizes a Sweeper.
type Option func(*Sweeper)

// WithEngineOptions forwards options to every engine the sweep builds.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(s *Sweeper) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

// WithStore saves every finished plan.
func WithStore(store engine.PlanStore) Option {
	return func(s *Sweeper) {
		s.store = store
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Sweeper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a sweeper that loads datasets with load.
func New(load Loader, opts ...Option) *Sweeper {
	s := &Sweeper{load: load, logger: logging.NopLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Combinations expands the spec in source, target-set, pattern order,
// dropping duplicates.
func (spec Spec) Combinations() []Combination {
	var out []Combination
	seen := map[string]struct{}{}
	for _, source := range spec.Sources {
		for _, targets := range spec.TargetSets {
			for _, pattern := range spec.Patterns {
				c := Combination{Source: source, Targets: append([]string(nil), targets...), Pattern: pattern}
				if _, dup := seen[c.key()]; dup {
					continue
				}
				seen[c.key()] = struct{}{}
				out = append(out, c)
			}
		}
	}
	return out
}

// Run plans every combination. Outcomes are returned in Combinations order.
// Dataset load failures abort the sweep before any run starts; a failing
// combination only marks its own outcome. Cancellation stops pending runs
// and returns the context error.
func (s *Sweeper) Run(ctx context.Context, spec Spec) ([]Outcome, error) {
	combos := spec.Combinations()
	if len(combos) == 0 {
		return nil, fmt.Errorf("sweep: nothing to plan")
	}
	engines, err := s.engines(combos)
	if err != nil {
		return nil, err
	}

	limit := spec.Parallelism
	if limit <= 0 {
		limit = DefaultParallelism
	}
	outcomes := make([]Outcome, len(combos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, combo := range combos {
		i, combo := i, combo
		g.Go(func() error {
			out := Outcome{Combination: combo}
			req := engine.Request{
				Source:   combo.Source,
				Targets:  combo.Targets,
				Pattern:  combo.Pattern,
				Settings: spec.Settings,
			}
			result, err := engines[strings.ToLower(combo.Source)].Run(gctx, req)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				out.Err = err
				s.logger.Warn("sweep combination failed", "source", combo.Source, "targets", strings.Join(combo.Targets, ","), "ge_pattern", combo.Pattern, "error", err.Error())
				outcomes[i] = out
				return nil
			}
			out.Result = result
			if s.store != nil {
				path, err := s.store.Save(result.Plan)
				if err != nil {
					return fmt.Errorf("sweep: save plan %s: %w", result.Plan.Label(), err)
				}
				out.Path = path
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

func (s *Sweeper) engines(combos []Combination) (map[string]*engine.Engine, error) {
	engines := map[string]*engine.Engine{}
	for _, combo := range combos {
		key := strings.ToLower(combo.Source)
		if _, ok := engines[key]; ok {
			continue
		}
		ds, err := s.load(combo.Source)
		if err != nil {
			return nil, fmt.Errorf("sweep: load %s: %w", combo.Source, err)
		}
		opts := append([]engine.Option{engine.WithLogger(s.logger)}, s.engineOpts...)
		eng, err := engine.New(ds, opts...)
		if err != nil {
			return nil, fmt.Errorf("sweep: %s: %w", combo.Source, err)
		}
		engines[key] = eng
	}
	return engines, nil
}

// Summarize tallies outcomes.
func Summarize(outcomes []Outcome) Summary {
	sum := Summary{Total: len(outcomes)}
	for _, out := range outcomes {
		switch {
		case out.Err != nil:
			sum.Failed++
		case out.Result.Status == engine.StatusComplete:
			sum.Complete++
		case out.Result.Status == engine.StatusSafetyAborted:
			sum.Aborted++
		default:
			sum.Stalled++
		}
	}
	return sum
}
