package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/pathway/internal/pathway"
	"github.com/kingrea/pathway/internal/pathway/engine"
	"github.com/kingrea/pathway/internal/sweep"
)

func (a *app) newSweepCommand() *cobra.Command {
	var (
		sources  []string
		patterns []string
		noSave   bool
	)
	c := &cobra.Command{
		Use:   "sweep",
		Short: "Plan every configured source, target set, and GE pattern",
		Long: `Sweep plans each combination listed under sweep: in the project config
concurrently. Missing lists fall back to the single run: settings.

Examples:
  # Sweep the configured combinations
  pathway sweep

  # Sweep two sources against the configured targets with 8 workers
  pathway sweep --sources DEANZA,FOOTHILL --parallelism 8`,
		PreRunE: func(c *cobra.Command, _ []string) error {
			return a.bindFlags(c, map[string]string{
				"term-system": "run.term_system",
				"ceiling":     "run.unit_ceiling",
				"min-units":   "run.min_total_units",
				"max-terms":   "run.max_terms",
				"match":       "policy.match",
				"parallelism": "sweep.parallelism",
			})
		},
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			logger, journal, err := openLogs(cfg)
			if err != nil {
				return err
			}
			defer logger.Close()

			sw := cfg.Project.Sweep
			spec := sweep.Spec{
				Sources:     firstNonEmpty(splitList(sources), sw.Sources, oneOrNone(cfg.Project.Run.Source)),
				TargetSets:  sw.TargetSets,
				Patterns:    firstNonEmpty(splitList(patterns), sw.Patterns, oneOrNone(cfg.Project.Run.Pattern)),
				Settings:    cfg.RunSettings(),
				Parallelism: sw.Parallelism,
			}
			if len(spec.TargetSets) == 0 && len(cfg.Project.Run.Targets) > 0 {
				spec.TargetSets = [][]string{cfg.Project.Run.Targets}
			}

			opts, err := cfg.EngineOptions()
			if err != nil {
				return err
			}
			opts = append(opts, engine.WithObserver(journal))
			sweepOpts := []sweep.Option{sweep.WithEngineOptions(opts...), sweep.WithLogger(logger)}
			if !noSave {
				sweepOpts = append(sweepOpts, sweep.WithStore(engine.NewRepository(cfg.PlansDir())))
			}
			load := func(source string) (*pathway.Dataset, error) {
				return pathway.LoadDataset(cfg.DataPaths(source))
			}
			outcomes, err := sweep.New(load, sweepOpts...).Run(c.Context(), spec)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.OutOrStdout(), renderSweep(outcomes))
			return nil
		},
	}
	c.Flags().StringSliceVar(&sources, "sources", nil, "source institutions (default from config)")
	c.Flags().StringSliceVar(&patterns, "patterns", nil, "GE pattern ids (default from config)")
	c.Flags().String("term-system", "", "quarter or semester")
	c.Flags().Float64("ceiling", 0, "unit ceiling per term")
	c.Flags().Float64("min-units", 0, "minimum total transferable units")
	c.Flags().Int("max-terms", 0, "safety ceiling on planned terms")
	c.Flags().String("match", "", "requirement-code fallback: exact, prefix, or fuzzy")
	c.Flags().Int("parallelism", 0, "concurrent runs")
	c.Flags().BoolVar(&noSave, "no-save", false, "do not write plan files")
	return c
}

func firstNonEmpty(lists ...[]string) []string {
	for _, l := range lists {
		if len(l) > 0 {
			return l
		}
	}
	return nil
}

func oneOrNone(value string) []string {
	if value == "" {
		return nil
	}
	return []string{value}
}
