package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/pathway/internal/pathway"
	"github.com/kingrea/pathway/internal/pathway/engine"
)

// runFlags are the per-run overrides shared by plan and sweep.
var runFlags = map[string]string{
	"source":      "run.source",
	"target":      "run.targets",
	"pattern":     "run.ge_pattern",
	"term-system": "run.term_system",
	"ceiling":     "run.unit_ceiling",
	"min-units":   "run.min_total_units",
	"max-terms":   "run.max_terms",
	"match":       "policy.match",
}

func addRunFlags(c *cobra.Command) {
	c.Flags().StringP("source", "s", "", "source institution")
	c.Flags().StringSliceP("target", "t", nil, "target institution (repeatable)")
	c.Flags().StringP("pattern", "p", "", "GE pattern id")
	c.Flags().String("term-system", "", "quarter or semester")
	c.Flags().Float64("ceiling", 0, "unit ceiling per term")
	c.Flags().Float64("min-units", 0, "minimum total transferable units")
	c.Flags().Int("max-terms", 0, "safety ceiling on planned terms")
	c.Flags().String("match", "", "requirement-code fallback: exact, prefix, or fuzzy")
}

// bindFlags binds the running command's flags. Binding happens at execution
// time so sibling commands sharing a key do not shadow each other.
func (a *app) bindFlags(c *cobra.Command, flags map[string]string) error {
	for name, key := range flags {
		if flag := c.Flags().Lookup(name); flag != nil {
			if err := a.v.BindPFlag(key, flag); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *app) newPlanCommand() *cobra.Command {
	var (
		asJSON bool
		noSave bool
		strict bool
	)
	c := &cobra.Command{
		Use:   "plan",
		Short: "Plan one source, target set, and GE pattern",
		Long: `Plan schedules terms for the configured source institution until every
selected target's major preparation, the GE pattern, and the unit floor are
met, or until no further progress is possible.

Examples:
  # Plan with the project defaults
  pathway plan

  # Plan De Anza to UCSD and UCLA on a semester calendar
  pathway plan -s DEANZA -t UCSD -t UCLA --term-system semester

  # Print the plan as JSON without saving it
  pathway plan --json --no-save`,
		PreRunE: func(c *cobra.Command, _ []string) error {
			return a.bindFlags(c, runFlags)
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

			req := cfg.Request()
			if req.Source == "" || len(req.Targets) == 0 {
				return fmt.Errorf("plan: a source and at least one target are required")
			}
			ds, err := pathway.LoadDataset(cfg.DataPaths(req.Source))
			if err != nil {
				return err
			}
			opts, err := cfg.EngineOptions()
			if err != nil {
				return err
			}
			opts = append(opts, engine.WithLogger(logger), engine.WithObserver(journal))
			eng, err := engine.New(ds, opts...)
			if err != nil {
				return err
			}
			result, err := eng.Run(c.Context(), req)
			if err != nil {
				return err
			}

			path := ""
			if !noSave {
				if path, err = engine.NewRepository(cfg.PlansDir()).Save(result.Plan); err != nil {
					return fmt.Errorf("save plan: %w", err)
				}
			}
			if asJSON {
				enc := json.NewEncoder(c.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(result.Plan); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(c.OutOrStdout(), renderResult(result, path))
			}
			if strict && result.Status != engine.StatusComplete {
				return fmt.Errorf("plan %s: %s", result.Status, result.Detail)
			}
			return nil
		},
	}
	addRunFlags(c)
	c.Flags().BoolVar(&asJSON, "json", false, "print the plan as JSON")
	c.Flags().BoolVar(&noSave, "no-save", false, "do not write the plan file")
	c.Flags().BoolVar(&strict, "strict", false, "exit non-zero unless the plan completes")
	return c
}
