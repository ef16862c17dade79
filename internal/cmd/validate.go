package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/pathway/internal/pathway"
)

func (a *app) newValidateCommand() *cobra.Command {
	var sources []string
	c := &cobra.Command{
		Use:   "validate",
		Short: "Load the dataset and report ingestion problems",
		Long: `Validate loads the catalog, articulation, requirements, and GE pattern
files for each source and prints what was read. Recoverable problems such as
malformed prerequisite expressions are listed; missing or undecodable files
fail the command.`,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			list := firstNonEmpty(splitList(sources), cfg.Project.Sweep.Sources, oneOrNone(cfg.Project.Run.Source))
			if len(list) == 0 {
				return fmt.Errorf("validate: no source configured")
			}
			out := c.OutOrStdout()
			for _, source := range list {
				ds, err := pathway.LoadDataset(cfg.DataPaths(source))
				if err != nil {
					return fmt.Errorf("validate %s: %w", source, err)
				}
				art, ok := ds.Articulation.Source(source)
				targets := 0
				if ok {
					targets = len(art.TargetNames())
				}
				fmt.Fprintf(out, "%s: %d courses, %d articulated targets, %d requirement targets, %d GE patterns\n",
					titleStyle.Render(source), ds.Catalog.Len(), targets, len(ds.Requirements.Names()), len(ds.Patterns.IDs()))
				if !ok {
					fmt.Fprintf(out, "  %s\n", badStyle.Render("no articulation for "+source))
				}
				for _, diag := range ds.Diagnostics {
					fmt.Fprintf(out, "  %s\n", dimStyle.Render(diag.Error()))
				}
			}
			return nil
		},
	}
	c.Flags().StringSliceVar(&sources, "sources", nil, "source institutions (default from config)")
	return c
}
