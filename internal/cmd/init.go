package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/pathway/internal/config"
)

func (a *app) newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create .pathway/ with a default config",
		RunE: func(c *cobra.Command, _ []string) error {
			dir, err := a.projectDir()
			if err != nil {
				return err
			}
			if err := config.InitPathwayDir(dir); err != nil {
				return fmt.Errorf("init: %w", err)
			}
			cfg, err := config.Load(dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "initialized %s\n", cfg.ProjectConfigPath())
			return nil
		},
	}
}
