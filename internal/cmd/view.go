package cmd

import (
	"github.com/spf13/cobra"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/pathway/internal/pathway/engine"
	"github.com/kingrea/pathway/internal/tui"
)

func (a *app) newViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view [plan-file]",
		Short: "Browse saved plans in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			_, journal, err := openLogs(cfg)
			if err != nil {
				return err
			}
			opts := []tui.AppOption{tui.WithLogbook(journal)}
			if len(args) == 1 {
				opts = append(opts, tui.WithInitialPlan(args[0]))
			}
			// tea.NewProgram creates a new bubbletea application
			p := tea.NewProgram(
				tui.NewApp(engine.NewRepository(cfg.PlansDir()), opts...),
				tea.WithAltScreen(), // Use alternate screen buffer (like vim does)
				tea.WithContext(c.Context()),
			)
			_, err = p.Run()
			return err
		},
	}
}
