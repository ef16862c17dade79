package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kingrea/pathway/internal/config"
	"github.com/kingrea/pathway/internal/logbook"
	"github.com/kingrea/pathway/internal/logging"
)

// EnvPrefix namespaces environment overrides, e.g. PATHWAY_RUN_SOURCE for
// run.source.
const EnvPrefix = "PATHWAY"

// app carries the per-invocation state shared by sub-commands.
type app struct {
	v *viper.Viper
}

// NewRootCommand builds the command tree with its own viper instance.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}
	root := &cobra.Command{
		Use:   "pathway",
		Short: "Term-by-term transfer course planner",
		Long: `Pathway plans the courses a student takes at a two-year college,
term by term, until the major preparation of every selected university,
a general-education pattern, and the transferable-unit floor are met.`,
		SilenceUsage: true,
	}
	a.initConfig()

	root.PersistentFlags().StringP("project", "C", "", "project directory (default is the working directory)")
	root.PersistentFlags().String("config", "", "config file (default is <project>/.pathway/config.yaml)")
	root.PersistentFlags().String("log-level", "", "log level (debug/info/warn/error)")
	_ = a.v.BindPFlag("project", root.PersistentFlags().Lookup("project"))
	_ = a.v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = a.v.BindPFlag("logging.level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(
		a.newInitCommand(),
		a.newPlanCommand(),
		a.newSweepCommand(),
		a.newViewCommand(),
		a.newValidateCommand(),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

func (a *app) initConfig() {
	a.v.SetEnvPrefix(EnvPrefix)
	// Replace dots with underscores for nested keys in env vars
	// e.g., PATHWAY_RUN_GE_PATTERN for run.ge_pattern
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()
}

func (a *app) projectDir() (string, error) {
	if dir := strings.TrimSpace(a.v.GetString("project")); dir != "" {
		return dir, nil
	}
	return os.Getwd()
}

// loadConfig reads the project config and layers flag and environment
// overrides on top.
func (a *app) loadConfig() (*config.Config, error) {
	dir, err := a.projectDir()
	if err != nil {
		return nil, err
	}
	var cfg *config.Config
	if path := strings.TrimSpace(a.v.GetString("config")); path != "" {
		cfg, err = config.LoadFile(dir, path)
	} else {
		cfg, err = config.Load(dir)
	}
	if err != nil {
		return nil, err
	}

	p := &cfg.Project
	a.overrideString("run.source", &p.Run.Source)
	a.overrideString("run.ge_pattern", &p.Run.Pattern)
	a.overrideString("run.term_system", &p.Run.TermSystem)
	a.overrideString("policy.match", &p.Policy.Match)
	a.overrideString("logging.level", &p.Logging.Level)
	if a.v.IsSet("run.targets") {
		p.Run.Targets = splitList(a.v.GetStringSlice("run.targets"))
	}
	if a.v.IsSet("run.unit_ceiling") {
		p.Run.UnitCeiling = a.v.GetFloat64("run.unit_ceiling")
	}
	if a.v.IsSet("run.min_total_units") {
		p.Run.MinTotalUnits = a.v.GetFloat64("run.min_total_units")
	}
	if a.v.IsSet("run.max_terms") {
		p.Run.MaxTerms = a.v.GetInt("run.max_terms")
	}
	if a.v.IsSet("sweep.parallelism") {
		p.Sweep.Parallelism = a.v.GetInt("sweep.parallelism")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) overrideString(key string, dst *string) {
	if a.v.IsSet(key) {
		if value := strings.TrimSpace(a.v.GetString(key)); value != "" {
			*dst = value
		}
	}
}

// openLogs opens the structured log and the plan journal.
func openLogs(cfg *config.Config) (*logging.Logger, *logbook.Logbook, error) {
	logger, err := logging.New(cfg.LogsDir(), cfg.Project.Logging.Level)
	if err != nil {
		return nil, nil, err
	}
	journal, err := logbook.New(filepath.Join(cfg.LogsDir(), logbook.FileName))
	if err != nil {
		_ = logger.Close()
		return nil, nil, fmt.Errorf("open journal: %w", err)
	}
	return logger, journal, nil
}

// splitList accepts repeated flags as well as comma-separated env values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
