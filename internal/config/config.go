// internal/config/config.go
//
// This package handles configuration and the .pathway directory structure.
// Every project that plans pathways gets a .pathway/ folder in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/pathway/internal/logging"
	"github.com/kingrea/pathway/internal/pathway"
	"github.com/kingrea/pathway/internal/pathway/engine"
	"github.com/kingrea/pathway/internal/pathway/resolver"
)

const (
	// PathwayDir is the name of the directory we create in each project
	PathwayDir = ".pathway"

	// SourcePlaceholder is replaced by the source institution in data paths.
	SourcePlaceholder = "{source}"

	TermSystemQuarter  = "quarter"
	TermSystemSemester = "semester"

	defaultTermSystem = TermSystemQuarter
	defaultPattern    = "IGETC"
	defaultMatch      = "exact"
)

const defaultProjectConfigYAML = `# pathway project configuration
version: 1

# Input files. YAML or JSON. {source} expands to the source institution.
data:
  catalog: data/{source}/catalog.yaml
  articulation: data/articulation.yaml
  requirements: data/requirements.yaml
  ge_patterns: data/ge_patterns.yaml

run:
  source: ""
  targets: []
  ge_pattern: IGETC
  # quarter: 20 units/term, 90 unit floor, 6 terms in two years
  # semester: 18 units/term, 60 unit floor, 4 terms in two years
  term_system: quarter

policy:
  # exact, prefix, or fuzzy fallback for requirement codes
  match: exact
  # true offers a block for every code a group still needs each term
  deficit_blocks: false
  electives:
    pool: 50

sweep:
  parallelism: 4

logging:
  level: INFO
`

// TermPreset holds the numeric defaults of a term system.
type TermPreset struct {
	Label            string
	UnitCeiling      float64
	MinTotalUnits    float64
	TermsForTwoYears int
	UnitScale        float64
}

var presets = map[string]TermPreset{
	TermSystemQuarter:  {Label: "Quarter", UnitCeiling: 20, MinTotalUnits: 90, TermsForTwoYears: 6, UnitScale: 0.67},
	TermSystemSemester: {Label: "Semester", UnitCeiling: 18, MinTotalUnits: 60, TermsForTwoYears: 4, UnitScale: 1.0},
}

// Preset returns the defaults of a term system.
func Preset(system string) (TermPreset, bool) {
	p, ok := presets[strings.ToLower(strings.TrimSpace(system))]
	return p, ok
}

// DataConfig locates the dataset files.
type DataConfig struct {
	Catalog      string `yaml:"catalog"`
	Articulation string `yaml:"articulation"`
	Requirements string `yaml:"requirements"`
	GEPatterns   string `yaml:"ge_patterns"`
}

// RunConfig captures the per-run constraints. Zero numeric fields take the
// term-system preset.
type RunConfig struct {
	Source           string   `yaml:"source"`
	Targets          []string `yaml:"targets"`
	Pattern          string   `yaml:"ge_pattern"`
	TermSystem       string   `yaml:"term_system"`
	UnitCeiling      float64  `yaml:"unit_ceiling,omitempty"`
	MinTotalUnits    float64  `yaml:"min_total_units,omitempty"`
	MaxTerms         int      `yaml:"max_terms,omitempty"`
	TermsForTwoYears int      `yaml:"terms_for_two_years,omitempty"`
	UnitScale        float64  `yaml:"unit_scale,omitempty"`
	PlaceholderUnits float64  `yaml:"placeholder_units,omitempty"`
}

// ElectiveConfig shapes the elective filler allow-list.
type ElectiveConfig struct {
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
	Pool    int      `yaml:"pool,omitempty"`
}

// PolicyConfig selects the swappable heuristics.
type PolicyConfig struct {
	Match          string         `yaml:"match"`
	MatchMaxSuffix int            `yaml:"match_max_suffix,omitempty"`
	MatchMinScore  int            `yaml:"match_min_score,omitempty"`
	MaxUnlockers   int            `yaml:"max_unlockers,omitempty"`
	CacheSize      int            `yaml:"cache_size,omitempty"`
	DeficitBlocks  bool           `yaml:"deficit_blocks,omitempty"`
	Electives      ElectiveConfig `yaml:"electives"`
}

// SweepConfig lists the combinations a batch sweep plans.
type SweepConfig struct {
	Sources     []string   `yaml:"sources,omitempty"`
	TargetSets  [][]string `yaml:"target_sets,omitempty"`
	Patterns    []string   `yaml:"ge_patterns,omitempty"`
	Parallelism int        `yaml:"parallelism,omitempty"`
}

// LoggingConfig controls the structured log and the plan journal.
type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir,omitempty"`
}

// ProjectConfig models .pathway/config.yaml.
type ProjectConfig struct {
	Version int           `yaml:"version"`
	Data    DataConfig    `yaml:"data"`
	Run     RunConfig     `yaml:"run"`
	Policy  PolicyConfig  `yaml:"policy"`
	Sweep   SweepConfig   `yaml:"sweep"`
	Output  string        `yaml:"output,omitempty"`
	Logging LoggingConfig `yaml:"logging"`
}

// Config holds the runtime configuration for a project.
type Config struct {
	// ProjectDir is the directory relative paths resolve against
	ProjectDir string

	// PathwayProjectDir is ProjectDir/.pathway
	PathwayProjectDir string

	Project ProjectConfig
}

// InitPathwayDir creates the .pathway directory structure in the given
// project directory.
//
// Structure created:
// .pathway/
// ├── config.yaml
// ├── logs/      <- structured log and plan journal
// └── plans/     <- exported plan JSON
func InitPathwayDir(projectDir string) error {
	root := filepath.Join(projectDir, PathwayDir)
	for _, dir := range []string{
		filepath.Join(root, "logs"),
		filepath.Join(root, "plans"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureProjectConfig(filepath.Join(root, "config.yaml"))
}

// Load reads .pathway/config.yaml under projectDir. A missing file yields the
// defaults.
func Load(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:        projectDir,
		PathwayProjectDir: filepath.Join(projectDir, PathwayDir),
		Project:           defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(cfg.ProjectConfigPath()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads an explicit config file; relative paths inside it resolve
// against projectDir.
func LoadFile(projectDir, path string) (*Config, error) {
	cfg := &Config{
		ProjectDir:        projectDir,
		PathwayProjectDir: filepath.Join(projectDir, PathwayDir),
		Project:           defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.PathwayProjectDir, "config.yaml")
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	if c.Project.Logging.Dir != "" {
		return c.Project.Logging.Dir
	}
	return filepath.Join(c.PathwayProjectDir, "logs")
}

// PlansDir returns where exported plans are written
func (c *Config) PlansDir() string {
	if c.Project.Output != "" {
		return c.Project.Output
	}
	return filepath.Join(c.PathwayProjectDir, "plans")
}

// DataPaths expands the dataset locations for one source institution.
func (c *Config) DataPaths(source string) pathway.DataPaths {
	expand := func(path string) string {
		return strings.ReplaceAll(path, SourcePlaceholder, sourceSlug(source))
	}
	d := c.Project.Data
	return pathway.DataPaths{
		Catalog:      expand(d.Catalog),
		Articulation: expand(d.Articulation),
		Requirements: expand(d.Requirements),
		GEPatterns:   expand(d.GEPatterns),
	}
}

// RunSettings resolves the run constraints against the term-system preset.
func (c *Config) RunSettings() engine.Settings {
	run := c.Project.Run
	preset, _ := Preset(run.TermSystem)
	s := engine.Settings{
		UnitCeiling:      pick(run.UnitCeiling, preset.UnitCeiling),
		MinTotalUnits:    pick(run.MinTotalUnits, preset.MinTotalUnits),
		MaxTerms:         run.MaxTerms,
		TermsForTwoYears: run.TermsForTwoYears,
		UnitScale:        pick(run.UnitScale, preset.UnitScale),
		PlaceholderUnits: run.PlaceholderUnits,
		MaxUnlockers:     c.Project.Policy.MaxUnlockers,
		TermLabel:        preset.Label,
	}
	if s.TermsForTwoYears == 0 {
		s.TermsForTwoYears = preset.TermsForTwoYears
	}
	return s
}

// Request builds the engine request for the configured run.
func (c *Config) Request() engine.Request {
	run := c.Project.Run
	return engine.Request{
		Source:   run.Source,
		Targets:  append([]string(nil), run.Targets...),
		Pattern:  run.Pattern,
		Settings: c.RunSettings(),
	}
}

// Matcher returns the configured requirement-code fallback policy.
func (c *Config) Matcher() resolver.Matcher {
	p := c.Project.Policy
	return resolver.MatcherFor(p.Match, p.MatchMaxSuffix, p.MatchMinScore)
}

// Electives compiles the elective allow-list.
func (c *Config) Electives() (*engine.GlobElectives, error) {
	e := c.Project.Policy.Electives
	return engine.NewGlobElectives(e.Include, e.Exclude, e.Pool)
}

// EngineOptions assembles engine options from the policy section.
func (c *Config) EngineOptions() ([]engine.Option, error) {
	electives, err := c.Electives()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cache, err := resolver.NewMatchCache(c.Project.Policy.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return []engine.Option{
		engine.WithMatcher(c.Matcher()),
		engine.WithMatchCache(cache),
		engine.WithElectives(electives),
		engine.WithDeficitBlocks(c.Project.Policy.DeficitBlocks),
	}, nil
}

// Validate re-runs normalization and validation after programmatic edits
// such as command-line overrides.
func (c *Config) Validate() error {
	c.Project.applyDefaults()
	c.Project.normalize(c.ProjectDir)
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c *Config) loadProjectConfig(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.Project.normalize(c.ProjectDir)
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize(c.ProjectDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Data: DataConfig{
			Catalog:      filepath.Join("data", SourcePlaceholder, "catalog.yaml"),
			Articulation: filepath.Join("data", "articulation.yaml"),
			Requirements: filepath.Join("data", "requirements.yaml"),
			GEPatterns:   filepath.Join("data", "ge_patterns.yaml"),
		},
		Run: RunConfig{
			Pattern:    defaultPattern,
			TermSystem: defaultTermSystem,
		},
		Policy: PolicyConfig{Match: defaultMatch},
		Sweep:  SweepConfig{Parallelism: 4},
		Logging: LoggingConfig{
			Level: logging.LevelInfo,
		},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Run.TermSystem) == "" {
		pc.Run.TermSystem = defaultTermSystem
	}
	if strings.TrimSpace(pc.Run.Pattern) == "" {
		pc.Run.Pattern = defaultPattern
	}
	if strings.TrimSpace(pc.Policy.Match) == "" {
		pc.Policy.Match = defaultMatch
	}
	if pc.Sweep.Parallelism <= 0 {
		pc.Sweep.Parallelism = 4
	}
	if strings.TrimSpace(pc.Logging.Level) == "" {
		pc.Logging.Level = logging.LevelInfo
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Data.Catalog = resolvePath(base, pc.Data.Catalog)
	pc.Data.Articulation = resolvePath(base, pc.Data.Articulation)
	pc.Data.Requirements = resolvePath(base, pc.Data.Requirements)
	pc.Data.GEPatterns = resolvePath(base, pc.Data.GEPatterns)
	pc.Output = resolvePath(base, pc.Output)
	pc.Logging.Dir = resolvePath(base, pc.Logging.Dir)
	pc.Logging.Level = logging.ParseLevel(pc.Logging.Level)

	pc.Run.Source = strings.TrimSpace(pc.Run.Source)
	pc.Run.Pattern = strings.TrimSpace(pc.Run.Pattern)
	pc.Run.TermSystem = normalizeName(pc.Run.TermSystem)
	pc.Run.Targets = trimAll(pc.Run.Targets)
	pc.Policy.Match = normalizeName(pc.Policy.Match)

	pc.Sweep.Sources = trimAll(pc.Sweep.Sources)
	pc.Sweep.Patterns = trimAll(pc.Sweep.Patterns)
	var sets [][]string
	for _, set := range pc.Sweep.TargetSets {
		if set = trimAll(set); len(set) > 0 {
			sets = append(sets, set)
		}
	}
	pc.Sweep.TargetSets = sets
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if _, ok := Preset(pc.Run.TermSystem); !ok {
		return fmt.Errorf("run.term_system must be '%s' or '%s'", TermSystemQuarter, TermSystemSemester)
	}
	if pc.Run.UnitCeiling < 0 || pc.Run.MinTotalUnits < 0 || pc.Run.UnitScale < 0 || pc.Run.PlaceholderUnits < 0 {
		return fmt.Errorf("run: unit values must not be negative")
	}
	if pc.Run.MaxTerms < 0 {
		return fmt.Errorf("run.max_terms must not be negative")
	}
	switch pc.Policy.Match {
	case "exact", "prefix", "fuzzy":
	default:
		return fmt.Errorf("policy.match must be 'exact', 'prefix' or 'fuzzy'")
	}
	if pc.Policy.Electives.Pool < 0 {
		return fmt.Errorf("policy.electives.pool must not be negative")
	}
	for name, path := range map[string]string{
		"data.catalog":      pc.Data.Catalog,
		"data.articulation": pc.Data.Articulation,
		"data.requirements": pc.Data.Requirements,
		"data.ge_patterns":  pc.Data.GEPatterns,
	} {
		if path == "" {
			return fmt.Errorf("%s is required", name)
		}
	}
	return nil
}

func pick(value, fallback float64) float64 {
	if value > 0 {
		return value
	}
	return fallback
}

func normalizeName(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// sourceSlug keeps source names usable as path segments.
func sourceSlug(source string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(source)), " ", "_")
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}
