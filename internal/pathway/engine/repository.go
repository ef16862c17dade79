package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kingrea/pathway/internal/pathway"
)

// ErrPlanNotFound is returned when no persisted plan exists at a location.
var ErrPlanNotFound = errors.New("pathway engine: plan not found")

// PlanStore persists finished plans.
type PlanStore interface {
	Save(pathway.Plan) (string, error)
	Load(name string) (pathway.Plan, error)
	List() ([]string, error)
}

// Repository stores one JSON file per plan inside a directory.
type Repository struct {
	dir string
}

// NewRepository creates a repository rooted at dir.
func NewRepository(dir string) *Repository {
	return &Repository{dir: dir}
}

// Dir returns the repository root.
func (r *Repository) Dir() string { return r.dir }

// FileName derives the stable file name for a plan from its source, targets,
// and GE pattern. Saving the same combination again overwrites the file.
func FileName(plan pathway.Plan) string {
	parts := []string{plan.Source, strings.Join(plan.Targets, "+"), plan.Pattern}
	return slug(strings.Join(parts, "_")) + ".json"
}

// Save writes the plan and returns the path it was written to.
func (r *Repository) Save(plan pathway.Plan) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", err
	}
	encoded, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(r.dir, FileName(plan))
	if err := os.WriteFile(path, append(encoded, '\n'), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Load reads a plan by file name (relative to the repository) or path.
func (r *Repository) Load(name string) (pathway.Plan, error) {
	path := name
	if !filepath.IsAbs(path) && !strings.ContainsRune(name, filepath.Separator) {
		path = filepath.Join(r.dir, name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return pathway.Plan{}, fmt.Errorf("%w: %s", ErrPlanNotFound, name)
		}
		return pathway.Plan{}, err
	}
	var plan pathway.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return pathway.Plan{}, fmt.Errorf("decode plan %s: %w", name, err)
	}
	return plan, nil
}

// List returns the stored plan file names in lexical order.
func (r *Repository) List() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func slug(value string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(value) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '+':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if out == "" {
		return "plan"
	}
	return out
}
