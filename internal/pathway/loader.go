package pathway

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DataPaths locates the four input files of a run. Each file may be YAML or
// JSON.
type DataPaths struct {
	Catalog      string
	Articulation string
	Requirements string
	GEPatterns   string
}

// Dataset is the immutable input shared by every run over one source.
type Dataset struct {
	Catalog      *Catalog
	Articulation ArticulationSet
	Requirements Requirements
	Patterns     PatternSet
	// Diagnostics collects recoverable ingestion problems such as
	// MalformedExpressionError.
	Diagnostics []error
}

// LoadDataset reads and validates every input file. Any absent or undecodable
// file yields a *MissingDataError.
func LoadDataset(paths DataPaths) (*Dataset, error) {
	ds := &Dataset{}
	var err error
	var diags []error

	data, err := readInput("catalog", paths.Catalog)
	if err != nil {
		return nil, err
	}
	if ds.Catalog, diags, err = ParseCatalog(data); err != nil {
		return nil, &MissingDataError{Kind: "catalog", Path: paths.Catalog, Err: err}
	}
	ds.Diagnostics = append(ds.Diagnostics, diags...)

	if data, err = readInput("articulation", paths.Articulation); err != nil {
		return nil, err
	}
	if ds.Articulation, err = ParseArticulation(data); err != nil {
		return nil, &MissingDataError{Kind: "articulation", Path: paths.Articulation, Err: err}
	}

	if data, err = readInput("requirements", paths.Requirements); err != nil {
		return nil, err
	}
	if ds.Requirements, err = ParseRequirements(data); err != nil {
		return nil, &MissingDataError{Kind: "requirements", Path: paths.Requirements, Err: err}
	}

	if data, err = readInput("ge pattern", paths.GEPatterns); err != nil {
		return nil, err
	}
	if ds.Patterns, err = ParsePatterns(data); err != nil {
		return nil, &MissingDataError{Kind: "ge pattern", Path: paths.GEPatterns, Err: err}
	}
	return ds, nil
}

func readInput(kind, path string) ([]byte, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &MissingDataError{Kind: kind, Err: fmt.Errorf("no path configured")}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &MissingDataError{Kind: kind, Path: path, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &MissingDataError{Kind: kind, Path: path, Err: fmt.Errorf("file is empty")}
	}
	return data, nil
}

type catalogFile struct {
	Courses yaml.Node `yaml:"courses"`
}

type courseRecord struct {
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name"`
	Units         *float64 `yaml:"units"`
	CourseUnits   *float64 `yaml:"course_units"`
	Prerequisites any      `yaml:"prerequisites"`
	Prereq        any      `yaml:"prereq"`
	Tags          []string `yaml:"tags"`
}

// ParseCatalog decodes a catalog keyed by course id (or a list of courses
// carrying an id field) and normalizes every prerequisite expression.
func ParseCatalog(data []byte) (*Catalog, []error, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("decode catalog: %w", err)
	}
	var records []courseRecord
	switch file.Courses.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(file.Courses.Content); i += 2 {
			var rec courseRecord
			if err := file.Courses.Content[i+1].Decode(&rec); err != nil {
				return nil, nil, fmt.Errorf("decode course %s: %w", file.Courses.Content[i].Value, err)
			}
			rec.ID = file.Courses.Content[i].Value
			records = append(records, rec)
		}
	case yaml.SequenceNode:
		if err := file.Courses.Decode(&records); err != nil {
			return nil, nil, fmt.Errorf("decode courses: %w", err)
		}
	case 0:
		return nil, nil, fmt.Errorf("catalog has no courses")
	default:
		return nil, nil, fmt.Errorf("courses: expected mapping or list, got %s", describeNode(&file.Courses))
	}

	var diags []error
	courses := make([]Course, 0, len(records))
	for _, rec := range records {
		id := NormalizeID(rec.ID)
		if id == "" {
			continue
		}
		raw := rec.Prerequisites
		if raw == nil {
			raw = rec.Prereq
		}
		expr, exprDiags := NormalizePrereq(id, raw)
		diags = append(diags, exprDiags...)
		units := DefaultUnits
		if rec.Units != nil {
			units = *rec.Units
		} else if rec.CourseUnits != nil {
			units = *rec.CourseUnits
		}
		courses = append(courses, Course{
			ID:     id,
			Name:   strings.TrimSpace(rec.Name),
			Units:  units,
			Prereq: expr,
			Tags:   cloneStrings(rec.Tags),
		})
	}
	return NewCatalog(courses...), diags, nil
}

type articulationFile struct {
	Sources map[string]Articulation `yaml:"sources"`
}

// ParseArticulation decodes agreements grouped by source institution.
func ParseArticulation(data []byte) (ArticulationSet, error) {
	var file articulationFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode articulation: %w", err)
	}
	if len(file.Sources) == 0 {
		return nil, fmt.Errorf("articulation lists no sources")
	}
	set := make(ArticulationSet, len(file.Sources))
	for name, art := range file.Sources {
		art.Source = name
		art.TermSystem = strings.ToLower(strings.TrimSpace(art.TermSystem))
		for target, entries := range art.Targets {
			kept := entries[:0]
			for _, entry := range entries {
				entry.Code = entry.RequirementCode()
				if entry.Code == "" {
					return nil, fmt.Errorf("%s -> %s: entry without code or receiving courses", name, target)
				}
				kept = append(kept, entry)
			}
			art.Targets[target] = kept
		}
		set[name] = art
	}
	return set, nil
}

type requirementsFile struct {
	Targets Requirements `yaml:"targets"`
}

// ParseRequirements decodes target requirement groups.
func ParseRequirements(data []byte) (Requirements, error) {
	var file requirementsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode requirements: %w", err)
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("requirements list no targets")
	}
	if err := file.Targets.Validate(); err != nil {
		return nil, err
	}
	return file.Targets, nil
}

type patternsFile struct {
	Patterns []GEPattern `yaml:"patterns"`
}

// ParsePatterns decodes and validates GE patterns.
func ParsePatterns(data []byte) (PatternSet, error) {
	var file patternsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode ge patterns: %w", err)
	}
	if len(file.Patterns) == 0 {
		return nil, fmt.Errorf("no ge patterns defined")
	}
	set := make(PatternSet, len(file.Patterns))
	for _, pattern := range file.Patterns {
		if err := pattern.Validate(); err != nil {
			return nil, err
		}
		if _, dup := set[pattern.ID]; dup {
			return nil, fmt.Errorf("ge pattern %s defined twice", pattern.ID)
		}
		set[pattern.ID] = pattern
	}
	return set, nil
}
