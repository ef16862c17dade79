package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kingrea/pathway/internal/pathway"
)

func TestRepositoryRoundTrip(t *testing.T) {
	repo := NewRepository(filepath.Join(t.TempDir(), "plans"))
	plan := pathway.Plan{
		RunID:   "run-1",
		Source:  "De Anza",
		Targets: []string{"UCSD", "UCLA"},
		Pattern: "IGETC",
		Status:  string(StatusComplete),
		Terms: []pathway.Term{{
			Index: 1, Label: "Quarter 1", Units: 5,
			Courses: []pathway.PlannedCourse{{ID: "MATH 1A", Units: 5, Kind: pathway.KindMajor}},
		}},
		TotalUnits: 5,
	}

	path, err := repo.Save(plan)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if filepath.Base(path) != "de-anza_ucsd+ucla_igetc.json" {
		t.Fatalf("unexpected file name %s", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if data[len(data)-1] != '\n' {
		t.Fatalf("expected trailing newline")
	}

	loaded, err := repo.Load(filepath.Base(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.RunID != plan.RunID || len(loaded.Terms) != 1 || loaded.Terms[0].Courses[0].ID != "MATH 1A" {
		t.Fatalf("unexpected plan %+v", loaded)
	}

	names, err := repo.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 1 || names[0] != filepath.Base(path) {
		t.Fatalf("unexpected listing %v", names)
	}
}

func TestRepositoryMissingPlan(t *testing.T) {
	repo := NewRepository(t.TempDir())
	if _, err := repo.Load("absent.json"); !errors.Is(err, ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}
	names, err := NewRepository(filepath.Join(t.TempDir(), "missing")).List()
	if err != nil || len(names) != 0 {
		t.Fatalf("expected empty listing, got %v %v", names, err)
	}
}
