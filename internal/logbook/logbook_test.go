package logbook

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kingrea/pathway/internal/pathway"
	"github.com/kingrea/pathway/internal/pathway/engine"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journey.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines, total := book.Tail(3)
	if total != 5 {
		t.Fatalf("total lines = %d, want 5", total)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestJournalsTermsAndOutcome(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "logs", FileName))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	book.clock = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }

	term := pathway.Term{
		Index: 1, Label: "Quarter 1", Units: 9,
		Courses: []pathway.PlannedCourse{{ID: "MATH 1A", Units: 5}, {ID: "CIS 22A", Units: 4}},
	}
	book.TermCommitted("0123456789abcdef", term, 9)
	book.RunFinished(engine.Result{
		Status: engine.StatusStalled,
		Detail: "no eligible course remains",
		Plan: pathway.Plan{
			RunID: "0123456789abcdef", Source: "DEANZA", Targets: []string{"UCSD"}, Pattern: "IGETC",
			Terms: []pathway.Term{term}, TotalUnits: 9, Unmet: []string{"UCSD:physics"},
		},
	})

	lines, total := book.Tail(10)
	if total != 3 {
		t.Fatalf("total lines = %d, want 3: %v", total, lines)
	}
	if !strings.HasPrefix(lines[0], "2026-03-01T09:00:00Z INFO  [01234567] Quarter 1: MATH 1A, CIS 22A") {
		t.Fatalf("unexpected term line %q", lines[0])
	}
	if !strings.Contains(lines[1], "WARN") || !strings.Contains(lines[1], "stalled after 1 terms") {
		t.Fatalf("unexpected outcome line %q", lines[1])
	}
	if !strings.Contains(lines[2], "UCSD:physics") {
		t.Fatalf("unexpected unmet line %q", lines[2])
	}
}
