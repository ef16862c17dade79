package logbook

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kingrea/pathway/internal/pathway"
	"github.com/kingrea/pathway/internal/pathway/engine"
)

// Level represents the severity of a journal entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// FileName is the journal created inside the log directory.
const FileName = "journal.log"

// Logbook persists plan progress to a simple text file. It implements
// engine.Observer, so a sweep can share one journal across runs.
type Logbook struct {
	path  string
	mu    sync.Mutex
	clock func() time.Time
}

var _ engine.Observer = (*Logbook)(nil)

// New creates a logbook that writes to the provided path.
func New(path string) (*Logbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &Logbook{path: path, clock: time.Now}, nil
}

// Path returns the file backing this logbook.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Append writes a single entry to the logbook.
func (l *Logbook) Append(level Level, message string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	line := fmt.Sprintf("%s %-5s %s\n",
		l.clock().UTC().Format(time.RFC3339),
		string(level),
		strings.TrimSpace(message),
	)
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer file.Close()
	_, _ = file.WriteString(line)
}

// Tail returns up to maxLines of the most recent entries and the total
// number of entries in the journal.
func (l *Logbook) Tail(maxLines int) ([]string, int) {
	if l == nil || maxLines <= 0 {
		return nil, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	file, err := os.Open(l.path)
	if err != nil {
		return nil, 0
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	total := len(lines)
	if total == 0 {
		return nil, 0
	}
	if total > maxLines {
		lines = lines[total-maxLines:]
	}
	return lines, total
}

// Info appends an informational entry.
func (l *Logbook) Info(format string, args ...any) {
	l.Append(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn appends a warning entry.
func (l *Logbook) Warn(format string, args ...any) {
	l.Append(LevelWarn, fmt.Sprintf(format, args...))
}

// Error appends an error entry.
func (l *Logbook) Error(format string, args ...any) {
	l.Append(LevelError, fmt.Sprintf(format, args...))
}

// TermCommitted journals one committed term.
func (l *Logbook) TermCommitted(runID string, term pathway.Term, cumulativeUnits float64) {
	l.Info("[%s] %s: %s (%.1f units, %.1f total)",
		shortID(runID), term.Label, strings.Join(term.CourseIDs(), ", "), term.Units, cumulativeUnits)
}

// RunFinished journals the terminal status. Stalls and safety aborts are
// warnings; complete runs are informational.
func (l *Logbook) RunFinished(result engine.Result) {
	plan := result.Plan
	msg := fmt.Sprintf("[%s] %s: %s after %d terms, %.1f units",
		shortID(plan.RunID), plan.Label(), result.Status, len(plan.Terms), plan.TotalUnits)
	if result.Detail != "" {
		msg += " (" + result.Detail + ")"
	}
	if result.Status == engine.StatusComplete {
		l.Info("%s", msg)
		return
	}
	l.Warn("%s", msg)
	if len(plan.Unmet) > 0 {
		l.Warn("[%s] unmet: %s", shortID(plan.RunID), strings.Join(plan.Unmet, ", "))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
