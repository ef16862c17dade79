package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/pathway/internal/logbook"
	"github.com/kingrea/pathway/internal/pathway"
	"github.com/kingrea/pathway/internal/pathway/engine"
)

func samplePlan() pathway.Plan {
	return pathway.Plan{
		RunID:   "run-1",
		Source:  "DEANZA",
		Targets: []string{"UCSD"},
		Pattern: "IGETC",
		Status:  string(engine.StatusStalled),
		Reason:  "every remaining course is blocked: PHYS 4A",
		Terms: []pathway.Term{{
			Index: 1, Label: "Quarter 1", Units: 8,
			Courses: []pathway.PlannedCourse{
				{ID: "GE_1A", Units: 3, Kind: pathway.KindGE, Fulfills: "GE_1A"},
				{ID: "MATH 1A", Units: 5, Kind: pathway.KindMajor, Fulfills: "UCSD:calculus"},
			},
		}},
		TotalUnits: 8,
		Unmet:      []string{"UCSD:physics"},
		Warnings:   []string{"unknown course PHYS 9"},
	}
}

func newTestApp(t *testing.T, opts ...AppOption) (*App, *engine.Repository) {
	t.Helper()
	repo := engine.NewRepository(filepath.Join(t.TempDir(), "plans"))
	if _, err := repo.Save(samplePlan()); err != nil {
		t.Fatalf("save plan: %v", err)
	}
	return NewApp(repo, opts...), repo
}

func runCommands(t *testing.T, model tea.Model, cmd tea.Cmd) *App {
	t.Helper()
	app, ok := model.(*App)
	if !ok {
		t.Fatalf("unexpected model type: %T", model)
	}
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			break
		}
		nextModel, nextCmd := app.Update(msg)
		var ok bool
		app, ok = nextModel.(*App)
		if !ok {
			t.Fatalf("unexpected model type: %T", nextModel)
		}
		cmd = nextCmd
	}
	return app
}

func TestListThenOpenPlan(t *testing.T) {
	app, _ := newTestApp(t)
	app = runCommands(t, app, app.Init())
	model, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	app = model.(*App)
	if got := len(app.planList.Items()); got != 1 {
		t.Fatalf("expected one saved plan, got %d", got)
	}

	model, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app = runCommands(t, model, cmd)
	if app.state != statePlan {
		t.Fatalf("expected plan state, got %v", app.state)
	}
	view := app.View()
	for _, want := range []string{"DEANZA -> UCSD (IGETC)", "Quarter 1", "MATH 1A", "UCSD:physics"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}

	model, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	app = runCommands(t, model, cmd)
	if app.state != statePlanList {
		t.Fatalf("esc should return to the list")
	}
}

func TestInitialPlanOpensDirectly(t *testing.T) {
	app, _ := newTestApp(t, WithInitialPlan(engine.FileName(samplePlan())))
	app = runCommands(t, app, app.Init())
	if app.state != statePlan || app.plan == nil {
		t.Fatalf("expected initial plan to open")
	}
}

func TestMissingPlanShowsError(t *testing.T) {
	app, _ := newTestApp(t, WithInitialPlan("absent.json"))
	app = runCommands(t, app, app.Init())
	if app.err == nil {
		t.Fatalf("expected load error")
	}
	if !strings.Contains(app.View(), "plan not found") {
		t.Fatalf("view should surface the error:\n%s", app.View())
	}
}

func TestRenderPlanSummary(t *testing.T) {
	out := newPlanView(samplePlan()).Render(100)
	for _, want := range []string{"Stalled", "blocked: PHYS 4A", "Terms: 1", "Units: 8.0", "not met", "Warnings (1)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("render missing %q:\n%s", want, out)
		}
	}
}

func TestLogPanelShowsJournal(t *testing.T) {
	lb, err := logbook.New(filepath.Join(t.TempDir(), logbook.FileName))
	if err != nil {
		t.Fatalf("logbook: %v", err)
	}
	lb.Info("planned DEANZA")
	app, _ := newTestApp(t, WithLogbook(lb))
	if !strings.Contains(app.View(), "planned DEANZA") {
		t.Fatalf("expected journal tail in view")
	}
}

func TestFriendlyLabel(t *testing.T) {
	if got := friendlyLabel("safety_aborted"); got != "Safety Aborted" {
		t.Fatalf("friendlyLabel = %q", got)
	}
}
