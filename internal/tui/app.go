// internal/tui/app.go
//
// This is the plan viewer for exported pathways.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen

package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/pathway/internal/logbook"
	"github.com/kingrea/pathway/internal/pathway"
	"github.com/kingrea/pathway/internal/pathway/engine"
)

// appState represents which "screen" we're on
type appState int

const (
	statePlanList appState = iota // Saved plans
	statePlan                     // One plan in a scrolling viewport
)

const logPanelLines = 6

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithLogbook shows the tail of the plan journal under the main content.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) {
		a.logbook = lb
	}
}

// WithInitialPlan opens the named plan instead of the list.
func WithInitialPlan(name string) AppOption {
	return func(a *App) {
		a.initial = strings.TrimSpace(name)
	}
}

type plansLoadedMsg struct {
	names []string
	err   error
}

type planLoadedMsg struct {
	name string
	plan pathway.Plan
	err  error
}

// planItem implements list.Item for a stored plan file.
type planItem struct {
	name string
}

func (i planItem) Title() string       { return strings.TrimSuffix(i.name, filepath.Ext(i.name)) }
func (i planItem) Description() string { return i.name }
func (i planItem) FilterValue() string { return i.name }

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	state   appState
	store   engine.PlanStore
	logbook *logbook.Logbook
	initial string

	// UI components
	planList  list.Model
	viewport  viewport.Model
	plan      *planView
	statusMsg string
	err       error

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// NewApp creates a viewer over a plan store.
func NewApp(store engine.PlanStore, opts ...AppOption) *App {
	planList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	planList.Title = "⬡ SAVED PLANS"
	planList.SetShowStatusBar(false)
	planList.SetFilteringEnabled(true)

	app := &App{
		state:    statePlanList,
		store:    store,
		planList: planList,
		viewport: viewport.New(80, 20),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	return app
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	if a.initial != "" {
		return a.loadPlan(a.initial)
	}
	return a.loadPlans()
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.planList.SetSize(max(0, msg.Width-4), max(0, msg.Height-logPanelLines-6))
		a.viewport.Width = max(20, msg.Width-4)
		a.viewport.Height = max(5, msg.Height-logPanelLines-8)
		if a.plan != nil {
			a.viewport.SetContent(a.plan.Render(a.viewport.Width))
		}
		return a, nil

	case plansLoadedMsg:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		items := make([]list.Item, 0, len(msg.names))
		for _, name := range msg.names {
			items = append(items, planItem{name: name})
		}
		a.statusMsg = fmt.Sprintf("%d saved plans", len(items))
		return a, a.planList.SetItems(items)

	case planLoadedMsg:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.err = nil
		a.plan = newPlanView(msg.plan)
		a.viewport.SetContent(a.plan.Render(a.viewport.Width))
		a.viewport.GotoTop()
		a.state = statePlan
		a.statusMsg = msg.name
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.state == statePlanList && !a.planList.SettingFilter() {
				return a, tea.Quit
			}
			if a.state == statePlan {
				return a, tea.Quit
			}
		case "esc":
			if a.state == statePlan {
				a.state = statePlanList
				a.err = nil
				return a, a.loadPlans()
			}
		case "enter":
			if a.state == statePlanList && !a.planList.SettingFilter() {
				if item, ok := a.planList.SelectedItem().(planItem); ok {
					return a, a.loadPlan(item.name)
				}
				return a, nil
			}
		}
	}

	var cmd tea.Cmd
	switch a.state {
	case statePlanList:
		a.planList, cmd = a.planList.Update(msg)
	case statePlan:
		a.viewport, cmd = a.viewport.Update(msg)
	}
	return a, cmd
}

func (a *App) loadPlans() tea.Cmd {
	store := a.store
	return func() tea.Msg {
		names, err := store.List()
		return plansLoadedMsg{names: names, err: err}
	}
}

func (a *App) loadPlan(name string) tea.Cmd {
	store := a.store
	return func() tea.Msg {
		plan, err := store.Load(name)
		return planLoadedMsg{name: name, plan: plan, err: err}
	}
}

// View renders the current state to a string.
func (a *App) View() string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render("⬡ PATHWAY")

	var content string
	switch a.state {
	case statePlanList:
		if len(a.planList.Items()) == 0 && a.err == nil {
			content = "No saved plans. Run `pathway plan` first."
		} else {
			content = a.planList.View()
		}
	case statePlan:
		content = a.viewport.View()
	}

	parts := []string{header, content}
	if a.err != nil {
		parts = append(parts, labelStyleBlocked.Render(fmt.Sprintf("Error: %v", a.err)))
	}
	if panel := a.renderLogPanel(); panel != "" {
		parts = append(parts, panel)
	}
	parts = append(parts, a.renderHelp())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a *App) renderHelp() string {
	help := "enter=open  /=filter  q=quit"
	if a.state == statePlan {
		help = "↑/↓ pgup/pgdn=scroll  esc=back  q=quit"
	}
	if a.statusMsg != "" {
		help = a.statusMsg + " · " + help
	}
	return detailTextStyle.Render(help)
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines, total := a.logbook.Tail(logPanelLines)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s · %d entries", fileName, total))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}
