package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// screen is one mounted view. Each mount gets a fresh ID so that results
// of requests started by an earlier mount can be told apart.
type screen interface {
	ID() uuid.UUID
	Init() tea.Cmd
	Update(tea.Msg) (screen, tea.Cmd)
	View() string
}

type appModel struct {
	svc    Service
	opts   Options
	active screen

	width, height int
}

func newApp(svc Service, opts Options) *appModel {
	opts = opts.withDefaults()
	return &appModel{
		svc:    svc,
		opts:   opts,
		active: newListView(svc, opts, 0, 0),
	}
}

func (m *appModel) Init() tea.Cmd { return m.active.Init() }

func (m *appModel) mount(s screen) tea.Cmd {
	m.opts.Logger.Debug("mount", "view", s.ID())
	m.active = s
	return s.Init()
}

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case openDetailMsg:
		return m, m.mount(newDetailView(m.svc, m.opts, msg.itemID, m.width, m.height))
	case openListMsg:
		return m, m.mount(newListView(m.svc, m.opts, m.width, m.height))
	case addressed:
		if msg.viewID() != m.active.ID() {
			m.opts.Logger.Debug("dropping stale result", "view", msg.viewID(), "type", typeName(msg))
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.active, cmd = m.active.Update(msg)
	return m, cmd
}

func (m *appModel) View() string { return m.active.View() }

// Run starts the interactive client and blocks until the user quits.
func Run(svc Service, opts Options) error {
	p := tea.NewProgram(newApp(svc, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func typeName(msg tea.Msg) string {
	switch msg.(type) {
	case itemsLoadedMsg:
		return "list"
	case itemCreatedMsg:
		return "create"
	case toggleDoneMsg:
		return "toggle"
	case itemLoadedMsg:
		return "get"
	case imageReadMsg:
		return "image"
	case savedMsg:
		return "save"
	case deletedMsg:
		return "delete"
	}
	return "unknown"
}
