package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/idilsaglam/tada/internal/i18n"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/ui"
)

// listItem adapts model.Item to bubbles/list.Item.
type listItem struct{ model.Item }

func (i listItem) Title() string       { return i.Name }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.Name }

// itemDelegate renders one item per line; the cursor shows only in the
// focused column.
type itemDelegate struct {
	focused bool
}

func (d itemDelegate) Height() int                         { return 1 }
func (d itemDelegate) Spacing() int                        { return 0 }
func (d itemDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	t := ui.Current()
	box := t.Muted.Render(t.Box(false))
	text := it.Name
	if it.IsCompleted {
		box = t.Success.Render(t.Box(true))
		text = t.Done.Render(text)
	}
	prefix := "  "
	if d.focused && index == m.Index() {
		prefix = t.Selected.Render("> ")
	}
	line := prefix + box + " " + text
	fmt.Fprint(w, ui.Truncate(line, m.Width()))
}

type listFocus int

const (
	focusInput listFocus = iota
	focusPending
	focusCompleted
)

// toggleState tracks one item whose completion PATCH is in flight.
// confirmed is the last value the server accepted; sent is what the
// in-flight request carries.
type toggleState struct {
	confirmed bool
	sent      bool
}

// listView shows every item of the tenant in two columns.
type listView struct {
	id   uuid.UUID
	svc  Service
	opts Options
	tr   *i18n.Translator
	keys listKeyMap
	help help.Model

	items    []model.Item
	input    textinput.Model
	columns  [2]list.Model
	focus    listFocus
	loading  bool
	creating bool
	err      error
	inflight map[int]*toggleState

	width, height int
}

func newListView(svc Service, opts Options, width, height int) *listView {
	opts = opts.withDefaults()
	m := &listView{
		id:       uuid.New(),
		svc:      svc,
		opts:     opts,
		tr:       opts.Translator,
		keys:     newListKeyMap(),
		help:     help.New(),
		inflight: map[int]*toggleState{},
		loading:  true,
	}

	m.input = textinput.New()
	m.input.Prompt = "> "
	m.input.Placeholder = m.tr.T(i18n.NewItem)
	m.input.CharLimit = 200
	m.input.Focus()

	for i := range m.columns {
		l := list.New(nil, itemDelegate{}, 0, 0)
		l.SetShowHelp(false)
		l.SetShowStatusBar(false)
		l.SetFilteringEnabled(false)
		l.SetShowPagination(true)
		l.DisableQuitKeybindings()
		l.Styles.Title = ui.Current().Title
		l.Styles.TitleBar = lipgloss.NewStyle()
		m.columns[i] = l
	}
	m.setSize(width, height)
	m.refresh()
	return m
}

func (m *listView) ID() uuid.UUID { return m.id }

func (m *listView) Init() tea.Cmd {
	return tea.Batch(m.fetch(), textinput.Blink)
}

// fetch loads every item. It runs once on mount and again on reload.
func (m *listView) fetch() tea.Cmd {
	m.loading = true
	svc, id := m.svc, m.id
	return func() tea.Msg {
		items, err := svc.List(context.Background())
		return itemsLoadedMsg{origin: origin{id}, items: items, err: err}
	}
}

// add creates an item from the draft. Blank drafts are ignored without
// touching the network or the list.
func (m *listView) add() tea.Cmd {
	draft := m.input.Value()
	if !model.ValidName(draft) || m.creating {
		return nil
	}
	m.creating = true
	name := strings.TrimSpace(draft)
	svc, id := m.svc, m.id
	return func() tea.Msg {
		it, err := svc.Create(context.Background(), name)
		return itemCreatedMsg{origin: origin{id}, item: it, err: err}
	}
}

// toggle flips completion locally right away and confirms it with the
// server. While a PATCH for the item is in flight, further toggles only
// change local state; the latest value is sent once the in-flight request
// returns.
func (m *listView) toggle(itemID int) tea.Cmd {
	i := model.Index(m.items, itemID)
	if i < 0 {
		return nil
	}
	prev := m.items[i]
	m.items[i].IsCompleted = !prev.IsCompleted
	m.refresh()

	if _, busy := m.inflight[itemID]; busy {
		return nil
	}
	m.inflight[itemID] = &toggleState{confirmed: prev.IsCompleted, sent: !prev.IsCompleted}
	return m.sendToggle(itemID, prev.Name, !prev.IsCompleted)
}

func (m *listView) sendToggle(itemID int, name string, done bool) tea.Cmd {
	svc, id := m.svc, m.id
	return func() tea.Msg {
		_, err := svc.Update(context.Background(), itemID, model.ItemPatch{
			Name:        model.Ptr(name),
			IsCompleted: model.Ptr(done),
		})
		return toggleDoneMsg{origin: origin{id}, itemID: itemID, sent: done, err: err}
	}
}

func (m *listView) toggleDone(msg toggleDoneMsg) tea.Cmd {
	st, ok := m.inflight[msg.itemID]
	if !ok {
		return nil
	}
	i := model.Index(m.items, msg.itemID)
	if msg.err != nil {
		delete(m.inflight, msg.itemID)
		if i >= 0 {
			m.items[i].IsCompleted = st.confirmed
			m.refresh()
		}
		m.err = msg.err
		m.opts.Logger.Warn("toggle failed", "item", msg.itemID, "err", msg.err)
		return nil
	}
	st.confirmed = msg.sent
	if i < 0 || m.items[i].IsCompleted == st.confirmed {
		delete(m.inflight, msg.itemID)
		return nil
	}
	st.sent = m.items[i].IsCompleted
	return m.sendToggle(msg.itemID, m.items[i].Name, st.sent)
}

// keepIntent carries the local completion of items with a toggle in flight
// over a fresh server list. The server may not have applied the PATCH yet,
// and the follow-up must still carry what the user chose last.
func (m *listView) keepIntent(fresh []model.Item) []model.Item {
	for id := range m.inflight {
		old := model.Index(m.items, id)
		i := model.Index(fresh, id)
		if old < 0 || i < 0 {
			continue
		}
		fresh[i].IsCompleted = m.items[old].IsCompleted
	}
	return fresh
}

func (m *listView) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case itemsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.opts.Logger.Warn("list failed", "err", msg.err)
			return m, nil
		}
		m.items = m.keepIntent(msg.items)
		m.refresh()
		return m, nil

	case itemCreatedMsg:
		m.creating = false
		if msg.err != nil {
			m.err = msg.err
			m.opts.Logger.Warn("create failed", "err", msg.err)
			return m, nil
		}
		m.items = append(m.items, msg.item)
		m.input.SetValue("")
		m.refresh()
		return m, nil

	case toggleDoneMsg:
		return m, m.toggleDone(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *listView) handleKey(msg tea.KeyMsg) (screen, tea.Cmd) {
	if m.loading {
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}
	if m.err != nil {
		switch {
		case key.Matches(msg, m.keys.Dismiss):
			m.err = nil
		case key.Matches(msg, m.keys.Reload):
			m.err = nil
			return m, m.fetch()
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		}
		return m, nil
	}

	if m.focus == focusInput {
		switch {
		case key.Matches(msg, m.keys.Submit):
			return m, m.add()
		case key.Matches(msg, m.keys.Focus), key.Matches(msg, m.keys.Dismiss):
			m.setFocus(focusPending)
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Focus):
		m.setFocus((m.focus + 1) % 3)
		return m, nil
	case key.Matches(msg, m.keys.Add):
		m.setFocus(focusInput)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Left):
		m.setFocus(focusPending)
		return m, nil
	case key.Matches(msg, m.keys.Right):
		m.setFocus(focusCompleted)
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		return m, m.fetch()
	case key.Matches(msg, m.keys.Toggle):
		if it, ok := m.selected(); ok {
			return m, m.toggle(it.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.Open):
		// Leaving unmounts this view and drops pending toggle results, so
		// wait until every toggle has settled.
		if len(m.inflight) > 0 {
			m.opts.Logger.Debug("open deferred, toggles in flight", "count", len(m.inflight))
			return m, nil
		}
		if it, ok := m.selected(); ok {
			id := it.ID
			return m, func() tea.Msg { return openDetailMsg{itemID: id} }
		}
		return m, nil
	}

	col := m.column()
	var cmd tea.Cmd
	m.columns[col], cmd = m.columns[col].Update(msg)
	return m, cmd
}

func (m *listView) column() int {
	if m.focus == focusCompleted {
		return 1
	}
	return 0
}

func (m *listView) selected() (model.Item, bool) {
	if m.focus == focusInput {
		return model.Item{}, false
	}
	li, ok := m.columns[m.column()].SelectedItem().(listItem)
	if !ok {
		return model.Item{}, false
	}
	return li.Item, true
}

func (m *listView) setFocus(f listFocus) {
	m.focus = f
	if f == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	for i := range m.columns {
		m.columns[i].SetDelegate(itemDelegate{focused: f != focusInput && i == m.column()})
	}
}

// refresh recomputes both columns from items.
func (m *listView) refresh() {
	pending, completed := model.Partition(m.items)
	for i, part := range [][]model.Item{pending, completed} {
		li := make([]list.Item, 0, len(part))
		for _, it := range part {
			li = append(li, listItem{it})
		}
		l := &m.columns[i]
		l.SetItems(li)
		if n := len(li); n > 0 && l.Index() >= n {
			l.Select(n - 1)
		}
	}
	m.columns[0].Title = fmt.Sprintf("%s (%d)", m.tr.T(i18n.Pending), len(pending))
	m.columns[1].Title = fmt.Sprintf("%s (%d)", m.tr.T(i18n.Completed), len(completed))
}

func (m *listView) setSize(w, h int) {
	if w <= 0 {
		w = 80
	}
	if h <= 0 {
		h = 24
	}
	m.width, m.height = w, h
	colW := (w - 6) / 2
	if colW < 10 {
		colW = 10
	}
	colH := h - 9
	if colH < 3 {
		colH = 3
	}
	for i := range m.columns {
		m.columns[i].SetSize(colW, colH)
	}
	m.input.Width = w - 8
	m.help.Width = w - 4
}

func (m *listView) View() string {
	t := ui.Current()
	if m.loading {
		return ui.Panel([]string{t.Muted.Render(m.tr.T(i18n.Loading))})
	}
	if m.err != nil {
		return ui.Panel([]string{
			t.Error.Render(m.tr.T(i18n.ErrorPrefix) + ": " + m.tr.Error(m.err)),
			"",
			m.help.ShortHelpView([]key.Binding{m.keys.Dismiss, m.keys.Reload, m.keys.Quit}),
		})
	}

	done, pending := model.Stats(m.items)
	header := fmt.Sprintf("%s %s  %s %d  %s %d  %s",
		t.Title.Render(m.tr.T(i18n.Title)),
		t.Muted.Render("@"+m.opts.Tenant),
		t.Success.Render(t.SymDone), done,
		t.Pending.Render(t.SymPending), pending,
		t.Muted.Render(ui.ProgressBar(done, done+pending, 20)),
	)
	body := ui.Columns([]string{m.columns[0].View()}, []string{m.columns[1].View()}, m.columns[0].Width())
	return ui.Panel([]string{
		header,
		"",
		m.input.View(),
		"",
		body,
		"",
		m.help.View(m.keys),
	})
}
