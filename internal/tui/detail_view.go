package tui

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/idilsaglam/tada/internal/api"
	"github.com/idilsaglam/tada/internal/i18n"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/ui"
)

type detailField int

const (
	fieldName detailField = iota
	fieldDone
	fieldMemo
	fieldImage
	fieldCount
)

// stagedImage is a validated local file waiting for the next save.
type stagedImage struct {
	name string
	data []byte
}

// detailView edits one item. Nothing here is applied optimistically: the
// server sees changes only on save.
type detailView struct {
	id     uuid.UUID
	itemID int
	svc    Service
	opts   Options
	tr     *i18n.Translator
	keys   detailKeyMap
	help   help.Model

	name         textinput.Model
	memo         textarea.Model
	path         textinput.Model
	isCompleted  bool
	imageURL     string
	imagePreview string
	imageFile    *stagedImage

	focus   detailField
	loaded  bool
	loading bool
	err     error

	width, height int
}

func newDetailView(svc Service, opts Options, itemID, width, height int) *detailView {
	opts = opts.withDefaults()
	m := &detailView{
		id:      uuid.New(),
		itemID:  itemID,
		svc:     svc,
		opts:    opts,
		tr:      opts.Translator,
		keys:    newDetailKeyMap(),
		help:    help.New(),
		loading: true,
	}

	m.name = textinput.New()
	m.name.Prompt = ""
	m.name.CharLimit = 200

	m.memo = textarea.New()
	m.memo.ShowLineNumbers = false
	m.memo.CharLimit = 0
	m.memo.SetHeight(6)

	m.path = textinput.New()
	m.path.Prompt = "path: "
	m.path.Placeholder = m.tr.T(i18n.ImagePath)

	m.setSize(width, height)
	return m
}

func (m *detailView) ID() uuid.UUID { return m.id }

func (m *detailView) Init() tea.Cmd { return m.fetch() }

func (m *detailView) fetch() tea.Cmd {
	m.loading = true
	svc, id, itemID := m.svc, m.id, m.itemID
	return func() tea.Msg {
		it, err := svc.Get(context.Background(), itemID)
		return itemLoadedMsg{origin: origin{id}, item: it, err: err}
	}
}

// fill copies the server item into the editable fields.
func (m *detailView) fill(it model.Item) {
	m.name.SetValue(it.Name)
	m.name.CursorEnd()
	m.memo.SetValue(it.Memo)
	m.isCompleted = it.IsCompleted
	m.imageURL = it.ImageURL
	m.imagePreview = it.ImageURL
	m.imageFile = nil
	m.loaded = true
}

// selectImage validates the file name synchronously, then checks the size
// and reads the bytes off the update loop. No network call happens here.
func (m *detailView) selectImage(path string) tea.Cmd {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if err := model.ValidateImage(path, 0); err != nil {
		m.err = err
		return nil
	}
	id := m.id
	return func() tea.Msg {
		name, data, err := model.ReadImage(path)
		if err != nil {
			return imageReadMsg{origin: origin{id}, err: err}
		}
		return imageReadMsg{origin: origin{id}, name: name, data: data}
	}
}

// save uploads a staged image first, then sends all four editable fields.
// If the upload fails, no update is issued.
func (m *detailView) save() tea.Cmd {
	m.loading = true
	svc, id, itemID := m.svc, m.id, m.itemID
	name := m.name.Value()
	memo := m.memo.Value()
	done := m.isCompleted
	imageURL := m.imageURL
	staged := m.imageFile
	return func() tea.Msg {
		ctx := context.Background()
		if staged != nil {
			u, err := svc.UploadImage(ctx, staged.name, staged.data)
			if err != nil {
				return savedMsg{origin: origin{id}, err: err}
			}
			imageURL = u
		}
		it, err := svc.Update(ctx, itemID, model.ItemPatch{
			Name:        &name,
			Memo:        &memo,
			ImageURL:    &imageURL,
			IsCompleted: &done,
		})
		return savedMsg{origin: origin{id}, item: it, err: err}
	}
}

func (m *detailView) remove() tea.Cmd {
	m.loading = true
	svc, id, itemID := m.svc, m.id, m.itemID
	return func() tea.Msg {
		return deletedMsg{origin: origin{id}, err: svc.Delete(context.Background(), itemID)}
	}
}

func back() tea.Msg { return openListMsg{} }

func (m *detailView) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case itemLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.opts.Logger.Warn("get failed", "item", m.itemID, "err", msg.err)
			return m, nil
		}
		m.fill(msg.item)
		return m, m.setFocus(fieldName)

	case imageReadMsg:
		if msg.err != nil {
			m.err = msg.err
			if !errIsLocal(msg.err) {
				m.opts.Logger.Warn("read image failed", "err", msg.err)
			}
			return m, nil
		}
		m.imageFile = &stagedImage{name: msg.name, data: msg.data}
		m.imagePreview = dataURI(msg.name, msg.data)
		m.path.SetValue("")
		return m, nil

	case savedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.opts.Logger.Warn("save failed", "item", m.itemID, "err", msg.err)
			return m, nil
		}
		return m, back

	case deletedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.opts.Logger.Warn("delete failed", "item", m.itemID, "err", msg.err)
			return m, nil
		}
		return m, back

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, m.updateFocused(msg)
}

func (m *detailView) handleKey(msg tea.KeyMsg) (screen, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	if m.err != nil {
		if key.Matches(msg, m.keys.Back) {
			m.err = nil
			if !m.loaded {
				return m, back
			}
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		return m, back
	case key.Matches(msg, m.keys.Save):
		return m, m.save()
	case key.Matches(msg, m.keys.Delete):
		return m, m.remove()
	case key.Matches(msg, m.keys.Next):
		return m, m.setFocus((m.focus + 1) % fieldCount)
	case key.Matches(msg, m.keys.Prev):
		return m, m.setFocus((m.focus + fieldCount - 1) % fieldCount)
	}

	switch m.focus {
	case fieldDone:
		if key.Matches(msg, m.keys.Toggle) {
			m.isCompleted = !m.isCompleted
		}
		return m, nil
	case fieldImage:
		if key.Matches(msg, m.keys.Pick) {
			return m, m.selectImage(m.path.Value())
		}
	}
	return m, m.updateFocused(msg)
}

func (m *detailView) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case fieldName:
		m.name, cmd = m.name.Update(msg)
	case fieldMemo:
		m.memo, cmd = m.memo.Update(msg)
	case fieldImage:
		m.path, cmd = m.path.Update(msg)
	}
	return cmd
}

func (m *detailView) setFocus(f detailField) tea.Cmd {
	m.focus = f
	m.name.Blur()
	m.memo.Blur()
	m.path.Blur()
	switch f {
	case fieldName:
		return m.name.Focus()
	case fieldMemo:
		return m.memo.Focus()
	case fieldImage:
		return m.path.Focus()
	}
	return nil
}

func (m *detailView) setSize(w, h int) {
	if w <= 0 {
		w = 80
	}
	if h <= 0 {
		h = 24
	}
	m.width, m.height = w, h
	m.name.Width = w - 12
	m.path.Width = w - 14
	m.memo.SetWidth(w - 8)
	m.help.Width = w - 4
}

func (m *detailView) View() string {
	t := ui.Current()
	if m.loading {
		return ui.Panel([]string{t.Muted.Render(m.tr.T(i18n.Loading))})
	}
	if m.err != nil {
		return ui.Panel([]string{
			t.Error.Render(m.tr.T(i18n.ErrorPrefix) + ": " + m.tr.Error(m.err)),
			"",
			m.help.ShortHelpView([]key.Binding{m.keys.Back}),
		})
	}

	label := func(f detailField, s string) string {
		if m.focus == f {
			return t.Selected.Render("> ") + t.Accent.Render(s)
		}
		return "  " + t.Muted.Render(s)
	}

	box := t.Muted.Render(t.Box(false))
	if m.isCompleted {
		box = t.Success.Render(t.Box(true))
	}
	lines := []string{
		t.Title.Render(fmt.Sprintf("#%d", m.itemID)),
		"",
		label(fieldName, "") + m.name.View(),
		label(fieldDone, "") + box + " " + m.tr.T(i18n.Completed),
		"",
		label(fieldMemo, m.tr.T(i18n.Memo)),
		m.memo.View(),
		"",
		label(fieldImage, m.tr.T(i18n.Image)),
		"  " + m.imageLine(),
		"  " + m.path.View(),
		"",
		m.help.View(m.keys),
	}
	return ui.Panel(lines)
}

func (m *detailView) imageLine() string {
	t := ui.Current()
	switch {
	case m.imageFile != nil:
		return fmt.Sprintf("%s (%s) %s", m.imageFile.name,
			humanize.IBytes(uint64(len(m.imageFile.data))),
			t.Pending.Render(m.tr.T(i18n.Staged)))
	case m.imagePreview != "":
		return ui.Truncate(m.imagePreview, m.width-8)
	default:
		return t.Muted.Render(m.tr.T(i18n.NoImage))
	}
}

// dataURI renders data as a data: URL for local preview.
func dataURI(name string, data []byte) string {
	return "data:" + api.ImageContentType(name, data) + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// errIsLocal reports whether err was raised before any request was sent.
func errIsLocal(err error) bool {
	return errors.Is(err, model.ErrInvalidFileName) || errors.Is(err, model.ErrFileTooLarge)
}
