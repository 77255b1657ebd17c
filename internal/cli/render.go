package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/idilsaglam/tada/internal/i18n"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/ui"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// listPanel renders the ls output: header, progress and item lines.
func listPanel(tr *i18n.Translator, tenant string, items []model.Item, group bool) string {
	t := ui.Current()
	d, p := model.Stats(items)
	header := fmt.Sprintf("%s %s  %s %d  %s %d",
		t.Title.Render(tr.T(i18n.Title)),
		t.Muted.Render("@"+tenant),
		t.Success.Render(t.SymDone), d,
		t.Pending.Render(t.SymPending), p,
	)

	lines := []string{header, t.Muted.Render(ui.ProgressBar(d, d+p, 28)), ""}
	if group {
		lines = append(lines, groupColumns(tr, items))
	} else {
		lines = append(lines, flatLines(tr, items, 80)...)
	}
	lines = append(lines, "", t.Muted.Render(`Tip: add with `+"`tada add \"Buy milk\"`"))
	return ui.Panel(lines)
}

func flatLines(tr *i18n.Translator, items []model.Item, width int) []string {
	t := ui.Current()
	if len(items) == 0 {
		return []string{t.Muted.Render(tr.T(i18n.Empty))}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		box := t.Muted.Render(t.Box(false))
		name := it.Name
		if it.IsCompleted {
			box = t.Success.Render(t.Box(true))
			name = t.Done.Render(name)
		}
		out = append(out, ui.Truncate(fmt.Sprintf("%s %s %s",
			t.Muted.Render(fmt.Sprintf("%4d", it.ID)), box, name), width))
	}
	return out
}

const groupColWidth = 38

// groupColumns puts pending items on the left and completed on the right.
func groupColumns(tr *i18n.Translator, items []model.Item) string {
	t := ui.Current()
	pend, done := model.Partition(items)
	left := append([]string{t.Accent.Render(tr.T(i18n.Pending))}, flatLines(tr, pend, groupColWidth)...)
	right := append([]string{t.Accent.Render(tr.T(i18n.Completed))}, flatLines(tr, done, groupColWidth)...)
	return ui.Columns(left, right, groupColWidth)
}

// itemPanel renders one item for show and edit.
func itemPanel(tr *i18n.Translator, it model.Item) string {
	t := ui.Current()
	box := t.Muted.Render(t.Box(false))
	if it.IsCompleted {
		box = t.Success.Render(t.Box(true))
	}
	lines := []string{
		t.Title.Render(fmt.Sprintf("#%d", it.ID)) + " " + box + " " + it.Name,
		"",
		t.Accent.Render(tr.T(i18n.Image)),
	}
	if it.ImageURL == "" {
		lines = append(lines, t.Muted.Render(tr.T(i18n.NoImage)))
	} else {
		lines = append(lines, it.ImageURL)
	}
	lines = append(lines, "", t.Accent.Render(tr.T(i18n.Memo)))
	if memo := renderMarkdown(it.Memo, 76); memo != "" {
		lines = append(lines, memo)
	} else {
		lines = append(lines, t.Muted.Render("-"))
	}
	return ui.Panel(lines)
}

func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	style := "dark"
	if ui.Current().Name == "mono" {
		style = "notty"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
