package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/charmbracelet/lipgloss"

	"github.com/mkel/solidgroups/internal/contacts"
	"github.com/mkel/solidgroups/internal/graph"
)

// styles
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

func (a *App) View() string {
	var body string
	switch a.state {
	case stateSelector:
		body = a.renderSelector()
	case stateEditor:
		body = a.renderEditor()
	default:
		body = a.renderPicker()
	}
	if a.status != "" {
		body += "\n" + dimStyle.Render(a.status)
	}
	return body
}

func (a *App) renderPicker() string {
	title := titleStyle.Render("Group Picker")
	out := title + "\n"

	if a.selected != nil {
		out += "Selected group:\n  " + a.renderGroupSummary(*a.selected) + "\n"
		out += fmt.Sprintf("  %d member(s)\n", len(a.memberNodes(*a.selected)))
		out += "[enter] Use this group  [e] Edit  [c] Change group  [q] Quit"
		return out
	}

	if a.resolving {
		out += a.spin.View() + " looking for your address book...\n"
		out += "[q] Quit"
		return out
	}

	if a.resolveErr != "" {
		// inline error block; the rest of the pane stays unset
		out += errStyle.Render("Could find your groups.") + "\n"
		out += errStyle.Render(a.resolveErr) + "\n"
		out += "[r] Retry  [q] Quit"
		return out
	}

	if a.book != nil {
		out += "Address book: " + a.book.BaseURL + "\n"
		if a.createErr != "" {
			out += errStyle.Render(a.createErr) + "\n"
		}
		out += "[p] Pick an existing group  [n] Create a new group  [q] Quit"
		return out
	}

	out += "No type index configured. Pass one as an argument or set source.type_index.\n"
	out += "[q] Quit"
	return out
}

type groupRow struct {
	group contacts.Group
	label string
}

// refreshRows rebuilds the selector rows, ranking by the fuzzy filter when
// one is typed.
func (a *App) refreshRows() {
	rows := make([]groupRow, 0, len(a.groups))
	for _, g := range a.groups {
		rows = append(rows, groupRow{group: g, label: a.groupLabel(g)})
	}
	query := strings.ToLower(strings.TrimSpace(a.filter))
	if query != "" {
		type ranked struct {
			row  groupRow
			sub  bool
			dist int
		}
		rs := make([]ranked, 0, len(rows))
		for _, r := range rows {
			label := strings.ToLower(r.label)
			rs = append(rs, ranked{
				row:  r,
				sub:  strings.Contains(label, query),
				dist: levenshtein.ComputeDistance(query, label),
			})
		}
		sort.SliceStable(rs, func(i, j int) bool {
			if rs[i].sub != rs[j].sub {
				return rs[i].sub
			}
			return rs[i].dist < rs[j].dist
		})
		rows = rows[:0]
		for _, r := range rs {
			rows = append(rows, r.row)
		}
	}
	a.rows = rows
	if a.groupCursor >= len(a.rows) {
		a.groupCursor = 0
	}
}

func (a *App) renderSelector() string {
	title := titleStyle.Render("Pick a Group")
	out := title + "\n"
	out += "filter: " + a.filter + "\n"

	if a.selectorErr != "" {
		out += errStyle.Render(a.selectorErr) + "\n"
		out += "[esc] Back  [ctrl+c] Quit"
		return out
	}

	if len(a.rows) == 0 {
		out += dimStyle.Render("No groups yet. Go back and create one.") + "\n"
	}
	for i, r := range a.rows {
		marker := " "
		if i == a.groupCursor {
			marker = "▶"
		}
		out += fmt.Sprintf("%s %s\n", marker, r.label)
	}
	out += "[enter] Select  [esc] Back  [ctrl+c] Quit"
	return out
}

func (a *App) renderEditor() string {
	group := a.editor.Group()
	title := titleStyle.Render("Edit Group - " + a.renderGroupSummary(group))
	out := title + "\n"

	focusTag := func(f editorFocus) string {
		if a.focus == f {
			return "▶"
		}
		return " "
	}

	out += focusTag(focusDrop) + " Add person: " + a.dropInput.View() + "\n"
	out += focusTag(focusName) + " Name:       " + a.nameInput.View() + "\n\n"

	if len(a.members) == 0 {
		out += dimStyle.Render("No members yet. Drop a person's identifier URL onto the field above.") + "\n"
	} else {
		for i, p := range a.members {
			cursor := " "
			if a.focus == focusMembers && i == a.memberCursor {
				cursor = "▶"
			}
			out += cursor + " " + a.renderMemberRow(p) + "\n"
		}
	}

	if a.editorErr != "" {
		out += errStyle.Render(a.editorErr) + "\n"
	}
	if n := a.editor.PendingCount(); n > 0 {
		out += dimStyle.Render(fmt.Sprintf("%d change(s) pending synchronization", n)) + "\n"
	}
	out += "[tab] Switch field  [x] Remove member  [s] Sync  [esc] Done  [ctrl+c] Quit"
	return out
}

// renderGroupSummary is the read-only group label: the name, or the
// bracketed identifier when no name is set.
func (a *App) renderGroupSummary(g contacts.Group) string {
	if name, ok := contacts.GroupName(a.store, g.Node); ok {
		return name
	}
	return "[" + g.Node.Value + "]"
}

// renderMemberRow is the read-only member line: avatar, display name, and
// the remove hint.
func (a *App) renderMemberRow(p contacts.Person) string {
	icon := a.cfg.UI.AvatarIcon
	if p.Photo != "" {
		icon = "◉"
	}
	return fmt.Sprintf("%s %s  %s", icon, p.DisplayName(), dimStyle.Render("[x] remove"))
}

func (a *App) groupLabel(g contacts.Group) string {
	return a.renderGroupSummary(g)
}

func (a *App) memberNodes(g contacts.Group) []graph.Term {
	ed := contacts.NewEditor(a.store, a.fetch, a.locator.Patch, g)
	return ed.Members()
}
