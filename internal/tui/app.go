// Package tui renders the people-picker panes: the entry picker, the group
// selector, and the group editor. Every View call rebuilds its pane from
// state; nothing is diffed incrementally.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mkel/solidgroups/internal/config"
	"github.com/mkel/solidgroups/internal/contacts"
	"github.com/mkel/solidgroups/internal/graph"
)

// App ties together the panes.
type App struct {
	ctx     context.Context
	cfg     config.Config
	store   *graph.Store
	fetch   *graph.Fetcher
	locator *contacts.Locator

	state     appState
	typeIndex string
	resolving bool
	spin      spinner.Model

	// picker
	book       *contacts.AddressBook
	selected   *contacts.Group
	picked     *contacts.Group // final selection reported on quit
	resolveErr string
	createErr  string

	// selector
	groups      []contacts.Group
	rows        []groupRow
	filter      string
	groupCursor int
	selectorErr string

	// editor
	editor       *contacts.Editor
	members      []contacts.Person
	nameInput    textinput.Model
	dropInput    textinput.Model
	focus        editorFocus
	memberCursor int
	editorErr    string

	status string
}

type appState string

const (
	statePicker   appState = "picker"
	stateSelector appState = "selector"
	stateEditor   appState = "editor"
)

type editorFocus int

const (
	focusDrop editorFocus = iota
	focusName
	focusMembers
)

func New(ctx context.Context, cfg config.Config, store *graph.Store, fetch *graph.Fetcher, locator *contacts.Locator, typeIndex string) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	name := textinput.New()
	name.Placeholder = "group name"
	name.CharLimit = 128
	name.Width = 40

	drop := textinput.New()
	drop.Placeholder = "drop or paste an identifier URL and press enter"
	drop.CharLimit = 512
	drop.Width = 60

	return &App{
		ctx:       ctx,
		cfg:       cfg,
		store:     store,
		fetch:     fetch,
		locator:   locator,
		state:     statePicker,
		typeIndex: typeIndex,
		spin:      sp,
		nameInput: name,
		dropInput: drop,
	}
}

// Picked returns the group the user settled on, nil when they quit without
// choosing.
func (a *App) Picked() *contacts.Group { return a.picked }

func (a *App) Init() tea.Cmd {
	if a.typeIndex == "" {
		a.resolveErr = "no type index configured"
		return nil
	}
	a.resolving = true
	return tea.Batch(a.resolveCmd(), a.spin.Tick)
}

// messages

type resolvedMsg contacts.AddressBook

type resolveFailedMsg struct{ err error }

type groupsMsg []contacts.Group

type groupListFailedMsg struct{ err error }

type groupCreatedMsg contacts.Group

type createFailedMsg struct{ err error }

type membersMsg []contacts.Person

type memberChangedMsg struct {
	Kind   contacts.ChangeKind
	Member contacts.Person
	Err    error
}

type syncedMsg struct {
	applied int
	err     error
}

// commands

func (a *App) resolveCmd() tea.Cmd {
	return func() tea.Msg {
		book, err := a.locator.Resolve(a.ctx, a.typeIndex)
		if err != nil {
			return resolveFailedMsg{err}
		}
		return resolvedMsg(book)
	}
}

func (a *App) loadGroupsCmd() tea.Cmd {
	book := *a.book
	return func() tea.Msg {
		groups, err := a.locator.LoadGroups(a.ctx, book)
		if err != nil {
			return groupListFailedMsg{err}
		}
		return groupsMsg(groups)
	}
}

func (a *App) createGroupCmd() tea.Cmd {
	book := *a.book
	return func() tea.Msg {
		group, err := a.locator.CreateGroup(a.ctx, book)
		if err != nil {
			return createFailedMsg{err}
		}
		return groupCreatedMsg(group)
	}
}

// openGroupCmd fetches the group's own document plus each member's document,
// then hands the member projections to the editor pane. Individual member
// fetch failures degrade to bracketed identifiers, not errors.
func (a *App) openGroupCmd(group contacts.Group) tea.Cmd {
	return func() tea.Msg {
		if err := a.fetch.Load(a.ctx, group.Doc); err != nil {
			return groupListFailedMsg{err}
		}
		ed := contacts.NewEditor(a.store, a.fetch, a.locator.Patch, group)
		people := make([]contacts.Person, 0)
		for _, m := range ed.Members() {
			people = append(people, contacts.FetchPerson(a.ctx, a.store, a.fetch, m))
		}
		return membersMsg(people)
	}
}

func (a *App) addMemberCmd(identifier string) tea.Cmd {
	return func() tea.Msg {
		member, err := a.editor.AddMember(a.ctx, identifier)
		if err != nil {
			return memberChangedMsg{Kind: contacts.ChangeAdded, Member: contacts.Person{Node: graph.IRI(identifier)}, Err: err}
		}
		return memberChangedMsg{Kind: contacts.ChangeAdded, Member: contacts.PersonView(a.store, member)}
	}
}

func (a *App) removeMemberCmd(p contacts.Person) tea.Cmd {
	return func() tea.Msg {
		if err := a.editor.RemoveMember(p.Node); err != nil {
			return memberChangedMsg{Kind: contacts.ChangeRemoved, Member: p, Err: err}
		}
		return memberChangedMsg{Kind: contacts.ChangeRemoved, Member: p}
	}
}

func (a *App) syncCmd() tea.Cmd {
	n := a.editor.PendingCount()
	return func() tea.Msg {
		if err := a.editor.Sync(a.ctx); err != nil {
			return syncedMsg{err: err}
		}
		return syncedMsg{applied: n}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		switch a.state {
		case stateSelector:
			return a.handleSelectorKey(m)
		case stateEditor:
			return a.handleEditorKey(m)
		default:
			return a.handlePickerKey(m)
		}

	case spinner.TickMsg:
		if !a.resolving {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(m)
		return a, cmd

	case resolvedMsg:
		book := contacts.AddressBook(m)
		a.book = &book
		a.resolving = false
		a.resolveErr = ""
	case resolveFailedMsg:
		a.resolving = false
		a.resolveErr = m.err.Error()

	case groupsMsg:
		a.groups = []contacts.Group(m)
		a.selectorErr = ""
		a.refreshRows()
	case groupListFailedMsg:
		a.selectorErr = m.err.Error()

	case groupCreatedMsg:
		group := contacts.Group(m)
		a.selected = &group
		a.createErr = ""
		a.openEditor(group)
		a.status = "created " + group.Node.Value
		return a, a.openGroupCmd(group)
	case createFailedMsg:
		// creation failed, but the address book is still resolved; keep the
		// picker actions available and show the error next to them
		a.createErr = m.err.Error()
		a.status = ""

	case membersMsg:
		a.members = []contacts.Person(m)
		if a.memberCursor >= len(a.members) {
			a.memberCursor = 0
		}
	case memberChangedMsg:
		if m.Err != nil {
			// inline error naming the member; the pane stays up
			a.editorErr = m.Err.Error()
		} else {
			a.editorErr = ""
			a.status = string(m.Kind) + " " + m.Member.DisplayName()
		}
		a.refreshMembers()

	case syncedMsg:
		if m.err != nil {
			a.editorErr = m.err.Error()
		} else {
			a.editorErr = ""
			a.status = fmt.Sprintf("synchronized %d change(s)", m.applied)
		}
	}
	return a, nil
}

func (a *App) handlePickerKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	}
	if a.selected != nil {
		switch m.String() {
		case "enter":
			a.picked = a.selected
			return a, tea.Quit
		case "e":
			group := *a.selected
			a.openEditor(group)
			return a, a.openGroupCmd(group)
		case "c":
			// clear the selection and fall through to discovery
			a.selected = nil
			a.status = ""
			if a.book == nil && a.resolveErr == "" {
				a.resolving = true
				return a, tea.Batch(a.resolveCmd(), a.spin.Tick)
			}
		}
		return a, nil
	}
	switch m.String() {
	case "r":
		if a.resolveErr != "" {
			a.resolveErr = ""
			a.resolving = true
			return a, tea.Batch(a.resolveCmd(), a.spin.Tick)
		}
	case "p":
		if a.book != nil {
			a.state = stateSelector
			a.filter = ""
			a.groupCursor = 0
			a.selectorErr = ""
			return a, a.loadGroupsCmd()
		}
	case "n":
		if a.book != nil {
			a.createErr = ""
			a.status = "creating group..."
			return a, a.createGroupCmd()
		}
	}
	return a, nil
}

func (a *App) handleSelectorKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.state = statePicker
		a.status = ""
		return a, nil
	case "up":
		if a.groupCursor > 0 {
			a.groupCursor--
		}
		return a, nil
	case "down":
		if a.groupCursor < len(a.rows)-1 {
			a.groupCursor++
		}
		return a, nil
	case "enter":
		if a.groupCursor < len(a.rows) {
			group := a.rows[a.groupCursor].group
			a.selected = &group
			a.state = statePicker
			a.status = ""
		}
		return a, nil
	}
	switch m.Type {
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if len(a.filter) > 0 {
			a.filter = a.filter[:len(a.filter)-1]
			a.refreshRows()
		}
	case tea.KeySpace:
		a.filter += " "
		a.refreshRows()
	case tea.KeyRunes:
		a.filter += string(m.Runes)
		a.refreshRows()
	}
	return a, nil
}

func (a *App) handleEditorKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "esc", "ctrl+d":
		// done editing: hand the group back to the picker
		a.state = statePicker
		a.status = ""
		return a, nil
	case "tab":
		a.cycleFocus()
		return a, nil
	}

	switch a.focus {
	case focusDrop:
		if m.Type == tea.KeyEnter {
			value := strings.TrimSpace(a.dropInput.Value())
			a.dropInput.SetValue("")
			if value == "" {
				return a, nil
			}
			// dropped identifiers are processed in the order given
			var cmds []tea.Cmd
			for _, u := range strings.Fields(value) {
				cmds = append(cmds, a.addMemberCmd(u))
			}
			return a, tea.Sequence(cmds...)
		}
		var cmd tea.Cmd
		a.dropInput, cmd = a.dropInput.Update(m)
		return a, cmd

	case focusName:
		if m.Type == tea.KeyEnter {
			name := strings.TrimSpace(a.nameInput.Value())
			if name == "" {
				a.status = "enter a name"
				return a, nil
			}
			a.editor.Rename(name)
			a.status = "renamed to " + name
			return a, nil
		}
		var cmd tea.Cmd
		a.nameInput, cmd = a.nameInput.Update(m)
		return a, cmd

	default: // member list
		switch m.String() {
		case "up", "k":
			if a.memberCursor > 0 {
				a.memberCursor--
			}
		case "down", "j":
			if a.memberCursor < len(a.members)-1 {
				a.memberCursor++
			}
		case "x", "backspace", "delete":
			if a.memberCursor < len(a.members) {
				return a, a.removeMemberCmd(a.members[a.memberCursor])
			}
		case "s":
			if a.editor.PendingCount() == 0 {
				a.status = "nothing to synchronize"
				return a, nil
			}
			a.status = "synchronizing..."
			return a, a.syncCmd()
		}
		return a, nil
	}
}

func (a *App) cycleFocus() {
	a.dropInput.Blur()
	a.nameInput.Blur()
	switch a.focus {
	case focusDrop:
		a.focus = focusName
		a.nameInput.Focus()
	case focusName:
		a.focus = focusMembers
	default:
		a.focus = focusDrop
		a.dropInput.Focus()
	}
}

func (a *App) openEditor(group contacts.Group) {
	a.editor = contacts.NewEditor(a.store, a.fetch, a.locator.Patch, group)
	a.members = nil
	a.memberCursor = 0
	a.editorErr = ""
	a.state = stateEditor
	a.focus = focusDrop
	a.dropInput.SetValue("")
	a.dropInput.Focus()
	if name, ok := a.editor.Name(); ok {
		a.nameInput.SetValue(name)
	} else {
		a.nameInput.SetValue("")
	}
}

// refreshMembers reprojects the member rows from the store after a change.
func (a *App) refreshMembers() {
	if a.editor == nil {
		return
	}
	people := make([]contacts.Person, 0)
	for _, m := range a.editor.Members() {
		people = append(people, contacts.PersonView(a.store, m))
	}
	a.members = people
	if a.memberCursor >= len(a.members) {
		a.memberCursor = 0
	}
}
