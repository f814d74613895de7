package tui

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/google/uuid"
	"github.com/hylla/dragboard/internal/app"
	"github.com/hylla/dragboard/internal/domain"
)

// Board is the store surface the model drives.
type Board interface {
	Snapshot() app.Snapshot
	AddColumn(domain.Column) error
	RenameColumn(columnID, title string) error
	DeleteColumn(columnID string) error
	AddTask(domain.Task) error
	UpdateTask(taskID, title, description string, dueAt *time.Time) error
	DeleteTask(taskID, columnID string) error
	DragStart(domain.DragEvent) error
	DragOver(domain.DragEvent) error
	DragEnd(domain.DragEvent) error
}

// inputMode represents a selectable mode.
type inputMode int

const (
	modeNone inputMode = iota
	modeEditTitle
	modeDetails
)

// headerRow is the task cursor value that selects the column itself.
const headerRow = -1

// dragState tracks one keyboard drag gesture.
type dragState struct {
	kind       domain.ItemKind
	id         string
	overID     string
	overKind   domain.ItemKind
	overColumn int
}

func (d dragState) active() bool {
	return d.id != ""
}

// Model is the Bubble Tea board.
type Model struct {
	board    Board
	newID    func() string
	copyText func(string) error

	ready  bool
	width  int
	height int
	status string

	help     help.Model
	keys     keyMap
	display  DisplayConfig
	defaults Defaults
	markdown *markdownRenderer

	snap           app.Snapshot
	selectedColumn int
	selectedTask   int

	drag dragState

	mode          inputMode
	input         textinput.Model
	editKind      domain.ItemKind
	editID        string
	detailsTaskID string
}

// boardChangedMsg carries a snapshot published by the store.
type boardChangedMsg struct {
	snap app.Snapshot
}

// clipboardMsg reports the outcome of one copy.
type clipboardMsg struct {
	id  string
	err error
}

// BoardChanged wraps a published snapshot for Program.Send.
func BoardChanged(snap app.Snapshot) tea.Msg {
	return boardChangedMsg{snap: snap}
}

// NewModel constructs a board model over b.
func NewModel(b Board, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		board:        b,
		newID:        uuid.NewString,
		copyText:     clipboard.WriteAll,
		status:       "loading...",
		help:         h,
		keys:         newKeyMap(),
		display:      DefaultDisplayConfig(),
		defaults:     DefaultDefaults(),
		markdown:     &markdownRenderer{style: "dark"},
		selectedTask: headerRow,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init loads the first snapshot.
func (m Model) Init() tea.Cmd {
	return m.loadBoard
}

func (m Model) loadBoard() tea.Msg {
	return boardChangedMsg{snap: m.board.Snapshot()}
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case boardChangedMsg:
		if msg.snap.Version() < m.snap.Version() {
			return m, nil
		}
		m.snap = msg.snap
		m.clampSelection()
		if m.status == "" || m.status == "loading..." {
			m.status = "ready"
		}
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.status = "copy failed: " + msg.err.Error()
			return m, nil
		}
		m.status = "copied " + msg.id
		return m, nil

	case tea.KeyPressMsg:
		switch {
		case m.mode != modeNone:
			return m.handleInputModeKey(msg)
		case m.drag.active():
			return m.handleDragKey(msg)
		default:
			return m.handleNormalModeKey(msg)
		}

	default:
		return m, nil
	}
}

func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		if m.help.ShowAll {
			m.status = "help"
		} else {
			m.status = "ready"
		}
		return m, nil
	case key.Matches(msg, m.keys.cancel):
		if m.help.ShowAll {
			m.help.ShowAll = false
			m.status = "ready"
		}
		return m, nil
	case key.Matches(msg, m.keys.moveLeft):
		if m.selectedColumn > 0 {
			m.selectedColumn--
			m.clampSelection()
		}
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		if m.selectedColumn < m.snap.ColumnCount()-1 {
			m.selectedColumn++
			m.clampSelection()
		}
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		if m.selectedTask < len(m.currentColumnTasks())-1 {
			m.selectedTask++
		}
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		if m.selectedTask > headerRow {
			m.selectedTask--
		}
		return m, nil
	case key.Matches(msg, m.keys.grab):
		return m.startDrag()
	case key.Matches(msg, m.keys.drop):
		m.status = "nothing grabbed"
		return m, nil
	case key.Matches(msg, m.keys.addColumn):
		return m.addColumn()
	case key.Matches(msg, m.keys.addTask):
		return m.addTask()
	case key.Matches(msg, m.keys.edit):
		cmd := m.startEditTitle()
		return m, cmd
	case key.Matches(msg, m.keys.delete):
		return m.deleteSelection()
	case key.Matches(msg, m.keys.copyID):
		return m.copySelectionID()
	case key.Matches(msg, m.keys.details):
		task, ok := m.currentTask()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		m.mode = modeDetails
		m.detailsTaskID = task.ID
		m.status = "details"
		return m, nil
	default:
		return m, nil
	}
}

// handleDragKey turns movement keys into drag-over events for the grabbed item.
func (m Model) handleDragKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		next, _ := m.endDrag(false)
		return next, tea.Quit
	case key.Matches(msg, m.keys.cancel):
		return m.endDrag(false)
	case key.Matches(msg, m.keys.drop):
		return m.endDrag(true)
	case key.Matches(msg, m.keys.moveLeft):
		return m.dragHorizontal(-1)
	case key.Matches(msg, m.keys.moveRight):
		return m.dragHorizontal(1)
	case key.Matches(msg, m.keys.moveUp):
		return m.dragVertical(-1)
	case key.Matches(msg, m.keys.moveDown):
		return m.dragVertical(1)
	default:
		return m, nil
	}
}

func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeDetails {
		switch {
		case msg.String() == "esc" || key.Matches(msg, m.keys.details) || key.Matches(msg, m.keys.quit):
			m.mode = modeNone
			m.detailsTaskID = ""
			m.status = "ready"
		}
		return m, nil
	}

	switch {
	case msg.Code == tea.KeyEscape || msg.String() == "esc":
		m.mode = modeNone
		m.editID = ""
		m.status = "cancelled"
		return m, nil
	case msg.Code == tea.KeyEnter || msg.String() == "enter":
		return m.submitEditTitle()
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) startDrag() (tea.Model, tea.Cmd) {
	column, ok := m.currentColumn()
	if !ok {
		m.status = "no column selected"
		return m, nil
	}
	ev := domain.DragEvent{ActiveID: column.ID, ActiveKind: domain.KindColumn}
	label := column.Title
	if task, ok := m.currentTask(); ok {
		ev = domain.DragEvent{ActiveID: task.ID, ActiveKind: domain.KindTask}
		label = task.Title
	}
	if err := m.board.DragStart(ev); err != nil {
		return m.finish("", err)
	}
	m.drag = dragState{kind: ev.ActiveKind, id: ev.ActiveID, overColumn: m.selectedColumn}
	return m.finish(fmt.Sprintf("dragging %s %q", ev.ActiveKind, truncate(label, 28)), nil)
}

// dragHorizontal points a column drag at a neighbour column, or reparents a
// task drag onto the top of the neighbour column.
func (m Model) dragHorizontal(delta int) (tea.Model, tea.Cmd) {
	order := m.snap.ColumnOrder()
	if m.drag.kind == domain.KindColumn {
		target := clamp(m.drag.overColumn+delta, 0, len(order)-1)
		if target == m.drag.overColumn {
			return m, nil
		}
		m.drag.overColumn = target
		m.drag.overID = order[target]
		m.drag.overKind = domain.KindColumn
		m.selectedColumn = target
		m.selectedTask = headerRow
		m.status = "over " + m.columnTitle(order[target])
		return m, nil
	}

	task, ok := m.snap.Task(m.drag.id)
	if !ok {
		return m.endDrag(false)
	}
	target := indexOf(order, task.ColumnID) + delta
	if target < 0 || target >= len(order) {
		return m, nil
	}
	return m.hoverTask(order[target], domain.KindColumn)
}

// dragVertical swaps a task drag past its neighbour in the same column.
func (m Model) dragVertical(delta int) (tea.Model, tea.Cmd) {
	if m.drag.kind != domain.KindTask {
		return m, nil
	}
	task, ok := m.snap.Task(m.drag.id)
	if !ok {
		return m.endDrag(false)
	}
	column, _ := m.snap.Column(task.ColumnID)
	target := column.IndexOf(task.ID) + delta
	if target < 0 || target >= len(column.TaskIDs) {
		return m, nil
	}
	return m.hoverTask(column.TaskIDs[target], domain.KindTask)
}

// hoverTask moves the pointer of a task drag over one target and then lets it
// settle back over the dragged card, which now sits under the cursor.
func (m Model) hoverTask(overID string, overKind domain.ItemKind) (tea.Model, tea.Cmd) {
	ev := domain.DragEvent{ActiveID: m.drag.id, ActiveKind: domain.KindTask, OverID: overID, OverKind: overKind}
	if err := m.board.DragOver(ev); err != nil {
		return m.finish("", err)
	}
	settle := domain.DragEvent{ActiveID: m.drag.id, ActiveKind: domain.KindTask, OverID: m.drag.id, OverKind: domain.KindTask}
	if err := m.board.DragOver(settle); err != nil {
		return m.finish("", err)
	}
	m.drag.overID = settle.OverID
	m.drag.overKind = settle.OverKind
	next, cmd := m.finish("", nil)
	out := next.(Model)
	out.focusTask(out.drag.id)
	out.status = "moving " + truncate(out.taskTitle(out.drag.id), 28)
	return out, cmd
}

// endDrag ends the gesture. A drop sends the last pointer target; a cancel
// sends none.
func (m Model) endDrag(drop bool) (tea.Model, tea.Cmd) {
	ended := m.drag
	m.drag = dragState{}
	ev := domain.DragEvent{ActiveID: ended.id, ActiveKind: ended.kind}
	if drop {
		ev.OverID = ended.overID
		ev.OverKind = ended.overKind
	}
	err := m.board.DragEnd(ev)
	status := "drag cancelled"
	if drop {
		status = "dropped"
	}
	next, cmd := m.finish(status, err)
	out := next.(Model)
	if ended.kind == domain.KindTask {
		out.focusTask(ended.id)
	} else {
		out.focusColumn(ended.id)
	}
	return out, cmd
}

func (m Model) addColumn() (tea.Model, tea.Cmd) {
	title := m.defaults.ColumnTitle(m.snap.ColumnCount() + 1)
	column, err := domain.NewColumn(m.newID(), title)
	if err == nil {
		err = m.board.AddColumn(column)
	}
	next, cmd := m.finish(fmt.Sprintf("added %q", title), err)
	out := next.(Model)
	if err == nil {
		out.focusColumn(column.ID)
	}
	return out, cmd
}

func (m Model) addTask() (tea.Model, tea.Cmd) {
	column, ok := m.currentColumn()
	if !ok {
		m.status = "add a column first"
		return m, nil
	}
	title := m.defaults.TaskTitle(m.selectedColumn+1, len(column.TaskIDs)+1)
	task, err := domain.NewTask(domain.TaskInput{
		ID:          m.newID(),
		ColumnID:    column.ID,
		Title:       title,
		Description: m.defaults.TaskDescription,
	})
	if err == nil {
		err = m.board.AddTask(task)
	}
	next, cmd := m.finish(fmt.Sprintf("added %q", title), err)
	out := next.(Model)
	if err == nil {
		out.focusTask(task.ID)
	}
	return out, cmd
}

func (m *Model) startEditTitle() tea.Cmd {
	if task, ok := m.currentTask(); ok {
		m.editKind, m.editID = domain.KindTask, task.ID
		m.input = newModalInput("title: ", "task title", task.Title, 120)
	} else if column, ok := m.currentColumn(); ok {
		m.editKind, m.editID = domain.KindColumn, column.ID
		m.input = newModalInput("title: ", "column title", column.Title, 80)
	} else {
		m.status = "nothing to edit"
		return nil
	}
	m.mode = modeEditTitle
	m.status = "edit title"
	return m.input.Focus()
}

func (m Model) submitEditTitle() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(m.input.Value())
	kind, id := m.editKind, m.editID
	m.mode = modeNone
	m.editID = ""
	if title == "" {
		m.status = "title required"
		return m, nil
	}
	if kind == domain.KindColumn {
		return m.finish("column renamed", m.board.RenameColumn(id, title))
	}
	task, ok := m.snap.Task(id)
	if !ok {
		return m.finish("", m.board.UpdateTask(id, title, "", nil))
	}
	return m.finish("task renamed", m.board.UpdateTask(id, title, task.Description, task.DueAt))
}

func (m Model) deleteSelection() (tea.Model, tea.Cmd) {
	if task, ok := m.currentTask(); ok {
		return m.finish(fmt.Sprintf("deleted %q", truncate(task.Title, 28)), m.board.DeleteTask(task.ID, task.ColumnID))
	}
	column, ok := m.currentColumn()
	if !ok {
		m.status = "nothing to delete"
		return m, nil
	}
	return m.finish(fmt.Sprintf("deleted %q", truncate(column.Title, 28)), m.board.DeleteColumn(column.ID))
}

func (m Model) copySelectionID() (tea.Model, tea.Cmd) {
	id := ""
	if task, ok := m.currentTask(); ok {
		id = task.ID
	} else if column, ok := m.currentColumn(); ok {
		id = column.ID
	}
	if id == "" {
		m.status = "nothing to copy"
		return m, nil
	}
	copyText := m.copyText
	return m, func() tea.Msg {
		return clipboardMsg{id: id, err: copyText(id)}
	}
}

// finish refreshes the snapshot after a store call and reports its outcome.
func (m Model) finish(status string, err error) (tea.Model, tea.Cmd) {
	m.snap = m.board.Snapshot()
	m.clampSelection()
	switch {
	case errors.Is(err, app.ErrReferenceNotFound):
		m.status = "not found: " + err.Error()
	case err != nil:
		m.status = "error: " + err.Error()
	case status != "":
		m.status = status
	}
	return m, nil
}

func (m Model) currentColumn() (domain.Column, bool) {
	order := m.snap.ColumnOrder()
	if m.selectedColumn < 0 || m.selectedColumn >= len(order) {
		return domain.Column{}, false
	}
	return m.snap.Column(order[m.selectedColumn])
}

func (m Model) currentColumnTasks() []domain.Task {
	column, ok := m.currentColumn()
	if !ok {
		return nil
	}
	return m.snap.TasksInColumn(column.ID)
}

func (m Model) currentTask() (domain.Task, bool) {
	tasks := m.currentColumnTasks()
	if m.selectedTask < 0 || m.selectedTask >= len(tasks) {
		return domain.Task{}, false
	}
	return tasks[m.selectedTask], true
}

func (m *Model) clampSelection() {
	m.selectedColumn = clamp(m.selectedColumn, 0, m.snap.ColumnCount()-1)
	m.selectedTask = clamp(m.selectedTask, headerRow, len(m.currentColumnTasks())-1)
}

func (m *Model) focusTask(taskID string) {
	task, ok := m.snap.Task(taskID)
	if !ok {
		return
	}
	m.selectedColumn = indexOf(m.snap.ColumnOrder(), task.ColumnID)
	column, _ := m.snap.Column(task.ColumnID)
	m.selectedTask = column.IndexOf(taskID)
	m.clampSelection()
}

func (m *Model) focusColumn(columnID string) {
	if idx := indexOf(m.snap.ColumnOrder(), columnID); idx >= 0 {
		m.selectedColumn = idx
		m.selectedTask = headerRow
	}
	m.clampSelection()
}

func (m Model) columnTitle(columnID string) string {
	column, _ := m.snap.Column(columnID)
	return column.Title
}

func (m Model) taskTitle(taskID string) string {
	task, _ := m.snap.Task(taskID)
	return task.Title
}

// View renders the board.
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render draws the full screen as a string.
func (m Model) render() string {
	if !m.ready {
		return "loading..."
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	header := titleStyle.Render("dragboard") + statusStyle.Render("  ["+m.modeLabel()+"]")
	header += statusStyle.Render(fmt.Sprintf("  %d columns * %d tasks", m.snap.ColumnCount(), m.snap.TaskCount()))

	body := m.renderColumns(accent, muted, dim)
	if m.snap.ColumnCount() == 0 {
		body = lipgloss.NewStyle().Foreground(muted).Render(fmt.Sprintf("No columns yet. Press %s to add one.", m.keys.addColumn.Help().Key))
	}

	sections := []string{header, "", body}
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	if m.mode == modeEditTitle {
		sections = append(sections, m.input.View())
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}
	fullContent := content + "\n" + helpLine

	overlay := ""
	switch {
	case m.help.ShowAll:
		overlay = m.renderHelpOverlay(accent, muted)
	case m.mode == modeDetails:
		overlay = m.renderDetailsOverlay(accent, muted, max(24, m.width-16))
	}
	if overlay != "" {
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, overlayHeight))
	}
	return fullContent
}

func (m Model) renderColumns(accent, muted, dim color.Color) string {
	colWidth := m.display.ColumnWidth
	baseColStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(0, 1).
		MarginRight(1).
		Width(colWidth)
	selColStyle := baseColStyle.BorderForeground(accent)
	dragColStyle := baseColStyle.BorderStyle(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("212"))
	colTitle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	draggedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Bold(true)
	subStyle := lipgloss.NewStyle().Foreground(muted)
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))

	inner := max(1, colWidth-4)
	views := make([]string, 0, m.snap.ColumnCount())
	for colIdx, column := range m.snap.OrderedColumns() {
		heading := truncate(fmt.Sprintf("%s (%d)", column.Title, len(column.TaskIDs)), inner)
		switch {
		case m.drag.active() && m.drag.kind == domain.KindColumn && m.drag.id == column.ID:
			heading = draggedStyle.Render(heading)
		case colIdx == m.selectedColumn && m.selectedTask == headerRow:
			heading = selectedStyle.Render("│ " + heading)
		default:
			heading = colTitle.Render(heading)
		}
		lines := []string{heading, ""}

		tasks := m.snap.TasksInColumn(column.ID)
		if len(tasks) == 0 {
			lines = append(lines, emptyStyle.Render("(empty)"))
		}
		for taskIdx, task := range tasks {
			selected := colIdx == m.selectedColumn && taskIdx == m.selectedTask
			title := truncate(task.Title, inner-2)
			switch {
			case m.drag.active() && m.drag.id == task.ID:
				title = draggedStyle.Render("≡ " + title)
			case selected:
				title = selectedStyle.Render("│ " + title)
			default:
				title = "  " + title
			}
			lines = append(lines, title)
			if sub := m.taskSecondary(task); sub != "" {
				lines = append(lines, "  "+subStyle.Render(truncate(sub, inner-2)))
			}
		}

		style := baseColStyle
		switch {
		case m.drag.active() && m.drag.kind == domain.KindColumn && colIdx == m.drag.overColumn:
			style = dragColStyle
		case colIdx == m.selectedColumn:
			style = selColStyle
		}
		views = append(views, style.Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// taskSecondary returns the muted line under a task title.
func (m Model) taskSecondary(task domain.Task) string {
	parts := make([]string, 0, 2)
	if m.display.ShowDueDate && task.DueAt != nil {
		parts = append(parts, "due "+task.DueAt.Format("2006-01-02"))
	}
	if m.display.ShowDescription {
		if line, _, _ := strings.Cut(strings.TrimSpace(task.Description), "\n"); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " * ")
}

func (m Model) renderHelpOverlay(accent, muted color.Color) string {
	helpBubble := m.help
	helpBubble.ShowAll = true
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Foreground(muted).
		Padding(1, 2).
		Render(helpBubble.View(m.keys))
}

func (m Model) renderDetailsOverlay(accent, muted color.Color, maxWidth int) string {
	task, ok := m.snap.Task(m.detailsTaskID)
	if !ok {
		return ""
	}
	width := min(maxWidth, 72)
	labelStyle := lipgloss.NewStyle().Foreground(muted)
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(accent).Render(task.Title),
		labelStyle.Render("id: ") + task.ID,
		labelStyle.Render("column: ") + m.columnTitle(task.ColumnID),
	}
	if task.DueAt != nil {
		lines = append(lines, labelStyle.Render("due: ")+task.DueAt.Format(time.RFC3339))
	}
	if description := m.markdown.render(task.Description, width-4); description != "" {
		lines = append(lines, "", description)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(1, 2).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

func (m Model) modeLabel() string {
	switch {
	case m.mode == modeEditTitle:
		return "edit"
	case m.mode == modeDetails:
		return "details"
	case m.drag.active():
		return "drag " + string(m.drag.kind)
	default:
		return "board"
	}
}

// newModalInput constructs modal input.
func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}

func indexOf(ids []string, id string) int {
	for idx, candidate := range ids {
		if candidate == id {
			return idx
		}
	}
	return -1
}

// clamp clamps v into [minV, maxV]; an empty range yields minV.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines pads or cuts content to exactly maxLines lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		lines = append(lines, make([]string, maxLines-len(lines))...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent centers overlay above base.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centered := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	overlayLayer := lipgloss.NewLayer(centered).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// truncate cuts s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
