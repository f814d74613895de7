package tui

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/hylla/dragboard/internal/app"
	"github.com/hylla/dragboard/internal/domain"
)

// newTestStore builds a store holding columns c1..cN with the listed task ids.
func newTestStore(t *testing.T, columns ...[]string) *app.Store {
	t.Helper()
	s := app.NewStore()
	for colIdx, taskIDs := range columns {
		column, err := domain.NewColumn(fmt.Sprintf("c%d", colIdx+1), fmt.Sprintf("Column %d", colIdx+1))
		if err != nil {
			t.Fatalf("NewColumn() error = %v", err)
		}
		if err := s.AddColumn(column); err != nil {
			t.Fatalf("AddColumn() error = %v", err)
		}
		for _, id := range taskIDs {
			task, err := domain.NewTask(domain.TaskInput{ID: id, ColumnID: column.ID, Title: "Title " + id, Description: "about " + id})
			if err != nil {
				t.Fatalf("NewTask() error = %v", err)
			}
			if err := s.AddTask(task); err != nil {
				t.Fatalf("AddTask() error = %v", err)
			}
		}
	}
	return s
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func assertColumnTasks(t *testing.T, s *app.Store, columnID string, want ...string) {
	t.Helper()
	column, ok := s.Snapshot().Column(columnID)
	if !ok {
		t.Fatalf("column %q missing", columnID)
	}
	if !slices.Equal(column.TaskIDs, want) {
		t.Fatalf("column %q tasks = %v, want %v", columnID, column.TaskIDs, want)
	}
}

func TestModelLoadAndNavigation(t *testing.T) {
	s := newTestStore(t, []string{"t1", "t2"}, []string{"t3"})
	m := loadReadyModel(t, NewModel(s))

	if m.snap.ColumnCount() != 2 || m.snap.TaskCount() != 3 {
		t.Fatalf("unexpected snapshot %d columns %d tasks", m.snap.ColumnCount(), m.snap.TaskCount())
	}
	if m.selectedColumn != 0 || m.selectedTask != headerRow {
		t.Fatalf("unexpected initial cursor %d/%d", m.selectedColumn, m.selectedTask)
	}

	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('j'))
	if task, ok := m.currentTask(); !ok || task.ID != "t2" {
		t.Fatalf("expected t2 selected, got %#v", task)
	}
	m = applyMsg(t, m, keyRune('l'))
	if m.selectedColumn != 1 {
		t.Fatalf("expected second column, got %d", m.selectedColumn)
	}
	if task, ok := m.currentTask(); !ok || task.ID != "t3" {
		t.Fatalf("expected selection clamped to t3, got %#v", task)
	}
	m = applyMsg(t, m, keyRune('l'))
	if m.selectedColumn != 1 {
		t.Fatalf("expected cursor to stop at last column, got %d", m.selectedColumn)
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyLeft})
	m = applyMsg(t, m, keyRune('k'))
	m = applyMsg(t, m, keyRune('k'))
	if m.selectedColumn != 0 || m.selectedTask != headerRow {
		t.Fatalf("expected header of first column, got %d/%d", m.selectedColumn, m.selectedTask)
	}
}

func TestModelKeyboardTaskDragWithinColumn(t *testing.T) {
	s := newTestStore(t, []string{"t1", "t2", "t3"})
	m := loadReadyModel(t, NewModel(s))
	m = applyMsg(t, m, keyRune('j'))

	m = applyMsg(t, m, keyRune(' '))
	if !m.drag.active() || m.drag.id != "t1" {
		t.Fatalf("expected t1 grabbed, got %#v", m.drag)
	}
	if got := s.Snapshot().ActiveTaskID(); got != "t1" {
		t.Fatalf("ActiveTaskID() = %q, want t1", got)
	}

	m = applyMsg(t, m, keyRune('j'))
	assertColumnTasks(t, s, "c1", "t2", "t1", "t3")
	m = applyMsg(t, m, keyRune('j'))
	assertColumnTasks(t, s, "c1", "t2", "t3", "t1")
	m = applyMsg(t, m, keyRune('j'))
	assertColumnTasks(t, s, "c1", "t2", "t3", "t1")
	m = applyMsg(t, m, keyRune('k'))
	assertColumnTasks(t, s, "c1", "t2", "t1", "t3")
	if task, ok := m.currentTask(); !ok || task.ID != "t1" {
		t.Fatalf("expected cursor to follow t1, got %#v", task)
	}

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.drag.active() {
		t.Fatal("expected drag to end on drop")
	}
	if got := s.Snapshot().ActiveTaskID(); got != "" {
		t.Fatalf("ActiveTaskID() after drop = %q", got)
	}
	assertColumnTasks(t, s, "c1", "t2", "t1", "t3")
	if m.status != "dropped" {
		t.Fatalf("status = %q, want dropped", m.status)
	}
}

func TestModelKeyboardTaskDragAcrossColumns(t *testing.T) {
	s := newTestStore(t, []string{"t1", "t2"}, []string{"t3"}, nil)
	m := loadReadyModel(t, NewModel(s))
	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune(' '))

	m = applyMsg(t, m, keyRune('l'))
	assertColumnTasks(t, s, "c1", "t1")
	assertColumnTasks(t, s, "c2", "t2", "t3")
	if task, _ := s.Snapshot().Task("t2"); task.ColumnID != "c2" {
		t.Fatalf("ColumnID = %q, want c2", task.ColumnID)
	}
	m = applyMsg(t, m, keyRune('j'))
	assertColumnTasks(t, s, "c2", "t3", "t2")
	m = applyMsg(t, m, keyRune('l'))
	assertColumnTasks(t, s, "c3", "t2")
	m = applyMsg(t, m, keyRune('l'))
	assertColumnTasks(t, s, "c3", "t2")
	if m.selectedColumn != 2 || m.selectedTask != 0 {
		t.Fatalf("expected cursor on t2 in third column, got %d/%d", m.selectedColumn, m.selectedTask)
	}

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if err := app.CheckInvariants(s.Snapshot()); err != nil {
		t.Fatalf("CheckInvariants() error = %v", err)
	}
	if m.drag.active() {
		t.Fatal("expected drag to end")
	}
}

func TestModelKeyboardColumnDrag(t *testing.T) {
	s := newTestStore(t, []string{"t1"}, nil, []string{"t2"})
	m := loadReadyModel(t, NewModel(s))

	m = applyMsg(t, m, keyRune(' '))
	if m.drag.kind != domain.KindColumn || m.drag.id != "c1" {
		t.Fatalf("expected c1 grabbed, got %#v", m.drag)
	}
	if got := s.Snapshot().ActiveColumnID(); got != "c1" {
		t.Fatalf("ActiveColumnID() = %q, want c1", got)
	}

	m = applyMsg(t, m, keyRune('l'))
	m = applyMsg(t, m, keyRune('l'))
	if got := s.Snapshot().ColumnOrder(); !slices.Equal(got, []string{"c1", "c2", "c3"}) {
		t.Fatalf("column drag moved before drop: %v", got)
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if got := s.Snapshot().ColumnOrder(); !slices.Equal(got, []string{"c2", "c3", "c1"}) {
		t.Fatalf("ColumnOrder() = %v", got)
	}
	if got := s.Snapshot().ActiveColumnID(); got != "" {
		t.Fatalf("ActiveColumnID() after drop = %q", got)
	}
	if column, ok := m.currentColumn(); !ok || column.ID != "c1" {
		t.Fatalf("expected cursor to follow c1, got %#v", column)
	}
	assertColumnTasks(t, s, "c1", "t1")
}

func TestModelDragCancelKeepsLiveMovesAndClearsTracker(t *testing.T) {
	s := newTestStore(t, []string{"t1", "t2"}, nil)
	m := loadReadyModel(t, NewModel(s))

	m = applyMsg(t, m, keyRune(' '))
	m = applyMsg(t, m, keyRune('l'))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if got := s.Snapshot().ColumnOrder(); !slices.Equal(got, []string{"c1", "c2"}) {
		t.Fatalf("cancelled column drag reordered columns: %v", got)
	}
	if got := s.Snapshot().ActiveColumnID(); got != "" {
		t.Fatalf("ActiveColumnID() = %q", got)
	}

	m = applyMsg(t, m, keyRune('h'))
	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune(' '))
	m = applyMsg(t, m, keyRune('l'))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	assertColumnTasks(t, s, "c1", "t2")
	assertColumnTasks(t, s, "c2", "t1")
	if got := s.Snapshot().ActiveTaskID(); got != "" {
		t.Fatalf("ActiveTaskID() = %q", got)
	}
	if m.status != "drag cancelled" {
		t.Fatalf("status = %q", m.status)
	}
}

func TestModelAddEditDelete(t *testing.T) {
	s := newTestStore(t)
	m := loadReadyModel(t, NewModel(s, WithIDGenerator(sequentialIDs("id-"))))

	if out := plain(m.render()); !strings.Contains(out, "No columns yet") {
		t.Fatalf("expected empty board hint, got %q", out)
	}
	m = applyMsg(t, m, keyRune('n'))
	if m.status != "add a column first" {
		t.Fatalf("status = %q", m.status)
	}

	m = applyMsg(t, m, keyRune('a'))
	m = applyMsg(t, m, keyRune('a'))
	if got := s.Snapshot().ColumnOrder(); !slices.Equal(got, []string{"id-1", "id-2"}) {
		t.Fatalf("ColumnOrder() = %v", got)
	}
	if column, _ := s.Snapshot().Column("id-2"); column.Title != "Column 2" {
		t.Fatalf("Title = %q, want Column 2", column.Title)
	}
	if m.selectedColumn != 1 {
		t.Fatalf("expected new column selected, got %d", m.selectedColumn)
	}

	m = applyMsg(t, m, keyRune('n'))
	m = applyMsg(t, m, keyRune('n'))
	task, ok := s.Snapshot().Task("id-4")
	if !ok {
		t.Fatal("expected second task")
	}
	if task.Title != "Task 2.2" || task.Description != "Task Description" || task.ColumnID != "id-2" {
		t.Fatalf("unexpected task %#v", task)
	}
	assertColumnTasks(t, s, "id-2", "id-3", "id-4")
	if cur, _ := m.currentTask(); cur.ID != "id-4" {
		t.Fatalf("expected cursor on new task, got %#v", cur)
	}

	m = applyMsg(t, m, keyRune('e'))
	if m.mode != modeEditTitle || m.input.Value() != "Task 2.2" {
		t.Fatalf("expected edit mode prefilled, got mode %d value %q", m.mode, m.input.Value())
	}
	for range len("Task 2.2") {
		m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyBackspace})
	}
	for _, r := range "Ship it" {
		m = applyMsg(t, m, keyRune(r))
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	task, _ = s.Snapshot().Task("id-4")
	if task.Title != "Ship it" || task.Description != "Task Description" {
		t.Fatalf("unexpected edited task %#v", task)
	}

	m = applyMsg(t, m, keyRune('d'))
	if _, ok := s.Snapshot().Task("id-4"); ok {
		t.Fatal("expected task deleted")
	}
	assertColumnTasks(t, s, "id-2", "id-3")

	m = applyMsg(t, m, keyRune('k'))
	m = applyMsg(t, m, keyRune('k'))
	m = applyMsg(t, m, keyRune('d'))
	if got := s.Snapshot().ColumnOrder(); !slices.Equal(got, []string{"id-1"}) {
		t.Fatalf("ColumnOrder() after delete = %v", got)
	}
	if s.Snapshot().TaskCount() != 0 {
		t.Fatalf("expected cascade delete, got %d tasks", s.Snapshot().TaskCount())
	}
	if m.selectedColumn != 0 {
		t.Fatalf("expected selection clamped, got %d", m.selectedColumn)
	}
}

func TestModelEditColumnTitleAndCancel(t *testing.T) {
	s := newTestStore(t, nil)
	m := loadReadyModel(t, NewModel(s))

	m = applyMsg(t, m, keyRune('e'))
	if m.editKind != domain.KindColumn || m.editID != "c1" {
		t.Fatalf("expected column edit, got %q %q", m.editKind, m.editID)
	}
	m = applyMsg(t, m, keyRune('!'))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.mode != modeNone || m.status != "cancelled" {
		t.Fatalf("expected cancel, got mode %d status %q", m.mode, m.status)
	}
	if column, _ := s.Snapshot().Column("c1"); column.Title != "Column 1" {
		t.Fatalf("cancelled edit renamed column to %q", column.Title)
	}

	m = applyMsg(t, m, keyRune('e'))
	m = applyMsg(t, m, keyRune('!'))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if column, _ := s.Snapshot().Column("c1"); column.Title != "Column 1!" {
		t.Fatalf("Title = %q, want Column 1!", column.Title)
	}
	if m.status != "column renamed" {
		t.Fatalf("status = %q", m.status)
	}
}

func TestModelCopyIDAndDetails(t *testing.T) {
	s := newTestStore(t, []string{"t1"})
	var copied []string
	m := loadReadyModel(t, NewModel(s, WithClipboard(func(text string) error {
		copied = append(copied, text)
		return nil
	})))

	m = applyMsg(t, m, keyRune('y'))
	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('y'))
	if !slices.Equal(copied, []string{"c1", "t1"}) {
		t.Fatalf("copied = %v", copied)
	}
	if m.status != "copied t1" {
		t.Fatalf("status = %q", m.status)
	}

	m = applyMsg(t, m, keyRune('i'))
	if m.mode != modeDetails || m.detailsTaskID != "t1" {
		t.Fatalf("expected details for t1, got mode %d id %q", m.mode, m.detailsTaskID)
	}
	if out := plain(m.render()); !strings.Contains(out, "column: Column 1") {
		t.Fatalf("expected details overlay, got %q", out)
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.mode != modeNone {
		t.Fatalf("expected details closed, got %d", m.mode)
	}

	failing := loadReadyModel(t, NewModel(s, WithClipboard(func(string) error {
		return errors.New("no clipboard")
	})))
	failing = applyMsg(t, failing, keyRune('y'))
	if failing.status != "copy failed: no clipboard" {
		t.Fatalf("status = %q", failing.status)
	}
}

func TestModelIgnoresStaleBoardChanges(t *testing.T) {
	s := newTestStore(t, []string{"t1"})
	stale := s.Snapshot()
	m := loadReadyModel(t, NewModel(s))

	task, _ := domain.NewTask(domain.TaskInput{ID: "t2", ColumnID: "c1", Title: "fresh"})
	if err := s.AddTask(task); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	m = applyMsg(t, m, BoardChanged(s.Snapshot()))
	if m.snap.TaskCount() != 2 {
		t.Fatalf("expected fresh snapshot, got %d tasks", m.snap.TaskCount())
	}
	m = applyMsg(t, m, BoardChanged(stale))
	if m.snap.TaskCount() != 2 {
		t.Fatalf("stale snapshot replaced fresh one")
	}
}

func TestModelSubscriptionDeliversSnapshots(t *testing.T) {
	s := newTestStore(t, nil)
	var msgs []tea.Msg
	unsubscribe := s.Subscribe(func(snap app.Snapshot) {
		msgs = append(msgs, BoardChanged(snap))
	})
	defer unsubscribe()

	m := loadReadyModel(t, NewModel(s, WithIDGenerator(sequentialIDs("x"))))
	m = applyMsg(t, m, keyRune('n'))
	if len(msgs) != 1 {
		t.Fatalf("expected one published snapshot, got %d", len(msgs))
	}
	m = applyMsg(t, m, msgs[0])
	if cur, ok := m.currentTask(); !ok || cur.ID != "x1" {
		t.Fatalf("expected cursor on x1, got %#v", cur)
	}
}

func TestModelViewStates(t *testing.T) {
	s := newTestStore(t, []string{"t1"})
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if err := s.UpdateTask("t1", "Title t1", "first\nsecond", &due); err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}

	m := NewModel(s)
	if v := m.View(); v.Content == nil || !v.AltScreen {
		t.Fatal("expected alt-screen loading view")
	}
	if out := plain(m.render()); !strings.Contains(out, "loading") {
		t.Fatalf("expected loading view, got %q", out)
	}

	m = loadReadyModel(t, m)
	out := plain(m.render())
	for _, want := range []string{"dragboard", "Column 1 (1)", "Title t1", "due 2026-03-01", "first"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view, got %q", want, out)
		}
	}
	if strings.Contains(out, "second") {
		t.Fatalf("expected only the first description line, got %q", out)
	}

	hidden := loadReadyModel(t, NewModel(s, WithDisplayConfig(DisplayConfig{ColumnWidth: 30, MarkdownStyle: "ascii"})))
	out = plain(hidden.render())
	if strings.Contains(out, "due 2026-03-01") || strings.Contains(out, "first") {
		t.Fatalf("expected secondary line hidden, got %q", out)
	}

	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune(' '))
	if out := plain(m.render()); !strings.Contains(out, "drag task") {
		t.Fatalf("expected drag mode label, got %q", out)
	}

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	m = applyMsg(t, m, keyRune('?'))
	if !m.help.ShowAll {
		t.Fatal("expected help overlay")
	}
	if out := plain(m.render()); !strings.Contains(out, "copy id") {
		t.Fatalf("expected full help, got %q", out)
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.help.ShowAll {
		t.Fatal("expected esc to close help")
	}
}

func TestModelConfiguredKeysAndDefaults(t *testing.T) {
	s := newTestStore(t, nil)
	m := loadReadyModel(t, NewModel(s,
		WithKeyConfig(KeyConfig{AddTask: "t", Grab: "g"}),
		WithIDGenerator(sequentialIDs("k")),
		WithDefaults(Defaults{
			TaskTitle: func(column, n int) string { return fmt.Sprintf("card %d/%d", column, n) },
		}),
	))

	m = applyMsg(t, m, keyRune('n'))
	if s.Snapshot().TaskCount() != 0 {
		t.Fatal("expected default add-task key to be replaced")
	}
	m = applyMsg(t, m, keyRune('t'))
	task, ok := s.Snapshot().Task("k1")
	if !ok || task.Title != "card 1/1" || task.Description != "" {
		t.Fatalf("unexpected task %#v", task)
	}
	m = applyMsg(t, m, keyRune('g'))
	if !m.drag.active() || m.drag.id != "k1" {
		t.Fatalf("expected configured grab key, got %#v", m.drag)
	}
}

func TestModelQuitKey(t *testing.T) {
	m := loadReadyModel(t, NewModel(newTestStore(t)))
	_, cmd := m.Update(keyRune('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestModelQuitDuringDragClearsTracker(t *testing.T) {
	s := newTestStore(t, []string{"t1"})
	m := loadReadyModel(t, NewModel(s))
	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune(' '))
	_, cmd := m.Update(keyRune('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if got := s.Snapshot().ActiveTaskID(); got != "" {
		t.Fatalf("ActiveTaskID() = %q", got)
	}
}

func TestHelpers(t *testing.T) {
	if clamp(5, 0, 3) != 3 || clamp(-1, 0, 3) != 0 || clamp(2, 0, -1) != 0 {
		t.Fatal("unexpected clamp result")
	}
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Fatalf("truncate() = %q", got)
	}
	if got := truncate("abc", 0); got != "" {
		t.Fatalf("truncate() = %q", got)
	}
	if got := fitLines("a\nb\nc", 2); got != "a\n…" {
		t.Fatalf("fitLines() = %q", got)
	}
	if got := fitLines("a", 3); got != "a\n\n" {
		t.Fatalf("fitLines() = %q", got)
	}
	if got := indexOf([]string{"a", "b"}, "b"); got != 1 {
		t.Fatalf("indexOf() = %d", got)
	}
	if got := overlayOnContent("base", "top", 0, 0); got != "top\n\nbase" {
		t.Fatalf("overlayOnContent() = %q", got)
	}
	r := &markdownRenderer{style: "ascii"}
	if got := r.render("  ", 40); got != "" {
		t.Fatalf("render() = %q", got)
	}
	if got := r.render("**bold** text", 40); !strings.Contains(got, "text") {
		t.Fatalf("render() = %q", got)
	}
}

// plain strips styling so assertions match visible text.
func plain(s string) string {
	return ansi.Strip(s)
}

func loadReadyModel(t *testing.T, m Model) Model {
	t.Helper()
	return applyMsg(t, applyCmd(t, m, m.Init()), tea.WindowSizeMsg{Width: 120, Height: 40})
}

func applyMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	out, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	return applyCmd(t, out, cmd)
}

func applyCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	out := m
	currentCmd := cmd
	for i := 0; i < 6 && currentCmd != nil; i++ {
		msg := currentCmd()
		updated, nextCmd := out.Update(msg)
		casted, ok := updated.(Model)
		if !ok {
			t.Fatalf("expected Model, got %T", updated)
		}
		out = casted
		currentCmd = nextCmd
	}
	return out
}

func keyRune(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}
