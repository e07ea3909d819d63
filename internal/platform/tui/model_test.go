package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/powergrid/internal/config"
	"github.com/vovakirdan/powergrid/internal/core"
	"github.com/vovakirdan/powergrid/internal/game"
	"github.com/vovakirdan/powergrid/internal/grid"
	"github.com/vovakirdan/powergrid/internal/levels"
)

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T) Model {
	t.Helper()

	level, err := levels.Campaign(1)
	if err != nil {
		t.Fatalf("Campaign(1): %v", err)
	}
	sim := config.DefaultSimulationConfig()
	sim.Events.PositiveChance = 0

	cfg := core.DefaultConfig()
	cfg.Seed = 1
	m, err := NewModel(Launch{
		Level:      level,
		Difficulty: config.Difficulty{Name: "medium", StartingMoney: 5000, RepairCrews: 3},
		Simulation: sim,
	}, nil, cfg)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, expected Model", next)
	}
	return nm, cmd
}

func TestMapKey(t *testing.T) {
	km := NewKeyMapper()

	tests := []struct {
		msg      tea.KeyMsg
		expected core.Action
		quit     bool
	}{
		{runeKey("q"), core.ActionQuit, true},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit, true},
		{tea.KeyMsg{Type: tea.KeyUp}, core.ActionUp, false},
		{runeKey("d"), core.ActionRight, false},
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, core.ActionPlaceWire, false},
		{runeKey("t"), core.ActionPlaceTransformer, false},
		{runeKey("c"), core.ActionHireCrew, false},
		{tea.KeyMsg{Type: tea.KeyEnter}, core.ActionRestart, false},
		{tea.KeyMsg{Type: tea.KeyEsc}, core.ActionBack, false},
		{runeKey("z"), core.ActionNone, false},
	}

	for _, tt := range tests {
		action, quit := km.MapKey(tt.msg)
		if action != tt.expected || quit != tt.quit {
			t.Errorf("MapKey(%q) = (%v, %v), expected (%v, %v)", tt.msg.String(), action, quit, tt.expected, tt.quit)
		}
	}
}

func TestCellGlyph(t *testing.T) {
	tests := []struct {
		name  string
		view  grid.CellView
		rune  rune
		color core.Color
	}{
		{"powered house", grid.CellView{Type: grid.House, Powered: true}, 'H', core.ColorBrightGreen},
		{"dark house", grid.CellView{Type: grid.House}, 'H', core.ColorRed},
		{"live wire", grid.CellView{Type: grid.Wire, Powered: true}, '-', core.ColorBrightYellow},
		{"damaged wire", grid.CellView{Type: grid.Wire, Powered: true, DamageLevel: 2}, '-', core.ColorBrightRed},
		{"water", grid.CellView{Type: grid.Water}, '~', core.ColorBlue},
	}

	for _, tt := range tests {
		r, c := cellGlyph(tt.view)
		if r != tt.rune || c != tt.color {
			t.Errorf("%s: cellGlyph = (%q, %v), expected (%q, %v)", tt.name, r, c, tt.rune, tt.color)
		}
	}
}

func TestModelPlacesWireAtCursor(t *testing.T) {
	m := newTestModel(t)

	m, _ = update(t, m, runeKey("d"))
	if m.cursor != grid.C(1, 0) {
		t.Fatalf("cursor = %v, expected (1,0)", m.cursor)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if cell, _ := m.ctrl.Snapshot().Cell(1, 0); cell.Type() != grid.Wire {
		t.Errorf("cell (1,0) = %v, expected wire", cell.Type())
	}
	if money := m.ctrl.Stats().Money; money != 4990 {
		t.Errorf("money = %d, expected 4990", money)
	}
}

func TestModelCursorStaysOnBoard(t *testing.T) {
	m := newTestModel(t)

	m, _ = update(t, m, runeKey("a"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != grid.C(0, 0) {
		t.Errorf("cursor = %v, expected (0,0)", m.cursor)
	}
}

func TestModelIgnoresStaleDays(t *testing.T) {
	m := newTestModel(t)

	m, _ = update(t, m, DayMsg{Clock: m.clock + 1, At: time.Now()})
	if day := m.ctrl.Stats().Day; day != 0 {
		t.Fatalf("stale tick advanced the day to %d", day)
	}

	m, cmd := update(t, m, DayMsg{Clock: m.clock, At: time.Now()})
	if day := m.ctrl.Stats().Day; day != 1 {
		t.Errorf("day = %d, expected 1", day)
	}
	if cmd == nil {
		t.Error("expected the next day to be scheduled")
	}
}

func TestModelPauseHoldsTheClock(t *testing.T) {
	m := newTestModel(t)

	m, _ = update(t, m, runeKey("p"))
	m, _ = update(t, m, DayMsg{Clock: m.clock})
	if day := m.ctrl.Stats().Day; day != 0 {
		t.Fatalf("paused clock advanced the day to %d", day)
	}

	m, _ = update(t, m, runeKey("n"))
	if day := m.ctrl.Stats().Day; day != 1 {
		t.Errorf("step while paused: day = %d, expected 1", day)
	}
}

func TestModelBackOnlyWhenPaused(t *testing.T) {
	m := newTestModel(t)

	m, _ = update(t, m, runeKey("b"))
	if m.BackToMenu() {
		t.Fatal("back should be ignored while the game is running")
	}

	m, _ = update(t, m, runeKey("p"))
	m, _ = update(t, m, runeKey("b"))
	if !m.BackToMenu() {
		t.Error("back should be honoured while paused")
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t)

	m, cmd := update(t, m, runeKey("q"))
	if !m.IsQuitting() || cmd == nil {
		t.Error("q should quit")
	}
	if m.View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestModelView(t *testing.T) {
	m := newTestModel(t)

	view := m.View()
	for _, want := range []string{"POWER GRID", "1. Tutorial", "Houses", "Objective", "┌", "─"} {
		if !strings.Contains(view, want) {
			t.Errorf("view does not contain %q", want)
		}
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		ev       game.Event
		expected string
	}{
		{game.Notice{Text: "Campaign complete"}, "Campaign complete"},
		{game.GameOver{Win: true, Message: "all lit"}, "Victory! all lit"},
		{game.GameOver{Message: "blackout"}, "Game over: blackout"},
		{game.ScoreChanged{}, ""},
		{game.RepairDone{Cell: grid.C(2, 3), Remaining: 1}, ""},
	}

	for _, tt := range tests {
		if got := describe(tt.ev); got != tt.expected {
			t.Errorf("describe(%T) = %q, expected %q", tt.ev, got, tt.expected)
		}
	}
}
