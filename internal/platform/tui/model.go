package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/powergrid/internal/config"
	"github.com/vovakirdan/powergrid/internal/core"
	"github.com/vovakirdan/powergrid/internal/game"
	"github.com/vovakirdan/powergrid/internal/grid"
	"github.com/vovakirdan/powergrid/internal/levels"
	"github.com/vovakirdan/powergrid/internal/storage"
)

// Play screen layout.
const (
	gridX         = 1
	gridY         = 3
	panelGap      = 3
	maxMessages   = 5
	quakeStrength = 6
)

// Launch describes a game to start: the level and the rules to play it by.
type Launch struct {
	Level      levels.Descriptor
	Difficulty config.Difficulty
	Simulation config.SimulationConfig
	Logger     *log.Logger
	Player     string // SSH user, empty for local play
}

func (l Launch) start(seed int64) (*game.Controller, error) {
	return game.NewFromLevel(l.Level,
		game.WithDifficulty(l.Difficulty),
		game.WithSimulation(l.Simulation),
		game.WithSeed(seed),
		game.WithLogger(l.Logger),
	)
}

// Model is the Bubble Tea model for playing one level.
type Model struct {
	launch     Launch
	ctrl       *game.Controller
	screen     *core.Screen
	store      *storage.Store
	config     core.RuntimeConfig
	keyMapper  *KeyMapper
	cursor     grid.Coord
	paused     bool
	messages   []string
	seed       int64
	clock      uint64
	started    time.Time
	runSaved   bool // Whether the run has been saved for the current game over
	quitting   bool
	backToMenu bool
}

// NewModel creates a play model and starts the game.
func NewModel(launch Launch, store *storage.Store, cfg core.RuntimeConfig) (Model, error) {
	seed := cfg.ResolveSeed()
	ctrl, err := launch.start(seed)
	if err != nil {
		return Model{}, err
	}

	m := Model{
		launch:    launch,
		ctrl:      ctrl,
		screen:    core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		store:     store,
		config:    cfg,
		keyMapper: NewKeyMapper(),
		seed:      seed,
		clock:     clocks.Add(1),
		started:   time.Now(),
	}
	m.collect()
	return m, nil
}

// Init starts the day clock.
func (m Model) Init() tea.Cmd {
	return dayCmd(m.clock, m.config.DayInterval)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil

	case DayMsg:
		if msg.Clock != m.clock {
			return m, nil
		}
		return m.handleDay()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	action, isQuit := m.keyMapper.MapKey(msg)
	if isQuit {
		m.quitting = true
		return m, tea.Quit
	}

	over := m.ctrl.Outcome() != game.Running
	switch action {
	case core.ActionBack:
		if over || m.paused {
			m.backToMenu = true
			return m, tea.Quit
		}
	case core.ActionRestart:
		if over {
			m.restart()
		}
	default:
		m.apply(action)
	}

	m.collect()
	return m, nil
}

// apply performs a play action at the cursor.
func (m *Model) apply(action core.Action) {
	snap := m.ctrl.Snapshot()
	x, y := m.cursor.X, m.cursor.Y

	switch action {
	case core.ActionUp:
		m.cursor.Y = core.Clamp(y-1, 0, snap.H-1)
	case core.ActionDown:
		m.cursor.Y = core.Clamp(y+1, 0, snap.H-1)
	case core.ActionLeft:
		m.cursor.X = core.Clamp(x-1, 0, snap.W-1)
	case core.ActionRight:
		m.cursor.X = core.Clamp(x+1, 0, snap.W-1)
	case core.ActionPlaceWire:
		if !m.ctrl.PlaceWire(x, y) {
			m.say("Cannot lay a wire here")
		}
	case core.ActionPlaceTransformer:
		if !m.ctrl.PlaceTransformer(x, y) {
			m.say("Cannot build a transformer here")
		}
	case core.ActionRepair:
		if !m.ctrl.ManualRepair(x, y) {
			m.say("Nothing to repair, or not enough money")
		}
	case core.ActionQuake:
		m.ctrl.TriggerEarthquake(x, y, quakeStrength)
	case core.ActionHireCrew:
		if !m.ctrl.PurchaseRepairCrew() {
			m.say("Not enough money to hire a crew")
		}
	case core.ActionNextLevel:
		if !m.ctrl.AdvanceLevel() {
			m.say("Power every house to finish the level")
		} else {
			m.cursor = grid.Coord{}
		}
	case core.ActionStep:
		if m.paused {
			m.ctrl.Tick()
		}
	case core.ActionPause:
		m.paused = !m.paused
	}
}

func (m Model) handleDay() (tea.Model, tea.Cmd) {
	if !m.paused && m.ctrl.Outcome() == game.Running {
		m.ctrl.Tick()
		m.collect()
	}
	return m, dayCmd(m.clock, m.config.DayInterval)
}

func (m *Model) restart() {
	m.seed = time.Now().UnixNano()
	ctrl, err := m.launch.start(m.seed)
	if err != nil {
		m.say("Restart failed: " + err.Error())
		return
	}
	m.ctrl = ctrl
	m.cursor = grid.Coord{}
	m.paused = false
	m.messages = nil
	m.runSaved = false
	m.started = time.Now()
}

// collect drains controller events into the message log and saves the run
// once the game is over.
func (m *Model) collect() {
	for _, ev := range m.ctrl.Drain() {
		if text := describe(ev); text != "" {
			m.say(text)
		}
		if _, ok := ev.(game.GameOver); ok {
			m.saveRun()
		}
	}
}

func (m *Model) saveRun() {
	if m.runSaved || m.store == nil {
		return
	}
	m.runSaved = true

	rec := storage.RecordFromStats(m.ctrl.Stats(), m.launch.Difficulty.Name, m.seed, m.launch.Player, time.Since(m.started))
	if _, err := m.store.SaveRun(rec); err != nil && m.launch.Logger != nil {
		m.launch.Logger.Warn("could not save run", "error", err)
	}
}

func (m *Model) say(text string) {
	m.messages = append(m.messages, text)
	if len(m.messages) > maxMessages {
		m.messages = m.messages[len(m.messages)-maxMessages:]
	}
}

// describe turns an event into a log line; routine events return "".
func describe(ev game.Event) string {
	switch e := ev.(type) {
	case game.DisasterWarning:
		return fmt.Sprintf("Warning: %s (severity %d)", e.Disaster, e.Severity)
	case game.EarthquakeReport:
		return fmt.Sprintf("Earthquake #%d M%d at %s: %d cells damaged", e.ID, e.Magnitude, e.Epicenter, e.Damaged)
	case game.RepairDone:
		if e.Manual {
			return fmt.Sprintf("Repaired %s for $%d", e.Cell, e.Cost)
		}
		if e.Remaining == 0 {
			return fmt.Sprintf("Crew finished repairing %s", e.Cell)
		}
	case game.NewObjective:
		return "Objective: " + e.Text
	case game.Notice:
		return e.Text
	case game.GameOver:
		if e.Win {
			return "Victory! " + e.Message
		}
		return "Game over: " + e.Message
	}
	return ""
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.draw()

	dir := filepath.Join(os.Getenv("HOME"), ".powergrid", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.ctrl.Level().ID, timestamp))

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// draw renders the game into the screen buffer.
func (m *Model) draw() {
	s := m.screen
	s.Clear()

	st := m.ctrl.Stats()
	snap := m.ctrl.Snapshot()
	level := m.ctrl.Level()

	s.DrawTextColored(gridX, 0, "POWER GRID", core.ColorBrightYellow)
	s.DrawText(gridX+12, 0, fmt.Sprintf("%s  [%s]", level.Title(), m.launch.Difficulty.Name))

	status := fmt.Sprintf("Day %d   Score %d   Money $%d   Crews %d", st.Day, st.Score, st.Money, st.RepairCrews)
	s.DrawText(gridX, 1, status)
	if m.paused {
		s.DrawTextColored(gridX+len(status)+3, 1, "PAUSED", core.ColorBrightYellow)
	}

	for y := range snap.H {
		for x := range snap.W {
			v, _ := snap.View(x, y)
			r, c := cellGlyph(v)
			s.SetColored(gridX+x*2, gridY+y, r, c)
		}
	}
	cx, cy := gridX+m.cursor.X*2, gridY+m.cursor.Y
	s.SetColored(cx-1, cy, '[', core.ColorWhite)
	s.SetColored(cx+1, cy, ']', core.ColorWhite)

	px := gridX + snap.W*2 + panelGap
	lines := []string{
		fmt.Sprintf("Houses   %d/%d (%d%%)", st.SatisfiedHouses, st.TotalHouses, core.Percent(st.SatisfiedHouses, st.TotalHouses)),
		fmt.Sprintf("Supply   %d", st.PowerSupply),
		fmt.Sprintf("Demand   %d", st.PowerDemand),
		fmt.Sprintf("Ratio    %d%%", int(st.PowerEfficiency*100)),
		fmt.Sprintf("Damaged  %d", st.DamagedCells),
		fmt.Sprintf("Quakes   %d", st.EarthquakesTriggered),
		fmt.Sprintf("Repairs  %d", st.RepairsCompleted),
		"",
		fmt.Sprintf("Cursor   %s", m.cursor),
	}
	if cell, ok := snap.At(m.cursor); ok {
		lines = append(lines,
			fmt.Sprintf("Type     %s", cell.Type()),
			fmt.Sprintf("Damage   %d (%s)", cell.DamageLevel(), cell.DamageDescription()),
			fmt.Sprintf("Powered  %t", cell.IsPowered()),
		)
		if e, ok := cell.Effect(); ok {
			lines = append(lines, fmt.Sprintf("Effect   %s (%dd)", e.Name, e.Remaining))
		}
		if cost, ok := m.ctrl.ConnectionQuote(m.cursor.X, m.cursor.Y); ok {
			lines = append(lines, fmt.Sprintf("Wire to  $%d", cost))
		}
	}
	width := 0
	for _, line := range lines {
		width = max(width, len(line))
	}
	box := core.NewRect(px-2, gridY-1, width+4, len(lines)+2)
	s.DrawBox(box)
	for i, line := range lines {
		if line == "" {
			s.DrawHLine(box.X+1, gridY+i, box.W-2, '─')
			continue
		}
		s.DrawText(px, gridY+i, line)
	}

	my := gridY + snap.H + 1
	for i, msg := range m.messages {
		s.DrawTextColored(gridX, my+i, msg, core.ColorCyan)
	}

	if st.Outcome != game.Running {
		banner, color := "GAME OVER", core.ColorBrightRed
		if st.Outcome == game.Won {
			banner, color = "YOU WIN!", core.ColorBrightGreen
		}
		by := gridY + snap.H/2
		bx := gridX + max(0, snap.W-len(banner)/2)
		s.DrawTextColored(bx, by, banner, color)
		s.DrawText(gridX, by+1, "enter: play again   b: menu")
	}

	s.DrawTextColored(gridX, s.Height()-1,
		"arrows move  space wire  t transformer  r repair  e quake  c crew  l next  p pause  n step  q quit",
		core.ColorGray)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.draw()
	return RenderScreen(m.screen)
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to the menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// Run starts the Bubble Tea program for one launch. It reports whether the
// player asked to go back to the menu.
func Run(launch Launch, store *storage.Store, cfg core.RuntimeConfig) (backToMenu bool, err error) {
	model, err := NewModel(launch, store, cfg)
	if err != nil {
		return false, err
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(Model)
	return ok && m.BackToMenu(), nil
}
