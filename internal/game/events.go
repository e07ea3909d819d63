package game

import "github.com/vovakirdan/powergrid/internal/grid"

// Event is something the controller reports to subscribers and pollers.
// The set of events is closed.
type Event interface {
	// Kind returns a stable snake_case name for logs and exports.
	Kind() string
	gameEvent()
}

// ScoreChanged is sent when the score changes.
type ScoreChanged struct {
	Score int `json:"score"`
}

// MoneyChanged is sent when the balance changes.
type MoneyChanged struct {
	Money int `json:"money"`
}

// DayChanged is sent once per tick.
type DayChanged struct {
	Day int `json:"day"`
}

// PowerUpdate is sent after demand and supply are recomputed.
type PowerUpdate struct {
	Demand int `json:"demand"`
	Supply int `json:"supply"`
}

// GameOver is sent once, when the game reaches a terminal outcome.
type GameOver struct {
	Win     bool   `json:"win"`
	Message string `json:"message"`
}

// DisasterWarning is sent when a disaster strikes.
type DisasterWarning struct {
	Disaster string `json:"disaster"`
	Severity int    `json:"severity"`
}

// NewObjective is sent when a goal is handed to the player.
type NewObjective struct {
	Text string `json:"text"`
}

// EarthquakeReport summarises an earthquake after its damage was applied.
type EarthquakeReport struct {
	ID        int        `json:"id"`
	Epicenter grid.Coord `json:"epicenter"`
	Magnitude int        `json:"magnitude"`
	Affected  int        `json:"affected"`
	Damaged   int        `json:"damaged"`
}

// RepairDone is sent for every repair step.
type RepairDone struct {
	Cell      grid.Coord `json:"cell"`
	Remaining int        `json:"remaining"` // damage left on the cell
	Cost      int        `json:"cost"`
	Manual    bool       `json:"manual"`
}

// Notice carries an informational message.
type Notice struct {
	Text string `json:"text"`
}

func (ScoreChanged) Kind() string     { return "score_changed" }
func (MoneyChanged) Kind() string     { return "money_changed" }
func (DayChanged) Kind() string       { return "day_changed" }
func (PowerUpdate) Kind() string      { return "power_update" }
func (GameOver) Kind() string         { return "game_over" }
func (DisasterWarning) Kind() string  { return "disaster_warning" }
func (NewObjective) Kind() string     { return "new_objective" }
func (EarthquakeReport) Kind() string { return "earthquake_report" }
func (RepairDone) Kind() string       { return "repair_done" }
func (Notice) Kind() string           { return "notice" }

func (ScoreChanged) gameEvent()     {}
func (MoneyChanged) gameEvent()     {}
func (DayChanged) gameEvent()       {}
func (PowerUpdate) gameEvent()      {}
func (GameOver) gameEvent()         {}
func (DisasterWarning) gameEvent()  {}
func (NewObjective) gameEvent()     {}
func (EarthquakeReport) gameEvent() {}
func (RepairDone) gameEvent()       {}
func (Notice) gameEvent()           {}
