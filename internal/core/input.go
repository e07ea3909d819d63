package core

// Action is a semantic player intent, abstracted from physical key presses.
type Action int

const (
	ActionNone             Action = iota
	ActionUp                      // W, Up arrow - move cursor up
	ActionDown                    // S, Down arrow - move cursor down
	ActionLeft                    // A, Left arrow - move cursor left
	ActionRight                   // D, Right arrow - move cursor right
	ActionPlaceWire               // Space - place wire at cursor
	ActionPlaceTransformer        // T - place transformer at cursor
	ActionRepair                  // R - manual repair at cursor
	ActionQuake                   // E - earthquake at cursor
	ActionHireCrew                // C - hire a repair crew
	ActionNextLevel               // L - advance to the next level
	ActionStep                    // N - advance one day while paused
	ActionPause                   // P - pause/unpause the day clock
	ActionRestart                 // Enter - restart after game over
	ActionBack                    // B, Escape - go back
	ActionQuit                    // Q, Ctrl+C - exit
)

var actionNames = map[Action]string{
	ActionNone:             "None",
	ActionUp:               "Up",
	ActionDown:             "Down",
	ActionLeft:             "Left",
	ActionRight:            "Right",
	ActionPlaceWire:        "PlaceWire",
	ActionPlaceTransformer: "PlaceTransformer",
	ActionRepair:           "Repair",
	ActionQuake:            "Quake",
	ActionHireCrew:         "HireCrew",
	ActionNextLevel:        "NextLevel",
	ActionStep:             "Step",
	ActionPause:            "Pause",
	ActionRestart:          "Restart",
	ActionBack:             "Back",
	ActionQuit:             "Quit",
}

// String returns a human-readable name for the action.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "Unknown"
}
