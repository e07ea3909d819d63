// Package report produces a read-only diagnosis of a grid: who has power,
// which houses cannot be reached, what it would cost to wire them and how
// efficient the network is.
package report

import (
	"fmt"
	"io"
	"slices"

	"github.com/vovakirdan/powergrid/internal/config"
	"github.com/vovakirdan/powergrid/internal/connectivity"
	"github.com/vovakirdan/powergrid/internal/grid"
	"github.com/vovakirdan/powergrid/internal/pathfind"
	"github.com/vovakirdan/powergrid/internal/power"
)

// Connection is the cheapest way to wire one house to any source. Cost and
// Steps describe the same route.
type Connection struct {
	House     grid.Coord `json:"house" yaml:"house"`
	Powered   bool       `json:"powered" yaml:"powered"`
	Reachable bool       `json:"reachable" yaml:"reachable"`
	Cost      int        `json:"cost,omitempty" yaml:"cost,omitempty"`
	Steps     int        `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// Report is the diagnosis of one grid.
type Report struct {
	Width         int `json:"width" yaml:"width"`
	Height        int `json:"height" yaml:"height"`
	Houses        int `json:"houses" yaml:"houses"`
	PoweredHouses int `json:"powered_houses" yaml:"powered_houses"`
	Sources       int `json:"sources" yaml:"sources"`
	Wires         int `json:"wires" yaml:"wires"`
	Transformers  int `json:"transformers" yaml:"transformers"`
	BudgetUsed    int `json:"budget_used" yaml:"budget_used"`
	Demand        int `json:"demand" yaml:"demand"`
	Supply        int `json:"supply" yaml:"supply"`

	Connected      bool         `json:"connected" yaml:"connected"`
	Components     int          `json:"components" yaml:"components"`
	IsolatedHouses []grid.Coord `json:"isolated_houses,omitempty" yaml:"isolated_houses,omitempty"`
	Unreachable    []grid.Coord `json:"unreachable,omitempty" yaml:"unreachable,omitempty"`
	ShortCircuits  []grid.Coord `json:"short_circuits,omitempty" yaml:"short_circuits,omitempty"`
	Damaged        []grid.Coord `json:"damaged,omitempty" yaml:"damaged,omitempty"`
	RepairCost     int          `json:"repair_cost" yaml:"repair_cost"`
	Connections    []Connection `json:"connections,omitempty" yaml:"connections,omitempty"`

	SupplyRatio       float64 `json:"supply_ratio" yaml:"supply_ratio"`
	NetworkEfficiency float64 `json:"network_efficiency" yaml:"network_efficiency"`
}

// NetworkEfficiency scores a network from 0 upwards: the share of
// connected houses weighs 0.6, and economy of wire and of budget weigh 0.2
// each. Small networks can score above 100.
func NetworkEfficiency(connected, total, wires, budgetUsed int) float64 {
	if total == 0 {
		return 0
	}
	connRate := float64(connected) / float64(total)
	wireEff := 1.0
	if wires > 0 {
		wireEff = 100 / float64(wires)
	}
	budgetEff := 1.0
	if budgetUsed > 0 {
		budgetEff = 1000 / float64(budgetUsed)
	}
	return (connRate*0.6 + wireEff*0.2 + budgetEff*0.2) * 100
}

// Analyze diagnoses g. Power is redistributed on a copy; g is not changed.
func Analyze(g *grid.Grid, costs config.CostConfig) Report {
	g = g.Clone()
	power.Distribute(g)

	r := Report{
		Width:         g.W,
		Height:        g.H,
		Houses:        len(g.Houses()),
		PoweredHouses: g.CountPoweredHouses(),
		Sources:       len(g.Sources()),
		Wires:         g.CountType(grid.Wire),
		Transformers:  g.CountType(grid.Transformer),
		Demand:        power.Demand(g),
		Supply:        power.Supply(g),

		Connected:      connectivity.IsGridConnected(g),
		Components:     len(connectivity.Components(g)),
		IsolatedHouses: connectivity.IsolatedHouses(g),
		ShortCircuits:  connectivity.DetectShortCircuits(g),
		Damaged:        g.DamagedCells(),
		RepairCost:     g.DamageRepairCost(),
	}
	r.BudgetUsed = r.Wires*costs.Wire + r.Transformers*costs.Transformer
	r.SupplyRatio = power.Efficiency(r.Supply, r.Demand)
	r.NetworkEfficiency = NetworkEfficiency(r.PoweredHouses, r.Houses, r.Wires, r.BudgetUsed)

	f := pathfind.New(g)
	for _, h := range g.Houses() {
		conn := Connection{House: h.Pos, Powered: h.Powered()}
		best := pathfind.NoPath
		var route []grid.Coord
		for _, s := range g.Sources() {
			path := f.ShortestPathBFS(s.Pos, h.Pos)
			if len(path) == 0 {
				continue
			}
			if cost := f.WiringCost(path); cost < best {
				best, route = cost, path
			}
		}
		if best != pathfind.NoPath {
			conn.Reachable = true
			conn.Cost = best
			conn.Steps = len(route)
		} else {
			r.Unreachable = append(r.Unreachable, h.Pos)
		}
		r.Connections = append(r.Connections, conn)
	}
	slices.SortFunc(r.Connections, func(a, b Connection) int {
		switch {
		case a.House.Less(b.House):
			return -1
		case b.House.Less(a.House):
			return 1
		}
		return 0
	})

	return r
}

// WriteText prints the report in the plain column style of the CLI.
func (r Report) WriteText(w io.Writer) error {
	p := func(format string, args ...any) {
		fmt.Fprintf(w, format, args...)
	}

	p("Grid %dx%d\n\n", r.Width, r.Height)
	p("  %-18s %d / %d\n", "Powered houses", r.PoweredHouses, r.Houses)
	p("  %-18s %d\n", "Sources", r.Sources)
	p("  %-18s %d wires, %d transformers ($%d)\n", "Infrastructure", r.Wires, r.Transformers, r.BudgetUsed)
	p("  %-18s %d / %d (%.0f%%)\n", "Supply / demand", r.Supply, r.Demand, r.SupplyRatio*100)
	p("  %-18s %t (%d components)\n", "Connected", r.Connected, r.Components)
	p("  %-18s %d cells ($%d to repair)\n", "Damaged", len(r.Damaged), r.RepairCost)
	p("  %-18s %.1f\n", "Network efficiency", r.NetworkEfficiency)

	if len(r.ShortCircuits) > 0 {
		p("\nShort circuits: %v\n", r.ShortCircuits)
	}
	if len(r.IsolatedHouses) > 0 {
		p("Houses outside the wired network: %v\n", r.IsolatedHouses)
	}

	if len(r.Connections) > 0 {
		p("\n  %-10s  %-8s  %-8s  %s\n", "House", "Powered", "Cost", "Steps")
		p("  %-10s  %-8s  %-8s  %s\n", "-----", "-------", "----", "-----")
		for _, c := range r.Connections {
			cost, steps := "-", "-"
			if c.Reachable {
				cost = fmt.Sprint(c.Cost)
				steps = fmt.Sprint(c.Steps)
			}
			p("  %-10s  %-8t  %-8s  %s\n", c.House, c.Powered, cost, steps)
		}
	}

	_, err := fmt.Fprintln(w)
	return err
}
