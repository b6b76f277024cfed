package sim

import "github.com/RexSXP/marl-delivery/internal/core"

// RobotState is one robot in a full state dump (0-based coordinates).
type RobotState struct {
	Row      int            `json:"row"`
	Col      int            `json:"col"`
	Carrying core.PackageID `json:"carrying"`
}

// PackageState is one package in a full state dump (0-based coordinates).
type PackageState struct {
	ID        core.PackageID     `json:"id"`
	StartRow  int                `json:"start_row"`
	StartCol  int                `json:"start_col"`
	TargetRow int                `json:"target_row"`
	TargetCol int                `json:"target_col"`
	SpawnTime int                `json:"spawn_time"`
	Deadline  int                `json:"deadline"`
	Status    core.PackageStatus `json:"status"`
}

// StateDump is the complete simulation state at a step boundary. Unlike
// the agent observation it lists every package with its lifecycle status.
// Replay recording, verification, and the viewer consume dumps; policies
// never see them.
type StateDump struct {
	Tick        int            `json:"tick"`
	TotalReward float64        `json:"total_reward"`
	Robots      []RobotState   `json:"robots"`
	Packages    []PackageState `json:"packages"`
}

// Dump captures the full current state. Call after Reset.
func (e *Environment) Dump() StateDump {
	d := StateDump{
		Tick:        e.tick,
		TotalReward: e.totalReward,
		Robots:      make([]RobotState, len(e.robots)),
		Packages:    make([]PackageState, len(e.packages)),
	}
	for i, r := range e.robots {
		d.Robots[i] = RobotState{Row: r.Position.Row, Col: r.Position.Col, Carrying: r.Carrying}
	}
	for i, p := range e.packages {
		d.Packages[i] = PackageState{
			ID:        p.ID,
			StartRow:  p.Start.Row,
			StartCol:  p.Start.Col,
			TargetRow: p.Target.Row,
			TargetCol: p.Target.Col,
			SpawnTime: p.SpawnTime,
			Deadline:  p.Deadline,
			Status:    p.Status,
		}
	}
	return d
}

