package core

// Robot is one agent of the fleet.
type Robot struct {
	ID       RobotID
	Position Cell
	Carrying PackageID // 0 when empty-handed
}

// IsCarrying reports whether the robot holds a package.
func (r *Robot) IsCarrying() bool {
	return r.Carrying != 0
}

// View returns the robot as agents observe it (1-based coordinates).
func (r *Robot) View() RobotView {
	return RobotView{
		Row:      r.Position.Row + 1,
		Col:      r.Position.Col + 1,
		Carrying: r.Carrying,
	}
}
