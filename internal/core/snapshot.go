package core

// RobotView is a robot as exposed to agents. Coordinates are 1-based.
type RobotView struct {
	Row, Col int
	Carrying PackageID
}

// Cell converts the view position back to 0-based grid coordinates.
func (v RobotView) Cell() Cell {
	return Cell{Row: v.Row - 1, Col: v.Col - 1}
}

// PackageView is a revealed package as exposed to agents. Coordinates are
// 1-based.
type PackageView struct {
	ID                   PackageID
	StartRow, StartCol   int
	TargetRow, TargetCol int
	SpawnTime            int
	Deadline             int
}

// StartCell converts the start position back to 0-based grid coordinates.
func (v PackageView) StartCell() Cell {
	return Cell{Row: v.StartRow - 1, Col: v.StartCol - 1}
}

// TargetCell converts the target position back to 0-based grid coordinates.
func (v PackageView) TargetCell() Cell {
	return Cell{Row: v.TargetRow - 1, Col: v.TargetCol - 1}
}

// Snapshot is the observation agents receive each tick. Packages lists only
// the packages revealed at exactly this tick; consumers accumulate reveals
// across ticks. Robots always lists the whole fleet in ID order.
type Snapshot struct {
	Tick     int
	Grid     *Grid
	Robots   []RobotView
	Packages []PackageView
}
