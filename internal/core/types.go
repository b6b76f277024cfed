// Package core defines domain models for the delivery grid world.
package core

import "fmt"

// RobotID is a robot's index in the fleet (0-based).
type RobotID int

// PackageID is a unique package identifier (1-based; 0 means none).
type PackageID int

// MoveAction is the movement component of a robot action.
type MoveAction int

const (
	MoveStay  MoveAction = iota // S: keep the current cell
	MoveLeft                    // L: col - 1
	MoveRight                   // R: col + 1
	MoveUp                      // U: row - 1
	MoveDown                    // D: row + 1
)

func (a MoveAction) String() string {
	return [...]string{"S", "L", "R", "U", "D"}[a]
}

// Delta returns the row/col offset the action requests.
func (a MoveAction) Delta() (dr, dc int) {
	switch a {
	case MoveLeft:
		return 0, -1
	case MoveRight:
		return 0, 1
	case MoveUp:
		return -1, 0
	case MoveDown:
		return 1, 0
	default:
		return 0, 0
	}
}

// ParseMoveAction parses the one-letter form produced by String.
func ParseMoveAction(s string) (MoveAction, error) {
	switch s {
	case "S":
		return MoveStay, nil
	case "L":
		return MoveLeft, nil
	case "R":
		return MoveRight, nil
	case "U":
		return MoveUp, nil
	case "D":
		return MoveDown, nil
	}
	return MoveStay, fmt.Errorf("unknown move action %q", s)
}

// PackageAction is the pickup/drop component of a robot action.
type PackageAction int

const (
	PackageNone   PackageAction = iota // 0: no package operation
	PackagePickup                      // 1: pick up at the current cell
	PackageDrop                        // 2: drop at the current cell
)

func (a PackageAction) String() string {
	return [...]string{"0", "1", "2"}[a]
}

// ParsePackageAction parses the one-digit form produced by String.
func ParsePackageAction(s string) (PackageAction, error) {
	switch s {
	case "0":
		return PackageNone, nil
	case "1":
		return PackagePickup, nil
	case "2":
		return PackageDrop, nil
	}
	return PackageNone, fmt.Errorf("unknown package action %q", s)
}

// Action is one robot's command for a single tick: a movement component
// and a package component, executed in that order.
type Action struct {
	Move MoveAction
	Pkg  PackageAction
}

// String renders the compact two-character wire form, e.g. "U1".
func (a Action) String() string {
	return a.Move.String() + a.Pkg.String()
}

// ParseAction parses the two-character form produced by String.
func ParseAction(s string) (Action, error) {
	if len(s) != 2 {
		return Action{}, fmt.Errorf("malformed action %q", s)
	}
	m, err := ParseMoveAction(s[:1])
	if err != nil {
		return Action{}, err
	}
	p, err := ParsePackageAction(s[1:])
	if err != nil {
		return Action{}, err
	}
	return Action{Move: m, Pkg: p}, nil
}

// PackageStatus tracks a package through its lifecycle. Transitions are
// strictly forward: pending -> waiting -> in_transit -> delivered.
type PackageStatus int

const (
	StatusPending   PackageStatus = iota // Created, not yet revealed
	StatusWaiting                        // Revealed, sitting at its start cell
	StatusInTransit                      // Carried by a robot
	StatusDelivered                      // Dropped at its target cell
)

func (s PackageStatus) String() string {
	return [...]string{"pending", "waiting", "in_transit", "delivered"}[s]
}
