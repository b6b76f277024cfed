package core

// Package is one delivery job: appear at Start on SpawnTime, reach Target
// by Deadline for the full reward.
type Package struct {
	ID        PackageID
	Start     Cell
	Target    Cell
	SpawnTime int
	Deadline  int
	Status    PackageStatus
}

// View returns the package as agents observe it (1-based coordinates).
func (p *Package) View() PackageView {
	return PackageView{
		ID:        p.ID,
		StartRow:  p.Start.Row + 1,
		StartCol:  p.Start.Col + 1,
		TargetRow: p.Target.Row + 1,
		TargetCol: p.Target.Col + 1,
		SpawnTime: p.SpawnTime,
		Deadline:  p.Deadline,
	}
}
