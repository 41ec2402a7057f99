package structure

import (
	"gonum.org/v1/gonum/spatial/r3"

	vtypes "github.com/turtacn/chargeview/pkg/types/viewer"
)

// Subset is a selection of atoms of one model, used as component data.
type Subset struct {
	Model *Model
	Atoms []int
}

// Len returns the number of selected atoms.
func (s *Subset) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Atoms)
}

// AtomPredicate tests a single atom.
type AtomPredicate func(a *Atom) bool

// Select returns the atom indices of s matching pred, in model order.
func (s *Subset) Select(pred AtomPredicate) []int {
	if s == nil || s.Model == nil {
		return nil
	}
	var out []int
	for _, i := range s.Atoms {
		if pred(&s.Model.Atoms[i]) {
			out = append(out, i)
		}
	}
	return out
}

// Positions returns the coordinates of the given atom indices.
func (s *Subset) Positions(atoms []int) []r3.Vec {
	out := make([]r3.Vec, len(atoms))
	for i, a := range atoms {
		out[i] = s.Model.Atoms[a].Position
	}
	return out
}

// MatchAtomKey matches residue name, residue sequence id and atom name exactly.
func MatchAtomKey(k vtypes.AtomKey) AtomPredicate {
	return func(a *Atom) bool {
		return a.ResidueName == k.ResidueName &&
			a.ResidueSeqID == k.ResidueSeqID &&
			a.Name == k.AtomName
	}
}

// InResidueRange matches atoms whose residue sequence id lies in r.
func InResidueRange(r vtypes.ResidueRange) AtomPredicate {
	return func(a *Atom) bool {
		return r.Contains(a.ResidueSeqID)
	}
}

//Personal.AI order the ending
