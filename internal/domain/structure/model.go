// Package structure provides the in-memory molecular model the scene engine
// renders: atoms in file order, residues grouped from consecutive atoms, and
// the optional partial-charge data embedded in the source file.
package structure

import (
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	vtypes "github.com/turtacn/chargeview/pkg/types/viewer"
)

// ─────────────────────────────────────────────────────────────────────────────
// Atom
// ─────────────────────────────────────────────────────────────────────────────

// Atom is one row of the atomic hierarchy.  Label fields follow mmCIF
// label_* semantics; PDB input fills them from the equivalent columns.
type Atom struct {
	// ID is the source identifier (_atom_site.id or PDB serial).  Charge
	// records reference atoms through it.
	ID int

	Name         string // label_atom_id
	Element      string // type_symbol
	ResidueName  string // label_comp_id
	ResidueSeqID int    // label_seq_id, 0 when absent
	AuthSeqID    int
	InsCode      string
	ChainID      string // label_asym_id
	HetAtom      bool
	Position     r3.Vec
	BFactor      float64

	// ResidueIndex points into Model.Residues.
	ResidueIndex int
}

// ─────────────────────────────────────────────────────────────────────────────
// Residue
// ─────────────────────────────────────────────────────────────────────────────

// ResidueKind classifies residues for the auto representation preset.
type ResidueKind string

const (
	ResiduePolymer    ResidueKind = "polymer"
	ResidueLigand     ResidueKind = "ligand"
	ResidueWater      ResidueKind = "water"
	ResidueSaccharide ResidueKind = "saccharide"
)

// Residue groups consecutive atoms sharing chain, sequence id and component.
type Residue struct {
	Index   int
	Name    string
	SeqID   int
	ChainID string
	Kind    ResidueKind
	// Atoms holds indices into Model.Atoms.
	Atoms []int
}

var (
	aminoAcids = set("ALA", "ARG", "ASN", "ASP", "CYS", "GLN", "GLU", "GLY", "HIS", "ILE",
		"LEU", "LYS", "MET", "PHE", "PRO", "SER", "THR", "TRP", "TYR", "VAL", "SEC", "PYL", "MSE", "UNK")
	nucleotides = set("A", "C", "G", "U", "T", "I", "DA", "DC", "DG", "DT", "DU", "DI", "N")
	waters      = set("HOH", "WAT", "DOD", "H2O")
	saccharides = set("NAG", "NDG", "MAN", "BMA", "GAL", "GLA", "GLC", "BGC", "FUC", "FUL",
		"SIA", "XYS", "XYP", "A2G", "NGA", "RAM", "FRU")
)

func set(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

// ClassifyResidue returns the kind of a residue from its component id.
func ClassifyResidue(name string, hetAtom bool) ResidueKind {
	n := strings.ToUpper(name)
	if _, ok := waters[n]; ok {
		return ResidueWater
	}
	if _, ok := saccharides[n]; ok {
		return ResidueSaccharide
	}
	// selenomethionine is deposited as HETATM inside polymer chains
	if n == "MSE" {
		return ResiduePolymer
	}
	if hetAtom {
		return ResidueLigand
	}
	if _, ok := aminoAcids[n]; ok {
		return ResiduePolymer
	}
	if _, ok := nucleotides[n]; ok {
		return ResiduePolymer
	}
	return ResidueLigand
}

// ─────────────────────────────────────────────────────────────────────────────
// Model
// ─────────────────────────────────────────────────────────────────────────────

// Model is one parsed model of a trajectory.
type Model struct {
	EntryID  string
	Format   vtypes.Format
	Atoms    []Atom
	Residues []Residue

	// Charges is nil when the source carries no charge categories.
	Charges *ChargeData

	// ChargeRecordCount is the raw row count of the charge category, whether
	// or not every row resolved to an atom.
	ChargeRecordCount int

	// HasQualityScores is set when the source carries per-residue model
	// quality metrics (pLDDT in B-factor).
	HasQualityScores bool

	atomIndexByID map[int]int
}

// NewModel builds residues from consecutive atoms and indexes atom ids.
func NewModel(entryID string, format vtypes.Format, atoms []Atom) *Model {
	m := &Model{
		EntryID:       entryID,
		Format:        format,
		Atoms:         atoms,
		atomIndexByID: make(map[int]int, len(atoms)),
	}
	for i := range m.Atoms {
		a := &m.Atoms[i]
		m.atomIndexByID[a.ID] = i
		if len(m.Residues) > 0 {
			last := &m.Residues[len(m.Residues)-1]
			prev := &m.Atoms[last.Atoms[len(last.Atoms)-1]]
			if sameResidue(prev, a) {
				last.Atoms = append(last.Atoms, i)
				a.ResidueIndex = last.Index
				continue
			}
		}
		idx := len(m.Residues)
		m.Residues = append(m.Residues, Residue{
			Index:   idx,
			Name:    a.ResidueName,
			SeqID:   a.ResidueSeqID,
			ChainID: a.ChainID,
			Kind:    ClassifyResidue(a.ResidueName, a.HetAtom),
			Atoms:   []int{i},
		})
		a.ResidueIndex = idx
	}
	return m
}

func sameResidue(a, b *Atom) bool {
	return a.ChainID == b.ChainID &&
		a.ResidueName == b.ResidueName &&
		a.ResidueSeqID == b.ResidueSeqID &&
		a.AuthSeqID == b.AuthSeqID &&
		a.InsCode == b.InsCode
}

// AtomCount returns the number of atoms in the atomic hierarchy.
func (m *Model) AtomCount() int { return len(m.Atoms) }

// AtomIndex resolves a source atom id to its index.
func (m *Model) AtomIndex(id int) (int, bool) {
	i, ok := m.atomIndexByID[id]
	return i, ok
}

// ResiduesOfKind returns the indices of residues with the given kind.
func (m *Model) ResiduesOfKind(kind ResidueKind) []int {
	var out []int
	for _, r := range m.Residues {
		if r.Kind == kind {
			out = append(out, r.Index)
		}
	}
	return out
}

// AtomsOfResidues flattens residue indices into atom indices.
func (m *Model) AtomsOfResidues(residues []int) []int {
	var out []int
	for _, ri := range residues {
		out = append(out, m.Residues[ri].Atoms...)
	}
	return out
}

// All returns a Subset covering every atom.
func (m *Model) All() *Subset {
	idx := make([]int, len(m.Atoms))
	for i := range idx {
		idx[i] = i
	}
	return &Subset{Model: m, Atoms: idx}
}

//Personal.AI order the ending
