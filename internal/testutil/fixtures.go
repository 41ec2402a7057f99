package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/turtacn/chargeview/internal/infrastructure/format/mmcif"
)

type fixtureAtom struct {
	id      int
	name    string
	element string
	comp    string
	chain   string
	seq     int
	het     bool
}

// CIFBuilder generates small synthetic structures.  Coordinates and B-factors
// are derived from the atom index so output is deterministic.
type CIFBuilder struct {
	entryID string
	atoms   []fixtureAtom
	sets    []mmcif.ChargeSet
	qa      bool
}

var peptideCycle = []string{"ALA", "GLY", "SER", "LEU", "VAL"}

// PeptideAtoms is the number of atoms Peptide adds per residue.
const PeptideAtoms = 5

// NewCIFBuilder starts an empty structure.
func NewCIFBuilder(entryID string) *CIFBuilder {
	return &CIFBuilder{entryID: entryID}
}

// Residue appends one residue with the given atom names.
func (b *CIFBuilder) Residue(chain, comp string, seq int, het bool, atomNames ...string) *CIFBuilder {
	for _, n := range atomNames {
		b.atoms = append(b.atoms, fixtureAtom{
			id:      len(b.atoms) + 1,
			name:    n,
			element: n[:1],
			comp:    comp,
			chain:   chain,
			seq:     seq,
			het:     het,
		})
	}
	return b
}

// Peptide appends n residues numbered from 1, each with N, CA, C, O and CB.
func (b *CIFBuilder) Peptide(chain string, n int) *CIFBuilder {
	for i := 0; i < n; i++ {
		b.Residue(chain, peptideCycle[i%len(peptideCycle)], i+1, false, "N", "CA", "C", "O", "CB")
	}
	return b
}

// Charges appends a charge set.  charges may be shorter than the atom list.
func (b *CIFBuilder) Charges(method string, charges []float64) *CIFBuilder {
	b.sets = append(b.sets, mmcif.ChargeSet{Method: method, Charges: charges})
	return b
}

// PatternCharges appends a charge set covering every current atom.  Values
// cycle through -scale..scale in thirds, so the maximum magnitude is scale
// once there are at least seven atoms.
func (b *CIFBuilder) PatternCharges(method string, scale float64) *CIFBuilder {
	return b.Charges(method, PatternCharges(len(b.atoms), scale))
}

// QualityScores marks the structure as a predicted model with pLDDT scores.
func (b *CIFBuilder) QualityScores() *CIFBuilder {
	b.qa = true
	return b
}

// AtomCount returns the number of atoms added so far.
func (b *CIFBuilder) AtomCount() int { return len(b.atoms) }

// PatternCharges returns n deterministic charges with maximum magnitude scale.
func PatternCharges(n int, scale float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i%7-3) / 3 * scale
	}
	return out
}

func (b *CIFBuilder) position(i int) (x, y, z float64) {
	return float64(i) * 1.5, float64(i % 5), float64(i % 3)
}

func (b *CIFBuilder) bfactor(i int) float64 {
	if b.qa {
		return 50 + float64(i%50)
	}
	return 20
}

// CIF renders the structure as an mmCIF document.
func (b *CIFBuilder) CIF() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "data_%s\n#\n_entry.id %s\n#\n", b.entryID, b.entryID)
	buf.WriteString("loop_\n_atom_site.group_PDB\n_atom_site.id\n_atom_site.type_symbol\n" +
		"_atom_site.label_atom_id\n_atom_site.label_comp_id\n_atom_site.label_asym_id\n" +
		"_atom_site.label_seq_id\n_atom_site.auth_seq_id\n_atom_site.Cartn_x\n_atom_site.Cartn_y\n" +
		"_atom_site.Cartn_z\n_atom_site.B_iso_or_equiv\n_atom_site.pdbx_PDB_model_num\n")
	for i, a := range b.atoms {
		group, seq := "ATOM", fmt.Sprint(a.seq)
		if a.het {
			group, seq = "HETATM", "."
		}
		x, y, z := b.position(i)
		fmt.Fprintf(&buf, "%-6s %d %s %s %s %s %s %d %.3f %.3f %.3f %.2f 1\n",
			group, a.id, a.element, a.name, a.comp, a.chain, seq, a.seq, x, y, z, b.bfactor(i))
	}
	buf.WriteString("#\n")
	if b.qa {
		buf.WriteString("loop_\n_ma_qa_metric.id\n_ma_qa_metric.name\n_ma_qa_metric.mode\n1 pLDDT local\n#\n")
	}
	if len(b.sets) > 0 {
		// bytes.Buffer writes never fail
		_ = mmcif.WriteChargeCategories(&buf, b.sets)
	}
	return buf.Bytes()
}

// PDB renders the structure as fixed-column PDB records.  Charges are not
// representable and are dropped.
func (b *CIFBuilder) PDB() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "HEADER    %-52s%-4s\n", "SYNTHETIC", b.entryID)
	for i, a := range b.atoms {
		group := "ATOM"
		if a.het {
			group = "HETATM"
		}
		x, y, z := b.position(i)
		fmt.Fprintf(&buf, "%-6s%5d %-4s %3s %1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s\n",
			group, a.id, a.name, a.comp, a.chain, a.seq, x, y, z, 1.0, b.bfactor(i), a.element)
	}
	buf.WriteString("END\n")
	return buf.Bytes()
}

// WriteFile writes data to dir/name and returns the path.
func WriteFile(tb testing.TB, dir, name string, data []byte) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatalf("write fixture %s: %v", path, err)
	}
	return path
}

// ChargedPeptide is the canonical fixture: residues*5 atoms, one pattern
// charge set per method with scale 0.5, 1.0, 1.5, ...
func ChargedPeptide(entryID string, residues int, methods ...string) *CIFBuilder {
	b := NewCIFBuilder(entryID).Peptide("A", residues)
	for i, m := range methods {
		b.PatternCharges(m, 0.5*float64(i+1))
	}
	return b
}

//Personal.AI order the ending
