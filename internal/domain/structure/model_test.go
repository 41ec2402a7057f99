package structure

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	vtypes "github.com/turtacn/chargeview/pkg/types/viewer"
)

func atom(id int, name, res string, seq int, chain string, het bool) Atom {
	return Atom{
		ID: id, Name: name, Element: name[:1], ResidueName: res,
		ResidueSeqID: seq, AuthSeqID: seq, ChainID: chain, HetAtom: het,
		Position: r3.Vec{X: float64(id)},
	}
}

func sampleModel() *Model {
	return NewModel("TEST", vtypes.FormatMMCIF, []Atom{
		atom(10, "N", "ALA", 12, "A", false),
		atom(11, "CA", "ALA", 12, "A", false),
		atom(12, "N", "GLY", 13, "A", false),
		atom(13, "C1", "NAG", 0, "B", true),
		atom(14, "O", "HOH", 0, "C", true),
		atom(15, "FE", "HEM", 0, "D", true),
	})
}

func TestClassifyResidue(t *testing.T) {
	tests := []struct {
		name string
		het  bool
		want ResidueKind
	}{
		{"ALA", false, ResiduePolymer},
		{"dg", false, ResiduePolymer},
		{"MSE", true, ResiduePolymer},
		{"HOH", true, ResidueWater},
		{"NAG", true, ResidueSaccharide},
		{"HEM", true, ResidueLigand},
		{"ALA", true, ResidueLigand},
		{"XYZ", false, ResidueLigand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyResidue(tt.name, tt.het))
		})
	}
}

func TestNewModel_GroupsResidues(t *testing.T) {
	m := sampleModel()
	require.Len(t, m.Residues, 5)
	assert.Equal(t, []int{0, 1}, m.Residues[0].Atoms)
	assert.Equal(t, "ALA", m.Residues[0].Name)
	assert.Equal(t, 12, m.Residues[0].SeqID)
	assert.Equal(t, 1, m.Atoms[2].ResidueIndex)
	assert.Equal(t, ResidueSaccharide, m.Residues[2].Kind)
}

func TestModel_AtomIndexAndKinds(t *testing.T) {
	m := sampleModel()
	i, ok := m.AtomIndex(12)
	require.True(t, ok)
	assert.Equal(t, 2, i)
	_, ok = m.AtomIndex(99)
	assert.False(t, ok)

	assert.Equal(t, []int{0, 1}, m.ResiduesOfKind(ResiduePolymer))
	assert.Equal(t, []int{0, 1, 2}, m.AtomsOfResidues(m.ResiduesOfKind(ResiduePolymer)))
	assert.Equal(t, 6, m.All().Len())
}

func TestBuildChargeData(t *testing.T) {
	m := sampleModel()
	d := BuildChargeData(m,
		[]ChargeMethod{{TypeID: 1, Type: "empirical", Method: "eem/un_2016"}, {TypeID: 2, Method: "qeq/un_2016"}},
		[]ChargeRecord{
			{TypeID: 1, AtomID: 10, Charge: -0.4},
			{TypeID: 1, AtomID: 11, Charge: 0.1},
			{TypeID: 1, AtomID: 15, Charge: 1.2},
			{TypeID: 2, AtomID: 10, Charge: 0.3},
			{TypeID: 2, AtomID: 404, Charge: 9},
		})
	require.NotNil(t, d)

	assert.Equal(t, []int{1, 2}, d.TypeIDs())
	assert.True(t, d.HasTypeID(2))
	assert.False(t, d.HasTypeID(3))

	assert.InDelta(t, 1.2, d.MaxAbsoluteAtomCharges[1], 1e-9)
	assert.InDelta(t, 0.3, d.MaxAbsoluteAtomCharges[2], 1e-9)
	assert.InDelta(t, 1.2, d.MaxAbsoluteAtomChargeAll, 1e-9)
	assert.InDelta(t, -0.3, d.ResidueCharges[1][0], 1e-9)
	assert.True(t, math.IsNaN(d.AtomCharges[1][2]))
	assert.InDelta(t, 1.2, d.MaxAbsoluteResidueCharges[1], 1e-9)
}

func TestBuildChargeData_Empty(t *testing.T) {
	assert.Nil(t, BuildChargeData(sampleModel(), nil, nil))
}

func TestSubset_Select(t *testing.T) {
	m := sampleModel()
	all := m.All()

	hits := all.Select(MatchAtomKey(vtypes.AtomKey{ResidueName: "ALA", ResidueSeqID: 12, AtomName: "CA"}))
	assert.Equal(t, []int{1}, hits)

	assert.Empty(t, all.Select(MatchAtomKey(vtypes.AtomKey{ResidueName: "ALA", ResidueSeqID: 13, AtomName: "CA"})))
	assert.Equal(t, []int{0, 1, 2}, all.Select(InResidueRange(vtypes.ResidueRange{Start: 12, End: 13})))

	pos := all.Positions([]int{0, 2})
	assert.Equal(t, []r3.Vec{{X: 10}, {X: 12}}, pos)

	var empty *Subset
	assert.Zero(t, empty.Len())
	assert.Nil(t, empty.Select(InResidueRange(vtypes.ResidueRange{Start: 1, End: 2})))
}

//Personal.AI order the ending
