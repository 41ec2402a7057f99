package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/chargeview/pkg/errors"
)

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"mmcif": FormatMMCIF, "CIF": FormatMMCIF, " pdbx ": FormatMMCIF, "pdb": FormatPDB} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("sdf")
	assert.True(t, errors.IsInvalidReference(err))

	assert.True(t, FormatMMCIF.CarriesCharges())
	assert.False(t, FormatPDB.CarriesCharges())
}

func TestParseTargetProfile(t *testing.T) {
	p, err := ParseTargetProfile("alphacharges")
	require.NoError(t, err)
	assert.Equal(t, ProfileAlphaCharges, p)

	p, err = ParseTargetProfile("ACC2")
	require.NoError(t, err)
	assert.Equal(t, ProfileACC2, p)

	_, err = ParseTargetProfile("molstar")
	assert.True(t, errors.IsInvalidReference(err))
}

func TestGeometryKind(t *testing.T) {
	for _, g := range GeometryKinds {
		assert.True(t, g.IsValid())
		parsed, err := ParseGeometryKind(string(g))
		require.NoError(t, err)
		assert.Equal(t, g, parsed)
	}
	assert.False(t, GeometryKind("cartoon").IsValid())
	_, err := ParseGeometryKind("ribbon")
	assert.True(t, errors.IsInvalidReference(err))
}

func TestColorScheme(t *testing.T) {
	for _, c := range ColorSchemes {
		assert.True(t, c.IsValid())
		parsed, err := ParseColorScheme(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	assert.True(t, ColorChargesAbsolute.IsCharge())
	assert.True(t, ColorChargesRelative.IsCharge())
	assert.False(t, ColorConfidence.IsCharge())

	alias, err := ParseColorScheme("alphafold")
	require.NoError(t, err)
	assert.Equal(t, ColorConfidence, alias)

	_, err = ParseColorScheme("rainbow")
	assert.True(t, errors.IsInvalidReference(err))
}

func TestControlVocabularyMapping(t *testing.T) {
	assert.Equal(t, ColorDefault, ColoringStructure.Scheme())
	assert.Equal(t, ColorChargesRelative, ColoringChargesRelative.Scheme())
	assert.Equal(t, ColorChargesAbsolute, ColoringChargesAbsolute.Scheme())

	assert.Equal(t, GeometryDefault, ViewCartoon.Geometry())
	assert.Equal(t, GeometryBallAndStick, ViewBallsAndSticks.Geometry())
	assert.Equal(t, GeometrySurface, ViewSurface.Geometry())

	for _, v := range []ViewType{ViewCartoon, ViewBallsAndSticks, ViewSurface} {
		assert.Equal(t, v, v.Geometry().View())
	}
	for _, c := range []ColoringType{ColoringChargesRelative, ColoringChargesAbsolute, ColoringStructure} {
		assert.Equal(t, c, c.Scheme().Coloring())
	}
	assert.Equal(t, ColoringStructure, ColorElement.Coloring())
	assert.Equal(t, ColoringStructure, ColorConfidence.Coloring())

	_, err := ParseColoringType("confidence")
	assert.True(t, errors.IsInvalidReference(err))
	_, err = ParseViewType("ball-and-stick")
	assert.True(t, errors.IsInvalidReference(err))
}

func TestParseAtomKey(t *testing.T) {
	k, err := ParseAtomKey("ALA:12:CA")
	require.NoError(t, err)
	assert.Equal(t, AtomKey{ResidueName: "ALA", ResidueSeqID: 12, AtomName: "CA"}, k)
	assert.Equal(t, "ALA:12:CA", k.String())

	for _, bad := range []string{"ALA:12", "ALA:x:CA", ":12:CA", "ALA:12:"} {
		_, err := ParseAtomKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseResidueRange(t *testing.T) {
	r, err := ParseResidueRange("10-20")
	require.NoError(t, err)
	assert.True(t, r.Contains(10))
	assert.True(t, r.Contains(20))
	assert.False(t, r.Contains(21))

	for in, want := range map[string]ResidueRange{
		"-3-5":    {Start: -3, End: 5},
		"-5--3":   {Start: -5, End: -3},
		" 7 - 9 ": {Start: 7, End: 9},
		"-5 - -3": {Start: -5, End: -3},
		"0-0":     {Start: 0, End: 0},
		"-10--10": {Start: -10, End: -10},
	} {
		got, err := ParseResidueRange(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"10", "a-b", "-3", "-", "--3", "3-", "3--", "1-2-3"} {
		_, err = ParseResidueRange(bad)
		assert.Error(t, err, bad)
	}
}

func TestSplitMethodName(t *testing.T) {
	m, p := SplitMethodName("eem/un_2016")
	assert.Equal(t, "eem", m)
	assert.Equal(t, "un_2016", p)

	m, p = SplitMethodName("veem")
	assert.Equal(t, "veem", m)
	assert.Empty(t, p)
}

//Personal.AI order the ending
