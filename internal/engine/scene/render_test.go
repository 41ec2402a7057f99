package scene

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/chargeview/internal/engine"
	"github.com/turtacn/chargeview/internal/testutil"
	vtypes "github.com/turtacn/chargeview/pkg/types/viewer"
)

func TestChargeColorOf(t *testing.T) {
	assert.Equal(t, ZeroChargeColor, ChargeColorOf(0, 1))
	assert.Equal(t, ZeroChargeColor, ChargeColorOf(0.5, 0))
	assert.Equal(t, NegativeChargeColor, ChargeColorOf(-1, 1))
	assert.Equal(t, PositiveChargeColor, ChargeColorOf(1, 1))
	// clamped beyond max
	assert.Equal(t, PositiveChargeColor, ChargeColorOf(3, 1))
	// halfway to blue
	assert.Equal(t, 0x8080FF, ChargeColorOf(0.5, 1))
	assert.Equal(t, 0xFF8080, ChargeColorOf(-0.5, 1))
}

func setColor(t *testing.T, e *Engine, color engine.ColorDescriptor) {
	t.Helper()
	s := e.Structures()[0]
	u := e.BeginUpdate()
	for _, c := range s.Components {
		for _, r := range c.Representations {
			p := *r.Props
			p.Color = color
			u.To(r.Ref, p)
		}
	}
	require.NoError(t, u.Commit(context.Background()))
}

func TestRender_RelativeUsesActiveSetMaximum(t *testing.T) {
	e := New(Options{})
	s := loadInto(t, e, testutil.ChargedPeptide("1ABC", 4, "eem/un_2016", "qeq/x").CIF(), vtypes.FormatMMCIF)
	d := s.Model.Charges

	setColor(t, e, engine.ChargeColor(engine.ChargeColorParams{ChargeType: engine.GranularityResidue}))
	frame := e.Render(RenderOptions{})
	cs := frame.Structures[0].Components[0].Representations[0].Charge
	require.NotNil(t, cs)
	assert.Equal(t, 1, cs.TypeID)
	assert.InDelta(t, d.MaxAbsoluteResidueCharges[1], cs.Max, 1e-12)
	assert.Empty(t, cs.Units)
	assert.Equal(t, "eem/un_2016", frame.Structures[0].ChargeMethod)

	e.ChargeProperties().SetTypeID(s.Model, 2)
	setColor(t, e, engine.ChargeColor(engine.ChargeColorParams{ChargeType: engine.GranularityAtom}))
	cs = e.Render(RenderOptions{}).Structures[0].Components[0].Representations[0].Charge
	assert.Equal(t, 2, cs.TypeID)
	assert.InDelta(t, 1.0, cs.Max, 1e-12)
}

func TestRender_AbsoluteUsesExplicitMaximum(t *testing.T) {
	e := New(Options{})
	loadInto(t, e, testutil.ChargedPeptide("1ABC", 2, "eem/un_2016").CIF(), vtypes.FormatMMCIF)

	setColor(t, e, engine.ChargeColor(engine.ChargeColorParams{Absolute: true, MaxAbsoluteCharge: 0.25, ChargeType: engine.GranularityAtom}))
	cs := e.Render(RenderOptions{Units: true}).Structures[0].Components[0].Representations[0].Charge
	require.NotNil(t, cs)
	assert.True(t, cs.Absolute)
	assert.Equal(t, 0.25, cs.Max)
	require.Len(t, cs.Units, 2*testutil.PeptideAtoms)

	charges := testutil.PatternCharges(2*testutil.PeptideAtoms, 0.5)
	assert.Equal(t, "ALA:1:N", cs.Units[0].Label)
	assert.InDelta(t, charges[0], cs.Units[0].Charge, 1e-4)
	// -0.5 is beyond the 0.25 scale
	assert.Equal(t, "#FF0000", cs.Units[0].Color)
	assert.Equal(t, "#FFFFFF", cs.Units[3].Color)
}

func TestRender_ResidueUnitsAndMissingCharges(t *testing.T) {
	b := testutil.NewCIFBuilder("PART").Peptide("A", 2)
	b.Charges("eem/un_2016", []float64{0.1, 0.2})
	e := New(Options{})
	loadInto(t, e, b.CIF(), vtypes.FormatMMCIF)

	setColor(t, e, engine.ChargeColor(engine.ChargeColorParams{ChargeType: engine.GranularityAtom}))
	cs := e.Render(RenderOptions{Units: true}).Structures[0].Components[0].Representations[0].Charge
	assert.False(t, cs.Units[0].Missing)
	assert.True(t, cs.Units[2].Missing)
	assert.Equal(t, "#AAAAAA", cs.Units[2].Color)

	setColor(t, e, engine.ChargeColor(engine.ChargeColorParams{ChargeType: engine.GranularityResidue}))
	cs = e.Render(RenderOptions{Units: true}).Structures[0].Components[0].Representations[0].Charge
	require.Len(t, cs.Units, 2)
	assert.Equal(t, "ALA:1", cs.Units[0].Label)
	assert.InDelta(t, 0.3, cs.Units[0].Charge, 1e-4)
	assert.Equal(t, "GLY:2", cs.Units[1].Label)

	// NaN never reaches the encoder
	_, err := json.Marshal(e.Render(RenderOptions{Units: true}))
	assert.NoError(t, err)
}

func TestRender_Managers(t *testing.T) {
	e := New(Options{})
	s := loadInto(t, e, testutil.ChargedPeptide("1ABC", 2).CIF(), vtypes.FormatMMCIF)
	loci := engine.Loci{Structure: s.Ref, Model: s.Model, Atoms: []int{1, 2, 3}}
	e.Interactivity().SelectOnly(loci)
	e.Interactivity().SetGranularity(engine.PickElement)
	e.FocusTarget().SetFromLoci(loci)

	frame := e.Render(RenderOptions{})
	assert.Equal(t, 3, frame.Selected)
	assert.Equal(t, 0, frame.Highlighted)
	assert.Equal(t, 3, frame.FocusAtoms)
	assert.Equal(t, engine.PickElement, frame.PickLevel)
	assert.Equal(t, engine.ColorElementSymbol, frame.FocusTheme.Target.Name)
	assert.Nil(t, frame.Structures[0].Components[0].Representations[0].Charge)
}

//Personal.AI order the ending
