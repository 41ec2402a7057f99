package viewer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/chargeview/internal/engine"
	"github.com/turtacn/chargeview/internal/engine/scene"
	"github.com/turtacn/chargeview/internal/testutil"
	"github.com/turtacn/chargeview/pkg/errors"
	vtypes "github.com/turtacn/chargeview/pkg/types/viewer"
)

func firstProps(e engine.Engine) engine.RepresentationProps {
	return *e.Structures()[0].Components[0].Representations[0].Props
}

func allProps(e engine.Engine) []engine.RepresentationProps {
	var out []engine.RepresentationProps
	for _, s := range e.Structures() {
		for _, c := range s.Components {
			for _, r := range c.Representations {
				out = append(out, *r.Props)
			}
		}
	}
	return out
}

// mixed has a polymer, a ligand and charges for every atom.
func mixed() []byte {
	b := testutil.NewCIFBuilder("MIX").
		Peptide("A", 4).
		Residue("B", "HEM", 1, true, "FE", "NA", "NB", "NC", "ND")
	return b.PatternCharges("eem/un_2016", 0.8).CIF()
}

func TestType_DefaultIsIdempotent(t *testing.T) {
	v, e, _ := newTestViewer(t, files{"mem://mix.cif": mixed()})
	mustLoad(t, v, "mem://mix.cif", vtypes.FormatMMCIF, vtypes.ProfileACC2)
	ctx := context.Background()

	require.NoError(t, v.Type().Surface(ctx))
	require.NoError(t, v.Type().Default(ctx))
	once := allProps(e)
	require.NoError(t, v.Type().Default(ctx))
	assert.Equal(t, once, allProps(e))
}

func TestType_BallAndStickThenDefaultRestoresSnapshot(t *testing.T) {
	v, e, _ := newTestViewer(t, files{"mem://mix.cif": mixed()})
	mustLoad(t, v, "mem://mix.cif", vtypes.FormatMMCIF, vtypes.ProfileACC2)
	ctx := context.Background()
	loaded := allProps(e)

	var captured []engine.RepresentationProps
	for _, rec := range v.Snapshot().Records() {
		captured = append(captured, rec.Props)
	}
	assert.Equal(t, loaded, captured)

	require.NoError(t, v.Type().BallAndStick(ctx))
	for _, p := range allProps(e) {
		assert.Equal(t, engine.BallAndStickType(), p.Type)
		assert.Equal(t, engine.PhysicalSize(0), p.Size)
		assert.Equal(t, engine.GranularityAtom, p.Color.Charge.ChargeType)
	}
	assert.Equal(t, engine.PickElement, e.Interactivity().Granularity())

	require.NoError(t, v.Type().Default(ctx))
	assert.Equal(t, loaded, allProps(e))
	assert.Equal(t, engine.PickResidue, e.Interactivity().Granularity())
}

func TestType_KeepsColoringAndDerivesGranularity(t *testing.T) {
	v, e, _ := newTestViewer(t, files{"mem://a.cif": threeSets()})
	mustLoad(t, v, "mem://a.cif", vtypes.FormatMMCIF, vtypes.ProfileACC2)
	ctx := context.Background()

	require.NoError(t, v.Color().Absolute(ctx, 0.7))
	assert.Equal(t, engine.GranularityResidue, firstProps(e).Color.Charge.ChargeType)

	require.NoError(t, v.Type().Surface(ctx))
	p := firstProps(e)
	assert.Equal(t, engine.GaussianSurfaceType(), p.Type)
	assert.Equal(t, engine.PhysicalSize(1), p.Size)
	assert.Equal(t, engine.ColorPartialCharges, p.Color.Name)
	assert.Equal(t, engine.ChargeColorParams{Absolute: true, MaxAbsoluteCharge: 0.7, ChargeType: engine.GranularityAtom}, p.Color.Charge)
}

func TestType_SurfaceThenRelativeIsAtomLevel(t *testing.T) {
	v, e, _ := newTestViewer(t, files{"mem://a.cif": threeSets()})
	mustLoad(t, v, "mem://a.cif", vtypes.FormatMMCIF, vtypes.ProfileACC2)
	ctx := context.Background()

	require.NoError(t, v.Type().Surface(ctx))
	require.NoError(t, v.Color().Relative(ctx))

	p := firstProps(e)
	assert.Equal(t, engine.GranularityAtom, p.Color.Charge.ChargeType)
	assert.Equal(t, 0.5, p.Color.Charge.MaxAbsoluteCharge)
	cs := e.Render(scene.RenderOptions{}).Structures[0].Components[0].Representations[0].Charge
	require.NotNil(t, cs)
	assert.Equal(t, engine.GranularityAtom, cs.Granularity)
}

func TestType_UnknownKind(t *testing.T) {
	v, e, _ := newTestViewer(t, files{"mem://a.cif": threeSets()})
	mustLoad(t, v, "mem://a.cif", vtypes.FormatMMCIF, vtypes.ProfileACC2)
	before := allProps(e)

	err := v.Type().Set(context.Background(), vtypes.GeometryKind("spacefill"))
	assert.True(t, errors.IsInvalidReference(err))
	assert.Equal(t, before, allProps(e))
}

func TestType_IsDefaultApplicable(t *testing.T) {
	ligandOnly := testutil.NewCIFBuilder("LIG").Residue("A", "ATP", 1, true, "PA", "O1", "O2", "C1")
	v, _, _ := newTestViewer(t, files{
		"mem://peptide.cif": threeSets(),
		"mem://ligand.cif":  ligandOnly.CIF(),
	})
	assert.False(t, v.Type().IsDefaultApplicable())

	mustLoad(t, v, "mem://peptide.cif", vtypes.FormatMMCIF, vtypes.ProfileACC2)
	assert.True(t, v.Type().IsDefaultApplicable())

	mustLoad(t, v, "mem://ligand.cif", vtypes.FormatMMCIF, vtypes.ProfileACC2)
	assert.False(t, v.Type().IsDefaultApplicable())
}

func TestColor_RelativeIgnoresAbsoluteMaximum(t *testing.T) {
	v, e, _ := newTestViewer(t, files{"mem://a.cif": threeSets()})
	mustLoad(t, v, "mem://a.cif", vtypes.FormatMMCIF, vtypes.ProfileACC2)
	ctx := context.Background()
	require.NoError(t, v.Type().BallAndStick(ctx))

	require.NoError(t, v.Color().Absolute(ctx, 9))
	assert.Equal(t, 9.0, firstProps(e).Color.Charge.MaxAbsoluteCharge)

	require.NoError(t, v.Charges().SetTypeID(3))
	require.NoError(t, v.Color().Set(ctx, vtypes.ColorChargesRelative, vtypes.ColorParams{MaxAbsoluteCharge: 9}))
	p := firstProps(e)
	assert.False(t, p.Color.Charge.Absolute)
	assert.Equal(t, 1.5, p.Color.Charge.MaxAbsoluteCharge)
	assert.Equal(t, 1.5, e.Render(scene.RenderOptions{}).Structures[0].Components[0].Representations[0].Charge.Max)
}

func TestColor_DefaultAndProfiles(t *testing.T) {
	predicted := testutil.NewCIFBuilder("AF").Peptide("A", 4).QualityScores().PatternCharges("eem/un_2016", 0.5).CIF()
	v, e, _ := newTestViewer(t, files{"mem://af.cif": predicted})
	ctx := context.Background()

	mustLoad(t, v, "mem://af.cif", vtypes.FormatMMCIF, vtypes.ProfileACC2)
	assert.Equal(t, engine.ColorPLDDT, firstProps(e).Color.Name)
	require.NoError(t, v.Color().Relative(ctx))
	require.NoError(t, v.Color().Default(ctx))
	assert.Equal(t, engine.ColorPLDDT, firstProps(e).Color.Name)

	mustLoad(t, v, "mem://af.cif", vtypes.FormatMMCIF, vtypes.ProfileAlphaCharges)
	rec := v.Snapshot().Records()[0]
	assert.Equal(t, engine.ColorElementSymbol, rec.Props.Color.Name)
	assert.Equal(t, engine.SizePhysical, rec.Props.Size.Name)
	// the live representation keeps what the preset chose until a switch
	assert.Equal(t, engine.ColorPLDDT, firstProps(e).Color.Name)

	require.NoError(t, v.Color().Default(ctx))
	assert.Equal(t, engine.ColorElementSymbol, firstProps(e).Color.Name)
	require.NoError(t, v.Type().Default(ctx))
	assert.Equal(t, engine.SizePhysical, firstProps(e).Size.Name)

	require.NoError(t, v.Color().Confidence(ctx))
	assert.Equal(t, engine.ColorPLDDT, firstProps(e).Color.Name)
	require.NoError(t, v.Color().Element(ctx))
	assert.Equal(t, engine.ColorElementSymbol, firstProps(e).Color.Name)
}

func TestColor_UncapturedRepresentationsGetElementSymbol(t *testing.T) {
	v, e, _ := newTestViewer(t, files{"mem://a.cif": threeSets()})
	mustLoad(t, v, "mem://a.cif", vtypes.FormatMMCIF, vtypes.ProfileACC2)
	ctx := context.Background()

	// a structure added after the snapshot was taken
	d, err := e.Download(ctx, "mem://a.cif")
	require.NoError(t, err)
	traj, err := e.ParseTrajectory(ctx, d, vtypes.FormatMMCIF)
	require.NoError(t, err)
	_, err = e.ApplyHierarchyPreset(ctx, traj, engine.PresetOptions{RepresentationPreset: engine.PresetAuto})
	require.NoError(t, err)
	require.Len(t, e.Structures(), 2)

	require.NoError(t, v.Color().Relative(ctx))
	assert.Equal(t, engine.ColorPartialCharges, firstProps(e).Color.Name)
	extra := e.Structures()[1].Components[0].Representations[0].Props
	assert.Equal(t, engine.ColorElementSymbol, extra.Color.Name)

	require.NoError(t, v.Type().BallAndStick(ctx))
	assert.Equal(t, engine.TypeCartoon, e.Structures()[1].Components[0].Representations[0].Props.Type.Name)
}

func TestColor_FocusOverlay(t *testing.T) {
	v, e, _ := newTestViewer(t, files{"mem://a.cif": threeSets()})
	mustLoad(t, v, "mem://a.cif", vtypes.FormatMMCIF, vtypes.ProfileACC2)
	ctx := context.Background()

	require.NoError(t, v.Color().Absolute(ctx, 0.4))
	target, surroundings := e.FocusRepresentation().ColorThemes()
	assert.Equal(t, engine.ChargeColor(engine.ChargeColorParams{Absolute: true, MaxAbsoluteCharge: 0.4, ChargeType: engine.GranularityAtom}), target)
	assert.Equal(t, target, surroundings)

	require.NoError(t, v.Color().Relative(ctx))
	target, _ = e.FocusRepresentation().ColorThemes()
	assert.Equal(t, engine.ColorPartialCharges, target.Name)
	assert.False(t, target.Charge.Absolute)
	assert.Equal(t, engine.GranularityAtom, target.Charge.ChargeType)

	require.NoError(t, v.Color().Default(ctx))
	target, _ = e.FocusRepresentation().ColorThemes()
	assert.Equal(t, engine.ColorElementSymbol, target.Name)
	assert.Equal(t, engine.GranularityAtom, target.Charge.ChargeType)
}

func TestColor_InvalidInput(t *testing.T) {
	v, e, _ := newTestViewer(t, files{"mem://a.cif": threeSets()})
	mustLoad(t, v, "mem://a.cif", vtypes.FormatMMCIF, vtypes.ProfileACC2)
	before := allProps(e)
	ctx := context.Background()

	assert.True(t, errors.IsInvalidReference(v.Color().Set(ctx, vtypes.ColorScheme("rainbow"), vtypes.ColorParams{})))
	assert.True(t, errors.IsCode(v.Color().Absolute(ctx, -1), errors.CodeInvalidParam))
	assert.Equal(t, before, allProps(e))
}

type failingUpdate struct{}

func (failingUpdate) To(engine.Ref, engine.RepresentationProps) engine.Update { return failingUpdate{} }
func (failingUpdate) Commit(context.Context) error                            { return assert.AnError }

// failingEngine rejects every representation update.
type failingEngine struct{ *scene.Engine }

func (failingEngine) BeginUpdate() engine.Update { return failingUpdate{} }

func TestSwitchers_EngineFailure(t *testing.T) {
	_, inner, _ := newTestViewer(t, files{"mem://a.cif": threeSets()})
	v := New(failingEngine{inner}, Options{})
	mustLoad(t, v, "mem://a.cif", vtypes.FormatMMCIF, vtypes.ProfileACC2)
	ctx := context.Background()
	inner.Interactivity().SetGranularity(engine.PickResidue)

	err := v.Type().BallAndStick(ctx)
	assert.True(t, errors.IsCode(err, errors.CodeEngineFailure))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, engine.PickResidue, inner.Interactivity().Granularity())

	err = v.Color().Element(ctx)
	assert.True(t, errors.IsCode(err, errors.CodeEngineFailure))
}

func TestBehavior_Focus(t *testing.T) {
	v, e, _ := newTestViewer(t, files{"mem://a.cif": threeSets()})
	assert.True(t, v.Behavior().Focus(vtypes.AtomKey{ResidueName: "ALA", ResidueSeqID: 1, AtomName: "CA"}).IsEmpty())

	mustLoad(t, v, "mem://a.cif", vtypes.FormatMMCIF, vtypes.ProfileACC2)
	loci := v.Behavior().Focus(vtypes.AtomKey{ResidueName: "ALA", ResidueSeqID: 1, AtomName: "CA"})
	require.Equal(t, []int{1}, loci.Atoms)

	assert.Equal(t, []int{1}, e.Interactivity().Highlighted().Atoms)
	assert.Equal(t, []int{1}, e.Interactivity().Selected().Atoms)
	assert.Equal(t, []int{1}, e.FocusTarget().Current().Atoms)
	pos := loci.Model.Atoms[1].Position
	assert.Equal(t, [3]float64{pos.X, pos.Y, pos.Z}, e.Camera().State().Target)
}

func TestBehavior_FocusMissingResidueIsNoop(t *testing.T) {
	v, e, _ := newTestViewer(t, files{"mem://a.cif": threeSets()})
	mustLoad(t, v, "mem://a.cif", vtypes.FormatMMCIF, vtypes.ProfileACC2)
	v.Behavior().Focus(vtypes.AtomKey{ResidueName: "GLY", ResidueSeqID: 2, AtomName: "N"})
	camera := e.Camera().State()

	loci := v.Behavior().Focus(vtypes.AtomKey{ResidueName: "ALA", ResidueSeqID: 12, AtomName: "CA"})
	assert.True(t, loci.IsEmpty())
	assert.Equal(t, []int{5}, e.Interactivity().Highlighted().Atoms)
	assert.Equal(t, []int{5}, e.Interactivity().Selected().Atoms)
	assert.Equal(t, camera, e.Camera().State())
}

func TestBehavior_FocusRange(t *testing.T) {
	v, e, _ := newTestViewer(t, files{"mem://a.cif": threeSets()})
	assert.True(t, v.Behavior().FocusRange(vtypes.ResidueRange{Start: 1, End: 2}).IsEmpty())

	mustLoad(t, v, "mem://a.cif", vtypes.FormatMMCIF, vtypes.ProfileACC2)
	v.Behavior().Focus(vtypes.AtomKey{ResidueName: "ALA", ResidueSeqID: 1, AtomName: "N"})

	loci := v.Behavior().FocusRange(vtypes.ResidueRange{Start: 2, End: 3})
	assert.Len(t, loci.Atoms, 2*testutil.PeptideAtoms)
	assert.Equal(t, loci.Atoms, e.Interactivity().Selected().Atoms)
	// highlight and focus target stay on the previous atom
	assert.Equal(t, []int{0}, e.Interactivity().Highlighted().Atoms)
	assert.Equal(t, []int{0}, e.FocusTarget().Current().Atoms)

	assert.True(t, v.Behavior().FocusRange(vtypes.ResidueRange{Start: 40, End: 50}).IsEmpty())
	assert.Equal(t, loci.Atoms, e.Interactivity().Selected().Atoms)
}

//Personal.AI order the ending
