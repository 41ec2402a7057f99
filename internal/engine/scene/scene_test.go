package scene

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/turtacn/chargeview/internal/domain/structure"
	"github.com/turtacn/chargeview/internal/engine"
	"github.com/turtacn/chargeview/internal/infrastructure/fetch"
	"github.com/turtacn/chargeview/internal/testutil"
	"github.com/turtacn/chargeview/pkg/errors"
	vtypes "github.com/turtacn/chargeview/pkg/types/viewer"
)

func memFetcher(files map[string][]byte) fetch.Fetcher {
	return fetch.FetcherFunc(func(ctx context.Context, rawURL string) (*fetch.Result, error) {
		data, ok := files[rawURL]
		if !ok {
			return nil, errors.NotFound("no such file")
		}
		return &fetch.Result{URL: rawURL, Bytes: data}, nil
	})
}

// loadInto runs the download, parse and preset steps for one file.
func loadInto(t *testing.T, e *Engine, data []byte, format vtypes.Format) engine.HierarchyStructure {
	t.Helper()
	ctx := context.Background()
	e.fetcher = memFetcher(map[string][]byte{"mem://x": data})
	d, err := e.Download(ctx, "mem://x")
	require.NoError(t, err)
	traj, err := e.ParseTrajectory(ctx, d, format)
	require.NoError(t, err)
	refs, err := e.ApplyHierarchyPreset(ctx, traj, engine.PresetOptions{RepresentationPreset: engine.PresetAuto})
	require.NoError(t, err)
	require.Len(t, refs, 1)
	structures := e.Structures()
	require.NotEmpty(t, structures)
	return structures[len(structures)-1]
}

func labels(s engine.HierarchyStructure) []string {
	var out []string
	for _, c := range s.Components {
		out = append(out, c.Label)
	}
	return out
}

func TestAutoPreset_Peptide(t *testing.T) {
	e := New(Options{})
	s := loadInto(t, e, testutil.ChargedPeptide("1ABC", 4, "eem/un_2016").CIF(), vtypes.FormatMMCIF)

	assert.Equal(t, []string{ComponentPolymer}, labels(s))
	polymer := s.Components[0]
	assert.Equal(t, 4*testutil.PeptideAtoms, polymer.Data.Len())
	require.Len(t, polymer.Representations, 1)
	props := polymer.Representations[0].Props
	require.NotNil(t, props)
	assert.Equal(t, engine.TypeCartoon, props.Type.Name)
	assert.Equal(t, engine.ColorChainID, props.Color.Name)
	assert.Equal(t, engine.SizeUniform, props.Size.Name)

	assert.Equal(t, 1, e.ChargeProperties().TypeID(s.Model))
	assert.NotNil(t, e.ChargeProperties().Get(s.Model))
}

func TestAutoPreset_ResidueKinds(t *testing.T) {
	cif := testutil.NewCIFBuilder("MIX").
		Peptide("A", 2).
		Residue("B", "HEM", 1, true, "FE", "NA", "NB").
		Residue("C", "NAG", 1, true, "C1", "O5").
		Residue("D", "HOH", 1, true, "O").
		CIF()
	e := New(Options{})
	s := loadInto(t, e, cif, vtypes.FormatMMCIF)

	assert.Equal(t, []string{ComponentPolymer, ComponentLigand, ComponentBranched, ComponentWater}, labels(s))
	ligand := s.Components[1]
	assert.Equal(t, 3, ligand.Data.Len())
	assert.Equal(t, engine.TypeBallAndStick, ligand.Representations[0].Props.Type.Name)
	assert.Equal(t, engine.SizePhysical, ligand.Representations[0].Props.Size.Name)

	branched := s.Components[2]
	require.Len(t, branched.Representations, 2)
	assert.Equal(t, engine.TypeCarbohydrate, branched.Representations[0].Props.Type.Name)
	assert.Equal(t, engine.TypeBallAndStick, branched.Representations[1].Props.Type.Name)

	// no charge categories
	assert.Equal(t, 0, e.ChargeProperties().TypeID(s.Model))
	assert.Nil(t, e.ChargeProperties().Get(s.Model))
}

func TestAutoPreset_QualityScoresSelectConfidence(t *testing.T) {
	e := New(Options{})
	s := loadInto(t, e, testutil.NewCIFBuilder("AF").Peptide("A", 3).QualityScores().CIF(), vtypes.FormatMMCIF)
	assert.Equal(t, engine.ColorPLDDT, s.Components[0].Representations[0].Props.Color.Name)
}

func TestEmptyPreset(t *testing.T) {
	e := New(Options{})
	ctx := context.Background()
	traj, err := e.ParseTrajectory(ctx, &engine.Data{Bytes: testutil.ChargedPeptide("1ABC", 1).CIF()}, vtypes.FormatMMCIF)
	require.NoError(t, err)
	_, err = e.ApplyHierarchyPreset(ctx, traj, engine.PresetOptions{RepresentationPreset: engine.PresetEmpty})
	require.NoError(t, err)
	require.Len(t, e.Structures(), 1)
	assert.Empty(t, e.Structures()[0].Components)

	_, err = e.ApplyHierarchyPreset(ctx, traj, engine.PresetOptions{RepresentationPreset: "illustrative"})
	assert.True(t, errors.IsInvalidReference(err))
}

func TestParseTrajectory(t *testing.T) {
	e := New(Options{})
	ctx := context.Background()

	traj, err := e.ParseTrajectory(ctx, &engine.Data{Bytes: testutil.ChargedPeptide("1ABC", 2).PDB()}, vtypes.FormatPDB)
	require.NoError(t, err)
	require.Len(t, traj.Models, 1)
	assert.Equal(t, 2*testutil.PeptideAtoms, traj.Models[0].AtomCount())
	assert.Nil(t, traj.Models[0].Charges)

	_, err = e.ParseTrajectory(ctx, &engine.Data{Bytes: []byte("not a structure")}, vtypes.FormatMMCIF)
	assert.True(t, errors.IsCode(err, errors.CodeParseFailed))

	_, err = e.ParseTrajectory(ctx, &engine.Data{}, vtypes.Format("sdf"))
	assert.True(t, errors.IsInvalidReference(err))
}

func TestDownload(t *testing.T) {
	ctx := context.Background()
	_, err := New(Options{}).Download(ctx, "mem://x")
	assert.True(t, errors.IsPrecondition(err))

	e := New(Options{Fetcher: memFetcher(map[string][]byte{"mem://a": []byte("data_A\n")})})
	d, err := e.Download(ctx, "mem://a")
	require.NoError(t, err)
	assert.NotEmpty(t, d.Ref)
	assert.Equal(t, "data_A\n", string(d.Bytes))

	_, err = e.Download(ctx, "mem://none")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestCommit_AllOrNothing(t *testing.T) {
	e := New(Options{})
	s := loadInto(t, e, testutil.ChargedPeptide("1ABC", 2, "eem/un_2016").CIF(), vtypes.FormatMMCIF)
	ref := s.Components[0].Representations[0].Ref
	before := *s.Components[0].Representations[0].Props
	ctx := context.Background()

	next := before
	next.Type = engine.BallAndStickType()
	err := e.BeginUpdate().To(ref, next).To("missing", next).Commit(ctx)
	assert.True(t, errors.IsInvalidReference(err))
	assert.Equal(t, before, *e.Structures()[0].Components[0].Representations[0].Props)

	bad := next
	bad.Color.Name = "rainbow"
	err = e.BeginUpdate().To(ref, next).To(ref, bad).Commit(ctx)
	assert.True(t, errors.IsInvalidReference(err))
	assert.Equal(t, before, *e.Structures()[0].Components[0].Representations[0].Props)

	v := e.Version()
	require.NoError(t, e.BeginUpdate().To(ref, next).Commit(ctx))
	assert.Equal(t, next, *e.Structures()[0].Components[0].Representations[0].Props)
	assert.Greater(t, e.Version(), v)

	require.NoError(t, e.BeginUpdate().Commit(ctx))
}

func TestStructures_ReturnsCopies(t *testing.T) {
	e := New(Options{})
	s := loadInto(t, e, testutil.ChargedPeptide("1ABC", 1).CIF(), vtypes.FormatMMCIF)
	s.Components[0].Representations[0].Props.Type.Name = engine.TypeSpacefill
	assert.Equal(t, engine.TypeCartoon, e.Structures()[0].Components[0].Representations[0].Props.Type.Name)
}

func TestDataTransaction_HoldsBackOtherWriters(t *testing.T) {
	e := New(Options{})
	s := loadInto(t, e, testutil.ChargedPeptide("1ABC", 1).CIF(), vtypes.FormatMMCIF)
	ref := s.Components[0].Representations[0].Ref
	props := *s.Components[0].Representations[0].Props

	outside := make(chan error, 1)
	err := e.DataTransaction(context.Background(), func(ctx context.Context) error {
		go func() {
			p := props
			p.Type = engine.GaussianSurfaceType()
			outside <- e.BeginUpdate().To(ref, p).Commit(context.Background())
		}()

		p := props
		p.Type = engine.BallAndStickType()
		if err := e.BeginUpdate().To(ref, p).Commit(ctx); err != nil {
			return err
		}
		// nested transactions join the outer one
		if err := e.DataTransaction(ctx, func(context.Context) error { return nil }); err != nil {
			return err
		}

		time.Sleep(20 * time.Millisecond)
		select {
		case <-outside:
			t.Error("outside commit applied during transaction")
		default:
		}
		assert.Equal(t, engine.TypeBallAndStick, e.Structures()[0].Components[0].Representations[0].Props.Type.Name)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, <-outside)
	assert.Equal(t, engine.TypeGaussianSurface, e.Structures()[0].Components[0].Representations[0].Props.Type.Name)
}

func TestCancelledContext(t *testing.T) {
	e := New(Options{})
	s := loadInto(t, e, testutil.ChargedPeptide("1ABC", 1, "eem/un_2016").CIF(), vtypes.FormatMMCIF)
	rep := s.Components[0].Representations[0]

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.ParseTrajectory(ctx, &engine.Data{Bytes: testutil.ChargedPeptide("1ABC", 1).CIF()}, vtypes.FormatMMCIF)
	assert.True(t, errors.IsCode(err, errors.CodeTimeout))

	err = e.BeginUpdate().To(rep.Ref, *rep.Props).Commit(ctx)
	assert.True(t, errors.IsCode(err, errors.CodeTimeout))

	assert.True(t, errors.IsCode(e.Clear(ctx), errors.CodeTimeout))
	assert.Len(t, e.Structures(), 1)
}

func TestClear(t *testing.T) {
	e := New(Options{})
	s := loadInto(t, e, testutil.ChargedPeptide("1ABC", 2, "eem/un_2016").CIF(), vtypes.FormatMMCIF)
	loci := engine.Loci{Structure: s.Ref, Model: s.Model, Atoms: []int{0, 1}}
	e.Interactivity().SelectOnly(loci)
	e.Camera().Focus(loci)
	e.FocusTarget().SetFromLoci(loci)
	e.FocusRepresentation().UpdateColorTheme(engine.ConfidenceColor(), engine.ConfidenceColor())

	ref := s.Components[0].Representations[0].Ref
	require.NoError(t, e.Clear(context.Background()))

	assert.Empty(t, e.Structures())
	assert.True(t, e.Interactivity().Selected().IsEmpty())
	assert.True(t, e.FocusTarget().Current().IsEmpty())
	assert.Equal(t, engine.CameraSnapshot{}, e.Camera().State())
	assert.Equal(t, 0, e.ChargeProperties().TypeID(s.Model))
	target, _ := e.FocusRepresentation().ColorThemes()
	assert.Equal(t, engine.ColorPLDDT, target.Name)

	err := e.BeginUpdate().To(ref, *s.Components[0].Representations[0].Props).Commit(context.Background())
	assert.True(t, errors.IsInvalidReference(err))
}

func TestCameraFocus(t *testing.T) {
	m := structure.NewModel("X", vtypes.FormatMMCIF, []structure.Atom{
		{ID: 1, Name: "C1", ResidueName: "LIG", Position: r3.Vec{X: -3}},
		{ID: 2, Name: "C2", ResidueName: "LIG", Position: r3.Vec{X: 3}},
		{ID: 3, Name: "C3", ResidueName: "LIG", Position: r3.Vec{Y: 10}},
	})
	c := &camera{}

	c.Focus(engine.Loci{Model: m})
	assert.Equal(t, engine.CameraSnapshot{}, c.State())

	c.Focus(engine.Loci{Model: m, Atoms: []int{0, 1}})
	assert.Equal(t, [3]float64{0, 0, 0}, c.State().Target)
	assert.InDelta(t, 3+FocusExtraRadius, c.State().Radius, 1e-9)

	c.Focus(engine.Loci{Model: m, Atoms: []int{2}})
	assert.Equal(t, [3]float64{0, 10, 0}, c.State().Target)
	assert.InDelta(t, MinFocusRadius+FocusExtraRadius, c.State().Radius, 1e-9)
}

func TestInteractivity(t *testing.T) {
	i := newInteractivity()
	assert.Equal(t, engine.PickResidue, i.Granularity())
	i.SetGranularity(engine.PickElement)
	assert.Equal(t, engine.PickElement, i.Granularity())

	atoms := []int{4, 5}
	i.HighlightOnly(engine.Loci{Atoms: atoms})
	atoms[0] = 99
	assert.Equal(t, []int{4, 5}, i.Highlighted().Atoms)
	assert.True(t, i.Selected().IsEmpty())
}

//Personal.AI order the ending
