package viewer

import (
	"context"

	"github.com/turtacn/chargeview/internal/engine"
	"github.com/turtacn/chargeview/pkg/errors"
	vtypes "github.com/turtacn/chargeview/pkg/types/viewer"
)

// TypeSwitcher changes the geometry of every captured representation.
type TypeSwitcher struct {
	v *Viewer
}

// IsDefaultApplicable reports whether the load-time defaults include a
// cartoon or carbohydrate geometry, i.e. whether "default" differs from
// ball-and-stick in a meaningful way.
func (t *TypeSwitcher) IsDefaultApplicable() bool {
	for _, rec := range t.v.Snapshot().Records() {
		switch rec.Props.Type.Name {
		case engine.TypeCartoon, engine.TypeCarbohydrate:
			return true
		}
	}
	return false
}

func (t *TypeSwitcher) Default(ctx context.Context) error {
	return t.Set(ctx, vtypes.GeometryDefault)
}

func (t *TypeSwitcher) BallAndStick(ctx context.Context) error {
	return t.Set(ctx, vtypes.GeometryBallAndStick)
}

func (t *TypeSwitcher) Surface(ctx context.Context) error {
	return t.Set(ctx, vtypes.GeometrySurface)
}

// resolveGeometry returns the type and size for kind.  rec supplies them for
// GeometryDefault.
func resolveGeometry(kind vtypes.GeometryKind, rec SnapshotRecord) (engine.TypeDescriptor, engine.SizeDescriptor, error) {
	switch kind {
	case vtypes.GeometryBallAndStick:
		return engine.BallAndStickType(), engine.PhysicalSize(0), nil
	case vtypes.GeometrySurface:
		return engine.GaussianSurfaceType(), engine.PhysicalSize(1), nil
	case vtypes.GeometryDefault:
		return rec.Props.Type, rec.Props.Size, nil
	default:
		return engine.TypeDescriptor{}, engine.SizeDescriptor{}, errors.InvalidReference("unknown geometry kind").WithDetail(string(kind))
	}
}

// Set applies kind to every representation with a snapshot record.  The
// current color theme is kept; only its charge granularity follows the new
// geometry.  Each structure is committed as one update, all inside a single
// transaction, after which the pick granularity is residue for "default" and
// element otherwise.
func (t *TypeSwitcher) Set(ctx context.Context, kind vtypes.GeometryKind) (err error) {
	defer func() { t.v.record("type", string(kind), err) }()

	if !kind.IsValid() {
		return errors.InvalidReference("unknown geometry kind").WithDetail(string(kind))
	}
	e := t.v.engine
	err = e.DataTransaction(ctx, func(ctx context.Context) error {
		snapshot := t.v.Snapshot()
		for _, s := range e.Structures() {
			update := e.BeginUpdate()
			for _, c := range s.Components {
				for _, r := range c.Representations {
					rec, ok := snapshot.Lookup(r.Ref)
					if !ok || r.Props == nil {
						continue
					}
					typ, size, err := resolveGeometry(kind, rec)
					if err != nil {
						return err
					}
					color := engine.WithChargeType(r.Props.Color, engine.GranularityFor(typ.Name))
					update.To(r.Ref, r.Props.Apply(engine.PropsOverride{Type: &typ, Color: &color, Size: &size}))
				}
			}
			if err := update.Commit(ctx); err != nil {
				return engineError(err, "failed to update representation type")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	pick := engine.PickElement
	if kind == vtypes.GeometryDefault {
		pick = engine.PickResidue
	}
	e.Interactivity().SetGranularity(pick)
	return nil
}

//Personal.AI order the ending
