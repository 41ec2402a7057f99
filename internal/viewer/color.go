package viewer

import (
	"context"
	"strconv"

	"github.com/turtacn/chargeview/internal/domain/structure"
	"github.com/turtacn/chargeview/internal/engine"
	"github.com/turtacn/chargeview/pkg/errors"
	vtypes "github.com/turtacn/chargeview/pkg/types/viewer"
)

// ColorSwitcher changes the color theme of every representation.
type ColorSwitcher struct {
	v *Viewer
}

func (c *ColorSwitcher) Default(ctx context.Context) error {
	return c.Set(ctx, vtypes.ColorDefault, vtypes.ColorParams{})
}

func (c *ColorSwitcher) Element(ctx context.Context) error {
	return c.Set(ctx, vtypes.ColorElement, vtypes.ColorParams{})
}

func (c *ColorSwitcher) Confidence(ctx context.Context) error {
	return c.Set(ctx, vtypes.ColorConfidence, vtypes.ColorParams{})
}

// Absolute colors charges on a fixed scale of ±max.
func (c *ColorSwitcher) Absolute(ctx context.Context, max float64) error {
	return c.Set(ctx, vtypes.ColorChargesAbsolute, vtypes.ColorParams{MaxAbsoluteCharge: max})
}

// Relative colors charges on the scale of the active charge set.
func (c *ColorSwitcher) Relative(ctx context.Context) error {
	return c.Set(ctx, vtypes.ColorChargesRelative, vtypes.ColorParams{})
}

// activeMax is the largest charge magnitude of the active set of m at
// granularity g, or 0 without charges.
func (c *ColorSwitcher) activeMax(m *structure.Model, g engine.Granularity) float64 {
	props := c.v.engine.ChargeProperties()
	d := props.Get(m)
	if d == nil {
		return 0
	}
	typeID := props.TypeID(m)
	if g == engine.GranularityResidue {
		return d.MaxAbsoluteResidueCharges[typeID]
	}
	return d.MaxAbsoluteAtomCharges[typeID]
}

// resolveColor returns the theme of scheme for one representation.
func (c *ColorSwitcher) resolveColor(scheme vtypes.ColorScheme, params vtypes.ColorParams, rec SnapshotRecord, m *structure.Model, g engine.Granularity) (engine.ColorDescriptor, error) {
	switch scheme {
	case vtypes.ColorChargesAbsolute:
		return engine.ChargeColor(engine.ChargeColorParams{Absolute: true, MaxAbsoluteCharge: params.MaxAbsoluteCharge}), nil
	case vtypes.ColorChargesRelative:
		return engine.ChargeColor(engine.ChargeColorParams{MaxAbsoluteCharge: c.activeMax(m, g)}), nil
	case vtypes.ColorConfidence:
		return engine.ConfidenceColor(), nil
	case vtypes.ColorElement:
		return engine.ElementSymbolColor(), nil
	case vtypes.ColorDefault:
		return rec.Props.Color, nil
	default:
		return engine.ColorDescriptor{}, errors.InvalidReference("unknown color scheme").WithDetail(string(scheme))
	}
}

// Set applies scheme to every representation.  Representations without a
// snapshot record get element-symbol coloring whatever the scheme.  The
// charge granularity follows each representation's current geometry.  The
// focus overlay then gets the charge theme for charge schemes and
// element-symbol otherwise, always at atom granularity.
func (c *ColorSwitcher) Set(ctx context.Context, scheme vtypes.ColorScheme, params vtypes.ColorParams) (err error) {
	defer func() { c.v.record("color", string(scheme), err) }()

	if !scheme.IsValid() {
		return errors.InvalidReference("unknown color scheme").WithDetail(string(scheme))
	}
	if scheme == vtypes.ColorChargesAbsolute && params.MaxAbsoluteCharge < 0 {
		return errors.InvalidParam("maximum charge must not be negative").WithDetail(strconv.FormatFloat(params.MaxAbsoluteCharge, 'g', -1, 64))
	}
	e := c.v.engine
	return e.DataTransaction(ctx, func(ctx context.Context) error {
		snapshot := c.v.Snapshot()
		focus := engine.ChargeColorParams{Absolute: true, MaxAbsoluteCharge: params.MaxAbsoluteCharge}
		for i, s := range e.Structures() {
			if i == 0 && scheme == vtypes.ColorChargesRelative {
				focus = engine.ChargeColorParams{MaxAbsoluteCharge: c.activeMax(s.Model, engine.GranularityAtom)}
			}
			update := e.BeginUpdate()
			for _, comp := range s.Components {
				for _, r := range comp.Representations {
					if r.Props == nil {
						continue
					}
					g := engine.GranularityFor(r.Props.Type.Name)
					color := engine.ElementSymbolColor()
					if rec, ok := snapshot.Lookup(r.Ref); ok {
						resolved, err := c.resolveColor(scheme, params, rec, s.Model, g)
						if err != nil {
							return err
						}
						color = resolved
					}
					color = engine.WithChargeType(color, g)
					update.To(r.Ref, r.Props.Apply(engine.PropsOverride{Color: &color}))
				}
			}
			if err := update.Commit(ctx); err != nil {
				return engineError(err, "failed to update color theme")
			}
		}

		overlay := engine.ElementSymbolColor()
		if scheme.IsCharge() {
			overlay = engine.ChargeColor(focus)
		}
		overlay = engine.WithChargeType(overlay, engine.GranularityAtom)
		e.FocusRepresentation().UpdateColorTheme(overlay, overlay)
		return nil
	})
}

//Personal.AI order the ending
