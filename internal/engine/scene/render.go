package scene

import (
	"fmt"
	"math"

	"github.com/turtacn/chargeview/internal/domain/structure"
	"github.com/turtacn/chargeview/internal/engine"
)

// Charge color ramp endpoints.
const (
	NegativeChargeColor = 0xFF0000
	ZeroChargeColor     = 0xFFFFFF
	PositiveChargeColor = 0x0000FF
	MissingChargeColor  = 0xAAAAAA
)

// RenderOptions controls the detail of Render.
type RenderOptions struct {
	// Units lists every colored atom or residue of charge-colored
	// representations.
	Units bool
}

// Frame is the resolved description of the scene.
type Frame struct {
	Version     uint64                 `json:"version" yaml:"version"`
	Structures  []RenderedStructure    `json:"structures" yaml:"structures"`
	Camera      engine.CameraSnapshot  `json:"camera" yaml:"camera"`
	PickLevel   engine.PickGranularity `json:"pickGranularity" yaml:"pickGranularity"`
	Selected    int                    `json:"selectedAtoms" yaml:"selectedAtoms"`
	Highlighted int                    `json:"highlightedAtoms" yaml:"highlightedAtoms"`
	FocusAtoms  int                    `json:"focusAtoms" yaml:"focusAtoms"`
	FocusTheme  FocusTheme             `json:"focusTheme" yaml:"focusTheme"`
}

// FocusTheme is the color of the focus overlay.
type FocusTheme struct {
	Target       engine.ColorDescriptor `json:"target" yaml:"target"`
	Surroundings engine.ColorDescriptor `json:"surroundings" yaml:"surroundings"`
}

// RenderedStructure describes one structure.
type RenderedStructure struct {
	Ref          engine.Ref          `json:"ref" yaml:"ref"`
	EntryID      string              `json:"entryId" yaml:"entryId"`
	Format       string              `json:"format" yaml:"format"`
	Atoms        int                 `json:"atoms" yaml:"atoms"`
	ChargeTypeID int                 `json:"chargeTypeId,omitempty" yaml:"chargeTypeId,omitempty"`
	ChargeMethod string              `json:"chargeMethod,omitempty" yaml:"chargeMethod,omitempty"`
	UnitCell     bool                `json:"unitCell,omitempty" yaml:"unitCell,omitempty"`
	Components   []RenderedComponent `json:"components" yaml:"components"`
}

// RenderedComponent describes one component.
type RenderedComponent struct {
	Ref             engine.Ref               `json:"ref" yaml:"ref"`
	Label           string                   `json:"label" yaml:"label"`
	Atoms           int                      `json:"atoms" yaml:"atoms"`
	Representations []RenderedRepresentation `json:"representations" yaml:"representations"`
}

// RenderedRepresentation is one representation with its themes resolved.
type RenderedRepresentation struct {
	Ref       engine.Ref       `json:"ref" yaml:"ref"`
	Type      engine.TypeName  `json:"type" yaml:"type"`
	Quality   string           `json:"quality,omitempty" yaml:"quality,omitempty"`
	Color     engine.ColorName `json:"color" yaml:"color"`
	Size      engine.SizeName  `json:"size" yaml:"size"`
	SizeScale float64          `json:"sizeScale,omitempty" yaml:"sizeScale,omitempty"`
	Charge    *ChargeScale     `json:"charge,omitempty" yaml:"charge,omitempty"`
}

// ChargeScale is the resolved partial-charge coloring of a representation.
type ChargeScale struct {
	Granularity engine.Granularity `json:"granularity" yaml:"granularity"`
	Absolute    bool               `json:"absolute" yaml:"absolute"`
	TypeID      int                `json:"typeId" yaml:"typeId"`
	// Max is the magnitude mapped to full color.
	Max   float64      `json:"max" yaml:"max"`
	Units []ChargeUnit `json:"units,omitempty" yaml:"units,omitempty"`
}

// ChargeUnit is one colored atom or residue.
type ChargeUnit struct {
	Label   string  `json:"label" yaml:"label"`
	Charge  float64 `json:"charge" yaml:"charge"`
	Missing bool    `json:"missing,omitempty" yaml:"missing,omitempty"`
	Color   string  `json:"color" yaml:"color"`
}

// Render resolves every representation against the current charge state.
func (e *Engine) Render(opts RenderOptions) Frame {
	e.mu.RLock()
	frame := Frame{Version: e.version}
	for _, s := range e.structures {
		frame.Structures = append(frame.Structures, e.renderStructure(s, opts))
	}
	e.mu.RUnlock()

	frame.Camera = e.camera.State()
	frame.PickLevel = e.interactivity.Granularity()
	frame.Selected = len(e.interactivity.Selected().Atoms)
	frame.Highlighted = len(e.interactivity.Highlighted().Atoms)
	frame.FocusAtoms = len(e.focusTarget.Current().Atoms)
	frame.FocusTheme.Target, frame.FocusTheme.Surroundings = e.focusRepr.ColorThemes()
	return frame
}

func (e *Engine) renderStructure(s *structureNode, opts RenderOptions) RenderedStructure {
	m := s.model
	typeID := e.charges.TypeID(m)
	rs := RenderedStructure{
		Ref:      s.ref,
		EntryID:  m.EntryID,
		Format:   string(m.Format),
		Atoms:    m.AtomCount(),
		UnitCell: s.unitCell,
	}
	if m.Charges != nil && typeID != 0 {
		rs.ChargeTypeID = typeID
		rs.ChargeMethod = m.Charges.TypeIDToMethod[typeID]
	}
	for _, c := range s.components {
		rc := RenderedComponent{Ref: c.ref, Label: c.label, Atoms: c.data.Len()}
		for _, r := range c.representations {
			p := r.props
			rr := RenderedRepresentation{
				Ref:       r.ref,
				Type:      p.Type.Name,
				Quality:   p.Type.Quality,
				Color:     p.Color.Name,
				Size:      p.Size.Name,
				SizeScale: p.Size.Scale,
			}
			if p.Color.Name == engine.ColorPartialCharges {
				rr.Charge = chargeScale(c.data, p.Color.Charge, typeID, opts.Units)
			}
			rc.Representations = append(rc.Representations, rr)
		}
		rs.Components = append(rs.Components, rc)
	}
	return rs
}

// chargeScale resolves the scale maximum: the explicit value in absolute mode,
// otherwise the active set's maximum at the shown granularity.
func chargeScale(data *structure.Subset, params engine.ChargeColorParams, typeID int, withUnits bool) *ChargeScale {
	g := params.ChargeType
	if g == "" {
		g = engine.GranularityAtom
	}
	cs := &ChargeScale{Granularity: g, Absolute: params.Absolute, TypeID: typeID}

	m := data.Model
	d := m.Charges
	if params.Absolute {
		cs.Max = params.MaxAbsoluteCharge
	} else if d != nil {
		if g == engine.GranularityResidue {
			cs.Max = d.MaxAbsoluteResidueCharges[typeID]
		} else {
			cs.Max = d.MaxAbsoluteAtomCharges[typeID]
		}
	}
	if !withUnits {
		return cs
	}

	if g == engine.GranularityResidue {
		var values []float64
		if d != nil {
			values = d.ResidueCharges[typeID]
		}
		seen := make(map[int]bool)
		for _, a := range data.Atoms {
			ri := m.Atoms[a].ResidueIndex
			if seen[ri] {
				continue
			}
			seen[ri] = true
			res := m.Residues[ri]
			cs.Units = append(cs.Units, unit(fmt.Sprintf("%s:%d", res.Name, res.SeqID), valueAt(values, ri), cs.Max))
		}
		return cs
	}

	var values []float64
	if d != nil {
		values = d.AtomCharges[typeID]
	}
	for _, a := range data.Atoms {
		atom := m.Atoms[a]
		label := fmt.Sprintf("%s:%d:%s", atom.ResidueName, atom.ResidueSeqID, atom.Name)
		cs.Units = append(cs.Units, unit(label, valueAt(values, a), cs.Max))
	}
	return cs
}

func valueAt(values []float64, i int) float64 {
	if i >= len(values) {
		return math.NaN()
	}
	return values[i]
}

func unit(label string, charge, max float64) ChargeUnit {
	if math.IsNaN(charge) {
		return ChargeUnit{Label: label, Missing: true, Color: hex(MissingChargeColor)}
	}
	return ChargeUnit{Label: label, Charge: charge, Color: hex(ChargeColorOf(charge, max))}
}

// ChargeColorOf interpolates from white toward red for negative and blue for
// positive charges.  Magnitudes at or beyond max get the full color; a zero
// max colors everything white.
func ChargeColorOf(charge, max float64) int {
	if max <= 0 || charge == 0 {
		return ZeroChargeColor
	}
	t := math.Min(math.Abs(charge)/max, 1)
	end := PositiveChargeColor
	if charge < 0 {
		end = NegativeChargeColor
	}
	return lerpColor(ZeroChargeColor, end, t)
}

func lerpColor(from, to int, t float64) int {
	channel := func(shift uint) int {
		a := float64((from >> shift) & 0xFF)
		b := float64((to >> shift) & 0xFF)
		return int(math.Round(a+(b-a)*t)) << shift
	}
	return channel(16) | channel(8) | channel(0)
}

func hex(c int) string { return fmt.Sprintf("#%06X", c) }

//Personal.AI order the ending
