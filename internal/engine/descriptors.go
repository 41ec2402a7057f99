package engine

import (
	"fmt"
)

// TypeName names a representation geometry provider.
type TypeName string

const (
	TypeCartoon         TypeName = "cartoon"
	TypeBallAndStick    TypeName = "ball-and-stick"
	TypeGaussianSurface TypeName = "gaussian-surface"
	TypeCarbohydrate    TypeName = "carbohydrate"
	TypeSpacefill       TypeName = "spacefill"
)

// ColorName names a color theme provider.
type ColorName string

const (
	ColorElementSymbol  ColorName = "element-symbol"
	ColorPartialCharges ColorName = "sb-ncbr-partial-charges"
	ColorPLDDT          ColorName = "plddt-confidence"
	ColorChainID        ColorName = "chain-id"
	ColorPolymerID      ColorName = "polymer-id"
)

// SizeName names a size theme provider.
type SizeName string

const (
	SizePhysical SizeName = "physical"
	SizeUniform  SizeName = "uniform"
)

// Granularity selects whether charge coloring shows per-atom values or
// per-residue sums.
type Granularity string

const (
	GranularityAtom    Granularity = "atom"
	GranularityResidue Granularity = "residue"
)

// PickGranularity is the unit picked by hover and click.
type PickGranularity string

const (
	PickResidue PickGranularity = "residue"
	PickElement PickGranularity = "element"
)

var (
	knownTypes  = map[TypeName]bool{TypeCartoon: true, TypeBallAndStick: true, TypeGaussianSurface: true, TypeCarbohydrate: true, TypeSpacefill: true}
	knownColors = map[ColorName]bool{ColorElementSymbol: true, ColorPartialCharges: true, ColorPLDDT: true, ColorChainID: true, ColorPolymerID: true}
	knownSizes  = map[SizeName]bool{SizePhysical: true, SizeUniform: true}
)

// ─────────────────────────────────────────────────────────────────────────────
// Descriptors
// ─────────────────────────────────────────────────────────────────────────────

// TypeDescriptor selects a geometry provider and its quality preset.
type TypeDescriptor struct {
	Name    TypeName `json:"name" yaml:"name"`
	Quality string   `json:"quality,omitempty" yaml:"quality,omitempty"`
}

// SizeDescriptor selects a size theme.  Scale 0 means the provider default.
type SizeDescriptor struct {
	Name  SizeName `json:"name" yaml:"name"`
	Scale float64  `json:"scale,omitempty" yaml:"scale,omitempty"`
}

// ChargeColorParams are the parameters of the partial-charge color theme.
// They are carried on every ColorDescriptor so switching to and from the
// charge theme keeps the last granularity.
type ChargeColorParams struct {
	Absolute          bool        `json:"absolute" yaml:"absolute"`
	MaxAbsoluteCharge float64     `json:"maxAbsoluteCharge" yaml:"maxAbsoluteCharge"`
	ChargeType        Granularity `json:"chargeType" yaml:"chargeType"`
}

// ColorDescriptor selects a color theme.
type ColorDescriptor struct {
	Name   ColorName         `json:"name" yaml:"name"`
	Charge ChargeColorParams `json:"params" yaml:"params"`
}

// RepresentationProps is the full parameter set of one representation.
type RepresentationProps struct {
	Type  TypeDescriptor  `json:"type" yaml:"type"`
	Color ColorDescriptor `json:"colorTheme" yaml:"colorTheme"`
	Size  SizeDescriptor  `json:"sizeTheme" yaml:"sizeTheme"`
}

// Validate rejects descriptors naming unknown providers.
func (p RepresentationProps) Validate() error {
	if !knownTypes[p.Type.Name] {
		return fmt.Errorf("unknown representation type %q", p.Type.Name)
	}
	if !knownColors[p.Color.Name] {
		return fmt.Errorf("unknown color theme %q", p.Color.Name)
	}
	if !knownSizes[p.Size.Name] {
		return fmt.Errorf("unknown size theme %q", p.Size.Name)
	}
	return nil
}

// PropsOverride replaces whole descriptors of a RepresentationProps.  Nil
// fields keep the base value.
type PropsOverride struct {
	Type  *TypeDescriptor
	Color *ColorDescriptor
	Size  *SizeDescriptor
}

// Apply returns a copy of p with the non-nil descriptors of o.
func (p RepresentationProps) Apply(o PropsOverride) RepresentationProps {
	out := p
	if o.Type != nil {
		out.Type = *o.Type
	}
	if o.Color != nil {
		out.Color = *o.Color
	}
	if o.Size != nil {
		out.Size = *o.Size
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Builders
// ─────────────────────────────────────────────────────────────────────────────

// BallAndStickType is the ball-and-stick geometry with provider defaults.
func BallAndStickType() TypeDescriptor {
	return TypeDescriptor{Name: TypeBallAndStick, Quality: "auto"}
}

// GaussianSurfaceType is the gaussian surface at high quality.
func GaussianSurfaceType() TypeDescriptor {
	return TypeDescriptor{Name: TypeGaussianSurface, Quality: "high"}
}

// PhysicalSize is the van der Waals size theme.  A zero scale keeps the
// provider default.
func PhysicalSize(scale float64) SizeDescriptor {
	return SizeDescriptor{Name: SizePhysical, Scale: scale}
}

// ElementSymbolColor colors by element.
func ElementSymbolColor() ColorDescriptor {
	return ColorDescriptor{Name: ColorElementSymbol}
}

// ConfidenceColor colors by per-residue pLDDT.
func ConfidenceColor() ColorDescriptor {
	return ColorDescriptor{Name: ColorPLDDT}
}

// ChargeColor colors by partial charge with the given parameters.
func ChargeColor(p ChargeColorParams) ColorDescriptor {
	return ColorDescriptor{Name: ColorPartialCharges, Charge: p}
}

// WithChargeType returns c with only the charge granularity replaced.
func WithChargeType(c ColorDescriptor, g Granularity) ColorDescriptor {
	c.Charge.ChargeType = g
	return c
}

// GranularityFor returns the charge granularity shown by a geometry: cartoon
// and carbohydrate have no atoms to color, so they show residue sums.
func GranularityFor(t TypeName) Granularity {
	switch t {
	case TypeCartoon, TypeCarbohydrate:
		return GranularityResidue
	default:
		return GranularityAtom
	}
}

//Personal.AI order the ending
