// Package viewer defines the closed enumerations and request keys shared by
// every layer that drives the visualization state controller: the viewer core,
// the control-state service, the HTTP API and the CLI.  No logic lives here
// beyond parsing and mapping between the UI vocabulary and the viewer
// vocabulary.
package viewer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/turtacn/chargeview/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Format: structural file format accepted by the loader
// ─────────────────────────────────────────────────────────────────────────────

// Format identifies the trajectory format of a structure file.
type Format string

const (
	// FormatMMCIF is PDBx/mmCIF.  Only this format carries charge categories.
	FormatMMCIF Format = "mmcif"

	// FormatPDB is the legacy fixed-column PDB format.
	FormatPDB Format = "pdb"
)

// IsValid reports whether f is a known format.
func (f Format) IsValid() bool {
	switch f {
	case FormatMMCIF, FormatPDB:
		return true
	}
	return false
}

// CarriesCharges reports whether the format can embed charge records.
func (f Format) CarriesCharges() bool { return f == FormatMMCIF }

// ParseFormat accepts the canonical names plus the common aliases "cif" and
// "pdbx".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mmcif", "cif", "pdbx":
		return FormatMMCIF, nil
	case "pdb", "ent":
		return FormatPDB, nil
	}
	return "", errors.InvalidReference("unknown structure format").WithDetail(s)
}

// ─────────────────────────────────────────────────────────────────────────────
// TargetProfile: which web application the snapshot defaults are seeded for
// ─────────────────────────────────────────────────────────────────────────────

// TargetProfile selects how load-time defaults are captured.
type TargetProfile string

const (
	// ProfileACC2 keeps whatever color and size themes the preset chose.
	ProfileACC2 TargetProfile = "ACC2"

	// ProfileAlphaCharges replaces the captured color with element-symbol and
	// the captured size with physical, so predicted-structure confidence
	// coloring never becomes the "default".
	ProfileAlphaCharges TargetProfile = "AlphaCharges"
)

// IsValid reports whether p is a known profile.
func (p TargetProfile) IsValid() bool {
	return p == ProfileACC2 || p == ProfileAlphaCharges
}

// ParseTargetProfile is case-insensitive.
func ParseTargetProfile(s string) (TargetProfile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "acc2":
		return ProfileACC2, nil
	case "alphacharges", "alpha-charges":
		return ProfileAlphaCharges, nil
	}
	return "", errors.InvalidReference("unknown target profile").WithDetail(s)
}

// ─────────────────────────────────────────────────────────────────────────────
// GeometryKind: argument of the type switcher
// ─────────────────────────────────────────────────────────────────────────────

// GeometryKind is the representation geometry requested by setType.
type GeometryKind string

const (
	GeometryDefault      GeometryKind = "default"
	GeometryBallAndStick GeometryKind = "ball-and-stick"
	GeometrySurface      GeometryKind = "surface"
)

// GeometryKinds lists every kind in presentation order.
var GeometryKinds = []GeometryKind{GeometryDefault, GeometryBallAndStick, GeometrySurface}

// IsValid reports whether g is a known geometry kind.
func (g GeometryKind) IsValid() bool {
	switch g {
	case GeometryDefault, GeometryBallAndStick, GeometrySurface:
		return true
	}
	return false
}

// View is the UI view that shows g.
func (g GeometryKind) View() ViewType {
	switch g {
	case GeometryBallAndStick:
		return ViewBallsAndSticks
	case GeometrySurface:
		return ViewSurface
	default:
		return ViewCartoon
	}
}

// ParseGeometryKind accepts the canonical names and "ballAndStick".
func ParseGeometryKind(s string) (GeometryKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "default":
		return GeometryDefault, nil
	case "ball-and-stick", "ballandstick", "balls-and-sticks":
		return GeometryBallAndStick, nil
	case "surface":
		return GeometrySurface, nil
	}
	return "", errors.InvalidReference("unknown geometry kind").WithDetail(s)
}

// ─────────────────────────────────────────────────────────────────────────────
// ColorScheme: argument of the color switcher
// ─────────────────────────────────────────────────────────────────────────────

// ColorScheme is the coloring requested by setColor.
type ColorScheme string

const (
	ColorDefault         ColorScheme = "default"
	ColorElement         ColorScheme = "element"
	ColorChargesAbsolute ColorScheme = "charges-absolute"
	ColorChargesRelative ColorScheme = "charges-relative"
	ColorConfidence      ColorScheme = "confidence"
)

// ColorSchemes lists every scheme in presentation order.
var ColorSchemes = []ColorScheme{ColorDefault, ColorElement, ColorChargesAbsolute, ColorChargesRelative, ColorConfidence}

// IsValid reports whether c is a known scheme.
func (c ColorScheme) IsValid() bool {
	switch c {
	case ColorDefault, ColorElement, ColorChargesAbsolute, ColorChargesRelative, ColorConfidence:
		return true
	}
	return false
}

// IsCharge reports whether c selects the partial-charge theme.
func (c ColorScheme) IsCharge() bool {
	return c == ColorChargesAbsolute || c == ColorChargesRelative
}

// Coloring is the UI coloring that shows c.  Every non-charge scheme is a
// structure coloring.
func (c ColorScheme) Coloring() ColoringType {
	switch c {
	case ColorChargesRelative:
		return ColoringChargesRelative
	case ColorChargesAbsolute:
		return ColoringChargesAbsolute
	default:
		return ColoringStructure
	}
}

// ParseColorScheme accepts the canonical names plus "absolute", "relative"
// and "alphafold".
func ParseColorScheme(s string) (ColorScheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "default":
		return ColorDefault, nil
	case "element", "element-symbol":
		return ColorElement, nil
	case "charges-absolute", "absolute":
		return ColorChargesAbsolute, nil
	case "charges-relative", "relative":
		return ColorChargesRelative, nil
	case "confidence", "alphafold", "plddt":
		return ColorConfidence, nil
	}
	return "", errors.InvalidReference("unknown color scheme").WithDetail(s)
}

// ColorParams carries the caller-supplied numeric parameters of setColor.
// MaxAbsoluteCharge is honoured by ColorChargesAbsolute only.
type ColorParams struct {
	MaxAbsoluteCharge float64 `json:"maxAbsoluteCharge,omitempty" yaml:"maxAbsoluteCharge,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Control-state vocabulary
// ─────────────────────────────────────────────────────────────────────────────

// ColoringType is the UI-facing coloring selection.
type ColoringType string

const (
	ColoringStructure       ColoringType = "structure"
	ColoringChargesRelative ColoringType = "charges-relative"
	ColoringChargesAbsolute ColoringType = "charges-absolute"
)

// ParseColoringType rejects anything outside the three UI values.
func ParseColoringType(s string) (ColoringType, error) {
	switch ColoringType(strings.ToLower(strings.TrimSpace(s))) {
	case ColoringStructure:
		return ColoringStructure, nil
	case ColoringChargesRelative:
		return ColoringChargesRelative, nil
	case ColoringChargesAbsolute:
		return ColoringChargesAbsolute, nil
	}
	return "", errors.InvalidReference("unknown coloring type").WithDetail(s)
}

// Scheme maps the UI coloring onto the color switcher's scheme.
func (c ColoringType) Scheme() ColorScheme {
	switch c {
	case ColoringChargesRelative:
		return ColorChargesRelative
	case ColoringChargesAbsolute:
		return ColorChargesAbsolute
	default:
		return ColorDefault
	}
}

// ViewType is the UI-facing geometry selection.
type ViewType string

const (
	ViewCartoon        ViewType = "cartoon"
	ViewBallsAndSticks ViewType = "balls-and-sticks"
	ViewSurface        ViewType = "surface"
)

// ParseViewType rejects anything outside the three UI values.
func ParseViewType(s string) (ViewType, error) {
	switch ViewType(strings.ToLower(strings.TrimSpace(s))) {
	case ViewCartoon:
		return ViewCartoon, nil
	case ViewBallsAndSticks:
		return ViewBallsAndSticks, nil
	case ViewSurface:
		return ViewSurface, nil
	}
	return "", errors.InvalidReference("unknown view type").WithDetail(s)
}

// Geometry maps the UI view onto the type switcher's kind.
func (v ViewType) Geometry() GeometryKind {
	switch v {
	case ViewBallsAndSticks:
		return GeometryBallAndStick
	case ViewSurface:
		return GeometrySurface
	default:
		return GeometryDefault
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Focus keys
// ─────────────────────────────────────────────────────────────────────────────

// AtomKey identifies one atom by label_comp_id, label_seq_id and label_atom_id.
type AtomKey struct {
	ResidueName  string `json:"residueName" yaml:"residueName"`
	ResidueSeqID int    `json:"residueSeqId" yaml:"residueSeqId"`
	AtomName     string `json:"atomName" yaml:"atomName"`
}

func (k AtomKey) String() string {
	return fmt.Sprintf("%s:%d:%s", k.ResidueName, k.ResidueSeqID, k.AtomName)
}

// ParseAtomKey parses "RES:SEQ:ATOM", e.g. "ALA:12:CA".
func ParseAtomKey(s string) (AtomKey, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
		return AtomKey{}, errors.InvalidParam("atom key must look like RES:SEQ:ATOM").WithDetail(s)
	}
	seq, err := strconv.Atoi(parts[1])
	if err != nil {
		return AtomKey{}, errors.InvalidParam("atom key residue sequence id must be an integer").WithDetail(s)
	}
	return AtomKey{ResidueName: parts[0], ResidueSeqID: seq, AtomName: parts[2]}, nil
}

// ResidueRange is an inclusive label_seq_id range.
type ResidueRange struct {
	Start int `json:"residueStart" yaml:"residueStart"`
	End   int `json:"residueEnd" yaml:"residueEnd"`
}

// Contains reports whether seq lies in [Start, End].
func (r ResidueRange) Contains(seq int) bool {
	return seq >= r.Start && seq <= r.End
}

// ParseResidueRange parses "A-B".
func ParseResidueRange(s string) (ResidueRange, error) {
	trimmed := strings.TrimSpace(s)
	sep := rangeSeparator(trimmed)
	if sep < 0 {
		return ResidueRange{}, errors.InvalidParam("residue range must look like START-END").WithDetail(s)
	}
	start, err1 := strconv.Atoi(strings.TrimSpace(trimmed[:sep]))
	end, err2 := strconv.Atoi(strings.TrimSpace(trimmed[sep+1:]))
	if err1 != nil || err2 != nil {
		return ResidueRange{}, errors.InvalidParam("residue range bounds must be integers").WithDetail(s)
	}
	return ResidueRange{Start: start, End: end}, nil
}

// rangeSeparator is the index of the last hyphen that follows a digit,
// ignoring blanks, so both bounds may carry a sign.
func rangeSeparator(s string) int {
	for i := len(s) - 1; i > 0; i-- {
		if s[i] != '-' {
			continue
		}
		j := i - 1
		for j >= 0 && s[j] == ' ' {
			j--
		}
		if j >= 0 && s[j] >= '0' && s[j] <= '9' {
			return i
		}
	}
	return -1
}

// SplitMethodName splits "method/parameters" into its halves.  Names without
// a slash yield an empty parameters part.
func SplitMethodName(name string) (method, parameters string) {
	method, parameters, _ = strings.Cut(name, "/")
	return method, parameters
}

//Personal.AI order the ending
