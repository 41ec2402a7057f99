// Package engine defines the capability interface the viewer consumes from a
// scene engine: data loading, the structure hierarchy, transactional
// representation updates, charge properties and the camera/selection
// managers.  internal/engine/scene provides the in-memory implementation.
package engine

import (
	"context"

	"github.com/turtacn/chargeview/internal/domain/structure"
	vtypes "github.com/turtacn/chargeview/pkg/types/viewer"
)

// Ref identifies a node of the scene state tree.  Refs are never reused.
type Ref string

// Data is a downloaded file.
type Data struct {
	Ref    Ref
	URL    string
	Bytes  []byte
	Cached bool
}

// Trajectory is a parsed file: one or more models.
type Trajectory struct {
	Ref    Ref
	Format vtypes.Format
	Models []*structure.Model
}

// PresetOptions configures ApplyHierarchyPreset.
type PresetOptions struct {
	ShowUnitCell         bool
	RepresentationPreset string
}

// Representation presets accepted by ApplyHierarchyPreset.
const (
	// PresetAuto picks representations from the residue kinds present.
	PresetAuto = "auto"
	// PresetEmpty builds the structure without components.
	PresetEmpty = "empty"
)

// ─────────────────────────────────────────────────────────────────────────────
// Hierarchy
// ─────────────────────────────────────────────────────────────────────────────

// HierarchyStructure is a read-only view of one structure and its children.
type HierarchyStructure struct {
	Ref        Ref
	Model      *structure.Model
	Components []HierarchyComponent
}

// HierarchyComponent groups representations of one atom subset.
type HierarchyComponent struct {
	Ref             Ref
	Label           string
	Data            *structure.Subset
	Representations []HierarchyRepresentation
}

// HierarchyRepresentation is one representation node.  Props is nil while
// the node has no transform parameters.
type HierarchyRepresentation struct {
	Ref   Ref
	Props *RepresentationProps
}

// Loci is a set of atoms of one structure.
type Loci struct {
	Structure Ref
	Model     *structure.Model
	Atoms     []int
}

// IsEmpty reports whether l selects no atom.
func (l Loci) IsEmpty() bool { return len(l.Atoms) == 0 }

// ─────────────────────────────────────────────────────────────────────────────
// Capabilities
// ─────────────────────────────────────────────────────────────────────────────

// Update collects representation changes and applies them together.  Commit
// applies all changes or none.
type Update interface {
	To(ref Ref, props RepresentationProps) Update
	Commit(ctx context.Context) error
}

// ChargeProperties is the partial-charge custom property of a model.
type ChargeProperties interface {
	// Get returns the resolved charges, or nil when the model has none.
	Get(m *structure.Model) *structure.ChargeData
	// TypeID returns the active charge set id; 0 means unset.
	TypeID(m *structure.Model) int
	SetTypeID(m *structure.Model, id int)
}

// Interactivity is the hover and selection manager.
type Interactivity interface {
	SetGranularity(g PickGranularity)
	Granularity() PickGranularity
	HighlightOnly(l Loci)
	SelectOnly(l Loci)
	Highlighted() Loci
	Selected() Loci
}

// CameraSnapshot is a camera target and radius.
type CameraSnapshot struct {
	Target [3]float64 `json:"target" yaml:"target"`
	Radius float64    `json:"radius" yaml:"radius"`
}

// Camera frames loci.
type Camera interface {
	Focus(l Loci)
	State() CameraSnapshot
}

// FocusTarget is the persistent structure focus.
type FocusTarget interface {
	SetFromLoci(l Loci)
	Current() Loci
}

// FocusRepresentation is the overlay drawn around the focus target.  Its
// themes are independent of the main representations.
type FocusRepresentation interface {
	UpdateColorTheme(target, surroundings ColorDescriptor)
	ColorThemes() (target, surroundings ColorDescriptor)
}

// Engine is the scene engine consumed by the viewer.
type Engine interface {
	// Clear removes every node from the scene.
	Clear(ctx context.Context) error
	Download(ctx context.Context, url string) (*Data, error)
	ParseTrajectory(ctx context.Context, data *Data, format vtypes.Format) (*Trajectory, error)
	ApplyHierarchyPreset(ctx context.Context, traj *Trajectory, opts PresetOptions) ([]Ref, error)

	// Structures returns a snapshot of the current hierarchy.
	Structures() []HierarchyStructure

	// DataTransaction runs fn with updates from other callers held back until
	// fn returns.
	DataTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	BeginUpdate() Update

	ChargeProperties() ChargeProperties
	Interactivity() Interactivity
	Camera() Camera
	FocusTarget() FocusTarget
	FocusRepresentation() FocusRepresentation
}

//Personal.AI order the ending
