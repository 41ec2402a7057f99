package scene

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/turtacn/chargeview/internal/domain/structure"
	"github.com/turtacn/chargeview/internal/engine"
)

// ─────────────────────────────────────────────────────────────────────────────
// Charge property
// ─────────────────────────────────────────────────────────────────────────────

type chargeProperties struct {
	mu      sync.RWMutex
	typeIDs map[*structure.Model]int
}

func newChargeProperties() *chargeProperties {
	return &chargeProperties{typeIDs: make(map[*structure.Model]int)}
}

// init selects the lowest metadata id as the active set.
func (p *chargeProperties) init(m *structure.Model) {
	ids := m.Charges.TypeIDs()
	if len(ids) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.typeIDs[m]; !ok {
		p.typeIDs[m] = ids[0]
	}
}

func (p *chargeProperties) reset() {
	p.mu.Lock()
	p.typeIDs = make(map[*structure.Model]int)
	p.mu.Unlock()
}

func (p *chargeProperties) Get(m *structure.Model) *structure.ChargeData {
	if m == nil {
		return nil
	}
	return m.Charges
}

func (p *chargeProperties) TypeID(m *structure.Model) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.typeIDs[m]
}

// SetTypeID stores id as given; callers validate it against the metadata.
func (p *chargeProperties) SetTypeID(m *structure.Model, id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.typeIDs[m] = id
}

// ─────────────────────────────────────────────────────────────────────────────
// Interactivity
// ─────────────────────────────────────────────────────────────────────────────

type interactivity struct {
	mu          sync.RWMutex
	granularity engine.PickGranularity
	highlighted engine.Loci
	selected    engine.Loci
}

func newInteractivity() *interactivity {
	return &interactivity{granularity: engine.PickResidue}
}

func (i *interactivity) reset() {
	i.mu.Lock()
	i.highlighted, i.selected = engine.Loci{}, engine.Loci{}
	i.mu.Unlock()
}

func (i *interactivity) SetGranularity(g engine.PickGranularity) {
	i.mu.Lock()
	i.granularity = g
	i.mu.Unlock()
}

func (i *interactivity) Granularity() engine.PickGranularity {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.granularity
}

func (i *interactivity) HighlightOnly(l engine.Loci) {
	i.mu.Lock()
	i.highlighted = copyLoci(l)
	i.mu.Unlock()
}

func (i *interactivity) SelectOnly(l engine.Loci) {
	i.mu.Lock()
	i.selected = copyLoci(l)
	i.mu.Unlock()
}

func (i *interactivity) Highlighted() engine.Loci {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return copyLoci(i.highlighted)
}

func (i *interactivity) Selected() engine.Loci {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return copyLoci(i.selected)
}

func copyLoci(l engine.Loci) engine.Loci {
	l.Atoms = append([]int(nil), l.Atoms...)
	return l
}

// ─────────────────────────────────────────────────────────────────────────────
// Camera
// ─────────────────────────────────────────────────────────────────────────────

// Focus framing: the bounding radius is raised to MinFocusRadius and padded
// by FocusExtraRadius.
const (
	MinFocusRadius   = 1.0
	FocusExtraRadius = 4.0
)

type camera struct {
	mu    sync.RWMutex
	state engine.CameraSnapshot
}

func (c *camera) reset() {
	c.mu.Lock()
	c.state = engine.CameraSnapshot{}
	c.mu.Unlock()
}

// Focus centers on the centroid of l.  Empty loci leave the camera alone.
func (c *camera) Focus(l engine.Loci) {
	if l.IsEmpty() || l.Model == nil {
		return
	}
	center, radius := boundingSphere(l.Model, l.Atoms)
	c.mu.Lock()
	c.state = engine.CameraSnapshot{
		Target: [3]float64{center.X, center.Y, center.Z},
		Radius: math.Max(radius, MinFocusRadius) + FocusExtraRadius,
	}
	c.mu.Unlock()
}

func (c *camera) State() engine.CameraSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// boundingSphere returns the centroid of the atoms and the largest distance
// from it.
func boundingSphere(m *structure.Model, atoms []int) (r3.Vec, float64) {
	var sum r3.Vec
	for _, a := range atoms {
		sum = r3.Add(sum, m.Atoms[a].Position)
	}
	center := r3.Scale(1/float64(len(atoms)), sum)
	var radius float64
	for _, a := range atoms {
		radius = math.Max(radius, r3.Norm(r3.Sub(m.Atoms[a].Position, center)))
	}
	return center, radius
}

// ─────────────────────────────────────────────────────────────────────────────
// Focus
// ─────────────────────────────────────────────────────────────────────────────

type focusTarget struct {
	mu      sync.RWMutex
	current engine.Loci
}

func (f *focusTarget) SetFromLoci(l engine.Loci) {
	f.mu.Lock()
	f.current = copyLoci(l)
	f.mu.Unlock()
}

func (f *focusTarget) Current() engine.Loci {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return copyLoci(f.current)
}

type focusRepresentation struct {
	mu           sync.RWMutex
	target       engine.ColorDescriptor
	surroundings engine.ColorDescriptor
}

func newFocusRepresentation() *focusRepresentation {
	return &focusRepresentation{
		target:       engine.ElementSymbolColor(),
		surroundings: engine.ElementSymbolColor(),
	}
}

func (f *focusRepresentation) UpdateColorTheme(target, surroundings engine.ColorDescriptor) {
	f.mu.Lock()
	f.target, f.surroundings = target, surroundings
	f.mu.Unlock()
}

func (f *focusRepresentation) ColorThemes() (engine.ColorDescriptor, engine.ColorDescriptor) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.target, f.surroundings
}

//Personal.AI order the ending
