package viewer

import (
	"github.com/google/uuid"

	"github.com/turtacn/chargeview/internal/engine"
	vtypes "github.com/turtacn/chargeview/pkg/types/viewer"
)

// SnapshotRecord is the captured state of one representation.  Records are
// never modified after capture.
type SnapshotRecord struct {
	ID    string                     `json:"id" yaml:"id"`
	Ref   engine.Ref                 `json:"ref" yaml:"ref"`
	Props engine.RepresentationProps `json:"props" yaml:"props"`
}

// Snapshot is the default state of every representation present right after
// a load.  A new load builds a new Snapshot; a Snapshot itself is read-only.
type Snapshot struct {
	Profile vtypes.TargetProfile

	ids     map[engine.Ref]string
	records map[string]SnapshotRecord
	order   []string
}

// captureDefaults records every representation with parameters.  Under
// AlphaCharges the recorded color is element-symbol and the size physical,
// whatever the preset chose.
func captureDefaults(structures []engine.HierarchyStructure, profile vtypes.TargetProfile) *Snapshot {
	s := &Snapshot{
		Profile: profile,
		ids:     make(map[engine.Ref]string),
		records: make(map[string]SnapshotRecord),
	}
	for _, st := range structures {
		for _, c := range st.Components {
			for _, r := range c.Representations {
				if r.Props == nil {
					continue
				}
				props := *r.Props
				if profile == vtypes.ProfileAlphaCharges {
					color := engine.WithChargeType(engine.ElementSymbolColor(), props.Color.Charge.ChargeType)
					size := engine.PhysicalSize(0)
					props = props.Apply(engine.PropsOverride{Color: &color, Size: &size})
				}
				rec := SnapshotRecord{ID: uuid.NewString(), Ref: r.Ref, Props: props}
				s.ids[r.Ref] = rec.ID
				s.records[rec.ID] = rec
				s.order = append(s.order, rec.ID)
			}
		}
	}
	return s
}

// Lookup returns the record captured for ref.
func (s *Snapshot) Lookup(ref engine.Ref) (SnapshotRecord, bool) {
	if s == nil {
		return SnapshotRecord{}, false
	}
	id, ok := s.ids[ref]
	if !ok {
		return SnapshotRecord{}, false
	}
	return s.records[id], true
}

// Len returns the number of captured representations.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Records returns the records in capture order.
func (s *Snapshot) Records() []SnapshotRecord {
	if s == nil {
		return nil
	}
	out := make([]SnapshotRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out
}

//Personal.AI order the ending
