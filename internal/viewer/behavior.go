package viewer

import (
	"github.com/turtacn/chargeview/internal/domain/structure"
	"github.com/turtacn/chargeview/internal/engine"
	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
	vtypes "github.com/turtacn/chargeview/pkg/types/viewer"
)

// Behavior resolves atom keys and residue ranges against the first component
// of the first structure and drives selection and camera.  Both operations
// are no-ops before a structure is loaded or when nothing matches.
type Behavior struct {
	v *Viewer
}

// query returns the atoms of the first component matching pred.
func (b *Behavior) query(pred structure.AtomPredicate) engine.Loci {
	structures := b.v.engine.Structures()
	if len(structures) == 0 || len(structures[0].Components) == 0 {
		return engine.Loci{}
	}
	s := structures[0]
	data := s.Components[0].Data
	if data.Len() == 0 {
		return engine.Loci{}
	}
	return engine.Loci{Structure: s.Ref, Model: data.Model, Atoms: data.Select(pred)}
}

// Focus highlights, selects and frames the atom matching key, and makes it
// the focus target.  It returns the resolved loci.
func (b *Behavior) Focus(key vtypes.AtomKey) engine.Loci {
	loci := b.query(structure.MatchAtomKey(key))
	if loci.IsEmpty() {
		return loci
	}
	e := b.v.engine
	e.Interactivity().HighlightOnly(loci)
	e.Interactivity().SelectOnly(loci)
	e.Camera().Focus(loci)
	e.FocusTarget().SetFromLoci(loci)
	b.v.metrics.RecordTransition("focus", "", nil)
	b.v.logger.Debug("focused", logging.String("atom", key.String()), logging.Int("atoms", len(loci.Atoms)))
	return loci
}

// FocusRange selects and frames every atom whose residue lies in r.
// Highlight and focus target are left alone.
func (b *Behavior) FocusRange(r vtypes.ResidueRange) engine.Loci {
	loci := b.query(structure.InResidueRange(r))
	if loci.IsEmpty() {
		return loci
	}
	e := b.v.engine
	e.Interactivity().SelectOnly(loci)
	e.Camera().Focus(loci)
	b.v.metrics.RecordTransition("focus_range", "", nil)
	b.v.logger.Debug("range selected",
		logging.Int("residue_start", r.Start),
		logging.Int("residue_end", r.End),
		logging.Int("atoms", len(loci.Atoms)))
	return loci
}

//Personal.AI order the ending
