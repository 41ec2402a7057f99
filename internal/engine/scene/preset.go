package scene

import (
	"context"

	"github.com/turtacn/chargeview/internal/domain/structure"
	"github.com/turtacn/chargeview/internal/engine"
	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chargeview/pkg/errors"
)

// Component labels produced by the auto preset, in hierarchy order.
const (
	ComponentPolymer  = "polymer"
	ComponentLigand   = "ligand"
	ComponentBranched = "branched"
	ComponentWater    = "water"
)

// ApplyHierarchyPreset builds one structure from the first model of traj.
func (e *Engine) ApplyHierarchyPreset(ctx context.Context, traj *engine.Trajectory, opts engine.PresetOptions) ([]engine.Ref, error) {
	if traj == nil || len(traj.Models) == 0 {
		return nil, errors.InvalidReference("trajectory has no models")
	}
	preset := opts.RepresentationPreset
	if preset == "" {
		preset = engine.PresetAuto
	}

	model := traj.Models[0]
	node := &structureNode{ref: newRef(), model: model, unitCell: opts.ShowUnitCell}
	switch preset {
	case engine.PresetAuto:
		node.components = autoComponents(model)
	case engine.PresetEmpty:
	default:
		return nil, errors.InvalidReference("unknown representation preset").WithDetail(preset)
	}

	err := e.exclusive(ctx, func() error {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.structures = append(e.structures, node)
		for _, c := range node.components {
			for _, r := range c.representations {
				e.reprs[r.ref] = r
			}
		}
		e.version++
		return nil
	})
	if err != nil {
		return nil, err
	}
	if model.Charges != nil {
		e.charges.init(model)
	}

	e.logger.Debug("hierarchy preset applied",
		logging.String("structure", string(node.ref)),
		logging.String("preset", preset),
		logging.Int("components", len(node.components)))
	return []engine.Ref{node.ref}, nil
}

// autoComponents groups residues by kind and gives each group its default
// representations.  Empty groups are skipped.
func autoComponents(m *structure.Model) []*componentNode {
	var out []*componentNode
	add := func(label string, kind structure.ResidueKind, props ...engine.RepresentationProps) {
		atoms := m.AtomsOfResidues(m.ResiduesOfKind(kind))
		if len(atoms) == 0 {
			return
		}
		c := &componentNode{ref: newRef(), label: label, data: &structure.Subset{Model: m, Atoms: atoms}}
		for _, p := range props {
			// charge granularity follows the geometry
			p.Color = engine.WithChargeType(p.Color, engine.GranularityFor(p.Type.Name))
			c.representations = append(c.representations, &representationNode{ref: newRef(), props: p})
		}
		out = append(out, c)
	}

	polymerColor := engine.ColorDescriptor{Name: engine.ColorChainID}
	if looksLikePLDDT(m) {
		polymerColor = engine.ConfidenceColor()
	}
	add(ComponentPolymer, structure.ResiduePolymer, engine.RepresentationProps{
		Type:  engine.TypeDescriptor{Name: engine.TypeCartoon, Quality: "auto"},
		Color: polymerColor,
		Size:  engine.SizeDescriptor{Name: engine.SizeUniform},
	})
	add(ComponentLigand, structure.ResidueLigand, ballAndStick())
	add(ComponentBranched, structure.ResidueSaccharide,
		engine.RepresentationProps{
			Type:  engine.TypeDescriptor{Name: engine.TypeCarbohydrate, Quality: "auto"},
			Color: engine.ColorDescriptor{Name: engine.ColorPolymerID},
			Size:  engine.SizeDescriptor{Name: engine.SizeUniform},
		},
		ballAndStick())
	add(ComponentWater, structure.ResidueWater, ballAndStick())
	return out
}

func ballAndStick() engine.RepresentationProps {
	return engine.RepresentationProps{
		Type:  engine.BallAndStickType(),
		Color: engine.ElementSymbolColor(),
		Size:  engine.PhysicalSize(0),
	}
}

// looksLikePLDDT reports whether B-factors of a model that declares quality
// metrics are all in the pLDDT range.
func looksLikePLDDT(m *structure.Model) bool {
	if !m.HasQualityScores {
		return false
	}
	for i := range m.Atoms {
		if b := m.Atoms[i].BFactor; b < 0 || b > 100 {
			return false
		}
	}
	return true
}

//Personal.AI order the ending
