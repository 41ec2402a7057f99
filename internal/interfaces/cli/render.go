package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/chargeview/internal/application/controls"
	"github.com/turtacn/chargeview/internal/engine"
	"github.com/turtacn/chargeview/internal/engine/scene"
	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chargeview/internal/viewer"
	vtypes "github.com/turtacn/chargeview/pkg/types/viewer"
)

// RenderOptions holds the flags of the render command.
type RenderOptions struct {
	Format     string
	Profile    string
	View       string
	Coloring   string
	TypeID     int
	Max        float64
	Focus      string
	FocusRange string
	Units      bool
}

// FocusSummary reports the atoms a focus flag resolved to.
type FocusSummary struct {
	Query  string                `json:"query" yaml:"query"`
	Atoms  int                   `json:"atoms" yaml:"atoms"`
	Camera engine.CameraSnapshot `json:"camera" yaml:"camera"`
}

// RenderReport is the output of render.
type RenderReport struct {
	Load  *viewer.LoadResult `json:"load" yaml:"load"`
	State controls.State     `json:"state" yaml:"state"`
	Focus *FocusSummary      `json:"focus,omitempty" yaml:"focus,omitempty"`
	Scene scene.Frame        `json:"scene" yaml:"scene"`
}

func (r *RenderReport) TableHeaders() []string {
	return []string{"STRUCTURE", "COMPONENT", "TYPE", "COLOR", "SIZE", "CHARGE SCALE"}
}

func (r *RenderReport) TableRows() [][]string {
	var rows [][]string
	for _, s := range r.Scene.Structures {
		for _, c := range s.Components {
			for _, rep := range c.Representations {
				scale := "-"
				if rep.Charge != nil {
					mode := "relative"
					if rep.Charge.Absolute {
						mode = "absolute"
					}
					scale = fmt.Sprintf("%s %s max=%s type=%d", mode, rep.Charge.Granularity,
						strconv.FormatFloat(rep.Charge.Max, 'f', 4, 64), rep.Charge.TypeID)
				}
				rows = append(rows, []string{s.EntryID, c.Label, string(rep.Type), string(rep.Color), string(rep.Size), scale})
			}
		}
	}
	return rows
}

// NewRenderCmd loads a structure, applies the requested controls and prints
// the resulting state and scene.
func NewRenderCmd() *cobra.Command {
	opts := &RenderOptions{}

	cmd := &cobra.Command{
		Use:   "render <url|path>",
		Short: "Load a structure and print the resolved scene",
		Long: "Load a structure through the control-state synchronizer, apply the view,\n" +
			"coloring, charge set and focus options, and print the control state with\n" +
			"the resolved scene description.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			report, err := runRender(cmd, cc, args[0], opts)
			if err != nil {
				return err
			}
			return PrintResult(cmd, report)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Format, "format", "", "structure format (mmcif, pdb); default from extension")
	f.StringVar(&opts.Profile, "profile", "", "target profile (ACC2, AlphaCharges)")
	f.StringVar(&opts.View, "view", "", "view type (cartoon, balls-and-sticks, surface)")
	f.StringVar(&opts.Coloring, "coloring", "", "coloring type (structure, charges-relative, charges-absolute)")
	f.IntVar(&opts.TypeID, "type-id", 0, "charge set to activate (1-based)")
	f.Float64Var(&opts.Max, "max", 0, "absolute charge scale maximum; switches to absolute coloring")
	f.StringVar(&opts.Focus, "focus", "", "focus an atom, RES:SEQ:ATOM")
	f.StringVar(&opts.FocusRange, "focus-range", "", "select residues START-END")
	f.BoolVar(&opts.Units, "units", false, "include per-unit charge colors in the scene")
	return cmd
}

func runRender(cmd *cobra.Command, cc *CLIContext, rawURL string, opts *RenderOptions) (*RenderReport, error) {
	format, err := resolveFormat(opts.Format, rawURL, cc.Config.Viewer.DefaultFormat)
	if err != nil {
		return nil, err
	}
	profile, err := resolveProfile(opts.Profile, cc.Config.Viewer.DefaultProfile)
	if err != nil {
		return nil, err
	}

	// Validate every flag before the download.
	var (
		view     vtypes.ViewType
		coloring vtypes.ColoringType
		key      *vtypes.AtomKey
		rng      *vtypes.ResidueRange
	)
	if opts.View != "" {
		if view, err = vtypes.ParseViewType(opts.View); err != nil {
			return nil, err
		}
	}
	if opts.Coloring != "" {
		if coloring, err = vtypes.ParseColoringType(opts.Coloring); err != nil {
			return nil, err
		}
	}
	if opts.Focus != "" {
		k, err := vtypes.ParseAtomKey(opts.Focus)
		if err != nil {
			return nil, err
		}
		key = &k
	}
	if opts.FocusRange != "" {
		r, err := vtypes.ParseResidueRange(opts.FocusRange)
		if err != nil {
			return nil, err
		}
		rng = &r
	}

	ctx, cancel := commandContext(cmd, cc)
	defer cancel()

	s, err := openSession(ctx, cc)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	res, err := s.controls.LoadStructure(ctx, controls.LoadRequest{URL: rawURL, Format: format, Profile: profile})
	if err != nil {
		return nil, err
	}
	if view != "" {
		if err := s.controls.SetView(ctx, view); err != nil {
			return nil, err
		}
	}
	if opts.TypeID != 0 {
		if err := s.controls.SetTypeID(ctx, opts.TypeID); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("max") {
		if err := s.controls.SetMaxValue(ctx, opts.Max); err != nil {
			return nil, err
		}
	}
	if coloring != "" {
		if err := s.controls.SetColoring(ctx, coloring); err != nil {
			return nil, err
		}
	}

	report := &RenderReport{Load: res}
	if key != nil {
		report.Focus = focusSummary(s, key.String(), s.viewer.Behavior().Focus(*key))
	}
	if rng != nil {
		report.Focus = focusSummary(s, opts.FocusRange, s.viewer.Behavior().FocusRange(*rng))
	}
	if report.Focus != nil && report.Focus.Atoms == 0 {
		cc.Logger.Warn("focus matched no atoms", logging.String("query", report.Focus.Query))
	}

	report.State = s.controls.State()
	report.Scene = s.engine.Render(scene.RenderOptions{Units: opts.Units})
	return report, nil
}

func focusSummary(s *session, query string, loci engine.Loci) *FocusSummary {
	return &FocusSummary{Query: query, Atoms: len(loci.Atoms), Camera: s.engine.Camera().State()}
}

//Personal.AI order the ending
