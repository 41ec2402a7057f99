package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/chargeview/internal/domain/structure"
	"github.com/turtacn/chargeview/internal/viewer"
	vtypes "github.com/turtacn/chargeview/pkg/types/viewer"
)

// MethodSummary is one charge set of an inspected structure.
type MethodSummary struct {
	TypeID     int     `json:"typeId" yaml:"typeId"`
	Method     string  `json:"method" yaml:"method"`
	Parameters string  `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Type       string  `json:"type,omitempty" yaml:"type,omitempty"`
	MaxCharge  float64 `json:"maxAbsoluteCharge" yaml:"maxAbsoluteCharge"`
}

// InspectReport describes the charge annotations of a structure file.
type InspectReport struct {
	URL              string          `json:"url" yaml:"url"`
	Format           vtypes.Format   `json:"format" yaml:"format"`
	EntryID          string          `json:"entryId" yaml:"entryId"`
	Atoms            int             `json:"atoms" yaml:"atoms"`
	Residues         int             `json:"residues" yaml:"residues"`
	ChargeRecords    int             `json:"chargeRecords" yaml:"chargeRecords"`
	Methods          []MethodSummary `json:"methods" yaml:"methods"`
	MaxCharge        float64         `json:"maxAbsoluteCharge" yaml:"maxAbsoluteCharge"`
	Consistent       bool            `json:"consistent" yaml:"consistent"`
	ConsistencyError string          `json:"consistencyError,omitempty" yaml:"consistencyError,omitempty"`

	consistency error
}

func (r *InspectReport) TableHeaders() []string {
	return []string{"TYPE ID", "METHOD", "PARAMETERS", "MAX |q|"}
}

func (r *InspectReport) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Methods))
	for _, m := range r.Methods {
		rows = append(rows, []string{
			strconv.Itoa(m.TypeID), m.Method, m.Parameters, strconv.FormatFloat(m.MaxCharge, 'f', 4, 64),
		})
	}
	return rows
}

// NewInspectCmd reports the charge methods and consistency of a structure
// without building a scene.  An inconsistent file is printed and then
// reported as an error.
func NewInspectCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "inspect <url|path>",
		Short: "Print charge methods, counts and consistency of a structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			report, err := runInspect(cmd, cc, args[0], format)
			if err != nil {
				return err
			}
			if err := PrintResult(cmd, report); err != nil {
				return err
			}
			return report.consistency
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "structure format (mmcif, pdb); default from extension")
	return cmd
}

func runInspect(cmd *cobra.Command, cc *CLIContext, rawURL, formatFlag string) (*InspectReport, error) {
	format, err := resolveFormat(formatFlag, rawURL, cc.Config.Viewer.DefaultFormat)
	if err != nil {
		return nil, err
	}

	ctx, cancel := commandContext(cmd, cc)
	defer cancel()

	s, err := openSession(ctx, cc)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	data, err := s.engine.Download(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	traj, err := s.engine.ParseTrajectory(ctx, data, format)
	if err != nil {
		return nil, err
	}
	m := traj.Models[0]

	report := &InspectReport{
		URL:           rawURL,
		Format:        format,
		EntryID:       m.EntryID,
		Atoms:         m.AtomCount(),
		Residues:      len(m.Residues),
		ChargeRecords: m.ChargeRecordCount,
		Methods:       summarizeMethods(m.Charges),
		Consistent:    true,
	}
	if m.Charges != nil {
		report.MaxCharge = m.Charges.MaxAbsoluteAtomChargeAll
	}
	if err := viewer.CheckConsistency(m); err != nil {
		report.Consistent = false
		report.ConsistencyError = err.Error()
		report.consistency = err
	}
	return report, nil
}

func summarizeMethods(d *structure.ChargeData) []MethodSummary {
	if d == nil {
		return []MethodSummary{}
	}
	out := make([]MethodSummary, 0, len(d.TypeIDToMethod))
	for _, id := range d.TypeIDs() {
		method, params := vtypes.SplitMethodName(d.TypeIDToMethod[id])
		out = append(out, MethodSummary{
			TypeID:     id,
			Method:     method,
			Parameters: params,
			Type:       d.MethodTypes[id],
			MaxCharge:  d.MaxAbsoluteAtomCharges[id],
		})
	}
	return out
}

//Personal.AI order the ending
