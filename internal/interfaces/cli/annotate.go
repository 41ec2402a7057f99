package cli

import (
	"bufio"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/chargeview/internal/infrastructure/fetch"
	"github.com/turtacn/chargeview/internal/infrastructure/format/mmcif"
	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chargeview/internal/viewer"
	"github.com/turtacn/chargeview/pkg/errors"
)

const mmcifContentType = "chemical/x-mmcif"

// AnnotateOptions holds the flags of the annotate command.
type AnnotateOptions struct {
	ChargesFile string
	Methods     []string
	MethodType  string
	Out         string
	Upload      string
}

// AnnotateReport summarizes a written document.
type AnnotateReport struct {
	Destination string   `json:"destination" yaml:"destination"`
	Methods     []string `json:"methods" yaml:"methods"`
	Atoms       int      `json:"atoms" yaml:"atoms"`
	Records     int      `json:"chargeRecords" yaml:"chargeRecords"`
	Bytes       int      `json:"bytes" yaml:"bytes"`
}

// NewAnnotateCmd writes partial-charge categories into an mmCIF document.
func NewAnnotateCmd() *cobra.Command {
	opts := &AnnotateOptions{}

	cmd := &cobra.Command{
		Use:   "annotate <structure>",
		Short: "Add partial-charge categories to an mmCIF file",
		Long: "Replace the partial-charge categories of an mmCIF document with the charges\n" +
			"read from --charges, a whitespace separated file of \"type_id atom_id charge\"\n" +
			"lines.  Type ids map to --method names in order.  The document goes to stdout\n" +
			"unless --out or --upload is given.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return runAnnotate(cmd, cc, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.ChargesFile, "charges", "", "charges file [REQUIRED]")
	f.StringSliceVar(&opts.Methods, "method", nil, "method/parameters name per type id, in order [REQUIRED]")
	f.StringVar(&opts.MethodType, "method-type", "empirical", "method type written to the metadata")
	f.StringVar(&opts.Out, "out", "", "output file path")
	f.StringVar(&opts.Upload, "upload", "", "upload the result to s3://bucket/key")
	_ = cmd.MarkFlagRequired("charges")
	_ = cmd.MarkFlagRequired("method")
	return cmd
}

func runAnnotate(cmd *cobra.Command, cc *CLIContext, rawURL string, opts *AnnotateOptions) error {
	f, err := os.Open(opts.ChargesFile)
	if err != nil {
		return errors.InvalidParam("cannot open charges file").WithDetail(opts.ChargesFile).WithCause(err)
	}
	charges, err := ParseChargeFile(f)
	f.Close()
	if err != nil {
		return err
	}
	if len(charges) != len(opts.Methods) {
		return errors.InvalidParam("one --method is required per charge type id").
			WithDetailf("type ids=%d methods=%d", len(charges), len(opts.Methods))
	}
	sets := make([]mmcif.ChargeSet, len(charges))
	for i := range charges {
		sets[i] = mmcif.ChargeSet{Method: opts.Methods[i], Charges: charges[i], MethodType: opts.MethodType}
	}

	ctx, cancel := commandContext(cmd, cc)
	defer cancel()

	s, err := openSession(ctx, cc)
	if err != nil {
		return err
	}
	defer s.Close()

	data, err := s.engine.Download(ctx, rawURL)
	if err != nil {
		return err
	}
	doc, err := mmcif.ReplaceChargeCategories(data.Bytes, sets)
	if err != nil {
		return err
	}
	atoms, records, err := verifyAnnotated(doc)
	if err != nil {
		return err
	}

	report := &AnnotateReport{Methods: opts.Methods, Atoms: atoms, Records: records, Bytes: len(doc)}
	switch {
	case opts.Upload != "":
		if s.infra.MinIO == nil {
			return errors.Precondition("object storage is not enabled").WithDetail("minio.enabled")
		}
		bucket, key, err := fetch.ParseS3URL(opts.Upload)
		if err != nil {
			return err
		}
		if err := s.infra.MinIO.PutObject(ctx, bucket, key, doc, mmcifContentType); err != nil {
			return err
		}
		report.Destination = opts.Upload
	case opts.Out != "":
		if err := os.WriteFile(opts.Out, doc, 0o644); err != nil {
			return errors.Internal("failed to write output").WithDetail(opts.Out).WithCause(err)
		}
		report.Destination = opts.Out
	default:
		_, err := cmd.OutOrStdout().Write(doc)
		return err
	}

	cc.Logger.Info("charges annotated",
		logging.String("destination", report.Destination),
		logging.Int("methods", len(sets)),
		logging.Int("atoms", atoms))
	return PrintResult(cmd, report)
}

// verifyAnnotated re-reads doc and requires one charge per atom per set.
func verifyAnnotated(doc []byte) (atoms, records int, err error) {
	blocks, err := mmcif.ParseBytes(doc)
	if err != nil {
		return 0, 0, errors.Wrap(err, errors.CodeParseFailed, "annotated document does not parse")
	}
	models, err := mmcif.ReadModels(blocks)
	if err != nil {
		return 0, 0, errors.Wrap(err, errors.CodeParseFailed, "annotated document does not parse")
	}
	m := models[0]
	if err := viewer.CheckConsistency(m); err != nil {
		return 0, 0, err
	}
	return m.AtomCount(), m.ChargeRecordCount, nil
}

// ParseChargeFile reads "type_id atom_id charge" lines.  Blank lines and
// lines starting with # are skipped.  Type ids must run 1..N and every type
// must cover atom ids 1..M without gaps; the result is indexed [type-1][atom-1].
func ParseChargeFile(r io.Reader) ([][]float64, error) {
	byType := make(map[int]map[int]float64)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 3 {
			return nil, errors.InvalidParam("charge line must have three fields").WithDetailf("line %d", line)
		}
		typeID, err1 := strconv.Atoi(fields[0])
		atomID, err2 := strconv.Atoi(fields[1])
		charge, err3 := strconv.ParseFloat(fields[2], 64)
		if err1 != nil || err2 != nil || err3 != nil || typeID < 1 || atomID < 1 {
			return nil, errors.InvalidParam("malformed charge line").WithDetailf("line %d: %q", line, text)
		}
		atoms, ok := byType[typeID]
		if !ok {
			atoms = make(map[int]float64)
			byType[typeID] = atoms
		}
		if _, dup := atoms[atomID]; dup {
			return nil, errors.DataIntegrity("duplicate charge record").WithDetailf("line %d: type %d atom %d", line, typeID, atomID)
		}
		atoms[atomID] = charge
	}
	if err := sc.Err(); err != nil {
		return nil, errors.InvalidParam("cannot read charges file").WithCause(err)
	}
	if len(byType) == 0 {
		return nil, errors.InvalidParam("charges file is empty")
	}

	ids := make([]int, 0, len(byType))
	for id := range byType {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([][]float64, len(ids))
	for i, id := range ids {
		if id != i+1 {
			return nil, errors.DataIntegrity("charge type ids must run from 1 without gaps").WithDetailf("missing type %d", i+1)
		}
		atoms := byType[id]
		values := make([]float64, len(atoms))
		for a := range values {
			q, ok := atoms[a+1]
			if !ok {
				return nil, errors.DataIntegrity("charge set has a gap").WithDetailf("type %d atom %d", id, a+1)
			}
			values[a] = q
		}
		out[i] = values
	}
	return out, nil
}

//Personal.AI order the ending
