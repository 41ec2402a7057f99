package mmcif

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/turtacn/chargeview/internal/domain/structure"
	vtypes "github.com/turtacn/chargeview/pkg/types/viewer"
)

// ReadModels converts the first data block of a document into one Model per
// pdbx_PDB_model_num.  Charge categories are attached to every model since
// they reference atom ids shared by all models.
func ReadModels(blocks []*Block) ([]*structure.Model, error) {
	if len(blocks) == 0 {
		return nil, fmt.Errorf("mmcif: empty document")
	}
	b := blocks[0]
	site := b.Category(CategoryAtomSite)
	if site.RowCount() == 0 {
		return nil, fmt.Errorf("mmcif: block %q has no _atom_site rows", b.Name)
	}
	for _, required := range []string{"cartn_x", "cartn_y", "cartn_z"} {
		if site.FieldIndex(required) < 0 {
			return nil, fmt.Errorf("mmcif: _atom_site.%s is missing", required)
		}
	}

	byModel := map[int][]structure.Atom{}
	var order []int
	for row := 0; row < site.RowCount(); row++ {
		a, modelNum, err := readAtom(site, row)
		if err != nil {
			return nil, err
		}
		if _, seen := byModel[modelNum]; !seen {
			order = append(order, modelNum)
		}
		byModel[modelNum] = append(byModel[modelNum], a)
	}

	methods, err := readChargeMethods(b.Category(CategoryChargesMeta))
	if err != nil {
		return nil, err
	}
	records, err := readChargeRecords(b.Category(CategoryCharges))
	if err != nil {
		return nil, err
	}
	recordCount := b.Category(CategoryCharges).RowCount()
	hasQA := b.Category(CategoryQAMetric) != nil

	entryID := b.Name
	if entry := b.Category("entry"); entry != nil {
		if id, ok := entry.Value(0, "id"); ok {
			entryID = id
		}
	}

	models := make([]*structure.Model, 0, len(order))
	for _, num := range order {
		m := structure.NewModel(entryID, vtypes.FormatMMCIF, byModel[num])
		m.Charges = structure.BuildChargeData(m, methods, records)
		m.ChargeRecordCount = recordCount
		m.HasQualityScores = hasQA
		models = append(models, m)
	}
	return models, nil
}

func readAtom(site *Category, row int) (structure.Atom, int, error) {
	var a structure.Atom
	var err error

	if v, ok := site.Value(row, "id"); ok {
		if a.ID, err = strconv.Atoi(v); err != nil {
			return a, 0, fmt.Errorf("mmcif: _atom_site row %d: bad id %q", row+1, v)
		}
	} else {
		a.ID = row + 1
	}

	a.Name = first(site, row, "label_atom_id", "auth_atom_id")
	a.ResidueName = first(site, row, "label_comp_id", "auth_comp_id")
	a.ChainID = first(site, row, "label_asym_id", "auth_asym_id")
	a.Element = strings.ToUpper(first(site, row, "type_symbol"))
	a.InsCode = first(site, row, "pdbx_pdb_ins_code")
	a.HetAtom = strings.EqualFold(first(site, row, "group_pdb"), "HETATM")
	a.ResidueSeqID = optInt(site, row, "label_seq_id")
	a.AuthSeqID = optInt(site, row, "auth_seq_id")

	var xyz [3]float64
	for i, f := range []string{"cartn_x", "cartn_y", "cartn_z"} {
		v, ok := site.Value(row, f)
		if !ok {
			return a, 0, fmt.Errorf("mmcif: _atom_site row %d: missing %s", row+1, f)
		}
		if xyz[i], err = strconv.ParseFloat(v, 64); err != nil {
			return a, 0, fmt.Errorf("mmcif: _atom_site row %d: bad %s %q", row+1, f, v)
		}
	}
	a.Position = r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}

	if v, ok := site.Value(row, "b_iso_or_equiv"); ok {
		a.BFactor, _ = strconv.ParseFloat(v, 64)
	}
	modelNum := optInt(site, row, "pdbx_pdb_model_num")
	return a, modelNum, nil
}

func first(c *Category, row int, fields ...string) string {
	for _, f := range fields {
		if v, ok := c.Value(row, f); ok {
			return v
		}
	}
	return ""
}

func optInt(c *Category, row int, field string) int {
	v, ok := c.Value(row, field)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func readChargeMethods(c *Category) ([]structure.ChargeMethod, error) {
	out := make([]structure.ChargeMethod, 0, c.RowCount())
	for row := 0; row < c.RowCount(); row++ {
		v, ok := c.Value(row, "id")
		if !ok {
			return nil, fmt.Errorf("mmcif: _%s row %d: missing id", CategoryChargesMeta, row+1)
		}
		id, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("mmcif: _%s row %d: bad id %q", CategoryChargesMeta, row+1, v)
		}
		typ, _ := c.Value(row, "type")
		method, _ := c.Value(row, "method")
		out = append(out, structure.ChargeMethod{TypeID: id, Type: typ, Method: method})
	}
	return out, nil
}

func readChargeRecords(c *Category) ([]structure.ChargeRecord, error) {
	out := make([]structure.ChargeRecord, 0, c.RowCount())
	for row := 0; row < c.RowCount(); row++ {
		var rec structure.ChargeRecord
		var err error
		typeID, ok1 := c.Value(row, "type_id")
		atomID, ok2 := c.Value(row, "atom_id")
		charge, ok3 := c.Value(row, "charge")
		if !ok1 || !ok2 || !ok3 {
			return nil, fmt.Errorf("mmcif: _%s row %d: incomplete record", CategoryCharges, row+1)
		}
		if rec.TypeID, err = strconv.Atoi(typeID); err != nil {
			return nil, fmt.Errorf("mmcif: _%s row %d: bad type_id %q", CategoryCharges, row+1, typeID)
		}
		if rec.AtomID, err = strconv.Atoi(atomID); err != nil {
			return nil, fmt.Errorf("mmcif: _%s row %d: bad atom_id %q", CategoryCharges, row+1, atomID)
		}
		if rec.Charge, err = strconv.ParseFloat(strings.TrimSpace(charge), 64); err != nil {
			return nil, fmt.Errorf("mmcif: _%s row %d: bad charge %q", CategoryCharges, row+1, charge)
		}
		out = append(out, rec)
	}
	return out, nil
}

//Personal.AI order the ending
