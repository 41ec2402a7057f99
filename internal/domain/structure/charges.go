package structure

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// ChargeMethod is one row of the charge metadata category: a 1-based type id
// bound to a "method/parameters" name.
type ChargeMethod struct {
	TypeID int
	Type   string
	Method string
}

// ChargeRecord is one row of the charge category.  AtomID references Atom.ID.
type ChargeRecord struct {
	TypeID int
	AtomID int
	Charge float64
}

// ChargeData is the resolved partial-charge property of a model.
type ChargeData struct {
	TypeIDToMethod map[int]string
	MethodTypes    map[int]string

	// AtomCharges maps typeId to a per-atom slice aligned with Model.Atoms.
	// Atoms without a record hold NaN.
	AtomCharges map[int][]float64

	// ResidueCharges maps typeId to per-residue sums aligned with Model.Residues.
	ResidueCharges map[int][]float64

	MaxAbsoluteAtomCharges    map[int]float64
	MaxAbsoluteResidueCharges map[int]float64
	MaxAbsoluteAtomChargeAll  float64
}

// BuildChargeData resolves metadata and charge records against m.  It returns
// nil when both inputs are empty.  Records pointing at unknown atoms are
// skipped; they still count toward Model.ChargeRecordCount.
func BuildChargeData(m *Model, methods []ChargeMethod, records []ChargeRecord) *ChargeData {
	if len(methods) == 0 && len(records) == 0 {
		return nil
	}
	d := &ChargeData{
		TypeIDToMethod:            make(map[int]string, len(methods)),
		MethodTypes:               make(map[int]string, len(methods)),
		AtomCharges:               make(map[int][]float64),
		ResidueCharges:            make(map[int][]float64),
		MaxAbsoluteAtomCharges:    make(map[int]float64),
		MaxAbsoluteResidueCharges: make(map[int]float64),
	}
	for _, meta := range methods {
		d.TypeIDToMethod[meta.TypeID] = meta.Method
		d.MethodTypes[meta.TypeID] = meta.Type
	}

	for _, rec := range records {
		idx, ok := m.AtomIndex(rec.AtomID)
		if !ok {
			continue
		}
		charges, ok := d.AtomCharges[rec.TypeID]
		if !ok {
			charges = make([]float64, len(m.Atoms))
			for i := range charges {
				charges[i] = math.NaN()
			}
			d.AtomCharges[rec.TypeID] = charges
		}
		charges[idx] = rec.Charge
	}

	var maxima []float64
	for typeID, charges := range d.AtomCharges {
		residues := make([]float64, len(m.Residues))
		for i, c := range charges {
			if math.IsNaN(c) {
				continue
			}
			residues[m.Atoms[i].ResidueIndex] += c
		}
		d.ResidueCharges[typeID] = residues
		d.MaxAbsoluteAtomCharges[typeID] = maxAbs(charges)
		d.MaxAbsoluteResidueCharges[typeID] = maxAbs(residues)
		maxima = append(maxima, d.MaxAbsoluteAtomCharges[typeID])
	}
	if len(maxima) > 0 {
		d.MaxAbsoluteAtomChargeAll = floats.Max(maxima)
	}
	return d
}

func maxAbs(values []float64) float64 {
	abs := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			abs = append(abs, math.Abs(v))
		}
	}
	if len(abs) == 0 {
		return 0
	}
	return floats.Max(abs)
}

// HasTypeID reports whether id appears in the metadata id set.
func (d *ChargeData) HasTypeID(id int) bool {
	_, ok := d.TypeIDToMethod[id]
	return ok
}

// TypeIDs returns the metadata ids in ascending order.
func (d *ChargeData) TypeIDs() []int {
	ids := make([]int, 0, len(d.TypeIDToMethod))
	for id := range d.TypeIDToMethod {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

//Personal.AI order the ending
