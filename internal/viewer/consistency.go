package viewer

import (
	"github.com/turtacn/chargeview/internal/domain/structure"
	"github.com/turtacn/chargeview/pkg/errors"
)

// CheckConsistency requires the charge record count to be a whole multiple
// of the atom count: one record per atom for every charge set.  Zero records
// pass.
func CheckConsistency(m *structure.Model) error {
	if m == nil {
		return errors.Precondition("no model loaded")
	}
	records, atoms := m.ChargeRecordCount, m.AtomCount()
	if records == 0 {
		return nil
	}
	if atoms == 0 || records%atoms != 0 {
		return errors.DataIntegrity("atom count does not match charge count").
			WithDetailf("atoms=%d charges=%d", atoms, records)
	}
	return nil
}

//Personal.AI order the ending
