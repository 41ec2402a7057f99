package viewer

import (
	"strconv"

	"github.com/turtacn/chargeview/internal/domain/structure"
	"github.com/turtacn/chargeview/pkg/errors"
	vtypes "github.com/turtacn/chargeview/pkg/types/viewer"
)

// Charges reads and selects the partial-charge sets of the first structure.
type Charges struct {
	v *Viewer
}

// Method describes one charge set.
type Method struct {
	TypeID     int     `json:"typeId" yaml:"typeId"`
	Name       string  `json:"name" yaml:"name"`
	Method     string  `json:"method" yaml:"method"`
	Parameters string  `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Type       string  `json:"type,omitempty" yaml:"type,omitempty"`
	MaxCharge  float64 `json:"maxAbsoluteCharge" yaml:"maxAbsoluteCharge"`
}

func (c *Charges) model() (*structure.Model, error) {
	m := c.v.model()
	if m == nil {
		return nil, errors.Precondition("no model loaded")
	}
	return m, nil
}

func (c *Charges) data() (*structure.Model, *structure.ChargeData, error) {
	m, err := c.model()
	if err != nil {
		return nil, nil, err
	}
	d := c.v.engine.ChargeProperties().Get(m)
	if d == nil {
		return nil, nil, errors.Precondition("structure has no charge data")
	}
	return m, d, nil
}

// MethodNames returns the method names of type ids 1..N in order.  The ids
// must be contiguous from 1.
func (c *Charges) MethodNames() ([]string, error) {
	_, d, err := c.data()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(d.TypeIDToMethod))
	for id := 1; id <= len(d.TypeIDToMethod); id++ {
		name, ok := d.TypeIDToMethod[id]
		if !ok {
			return nil, errors.DataIntegrity("missing method for type id").WithDetail(strconv.Itoa(id))
		}
		names = append(names, name)
	}
	return names, nil
}

// Methods is MethodNames with the method split from its parameters.
func (c *Charges) Methods() ([]Method, error) {
	names, err := c.MethodNames()
	if err != nil {
		return nil, err
	}
	_, d, _ := c.data()
	out := make([]Method, len(names))
	for i, name := range names {
		id := i + 1
		method, params := vtypes.SplitMethodName(name)
		out[i] = Method{
			TypeID:     id,
			Name:       name,
			Method:     method,
			Parameters: params,
			Type:       d.MethodTypes[id],
			MaxCharge:  d.MaxAbsoluteAtomCharges[id],
		}
	}
	return out, nil
}

// TypeID returns the active charge set.
func (c *Charges) TypeID() (int, error) {
	m, err := c.model()
	if err != nil {
		return 0, err
	}
	id := c.v.engine.ChargeProperties().TypeID(m)
	if id == 0 {
		return 0, errors.Precondition("no charge set is active")
	}
	return id, nil
}

// SetTypeID activates charge set id.  id must be declared in the structure's
// charge metadata.
func (c *Charges) SetTypeID(id int) (err error) {
	defer func() { c.v.record("type_id", strconv.Itoa(id), err) }()

	m, d, err := c.data()
	if err != nil {
		return err
	}
	if !d.HasTypeID(id) {
		return errors.InvalidReference("invalid type id").WithDetail(strconv.Itoa(id))
	}
	c.v.engine.ChargeProperties().SetTypeID(m, id)
	return nil
}

// MaxCharge returns the largest charge magnitude across all charge sets.
func (c *Charges) MaxCharge() (float64, error) {
	_, d, err := c.data()
	if err != nil {
		return 0, err
	}
	return d.MaxAbsoluteAtomChargeAll, nil
}

//Personal.AI order the ending
