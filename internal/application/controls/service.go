// Package controls keeps the UI-visible control state in step with the
// viewer.  Every setter drives the viewer first and updates the state only
// once the viewer call has succeeded, so an observer never sees a state the
// scene has not reached.
package controls

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chargeview/internal/viewer"
	"github.com/turtacn/chargeview/pkg/errors"
	vtypes "github.com/turtacn/chargeview/pkg/types/viewer"
)

// ---------------------------------------------------------------------------
// State
// ---------------------------------------------------------------------------

// State is the control state shown by the UI.
type State struct {
	CurrentTypeID int                 `json:"currentTypeId" yaml:"currentTypeId"`
	Structure     string              `json:"structure" yaml:"structure"`
	ColoringType  vtypes.ColoringType `json:"coloringType" yaml:"coloringType"`
	ColorScheme   vtypes.ColorScheme  `json:"colorScheme" yaml:"colorScheme"`
	MaxValue      float64             `json:"maxValue" yaml:"maxValue"`
	ViewType      vtypes.ViewType     `json:"viewType" yaml:"viewType"`
	MethodNames   []string            `json:"methodNames" yaml:"methodNames"`
}

// InitialState is the state before any structure is loaded.
func InitialState() State {
	return State{
		ColoringType: vtypes.ColoringChargesRelative,
		ColorScheme:  vtypes.ColorChargesRelative,
		ViewType:     vtypes.ViewCartoon,
		MethodNames:  []string{},
	}
}

func (s State) clone() State {
	s.MethodNames = append([]string{}, s.MethodNames...)
	return s
}

// Operations named in StateEvent.Operation.
const (
	OpLoad     = "load"
	OpColoring = "coloring"
	OpMaxValue = "max_value"
	OpTypeID   = "type_id"
	OpView     = "view"
)

// StateEvent is emitted after every successful state change.
type StateEvent struct {
	ID        string    `json:"id"`
	Operation string    `json:"operation"`
	State     State     `json:"state"`
	Timestamp time.Time `json:"timestamp"`
}

// LoadRequest describes a structure to load.
type LoadRequest struct {
	URL       string               `json:"url"`
	Format    vtypes.Format        `json:"format"`
	Profile   vtypes.TargetProfile `json:"profile"`
	Structure string               `json:"structure,omitempty"`
}

// ---------------------------------------------------------------------------
// Viewer port
// ---------------------------------------------------------------------------

// Viewer is the part of the visualization controller the service drives.
type Viewer interface {
	Load(ctx context.Context, url string, format vtypes.Format, profile vtypes.TargetProfile) (*viewer.LoadResult, error)
	SetType(ctx context.Context, kind vtypes.GeometryKind) error
	IsDefaultApplicable() bool
	SetColor(ctx context.Context, scheme vtypes.ColorScheme, params vtypes.ColorParams) error
	MethodNames() ([]string, error)
	TypeID() (int, error)
	SetTypeID(id int) error
	MaxCharge() (float64, error)
}

type viewerAdapter struct {
	v *viewer.Viewer
}

// FromViewer adapts v to the Viewer port.
func FromViewer(v *viewer.Viewer) Viewer {
	return viewerAdapter{v: v}
}

func (a viewerAdapter) Load(ctx context.Context, url string, format vtypes.Format, profile vtypes.TargetProfile) (*viewer.LoadResult, error) {
	return a.v.Load(ctx, url, format, profile)
}

func (a viewerAdapter) SetType(ctx context.Context, kind vtypes.GeometryKind) error {
	return a.v.Type().Set(ctx, kind)
}

func (a viewerAdapter) IsDefaultApplicable() bool { return a.v.Type().IsDefaultApplicable() }

func (a viewerAdapter) SetColor(ctx context.Context, scheme vtypes.ColorScheme, params vtypes.ColorParams) error {
	return a.v.Color().Set(ctx, scheme, params)
}

func (a viewerAdapter) MethodNames() ([]string, error) { return a.v.Charges().MethodNames() }
func (a viewerAdapter) TypeID() (int, error)           { return a.v.Charges().TypeID() }
func (a viewerAdapter) SetTypeID(id int) error         { return a.v.Charges().SetTypeID(id) }
func (a viewerAdapter) MaxCharge() (float64, error)    { return a.v.Charges().MaxCharge() }

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service is the control-state synchronizer.
type Service interface {
	State() State
	LoadStructure(ctx context.Context, req LoadRequest) (*viewer.LoadResult, error)
	SetColoring(ctx context.Context, t vtypes.ColoringType) error
	SetMaxValue(ctx context.Context, value float64) error
	SetTypeID(ctx context.Context, id int) error
	SetView(ctx context.Context, t vtypes.ViewType) error
	SetColorScheme(ctx context.Context, scheme vtypes.ColorScheme, params vtypes.ColorParams) error
	SetGeometry(ctx context.Context, kind vtypes.GeometryKind) error
	Subscribe() (<-chan StateEvent, func())
}

// subscriberBuffer is the number of events queued per subscriber before new
// events are dropped for it.
const subscriberBuffer = 16

type serviceImpl struct {
	viewer Viewer
	logger logging.Logger

	// op serializes operations; mu guards state and subscribers.
	op          sync.Mutex
	mu          sync.RWMutex
	state       State
	subscribers map[int]chan StateEvent
	nextSub     int
}

// NewService creates a synchronizer over v.
func NewService(v Viewer, logger logging.Logger) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &serviceImpl{
		viewer:      v,
		logger:      logger.Named("controls"),
		state:       InitialState(),
		subscribers: make(map[int]chan StateEvent),
	}
}

func (s *serviceImpl) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// LoadStructure loads req and brings the scene to the control state: the
// default view when it applies and balls-and-sticks otherwise, relative
// charge coloring, and the method list of the new structure.  A structure
// without charges yields an empty method list and a zero type id.
func (s *serviceImpl) LoadStructure(ctx context.Context, req LoadRequest) (*viewer.LoadResult, error) {
	s.op.Lock()
	defer s.op.Unlock()

	res, err := s.viewer.Load(ctx, req.URL, req.Format, req.Profile)
	if err != nil {
		return nil, err
	}

	view := vtypes.ViewBallsAndSticks
	if s.viewer.IsDefaultApplicable() {
		view = vtypes.ViewCartoon
	}
	if err := s.viewer.SetType(ctx, view.Geometry()); err != nil {
		return nil, err
	}
	if err := s.viewer.SetColor(ctx, vtypes.ColorChargesRelative, vtypes.ColorParams{}); err != nil {
		return nil, err
	}

	names, err := optional(s.viewer.MethodNames())
	if err != nil {
		return nil, err
	}
	typeID, err := optional(s.viewer.TypeID())
	if err != nil {
		return nil, err
	}
	maxCharge, err := optional(s.viewer.MaxCharge())
	if err != nil {
		return nil, err
	}

	structure := req.Structure
	if structure == "" {
		structure = res.EntryID
	}
	if names == nil {
		names = []string{}
	}
	s.commit(OpLoad, func(st *State) {
		st.Structure = structure
		st.ViewType = view
		st.ColoringType = vtypes.ColoringChargesRelative
		st.ColorScheme = vtypes.ColorChargesRelative
		st.MethodNames = names
		st.CurrentTypeID = typeID
		st.MaxValue = CeilCharge(maxCharge)
	})
	return res, nil
}

// SetColoring applies t.  Absolute coloring uses the current maximum value.
func (s *serviceImpl) SetColoring(ctx context.Context, t vtypes.ColoringType) error {
	if _, err := vtypes.ParseColoringType(string(t)); err != nil {
		return err
	}
	s.op.Lock()
	defer s.op.Unlock()

	if err := s.applyScheme(ctx, t.Scheme(), s.State().MaxValue); err != nil {
		return err
	}
	s.commit(OpColoring, func(st *State) {
		st.ColoringType = t
		st.ColorScheme = t.Scheme()
	})
	return nil
}

// SetMaxValue re-applies absolute coloring with value.  The coloring type
// becomes charges-absolute since that is what the scene now shows.
func (s *serviceImpl) SetMaxValue(ctx context.Context, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return errors.InvalidParam("maximum value must be finite")
	}
	s.op.Lock()
	defer s.op.Unlock()

	if err := s.applyScheme(ctx, vtypes.ColorChargesAbsolute, value); err != nil {
		return err
	}
	s.commit(OpMaxValue, func(st *State) {
		st.MaxValue = value
		st.ColoringType = vtypes.ColoringChargesAbsolute
		st.ColorScheme = vtypes.ColorChargesAbsolute
	})
	return nil
}

// SetTypeID activates charge set id and re-applies the current coloring so
// the scene shows the new set.  If the coloring fails the previous set is
// restored.
func (s *serviceImpl) SetTypeID(ctx context.Context, id int) error {
	s.op.Lock()
	defer s.op.Unlock()

	previous := s.State()
	if err := s.viewer.SetTypeID(id); err != nil {
		return err
	}
	if err := s.applyScheme(ctx, previous.ColorScheme, previous.MaxValue); err != nil {
		if previous.CurrentTypeID > 0 {
			if rerr := s.viewer.SetTypeID(previous.CurrentTypeID); rerr != nil {
				s.logger.Error("failed to restore charge set",
					logging.Int("type_id", previous.CurrentTypeID),
					logging.Err(rerr))
			}
		}
		return err
	}
	s.commit(OpTypeID, func(st *State) { st.CurrentTypeID = id })
	return nil
}

// SetView applies t through the type switcher.
func (s *serviceImpl) SetView(ctx context.Context, t vtypes.ViewType) error {
	if _, err := vtypes.ParseViewType(string(t)); err != nil {
		return err
	}
	s.op.Lock()
	defer s.op.Unlock()

	if err := s.viewer.SetType(ctx, t.Geometry()); err != nil {
		return err
	}
	s.commit(OpView, func(st *State) { st.ViewType = t })
	return nil
}

// SetColorScheme applies any color switcher scheme and records the UI
// coloring that shows it.  An absolute scheme also sets the maximum value.
func (s *serviceImpl) SetColorScheme(ctx context.Context, scheme vtypes.ColorScheme, params vtypes.ColorParams) error {
	if !scheme.IsValid() {
		return errors.InvalidReference("unknown color scheme").WithDetail(string(scheme))
	}
	if math.IsNaN(params.MaxAbsoluteCharge) || math.IsInf(params.MaxAbsoluteCharge, 0) {
		return errors.InvalidParam("maximum value must be finite")
	}
	s.op.Lock()
	defer s.op.Unlock()

	if err := s.viewer.SetColor(ctx, scheme, params); err != nil {
		return err
	}
	s.commit(OpColoring, func(st *State) {
		st.ColoringType = scheme.Coloring()
		st.ColorScheme = scheme
		if scheme == vtypes.ColorChargesAbsolute {
			st.MaxValue = params.MaxAbsoluteCharge
		}
	})
	return nil
}

// SetGeometry applies kind and records the view that shows it.
func (s *serviceImpl) SetGeometry(ctx context.Context, kind vtypes.GeometryKind) error {
	if !kind.IsValid() {
		return errors.InvalidReference("unknown geometry kind").WithDetail(string(kind))
	}
	s.op.Lock()
	defer s.op.Unlock()

	if err := s.viewer.SetType(ctx, kind); err != nil {
		return err
	}
	s.commit(OpView, func(st *State) { st.ViewType = kind.View() })
	return nil
}

func (s *serviceImpl) applyScheme(ctx context.Context, scheme vtypes.ColorScheme, max float64) error {
	params := vtypes.ColorParams{}
	if scheme == vtypes.ColorChargesAbsolute {
		params.MaxAbsoluteCharge = max
	}
	return s.viewer.SetColor(ctx, scheme, params)
}

// ---------------------------------------------------------------------------
// Observers
// ---------------------------------------------------------------------------

// Subscribe returns a channel receiving every later StateEvent and a
// function that ends the subscription and closes the channel.  A subscriber
// that falls behind misses events.
func (s *serviceImpl) Subscribe() (<-chan StateEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan StateEvent, subscriberBuffer)
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			close(ch)
			s.mu.Unlock()
		})
	}
}

// commit applies fn to the state and notifies subscribers.
func (s *serviceImpl) commit(op string, fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
	ev := StateEvent{
		ID:        uuid.NewString(),
		Operation: op,
		State:     s.state.clone(),
		Timestamp: time.Now().UTC(),
	}
	for id, ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			s.logger.Warn("state event dropped", logging.Int("subscriber", id), logging.String("operation", op))
		}
	}
	s.logger.Info("control state changed",
		logging.String("operation", op),
		logging.String("structure", s.state.Structure),
		logging.Int("type_id", s.state.CurrentTypeID))
}

// optional turns the precondition error of a structure without charges into
// the zero value.
func optional[T any](v T, err error) (T, error) {
	if errors.IsPrecondition(err) {
		var zero T
		return zero, nil
	}
	return v, err
}

// CeilCharge rounds v up to four decimals.  Only the last ulp of the scaled
// value is forgiven, so any real excess still rounds up.
func CeilCharge(v float64) float64 {
	return math.Ceil(math.Nextafter(v*1e4, 0)) / 1e4
}

//Personal.AI order the ending
