// Package viewer is the visualization state controller.  It loads a
// structure into a scene engine, captures the load-time representation
// defaults and switches geometry, coloring and the active charge set while
// keeping the per-representation charge granularity consistent with the
// geometry shown.
//
// Every mutation runs inside one engine data transaction.  Callers still
// issue mutations one at a time; the controls service provides that ordering.
package viewer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/chargeview/internal/domain/structure"
	"github.com/turtacn/chargeview/internal/engine"
	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/chargeview/pkg/errors"
	vtypes "github.com/turtacn/chargeview/pkg/types/viewer"
)

// Options configures New.
type Options struct {
	Logger  logging.Logger
	Metrics *prometheus.ViewerMetrics
}

// Viewer owns one engine and the default-state snapshot of its structure.
type Viewer struct {
	engine  engine.Engine
	logger  logging.Logger
	metrics *prometheus.ViewerMetrics

	// mu guards snapshot and loaded.  Only Load replaces them, from inside
	// its data transaction.
	mu       sync.RWMutex
	snapshot *Snapshot
	loaded   *LoadResult

	typeSwitcher  *TypeSwitcher
	colorSwitcher *ColorSwitcher
	charges       *Charges
	behavior      *Behavior
}

// New wraps e.
func New(e engine.Engine, opts Options) *Viewer {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	v := &Viewer{engine: e, logger: logger.Named("viewer"), metrics: opts.Metrics}
	v.typeSwitcher = &TypeSwitcher{v: v}
	v.colorSwitcher = &ColorSwitcher{v: v}
	v.charges = &Charges{v: v}
	v.behavior = &Behavior{v: v}
	return v
}

func (v *Viewer) Engine() engine.Engine { return v.engine }
func (v *Viewer) Type() *TypeSwitcher   { return v.typeSwitcher }
func (v *Viewer) Color() *ColorSwitcher { return v.colorSwitcher }
func (v *Viewer) Charges() *Charges     { return v.charges }
func (v *Viewer) Behavior() *Behavior   { return v.behavior }

// Snapshot returns the defaults captured by the last successful load, or nil.
func (v *Viewer) Snapshot() *Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.snapshot
}

// Loaded describes the current structure, or returns nil before the first
// successful load.
func (v *Viewer) Loaded() *LoadResult {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loaded
}

// LoadResult describes a finished load.
type LoadResult struct {
	LoadID        string               `json:"loadId" yaml:"loadId"`
	URL           string               `json:"url" yaml:"url"`
	Format        vtypes.Format        `json:"format" yaml:"format"`
	Profile       vtypes.TargetProfile `json:"profile" yaml:"profile"`
	EntryID       string               `json:"entryId" yaml:"entryId"`
	Structures    []engine.Ref         `json:"structures" yaml:"structures"`
	Atoms         int                  `json:"atoms" yaml:"atoms"`
	ChargeRecords int                  `json:"chargeRecords" yaml:"chargeRecords"`
	Cached        bool                 `json:"cached" yaml:"cached"`
	Duration      time.Duration        `json:"duration" yaml:"duration"`
}

// Load replaces the scene with the structure at url.  The scene is cleared
// first, even when format or profile are rejected, so a failed load leaves
// nothing behind.  The snapshot is published inside the same transaction so
// a switcher never pairs the new structure with the old snapshot.
func (v *Viewer) Load(ctx context.Context, url string, format vtypes.Format, profile vtypes.TargetProfile) (*LoadResult, error) {
	timer := v.metrics.LoadTimer(string(format))
	result := &LoadResult{LoadID: uuid.NewString(), URL: url, Format: format, Profile: profile}
	logger := v.logger.With(logging.String("load_id", result.LoadID), logging.String("url", url))

	var snapshot *Snapshot
	err := v.engine.DataTransaction(ctx, func(ctx context.Context) error {
		v.publish(nil, nil)
		if err := v.engine.Clear(ctx); err != nil {
			return engineError(err, "failed to clear scene")
		}
		if !format.IsValid() {
			return errors.InvalidReference("unknown structure format").WithDetail(string(format))
		}
		if !profile.IsValid() {
			return errors.InvalidReference("unknown target profile").WithDetail(string(profile))
		}
		data, err := v.engine.Download(ctx, url)
		if err != nil {
			return err
		}
		result.Cached = data.Cached
		traj, err := v.engine.ParseTrajectory(ctx, data, format)
		if err != nil {
			return err
		}
		refs, err := v.engine.ApplyHierarchyPreset(ctx, traj, engine.PresetOptions{
			ShowUnitCell:         false,
			RepresentationPreset: engine.PresetAuto,
		})
		if err != nil {
			return engineError(err, "failed to build representations")
		}
		result.Structures = refs

		snapshot = captureDefaults(v.engine.Structures(), profile)

		m := v.model()
		if m != nil {
			result.EntryID = m.EntryID
			result.Atoms = m.AtomCount()
			result.ChargeRecords = m.ChargeRecordCount
		}
		if format.CarriesCharges() {
			if err := CheckConsistency(m); err != nil {
				v.metrics.RecordConsistencyFailure(string(format))
				if cerr := v.engine.Clear(ctx); cerr != nil {
					logger.Warn("failed to clear rejected structure", logging.Err(cerr))
				}
				return err
			}
		}
		result.Duration = timer.ObserveDuration()
		v.publish(snapshot, result)
		return nil
	})
	if err != nil {
		result.Duration = timer.ObserveDuration()
	}
	v.metrics.RecordLoad(string(format), string(profile), result.Atoms, err)
	if err != nil {
		v.metrics.RecordError("viewer", string(errors.GetCode(err)))
		logger.Warn("structure load failed", logging.Err(err))
		return nil, err
	}

	logger.Info("structure loaded",
		logging.String("entry_id", result.EntryID),
		logging.String("format", string(format)),
		logging.String("profile", string(profile)),
		logging.Int("atoms", result.Atoms),
		logging.Int("charge_records", result.ChargeRecords),
		logging.Int("representations", snapshot.Len()),
		logging.Bool("cached", result.Cached),
		logging.Duration("took", result.Duration))
	return result, nil
}

func (v *Viewer) publish(snapshot *Snapshot, loaded *LoadResult) {
	v.mu.Lock()
	v.snapshot, v.loaded = snapshot, loaded
	v.mu.Unlock()
}

// model returns the model of the first structure.
func (v *Viewer) model() *structure.Model {
	structures := v.engine.Structures()
	if len(structures) == 0 {
		return nil
	}
	return structures[0].Model
}

// engineError wraps err as an engine failure unless it already carries a code.
func engineError(err error, message string) error {
	code := errors.CodeEngineFailure
	var ae *errors.AppError
	if errors.As(err, &ae) {
		code = errors.CodeUnknown
	}
	return errors.Wrap(err, code, message)
}

// record logs and counts a finished transition.
func (v *Viewer) record(op, value string, err error) {
	v.metrics.RecordTransition(op, value, err)
	if err != nil {
		v.metrics.RecordError("viewer", string(errors.GetCode(err)))
		v.logger.Warn("transition failed", logging.String("operation", op), logging.String("value", value), logging.Err(err))
		return
	}
	v.logger.Debug("transition applied", logging.String("operation", op), logging.String("value", value))
}

//Personal.AI order the ending
