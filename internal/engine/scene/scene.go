// Package scene is the headless in-memory implementation of engine.Engine.
// It keeps the structure hierarchy, representation parameters and the
// selection/camera managers a renderer would draw from, and describes the
// resolved scene through Render.
package scene

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/turtacn/chargeview/internal/domain/structure"
	"github.com/turtacn/chargeview/internal/engine"
	"github.com/turtacn/chargeview/internal/infrastructure/fetch"
	"github.com/turtacn/chargeview/internal/infrastructure/format/mmcif"
	"github.com/turtacn/chargeview/internal/infrastructure/format/pdb"
	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chargeview/pkg/errors"
	vtypes "github.com/turtacn/chargeview/pkg/types/viewer"
)

// Options configures New.
type Options struct {
	// Fetcher resolves Download URLs.  Download fails without one.
	Fetcher fetch.Fetcher
	Logger  logging.Logger
}

type representationNode struct {
	ref   engine.Ref
	props engine.RepresentationProps
}

type componentNode struct {
	ref             engine.Ref
	label           string
	data            *structure.Subset
	representations []*representationNode
}

type structureNode struct {
	ref        engine.Ref
	model      *structure.Model
	unitCell   bool
	components []*componentNode
}

// Engine is the in-memory scene.
type Engine struct {
	fetcher fetch.Fetcher
	logger  logging.Logger

	// txMu serializes writers; mu guards the tree for readers.
	txMu sync.Mutex
	mu   sync.RWMutex

	structures []*structureNode
	reprs      map[engine.Ref]*representationNode
	version    uint64

	charges       *chargeProperties
	interactivity *interactivity
	camera        *camera
	focusTarget   *focusTarget
	focusRepr     *focusRepresentation
}

var _ engine.Engine = (*Engine)(nil)

// New returns an empty scene.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Engine{
		fetcher:       opts.Fetcher,
		logger:        logger.Named("scene"),
		reprs:         make(map[engine.Ref]*representationNode),
		charges:       newChargeProperties(),
		interactivity: newInteractivity(),
		camera:        &camera{},
		focusTarget:   &focusTarget{},
		focusRepr:     newFocusRepresentation(),
	}
}

func newRef() engine.Ref { return engine.Ref(uuid.NewString()) }

// Version increases with every change to the tree.
func (e *Engine) Version() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.version
}

// Clear removes every structure and resets selection, focus and camera.
// Focus representation themes survive.
func (e *Engine) Clear(ctx context.Context) error {
	return e.exclusive(ctx, func() error {
		e.mu.Lock()
		e.structures = nil
		e.reprs = make(map[engine.Ref]*representationNode)
		e.version++
		e.mu.Unlock()

		e.charges.reset()
		e.interactivity.reset()
		e.camera.reset()
		e.focusTarget.SetFromLoci(engine.Loci{})
		return nil
	})
}

func (e *Engine) Download(ctx context.Context, url string) (*engine.Data, error) {
	if e.fetcher == nil {
		return nil, errors.Precondition("no fetcher configured").WithDetail(url)
	}
	res, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, wrapKeepCode(err, errors.CodeFetchFailed, "download failed")
	}
	return &engine.Data{Ref: newRef(), URL: res.URL, Bytes: res.Bytes, Cached: res.Cached}, nil
}

func (e *Engine) ParseTrajectory(ctx context.Context, data *engine.Data, format vtypes.Format) (*engine.Trajectory, error) {
	if data == nil {
		return nil, errors.InvalidReference("no data to parse")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeTimeout, "parse cancelled")
	}

	var (
		models []*structure.Model
		err    error
	)
	switch format {
	case vtypes.FormatMMCIF:
		var blocks []*mmcif.Block
		blocks, err = mmcif.ParseBytes(data.Bytes)
		if err == nil {
			models, err = mmcif.ReadModels(blocks)
		}
	case vtypes.FormatPDB:
		models, err = pdb.ReadBytes(data.Bytes)
	default:
		return nil, errors.InvalidReference("unsupported format").WithDetail(string(format))
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeParseFailed, "failed to parse structure").WithDetail(data.URL)
	}

	e.logger.Debug("trajectory parsed",
		logging.String("url", data.URL),
		logging.String("format", string(format)),
		logging.Int("models", len(models)),
		logging.Int("atoms", models[0].AtomCount()))
	return &engine.Trajectory{Ref: newRef(), Format: format, Models: models}, nil
}

// Structures returns copies of the hierarchy nodes.  Props point at private
// copies, so callers cannot change the scene without an Update.
func (e *Engine) Structures() []engine.HierarchyStructure {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]engine.HierarchyStructure, 0, len(e.structures))
	for _, s := range e.structures {
		hs := engine.HierarchyStructure{Ref: s.ref, Model: s.model}
		for _, c := range s.components {
			hc := engine.HierarchyComponent{Ref: c.ref, Label: c.label, Data: c.data}
			for _, r := range c.representations {
				props := r.props
				hc.Representations = append(hc.Representations, engine.HierarchyRepresentation{Ref: r.ref, Props: &props})
			}
			hs.Components = append(hs.Components, hc)
		}
		out = append(out, hs)
	}
	return out
}

// wrapKeepCode wraps err, keeping the code of an *AppError cause and using
// fallback for plain errors.
func wrapKeepCode(err error, fallback errors.ErrorCode, message string) error {
	code := fallback
	var ae *errors.AppError
	if errors.As(err, &ae) {
		code = errors.CodeUnknown
	}
	return errors.Wrap(err, code, message)
}

func (e *Engine) ChargeProperties() engine.ChargeProperties       { return e.charges }
func (e *Engine) Interactivity() engine.Interactivity             { return e.interactivity }
func (e *Engine) Camera() engine.Camera                           { return e.camera }
func (e *Engine) FocusTarget() engine.FocusTarget                 { return e.focusTarget }
func (e *Engine) FocusRepresentation() engine.FocusRepresentation { return e.focusRepr }

//Personal.AI order the ending
