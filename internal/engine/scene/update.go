package scene

import (
	"context"

	"github.com/turtacn/chargeview/internal/engine"
	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chargeview/pkg/errors"
)

type txKey struct{}

func (e *Engine) inTransaction(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Engine)
	return ok && owner == e
}

// exclusive runs fn holding the writer lock unless ctx already belongs to a
// transaction of this engine.
func (e *Engine) exclusive(ctx context.Context, fn func() error) error {
	if e.inTransaction(ctx) {
		return fn()
	}
	e.txMu.Lock()
	defer e.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.CodeTimeout, "scene update cancelled")
	}
	return fn()
}

// DataTransaction runs fn as the only writer.  Updates committed with the
// context passed to fn go through; other writers wait until fn returns.
// Nested transactions join the outer one.
func (e *Engine) DataTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if e.inTransaction(ctx) {
		return fn(ctx)
	}
	e.txMu.Lock()
	defer e.txMu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, e))
}

type change struct {
	ref   engine.Ref
	props engine.RepresentationProps
}

type update struct {
	e       *Engine
	changes []change
}

// BeginUpdate starts an empty batch.
func (e *Engine) BeginUpdate() engine.Update {
	return &update{e: e}
}

func (u *update) To(ref engine.Ref, props engine.RepresentationProps) engine.Update {
	u.changes = append(u.changes, change{ref: ref, props: props})
	return u
}

// Commit validates every change, then applies all of them.  The batch is
// empty afterwards.
func (u *update) Commit(ctx context.Context) error {
	changes := u.changes
	u.changes = nil
	if len(changes) == 0 {
		return nil
	}
	e := u.e
	return e.exclusive(ctx, func() error {
		e.mu.Lock()
		defer e.mu.Unlock()

		for _, c := range changes {
			if _, ok := e.reprs[c.ref]; !ok {
				return errors.InvalidReference("unknown representation").WithDetail(string(c.ref))
			}
			if err := c.props.Validate(); err != nil {
				return errors.InvalidReference("invalid representation parameters").WithCause(err).WithDetail(string(c.ref))
			}
		}
		for _, c := range changes {
			e.reprs[c.ref].props = c.props
		}
		e.version++
		e.logger.Debug("representations updated", logging.Int("changes", len(changes)))
		return nil
	})
}

//Personal.AI order the ending
