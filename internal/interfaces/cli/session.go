package cli

import (
	"context"
	"path"
	"strings"

	"github.com/turtacn/chargeview/internal/application/controls"
	"github.com/turtacn/chargeview/internal/bootstrap"
	"github.com/turtacn/chargeview/internal/engine/scene"
	"github.com/turtacn/chargeview/internal/viewer"
	vtypes "github.com/turtacn/chargeview/pkg/types/viewer"
)

// session is one headless viewer with its controls, built per command.
type session struct {
	infra    *bootstrap.Infrastructure
	engine   *scene.Engine
	viewer   *viewer.Viewer
	controls controls.Service
}

func openSession(ctx context.Context, cc *CLIContext) (*session, error) {
	infra, err := bootstrap.Connect(ctx, cc.Config, cc.Logger)
	if err != nil {
		return nil, err
	}
	e := scene.New(scene.Options{Fetcher: infra.Fetcher(nil), Logger: cc.Logger})
	v := viewer.New(e, viewer.Options{Logger: cc.Logger})
	return &session{
		infra:    infra,
		engine:   e,
		viewer:   v,
		controls: controls.NewService(controls.FromViewer(v), cc.Logger),
	}, nil
}

func (s *session) Close() { s.infra.Close() }

// resolveFormat picks the explicit --format, else the file extension, else
// the configured default.
func resolveFormat(flag, rawURL, fallback string) (vtypes.Format, error) {
	if flag != "" {
		return vtypes.ParseFormat(flag)
	}
	name := strings.ToLower(path.Base(rawURL))
	if ext := path.Ext(name); ext != "" {
		if f, err := vtypes.ParseFormat(ext[1:]); err == nil {
			return f, nil
		}
	}
	return vtypes.ParseFormat(fallback)
}

func resolveProfile(flag, fallback string) (vtypes.TargetProfile, error) {
	if flag != "" {
		return vtypes.ParseTargetProfile(flag)
	}
	return vtypes.ParseTargetProfile(fallback)
}

//Personal.AI order the ending
