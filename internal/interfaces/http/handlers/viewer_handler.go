package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/chargeview/internal/application/controls"
	"github.com/turtacn/chargeview/internal/engine"
	"github.com/turtacn/chargeview/internal/engine/scene"
	"github.com/turtacn/chargeview/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chargeview/internal/viewer"
	vtypes "github.com/turtacn/chargeview/pkg/types/viewer"
)

// Renderer describes the current scene.  *scene.Engine implements it.
type Renderer interface {
	Render(opts scene.RenderOptions) scene.Frame
}

// ViewerHandler serves the control state, the direct viewer API and the
// scene description.
type ViewerHandler struct {
	controls       controls.Service
	viewer         *viewer.Viewer
	renderer       Renderer
	logger         logging.Logger
	defaultFormat  vtypes.Format
	defaultProfile vtypes.TargetProfile
}

// ViewerHandlerOptions sets the format and profile used when a load request
// leaves them out.
type ViewerHandlerOptions struct {
	DefaultFormat  vtypes.Format
	DefaultProfile vtypes.TargetProfile
}

// NewViewerHandler creates a new ViewerHandler.
func NewViewerHandler(svc controls.Service, v *viewer.Viewer, r Renderer, logger logging.Logger, opts ViewerHandlerOptions) *ViewerHandler {
	if opts.DefaultFormat == "" {
		opts.DefaultFormat = vtypes.FormatMMCIF
	}
	if opts.DefaultProfile == "" {
		opts.DefaultProfile = vtypes.ProfileACC2
	}
	return &ViewerHandler{
		controls:       svc,
		viewer:         v,
		renderer:       r,
		logger:         logger,
		defaultFormat:  opts.DefaultFormat,
		defaultProfile: opts.DefaultProfile,
	}
}

// ---------------------------------------------------------------------------
// Request / response bodies
// ---------------------------------------------------------------------------

// LoadRequest is the body of POST /load.
type LoadRequest struct {
	URL       string `json:"url"`
	Format    string `json:"format,omitempty"`
	Profile   string `json:"profile,omitempty"`
	Structure string `json:"structure,omitempty"`
}

// LoadResponse reports the loaded structure and the resulting control state.
type LoadResponse struct {
	Result *viewer.LoadResult `json:"result"`
	State  controls.State     `json:"state"`
}

type typeRequest struct {
	Type string `json:"type"`
}

type valueRequest struct {
	Value *float64 `json:"value"`
}

type idRequest struct {
	ID *int `json:"id"`
}

type colorRequest struct {
	Max float64 `json:"max"`
}

// FocusResponse is the atom set focused by /focus and /focus-range.
type FocusResponse struct {
	Structure engine.Ref            `json:"structure,omitempty"`
	Atoms     []int                 `json:"atoms"`
	Camera    engine.CameraSnapshot `json:"camera"`
}

// ---------------------------------------------------------------------------
// Control state
// ---------------------------------------------------------------------------

// Load handles POST /load.
func (h *ViewerHandler) Load(w http.ResponseWriter, r *http.Request) {
	var req LoadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	format, profile := h.defaultFormat, h.defaultProfile
	if req.Format != "" {
		f, err := vtypes.ParseFormat(req.Format)
		if err != nil {
			writeAppError(w, err)
			return
		}
		format = f
	}
	if req.Profile != "" {
		p, err := vtypes.ParseTargetProfile(req.Profile)
		if err != nil {
			writeAppError(w, err)
			return
		}
		profile = p
	}

	res, err := h.controls.LoadStructure(r.Context(), controls.LoadRequest{
		URL:       req.URL,
		Format:    format,
		Profile:   profile,
		Structure: req.Structure,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LoadResponse{Result: res, State: h.controls.State()})
}

// GetState handles GET /state.
func (h *ViewerHandler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.controls.State())
}

// SetColoring handles PUT /coloring.
func (h *ViewerHandler) SetColoring(w http.ResponseWriter, r *http.Request) {
	var req typeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	t, err := vtypes.ParseColoringType(req.Type)
	if err == nil {
		err = h.controls.SetColoring(r.Context(), t)
	}
	h.writeState(w, err)
}

// SetMaxValue handles PUT /max-value.
func (h *ViewerHandler) SetMaxValue(w http.ResponseWriter, r *http.Request) {
	var req valueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	if req.Value == nil {
		writeAppError(w, errorMissing("value"))
		return
	}
	h.writeState(w, h.controls.SetMaxValue(r.Context(), *req.Value))
}

// SetView handles PUT /view.
func (h *ViewerHandler) SetView(w http.ResponseWriter, r *http.Request) {
	var req typeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	t, err := vtypes.ParseViewType(req.Type)
	if err == nil {
		err = h.controls.SetView(r.Context(), t)
	}
	h.writeState(w, err)
}

// SetTypeID handles PUT /type-id.
func (h *ViewerHandler) SetTypeID(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	if req.ID == nil {
		writeAppError(w, errorMissing("id"))
		return
	}
	h.writeState(w, h.controls.SetTypeID(r.Context(), *req.ID))
}

func (h *ViewerHandler) writeState(w http.ResponseWriter, err error) {
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.controls.State())
}

// ---------------------------------------------------------------------------
// Charges
// ---------------------------------------------------------------------------

// ListMethods handles GET /charges/methods.
func (h *ViewerHandler) ListMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.viewer.Charges().Methods()
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"methods": methods})
}

// GetTypeID handles GET /charges/type-id.
func (h *ViewerHandler) GetTypeID(w http.ResponseWriter, r *http.Request) {
	id, err := h.viewer.Charges().TypeID()
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"typeId": id})
}

// GetMaxCharge handles GET /charges/max.
func (h *ViewerHandler) GetMaxCharge(w http.ResponseWriter, r *http.Request) {
	max, err := h.viewer.Charges().MaxCharge()
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"maxCharge": max})
}

// ---------------------------------------------------------------------------
// Direct viewer API
// ---------------------------------------------------------------------------

// SetColor handles POST /color/{scheme}.  Any color switcher scheme is
// accepted; the control state records the coloring it maps to.
func (h *ViewerHandler) SetColor(w http.ResponseWriter, r *http.Request) {
	var req colorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	scheme, err := vtypes.ParseColorScheme(chi.URLParam(r, "scheme"))
	if err == nil {
		err = h.controls.SetColorScheme(r.Context(), scheme, vtypes.ColorParams{MaxAbsoluteCharge: req.Max})
	}
	h.writeState(w, err)
}

// SetType handles POST /type/{kind}.
func (h *ViewerHandler) SetType(w http.ResponseWriter, r *http.Request) {
	kind, err := vtypes.ParseGeometryKind(chi.URLParam(r, "kind"))
	if err == nil {
		err = h.controls.SetGeometry(r.Context(), kind)
	}
	h.writeState(w, err)
}

// DefaultApplicable handles GET /type/default-applicable.
func (h *ViewerHandler) DefaultApplicable(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"applicable": h.viewer.Type().IsDefaultApplicable()})
}

// Focus handles POST /focus.  An atom that does not resolve yields an empty
// atom list and leaves the scene unchanged.
func (h *ViewerHandler) Focus(w http.ResponseWriter, r *http.Request) {
	var key vtypes.AtomKey
	if err := decodeJSON(r, &key); err != nil {
		writeAppError(w, err)
		return
	}
	h.writeFocus(w, h.viewer.Behavior().Focus(key))
}

// FocusRange handles POST /focus-range.
func (h *ViewerHandler) FocusRange(w http.ResponseWriter, r *http.Request) {
	var rng vtypes.ResidueRange
	if err := decodeJSON(r, &rng); err != nil {
		writeAppError(w, err)
		return
	}
	h.writeFocus(w, h.viewer.Behavior().FocusRange(rng))
}

func (h *ViewerHandler) writeFocus(w http.ResponseWriter, loci engine.Loci) {
	atoms := loci.Atoms
	if atoms == nil {
		atoms = []int{}
	}
	writeJSON(w, http.StatusOK, FocusResponse{
		Structure: loci.Structure,
		Atoms:     atoms,
		Camera:    h.viewer.Engine().Camera().State(),
	})
}

// Scene handles GET /scene.  ?units=true adds the per-unit charge colors.
func (h *ViewerHandler) Scene(w http.ResponseWriter, r *http.Request) {
	units, _ := strconv.ParseBool(r.URL.Query().Get("units"))
	writeJSON(w, http.StatusOK, h.renderer.Render(scene.RenderOptions{Units: units}))
}

//Personal.AI order the ending
