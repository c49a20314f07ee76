package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/edp1096/toy-schematic/internal/config"
	"github.com/edp1096/toy-schematic/pkg/analysis"
	"github.com/edp1096/toy-schematic/pkg/component"
	"github.com/edp1096/toy-schematic/pkg/geometry"
	"github.com/edp1096/toy-schematic/pkg/netlist"
	"github.com/edp1096/toy-schematic/pkg/store"
	"github.com/edp1096/toy-schematic/pkg/workspace"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrAnalysis   = errors.New("analysis failed")
)

var validate = validator.New()

type ErrorResponse struct {
	Error string `json:"error"`
}

type Handlers struct {
	designs  *Designs
	defaults config.AnalysisConfig
	metrics  *Metrics
	logger   *slog.Logger
}

func NewHandlers(designs *Designs, defaults config.AnalysisConfig, metrics *Metrics, logger *slog.Logger) *Handlers {
	return &Handlers{designs: designs, defaults: defaults, metrics: metrics, logger: logger}
}

// bind decodes the JSON body into req and runs its validate tags. It writes
// the 400 response itself and reports whether the handler may go on.
func (h *Handlers) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return false
	}
	if err := validate.Struct(req); err != nil {
		h.fail(c, fmt.Errorf("%w: %s", ErrBadRequest, describeValidation(err)))
		return false
	}
	return true
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
	}
	return err.Error()
}

func statusFor(err error) int {
	var perr *netlist.ParseError
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, ErrComponentNotFound),
		errors.Is(err, ErrWireNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, analysis.ErrUnknownNode),
		errors.As(err, &perr):
		return http.StatusBadRequest
	case errors.Is(err, component.ErrUnknownComponent),
		errors.Is(err, component.ErrUnknownPort),
		errors.Is(err, component.ErrSelfLoop),
		errors.Is(err, component.ErrSameComponent),
		errors.Is(err, component.ErrDriverConflict),
		errors.Is(err, component.ErrDriverGrounded),
		errors.Is(err, component.ErrDuplicateWire):
		return http.StatusConflict
	case errors.Is(err, ErrAnalysis),
		errors.Is(err, analysis.ErrSingular),
		errors.Is(err, analysis.ErrNoInput):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
	} else {
		h.logger.Debug("request rejected", "path", c.FullPath(), "status", status, "error", err)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error()})
}

// Health handles GET /health.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListComponents handles GET /v1/components.
func (h *Handlers) ListComponents(c *gin.Context) {
	specs := make([]component.Spec, 0, len(component.Kinds()))
	for _, k := range component.Kinds() {
		if spec, ok := component.Lookup(k); ok {
			specs = append(specs, spec)
		}
	}
	c.JSON(http.StatusOK, specs)
}

// -----------------------------------------------------------------------------
// Designs
// -----------------------------------------------------------------------------

type CreateDesignRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

func (h *Handlers) CreateDesign(c *gin.Context) {
	var req CreateDesignRequest
	if !h.bind(c, &req) {
		return
	}
	d, err := h.designs.Create(req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, d.Summary())
}

func (h *Handlers) ListDesigns(c *gin.Context) {
	list, err := h.designs.List()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) GetDesign(c *gin.Context) {
	view, err := h.designs.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handlers) DeleteDesign(c *gin.Context) {
	if err := h.designs.Delete(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// -----------------------------------------------------------------------------
// Editing
// -----------------------------------------------------------------------------

type AddComponentRequest struct {
	Type   string   `json:"type" validate:"required"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Src    string   `json:"src"`
	Symbol string   `json:"symbol"`
	Value  *float64 `json:"value"`
	Label  string   `json:"label" validate:"max=64"`
}

type DropRequest struct {
	Type     string            `json:"type" validate:"required"`
	Client   geometry.Point    `json:"client"`
	Viewport geometry.Viewport `json:"viewport"`
	Src      string            `json:"src"`
	Symbol   string            `json:"symbol"`
}

type MoveRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

type ValueRequest struct {
	Value *float64 `json:"value" validate:"required"`
}

type LabelRequest struct {
	Label string `json:"label" validate:"max=64"`
}

type WireRequest struct {
	From   workspace.PortRef `json:"from"`
	To     workspace.PortRef `json:"to"`
	Points []geometry.Point  `json:"points"`
}

type MutationResponse struct {
	View
	Changed bool `json:"changed"`
}

func knownType(typ string) (component.Spec, error) {
	spec, ok := component.LookupType(typ)
	if !ok || spec.Kind == component.KindWire {
		return component.Spec{}, fmt.Errorf("%w: unknown component type %q", ErrBadRequest, typ)
	}
	return spec, nil
}

func (h *Handlers) AddComponent(c *gin.Context) {
	var req AddComponentRequest
	if !h.bind(c, &req) {
		return
	}
	spec, err := knownType(req.Type)
	if err != nil {
		h.fail(c, err)
		return
	}

	item := workspace.PlacedItem{
		Src:    req.Src,
		X:      req.X,
		Y:      req.Y,
		Type:   spec.Kind.String(),
		Symbol: req.Symbol,
		Value:  spec.Default,
		Label:  req.Label,
	}
	if item.Symbol == "" {
		item.Symbol = spec.Symbol
	}
	if req.Value != nil {
		item.Value = *req.Value
	}

	var added workspace.PlacedItem
	view, err := h.designs.Mutate(c.Param("id"), func(m *workspace.Manager) error {
		added = m.AddComponent(item)
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": added, "design": view})
}

func (h *Handlers) DropComponent(c *gin.Context) {
	var req DropRequest
	if !h.bind(c, &req) {
		return
	}
	spec, err := knownType(req.Type)
	if err != nil {
		h.fail(c, err)
		return
	}
	symbol := req.Symbol
	if symbol == "" {
		symbol = spec.Symbol
	}

	var added workspace.PlacedItem
	view, err := h.designs.Mutate(c.Param("id"), func(m *workspace.Manager) error {
		added = m.Drop(spec.Kind.String(), req.Client, req.Viewport, req.Src, symbol)
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": added, "design": view})
}

func (h *Handlers) MoveComponent(c *gin.Context) {
	var req MoveRequest
	if !h.bind(c, &req) {
		return
	}
	cid := c.Param("cid")
	view, err := h.designs.Mutate(c.Param("id"), func(m *workspace.Manager) error {
		if !m.MoveComponent(cid, *req.X, *req.Y) {
			return fmt.Errorf("%w: %s", ErrComponentNotFound, cid)
		}
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handlers) SetValue(c *gin.Context) {
	var req ValueRequest
	if !h.bind(c, &req) {
		return
	}
	cid := c.Param("cid")
	view, err := h.designs.Mutate(c.Param("id"), func(m *workspace.Manager) error {
		if !m.SetValue(cid, *req.Value) {
			return fmt.Errorf("%w: %s", ErrComponentNotFound, cid)
		}
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handlers) SetLabel(c *gin.Context) {
	var req LabelRequest
	if !h.bind(c, &req) {
		return
	}
	cid := c.Param("cid")
	view, err := h.designs.Mutate(c.Param("id"), func(m *workspace.Manager) error {
		if !m.SetLabel(cid, req.Label) {
			return fmt.Errorf("%w: %s", ErrComponentNotFound, cid)
		}
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handlers) RemoveComponent(c *gin.Context) {
	cid := c.Param("cid")
	_, err := h.designs.Mutate(c.Param("id"), func(m *workspace.Manager) error {
		if !m.RemoveComponent(cid) {
			return fmt.Errorf("%w: %s", ErrComponentNotFound, cid)
		}
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) Connect(c *gin.Context) {
	var req WireRequest
	if !h.bind(c, &req) {
		return
	}

	var added workspace.Wire
	view, err := h.designs.Mutate(c.Param("id"), func(m *workspace.Manager) error {
		w, err := m.Connect(workspace.Wire{From: req.From, To: req.To, Points: req.Points})
		added = w
		return err
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"wire": added, "design": view})
}

func (h *Handlers) Disconnect(c *gin.Context) {
	wid := c.Param("wid")
	_, err := h.designs.Mutate(c.Param("id"), func(m *workspace.Manager) error {
		if !m.Disconnect(wid) {
			return fmt.Errorf("%w: %s", ErrWireNotFound, wid)
		}
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) Undo(c *gin.Context) {
	h.history(c, (*workspace.Manager).Undo)
}

func (h *Handlers) Redo(c *gin.Context) {
	h.history(c, (*workspace.Manager).Redo)
}

func (h *Handlers) history(c *gin.Context, step func(*workspace.Manager) bool) {
	changed := false
	view, err := h.designs.Mutate(c.Param("id"), func(m *workspace.Manager) error {
		changed = step(m)
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, MutationResponse{View: view, Changed: changed})
}
