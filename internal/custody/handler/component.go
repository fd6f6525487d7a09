package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vaishal-coder/Rakshanethra-Quantum-BlockChain-SupplyChain/internal/custody/model"
	"github.com/vaishal-coder/Rakshanethra-Quantum-BlockChain-SupplyChain/internal/custody/service"
	"github.com/vaishal-coder/Rakshanethra-Quantum-BlockChain-SupplyChain/internal/identity"
	"go.uber.org/zap"
)

// ComponentHandler handles HTTP requests for the custody registry.
type ComponentHandler struct {
	svc    *service.CustodyService
	tokens *identity.OperatorIssuer // nil = mutating routes are open
	logger *zap.Logger
}

// NewComponentHandler creates a new ComponentHandler.
// tokens may be nil to disable operator auth on mutating routes.
func NewComponentHandler(svc *service.CustodyService, tokens *identity.OperatorIssuer, logger *zap.Logger) *ComponentHandler {
	return &ComponentHandler{svc: svc, tokens: tokens, logger: logger}
}

// Register mounts the component, report and simulation routes.
func (h *ComponentHandler) Register(rg *gin.RouterGroup) {
	write := identity.RequireOperator(h.tokens, identity.ScopeCustodyWrite)

	components := rg.Group("/components")
	{
		components.POST("", write, h.CreateComponent)
		components.GET("", h.ListComponents)
		components.GET("/:id", h.GetComponent)
		components.POST("/:id/events", write, h.AppendEvent)
		components.GET("/:id/verify", h.VerifyComponent)
	}

	rg.GET("/report", h.Report)
	rg.POST("/simulate/deployment", write, h.SimulateDeployment)
}

// writeError maps domain errors to HTTP status codes.
func (h *ComponentHandler) writeError(c *gin.Context, op string, err error) {
	var valErr *model.ErrValidation
	switch {
	case errors.As(err, &valErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": valErr.Msg})
	case errors.Is(err, model.ErrMalformedEvent):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "component not found"})
	case errors.Is(err, model.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrInvalidReference):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.logger.Error(op, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": op + " failed"})
	}
}

// CreateComponent handles POST /components.
func (h *ComponentHandler) CreateComponent(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comp, err := h.svc.Register(c.Request.Context(), &req, identity.OperatorFromCtx(c))
	if err != nil {
		h.writeError(c, "registration", err)
		return
	}

	SetComponentsGauge(h.svc.Count())
	c.JSON(http.StatusCreated, gin.H{"component": comp})
}

// ListComponents handles GET /components. Optional ?manufacturer= and
// ?min_clearance= narrow the result.
func (h *ComponentHandler) ListComponents(c *gin.Context) {
	comps, err := h.svc.List(c.Request.Context(), service.ListFilter{
		Manufacturer: c.Query("manufacturer"),
		MinClearance: c.Query("min_clearance"),
	})
	if err != nil {
		h.writeError(c, "list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"components": comps, "count": len(comps)})
}

// GetComponent handles GET /components/:id and returns the record with its
// full custody chain.
func (h *ComponentHandler) GetComponent(c *gin.Context) {
	comp, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "lookup", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"component": comp})
}

// AppendEvent handles POST /components/:id/events.
func (h *ComponentHandler) AppendEvent(c *gin.Context) {
	var req model.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ev, n, err := h.svc.AppendEvent(c.Request.Context(), c.Param("id"), &req, identity.OperatorFromCtx(c))
	if err != nil {
		h.writeError(c, "append event", err)
		return
	}

	RecordCustodyEvent(string(ev.Stage))
	c.JSON(http.StatusOK, gin.H{"event": ev, "custody_events": n})
}

// VerifyComponent handles GET /components/:id/verify. The body is always a
// verification result; an unknown id is additionally signalled with 404.
func (h *ComponentHandler) VerifyComponent(c *gin.Context) {
	res := h.svc.Verify(c.Request.Context(), c.Param("id"))
	RecordVerification(string(res.Status))

	status := http.StatusOK
	if res.Status == model.StatusNotFound {
		status = http.StatusNotFound
	}
	c.JSON(status, res)
}

// Report handles GET /report.
func (h *ComponentHandler) Report(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Report(c.Request.Context()))
}

// SimulateDeployment handles POST /simulate/deployment.
func (h *ComponentHandler) SimulateDeployment(c *gin.Context) {
	res, err := h.svc.SimulateDeployment(c.Request.Context(), identity.OperatorFromCtx(c))
	if err != nil {
		h.writeError(c, "simulation", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
