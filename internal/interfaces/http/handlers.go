package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bamin2/dgc-hr-sub004/internal/application/service"
	"github.com/bamin2/dgc-hr-sub004/internal/domain/approval"
	"github.com/bamin2/dgc-hr-sub004/internal/domain/entity"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	chainService      service.ChainService
	transitionService service.TransitionService
	tokenGateway      service.ActionTokenGateway
	queryService      service.QueryService
	logger            Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	chainService service.ChainService,
	transitionService service.TransitionService,
	tokenGateway service.ActionTokenGateway,
	queryService service.QueryService,
	logger Logger,
) *Handlers {
	return &Handlers{
		chainService:      chainService,
		transitionService: transitionService,
		tokenGateway:      tokenGateway,
		queryService:      queryService,
		logger:            logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// InitiateApprovalRequest is the body of POST /api/approvals
type InitiateApprovalRequest struct {
	RequestID   int64  `json:"request_id" binding:"required"`
	RequestType string `json:"request_type" binding:"required"`
	EmployeeID  int64  `json:"employee_id" binding:"required"`
}

// InitiateApproval handles POST /api/approvals
func (h *Handlers) InitiateApproval(c *gin.Context) {
	var req InitiateApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	requestType := entity.RequestType(req.RequestType)
	if !requestType.IsValid() {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "unknown request type"})
		return
	}

	steps, err := h.chainService.InitiateApproval(c.Request.Context(), req.RequestID, requestType, req.EmployeeID)
	if err != nil {
		var routing *approval.RoutingError
		if errors.As(err, &routing) {
			// Surfaced to the operator; submission policy decides whether
			// to block or re-route, not the engine.
			c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Error: routing.Error()})
			return
		}
		h.logger.Error("Failed to initiate approval", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: steps})
}

// DecideStepRequest is the body of POST /api/steps/:id/decision
type DecideStepRequest struct {
	Decision string `json:"decision" binding:"required"`
	Comment  string `json:"comment"`
}

// DecideStep handles POST /api/steps/:id/decision
func (h *Handlers) DecideStep(c *gin.Context) {
	actorID, ok := h.actor(c)
	if !ok {
		return
	}

	stepID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid step id"})
		return
	}

	var req DecideStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	decision := entity.Decision(req.Decision)
	if !decision.IsValid() {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "decision must be approve or reject"})
		return
	}

	res, err := h.transitionService.Decide(c.Request.Context(), stepID, actorID, decision, req.Comment)
	if err != nil {
		var sideEffect *approval.SideEffectError
		switch {
		case errors.Is(err, approval.ErrStepNotFound):
			c.JSON(http.StatusNotFound, Response{Success: false, Error: "step not found"})
		case errors.Is(err, approval.ErrAlreadyProcessed):
			c.JSON(http.StatusConflict, Response{Success: false, Error: "step already processed"})
		case errors.As(err, &sideEffect):
			// The decision was recorded; tell the caller which half failed.
			h.logger.Error("Side effect failed", "error", err, "step_id", stepID)
			c.JSON(http.StatusOK, Response{
				Success: true,
				Data:    res,
				Error:   "decision recorded, but a follow-up action failed and needs attention",
			})
		default:
			h.logger.Error("Failed to decide step", "error", err, "step_id", stepID)
			c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: res})
}

// ListPending handles GET /api/approvals/pending
func (h *Handlers) ListPending(c *gin.Context) {
	userID, ok := h.actor(c)
	if !ok {
		return
	}

	pending, err := h.queryService.ListPendingFor(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list pending approvals", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: pending})
}

// ListMine handles GET /api/approvals/mine
func (h *Handlers) ListMine(c *gin.Context) {
	userID, ok := h.actor(c)
	if !ok {
		return
	}

	mine, err := h.queryService.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list own requests", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: mine})
}

// actor reads the authenticated user from the X-User-ID header placed by
// the upstream auth proxy
func (h *Handlers) actor(c *gin.Context) (int64, bool) {
	raw := c.GetHeader("X-User-ID")
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusUnauthorized, Response{Success: false, Error: "missing or invalid user identity"})
		return 0, false
	}
	return userID, true
}
