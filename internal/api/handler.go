package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hrsuite/travel-approval/internal/application/port"
	"github.com/hrsuite/travel-approval/internal/domain/workflow"
	"github.com/hrsuite/travel-approval/internal/report"
	engine "github.com/hrsuite/travel-approval/internal/workflow"
	"go.uber.org/zap"
)

// Handler is the workflow API facade the UI modules call in place of
// direct store access.
type Handler struct {
	engine   *engine.Engine
	requests port.RequestRepository
	audits   port.AuditRepository
	exporter *report.Exporter
	logger   *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(
	eng *engine.Engine,
	requests port.RequestRepository,
	audits port.AuditRepository,
	exporter *report.Exporter,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		engine:   eng,
		requests: requests,
		audits:   audits,
		exporter: exporter,
		logger:   logger,
	}
}

// RegisterRoutes mounts the facade under /api/v1
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	api.Use(ActorMiddleware())
	{
		api.POST("/travel-requests", h.CreateRequest)
		api.PUT("/travel-requests/:id", h.UpdateDraft)
		api.POST("/travel-requests/:id/submit", h.Submit)
		api.POST("/travel-requests/:id/decision", h.Decide)
		api.POST("/travel-requests/:id/book", h.Book)
		api.POST("/travel-requests/:id/acknowledge", h.Acknowledge)
		api.POST("/travel-requests/:id/withdraw", h.Withdraw)
		api.GET("/travel-requests/:id", h.GetRequest)
		api.GET("/travel-requests/:id/audit", h.GetAudit)
		api.GET("/travel-requests/personal", h.ListPersonal)
		api.GET("/travel-requests/draft", h.ListDrafts)
		api.GET("/travel-requests/team", h.ListTeam)
		api.GET("/reports/travel-requests.xlsx", h.ExportReport)
	}
}

// requestFields is the wire form of the mutable travel request fields
type requestFields struct {
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`
	Purpose     string    `json:"purpose"`
	Modes       []string  `json:"modes_of_travel"`
	Notes       string    `json:"notes"`
}

func (f *requestFields) toEngine() engine.RequestFields {
	return engine.RequestFields{
		Origin:      f.Origin,
		Destination: f.Destination,
		StartDate:   f.StartDate,
		EndDate:     f.EndDate,
		Purpose:     f.Purpose,
		Modes:       f.Modes,
		Notes:       f.Notes,
	}
}

// CreateRequest creates a new travel request in DRAFT for the caller
func (h *Handler) CreateRequest(c *gin.Context) {
	var body requestFields
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: CodeInvalidRequest, Message: err.Error()})
		return
	}

	req, err := h.engine.Create(c.Request.Context(), actorFrom(c), body.toEngine())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, req)
}

// UpdateDraft applies owner field edits to a request sitting in DRAFT
func (h *Handler) UpdateDraft(c *gin.Context) {
	var body requestFields
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: CodeInvalidRequest, Message: err.Error()})
		return
	}

	fields := body.toEngine()
	h.apply(c, workflow.ActionUpdate, engine.ActionPayload{Fields: &fields})
}

// Submit moves a DRAFT request into manager approval. Owner-only.
func (h *Handler) Submit(c *gin.Context) {
	h.apply(c, workflow.ActionSubmit, engine.ActionPayload{})
}

type decisionBody struct {
	Action  string `json:"action" binding:"required"`
	Comment string `json:"comment"`
}

// Decide applies an approver decision: APPROVE, REJECT or REQUEST_CHANGES.
// The actor role comes from the established identity, never the body.
func (h *Handler) Decide(c *gin.Context) {
	var body decisionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: CodeInvalidRequest, Message: err.Error()})
		return
	}

	action, ok := parseDecision(body.Action)
	if !ok {
		c.JSON(http.StatusBadRequest, errorResponse{
			Code:    CodeInvalidRequest,
			Message: fmt.Sprintf("unknown decision action %q", body.Action),
		})
		return
	}

	h.apply(c, action, engine.ActionPayload{Comment: body.Comment})
}

// parseDecision maps the wire decision onto the closed action set. The
// status label CHANGES_REQUESTED is accepted as an alias the UIs already
// use for the REQUEST_CHANGES action.
func parseDecision(s string) (workflow.Action, bool) {
	if s == "CHANGES_REQUESTED" {
		return workflow.ActionRequestChanges, true
	}
	action, ok := workflow.ParseAction(s)
	if !ok {
		return "", false
	}
	switch action {
	case workflow.ActionApprove, workflow.ActionReject, workflow.ActionRequestChanges:
		return action, true
	}
	return "", false
}

type commentBody struct {
	Comment string `json:"comment"`
}

// Book records the travel-desk booking
func (h *Handler) Book(c *gin.Context) {
	var body commentBody
	_ = c.ShouldBindJSON(&body)
	h.apply(c, workflow.ActionBook, engine.ActionPayload{Comment: body.Comment})
}

// Acknowledge records the HR acknowledgement, completing the request
func (h *Handler) Acknowledge(c *gin.Context) {
	var body commentBody
	_ = c.ShouldBindJSON(&body)
	h.apply(c, workflow.ActionAcknowledge, engine.ActionPayload{Comment: body.Comment})
}

// Withdraw lets the owner retire a request from any non-terminal stage
func (h *Handler) Withdraw(c *gin.Context) {
	var body commentBody
	_ = c.ShouldBindJSON(&body)
	h.apply(c, workflow.ActionWithdraw, engine.ActionPayload{Comment: body.Comment})
}

func (h *Handler) apply(c *gin.Context, action workflow.Action, payload engine.ActionPayload) {
	req, err := h.engine.ApplyAction(c.Request.Context(), c.Param("id"), actorFrom(c), action, payload)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// GetRequest returns the current state of a travel request
func (h *Handler) GetRequest(c *gin.Context) {
	req, err := h.requests.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// GetAudit returns the ordered audit trail of a travel request
func (h *Handler) GetAudit(c *gin.Context) {
	// 404 for unknown IDs rather than an empty trail
	if _, err := h.requests.GetByID(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	entries, err := h.audits.ListByRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// ListPersonal returns every request the caller owns
func (h *Handler) ListPersonal(c *gin.Context) {
	requests, err := h.requests.ListByOwner(c.Request.Context(), actorFrom(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// ListDrafts returns the caller's requests still sitting in DRAFT
func (h *Handler) ListDrafts(c *gin.Context) {
	requests, err := h.requests.ListByOwnerAndStage(c.Request.Context(), actorFrom(c).ID, workflow.StageDraft)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// workQueueStages maps an approver role to the stage whose requests form
// its work queue.
var workQueueStages = map[workflow.Role]workflow.Stage{
	workflow.RoleManager:    workflow.StageManagerApproval,
	workflow.RoleFinance:    workflow.StageFinanceApproval,
	workflow.RoleTravelDesk: workflow.StageTravelDesk,
	workflow.RoleHR:         workflow.StageHRNotification,
	workflow.RoleDirector:   workflow.StageEscalated,
}

// ListTeam returns the work queue for the caller's approver role: every
// request currently awaiting that role's action.
func (h *Handler) ListTeam(c *gin.Context) {
	stage, ok := workQueueStages[actorFrom(c).Role]
	if !ok {
		c.JSON(http.StatusForbidden, errorResponse{
			Code:    CodeForbidden,
			Message: "no work queue for this role",
		})
		return
	}

	requests, err := h.requests.ListByStage(c.Request.Context(), stage)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// ExportReport streams the full request/audit workbook. HR and finance
// only.
func (h *Handler) ExportReport(c *gin.Context) {
	role := actorFrom(c).Role
	if role != workflow.RoleHR && role != workflow.RoleFinance {
		c.JSON(http.StatusForbidden, errorResponse{
			Code:    CodeForbidden,
			Message: "report export is limited to hr and finance",
		})
		return
	}

	workbook, err := h.exporter.Export(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	defer workbook.Close()

	c.Header("Content-Disposition", `attachment; filename="travel-requests.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := workbook.Write(c.Writer); err != nil {
		h.logger.Error("Failed to stream report", zap.Error(err))
	}
}
