// Commitment HTTP handlers.
//
// This file exposes REST endpoints for commitment resources:
//   - POST   /commitments                  (manual create by a supervisor)
//   - GET    /commitments                  (list, filtered + paginated, ETag support)
//   - GET    /commitments/{id}            (fetch one)
//   - DELETE /commitments/{id}            (administrative soft delete)
//   - POST   /commitments/{id}/complete   (operator actions)
//   - POST   /commitments/{id}/extend
//   - POST   /commitments/{id}/dismiss
//   - POST   /commitments/{id}/reassign
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-commitment-engine/internal/deadline"
	"github.com/tbourn/go-commitment-engine/internal/detect"
	"github.com/tbourn/go-commitment-engine/internal/domain"
	"github.com/tbourn/go-commitment-engine/internal/repo"
	"github.com/tbourn/go-commitment-engine/internal/services"
	"github.com/tbourn/go-commitment-engine/internal/utils"
)

//
// Service contracts (context-aware)
//

// CommitmentService defines commitment lifecycle operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type CommitmentService interface {
	// Detect classifies text without persisting anything.
	Detect(ctx context.Context, text string, ref time.Time) (detect.Detection, deadline.Result, error)
	// Ingest records a message event and runs the detection pipeline inline.
	Ingest(ctx context.Context, ev services.MessageEvent) (services.IngestResult, error)
	// CreateFromMessage persists a commitment for an already-classified message.
	CreateFromMessage(ctx context.Context, msg *domain.InboundMessage, d detect.Detection, origin string) (*domain.Commitment, bool, error)
	// Get fetches one commitment by id.
	Get(ctx context.Context, id string) (*domain.Commitment, error)
	// List returns a page of commitments matching the filter, plus the total.
	List(ctx context.Context, f repo.CommitmentFilter, page, pageSize int) ([]domain.Commitment, int64, error)
	// Complete, Dismiss, Cancel, Extend and Reassign are guarded transitions.
	Complete(ctx context.Context, id string) (*domain.Commitment, error)
	Dismiss(ctx context.Context, id string) (*domain.Commitment, error)
	Cancel(ctx context.Context, id string) (*domain.Commitment, error)
	Extend(ctx context.Context, id string, minutes int) (*domain.Commitment, error)
	Reassign(ctx context.Context, id, assigneeID, assigneeName string) (*domain.Commitment, error)
	// Delete is the administrative removal.
	Delete(ctx context.Context, id string) error
}

// SweepService defines the manually triggerable maintenance pass.
type SweepService interface {
	// Run executes one sweep and reconcile pass at the given instant.
	Run(ctx context.Context, now time.Time) (services.SweepReport, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for messages, commitments, and sweeps.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	svc     CommitmentService
	sweeper SweepService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(svc CommitmentService, sweeper SweepService) *Handlers {
	return &Handlers{svc: svc, sweeper: sweeper}
}

//
// DTOs
//

// CreateCommitmentRequest is the JSON payload for manually recording a
// commitment the classifier missed. The message fields mirror the ingest
// event; matched_text and timeframe override the classifier's verdict.
type CreateCommitmentRequest struct {
	// SourceMessageID is the chat message the promise appeared in.
	SourceMessageID string `json:"source_message_id" binding:"required" example:"msg-20260901-1845"`
	ChannelID       string `json:"channel_id" binding:"required" example:"tg-support-main"`
	CaseID          string `json:"case_id,omitempty" example:"case-7712"`
	AgentID         string `json:"agent_id" binding:"required" example:"agent-42"`
	AgentName       string `json:"agent_name,omitempty" example:"Dilnoza K."`
	Text            string `json:"text" binding:"required" example:"проверю и отвечу через 20 минут"`
	// SentAt defaults to now when omitted.
	SentAt time.Time `json:"sent_at,omitempty"`
	// Type is one of time, action, vague; defaults to action.
	Type string `json:"type,omitempty" example:"time"`
	// MatchedText optionally pins the fragment to store; defaults to Text.
	MatchedText string `json:"matched_text,omitempty" example:"через 20 минут"`
	// Timeframe optionally feeds the deadline resolver (e.g. "через 20 минут").
	Timeframe string `json:"timeframe,omitempty" example:"через 20 минут"`
}

// ExtendCommitmentRequest is the JSON payload for pushing a deadline out.
type ExtendCommitmentRequest struct {
	// Minutes to add to the deadline; must be positive.
	Minutes int `json:"minutes" binding:"required,min=1" example:"30"`
}

// ReassignCommitmentRequest is the JSON payload for changing the assignee.
type ReassignCommitmentRequest struct {
	AssigneeID   string `json:"assignee_id" binding:"required" example:"agent-17"`
	AssigneeName string `json:"assignee_name,omitempty" example:"Botir S."`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListCommitmentsResponse wraps a page of commitments and pagination
// information.
type ListCommitmentsResponse struct {
	Commitments []domain.Commitment `json:"commitments"`
	Pagination  Pagination          `json:"pagination"`
}

// CreateCommitmentResponse reports the persisted commitment and whether this
// request created it (false on idempotent replay).
type CreateCommitmentResponse struct {
	Commitment *domain.Commitment `json:"commitment"`
	Created    bool               `json:"created"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// failTransition maps transition-layer errors onto HTTP responses shared by
// all the operator action endpoints.
func failTransition(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCommitmentNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "commitment not found")
	case errors.Is(err, services.ErrInvalidExtend):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "minutes must be positive")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
	}
}

//
// Handlers
//

// CreateCommitment godoc
// @ID          createCommitment
// @Summary     Record a commitment manually
// @Description Persists a commitment for a message the classifier missed. Idempotent on source_message_id.
// @Tags        Commitments
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CreateCommitmentRequest  true  "Manual commitment payload"
//
// @Success     201  {object}  handlers.CreateCommitmentResponse
// @Success     200  {object}  handlers.CreateCommitmentResponse  "Already existed (replay)"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /commitments [post]
func (h *Handlers) CreateCommitment(c *gin.Context) {
	var req CreateCommitmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	typ := detect.Type(strings.ToLower(strings.TrimSpace(req.Type)))
	switch typ {
	case "":
		typ = detect.TypeAction
	case detect.TypeTime, detect.TypeAction, detect.TypeVague:
	default:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "type must be one of time, action, vague")
		return
	}

	sentAt := req.SentAt
	if sentAt.IsZero() {
		sentAt = time.Now().UTC()
	}
	matched := strings.TrimSpace(req.MatchedText)
	if matched == "" {
		matched = strings.TrimSpace(req.Text)
	}

	msg := &domain.InboundMessage{
		ID:         req.SourceMessageID,
		ChannelID:  req.ChannelID,
		CaseID:     req.CaseID,
		SenderID:   req.AgentID,
		SenderName: req.AgentName,
		SenderRole: "agent",
		Text:       req.Text,
		SentAt:     sentAt,
	}
	d := detect.Detection{
		HasCommitment: true,
		Type:          typ,
		IsVague:       typ == detect.TypeVague,
		MatchedText:   strings.ToLower(matched),
		TimeframeHint: strings.ToLower(strings.TrimSpace(req.Timeframe)),
	}

	cm, created, err := h.svc.CreateFromMessage(c.Request.Context(), msg, d, "manual")
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	ok(c, status, CreateCommitmentResponse{Commitment: cm, Created: created})
}

// ListCommitments godoc
// @ID          listCommitments
// @Summary     List commitments (filtered, paginated)
// @Description Returns a page of commitments, vague ones first, then by ascending deadline. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Commitments
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       status         query   string  false "Status filter (active, overdue, escalated, completed, dismissed, cancelled, all); default is active+overdue"
// @Param       channel_id     query   string  false "Channel filter"
// @Param       assignee_id    query   string  false "Assignee filter"
// @Param       due_within     query   string  false "Keep only deadlines inside the next duration (e.g. 24h)"
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListCommitmentsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /commitments [get]
func (h *Handlers) ListCommitments(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	f := repo.CommitmentFilter{
		Status:     strings.TrimSpace(c.Query("status")),
		ChannelID:  strings.TrimSpace(c.Query("channel_id")),
		AssigneeID: strings.TrimSpace(c.Query("assignee_id")),
	}
	if dw := strings.TrimSpace(c.Query("due_within")); dw != "" {
		d, err := time.ParseDuration(dw)
		if err != nil || d <= 0 {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "due_within must be a positive duration")
			return
		}
		f.DueWithin = d
	}

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, okSvc := h.svc.(*services.CommitmentService); okSvc {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.CommitmentsStats(ctx, db, f.ChannelID)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"commitments:%s:%d:%d"`, f.ChannelID, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.svc.List(ctx, f, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListCommitmentsResponse{
		Commitments: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetCommitment godoc
// @ID          getCommitment
// @Summary     Fetch a commitment
// @Tags        Commitments
// @Produce     json
//
// @Param       id  path  string  true  "Commitment ID"
//
// @Success     200  {object} domain.Commitment
// @Failure     404  {object} handlers.ErrorResponse "Commitment not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /commitments/{id} [get]
func (h *Handlers) GetCommitment(c *gin.Context) {
	cm, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failTransition(c, err)
		return
	}
	ok(c, http.StatusOK, cm)
}

// DeleteCommitment godoc
// @ID          deleteCommitment
// @Summary     Delete a commitment (admin)
// @Description Removes the record from all listings. The idempotency key stays reserved, so re-ingesting the same message does not resurrect it.
// @Tags        Commitments
// @Produce     json
//
// @Param       id  path  string  true  "Commitment ID"
//
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Commitment not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /commitments/{id} [delete]
func (h *Handlers) DeleteCommitment(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		failTransition(c, err)
		return
	}
	noContent(c)
}

// CompleteCommitment godoc
// @ID          completeCommitment
// @Summary     Mark a commitment completed
// @Description Terminal transition. Completing an already-terminal commitment is a no-op returning the current state.
// @Tags        Commitments
// @Produce     json
//
// @Param       id  path  string  true  "Commitment ID"
//
// @Success     200  {object} domain.Commitment
// @Failure     404  {object} handlers.ErrorResponse "Commitment not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /commitments/{id}/complete [post]
func (h *Handlers) CompleteCommitment(c *gin.Context) {
	cm, err := h.svc.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		failTransition(c, err)
		return
	}
	ok(c, http.StatusOK, cm)
}

// ExtendCommitment godoc
// @ID          extendCommitment
// @Summary     Extend a commitment deadline
// @Description Moves the deadline and reminder forward and steps the escalation level down by one. No-op on terminal commitments.
// @Tags        Commitments
// @Accept      json
// @Produce     json
//
// @Param       id    path  string  true  "Commitment ID"
// @Param       body  body  handlers.ExtendCommitmentRequest  true  "Extension payload"
//
// @Success     200  {object} domain.Commitment
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Commitment not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /commitments/{id}/extend [post]
func (h *Handlers) ExtendCommitment(c *gin.Context) {
	var req ExtendCommitmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "minutes required (positive integer)")
		return
	}

	cm, err := h.svc.Extend(c.Request.Context(), c.Param("id"), req.Minutes)
	if err != nil {
		failTransition(c, err)
		return
	}
	ok(c, http.StatusOK, cm)
}

// DismissCommitment godoc
// @ID          dismissCommitment
// @Summary     Dismiss a commitment
// @Description Terminal transition for false positives. Idempotent like complete.
// @Tags        Commitments
// @Produce     json
//
// @Param       id  path  string  true  "Commitment ID"
//
// @Success     200  {object} domain.Commitment
// @Failure     404  {object} handlers.ErrorResponse "Commitment not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /commitments/{id}/dismiss [post]
func (h *Handlers) DismissCommitment(c *gin.Context) {
	cm, err := h.svc.Dismiss(c.Request.Context(), c.Param("id"))
	if err != nil {
		failTransition(c, err)
		return
	}
	ok(c, http.StatusOK, cm)
}

// CancelCommitment godoc
// @ID          cancelCommitment
// @Summary     Cancel a commitment
// @Description Terminal transition for commitments that became moot (e.g. the case was closed). Idempotent like complete.
// @Tags        Commitments
// @Produce     json
//
// @Param       id  path  string  true  "Commitment ID"
//
// @Success     200  {object} domain.Commitment
// @Failure     404  {object} handlers.ErrorResponse "Commitment not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /commitments/{id}/cancel [post]
func (h *Handlers) CancelCommitment(c *gin.Context) {
	cm, err := h.svc.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		failTransition(c, err)
		return
	}
	ok(c, http.StatusOK, cm)
}

// ReassignCommitment godoc
// @ID          reassignCommitment
// @Summary     Reassign a commitment
// @Description Changes the assignee without touching status or escalation level.
// @Tags        Commitments
// @Accept      json
// @Produce     json
//
// @Param       id    path  string  true  "Commitment ID"
// @Param       body  body  handlers.ReassignCommitmentRequest  true  "New assignee"
//
// @Success     200  {object} domain.Commitment
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Commitment not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /commitments/{id}/reassign [post]
func (h *Handlers) ReassignCommitment(c *gin.Context) {
	var req ReassignCommitmentRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.AssigneeID) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "assignee_id required")
		return
	}

	cm, err := h.svc.Reassign(c.Request.Context(), c.Param("id"), req.AssigneeID, req.AssigneeName)
	if err != nil {
		failTransition(c, err)
		return
	}
	ok(c, http.StatusOK, cm)
}
