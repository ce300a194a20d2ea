// Diagnostic HTTP handlers.
//
// This file exposes operational endpoints used by pattern tuners and
// schedulers rather than by the inbox system itself:
//   - POST /detect   (classify + resolve without persisting)
//   - POST /sweep    (run one sweep + reconcile pass now)
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-commitment-engine/internal/services"
)

//
// DTOs
//

// DetectRequest is the JSON payload for a dry-run classification.
type DetectRequest struct {
	// Text to classify; not persisted.
	Text string `json:"text" binding:"required" example:"ertaga ertalab javob beraman"`
	// Reference is the instant deadlines are resolved against; defaults to now.
	Reference time.Time `json:"reference,omitempty"`
}

// DetectResponse pairs the verdict with the deadline it would produce.
type DetectResponse struct {
	Detection DetectionDTO `json:"detection"`
	// Deadline the commitment would get, resolved against reference.
	Deadline time.Time `json:"deadline"`
	// DeadlineExplicit is false when the deadline came from the fallback rule.
	DeadlineExplicit bool `json:"deadline_explicit"`
}

// SweepResponse reports what one triggered pass did.
type SweepResponse struct {
	Report services.SweepReport `json:"report"`
	RanAt  time.Time            `json:"ran_at"`
}

//
// Handlers
//

// DetectCommitment godoc
// @ID          detectCommitment
// @Summary     Dry-run the classifier
// @Description Classifies text and resolves the deadline it would get, without persisting anything. Intended for pattern tuning.
// @Tags        Diagnostics
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.DetectRequest  true  "Text to classify"
//
// @Success     200  {object}  handlers.DetectResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /detect [post]
func (h *Handlers) DetectCommitment(c *gin.Context) {
	var req DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text required")
		return
	}
	ref := req.Reference
	if ref.IsZero() {
		ref = time.Now().UTC()
	}

	d, res, err := h.svc.Detect(c.Request.Context(), req.Text, ref)
	if err != nil {
		switch err {
		case services.ErrEmptyText, services.ErrTooLong:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, DetectResponse{
		Detection:        detectionDTO(d),
		Deadline:         res.Deadline,
		DeadlineExplicit: res.Explicit,
	})
}

// RunSweep godoc
// @ID          runSweep
// @Summary     Trigger a sweep and reconcile pass
// @Description Marks expired commitments overdue, steps escalation levels, and backfills commitments for unclassified history. Safe to call concurrently with the scheduler.
// @Tags        Diagnostics
// @Produce     json
//
// @Success     200  {object}  handlers.SweepResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sweep [post]
func (h *Handlers) RunSweep(c *gin.Context) {
	now := time.Now().UTC()
	rep, err := h.sweeper.Run(c.Request.Context(), now)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeSweepFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, SweepResponse{Report: rep, RanAt: now})
}
