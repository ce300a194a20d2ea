// Message ingest HTTP handler.
//
// This file exposes the single entry point the inbox system feeds with chat
// events:
//   - POST /messages   (record the event, classify inline, create commitment)
//
// Handlers are transport-thin:
//   - validate & normalize inputs (including newline and length constraints)
//   - delegate to the application service (CommitmentService.Ingest)
//   - surface the idempotent-replay outcome in the response body
//
// Idempotency:
// The message id is the natural idempotency key. Replaying the same event
// returns the commitment created the first time with `created: false`; the
// replay-detector middleware additionally sets `Idempotency-Replayed: true`.
package handlers

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-commitment-engine/internal/detect"
	"github.com/tbourn/go-commitment-engine/internal/domain"
	"github.com/tbourn/go-commitment-engine/internal/services"
)

//
// DTOs
//

// IngestMessageRequest is the JSON payload for one inbound chat event.
type IngestMessageRequest struct {
	// ID is the caller-supplied message id, the natural idempotency key.
	ID        string `json:"id" binding:"required" example:"msg-20260901-1845"`
	ChannelID string `json:"channel_id" binding:"required" example:"tg-support-main"`
	CaseID    string `json:"case_id,omitempty" example:"case-7712"`
	SenderID  string `json:"sender_id" binding:"required" example:"agent-42"`
	// SenderName is optional display metadata.
	SenderName string `json:"sender_name,omitempty" example:"Dilnoza K."`
	// SenderRole gates detection: only support-side roles are classified.
	SenderRole string `json:"sender_role" binding:"required" example:"agent"`
	Text       string `json:"text" binding:"required" example:"сейчас проверю и отвечу через 10 минут"`
	// Timestamp defaults to the server clock when omitted.
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// DetectionDTO is the JSON shape of a classifier verdict.
type DetectionDTO struct {
	HasCommitment bool   `json:"has_commitment"`
	Type          string `json:"type,omitempty"`
	IsVague       bool   `json:"is_vague"`
	MatchedText   string `json:"matched_text,omitempty"`
	TimeframeHint string `json:"timeframe_hint,omitempty"`
	Variant       string `json:"variant,omitempty"`
}

// IngestMessageResponse reports what the pipeline did with the event.
type IngestMessageResponse struct {
	MessageID  string             `json:"message_id"`
	Detection  DetectionDTO       `json:"detection"`
	Commitment *domain.Commitment `json:"commitment,omitempty"`
	Created    bool               `json:"created"`
}

// detectionDTO converts the internal verdict to its wire shape.
func detectionDTO(d detect.Detection) DetectionDTO {
	out := DetectionDTO{
		HasCommitment: d.HasCommitment,
		IsVague:       d.IsVague,
		MatchedText:   d.MatchedText,
		TimeframeHint: d.TimeframeHint,
	}
	if d.HasCommitment {
		out.Type = string(d.Type)
		out.Variant = d.Variant.String()
	}
	return out
}

//
// Helpers
//

// nlCollapseRE collapses runs of 3+ newlines to two, preserving paragraphs.
var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// sanitizeText normalizes message text for consistent downstream behavior:
//   - converts CRLF/CR to LF,
//   - collapses runs of 3+ LFs to exactly two (paragraph separation),
//   - trims surrounding whitespace.
func sanitizeText(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = nlCollapseRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// discoverMaxTextRunes inspects the concrete CommitmentService for a
// configured text-length limit. If unavailable, it returns a conservative
// fallback.
func discoverMaxTextRunes(svc CommitmentService) int {
	const fallback = 4000
	if cs, ok := svc.(*services.CommitmentService); ok {
		if cs.MaxTextRunes > 0 {
			return cs.MaxTextRunes
		}
	}
	return fallback
}

//
// Handlers
//

// IngestMessage godoc
// @ID          ingestMessage
// @Summary     Ingest a chat message event
// @Description Records the event and runs the detection pipeline inline. Replaying the same message id returns the original outcome with created=false.
// @Tags        Messages
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.IngestMessageRequest  true  "Message event payload"
//
// @Success     200  {object}  handlers.IngestMessageResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /messages [post]
func (h *Handlers) IngestMessage(c *gin.Context) {
	var req IngestMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	// Sanitize + early size cap to fail fast at the edge.
	text := sanitizeText(req.Text)
	maxRunes := discoverMaxTextRunes(h.svc)
	if maxRunes > 0 && utf8.RuneCountInString(text) > maxRunes {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("text too long: max %d runes", maxRunes))
		return
	}
	if text == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text required")
		return
	}

	res, err := h.svc.Ingest(c.Request.Context(), services.MessageEvent{
		ID:         strings.TrimSpace(req.ID),
		ChannelID:  strings.TrimSpace(req.ChannelID),
		CaseID:     strings.TrimSpace(req.CaseID),
		SenderID:   strings.TrimSpace(req.SenderID),
		SenderName: strings.TrimSpace(req.SenderName),
		SenderRole: strings.TrimSpace(req.SenderRole),
		Text:       text,
		Timestamp:  req.Timestamp,
	})
	if err != nil {
		switch err {
		case services.ErrEmptyText:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text required")
		case services.ErrTooLong:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("text too long: max %d runes", maxRunes))
		default:
			fail(c, http.StatusInternalServerError, ErrCodeIngestFailed, err.Error())
		}
		return
	}

	resp := IngestMessageResponse{
		Detection:  detectionDTO(res.Detection),
		Commitment: res.Commitment,
		Created:    res.Created,
	}
	if res.Message != nil {
		resp.MessageID = res.Message.ID
	}
	ok(c, http.StatusOK, resp)
}
