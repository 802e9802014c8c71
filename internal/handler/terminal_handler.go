package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nfc-card-admin/internal/i18n"
	"nfc-card-admin/internal/middleware"
	"nfc-card-admin/internal/service"
	"nfc-card-admin/pkg/utils"
)

// TerminalHandler manages institution terminal keys and receives card taps
// from the terminals themselves.
type TerminalHandler struct {
	responder
	terminalService *service.TerminalService
}

func NewTerminalHandler(terminalService *service.TerminalService, tr *i18n.Translator) *TerminalHandler {
	return &TerminalHandler{responder: responder{tr: tr}, terminalService: terminalService}
}

type GenerateKeyRequest struct {
	Description string `json:"description" binding:"max=255"`
	// ValidDays of zero issues a key that never expires.
	ValidDays int `json:"validDays" binding:"min=0,max=3650"`
}

// GenerateKey issues a key for institution :id (admin only)
func (h *TerminalHandler) GenerateKey(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req GenerateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindFailed(c, err)
		return
	}
	key, err := h.terminalService.GenerateKey(c.Request.Context(), id, req.Description,
		time.Duration(req.ValidDays)*24*time.Hour)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.CreatedResponse(c, gin.H{"message": h.message(c, "terminals.keyGenerated"), "key": key})
}

func (h *TerminalHandler) ListKeys(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	keys, err := h.terminalService.ListKeys(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.SuccessResponse(c, gin.H{"keys": keys, "count": len(keys)})
}

func (h *TerminalHandler) RevokeKey(c *gin.Context) {
	id, ok := h.parseID(c, "keyId")
	if !ok {
		return
	}
	if err := h.terminalService.RevokeKey(c.Request.Context(), id); err != nil {
		h.fail(c, err, "")
		return
	}
	utils.MessageResponse(c, h.message(c, "terminals.keyRevoked"))
}

func (h *TerminalHandler) DeleteKey(c *gin.Context) {
	id, ok := h.parseID(c, "keyId")
	if !ok {
		return
	}
	if err := h.terminalService.DeleteKey(c.Request.Context(), id); err != nil {
		h.fail(c, err, "")
		return
	}
	c.Status(http.StatusNoContent)
}

// RecordTap handles a card read sent by a terminal
// POST /terminal/institutions/:institution_id/taps
func (h *TerminalHandler) RecordTap(c *gin.Context) {
	institutionID := c.GetUint(middleware.TerminalKeyKey)
	var req service.TapInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindFailed(c, err)
		return
	}
	card, err := h.terminalService.RecordTap(c.Request.Context(), institutionID, req)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message":     h.message(c, "terminals.tapRecorded"),
		"cardNumber":  card.CardNumber,
		"citizenName": card.CitizenName,
		"status":      card.Status,
	})
}
