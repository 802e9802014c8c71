package handler

import (
	"github.com/gin-gonic/gin"

	"nfc-card-admin/internal/form"
	"nfc-card-admin/internal/i18n"
	"nfc-card-admin/internal/lifecycle"
	"nfc-card-admin/internal/service"
	"nfc-card-admin/pkg/utils"
)

var cardActionMessages = map[lifecycle.Action]string{
	lifecycle.Print:   "cardManagement.cardPrinted",
	lifecycle.Renew:   "cardManagement.cardRenewed",
	lifecycle.Suspend: "cardManagement.cardSuspended",
}

type CardHandler struct {
	responder
	cardService *service.CardService
}

func NewCardHandler(cardService *service.CardService, tr *i18n.Translator) *CardHandler {
	return &CardHandler{responder: responder{tr: tr}, cardService: cardService}
}

// List returns one page of cards with owner fields resolved
func (h *CardHandler) List(c *gin.Context) {
	page, err := h.cardService.List(c.Request.Context(), listQuery(c))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.SuccessResponse(c, page)
}

// Get returns a card with its history and available actions
func (h *CardHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	card, err := h.cardService.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.SuccessResponse(c, card)
}

// Issue creates a card for the citizen named in the payload
func (h *CardHandler) Issue(c *gin.Context) {
	var data form.Data
	if err := c.ShouldBindJSON(&data); err != nil {
		h.bindFailed(c, err)
		return
	}
	card, err := h.cardService.Issue(c.Request.Context(), data)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.CreatedResponse(c, gin.H{
		"message": h.message(c, "cardManagement.cardIssueSuccess"),
		"card":    card,
	})
}

// Action applies print, renew or suspend to a card
func (h *CardHandler) Action(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	action := lifecycle.Action(c.Param("action"))
	card, err := h.cardService.Transition(c.Request.Context(), id, action)
	if err != nil {
		h.fail(c, err, "cardManagement.invalidTransition")
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": h.message(c, cardActionMessages[action]),
		"card":    card,
	})
}

// Usage records the card being used at an institution
func (h *CardHandler) Usage(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var in service.UsageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.bindFailed(c, err)
		return
	}
	card, err := h.cardService.RecordUsage(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.SuccessResponse(c, gin.H{"message": h.message(c, "cardManagement.usageRecorded"), "card": card})
}
