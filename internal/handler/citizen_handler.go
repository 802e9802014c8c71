package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nfc-card-admin/internal/form"
	"nfc-card-admin/internal/i18n"
	"nfc-card-admin/internal/models"
	"nfc-card-admin/internal/picker"
	"nfc-card-admin/internal/service"
	"nfc-card-admin/pkg/utils"
)

type CitizenHandler struct {
	responder
	citizenService *service.CitizenService
}

func NewCitizenHandler(citizenService *service.CitizenService, tr *i18n.Translator) *CitizenHandler {
	return &CitizenHandler{responder: responder{tr: tr}, citizenService: citizenService}
}

// List returns one page of the citizen registry
func (h *CitizenHandler) List(c *gin.Context) {
	page, err := h.citizenService.List(c.Request.Context(), listQuery(c))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.SuccessResponse(c, page)
}

// Get returns a single citizen
func (h *CitizenHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	citizen, err := h.citizenService.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.SuccessResponse(c, citizen)
}

// Search looks citizens up by name or national ID. An empty term is
// reported as no_query rather than as an empty result.
func (h *CitizenHandler) Search(c *gin.Context) {
	term := strings.TrimSpace(c.Query("q"))
	result := picker.Result[models.Citizen]{State: picker.StateNoQuery, Term: term, Matches: []models.Citizen{}}
	if term != "" {
		matches, err := h.citizenService.Search(c.Request.Context(), term)
		if err != nil {
			h.fail(c, err, "")
			return
		}
		result.State = picker.StateNoMatch
		if len(matches) > 0 {
			result.State = picker.StateResults
			result.Matches = matches
		}
	}
	utils.SuccessResponse(c, result)
}

// Create registers a citizen from a complete form payload
func (h *CitizenHandler) Create(c *gin.Context) {
	var data form.Data
	if err := c.ShouldBindJSON(&data); err != nil {
		h.bindFailed(c, err)
		return
	}
	citizen, err := h.citizenService.Create(c.Request.Context(), data)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.CreatedResponse(c, gin.H{"message": h.message(c, "citizens.created"), "citizen": citizen})
}

// Update replaces a citizen's fields
func (h *CitizenHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var data form.Data
	if err := c.ShouldBindJSON(&data); err != nil {
		h.bindFailed(c, err)
		return
	}
	citizen, err := h.citizenService.Update(c.Request.Context(), id, data)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.SuccessResponse(c, gin.H{"message": h.message(c, "citizens.updated"), "citizen": citizen})
}

// Delete removes a citizen (admin only)
func (h *CitizenHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.citizenService.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err, "")
		return
	}
	c.Status(http.StatusNoContent)
}
