package handler

import (
	"github.com/gin-gonic/gin"

	"nfc-card-admin/internal/form"
	"nfc-card-admin/internal/i18n"
	"nfc-card-admin/internal/lifecycle"
	"nfc-card-admin/internal/service"
	"nfc-card-admin/pkg/utils"
)

var institutionActionMessages = map[lifecycle.Action]string{
	lifecycle.Suspend:      "institutions.institutionSuspended",
	lifecycle.Delete:       "institutions.institutionDeleted",
	lifecycle.RenewLicense: "institutions.licenseRenewed",
}

type InstitutionHandler struct {
	responder
	institutionService *service.InstitutionService
}

func NewInstitutionHandler(institutionService *service.InstitutionService, tr *i18n.Translator) *InstitutionHandler {
	return &InstitutionHandler{responder: responder{tr: tr}, institutionService: institutionService}
}

// List returns one page of registered institutions
func (h *InstitutionHandler) List(c *gin.Context) {
	page, err := h.institutionService.List(c.Request.Context(), listQuery(c))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.SuccessResponse(c, page)
}

// Get returns an institution with its usage history
func (h *InstitutionHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	inst, err := h.institutionService.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.SuccessResponse(c, inst)
}

func (h *InstitutionHandler) Create(c *gin.Context) {
	var data form.Data
	if err := c.ShouldBindJSON(&data); err != nil {
		h.bindFailed(c, err)
		return
	}
	inst, err := h.institutionService.Create(c.Request.Context(), data)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.CreatedResponse(c, gin.H{"message": h.message(c, "institutions.createSuccess"), "institution": inst})
}

func (h *InstitutionHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var data form.Data
	if err := c.ShouldBindJSON(&data); err != nil {
		h.bindFailed(c, err)
		return
	}
	inst, err := h.institutionService.Update(c.Request.Context(), id, data)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.SuccessResponse(c, gin.H{"message": h.message(c, "institutions.updateSuccess"), "institution": inst})
}

// Action applies suspend, delete or renew-license. A deleted institution is
// reported with removed set and no record.
func (h *InstitutionHandler) Action(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	action := lifecycle.Action(c.Param("action"))
	res, err := h.institutionService.Transition(c.Request.Context(), id, action)
	if err != nil {
		h.fail(c, err, "institutions.invalidTransition")
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message":     h.message(c, institutionActionMessages[action]),
		"institution": res.Institution,
		"removed":     res.Removed,
	})
}
