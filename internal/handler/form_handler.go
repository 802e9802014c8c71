package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nfc-card-admin/internal/form"
	"nfc-card-admin/internal/i18n"
	"nfc-card-admin/internal/service"
	"nfc-card-admin/pkg/utils"
)

// FormHandler drives server-held form sessions: field edits, step
// navigation, the card form's citizen picker and submission.
type FormHandler struct {
	responder
	formService *service.FormService
}

func NewFormHandler(formService *service.FormService, tr *i18n.Translator) *FormHandler {
	return &FormHandler{responder: responder{tr: tr}, formService: formService}
}

type fieldRequest struct {
	Value string `json:"value"`
}

// reply answers with the session state or maps err.
func (h *FormHandler) reply(c *gin.Context, st *service.FormState, err error) {
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.SuccessResponse(c, st)
}

// Open returns the handler that starts a session of the given form. ?id=
// opens a record for editing, or pre-selects a citizen on the card form.
func (h *FormHandler) Open(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id uint
		if raw := c.Query("id"); raw != "" {
			n, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				utils.ErrorResponse(c, http.StatusBadRequest, h.message(c, "errors.badRequest"))
				return
			}
			id = uint(n)
		}
		st, err := h.formService.Open(c.Request.Context(), kind, id)
		if err != nil {
			h.fail(c, err, "")
			return
		}
		utils.CreatedResponse(c, st)
	}
}

func (h *FormHandler) State(c *gin.Context) {
	st, err := h.formService.State(c.Param("sid"))
	h.reply(c, st, err)
}

func (h *FormHandler) SetField(c *gin.Context) {
	var req fieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindFailed(c, err)
		return
	}
	st, err := h.formService.SetField(c.Param("sid"), c.Param("field"), req.Value)
	h.reply(c, st, err)
}

func (h *FormHandler) BlurField(c *gin.Context) {
	st, err := h.formService.BlurField(c.Param("sid"), c.Param("field"))
	h.reply(c, st, err)
}

// AddItem appends to a list field; blank values are ignored.
func (h *FormHandler) AddItem(c *gin.Context) {
	var req fieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindFailed(c, err)
		return
	}
	st, err := h.formService.AddItem(c.Param("sid"), c.Param("field"), req.Value)
	h.reply(c, st, err)
}

func (h *FormHandler) RemoveItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, h.message(c, "errors.badRequest"))
		return
	}
	st, err := h.formService.RemoveItem(c.Param("sid"), c.Param("field"), index)
	h.reply(c, st, err)
}

func (h *FormHandler) Advance(c *gin.Context) {
	st, err := h.formService.Advance(c.Param("sid"))
	h.reply(c, st, err)
}

func (h *FormHandler) Retreat(c *gin.Context) {
	st, err := h.formService.Retreat(c.Param("sid"))
	h.reply(c, st, err)
}

// Submit validates every step and persists the form. Failed and cancelled
// submissions are reported as retryable along with the kept state.
func (h *FormHandler) Submit(c *gin.Context) {
	st, err := h.formService.Submit(c.Request.Context(), c.Param("sid"))
	var verr *form.ValidationError
	switch {
	case err == nil:
		if st.Submission.Status == form.StatusPending {
			c.JSON(http.StatusAccepted, gin.H{"success": true, "data": st})
			return
		}
		utils.SuccessResponse(c, st)
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   h.message(c, "forms.invalidFields"),
			"fields":  h.fields(c, verr.Fields),
			"data":    st,
		})
	case errors.Is(err, form.ErrSubmissionCancelled):
		utils.RetryableResponse(c, http.StatusConflict, h.message(c, "forms.cancelled"), st)
	case errors.Is(err, form.ErrSubmissionFailed):
		_ = c.Error(err)
		utils.RetryableResponse(c, http.StatusBadGateway, h.message(c, "forms.submissionFailed"), st)
	default:
		h.fail(c, err, "")
	}
}

func (h *FormHandler) Cancel(c *gin.Context) {
	st, err := h.formService.Cancel(c.Param("sid"))
	h.reply(c, st, err)
}

// SearchCitizens runs the card form's citizen lookup with ?q=
func (h *FormHandler) SearchCitizens(c *gin.Context) {
	st, err := h.formService.SearchCitizens(c.Request.Context(), c.Param("sid"), c.Query("q"))
	h.reply(c, st, err)
}

func (h *FormHandler) SelectCitizen(c *gin.Context) {
	id, ok := h.parseID(c, "citizenId")
	if !ok {
		return
	}
	st, err := h.formService.SelectCitizen(c.Param("sid"), id)
	h.reply(c, st, err)
}

// Close discards the session; the response asks the client to go back.
func (h *FormHandler) Close(c *gin.Context) {
	st, err := h.formService.Close(c.Param("sid"))
	h.reply(c, st, err)
}
