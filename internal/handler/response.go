package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nfc-card-admin/internal/form"
	"nfc-card-admin/internal/i18n"
	"nfc-card-admin/internal/lifecycle"
	"nfc-card-admin/internal/listing"
	"nfc-card-admin/internal/middleware"
	"nfc-card-admin/internal/picker"
	"nfc-card-admin/internal/repository"
	"nfc-card-admin/internal/service"
	"nfc-card-admin/pkg/utils"
)

// errorStatus maps sentinel errors to an HTTP status and a message key.
var errorStatus = []struct {
	err    error
	status int
	key    string
}{
	{listing.ErrUnknownFilter, http.StatusBadRequest, "list.unknownFilter"},
	{repository.ErrCitizenNotFound, http.StatusNotFound, "citizens.notFound"},
	{repository.ErrCardNotFound, http.StatusNotFound, "cardManagement.cardNotFound"},
	{repository.ErrInstitutionNotFound, http.StatusNotFound, "institutions.institutionNotFound"},
	{service.ErrCardNotActive, http.StatusConflict, "cardManagement.notActive"},
	{service.ErrInstitutionNotActive, http.StatusConflict, "institutions.notActive"},
	{repository.ErrTerminalKeyNotFound, http.StatusNotFound, "terminals.keyNotFound"},
	{service.ErrInvalidTerminalKey, http.StatusUnauthorized, "terminals.invalidKey"},
	{service.ErrFormNotFound, http.StatusNotFound, "forms.notFound"},
	{service.ErrUnknownForm, http.StatusNotFound, "forms.unknownForm"},
	{service.ErrNoPicker, http.StatusBadRequest, "errors.badRequest"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "auth.invalidCredentials"},
	{service.ErrInvalidRefreshToken, http.StatusUnauthorized, "auth.invalidRefresh"},
	{service.ErrRefreshTokenExpired, http.StatusUnauthorized, "auth.refreshExpired"},
	{lifecycle.ErrUnknownAction, http.StatusBadRequest, "errors.badRequest"},
	{form.ErrNotLastStep, http.StatusConflict, "forms.notLastStep"},
	{form.ErrSubmissionPending, http.StatusConflict, "forms.pending"},
	{form.ErrAlreadySubmitted, http.StatusConflict, "forms.alreadySubmitted"},
	{form.ErrClosed, http.StatusGone, "forms.closed"},
	{form.ErrUnknownField, http.StatusBadRequest, "errors.badRequest"},
	{form.ErrListField, http.StatusBadRequest, "errors.badRequest"},
	{form.ErrNotListField, http.StatusBadRequest, "errors.badRequest"},
	{form.ErrIndexOutOfRange, http.StatusBadRequest, "errors.badRequest"},
	{picker.ErrNotACandidate, http.StatusBadRequest, "forms.notCandidate"},
}

// responder renders errors and messages in the request's locale.
type responder struct {
	tr *i18n.Translator
}

func (r responder) message(c *gin.Context, key string, params ...string) string {
	return r.tr.Message(middleware.Translator(c), key, params...)
}

func (r responder) fields(c *gin.Context, violations map[string]form.Violation) map[string]string {
	out := make(map[string]string, len(violations))
	for name, v := range violations {
		out[name] = r.message(c, v.Key, v.Params...)
	}
	return out
}

// fail writes the response for err. invalidTransitionKey names the message
// used for lifecycle conflicts of the record kind being handled.
func (r responder) fail(c *gin.Context, err error, invalidTransitionKey string) {
	var verr *form.ValidationError
	if errors.As(err, &verr) {
		utils.ValidationResponse(c, r.message(c, "forms.invalidFields"), r.fields(c, verr.Fields))
		return
	}
	if errors.Is(err, lifecycle.ErrInvalidTransition) {
		utils.ErrorResponse(c, http.StatusConflict, r.message(c, invalidTransitionKey))
		return
	}
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			utils.ErrorResponse(c, e.status, r.message(c, e.key))
			return
		}
	}
	_ = c.Error(err)
	utils.ErrorResponse(c, http.StatusInternalServerError, r.message(c, "errors.internal"))
}

// bindFailed answers a request whose body did not bind.
func (r responder) bindFailed(c *gin.Context, err error) {
	if fields, ok := r.tr.ValidationMessages(err); ok {
		utils.ValidationResponse(c, r.message(c, "forms.invalidFields"), fields)
		return
	}
	utils.ErrorResponse(c, http.StatusBadRequest, r.message(c, "errors.badRequest"))
}

func (r responder) parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, r.message(c, "errors.badRequest"))
		return 0, false
	}
	return uint(id), true
}

// listQuery reads ?q= and ?page=; every other parameter except lang is a
// filter.
func listQuery(c *gin.Context) listing.Query {
	st := listing.NewState()
	st.SetTerm(c.Query("q"))
	for key, values := range c.Request.URL.Query() {
		switch key {
		case "q", "page", "lang":
			continue
		}
		if len(values) > 0 {
			st.SetFilter(key, values[0])
		}
	}
	// the page is clamped once the match count is known
	q := st.Query()
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		q.Page = page
	}
	return q
}
