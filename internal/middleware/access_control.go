package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nfc-card-admin/internal/i18n"
	"nfc-card-admin/internal/session"
	"nfc-card-admin/pkg/utils"
)

// FormOwners resolves which operator opened a form session.
type FormOwners interface {
	Owner(id string) (uint, error)
}

// AccessControlMiddleware restricts form sessions to the operator who opened
// them. Admins may act on any session.
type AccessControlMiddleware struct {
	forms FormOwners
	tr    *i18n.Translator
	// notFound is the error FormOwners returns for unknown sessions.
	notFound error
}

func NewAccessControlMiddleware(forms FormOwners, tr *i18n.Translator, notFound error) *AccessControlMiddleware {
	return &AccessControlMiddleware{forms: forms, tr: tr, notFound: notFound}
}

// CheckFormAccess verifies the operator owns the session in :sid
func (m *AccessControlMiddleware) CheckFormAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		trans := Translator(c)
		sess, ok := session.FromContext(c.Request.Context())
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, m.tr.Message(trans, "auth.unauthorized"))
			c.Abort()
			return
		}

		owner, err := m.forms.Owner(c.Param("sid"))
		if err != nil {
			if errors.Is(err, m.notFound) {
				utils.ErrorResponse(c, http.StatusNotFound, m.tr.Message(trans, "forms.notFound"))
			} else {
				utils.ErrorResponse(c, http.StatusInternalServerError, m.tr.Message(trans, "errors.internal"))
			}
			c.Abort()
			return
		}

		if sess.IsAdmin() || owner == 0 || owner == sess.UserID {
			c.Next()
			return
		}

		utils.ErrorResponse(c, http.StatusForbidden, m.tr.Message(trans, "auth.forbidden"))
		c.Abort()
	}
}
