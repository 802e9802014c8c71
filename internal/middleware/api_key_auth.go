package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nfc-card-admin/internal/i18n"
	"nfc-card-admin/pkg/utils"
)

// TerminalKeyKey is the context key holding the authenticated institution id.
const TerminalKeyKey = "institution_id"

// TerminalAuthenticator validates a terminal's API key for an institution.
type TerminalAuthenticator interface {
	Authenticate(ctx context.Context, institutionID uint, plainKey string) error
}

// APIKeyAuthMiddleware validates NFC terminal API keys sent in X-API-Key
// against the institution named by :institution_id.
func APIKeyAuthMiddleware(terminals TerminalAuthenticator, tr *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		trans := Translator(c)
		apiKey := c.GetHeader("X-API-Key")
		if apiKey == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, tr.Message(trans, "terminals.keyRequired"))
			c.Abort()
			return
		}

		institutionID, err := strconv.ParseUint(c.Param("institution_id"), 10, 32)
		if err != nil || institutionID == 0 {
			utils.ErrorResponse(c, http.StatusBadRequest, tr.Message(trans, "errors.badRequest"))
			c.Abort()
			return
		}

		if err := terminals.Authenticate(c.Request.Context(), uint(institutionID), apiKey); err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, tr.Message(trans, "terminals.invalidKey"))
			c.Abort()
			return
		}

		c.Set(TerminalKeyKey, uint(institutionID))
		c.Next()
	}
}
