package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nfc-card-admin/internal/i18n"
	"nfc-card-admin/internal/session"
	"nfc-card-admin/pkg/utils"
)

// AuthMiddleware validates the JWT access token from the Authorization header
// and attaches the operator's session to the request context
func AuthMiddleware(tokens *utils.TokenIssuer, tr *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		trans := Translator(c)

		authHeader := c.GetHeader("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.ErrorResponse(c, http.StatusUnauthorized, tr.Message(trans, "auth.unauthorized"))
			c.Abort()
			return
		}

		claims, err := tokens.ValidateAccessToken(parts[1])
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, tr.Message(trans, "auth.unauthorized"))
			c.Abort()
			return
		}

		sess := session.Session{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
			Locale: i18n.Locale(trans),
		}
		c.Request = c.Request.WithContext(session.WithSession(c.Request.Context(), sess))
		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// RequireAdmin checks if the authenticated operator has the admin role
func RequireAdmin(tr *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := session.FromContext(c.Request.Context())
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, tr.Message(Translator(c), "auth.unauthorized"))
			c.Abort()
			return
		}
		if !sess.IsAdmin() {
			utils.ErrorResponse(c, http.StatusForbidden, tr.Message(Translator(c), "auth.forbidden"))
			c.Abort()
			return
		}
		c.Next()
	}
}
