package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nfc-card-admin/internal/i18n"
	"nfc-card-admin/internal/session"
	"nfc-card-admin/internal/service"
	"nfc-card-admin/pkg/utils"
)

const refreshCookie = "refresh_token"

type AuthHandler struct {
	responder
	authService   *service.AuthService
	refreshMaxAge int
	secureCookie  bool
}

// NewAuthHandler builds the auth endpoints. refreshMaxAge is the cookie
// lifetime in seconds.
func NewAuthHandler(authService *service.AuthService, tr *i18n.Translator, refreshMaxAge int, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		responder:     responder{tr: tr},
		authService:   authService,
		refreshMaxAge: refreshMaxAge,
		secureCookie:  secureCookie,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=admin operator"`
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetCookie(refreshCookie, value, maxAge, "/", "", h.secureCookie, true)
}

// Login handles operator authentication
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindFailed(c, err)
		return
	}

	response, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err, "")
		return
	}

	// The refresh token only travels in the HttpOnly cookie.
	h.setRefreshCookie(c, response.RefreshToken, h.refreshMaxAge)
	utils.SuccessResponse(c, gin.H{
		"access_token": response.AccessToken,
		"user":         response.User,
	})
}

// Refresh issues a new access token from the refresh cookie
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookie)
	if err != nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, h.message(c, "auth.invalidRefresh"))
		return
	}

	accessToken, err := h.authService.RefreshAccessToken(c.Request.Context(), refreshToken)
	if err != nil {
		h.fail(c, err, "")
		return
	}

	utils.SuccessResponse(c, gin.H{"access_token": accessToken})
}

// Logout revokes the refresh token and clears the cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	if refreshToken, err := c.Cookie(refreshCookie); err == nil {
		if err := h.authService.Logout(c.Request.Context(), refreshToken); err != nil {
			h.fail(c, err, "")
			return
		}
	}
	h.setRefreshCookie(c, "", -1)
	utils.MessageResponse(c, h.message(c, "auth.loggedOut"))
}

// Me returns the authenticated operator
func (h *AuthHandler) Me(c *gin.Context) {
	sess, _ := session.FromContext(c.Request.Context())
	utils.SuccessResponse(c, service.UserResponse{ID: sess.UserID, Email: sess.Email, Role: sess.Role})
}

// CreateUser registers another operator (admin only)
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindFailed(c, err)
		return
	}

	user, err := h.authService.CreateOperator(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	utils.CreatedResponse(c, user)
}
