// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Akshat090803/ecommerce-final-project/internal/domain/cart"
	"github.com/Akshat090803/ecommerce-final-project/internal/interfaces/http/middleware"
)

// AuthHandler handles the storefront side of sign out. Tokens are issued
// and revoked by the identity provider.
type AuthHandler struct {
	sessions *CartSessions
	logger   logrus.FieldLogger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessions *CartSessions, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// Logout handles POST /auth/logout. Signing out empties the session cart.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := middleware.IdentitySession(c)

	store, err := h.sessions.OpenExisting(c)
	if err != nil {
		// Sign out still succeeds; the stored cart expires on its own
		h.logger.WithError(err).Warn("Failed to load cart on sign out")
		session.SignOut()
	} else {
		unbind := cart.BindIdentity(c.Request.Context(), store, session, h.logger)
		session.SignOut()
		unbind()
	}

	h.sessions.expireCookie(c)
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}
