// internal/interfaces/http/handlers/session.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Akshat090803/ecommerce-final-project/internal/config"
	"github.com/Akshat090803/ecommerce-final-project/internal/domain/cart"
)

// CartSessions opens the cart of the request's browser session. The
// session id travels in a cookie; the cart itself lives in the persister.
type CartSessions struct {
	persister  cart.Persister
	cookieName string
	maxAge     int
	secure     bool
	logger     logrus.FieldLogger
}

// NewCartSessions creates a cart session opener
func NewCartSessions(persister cart.Persister, cfg *config.Config, logger logrus.FieldLogger) *CartSessions {
	return &CartSessions{
		persister:  persister,
		cookieName: cfg.Cart.CookieName,
		maxAge:     int(cfg.Cart.SessionTTL.Seconds()),
		secure:     cfg.Security.SecureCookies,
		logger:     logger,
	}
}

// Open loads the session cart, issuing a new session cookie if the
// request has none.
func (s *CartSessions) Open(c *gin.Context) (*cart.Store, error) {
	return cart.Open(c.Request.Context(), s.getOrCreateSessionID(c), s.persister, s.logger)
}

// OpenExisting loads the session cart without issuing a cookie. A request
// without a session gets an empty cart under a throwaway id.
func (s *CartSessions) OpenExisting(c *gin.Context) (*cart.Store, error) {
	sessionID, err := c.Cookie(s.cookieName)
	if err != nil || sessionID == "" {
		sessionID = uuid.NewString()
	}
	return cart.Open(c.Request.Context(), sessionID, s.persister, s.logger)
}

// getOrCreateSessionID gets session ID from cookie or creates a new one
func (s *CartSessions) getOrCreateSessionID(c *gin.Context) string {
	sessionID, err := c.Cookie(s.cookieName)
	if err != nil || sessionID == "" {
		sessionID = uuid.NewString()
	}

	// Refresh on every request so the cookie expires with the stored cart
	c.SetCookie(s.cookieName, sessionID, s.maxAge, "/", "", s.secure, true)
	return sessionID
}

func (s *CartSessions) expireCookie(c *gin.Context) {
	c.SetCookie(s.cookieName, "", -1, "/", "", s.secure, true)
}
