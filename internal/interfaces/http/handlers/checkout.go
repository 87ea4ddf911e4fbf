// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Akshat090803/ecommerce-final-project/internal/domain/cart"
	"github.com/Akshat090803/ecommerce-final-project/internal/domain/checkout"
	"github.com/Akshat090803/ecommerce-final-project/internal/domain/identity"
	"github.com/Akshat090803/ecommerce-final-project/internal/interfaces/http/middleware"
)

// OrderPlacer places an order from a session cart
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, provider identity.Provider, store *cart.Store) (*checkout.Result, error)
}

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	placer   OrderPlacer
	sessions *CartSessions
	logger   logrus.FieldLogger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(placer OrderPlacer, sessions *CartSessions, logger logrus.FieldLogger) *CheckoutHandler {
	return &CheckoutHandler{
		placer:   placer,
		sessions: sessions,
		logger:   logger,
	}
}

// PlaceOrder handles POST /checkout
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	store, err := h.sessions.OpenExisting(c)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load cart for checkout")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Cart is temporarily unavailable",
		})
		return
	}

	result, err := h.placer.PlaceOrder(c.Request.Context(), middleware.IdentitySession(c), store)
	if err != nil {
		status, message := checkoutErrorResponse(err)
		c.JSON(status, gin.H{
			"error": message,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    result,
	})
}

func checkoutErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, checkout.ErrNotAuthenticated):
		return http.StatusUnauthorized, "Please sign in to place an order"
	case errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusUnprocessableEntity, "Your cart is empty"
	default:
		return http.StatusBadGateway, checkout.ErrOrderFailed.Error()
	}
}
