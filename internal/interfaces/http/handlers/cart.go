// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Akshat090803/ecommerce-final-project/internal/domain/cart"
	"github.com/Akshat090803/ecommerce-final-project/internal/domain/catalog"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	sessions *CartSessions
	catalog  catalog.Reader
	logger   logrus.FieldLogger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(sessions *CartSessions, reader catalog.Reader, logger logrus.FieldLogger) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		catalog:  reader,
		logger:   logger,
	}
}

// AddToCartRequest is the body of POST /cart/items.
// The quantity bound mirrors cart.MaxLineQuantity.
type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=999"`
}

// UpdateCartItemRequest is the body of PUT /cart/items/:id.
// A quantity of zero or less removes the line.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,max=999"`
}

// CartResponse is the cart as returned to the client
type CartResponse struct {
	SessionID string      `json:"session_id"`
	Items     []cart.Line `json:"items"`
	cart.Totals
}

func newCartResponse(store *cart.Store) CartResponse {
	return CartResponse{
		SessionID: store.SessionID(),
		Items:     store.Lines(),
		Totals:    store.Totals(),
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	store, ok := h.open(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    newCartResponse(store),
	})
}

// GetCartCount handles GET /cart/count
func (h *CartHandler) GetCartCount(c *gin.Context) {
	store, ok := h.open(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart count retrieved successfully",
		"data": gin.H{
			"count": store.TotalItems(),
		},
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		h.logger.WithError(err).WithField("product_id", req.ProductID).Error("Failed to load product for cart")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve product",
		})
		return
	}
	if err := product.Validate(); err != nil {
		h.logger.WithError(err).Warn("Refusing to add invalid product to cart")
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Product cannot be added to cart",
		})
		return
	}

	store, ok := h.open(c)
	if !ok {
		return
	}

	if err := store.AddToCart(c.Request.Context(), product, req.Quantity); err != nil {
		h.saveFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    newCartResponse(store),
	})
}

// UpdateCartItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	store, ok := h.open(c)
	if !ok {
		return
	}

	if err := store.UpdateQuantity(c.Request.Context(), c.Param("id"), *req.Quantity); err != nil {
		h.saveFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    newCartResponse(store),
	})
}

// RemoveFromCart handles DELETE /cart/items/:id
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	store, ok := h.open(c)
	if !ok {
		return
	}

	if err := store.RemoveFromCart(c.Request.Context(), c.Param("id")); err != nil {
		h.saveFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    newCartResponse(store),
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	store, ok := h.open(c)
	if !ok {
		return
	}

	if err := store.ClearCart(c.Request.Context()); err != nil {
		h.logger.WithError(err).WithField("session_id", store.SessionID()).Error("Failed to clear cart")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to clear cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

func (h *CartHandler) open(c *gin.Context) (*cart.Store, bool) {
	store, err := h.sessions.Open(c)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load cart")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Cart is temporarily unavailable",
		})
		return nil, false
	}
	return store, true
}

func (h *CartHandler) saveFailed(c *gin.Context, err error) {
	if errors.Is(err, cart.ErrQuantityLimit) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": fmt.Sprintf("A cart line can hold at most %d items", cart.MaxLineQuantity),
		})
		return
	}
	h.logger.WithError(err).Error("Failed to save cart")
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error": "Failed to update cart, please try again",
	})
}
