package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// @Summary      View cart
// @Description  Lines whose product no longer exists are left out
// @Tags         cart
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  cozy_nook.CartView
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/cart [get]
func (h *Handler) getCart(c *gin.Context) {
	view, err := h.services.CartView(c.Request.Context())
	if err != nil {
		h.respondError(c, "cart_view_failed", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary      Empty cart
// @Tags         cart
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/v1/cart [delete]
func (h *Handler) clearCart(c *gin.Context) {
	if err := h.services.ClearCart(c.Request.Context()); err != nil {
		h.respondError(c, "cart_clear_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// @Summary      Add to cart
// @Description  Adds one unit, merging with an existing line
// @Tags         cart
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      addToCartRequest  true  "Product"
// @Success      200   {object}  cozy_nook.CartView
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/cart/items [post]
func (h *Handler) addToCart(c *gin.Context) {
	var req addToCartRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	if err := h.services.AddToCart(c.Request.Context(), req.ProductID); err != nil {
		h.respondError(c, "cart_add_failed", err, "product_id", req.ProductID)
		return
	}
	h.getCart(c)
}

// @Summary      Set line quantity
// @Tags         cart
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Product ID"
// @Param        body  body      setQuantityRequest  true  "Quantity"
// @Success      200   {object}  cozy_nook.CartView
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/cart/items/{id} [put]
func (h *Handler) setCartQuantity(c *gin.Context) {
	var req setQuantityRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	id := c.Param("id")
	if err := h.services.SetCartQuantity(c.Request.Context(), id, req.Quantity); err != nil {
		h.respondError(c, "cart_set_quantity_failed", err, "product_id", id, "quantity", req.Quantity)
		return
	}
	h.getCart(c)
}

// @Summary      Remove line
// @Tags         cart
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  cozy_nook.CartView
// @Router       /api/v1/cart/items/{id} [delete]
func (h *Handler) removeFromCart(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.RemoveFromCart(c.Request.Context(), id); err != nil {
		h.respondError(c, "cart_remove_failed", err, "product_id", id)
		return
	}
	h.getCart(c)
}

// @Summary      Checkout
// @Description  Validates every line against stock, then decrements all of them and empties the cart
// @Tags         cart
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  cozy_nook.CheckoutResult
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/cart/checkout [post]
func (h *Handler) checkout(c *gin.Context) {
	res, err := h.services.Checkout(c.Request.Context())
	if err != nil {
		h.respondError(c, "cart_checkout_failed", err)
		return
	}
	if h.log != nil {
		sess, _ := sessionFrom(c)
		h.log.Infow("cart_checkout", "order_id", res.OrderID, "total", res.Total, "username", sess.Username)
	}
	c.JSON(http.StatusOK, res)
}
