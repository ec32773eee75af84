package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"cozy_nook/internal/service"

	"github.com/gin-gonic/gin"
)

// flexString accepts both "4.50" and 4.50 so admin forms can post either;
// the catalog does the actual parsing.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func (f *flexString) ptr() *string {
	if f == nil {
		return nil
	}
	s := string(*f)
	return &s
}

type productRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       flexString `json:"price"`
	Quantity    flexString `json:"quantity"`
	Image       string     `json:"image"`
}

type productPatchRequest struct {
	Name        *string     `json:"name"`
	Description *string     `json:"description"`
	Price       *flexString `json:"price"`
	Quantity    *flexString `json:"quantity"`
	Image       *string     `json:"image"`
}

type decrementRequest struct {
	Amount int `json:"amount"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary      List products
// @Description  Seeds the default products on first access
// @Tags         products
// @Produce      json
// @Success      200  {array}   models.Product
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/products [get]
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.services.ListProducts(c.Request.Context())
	if err != nil {
		h.respondError(c, "products_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// @Summary      Get product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  models.Product
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/products/{id} [get]
func (h *Handler) getProduct(c *gin.Context) {
	p, err := h.services.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, "products_get_failed", err, "id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary      Create product
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      productRequest  true  "Product"
// @Success      201   {object}  models.Product
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /api/v1/admin/products [post]
func (h *Handler) createProduct(c *gin.Context) {
	var req productRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	p, err := h.services.CreateProduct(c.Request.Context(), service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       string(req.Price),
		Quantity:    string(req.Quantity),
		Image:       req.Image,
	})
	if err != nil {
		h.respondError(c, "products_create_failed", err, "name", req.Name)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// @Summary      Update product
// @Description  Only the fields present in the body are changed
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Product ID"
// @Param        body  body      productPatchRequest  true  "Fields to change"
// @Success      200   {object}  models.Product
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/admin/products/{id} [put]
func (h *Handler) updateProduct(c *gin.Context) {
	var req productPatchRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	id := c.Param("id")
	p, err := h.services.UpdateProduct(c.Request.Context(), id, service.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price.ptr(),
		Quantity:    req.Quantity.ptr(),
		Image:       req.Image,
	})
	if err != nil {
		h.respondError(c, "products_update_failed", err, "id", id)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary      Delete product
// @Description  Cart lines pointing at the product are left in place
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/admin/products/{id} [delete]
func (h *Handler) deleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.DeleteProduct(c.Request.Context(), id); err != nil {
		h.respondError(c, "products_delete_failed", err, "id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// @Summary      Decrement inventory
// @Tags         admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string            true  "Product ID"
// @Param        body  body      decrementRequest  true  "Amount"
// @Success      200   {object}  models.Product
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/v1/admin/products/{id}/decrement [post]
func (h *Handler) decrementInventory(c *gin.Context) {
	var req decrementRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	id := c.Param("id")
	p, err := h.services.DecrementInventory(c.Request.Context(), id, req.Amount)
	if err != nil {
		h.respondError(c, "products_decrement_failed", err, "id", id, "amount", req.Amount)
		return
	}
	c.JSON(http.StatusOK, p)
}
