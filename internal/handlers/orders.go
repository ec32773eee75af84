package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"cozy_nook/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      List users
// @Description  Includes plaintext passwords; admin only
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   models.User
// @Failure      403  {object}  map[string]string
// @Router       /api/v1/admin/users [get]
func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.services.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, "users_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// @Summary      List orders
// @Description  Filter by placement time (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD') and username. A date-only 'to' covers the whole day.
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        from      query     string  false  "Start of range"  example(2025-08-01)
// @Param        to        query     string  false  "End of range"    example(2025-08-31)
// @Param        username  query     string  false  "Buyer"
// @Success      200       {object}  map[string]interface{}  "count, orders"
// @Failure      400       {object}  map[string]string
// @Failure      403       {object}  map[string]string
// @Router       /api/v1/admin/orders [get]
func (h *Handler) listOrders(c *gin.Context) {
	var (
		f   = service.OrderFilter{Username: strings.TrimSpace(c.Query("username"))}
		err error
	)
	if qs := c.Query("from"); qs != "" {
		if f.From, err = parseQueryTime(qs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	if qs := c.Query("to"); qs != "" {
		if f.To, err = parseQueryTime(qs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		if isDateOnly(qs) {
			f.To = f.To.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}

	orders, err := h.services.ListOrders(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, "orders_list_failed", err, "from", f.From, "to", f.To, "username", f.Username)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(orders),
		"orders": orders,
	})
}

func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2025-08-27T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}
