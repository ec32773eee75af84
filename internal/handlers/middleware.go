package handlers

import (
	"errors"
	"net/http"
	"strings"

	"cozy_nook/internal/models"
	"cozy_nook/internal/service"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// sessionMiddleware requires a bearer token for the live session. Failures
// tell the client to go to the login page.
func (h *Handler) sessionMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":    errLoginRequired,
			"redirect": redirectLogin,
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":    "invalid Authorization header format",
			"redirect": redirectLogin,
		})
		return
	}

	sess, err := h.services.Authenticate(c.Request.Context(), parts[1])
	if err != nil {
		if !errors.Is(err, service.ErrUnauthenticated) {
			h.respondError(c, "session_lookup_failed", err)
			c.Abort()
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":    errLoginRequired,
			"redirect": redirectLogin,
		})
		return
	}

	c.Set(sessionKey, sess)
	c.Next()
}

// adminMiddleware must run after sessionMiddleware.
func (h *Handler) adminMiddleware(c *gin.Context) {
	sess, ok := sessionFrom(c)
	if !ok || !sess.IsAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":    errAdminRequired,
			"redirect": redirectHome,
		})
		return
	}
	c.Next()
}

func sessionFrom(c *gin.Context) (models.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return models.Session{}, false
	}
	sess, ok := v.(models.Session)
	return sess, ok
}
