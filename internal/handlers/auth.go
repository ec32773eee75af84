package handlers

import (
	"net/http"
	"strings"

	"cozy_nook/internal/models"

	"github.com/gin-gonic/gin"
)

// Single, shared credentials payload for both register and login.
type authCredentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token   string         `json:"token"`
	Session models.Session `json:"session"`
}

// @Summary      Register
// @Description  Creates a non-admin account and logs it in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      authCredentials  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/register [post]
func (h *Handler) register(c *gin.Context) {
	var input authCredentials
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}
	// the form trims the username but never the password
	input.Username = strings.TrimSpace(input.Username)

	u, err := h.services.Register(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		h.respondError(c, "auth_register_failed", err, "username", input.Username)
		return
	}
	h.respondWithToken(c, models.SessionOf(u))
}

// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      authCredentials  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var input authCredentials
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}
	input.Username = strings.TrimSpace(input.Username)

	u, err := h.services.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		h.respondError(c, "auth_login_failed", err, "username", input.Username)
		return
	}
	h.respondWithToken(c, models.SessionOf(u))
}

func (h *Handler) respondWithToken(c *gin.Context, sess models.Session) {
	token, err := h.services.IssueToken(sess)
	if err != nil {
		h.respondError(c, "auth_issue_token_failed", err, "username", sess.Username)
		return
	}
	c.JSON(http.StatusOK, authResponse{Token: token, Session: sess})
}

// @Summary      Log out
// @Description  Ends the session and empties the cart
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *Handler) logout(c *gin.Context) {
	if err := h.services.End(c.Request.Context()); err != nil {
		h.respondError(c, "auth_logout_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged_out", "redirect": redirectHome})
}

// @Summary      Current session
// @Description  Returns {"session": null} when nobody is logged in
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /auth/session [get]
func (h *Handler) currentSession(c *gin.Context) {
	sess, err := h.services.Current(c.Request.Context())
	if err != nil {
		h.respondError(c, "auth_session_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess})
}
