package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jeonse-ledger-backend/internal/auth"
	"jeonse-ledger-backend/internal/model"
	"jeonse-ledger-backend/internal/mw"
)

type sessionResponse struct {
	Token string       `json:"token"`
	Actor *model.Actor `json:"actor"`
}

// Signup handles the POST /api/accounts/signup request.
func (h *Handler) Signup(c *gin.Context) {
	var in auth.SignupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeBindError(c, err)
		return
	}

	actor, token, err := h.accounts.Signup(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionResponse{Token: token, Actor: actor})
}

// Login handles the POST /api/accounts/login request.
func (h *Handler) Login(c *gin.Context) {
	var in auth.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeBindError(c, err)
		return
	}

	actor, token, err := h.accounts.Login(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{Token: token, Actor: actor})
}

// Logout handles the POST /api/accounts/logout request.
func (h *Handler) Logout(c *gin.Context) {
	if claims, ok := mw.Claims(c); ok {
		h.accounts.Logout(claims)
	}
	c.Status(http.StatusNoContent)
}

// Me handles the GET /api/accounts/me request.
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, mw.Actor(c))
}

// DeleteMe handles the DELETE /api/accounts/me request.
func (h *Handler) DeleteMe(c *gin.Context) {
	claims, _ := mw.Claims(c)
	if err := h.accounts.DeleteAccount(c.Request.Context(), mw.Actor(c), claims); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
