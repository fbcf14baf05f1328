package http

import (
	"net/http"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h *Handler) APIRegister(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAPIError(c, domain.Invalid("body", err.Error()))
		return
	}
	u, err := h.auth.Register(c.Request.Context(), req.Username, req.Password, false)
	if err != nil {
		writeAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, UserResponse{ID: u.ID, Username: u.Username, IsStaff: u.IsStaff})
}

func (h *Handler) APIToken(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAPIError(c, domain.Invalid("body", err.Error()))
		return
	}
	u, err := h.auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeAPIError(c, err)
		return
	}
	token, err := h.auth.IssueToken(u)
	if err != nil {
		writeAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, TokenResponse{Token: token})
}
