// internal/api/handlers/auth_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/LuisEduardoPedra/painelAtividades/internal/api/responses"
	"github.com/LuisEduardoPedra/painelAtividades/internal/core/auth"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service auth.Service
}

func NewAuthHandler(service auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, http.StatusBadRequest, "Usuário e senha são obrigatórios")
		return
	}

	token, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrCredenciaisInvalidas) {
		responses.Error(c, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
