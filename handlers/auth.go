package handlers

import (
	"net/http"

	"postboard/middleware"
	"postboard/models"
	"postboard/service"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, models.NewValidationError(err.Error()))
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	session, err := h.Auth.Register(ctx, service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "User created successfully", session)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, models.NewValidationError(err.Error()))
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	session, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Login successful", session)
}

func (h *Handler) Me(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	user, err := h.Auth.Me(ctx, middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "User retrieved successfully", user)
}
