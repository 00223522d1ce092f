package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/s-fanou/feed/internal/apperr"
	"github.com/s-fanou/feed/internal/server/services"
	"github.com/s-fanou/feed/internal/server/validation"
)

const (
	msgUserCreated = "User created!"
	msgBadBody     = "Invalid request body."
)

type signupResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

type meResponse struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type Handler struct {
	users *services.UserService
}

func NewHandler(users *services.UserService) *Handler {
	return &Handler{users: users}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) Signup(c *gin.Context) {
	var req validation.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Wrap(apperr.KindBadRequest, msgBadBody, err))
		return
	}

	u, err := h.users.Signup(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, signupResponse{Message: msgUserCreated, UserID: u.ID})
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Wrap(apperr.KindBadRequest, msgBadBody, err))
		return
	}

	res, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{Token: res.Token, UserID: res.UserID})
}

func (h *Handler) Me(c *gin.Context) {
	userID, ok := UserIDFromContext(c.Request.Context())
	if !ok {
		fail(c, apperr.New(apperr.KindNotAuthenticated, msgNotAuthenticated))
		return
	}

	u, err := h.users.Me(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, meResponse{UserID: u.ID, Email: u.Email, Name: u.Name})
}

func (h *Handler) Logout(c *gin.Context) {
	claims, ok := ClaimsFromContext(c.Request.Context())
	if !ok {
		fail(c, apperr.New(apperr.KindNotAuthenticated, msgNotAuthenticated))
		return
	}

	if err := h.users.Logout(c.Request.Context(), claims); err != nil {
		fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
