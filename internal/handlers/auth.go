package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/reddit-clone/api/internal/apperrors"
	"github.com/emilythestrangee/reddit-clone/api/internal/auth"
	"github.com/emilythestrangee/reddit-clone/api/internal/middleware"
	"github.com/emilythestrangee/reddit-clone/api/internal/models"
	"github.com/emilythestrangee/reddit-clone/api/internal/repositories"
)

type AuthHandler struct {
	users  repositories.UserRepository
	tokens *auth.TokenManager
	logger *slog.Logger
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var input models.RegisterRequest
	if !bindJSON(c, &input) {
		return
	}

	ctx := c.Request.Context()
	emailTaken, usernameTaken, err := h.users.Taken(ctx, input.Email, input.Username)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	switch {
	case emailTaken:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
		return
	case usernameTaken:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username already taken"})
		return
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	name := input.Name
	if name == "" {
		name = input.Username
	}
	user := models.User{
		Username: input.Username,
		Email:    input.Email,
		Name:     name,
		Password: hashed,
	}
	if err := h.users.Create(ctx, &user); err != nil {
		respondError(c, h.logger, err)
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("user registered", "user_id", user.ID, "username", user.Username)

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"userId":  user.ID,
		"token":   token,
		"user":    user,
	})
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginRequest
	if !bindJSON(c, &input) {
		return
	}

	user, err := h.users.FindByEmail(c.Request.Context(), input.Email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		respondError(c, h.logger, err)
		return
	}
	if user == nil || auth.CheckPassword(user.Password, input.Password) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{
		Message: "Login successful",
		Token:   token,
		User:    *user,
	})
}

// GetMe returns the current authenticated user
func (h *AuthHandler) GetMe(c *gin.Context) {
	id := middleware.GetIdentity(c)
	if !id.Authenticated() {
		respondError(c, h.logger, apperrors.ErrUnauthorized)
		return
	}

	user, err := h.users.FindByID(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, h.logger, fmt.Errorf("current user: %w", err))
		return
	}
	c.JSON(http.StatusOK, user)
}
