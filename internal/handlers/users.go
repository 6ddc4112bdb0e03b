package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/reddit-clone/api/internal/apperrors"
	"github.com/emilythestrangee/reddit-clone/api/internal/feed"
	"github.com/emilythestrangee/reddit-clone/api/internal/middleware"
	"github.com/emilythestrangee/reddit-clone/api/internal/models"
	"github.com/emilythestrangee/reddit-clone/api/internal/repositories"
)

type UserHandler struct {
	users  repositories.UserRepository
	posts  repositories.PostRepository
	feed   *feed.Assembler
	logger *slog.Logger
}

// GetUserProfile returns a user's profile and their scored posts
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	ctx := c.Request.Context()

	user, err := h.users.FindByUsername(ctx, c.Param("username"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	limit, err := queryInt(c, "limit", repositories.DefaultLimit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	posts, err := h.posts.List(ctx, repositories.PostFilter{
		AuthorID: user.ID,
		Page:     repositories.NewPage(limit, skip),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	views, err := h.feed.Posts(ctx, posts, middleware.GetIdentity(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"posts": views,
	})
}

// UpdateUserProfile lets users edit their own name, bio and avatar
func (h *UserHandler) UpdateUserProfile(c *gin.Context) {
	id := middleware.GetIdentity(c)
	if !id.Authenticated() {
		respondError(c, h.logger, apperrors.ErrUnauthorized)
		return
	}

	ctx := c.Request.Context()
	user, err := h.users.FindByUsername(ctx, c.Param("username"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	// Check if user is updating their own profile
	if user.ID != id.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only update your own profile"})
		return
	}

	var input models.UpdateProfileRequest
	if !bindJSON(c, &input) {
		return
	}

	updated, err := h.users.UpdateProfile(ctx, user.ID, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
