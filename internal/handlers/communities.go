package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/reddit-clone/api/internal/apperrors"
	"github.com/emilythestrangee/reddit-clone/api/internal/feed"
	"github.com/emilythestrangee/reddit-clone/api/internal/middleware"
	"github.com/emilythestrangee/reddit-clone/api/internal/models"
	"github.com/emilythestrangee/reddit-clone/api/internal/repositories"
)

type CommunityHandler struct {
	communities   repositories.CommunityRepository
	subscriptions repositories.SubscriptionRepository
	feed          *feed.Assembler
	logger        *slog.Logger
}

// GetCommunities lists communities, optionally filtered by ?search=
func (h *CommunityHandler) GetCommunities(c *gin.Context) {
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

	ctx := c.Request.Context()
	search := strings.TrimSpace(c.Query("search"))
	communities, err := h.communities.List(ctx, search, repositories.NewPage(limit, skip))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	views, err := h.feed.Communities(ctx, communities, middleware.GetIdentity(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// CreateCommunity creates a community and subscribes its creator
func (h *CommunityHandler) CreateCommunity(c *gin.Context) {
	id := middleware.GetIdentity(c)
	if !id.Authenticated() {
		respondError(c, h.logger, apperrors.ErrUnauthorized)
		return
	}

	var input models.CreateCommunityRequest
	if !bindJSON(c, &input) {
		return
	}

	ctx := c.Request.Context()
	community := models.Community{
		Name:        input.Name,
		Title:       input.Title,
		Description: input.Description,
		CreatorID:   id.UserID,
	}
	if err := h.communities.Create(ctx, &community); err != nil {
		respondError(c, h.logger, err)
		return
	}

	view, err := h.feed.Community(ctx, &community, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// GetCommunity returns one community by name
func (h *CommunityHandler) GetCommunity(c *gin.Context) {
	ctx := c.Request.Context()
	community, err := h.communities.FindByName(ctx, c.Param("name"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	view, err := h.feed.Community(ctx, community, middleware.GetIdentity(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ToggleSubscription subscribes or unsubscribes the caller
func (h *CommunityHandler) ToggleSubscription(c *gin.Context) {
	id := middleware.GetIdentity(c)
	if !id.Authenticated() {
		respondError(c, h.logger, apperrors.ErrUnauthorized)
		return
	}

	ctx := c.Request.Context()
	community, err := h.communities.FindByName(ctx, c.Param("name"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	subscribed, err := h.subscriptions.Toggle(ctx, id.UserID, community.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscribed": subscribed})
}
