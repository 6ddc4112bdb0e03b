package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/reddit-clone/api/internal/apperrors"
	"github.com/emilythestrangee/reddit-clone/api/internal/feed"
	"github.com/emilythestrangee/reddit-clone/api/internal/middleware"
	"github.com/emilythestrangee/reddit-clone/api/internal/models"
	"github.com/emilythestrangee/reddit-clone/api/internal/repositories"
)

type PostHandler struct {
	posts       repositories.PostRepository
	communities repositories.CommunityRepository
	feed        *feed.Assembler
	logger      *slog.Logger
}

// GetPosts returns posts newest first, optionally for one community
func (h *PostHandler) GetPosts(c *gin.Context) {
	communityID, err := queryID(c, "communityId")
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

	ctx := c.Request.Context()
	posts, err := h.posts.List(ctx, repositories.PostFilter{
		CommunityID: communityID,
		Page:        repositories.NewPage(limit, skip),
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
	c.JSON(http.StatusOK, views)
}

// GetPost returns a single post by ID
func (h *PostHandler) GetPost(c *gin.Context) {
	postID, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	ctx := c.Request.Context()
	post, err := h.posts.FindByID(ctx, postID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	view, err := h.feed.Post(ctx, post, middleware.GetIdentity(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CreatePost creates a new post in an existing community
func (h *PostHandler) CreatePost(c *gin.Context) {
	id := middleware.GetIdentity(c)
	if !id.Authenticated() {
		respondError(c, h.logger, apperrors.ErrUnauthorized)
		return
	}

	var input models.CreatePostRequest
	if !bindJSON(c, &input) {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.communities.FindByID(ctx, input.CommunityID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	post := models.Post{
		Title:       input.Title,
		Content:     input.Content,
		ImageURL:    input.ImageURL,
		LinkURL:     input.LinkURL,
		AuthorID:    id.UserID,
		CommunityID: input.CommunityID,
	}
	if err := h.posts.Create(ctx, &post); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.respondPost(c, http.StatusCreated, post.ID)
}

// UpdatePost edits the title or content of the caller's own post
func (h *PostHandler) UpdatePost(c *gin.Context) {
	post, ok := h.ownPost(c, "edit")
	if !ok {
		return
	}

	var input models.UpdatePostRequest
	if !bindJSON(c, &input) {
		return
	}

	if err := h.posts.Update(c.Request.Context(), post, input); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.respondPost(c, http.StatusOK, post.ID)
}

// DeletePost removes the caller's own post with its comments and votes
func (h *PostHandler) DeletePost(c *gin.Context) {
	post, ok := h.ownPost(c, "delete")
	if !ok {
		return
	}

	if err := h.posts.Delete(c.Request.Context(), post.ID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// ownPost loads the :id post and checks the caller wrote it.
func (h *PostHandler) ownPost(c *gin.Context, verb string) (*models.Post, bool) {
	id := middleware.GetIdentity(c)
	if !id.Authenticated() {
		respondError(c, h.logger, apperrors.ErrUnauthorized)
		return nil, false
	}

	postID, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return nil, false
	}

	post, err := h.posts.FindByID(c.Request.Context(), postID)
	if err != nil {
		respondError(c, h.logger, err)
		return nil, false
	}

	// Check ownership
	if post.AuthorID != id.UserID {
		respondError(c, h.logger, fmt.Errorf("you can only %s your own posts: %w", verb, apperrors.ErrForbidden))
		return nil, false
	}
	return post, true
}

// respondPost reloads the post and writes its scored view.
func (h *PostHandler) respondPost(c *gin.Context, status int, postID uint) {
	ctx := c.Request.Context()
	post, err := h.posts.FindByID(ctx, postID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	view, err := h.feed.Post(ctx, post, middleware.GetIdentity(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(status, view)
}
