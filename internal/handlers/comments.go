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

type CommentHandler struct {
	comments repositories.CommentRepository
	posts    repositories.PostRepository
	feed     *feed.Assembler
	logger   *slog.Logger
}

// GetComments returns the threaded comments of ?postId=
func (h *CommentHandler) GetComments(c *gin.Context) {
	postID, err := queryID(c, "postId")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if postID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "postId is required"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.posts.FindByID(ctx, postID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	comments, err := h.comments.ListByPost(ctx, postID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	tree, err := h.feed.CommentTree(ctx, comments, middleware.GetIdentity(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

// CreateComment adds a top-level comment or a reply on the same post
func (h *CommentHandler) CreateComment(c *gin.Context) {
	id := middleware.GetIdentity(c)
	if !id.Authenticated() {
		respondError(c, h.logger, apperrors.ErrUnauthorized)
		return
	}

	var input models.CreateCommentRequest
	if !bindJSON(c, &input) {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.posts.FindByID(ctx, input.PostID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	if input.ParentID != nil {
		parent, err := h.comments.FindByID(ctx, *input.ParentID)
		if err != nil {
			respondError(c, h.logger, fmt.Errorf("parent %w", err))
			return
		}
		if parent.PostID != input.PostID {
			respondError(c, h.logger, fmt.Errorf("parent comment belongs to another post: %w", apperrors.ErrInvalidInput))
			return
		}
	}

	comment := models.Comment{
		Content:  input.Content,
		AuthorID: id.UserID,
		PostID:   input.PostID,
		ParentID: input.ParentID,
	}
	if err := h.comments.Create(ctx, &comment); err != nil {
		respondError(c, h.logger, err)
		return
	}

	view, err := h.feed.Comment(ctx, &comment, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// UpdateComment edits the caller's own comment
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	comment, ok := h.ownComment(c, "edit")
	if !ok {
		return
	}

	var input models.UpdateCommentRequest
	if !bindJSON(c, &input) {
		return
	}

	ctx := c.Request.Context()
	if err := h.comments.UpdateContent(ctx, comment, input.Content); err != nil {
		respondError(c, h.logger, err)
		return
	}

	view, err := h.feed.Comment(ctx, comment, middleware.GetIdentity(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DeleteComment removes the caller's own comment and its replies
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	comment, ok := h.ownComment(c, "delete")
	if !ok {
		return
	}

	removed, err := h.comments.DeleteThread(c.Request.Context(), comment.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully", "deleted": removed})
}

func (h *CommentHandler) ownComment(c *gin.Context, verb string) (*models.Comment, bool) {
	id := middleware.GetIdentity(c)
	if !id.Authenticated() {
		respondError(c, h.logger, apperrors.ErrUnauthorized)
		return nil, false
	}

	commentID, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.logger, err)
		return nil, false
	}

	comment, err := h.comments.FindByID(c.Request.Context(), commentID)
	if err != nil {
		respondError(c, h.logger, err)
		return nil, false
	}

	if comment.AuthorID != id.UserID {
		respondError(c, h.logger, fmt.Errorf("you can only %s your own comments: %w", verb, apperrors.ErrForbidden))
		return nil, false
	}
	return comment, true
}
