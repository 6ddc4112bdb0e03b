package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/reddit-clone/api/internal/apperrors"
	"github.com/emilythestrangee/reddit-clone/api/internal/middleware"
	"github.com/emilythestrangee/reddit-clone/api/internal/models"
	"github.com/emilythestrangee/reddit-clone/api/internal/votes"
)

type VoteHandler struct {
	reconciler *votes.Reconciler
	logger     *slog.Logger
}

// VotePost handles POST /api/posts/:id/vote
func (h *VoteHandler) VotePost(c *gin.Context) {
	h.vote(c, votes.KindPost)
}

// VoteComment handles POST /api/comments/:id/vote
func (h *VoteHandler) VoteComment(c *gin.Context) {
	h.vote(c, votes.KindComment)
}

// vote hands the request to the reconciler, which rejects anonymous callers
// before looking at the id or the direction. Payload errors are therefore
// only reported to signed-in callers.
func (h *VoteHandler) vote(c *gin.Context, kind votes.Kind) {
	actor := middleware.GetIdentity(c)

	// parseID failures leave id at 0, which the reconciler rejects.
	id, _ := parseID(c, "id")

	var input models.VoteRequest
	if err := c.ShouldBindJSON(&input); err != nil && actor.Authenticated() {
		if !errors.Is(err, apperrors.ErrInvalidInput) {
			err = fmt.Errorf("malformed vote payload: %v: %w", err, apperrors.ErrInvalidInput)
		}
		respondError(c, h.logger, err)
		return
	}

	res, err := h.reconciler.Reconcile(c.Request.Context(), actor, votes.Target{Kind: kind, ID: id}, input.Direction)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"direction": res.Direction})
}
