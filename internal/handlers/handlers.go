package handlers

import (
	"log/slog"

	"github.com/emilythestrangee/reddit-clone/api/internal/auth"
	"github.com/emilythestrangee/reddit-clone/api/internal/feed"
	"github.com/emilythestrangee/reddit-clone/api/internal/repositories"
	"github.com/emilythestrangee/reddit-clone/api/internal/votes"
)

// Deps are the collaborators every handler draws from.
type Deps struct {
	Repos      *repositories.Repositories
	Tokens     *auth.TokenManager
	Reconciler *votes.Reconciler
	Feed       *feed.Assembler
	Logger     *slog.Logger
}

// Handler combines all handler types
type Handler struct {
	Auth      *AuthHandler
	User      *UserHandler
	Community *CommunityHandler
	Post      *PostHandler
	Comment   *CommentHandler
	Vote      *VoteHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(d Deps) *Handler {
	RegisterValidators()
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	return &Handler{
		Auth:      &AuthHandler{users: d.Repos.Users, tokens: d.Tokens, logger: d.Logger},
		User:      &UserHandler{users: d.Repos.Users, posts: d.Repos.Posts, feed: d.Feed, logger: d.Logger},
		Community: &CommunityHandler{communities: d.Repos.Communities, subscriptions: d.Repos.Subscriptions, feed: d.Feed, logger: d.Logger},
		Post:      &PostHandler{posts: d.Repos.Posts, communities: d.Repos.Communities, feed: d.Feed, logger: d.Logger},
		Comment:   &CommentHandler{comments: d.Repos.Comments, posts: d.Repos.Posts, feed: d.Feed, logger: d.Logger},
		Vote:      &VoteHandler{reconciler: d.Reconciler, logger: d.Logger},
	}
}
