// Package feed turns stored posts, comments and communities into the views
// the API returns, with scores and the viewer's own votes attached.
package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/emilythestrangee/reddit-clone/api/internal/auth"
	"github.com/emilythestrangee/reddit-clone/api/internal/models"
	"github.com/emilythestrangee/reddit-clone/api/internal/repositories"
	"github.com/emilythestrangee/reddit-clone/api/internal/votes"
)

type PostView struct {
	ID           uint                    `json:"id"`
	Title        string                  `json:"title"`
	Content      string                  `json:"content"`
	ImageURL     string                  `json:"imageUrl,omitempty"`
	LinkURL      string                  `json:"linkUrl,omitempty"`
	Kind         string                  `json:"kind"`
	Author       models.UserSummary      `json:"author"`
	Community    models.CommunitySummary `json:"community"`
	Score        int                     `json:"score"`
	UserVote     votes.Direction         `json:"userVote"`
	CommentCount int64                   `json:"commentCount"`
	CreatedAt    time.Time               `json:"createdAt"`
	UpdatedAt    time.Time               `json:"updatedAt"`
}

type CommentView struct {
	ID         uint               `json:"id"`
	Content    string             `json:"content"`
	Author     models.UserSummary `json:"author"`
	PostID     uint               `json:"postId"`
	ParentID   *uint              `json:"parentId"`
	Score      int                `json:"score"`
	UserVote   votes.Direction    `json:"userVote"`
	ReplyCount int                `json:"replyCount"`
	Replies    []*CommentView     `json:"replies"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

type CommunityView struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	CreatorID       uint      `json:"creatorId"`
	PostCount       int64     `json:"postCount"`
	SubscriberCount int64     `json:"subscriberCount"`
	IsSubscribed    bool      `json:"isSubscribed"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Assembler builds views. Every score it reports is recomputed from the
// stored votes of the listed targets.
type Assembler struct {
	scorer        *votes.Scorer
	posts         repositories.PostRepository
	communities   repositories.CommunityRepository
	subscriptions repositories.SubscriptionRepository
}

func NewAssembler(scorer *votes.Scorer, repos *repositories.Repositories) *Assembler {
	return &Assembler{
		scorer:        scorer,
		posts:         repos.Posts,
		communities:   repos.Communities,
		subscriptions: repos.Subscriptions,
	}
}

// Posts returns one view per post, in the given order.
func (a *Assembler) Posts(ctx context.Context, posts []models.Post, viewer *auth.Identity) ([]PostView, error) {
	views := make([]PostView, 0, len(posts))
	if len(posts) == 0 {
		return views, nil
	}

	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	scores, err := a.scorer.Scores(ctx, votes.KindPost, ids)
	if err != nil {
		return nil, err
	}
	mine, err := a.scorer.ViewerDirections(ctx, votes.KindPost, ids, viewer)
	if err != nil {
		return nil, err
	}
	counts, err := a.posts.CommentCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, p := range posts {
		views = append(views, PostView{
			ID:           p.ID,
			Title:        p.Title,
			Content:      p.Content,
			ImageURL:     p.ImageURL,
			LinkURL:      p.LinkURL,
			Kind:         p.Kind(),
			Author:       p.Author.Summary(),
			Community:    p.Community.Summary(),
			Score:        scores[p.ID],
			UserVote:     mine[p.ID],
			CommentCount: counts[p.ID],
			CreatedAt:    p.CreatedAt,
			UpdatedAt:    p.UpdatedAt,
		})
	}
	return views, nil
}

func (a *Assembler) Post(ctx context.Context, post *models.Post, viewer *auth.Identity) (PostView, error) {
	views, err := a.Posts(ctx, []models.Post{*post}, viewer)
	if err != nil {
		return PostView{}, err
	}
	return views[0], nil
}

// CommentTree threads comments of one post. Top-level comments come newest
// first; replies at every depth stay oldest first. A comment whose parent
// is not in the list is treated as top-level.
func (a *Assembler) CommentTree(ctx context.Context, comments []models.Comment, viewer *auth.Identity) ([]*CommentView, error) {
	nodes, err := a.commentViews(ctx, comments, viewer)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]*CommentView, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	var roots []*CommentView
	for _, n := range nodes {
		if n.ParentID != nil {
			if parent, ok := byID[*n.ParentID]; ok && parent != n {
				parent.Replies = append(parent.Replies, n)
				parent.ReplyCount++
				continue
			}
		}
		roots = append(roots, n)
	}

	tree := make([]*CommentView, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		tree = append(tree, roots[i])
	}
	return tree, nil
}

// Comment returns a single comment view without replies.
func (a *Assembler) Comment(ctx context.Context, comment *models.Comment, viewer *auth.Identity) (*CommentView, error) {
	nodes, err := a.commentViews(ctx, []models.Comment{*comment}, viewer)
	if err != nil {
		return nil, err
	}
	return nodes[0], nil
}

func (a *Assembler) commentViews(ctx context.Context, comments []models.Comment, viewer *auth.Identity) ([]*CommentView, error) {
	ids := make([]uint, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}

	scores, err := a.scorer.Scores(ctx, votes.KindComment, ids)
	if err != nil {
		return nil, err
	}
	mine, err := a.scorer.ViewerDirections(ctx, votes.KindComment, ids, viewer)
	if err != nil {
		return nil, err
	}

	nodes := make([]*CommentView, len(comments))
	for i, c := range comments {
		nodes[i] = &CommentView{
			ID:        c.ID,
			Content:   c.Content,
			Author:    c.Author.Summary(),
			PostID:    c.PostID,
			ParentID:  c.ParentID,
			Score:     scores[c.ID],
			UserVote:  mine[c.ID],
			Replies:   []*CommentView{},
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		}
	}
	return nodes, nil
}

// Communities attaches post and subscriber counts and the viewer's
// subscription state.
func (a *Assembler) Communities(ctx context.Context, communities []models.Community, viewer *auth.Identity) ([]CommunityView, error) {
	views := make([]CommunityView, 0, len(communities))
	if len(communities) == 0 {
		return views, nil
	}

	ids := make([]uint, len(communities))
	for i, c := range communities {
		ids[i] = c.ID
	}

	stats, err := a.communities.Stats(ctx, ids)
	if err != nil {
		return nil, err
	}

	subscribed := map[uint]bool{}
	if viewer.Authenticated() {
		mine, err := a.subscriptions.CommunityIDs(ctx, viewer.UserID)
		if err != nil {
			return nil, fmt.Errorf("loading subscriptions: %w", err)
		}
		for _, id := range mine {
			subscribed[id] = true
		}
	}

	for _, c := range communities {
		views = append(views, CommunityView{
			ID:              c.ID,
			Name:            c.Name,
			Title:           c.Title,
			Description:     c.Description,
			CreatorID:       c.CreatorID,
			PostCount:       stats[c.ID].Posts,
			SubscriberCount: stats[c.ID].Subscribers,
			IsSubscribed:    subscribed[c.ID],
			CreatedAt:       c.CreatedAt,
		})
	}
	return views, nil
}

func (a *Assembler) Community(ctx context.Context, community *models.Community, viewer *auth.Identity) (CommunityView, error) {
	views, err := a.Communities(ctx, []models.Community{*community}, viewer)
	if err != nil {
		return CommunityView{}, err
	}
	return views[0], nil
}
