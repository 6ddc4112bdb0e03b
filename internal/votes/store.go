package votes

import (
	"context"
	"errors"
	"fmt"

	"github.com/emilythestrangee/reddit-clone/api/internal/apperrors"
)

// Kind names the type of a votable target.
type Kind string

const (
	KindPost    Kind = "post"
	KindComment Kind = "comment"
)

// Target identifies a votable post or comment.
type Target struct {
	Kind Kind
	ID   uint
}

func PostTarget(id uint) Target    { return Target{Kind: KindPost, ID: id} }
func CommentTarget(id uint) Target { return Target{Kind: KindComment, ID: id} }

func (t Target) Validate() error {
	if t.Kind != KindPost && t.Kind != KindComment {
		return fmt.Errorf("target kind %q: %w", t.Kind, apperrors.ErrInvalidInput)
	}
	if t.ID == 0 {
		return fmt.Errorf("%s id must be positive: %w", t.Kind, apperrors.ErrInvalidInput)
	}
	return nil
}

func (t Target) String() string {
	return fmt.Sprintf("%s %d", t.Kind, t.ID)
}

var (
	// ErrDuplicateVote is returned by Store.Create when a vote for the same
	// (user, target) already exists.
	ErrDuplicateVote = errors.New("votes: duplicate vote")

	// ErrVoteMissing is returned by Store.Update and Store.Delete when the
	// vote they expected is gone.
	ErrVoteMissing = errors.New("votes: vote missing")
)

// Store is the authoritative vote table. Create, Update and Delete are the
// only writers of vote rows in the application.
type Store interface {
	// Transact runs fn against a store bound to a single transaction.
	// Returning an error from fn rolls every write back.
	Transact(ctx context.Context, fn func(tx Store) error) error

	TargetExists(ctx context.Context, target Target) (bool, error)

	// Find returns the user's direction on target, or None.
	Find(ctx context.Context, userID uint, target Target) (Direction, error)

	Create(ctx context.Context, userID uint, target Target, dir Direction) error
	Update(ctx context.Context, userID uint, target Target, dir Direction) error
	Delete(ctx context.Context, userID uint, target Target) error
}

// Reader loads full vote sets for scoring.
type Reader interface {
	// Directions returns every vote cast on each listed target.
	Directions(ctx context.Context, kind Kind, ids []uint) (map[uint][]Direction, error)

	// UserDirections returns the user's direction on each listed target they
	// voted on.
	UserDirections(ctx context.Context, userID uint, kind Kind, ids []uint) (map[uint]Direction, error)
}
