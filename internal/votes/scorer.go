package votes

import (
	"context"
	"fmt"

	"github.com/emilythestrangee/reddit-clone/api/internal/auth"
)

// Scorer derives scores and viewer state from stored votes.
type Scorer struct {
	reader Reader
}

func NewScorer(reader Reader) *Scorer {
	return &Scorer{reader: reader}
}

// Score recomputes target's score from its full vote set.
func (s *Scorer) Score(ctx context.Context, target Target) (int, error) {
	scores, err := s.Scores(ctx, target.Kind, []uint{target.ID})
	if err != nil {
		return 0, err
	}
	return scores[target.ID], nil
}

// ViewerDirection returns the viewer's direction on target. Anonymous
// viewers always get None.
func (s *Scorer) ViewerDirection(ctx context.Context, target Target, viewer *auth.Identity) (Direction, error) {
	dirs, err := s.ViewerDirections(ctx, target.Kind, []uint{target.ID}, viewer)
	if err != nil {
		return None, err
	}
	return dirs[target.ID], nil
}

// Scores returns the score of every listed target, including zero for
// targets nobody voted on.
func (s *Scorer) Scores(ctx context.Context, kind Kind, ids []uint) (map[uint]int, error) {
	scores := make(map[uint]int, len(ids))
	if len(ids) == 0 {
		return scores, nil
	}

	sets, err := s.reader.Directions(ctx, kind, ids)
	if err != nil {
		return nil, fmt.Errorf("loading %s votes: %w", kind, err)
	}
	for _, id := range ids {
		scores[id] = Tally(sets[id])
	}
	return scores, nil
}

// ViewerDirections returns the viewer's direction per target; targets the
// viewer has not voted on are absent.
func (s *Scorer) ViewerDirections(ctx context.Context, kind Kind, ids []uint, viewer *auth.Identity) (map[uint]Direction, error) {
	if !viewer.Authenticated() || len(ids) == 0 {
		return map[uint]Direction{}, nil
	}

	dirs, err := s.reader.UserDirections(ctx, viewer.UserID, kind, ids)
	if err != nil {
		return nil, fmt.Errorf("loading viewer %s votes: %w", kind, err)
	}
	return dirs, nil
}
