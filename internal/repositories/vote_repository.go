package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/reddit-clone/api/internal/apperrors"
	"github.com/emilythestrangee/reddit-clone/api/internal/database"
	"github.com/emilythestrangee/reddit-clone/api/internal/models"
	"github.com/emilythestrangee/reddit-clone/api/internal/votes"
)

var (
	_ votes.Store  = (*VoteRepository)(nil)
	_ votes.Reader = (*VoteRepository)(nil)
)

// VoteRepository is the vote table behind votes.Reconciler and
// votes.Scorer.
type VoteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

func targetColumn(kind votes.Kind) (string, error) {
	switch kind {
	case votes.KindPost:
		return "post_id", nil
	case votes.KindComment:
		return "comment_id", nil
	default:
		return "", fmt.Errorf("unknown vote target kind %q", kind)
	}
}

func (r *VoteRepository) Transact(ctx context.Context, fn func(tx votes.Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&VoteRepository{db: tx})
	})
}

func (r *VoteRepository) TargetExists(ctx context.Context, target votes.Target) (bool, error) {
	var model any
	switch target.Kind {
	case votes.KindPost:
		model = &models.Post{}
	case votes.KindComment:
		model = &models.Comment{}
	default:
		return false, fmt.Errorf("unknown vote target kind %q", target.Kind)
	}

	q := r.db.WithContext(ctx).Model(model).Where("id = ?", target.ID).Limit(1)
	if r.db.Dialector.Name() != "sqlite" {
		// The row stays locked until the vote commits, so a concurrent delete
		// of the target either runs first or waits for it.
		q = q.Clauses(clause.Locking{Strength: clause.LockingStrengthShare})
	}

	var ids []uint
	if err := q.Pluck("id", &ids).Error; err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

func (r *VoteRepository) Find(ctx context.Context, userID uint, target votes.Target) (votes.Direction, error) {
	col, err := targetColumn(target.Kind)
	if err != nil {
		return votes.None, err
	}

	var vote models.Vote
	err = r.db.WithContext(ctx).
		Where("user_id = ? AND "+col+" = ?", userID, target.ID).
		Take(&vote).Error
	if database.IsNotFound(err) {
		return votes.None, nil
	}
	if err != nil {
		return votes.None, err
	}
	return votes.Direction(vote.Direction), nil
}

func (r *VoteRepository) Create(ctx context.Context, userID uint, target votes.Target, dir votes.Direction) error {
	vote := models.Vote{UserID: userID, Direction: string(dir)}
	id := target.ID
	switch target.Kind {
	case votes.KindPost:
		vote.PostID = &id
	case votes.KindComment:
		vote.CommentID = &id
	default:
		return fmt.Errorf("unknown vote target kind %q", target.Kind)
	}

	err := r.db.WithContext(ctx).Create(&vote).Error
	switch {
	case database.IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", votes.ErrDuplicateVote, err)
	case database.IsForeignKeyViolation(err):
		return fmt.Errorf("%s is gone: %w", target, apperrors.ErrNotFound)
	}
	return err
}

func (r *VoteRepository) Update(ctx context.Context, userID uint, target votes.Target, dir votes.Direction) error {
	col, err := targetColumn(target.Kind)
	if err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("user_id = ? AND "+col+" = ?", userID, target.ID).
		Update("direction", string(dir))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return votes.ErrVoteMissing
	}
	return nil
}

func (r *VoteRepository) Delete(ctx context.Context, userID uint, target votes.Target) error {
	col, err := targetColumn(target.Kind)
	if err != nil {
		return err
	}

	res := r.db.WithContext(ctx).
		Where("user_id = ? AND "+col+" = ?", userID, target.ID).
		Delete(&models.Vote{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return votes.ErrVoteMissing
	}
	return nil
}

type directionRow struct {
	TargetID  uint
	Direction string
}

func (r *VoteRepository) Directions(ctx context.Context, kind votes.Kind, ids []uint) (map[uint][]votes.Direction, error) {
	out := make(map[uint][]votes.Direction, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	col, err := targetColumn(kind)
	if err != nil {
		return nil, err
	}

	var rows []directionRow
	err = r.db.WithContext(ctx).Model(&models.Vote{}).
		Select(col+" AS target_id, direction").
		Where(col+" IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.TargetID] = append(out[row.TargetID], votes.Direction(row.Direction))
	}
	return out, nil
}

func (r *VoteRepository) UserDirections(ctx context.Context, userID uint, kind votes.Kind, ids []uint) (map[uint]votes.Direction, error) {
	out := make(map[uint]votes.Direction, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	col, err := targetColumn(kind)
	if err != nil {
		return nil, err
	}

	var rows []directionRow
	err = r.db.WithContext(ctx).Model(&models.Vote{}).
		Select(col+" AS target_id, direction").
		Where("user_id = ? AND "+col+" IN ?", userID, ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.TargetID] = votes.Direction(row.Direction)
	}
	return out, nil
}
