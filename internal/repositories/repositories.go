// Package repositories holds the gorm-backed data access for every
// aggregate. Each repository is an interface with a gorm implementation so
// handlers and tests can swap stores.
package repositories

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/emilythestrangee/reddit-clone/api/internal/apperrors"
	"github.com/emilythestrangee/reddit-clone/api/internal/database"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page is a limit/offset window over a listing.
type Page struct {
	Limit int
	Skip  int
}

// NewPage clamps limit into [1, MaxLimit] (DefaultLimit when unset) and
// skip to be non-negative.
func NewPage(limit, skip int) Page {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if skip < 0 {
		skip = 0
	}
	return Page{Limit: limit, Skip: skip}
}

func (p Page) apply(db *gorm.DB) *gorm.DB {
	p = NewPage(p.Limit, p.Skip)
	return db.Limit(p.Limit).Offset(p.Skip)
}

// Repositories bundles every repository over one connection.
type Repositories struct {
	Users         UserRepository
	Communities   CommunityRepository
	Subscriptions SubscriptionRepository
	Posts         PostRepository
	Comments      CommentRepository
	Votes         *VoteRepository
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:         NewGormUserRepository(db),
		Communities:   NewGormCommunityRepository(db),
		Subscriptions: NewGormSubscriptionRepository(db),
		Posts:         NewGormPostRepository(db),
		Comments:      NewGormCommentRepository(db),
		Votes:         NewVoteRepository(db),
	}
}

// lookupErr maps a missing record to apperrors.ErrNotFound.
func lookupErr(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	what := fmt.Sprintf(format, args...)
	if database.IsNotFound(err) {
		return fmt.Errorf("%s: %w", what, apperrors.ErrNotFound)
	}
	return fmt.Errorf("loading %s: %w", what, err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a lower-cased LIKE pattern matching s anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// countBy runs a grouped COUNT(*) and returns key -> count.
func countBy(db *gorm.DB, model any, column string, ids []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []struct {
		GroupID uint
		Total   int64
	}
	err := db.Model(model).
		Select(column+" AS group_id, COUNT(*) AS total").
		Where(column+" IN ?", ids).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.GroupID] = row.Total
	}
	return out, nil
}
