package repositories

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/emilythestrangee/reddit-clone/api/internal/config"
	"github.com/emilythestrangee/reddit-clone/api/internal/database"
	"github.com/emilythestrangee/reddit-clone/api/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	svc, err := database.New(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "repo.db"),
	}, nil, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	require.NoError(t, svc.Migrate())
	return svc.GetDB()
}

type fixture struct {
	db        *gorm.DB
	repos     *Repositories
	user      *models.User
	community *models.Community
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{db: db, repos: New(db)}
	f.user = f.addUser(t, "alice")
	f.community = &models.Community{Name: "golang", Title: "The Go language", CreatorID: f.user.ID}
	require.NoError(t, f.repos.Communities.Create(context.Background(), f.community))
	return f
}

func (f *fixture) addUser(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Name:     username,
		Password: "hash",
	}
	require.NoError(t, f.repos.Users.Create(context.Background(), u))
	return u
}

func (f *fixture) addPost(t *testing.T, title string) *models.Post {
	t.Helper()
	p := &models.Post{Title: title, AuthorID: f.user.ID, CommunityID: f.community.ID}
	require.NoError(t, f.repos.Posts.Create(context.Background(), p))
	return p
}

func (f *fixture) addComment(t *testing.T, postID uint, parentID *uint) *models.Comment {
	t.Helper()
	c := &models.Comment{Content: "reply", AuthorID: f.user.ID, PostID: postID, ParentID: parentID}
	require.NoError(t, f.repos.Comments.Create(context.Background(), c))
	return c
}

func (f *fixture) countVotes(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Vote{}).Count(&n).Error)
	return n
}

// beforeInsert runs fn inside the transaction of every insert into table,
// just before the row is written. fn receives a session on the same
// transaction and is not re-entered by its own inserts.
func (f *fixture) beforeInsert(t *testing.T, table string, fn func(tx *gorm.DB)) {
	t.Helper()
	var running bool
	err := f.db.Callback().Create().Before("gorm:create").Register("test:before_insert_"+table, func(tx *gorm.DB) {
		if running || tx.Statement.Table != table {
			return
		}
		running = true
		defer func() { running = false }()
		fn(tx.Session(&gorm.Session{NewDB: true}))
	})
	require.NoError(t, err)
}
