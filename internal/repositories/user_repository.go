package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/emilythestrangee/reddit-clone/api/internal/apperrors"
	"github.com/emilythestrangee/reddit-clone/api/internal/database"
	"github.com/emilythestrangee/reddit-clone/api/internal/models"
)

// UserRepository defines the interface for user operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Taken(ctx context.Context, email, username string) (emailTaken, usernameTaken bool, err error)
	UpdateProfile(ctx context.Context, id uint, req models.UpdateProfileRequest) (*models.User, error)
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("email or username already registered: %w", apperrors.ErrInvalidInput)
	}
	return err
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, lookupErr(err, "user %d", id)
	}
	return &user, nil
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, lookupErr(err, "user with email")
	}
	return &user, nil
}

func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, lookupErr(err, "user %q", username)
	}
	return &user, nil
}

func (r *GormUserRepository) Taken(ctx context.Context, email, username string) (bool, bool, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Select("email", "username").
		Where("email = ? OR username = ?", email, username).
		Find(&users).Error
	if err != nil {
		return false, false, err
	}

	var emailTaken, usernameTaken bool
	for _, u := range users {
		emailTaken = emailTaken || u.Email == email
		usernameTaken = usernameTaken || u.Username == username
	}
	return emailTaken, usernameTaken, nil
}

func (r *GormUserRepository) UpdateProfile(ctx context.Context, id uint, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Bio != "" {
		updates["bio"] = req.Bio
	}
	if req.Avatar != "" {
		updates["avatar"] = req.Avatar
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := r.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("updating user %d: %w", id, err)
	}
	return r.FindByID(ctx, id)
}
