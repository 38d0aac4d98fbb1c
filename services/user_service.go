package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/cppla/simpleblog/models"
	"github.com/cppla/simpleblog/utils"
)

// Signup is the input for creating an account.
type Signup struct {
	Name     string
	Email    string
	Password string
}

// UserService manages accounts and keeps their sessions in step.
type UserService struct {
	db         *gorm.DB
	sessions   *SessionManager
	bcryptCost int
}

// NewUserService creates a UserService hashing passwords at bcryptCost.
func NewUserService(db *gorm.DB, sessions *SessionManager, bcryptCost int) *UserService {
	return &UserService{db: db, sessions: sessions, bcryptCost: bcryptCost}
}

// Signup creates a user with a bcrypt-hashed password.
func (u *UserService) Signup(ctx context.Context, in Signup) (*models.User, error) {
	email := normalizeEmail(in.Email)

	var existing int64
	if err := u.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := utils.HashPassword(in.Password, u.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
	}
	if err := u.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Get loads a user by id.
func (u *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := u.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// Delete removes the user and every session it owns in one transaction.
func (u *UserService) Delete(ctx context.Context, id uint) error {
	var revoked []string
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		tokens, err := u.sessions.RevokeAllForUser(ctx, tx, id)
		if err != nil {
			return err
		}
		revoked = tokens
		return nil
	})
	if err != nil {
		return err
	}
	u.sessions.Evict(ctx, revoked...)
	utils.Sugar.Infof("user %d deleted with %d sessions", id, len(revoked))
	return nil
}

// Count returns the number of registered users.
func (u *UserService) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := u.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
