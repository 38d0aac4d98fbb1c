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

// AuthService checks credentials at login and gates protected requests by access token.
type AuthService struct {
	db       *gorm.DB
	sessions *SessionManager
}

// NewAuthService creates an AuthService that issues sessions through sessions.
func NewAuthService(db *gorm.DB, sessions *SessionManager) *AuthService {
	return &AuthService{db: db, sessions: sessions}
}

// Login verifies email and password and issues a fresh session.
func (a *AuthService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	var user models.User
	err := a.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.BurnPasswordCheck(password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	session, err := a.sessions.Create(ctx, &user)
	if err != nil {
		return nil, err
	}
	utils.Sugar.Debugf("user %d logged in, session %d issued", user.ID, session.ID)
	return session, nil
}

// Authorize resolves token to the user who owns it.
func (a *AuthService) Authorize(ctx context.Context, token string) (*models.User, error) {
	session, err := a.sessions.FindByToken(ctx, token)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	var user models.User
	err = a.db.WithContext(ctx).First(&user, session.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}
	return &user, nil
}

// Logout revokes the session behind token.
func (a *AuthService) Logout(ctx context.Context, token string) error {
	err := a.sessions.Revoke(ctx, token)
	if errors.Is(err, ErrSessionNotFound) {
		return ErrUnauthorized
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
