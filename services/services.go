// Package services holds the blog's business logic: sessions, authentication, users and posts.
package services

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/cppla/simpleblog/config"
	"github.com/cppla/simpleblog/utils"
)

// Services bundles the wired services shared by the router and background jobs.
type Services struct {
	Sessions *SessionManager
	Auth     *AuthService
	Users    *UserService
	Posts    *PostService
}

// New wires every service over db. rc may be nil, which disables caching.
func New(db *gorm.DB, rc *redis.Client, cfg config.AppConfig) *Services {
	cache := utils.NewCache(rc)
	sessions := NewSessionManager(db, cache, cfg.SessionTTL(), cfg.SessionCacheTTL())
	return &Services{
		Sessions: sessions,
		Auth:     NewAuthService(db, sessions),
		Users:    NewUserService(db, sessions, cfg.BcryptCost),
		Posts:    NewPostService(db, cache, cfg.PostCacheTTL()),
	}
}
