package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cppla/simpleblog/config"
	"github.com/cppla/simpleblog/models"
	"github.com/cppla/simpleblog/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := config.OpenDatabase(config.AppConfig{
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
		LogLevel:   "silent",
	})
	if err != nil {
		t.Fatalf("OpenDatabase failed: %v", err)
	}
	if err := config.Migrate(db, &models.User{}, &models.Session{}, &models.Post{}); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

type testEnv struct {
	db       *gorm.DB
	cache    *utils.Cache
	sessions *SessionManager
	auth     *AuthService
	users    *UserService
	posts    *PostService
}

// newTestEnv wires the services over a fresh database. rc may be nil.
func newTestEnv(t *testing.T, rc *redis.Client) *testEnv {
	t.Helper()

	db := newTestDB(t)
	cache := utils.NewCache(rc)
	sessions := NewSessionManager(db, cache, 72*time.Hour, 10*time.Minute)
	return &testEnv{
		db:       db,
		cache:    cache,
		sessions: sessions,
		auth:     NewAuthService(db, sessions),
		users:    NewUserService(db, sessions, bcrypt.MinCost),
		posts:    NewPostService(db, cache, time.Hour),
	}
}

func (e *testEnv) signup(t *testing.T, name, email, password string) *models.User {
	t.Helper()

	user, err := e.users.Signup(context.Background(), Signup{Name: name, Email: email, Password: password})
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	return user
}
