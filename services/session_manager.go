package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cppla/simpleblog/models"
	"github.com/cppla/simpleblog/utils"
)

const (
	sessionCachePrefix = "session:token:"
	maxTokenAttempts   = 3
)

// SessionManager issues, looks up and revokes opaque access tokens.
type SessionManager struct {
	db       *gorm.DB
	cache    *utils.Cache
	ttl      time.Duration
	cacheTTL time.Duration

	now      func() time.Time
	newToken func() string
}

// NewSessionManager creates a manager. ttl <= 0 issues sessions that never expire;
// cache may be nil.
func NewSessionManager(db *gorm.DB, cache *utils.Cache, ttl, cacheTTL time.Duration) *SessionManager {
	return &SessionManager{
		db:       db,
		cache:    cache,
		ttl:      ttl,
		cacheTTL: cacheTTL,
		now:      time.Now,
		newToken: uuid.NewString,
	}
}

// Create issues a new session for user. Every call inserts a new row.
func (m *SessionManager) Create(ctx context.Context, user *models.User) (*models.Session, error) {
	if user == nil || user.ID == 0 {
		return nil, errors.New("create session: user is not persisted")
	}

	var lastErr error
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		session := models.Session{
			AccessToken: m.newToken(),
			UserID:      user.ID,
		}
		if m.ttl > 0 {
			expiresAt := m.now().Add(m.ttl)
			session.ExpiresAt = &expiresAt
		}

		err := m.db.WithContext(ctx).Create(&session).Error
		if err == nil {
			return &session, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create session: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("create session: token collided %d times: %w", maxTokenAttempts, lastErr)
}

// FindByToken returns the live session whose token equals token exactly.
// Unknown and expired tokens yield ErrSessionNotFound.
func (m *SessionManager) FindByToken(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	now := m.now()

	var cached models.Session
	if m.cache.GetJSON(ctx, sessionCachePrefix+token, &cached) && tokensEqual(cached.AccessToken, token) {
		if cached.Expired(now) {
			m.cache.Delete(ctx, sessionCachePrefix+token)
			return nil, ErrSessionNotFound
		}
		return &cached, nil
	}

	var session models.Session
	err := m.db.WithContext(ctx).Where("access_token = ?", token).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	// The column collation may be case-insensitive; only a byte-exact token counts.
	if !tokensEqual(session.AccessToken, token) {
		return nil, ErrSessionNotFound
	}
	if session.Expired(now) {
		if err := m.db.WithContext(ctx).Delete(&models.Session{}, session.ID).Error; err != nil {
			utils.Sugar.Warnf("deleting expired session %d failed: %v", session.ID, err)
		}
		return nil, ErrSessionNotFound
	}

	m.remember(ctx, &session, now)
	return &session, nil
}

// remember caches a session loaded from the database. A revoke that lands
// between the load and this write wins.
func (m *SessionManager) remember(ctx context.Context, s *models.Session, now time.Time) {
	m.cache.SetJSONGuarded(ctx, sessionCachePrefix+s.AccessToken, s, m.cacheTTLFor(s, now))
}

// Revoke deletes the session for token. It returns ErrSessionNotFound when nothing was deleted.
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return ErrSessionNotFound
	}
	res := m.db.WithContext(ctx).Where("access_token = ?", token).Delete(&models.Session{})
	m.cache.Invalidate(ctx, sessionCachePrefix+token)
	if res.Error != nil {
		return fmt.Errorf("revoke session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// RevokeAllForUser deletes every session of userID inside tx and returns the revoked tokens.
// Callers evict them with Evict once tx has committed.
func (m *SessionManager) RevokeAllForUser(ctx context.Context, tx *gorm.DB, userID uint) ([]string, error) {
	var tokens []string
	if err := tx.WithContext(ctx).Model(&models.Session{}).Where("user_id = ?", userID).Pluck("access_token", &tokens).Error; err != nil {
		return nil, fmt.Errorf("list user sessions: %w", err)
	}
	if err := tx.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Session{}).Error; err != nil {
		return nil, fmt.Errorf("delete user sessions: %w", err)
	}
	return tokens, nil
}

// Evict drops cached lookups for tokens.
func (m *SessionManager) Evict(ctx context.Context, tokens ...string) {
	keys := make([]string, 0, len(tokens))
	for _, t := range tokens {
		keys = append(keys, sessionCachePrefix+t)
	}
	m.cache.Invalidate(ctx, keys...)
}

// CountForUser returns how many sessions userID currently holds, expired ones included.
func (m *SessionManager) CountForUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	if err := m.db.WithContext(ctx).Model(&models.Session{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

// PurgeExpired deletes sessions whose expiry has passed and reports how many were removed.
func (m *SessionManager) PurgeExpired(ctx context.Context) (int64, error) {
	res := m.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", m.now()).
		Delete(&models.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (m *SessionManager) cacheTTLFor(s *models.Session, now time.Time) time.Duration {
	ttl := m.cacheTTL
	if s.ExpiresAt != nil {
		if left := s.ExpiresAt.Sub(now); ttl <= 0 || left < ttl {
			ttl = left
		}
	}
	return ttl
}

func tokensEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
