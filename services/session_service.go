package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coldenflo/ICeducation/database"
	"github.com/coldenflo/ICeducation/model"
	"github.com/coldenflo/ICeducation/utils/auth"
	"go.uber.org/zap"
)

// SessionKeyPrefix namespaces session records in the key-value store
const SessionKeyPrefix = "user:"

// SessionService remembers who is signed in. The bearer token is a signed
// JWT; its JTI names the "user:<jti>" record holding the public user, so
// deleting the record signs the session out even while the token is valid.
type SessionService struct {
	kv  database.KeyValue
	jwt *auth.JWTManager
	log *zap.Logger
	now func() time.Time
}

func NewSessionService(kv database.KeyValue, jwt *auth.JWTManager, logger *zap.Logger) *SessionService {
	return &SessionService{
		kv:  kv,
		jwt: jwt,
		log: logger.Named("session"),
		now: time.Now,
	}
}

// Start opens a session for user and returns its bearer token
func (s *SessionService) Start(ctx context.Context, user model.PublicUser) (string, time.Time, error) {
	token, jti, expiresAt, err := s.jwt.GenerateSessionToken(user.Username, user.IsAdmin)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}

	raw, err := json.Marshal(model.SessionUser{PublicUser: user, ExpiresAt: expiresAt.UTC()})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("encode session: %w", err)
	}
	if err := s.kv.Set(ctx, SessionKeyPrefix+jti, raw); err != nil {
		return "", time.Time{}, fmt.Errorf("store session: %w", err)
	}

	s.log.Info("session started", zap.String("username", user.Username))
	return token, expiresAt, nil
}

// Current returns the user behind token when the session is still open
func (s *SessionService) Current(ctx context.Context, token string) (model.PublicUser, bool) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return model.PublicUser{}, false
	}

	key := SessionKeyPrefix + claims.ID
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, database.ErrKeyNotFound) {
			s.log.Error("session read failed", zap.Error(err))
		}
		return model.PublicUser{}, false
	}

	var session model.SessionUser
	if err := json.Unmarshal(raw, &session); err != nil {
		s.log.Warn("session record unreadable, dropping", zap.Error(err))
		_ = s.kv.Delete(ctx, key)
		return model.PublicUser{}, false
	}
	if session.Expired(s.now()) {
		_ = s.kv.Delete(ctx, key)
		return model.PublicUser{}, false
	}

	return session.PublicUser, true
}

// End signs the session out. Unknown or invalid tokens are ignored.
func (s *SessionService) End(ctx context.Context, token string) error {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil
	}
	if err := s.kv.Delete(ctx, SessionKeyPrefix+claims.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.log.Info("session ended", zap.String("username", claims.Username))
	return nil
}

// SweepExpired deletes expired and unreadable session records and reports
// how many were removed
func (s *SessionService) SweepExpired(ctx context.Context) (int, error) {
	keys, err := s.kv.Keys(ctx, SessionKeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("list sessions: %w", err)
	}

	now := s.now()
	removed := 0
	for _, key := range keys {
		if !strings.HasPrefix(key, SessionKeyPrefix) {
			continue
		}
		raw, err := s.kv.Get(ctx, key)
		if errors.Is(err, database.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("read session %s: %w", key, err)
		}

		var session model.SessionUser
		if err := json.Unmarshal(raw, &session); err == nil && !session.Expired(now) {
			continue
		}
		if err := s.kv.Delete(ctx, key); err != nil {
			return removed, fmt.Errorf("delete session %s: %w", key, err)
		}
		removed++
	}
	return removed, nil
}
