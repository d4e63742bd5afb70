// Package session owns the on-disk representation of a browser context's session.
// Store is the only code path that reads or writes session keys.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/FACorreiaa/rms-templui/internal/app/models"
	"github.com/FACorreiaa/rms-templui/internal/pkg/storage"
)

// Recognised session keys.
const (
	KeyAuthToken  = "rms_auth_token"
	KeyUserRole   = "rms_user_role"
	KeyUserInfo   = "rms_user_info"
	KeyRememberMe = "rms_remember_me"
)

// Namespace is the storage region session keys live in.
const Namespace = "session"

var ErrUnknownKey = errors.New("unrecognised session key")

var allKeys = []string{KeyAuthToken, KeyUserRole, KeyUserInfo, KeyRememberMe}

func known(key string) bool {
	for _, k := range allKeys {
		if k == key {
			return true
		}
	}
	return false
}

type Store struct {
	kv     storage.KV
	logger *zap.Logger
}

func NewStore(kv storage.KV, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{kv: kv, logger: logger}
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if !known(key) {
		return "", false, fmt.Errorf("%s: %w", key, ErrUnknownKey)
	}
	return s.kv.Get(ctx, key)
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if !known(key) {
		return fmt.Errorf("%s: %w", key, ErrUnknownKey)
	}
	return s.kv.Set(ctx, key, value)
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if !known(key) {
		return fmt.Errorf("%s: %w", key, ErrUnknownKey)
	}
	return s.kv.Delete(ctx, key)
}

// Token returns the persisted auth token, or "" when there is none or storage fails.
func (s *Store) Token(ctx context.Context) string {
	token, _, err := s.kv.Get(ctx, KeyAuthToken)
	if err != nil {
		s.logger.Warn("Failed to read auth token", zap.Error(err))
		return ""
	}
	return token
}

// Load reads the persisted session. A partial record (token without a valid role or the
// reverse) is reported as absent and its stray keys are removed.
func (s *Store) Load(ctx context.Context) (models.Session, bool, error) {
	token, hasToken, err := s.kv.Get(ctx, KeyAuthToken)
	if err != nil {
		return models.Session{}, false, err
	}
	rawRole, hasRole, err := s.kv.Get(ctx, KeyUserRole)
	if err != nil {
		return models.Session{}, false, err
	}
	if !hasToken && !hasRole {
		return models.Session{}, false, nil
	}

	role := models.Role(rawRole)
	if token == "" || !role.Valid() {
		s.logger.Warn("Discarding partial session",
			zap.Bool("has_token", hasToken),
			zap.String("role", rawRole))
		if err := s.Clear(ctx); err != nil {
			s.logger.Warn("Failed to remove partial session", zap.Error(err))
		}
		return models.Session{}, false, nil
	}

	sess := models.Session{Token: token, Role: role}

	if raw, ok, err := s.kv.Get(ctx, KeyUserInfo); err == nil && ok {
		var info map[string]any
		if err := json.Unmarshal([]byte(raw), &info); err != nil {
			s.logger.Warn("Ignoring unreadable user info", zap.Error(err))
		} else {
			sess.UserInfo = info
		}
	}
	if raw, ok, err := s.kv.Get(ctx, KeyRememberMe); err == nil && ok {
		sess.RememberMe, _ = strconv.ParseBool(raw)
	}
	return sess, true, nil
}

// Save writes a complete session. The token is written last so a crash mid-write leaves
// no token behind; any failure removes everything written so far.
func (s *Store) Save(ctx context.Context, sess models.Session) error {
	if !sess.Complete() {
		return models.ErrInvalidSession
	}

	info := "{}"
	if sess.UserInfo != nil {
		b, err := json.Marshal(sess.UserInfo)
		if err != nil {
			return fmt.Errorf("failed to encode user info: %w", err)
		}
		info = string(b)
	}

	writes := []struct{ key, value string }{
		{KeyUserInfo, info},
		{KeyRememberMe, strconv.FormatBool(sess.RememberMe)},
		{KeyUserRole, sess.Role.String()},
		{KeyAuthToken, sess.Token},
	}
	for _, w := range writes {
		if err := s.kv.Set(ctx, w.key, w.value); err != nil {
			if clearErr := s.Clear(ctx); clearErr != nil {
				s.logger.Error("Failed to roll back partial session write", zap.Error(clearErr))
			}
			return fmt.Errorf("failed to save session: %w", err)
		}
	}
	return nil
}

// Clear removes every session key. Removing an absent session is not an error.
func (s *Store) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, allKeys...)
}
