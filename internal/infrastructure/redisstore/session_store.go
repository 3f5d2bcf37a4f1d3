// Package redisstore keeps login sessions as Redis hashes.
package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/jobify/internal/domain/entity"
	"github.com/oksasatya/jobify/internal/domain/service"
	"github.com/oksasatya/jobify/pkg/helpers"
)

func sessionKey(userID string) string {
	return helpers.RedisKey("user", "session", userID)
}

type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func (s *SessionStore) Open(ctx context.Context, sess service.Session, ttl time.Duration) error {
	key := sessionKey(sess.UserID)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, encodeSession(sess))
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *SessionStore) Get(ctx context.Context, userID string) (*service.Session, error) {
	data, err := s.rdb.HGetAll(ctx, sessionKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, service.ErrSessionNotFound
	}
	return decodeSession(data)
}

// Touch updates fields of a live session and keeps its remaining TTL.
func (s *SessionStore) Touch(ctx context.Context, userID string, fields map[string]any) error {
	key := sessionKey(userID)
	ttl, err := s.rdb.TTL(ctx, key).Result()
	if err != nil {
		return err
	}
	if ttl <= 0 {
		// expired or missing, nothing to refresh
		return nil
	}
	values := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		values[k] = v
	}
	values["updated_at"] = time.Now().UTC().Format(time.RFC3339Nano)

	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, values)
	pipe.Expire(ctx, key, ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *SessionStore) Close(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, sessionKey(userID)).Err()
}

func encodeSession(sess service.Session) map[string]any {
	return map[string]any{
		"user_id":    sess.UserID,
		"role":       sess.Role.String(),
		"name":       sess.Name,
		"email":      sess.Email,
		"created_at": sess.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func decodeSession(data map[string]string) (*service.Session, error) {
	if data["user_id"] == "" {
		return nil, service.ErrSessionNotFound
	}
	role, err := entity.ParseRole(data["role"])
	if err != nil {
		return nil, err
	}
	sess := &service.Session{
		UserID: data["user_id"],
		Role:   role,
		Name:   data["name"],
		Email:  data["email"],
	}
	if v := data["created_at"]; v != "" {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			sess.CreatedAt = t
		}
	}
	return sess, nil
}

var _ service.SessionStore = (*SessionStore)(nil)
