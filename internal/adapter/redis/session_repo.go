// Package adaptredis keeps login sessions in Redis so several fitcore
// instances can share them.
package adaptredis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fitcore/internal/domain"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	sessionKeyPrefix = "fitcore-session||"
	tokensSetKey     = "fitcore-sessions"
)

var _ domain.SessionRepository = (*SessionRepo)(nil)

// SessionRepo stores each session as a JSON value that Redis expires at
// ExpiresAt. The token set lets DeleteExpired find stale members.
type SessionRepo struct {
	client *redis.Client
	now    func() time.Time
}

func NewSessionRepo(client *redis.Client) *SessionRepo {
	return &SessionRepo{client: client, now: time.Now}
}

// NewClient connects to addr and pings it.
func NewClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

func (r *SessionRepo) Create(ctx context.Context, s domain.Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}

	key := sessionKeyPrefix + s.Token
	if err := r.client.Set(ctx, key, string(b), 0).Err(); err != nil {
		return err
	}
	if err := r.client.ExpireAt(ctx, key, s.ExpiresAt).Err(); err != nil {
		return err
	}
	return r.client.SAdd(ctx, tokensSetKey, s.Token).Err()
}

// GetByToken returns nil when the session is unknown or expired.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	val, err := r.client.Get(ctx, sessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var s domain.Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if !s.ExpiresAt.After(r.now()) {
		return nil, r.Delete(ctx, token)
	}
	return &s, nil
}

func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return err
	}
	return r.client.SRem(ctx, tokensSetKey, token).Err()
}

// DeleteExpired drops tokens whose session key Redis already expired.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	tokens, err := r.client.SMembers(ctx, tokensSetKey).Result()
	if err != nil {
		return err
	}

	var removed int
	for _, token := range tokens {
		n, err := r.client.Exists(ctx, sessionKeyPrefix+token).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			continue
		}
		if err := r.client.SRem(ctx, tokensSetKey, token).Err(); err != nil {
			return err
		}
		removed++
	}
	if removed > 0 {
		log.Debugf("redis sessions: dropped %d expired tokens", removed)
	}
	return nil
}
