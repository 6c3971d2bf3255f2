package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultSessionTTL = 30 * 24 * time.Hour

// Redis implements Store on top of a Redis hash per session.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis wraps an existing Redis client. ttl <= 0 falls back to 30 days.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Redis{client: client, ttl: ttl}
}

var _ Store = (*Redis)(nil)

func sessionKey(sid string) string  { return "session:" + sid }
func redirectKey(sid string) string { return "session:redirect:" + sid }

func (r *Redis) Get(ctx context.Context, sid string) (Record, error) {
	fields, err := r.client.HGetAll(ctx, sessionKey(sid)).Result()
	if err != nil {
		return Record{}, err
	}
	if len(fields) == 0 {
		return Record{}, ErrNoSession
	}
	rec := Record{
		Token:       fields["token"],
		ProfileJSON: []byte(fields["profile"]),
	}
	if len(rec.ProfileJSON) == 0 {
		rec.ProfileJSON = nil
	}
	rec.RequiresPasswordChange, _ = strconv.ParseBool(fields["requires_password_change"])
	if raw := fields["updated_at"]; raw != "" {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			rec.UpdatedAt = ts
		}
	}
	return rec, nil
}

func (r *Redis) Put(ctx context.Context, sid string, rec Record) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	key := sessionKey(sid)
	fields := map[string]any{
		"token":                    rec.Token,
		"profile":                  string(rec.ProfileJSON),
		"requires_password_change": strconv.FormatBool(rec.RequiresPasswordChange),
		"updated_at":               rec.UpdatedAt.Format(time.RFC3339Nano),
	}
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, r.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *Redis) Delete(ctx context.Context, sid string) error {
	return r.client.Del(ctx, sessionKey(sid), redirectKey(sid)).Err()
}

func (r *Redis) SetRedirect(ctx context.Context, sid, path string) error {
	return r.client.Set(ctx, redirectKey(sid), path, r.ttl).Err()
}

func (r *Redis) TakeRedirect(ctx context.Context, sid string) (string, error) {
	path, err := r.client.GetDel(ctx, redirectKey(sid)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return path, nil
}
