package redis

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// KVRepo is a JSON key-value store with soft failure semantics: a read that
// cannot be served (missing key, unavailable client, corrupt value) leaves
// the caller's default in place and reports found=false; a write that cannot
// be performed is dropped with a diagnostic. Business flow never fails on
// this store. Concurrent writers race; last writer wins.
type KVRepo struct {
	client *goredis.Client
	log    *zap.Logger
}

func NewKVRepo(client *goredis.Client, log *zap.Logger) *KVRepo {
	if log == nil {
		log = zap.NewNop()
	}
	return &KVRepo{client: client, log: log}
}

func (r *KVRepo) Get(ctx context.Context, key string, target any) bool {
	if r.client == nil || strings.TrimSpace(key) == "" || target == nil {
		return false
	}

	raw, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err != goredis.Nil {
			r.log.Debug("kv read failed, using default", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal([]byte(raw), target); err != nil {
		r.log.Debug("kv value corrupt, using default", zap.String("key", key), zap.Error(err))
		return false
	}

	return true
}

func (r *KVRepo) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if strings.TrimSpace(key) == "" {
		return
	}
	if r.client == nil {
		r.log.Warn("kv store unavailable, dropping write", zap.String("key", key))
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		r.log.Warn("kv value not serializable, dropping write", zap.String("key", key), zap.Error(err))
		return
	}

	if err := r.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		r.log.Warn("kv write failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *KVRepo) Delete(ctx context.Context, key string) {
	if r.client == nil || strings.TrimSpace(key) == "" {
		return
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.log.Debug("kv delete failed", zap.String("key", key), zap.Error(err))
	}
}

// FlagOnce sets a guard key if absent. Returns true only for the first call
// within the ttl window; used for once-per-session behaviors.
func (r *KVRepo) FlagOnce(ctx context.Context, key string, ttl time.Duration) bool {
	if r.client == nil || strings.TrimSpace(key) == "" {
		return false
	}

	ok, err := r.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		r.log.Debug("kv flag failed", zap.String("key", key), zap.Error(err))
		return false
	}

	return ok
}
