package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/redis/go-redis/v9"

	"github.com/jwalitptl/admin-console/pkg/logger"
)

// Store persists the raw user blob. Load returns nil, nil when nothing is
// stored.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, blob []byte) error
	Clear(ctx context.Context) error
}

// DefaultPath is where FileStore keeps the user blob.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, "admin-console", "user.json")
}

type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultPath()
	}
	return &FileStore{path: path}
}

func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load(ctx context.Context) ([]byte, error) {
	blob, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	return blob, nil
}

func (f *FileStore) Save(ctx context.Context, blob []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(f.path, blob, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

func (f *FileStore) Clear(ctx context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// RedisStore keeps one session per tenant under prefix+tenant.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, prefix, tenant string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, key: prefix + tenant, ttl: ttl}
}

// OpenRedisStore connects to url and checks the connection.
func OpenRedisStore(ctx context.Context, url, prefix, tenant string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisStore(client, prefix, tenant, ttl), nil
}

func (r *RedisStore) Key() string {
	return r.key
}

func (r *RedisStore) Load(ctx context.Context) ([]byte, error) {
	blob, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	return blob, nil
}

func (r *RedisStore) Save(ctx context.Context, blob []byte) error {
	return r.client.Set(ctx, r.key, blob, r.ttl).Err()
}

func (r *RedisStore) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}

// Load reads the persisted session. Any failure, and an expired token, yields
// an anonymous session.
func Load(ctx context.Context, store Store, log *logger.Logger) Session {
	log = logger.OrNop(log)
	blob, err := store.Load(ctx)
	if err != nil {
		log.Warn("session unavailable, continuing signed out", "error", err.Error())
		return Anonymous()
	}
	s := Parse(blob)
	if s.Expired(time.Now()) {
		log.Info("session expired", "user_id", s.UserID)
		return Anonymous()
	}
	return s
}

func Save(ctx context.Context, store Store, s Session) error {
	blob, err := s.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return store.Save(ctx, blob)
}
