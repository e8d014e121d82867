package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-hotel-booking/internal/domain/lock"
	"github.com/sanosuguru/go-hotel-booking/internal/pkg/metrics"
)

// 所有者確認と削除をアトミックに行う
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`)

var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
else
	return 0
end
`)

// LockOptions は分散ロックの取得設定
type LockOptions struct {
	TTL           time.Duration
	Retries       int
	RetryInterval time.Duration
}

// DistributedLock は Redis を使用した分散ロック
type DistributedLock struct {
	client  *redis.Client
	key     string
	value   string
	ttl     time.Duration
	metrics *metrics.Metrics
}

// LockManager は分散ロックを管理する
type LockManager struct {
	client  *redis.Client
	opts    LockOptions
	metrics *metrics.Metrics
}

var _ lock.Manager = (*LockManager)(nil)

// NewLockManager は分散ロックマネージャを作成する（m は nil でもよい）
func NewLockManager(client *redis.Client, opts LockOptions, m *metrics.Metrics) *LockManager {
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Second
	}
	return &LockManager{client: client, opts: opts, metrics: m}
}

// Acquire は設定に従いリトライしながらロックを取得する
func (m *LockManager) Acquire(ctx context.Context, key string) (lock.Lock, error) {
	start := time.Now()
	l, err := m.AcquireLockWithRetry(ctx, key, m.opts.TTL, m.opts.Retries+1, m.opts.RetryInterval)
	m.metrics.ObserveLock("acquire", start, err)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// AcquireLock はロックを1回だけ試行する
func (m *LockManager) AcquireLock(ctx context.Context, key string, ttl time.Duration) (*DistributedLock, error) {
	lockKey := fmt.Sprintf("lock:%s", key)
	lockValue := uuid.New().String()

	// SetNX を使用してロックを取得（キーが存在しない場合のみ設定）
	ok, err := m.client.SetNX(ctx, lockKey, lockValue, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("ロック取得に失敗: %w", err)
	}
	if !ok {
		return nil, lock.ErrNotAcquired
	}

	return &DistributedLock{
		client:  m.client,
		key:     lockKey,
		value:   lockValue,
		ttl:     ttl,
		metrics: m.metrics,
	}, nil
}

// AcquireLockWithRetry はリトライ付きでロックを取得する
func (m *LockManager) AcquireLockWithRetry(ctx context.Context, key string, ttl time.Duration, attempts int, retryDelay time.Duration) (*DistributedLock, error) {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		l, err := m.AcquireLock(ctx, key, ttl)
		if err == nil {
			return l, nil
		}
		lastErr = err
		if !errors.Is(err, lock.ErrNotAcquired) || i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay * time.Duration(i+1)):
		}
	}
	return nil, lastErr
}

// Release はロックを解放する
func (l *DistributedLock) Release(ctx context.Context) error {
	start := time.Now()
	result, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.value).Int()
	if err != nil {
		err = fmt.Errorf("ロック解放に失敗: %w", err)
	} else if result == 0 {
		err = lock.ErrNotOwned
	}
	l.metrics.ObserveLock("release", start, err)
	return err
}

// Extend はロックの有効期限を延長する
func (l *DistributedLock) Extend(ctx context.Context, ttl time.Duration) error {
	result, err := extendScript.Run(ctx, l.client, []string{l.key}, l.value, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("ロック延長に失敗: %w", err)
	}
	if result == 0 {
		return lock.ErrNotOwned
	}
	l.ttl = ttl
	return nil
}

// Key はロックのRedisキーを返す
func (l *DistributedLock) Key() string {
	return l.key
}
