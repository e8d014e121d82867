package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sanosuguru/go-hotel-booking/internal/domain/lock"
)

// LockManager はプロセス内のキー単位ロック
// 単一インスタンス構成とテストで分散ロックの代わりに使う
type LockManager struct {
	mu    sync.Mutex
	slots map[string]*slot
	wait  time.Duration
}

// slot は保持者と待機者の数を refs で数え、0 になったら破棄する
type slot struct {
	ch   chan struct{}
	refs int
}

var _ lock.Manager = (*LockManager)(nil)

// NewLockManager は最大 wait だけ取得を待つロックマネージャを作成する
func NewLockManager(wait time.Duration) *LockManager {
	return &LockManager{slots: make(map[string]*slot), wait: wait}
}

func (m *LockManager) join(key string) *slot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		m.slots[key] = s
	}
	s.refs++
	return s
}

func (m *LockManager) leave(key string, s *slot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(m.slots, key)
	}
}

func (m *LockManager) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slots)
}

// Acquire はキーのロックを取得する
func (m *LockManager) Acquire(ctx context.Context, key string) (lock.Lock, error) {
	s := m.join(key)

	select {
	case s.ch <- struct{}{}:
		return &localLock{manager: m, key: key, slot: s}, nil
	default:
	}
	if m.wait <= 0 {
		m.leave(key, s)
		return nil, lock.ErrNotAcquired
	}

	timer := time.NewTimer(m.wait)
	defer timer.Stop()
	select {
	case s.ch <- struct{}{}:
		return &localLock{manager: m, key: key, slot: s}, nil
	case <-ctx.Done():
		m.leave(key, s)
		return nil, ctx.Err()
	case <-timer.C:
		m.leave(key, s)
		return nil, lock.ErrNotAcquired
	}
}

type localLock struct {
	once    sync.Once
	manager *LockManager
	key     string
	slot    *slot
}

func (l *localLock) Release(context.Context) error {
	released := false
	l.once.Do(func() {
		<-l.slot.ch
		l.manager.leave(l.key, l.slot)
		released = true
	})
	if !released {
		return lock.ErrNotOwned
	}
	return nil
}
