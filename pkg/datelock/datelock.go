package datelock

import (
	"context"
	"sync"
)

// Locker набор мьютексов, ключом которых служит календарная дата ("YYYY-MM-DD")
// Запросы на разные даты не блокируют друг друга.
// Ожидание захвата прерывается отменой контекста
type Locker struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

// New создает новый Locker
func New() *Locker {
	return &Locker{locks: make(map[string]*entry)}
}

// Lock захватывает блокировку для ключа. Возвращает функцию освобождения
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
		return func() { l.release(key, e) }, nil
	case <-ctx.Done():
		l.drop(key, e)
		return nil, ctx.Err()
	}
}

// LockMany захватывает блокировки нескольких ключей в отсортированном порядке
// Ключи должны быть отсортированы вызывающей стороной
func (l *Locker) LockMany(ctx context.Context, keys ...string) (func(), error) {
	unlocks := make([]func(), 0, len(keys))
	unlockAll := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}

	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		unlock, err := l.Lock(ctx, key)
		if err != nil {
			unlockAll()
			return nil, err
		}
		unlocks = append(unlocks, unlock)
	}

	return unlockAll, nil
}

func (l *Locker) release(key string, e *entry) {
	<-e.ch
	l.drop(key, e)
}

func (l *Locker) drop(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}
