package datelock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_SerializesSameKey(t *testing.T) {
	l := New()

	var (
		inside  int32
		maxSeen int32
		wg      sync.WaitGroup
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "2026-10-20")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			cur := atomic.AddInt32(&inside, 1)
			for {
				prev := atomic.LoadInt32(&maxSeen)
				if cur <= prev || atomic.CompareAndSwapInt32(&maxSeen, prev, cur) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen)
	assert.Empty(t, l.locks)
}

func TestLocker_DifferentKeysDoNotBlock(t *testing.T) {
	l := New()

	unlockA, err := l.Lock(context.Background(), "2026-10-20")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	unlockB, err := l.Lock(ctx, "2026-10-21")
	require.NoError(t, err)
	unlockB()
}

func TestLocker_ContextCancelWhileWaiting(t *testing.T) {
	l := New()

	unlock, err := l.Lock(context.Background(), "2026-10-20")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = l.Lock(ctx, "2026-10-20")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	assert.Empty(t, l.locks)
}

func TestLocker_LockManySkipsDuplicates(t *testing.T) {
	l := New()

	unlock, err := l.LockMany(context.Background(), "2026-10-20", "2026-10-20", "2026-10-21")
	require.NoError(t, err)
	assert.Len(t, l.locks, 2)

	unlock()
	assert.Empty(t, l.locks)
}
