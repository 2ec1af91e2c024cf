// Package lock provides context-aware mutual exclusion keyed by string,
// used to serialize claim creation per client number and transitions per
// claim id. Requests for different keys never contend.
package lock

import (
	"context"
	"sync"
)

type entry struct {
	sem  chan struct{}
	refs int
}

// KeyedMutex is a set of mutexes addressed by key. Entries are created on
// demand and reclaimed once the last waiter releases.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewKeyedMutex constructs an empty lock set.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[string]*entry)}
}

// Lock acquires the mutex for key, waiting until it is free or ctx is done.
// On success it returns a release function; on ctx expiry it returns the
// context error and the critical section is never entered.
func (k *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
		return func() { k.release(key, e) }, nil
	case <-ctx.Done():
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
		return nil, ctx.Err()
	}
}

func (k *KeyedMutex) release(key string, e *entry) {
	<-e.sem
	k.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
	k.mu.Unlock()
}
