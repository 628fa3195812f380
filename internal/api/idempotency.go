package api

import (
	"container/list"
	"fmt"
	"sync"

	"cashflow/internal/game"
)

// keyStore remembers the most recent idempotency keys. Once full, the oldest
// key is forgotten.
type keyStore struct {
	mu    sync.Mutex
	limit int
	order *list.List
	seen  map[string]*list.Element
}

func newKeyStore(limit int) *keyStore {
	return &keyStore{
		limit: limit,
		order: list.New(),
		seen:  make(map[string]*list.Element, limit),
	}
}

func (k *keyStore) Claim(key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.seen[key]; ok {
		return fmt.Errorf("%w: %s", game.ErrDuplicateIdempotency, key)
	}
	k.seen[key] = k.order.PushBack(key)
	for k.order.Len() > k.limit {
		oldest := k.order.Front()
		k.order.Remove(oldest)
		delete(k.seen, oldest.Value.(string))
	}
	return nil
}

func (k *keyStore) Release(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if el, ok := k.seen[key]; ok {
		k.order.Remove(el)
		delete(k.seen, key)
	}
}

func (k *keyStore) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.order.Len()
}
