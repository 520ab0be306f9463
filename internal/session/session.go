// Package session holds helpers shared by the session store backends and the
// answer flow: id issuance, id validation and per-session locking.
package session

import (
	"regexp"
	"sync"

	"github.com/google/uuid"

	"newsrag/internal/domain"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_.:-]{1,128}$`)

// NewID issues a fresh opaque session id.
func NewID() string { return uuid.NewString() }

// ValidateID rejects ids that are empty, too long or contain unexpected characters.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return domain.Errorf(domain.ErrValidation, "invalid session id %q", id)
	}
	return nil
}

// KeyedMutex serializes work per key. Idle keys are dropped.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock blocks until key is free and returns the matching unlock function.
func (k *KeyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *KeyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
