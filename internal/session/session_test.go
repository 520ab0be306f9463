package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"newsrag/internal/domain"
)

func TestNewIDIsValidAndUnique(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEqual(t, a, b)
	assert.NoError(t, ValidateID(a))
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("s1"))
	for _, bad := range []string{"", "has space", "semi;colon", string(make([]byte, 129))} {
		err := ValidateID(bad)
		assert.Error(t, err, bad)
		assert.True(t, domain.IsValidationError(err))
	}
}

func TestKeyedMutexSerializesPerKey(t *testing.T) {
	k := NewKeyedMutex()
	var wg sync.WaitGroup
	counter := map[string]int{}
	var mapMu sync.Mutex

	for i := 0; i < 50; i++ {
		for _, key := range []string{"a", "b"} {
			wg.Add(1)
			go func(key string) {
				defer wg.Done()
				unlock := k.Lock(key)
				defer unlock()
				mapMu.Lock()
				v := counter[key]
				mapMu.Unlock()
				mapMu.Lock()
				counter[key] = v + 1
				mapMu.Unlock()
			}(key)
		}
	}
	wg.Wait()
	assert.Equal(t, 50, counter["a"])
	assert.Equal(t, 50, counter["b"])
	assert.Equal(t, 0, k.size())
}
