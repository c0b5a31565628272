package llm

import (
	"errors"
	"sync/atomic"
)

// KeyRotator spreads concurrent LLM calls across a pool of API credentials
// so that parallel workers land in separate rate-limit buckets. The cursor
// is owned by this object; create one at process start and pass it into
// the services that need it.
type KeyRotator struct {
	keys   []string
	cursor atomic.Uint64
}

// ErrEmptyKeyPool is returned when the rotator is constructed without any
// credentials. There is no valid degraded mode.
var ErrEmptyKeyPool = errors.New("llm: credential pool is empty")

// NewKeyRotator creates a rotator over a fixed, non-empty credential pool.
func NewKeyRotator(keys []string) (*KeyRotator, error) {
	if len(keys) == 0 {
		return nil, ErrEmptyKeyPool
	}
	pool := make([]string, len(keys))
	copy(pool, keys)
	return &KeyRotator{keys: pool}, nil
}

// NextKey returns the next credential in round-robin order.
func (r *KeyRotator) NextKey() string {
	n := r.cursor.Add(1) - 1
	return r.keys[n%uint64(len(r.keys))]
}

// KeyForWorker maps a stable worker index to pool[i mod len(pool)] so a
// worker keeps one credential for its whole lifetime.
func (r *KeyRotator) KeyForWorker(i int) string {
	if i < 0 {
		i = -i
	}
	return r.keys[i%len(r.keys)]
}

// Size returns the number of credentials in the pool.
func (r *KeyRotator) Size() int {
	return len(r.keys)
}
