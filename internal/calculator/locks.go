package calculator

import (
	"hash/maphash"
	"sync"
)

const lockStripes = 64

// keyedMutex serialises work per key using a fixed set of striped mutexes,
// so memory stays bounded no matter how many keys are seen.
type keyedMutex struct {
	seed    maphash.Seed
	stripes [lockStripes]sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{seed: maphash.MakeSeed()}
}

// Lock locks the stripe owning key and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	m := &k.stripes[maphash.String(k.seed, key)%lockStripes]
	m.Lock()
	return m.Unlock
}
