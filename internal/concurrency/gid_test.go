// File: internal/concurrency/gid_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoroutineIDStableAndDistinct(t *testing.T) {
	self := GoroutineID()
	assert.NotZero(t, self)
	assert.Equal(t, self, GoroutineID())

	const n = 16
	ids := make(chan uint64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- GoroutineID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[uint64]bool{self: true}
	for id := range ids {
		assert.NotZero(t, id)
		assert.False(t, seen[id], "duplicate goroutine id %d", id)
		seen[id] = true
	}
}
