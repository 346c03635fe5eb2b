// File: thread/mainthread_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package thread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestMainThreadRegistration(t *testing.T) {
	logs := observePackageLogger(t)
	prev := mainThreadID.Load()
	mainThreadID.Store(0)
	t.Cleanup(func() { mainThreadID.Store(prev) })

	assert.False(t, IsMainThread())
	SetMainThreadID()
	assert.Equal(t, CurrentThreadID(), MainThreadID())
	assert.True(t, IsMainThread())

	SetMainThreadID()
	assert.Zero(t, logs.Len(), "re-registering from the same goroutine is silent")

	other := make(chan bool)
	go func() {
		SetMainThreadID()
		other <- IsMainThread()
	}()
	assert.False(t, <-other)
	assert.Equal(t, CurrentThreadID(), MainThreadID(), "first registration wins")
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}
