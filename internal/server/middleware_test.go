package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	rl := NewRateLimiter(5, time.Second)

	for i := 0; i < 5; i++ {
		assert.True(t, rl.Allow("conn-1"), "message %d should be allowed", i)
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Second)

	for i := 0; i < 3; i++ {
		rl.Allow("conn-1")
	}
	assert.False(t, rl.Allow("conn-1"))
}

func TestRateLimiter_PerConnectionIsolation(t *testing.T) {
	rl := NewRateLimiter(2, time.Second)

	rl.Allow("conn-1")
	rl.Allow("conn-1")
	assert.False(t, rl.Allow("conn-1"))
	assert.True(t, rl.Allow("conn-2"), "one noisy connection must not affect another")
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	rl := NewRateLimiter(2, 50*time.Millisecond)

	rl.Allow("conn-1")
	rl.Allow("conn-1")
	assert.False(t, rl.Allow("conn-1"))

	time.Sleep(60 * time.Millisecond)
	assert.True(t, rl.Allow("conn-1"), "old timestamps should fall out of the window")
}

func TestRateLimiter_ForgetClearsWindow(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)

	rl.Allow("conn-1")
	assert.False(t, rl.Allow("conn-1"))

	rl.Forget("conn-1")
	assert.True(t, rl.Allow("conn-1"))
}
