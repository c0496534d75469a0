// Package globaltime provides the process clock. Tests freeze it with
// SetMockTime so time-window logic (dedup windows, date validity) can be
// exercised deterministically.
package globaltime

import (
	"sync"
	"time"
)

var (
	mu      sync.RWMutex
	nowFunc = time.Now
)

// Now returns the current time from the active clock.
func Now() time.Time {
	mu.RLock()
	defer mu.RUnlock()
	return nowFunc()
}

// UTC returns Now in UTC.
func UTC() time.Time {
	return Now().UTC()
}

// SetMockTime pins the clock to a fixed instant.
func SetMockTime(t time.Time) {
	mu.Lock()
	defer mu.Unlock()
	nowFunc = func() time.Time { return t }
}

// ResetTime restores the wall clock.
func ResetTime() {
	mu.Lock()
	defer mu.Unlock()
	nowFunc = time.Now
}
