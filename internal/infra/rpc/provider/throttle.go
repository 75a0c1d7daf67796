package provider

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultRateLimitBackoff = 60 * time.Second
	ipBlockBackoff          = 10 * time.Minute
)

var throttlePatterns = []string{
	"rate limit exceeded",
	"too many requests",
	"daily request count exceeded",
	"project rate limit",
	"monthly quota exceeded",
}

// throttle remembers when an endpoint told us to back off.
type throttle struct {
	mu    sync.RWMutex
	until time.Time
	count int
}

// record notes a 429 or 403 response. retryAfter is the raw Retry-After header.
func (t *throttle) record(statusCode int, retryAfter string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	backoff := defaultRateLimitBackoff
	if statusCode == 403 {
		backoff = ipBlockBackoff
	} else if secs, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil && secs > 0 {
		backoff = time.Duration(secs) * time.Second
	}

	t.count++
	t.until = time.Now().Add(backoff)
}

// remaining returns how long callers should still wait, or 0.
func (t *throttle) remaining() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if d := time.Until(t.until); d > 0 {
		return d
	}
	return 0
}

func detectThrottlePattern(message string) bool {
	lower := strings.ToLower(message)
	for _, pattern := range throttlePatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
