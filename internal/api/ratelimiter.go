package api

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// rateLimiter admits a request or reports how long the caller should wait.
type rateLimiter interface {
	Wait() (time.Duration, bool)
}

type tokenBucket struct {
	limiter *rate.Limiter
}

func newTokenBucketLimiter(ratePerSecond float64, burst int) rateLimiter {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}

	return &tokenBucket{
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

// Wait consumes a token when one is available. Otherwise the reservation is
// returned to the bucket and the delay until the next token is reported.
func (b *tokenBucket) Wait() (time.Duration, bool) {
	if b == nil || b.limiter == nil {
		return 0, true
	}
	res := b.limiter.Reserve()
	if !res.OK() {
		return time.Second, false
	}
	if delay := res.Delay(); delay > 0 {
		res.Cancel()
		return delay, false
	}
	return 0, true
}

func rateLimitMiddleware(limiter rateLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		delay, ok := limiter.Wait()
		if ok {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(delay)))
		writeError(w, http.StatusTooManyRequests, "Too many requests",
			"inspection rate limit exceeded", "Retry after the interval in the Retry-After header")
	})
}

func retryAfterSeconds(d time.Duration) int {
	return max(1, int(math.Ceil(d.Seconds())))
}
