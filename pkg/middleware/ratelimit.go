package middleware

import (
	"net"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// clientLimiter hands out one token-bucket limiter per remote address.
type clientLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	burst    int
}

func (c *clientLimiter) get(addr string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	lim, ok := c.limiters[addr]
	if !ok {
		lim = rate.NewLimiter(c.r, c.burst)
		c.limiters[addr] = lim
	}
	return lim
}

// RateLimitMiddleware throttles requests per client address. Used on the
// payment routes so a stuck client cannot hammer the payment collaborator.
func RateLimitMiddleware(r rate.Limit, burst int) func(http.Handler) http.Handler {
	cl := &clientLimiter{
		limiters: make(map[string]*rate.Limiter),
		r:        r,
		burst:    burst,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			host, _, err := net.SplitHostPort(req.RemoteAddr)
			if err != nil {
				host = req.RemoteAddr
			}
			if !cl.get(host).Allow() {
				logrus.WithField("client", host).Warn("Rate limit exceeded")
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}
