package middleware

import (
	"sync"

	"github.com/akolanti/DocRagAPI/internal/config"
	"golang.org/x/time/rate"
)

const (
	defaultRateLimit  = rate.Limit(config.RATE_LIMIT_PER_SECOND)
	defaultBurstLimit = config.BURST_RATE_LIMIT_PER_SECOND
)

type IPRateLimiter struct {
	ips       map[string]*rate.Limiter
	mu        sync.RWMutex
	rateLimit rate.Limit
	burstRate int
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{ips: make(map[string]*rate.Limiter), rateLimit: r, burstRate: b}
}

func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()
	limiter, exists := i.ips[ip]
	if !exists {
		limiter = rate.NewLimiter(i.rateLimit, i.burstRate)
		i.ips[ip] = limiter
	}
	return limiter
}

//TODO: entries are never evicted; add an idle sweep if the IP set grows unbounded
