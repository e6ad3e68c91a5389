package middleware

import (
	"log/slog"
	"sync"
	"time"

	"archiviz/internal/common/apperr"
	"archiviz/internal/common/response"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/time/rate"
)

// ============================================================
// Rate Limiter
// ============================================================

type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

// RateLimiter - token bucket на клиента (IP).
type RateLimiter struct {
	config  RateLimitConfig
	clients map[string]*rate.Limiter
	mu      sync.Mutex
	logger  *slog.Logger
}

func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		config:  config,
		clients: make(map[string]*rate.Limiter),
		logger:  slog.With("middleware", "rate_limit"),
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.clients[key]
	if !ok {
		l = rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.BurstSize)
		rl.clients[key] = l
	}
	return l
}

// Cleanup удаляет клиентов с полным ведром токенов.
func (rl *RateLimiter) Cleanup(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for key, l := range rl.clients {
		if l.TokensAt(now) >= float64(rl.config.BurstSize) {
			delete(rl.clients, key)
			removed++
		}
	}
	return removed
}

// Run периодически чистит таблицу клиентов до закрытия done.
func (rl *RateLimiter) Run(done <-chan struct{}) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			rl.Cleanup(now)
		}
	}
}

// Handler отклоняет запрос с 429, если у клиента кончились токены.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		if rl.config.RequestsPerSecond <= 0 {
			return c.Next()
		}

		ip := c.IP()
		if !rl.limiter(ip).Allow() {
			c.Set("Retry-After", "1")
			return response.Error(c, rl.logger.With("client_ip", ip), apperr.RateLimited("rate limit exceeded"))
		}
		return c.Next()
	}
}
