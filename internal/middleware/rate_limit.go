package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// これを超えたら limiter を作り直す
const maxTrackedLimiters = 10000

// ユーザー（未ログインならIP）ごとのトークンバケット
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	log      logrus.FieldLogger
}

func NewRateLimiter(rps float64, burst int, log logrus.FieldLogger) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
		log:      log,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter
}

func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "ip:" + c.RealIP()
			if uid, ok := c.Get(CtxUserIDKey).(int64); ok && uid > 0 {
				key = "user:" + strconv.FormatInt(uid, 10)
			}

			if !rl.getLimiter(key).Allow() {
				rl.log.WithFields(logrus.Fields{
					"key":    key,
					"path":   c.Path(),
					"method": c.Request().Method,
				}).Warn("rate limit exceeded")
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusTooManyRequests, errorJSON("too many requests", "RATE_LIMITED"))
			}
			return next(c)
		}
	}
}

func (rl *RateLimiter) Size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if len(rl.limiters) > maxTrackedLimiters {
		rl.limiters = make(map[string]*rate.Limiter)
	}
}

// 止めるときは返り値の stop を呼ぶ
func (rl *RateLimiter) StartCleanup(interval time.Duration) (stop func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				rl.Cleanup()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
