package middleware

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"filevault/utils"

	"github.com/gin-gonic/gin"
)

type RateLimiter struct {
	visitors map[string]*Visitor
	mutex    sync.Mutex
	rate     time.Duration
	burst    int
}

type Visitor struct {
	limiter  *TokenBucket
	lastSeen time.Time
}

type TokenBucket struct {
	tokens     int
	capacity   int
	refillRate time.Duration
	lastRefill time.Time
	mutex      sync.Mutex
}

var rateLimiters = map[string]*RateLimiter{
	"global":   NewRateLimiter(time.Second, 60),
	"auth":     NewRateLimiter(6*time.Second, 10),
	"upload":   NewRateLimiter(2*time.Second, 30),
	"download": NewRateLimiter(600*time.Millisecond, 100),
}

func NewRateLimiter(rate time.Duration, burst int) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*Visitor),
		rate:     rate,
		burst:    burst,
	}

	go rl.cleanupVisitors()

	return rl
}

func NewTokenBucket(capacity int, refillRate time.Duration) *TokenBucket {
	return &TokenBucket{
		tokens:     capacity,
		capacity:   capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

func (tb *TokenBucket) Allow() bool {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)

	if elapsed >= tb.refillRate {
		tokensToAdd := int(elapsed / tb.refillRate)
		if tb.tokens+tokensToAdd > tb.capacity {
			tb.tokens = tb.capacity
		} else {
			tb.tokens += tokensToAdd
		}
		tb.lastRefill = now
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}

	return false
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	visitor, exists := rl.visitors[key]
	if !exists {
		visitor = &Visitor{
			limiter:  NewTokenBucket(rl.burst, rl.rate),
			lastSeen: time.Now(),
		}
		rl.visitors[key] = visitor
	}

	visitor.lastSeen = time.Now()
	return visitor.limiter.Allow()
}

func (rl *RateLimiter) cleanupVisitors() {
	for {
		time.Sleep(10 * time.Minute)

		rl.mutex.Lock()
		for key, visitor := range rl.visitors {
			if time.Since(visitor.lastSeen) > time.Hour {
				delete(rl.visitors, key)
			}
		}
		rl.mutex.Unlock()
	}
}

// RateLimitMiddleware applies the global per-client limit.
func RateLimitMiddleware() gin.HandlerFunc {
	return RateLimitWithType("global")
}

// RateLimitWithType applies a named limit class.
func RateLimitWithType(limitType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter, exists := rateLimiters[limitType]
		if !exists {
			limiter = rateLimiters["global"]
		}

		clientID := getClientID(c)

		if !limiter.Allow(clientID) {
			c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.burst))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(limiter.rate).Unix(), 10))

			utils.TooManyRequestsResponse(c, "Rate limit exceeded")
			c.Abort()
			return
		}

		c.Next()
	}
}

// AuthRateLimitMiddleware throttles credential endpoints harder.
func AuthRateLimitMiddleware() gin.HandlerFunc {
	return RateLimitWithType("auth")
}

// UploadRateLimitMiddleware throttles upload endpoints.
func UploadRateLimitMiddleware() gin.HandlerFunc {
	return RateLimitWithType("upload")
}

func getClientID(c *gin.Context) string {
	if userID, exists := utils.GetUserIDFromContext(c); exists {
		return fmt.Sprintf("user:%s", userID.Hex())
	}
	return fmt.Sprintf("ip:%s", c.ClientIP())
}
