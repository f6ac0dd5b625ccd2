package middleware

import (
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter implements token bucket rate limiting per IP
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
	}
}

// GetLimiter gets or creates a limiter for an IP address
func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, exists := rl.limiters[ip]; exists {
		return limiter
	}

	// 100 requests per second per IP, burst of 200
	limiter := rate.NewLimiter(rate.Limit(100), 200)
	rl.limiters[ip] = limiter
	return limiter
}

// RateLimitMiddleware enforces rate limiting per IP
func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.GetLimiter(ip).Allow() {
			log.Printf("[SECURITY] Rate limit exceeded for IP: %s", ip)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": 60,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// AuthRateLimiter limits admin authentication attempts per IP
// (stricter than general rate limiting, a brute-force guard)
type AuthRateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
}

// NewAuthRateLimiter creates a new auth-specific rate limiter
func NewAuthRateLimiter() *AuthRateLimiter {
	return &AuthRateLimiter{
		limiters: make(map[string]*rate.Limiter),
	}
}

// GetLimiter gets or creates a limiter for an IP address
func (ar *AuthRateLimiter) GetLimiter(ip string) *rate.Limiter {
	ar.mu.Lock()
	defer ar.mu.Unlock()

	if limiter, exists := ar.limiters[ip]; exists {
		return limiter
	}

	// 5 auth attempts per minute per IP, burst of 10
	limiter := rate.NewLimiter(rate.Every(12*time.Second), 10)
	ar.limiters[ip] = limiter
	return limiter
}

// AuthRateLimitMiddleware enforces stricter rate limiting on the admin
// auth endpoint
func AuthRateLimitMiddleware(limiter *AuthRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !limiter.GetLimiter(ip).Allow() {
			log.Printf("[SECURITY] Auth rate limit exceeded for IP: %s (possible password guessing)", ip)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "auth endpoint rate limited",
				"retry_after": 60,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// SecurityHeadersMiddleware adds security headers to all responses
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		c.Next()
	}
}

// CORSMiddleware configures CORS. An empty allowed list reflects any
// origin; the public dashboard is served from wherever it likes.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		normalizedOrigin := strings.TrimRight(origin, "/")

		// Check if origin is in allowed list
		allowed := false
		if len(allowedOrigins) == 0 {
			allowed = normalizedOrigin != ""
		} else {
			for _, o := range allowedOrigins {
				trimmed := strings.TrimSpace(o)
				if trimmed == "" {
					continue
				}
				trimmed = strings.TrimRight(trimmed, "/")
				if trimmed == "*" || normalizedOrigin == trimmed {
					allowed = true
					break
				}
				if !strings.Contains(trimmed, "://") {
					if parsed, err := url.Parse(normalizedOrigin); err == nil && parsed.Host == trimmed {
						allowed = true
						break
					}
				}
			}
		}

		if allowed {
			c.Header("Vary", "Origin")
			if normalizedOrigin != "" {
				c.Header("Access-Control-Allow-Origin", normalizedOrigin)
			}
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Header("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// SecurityLogger logs security events
type SecurityLogger struct {
	mu sync.Mutex
}

// NewSecurityLogger creates a new security logger
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{}
}

// LogFailedAuth logs failed authentication attempts
func (sl *SecurityLogger) LogFailedAuth(ip string, reason string) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	log.Printf("[SECURITY-WARNING] Failed authentication from IP %s: %s", ip, reason)
}
