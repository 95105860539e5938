package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const RequestIDHeader = "X-Request-ID"

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString("request_id")),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

const (
	visitorTTL  = 3 * time.Minute
	sweepPeriod = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// visitors holds one limiter per client IP. Entries idle for visitorTTL are
// dropped on the next sweep.
type visitors struct {
	mu        sync.Mutex
	m         map[string]*visitor
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func newVisitors(limit rate.Limit, burst int) *visitors {
	return &visitors{
		m:     make(map[string]*visitor),
		limit: limit,
		burst: burst,
		now:   time.Now,
	}
}

func (v *visitors) get(ip string) *rate.Limiter {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	if now.Sub(v.lastSweep) >= sweepPeriod {
		for key, vis := range v.m {
			if now.Sub(vis.lastSeen) > visitorTTL {
				delete(v.m, key)
			}
		}
		v.lastSweep = now
	}

	vis, ok := v.m[ip]
	if !ok {
		vis = &visitor{limiter: rate.NewLimiter(v.limit, v.burst)}
		v.m[ip] = vis
	}
	vis.lastSeen = now
	return vis.limiter
}

// RateLimit allows perMinute requests per client IP with a small burst.
// The IP comes from c.ClientIP, so the engine's trusted proxies decide
// whether forwarding headers count.
func RateLimit(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	burst := perMinute / 6
	if burst < 1 {
		burst = 1
	}
	v := newVisitors(rate.Limit(float64(perMinute)/60.0), burst)

	return func(c *gin.Context) {
		if !v.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, slow down"})
			return
		}
		c.Next()
	}
}
