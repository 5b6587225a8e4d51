package middleware

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Пределы роста таблицы клиентов лимитера
const (
	limiterBurst      = 3
	maxTrackedClients = 10000
	clientIdleExpiry  = 10 * time.Minute
)

// uploadClient лимитер одного клиента и время последнего обращения
type uploadClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UploadRateLimiter ограничивает частоту загрузок по IP клиента
type UploadRateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*uploadClient
	limit     rate.Limit
	perMinute int
}

// NewUploadRateLimiter создает лимитер на perMinute загрузок в минуту с одного
// IP. Неположительное значение отключает ограничение
func NewUploadRateLimiter(perMinute int) *UploadRateLimiter {
	l := &UploadRateLimiter{
		clients:   make(map[string]*uploadClient),
		perMinute: perMinute,
	}
	if perMinute > 0 {
		l.limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	return l
}

// Middleware возвращает gin middleware, отклоняющее запросы сверх лимита с 429
func (l *UploadRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.perMinute <= 0 {
			c.Next()
			return
		}

		if !l.allow(c.ClientIP()) {
			log.Printf("[RateLimit] Rejected upload from %s: limit %d per minute exceeded", c.ClientIP(), l.perMinute)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":   false,
				"error":     "превышен лимит загрузок, повторите попытку позже",
				"timestamp": time.Now().Format(time.RFC3339),
			})
			return
		}

		c.Next()
	}
}

// allow возвращает решение лимитера клиента, создавая запись при первом обращении
func (l *UploadRateLimiter) allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.clients[clientIP]
	if !ok {
		if len(l.clients) >= maxTrackedClients {
			l.evictIdleLocked()
		}
		entry = &uploadClient{limiter: rate.NewLimiter(l.limit, limiterBurst)}
		l.clients[clientIP] = entry
	}
	entry.lastSeen = time.Now()

	return entry.limiter.Allow()
}

// evictIdleLocked удаляет давно не обращавшихся клиентов; вызывается под mu
func (l *UploadRateLimiter) evictIdleLocked() {
	cutoff := time.Now().Add(-clientIdleExpiry)
	for ip, entry := range l.clients {
		if entry.lastSeen.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
}
