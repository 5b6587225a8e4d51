package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// limiterRouter собирает роутер из лимитера и пустого обработчика
func limiterRouter(limiter *UploadRateLimiter) *gin.Engine {
	router := gin.New()
	router.POST("/upload", limiter.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusAccepted)
	})
	return router
}

// postFrom шлет запрос от заданного адреса клиента
func postFrom(router *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/upload", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestUploadRateLimiterBurst проверяет всплеск: три запроса проходят,
// четвертый отклоняется с 429
func TestUploadRateLimiterBurst(t *testing.T) {
	router := limiterRouter(NewUploadRateLimiter(1))

	for i := 0; i < 3; i++ {
		if w := postFrom(router, "10.0.0.1:5000"); w.Code != http.StatusAccepted {
			t.Fatalf("Request %d: expected status 202, got %d", i+1, w.Code)
		}
	}
	if w := postFrom(router, "10.0.0.1:5000"); w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429 after burst, got %d", w.Code)
	}
}

// TestUploadRateLimiterPerClient проверяет независимость лимитов разных адресов
func TestUploadRateLimiterPerClient(t *testing.T) {
	router := limiterRouter(NewUploadRateLimiter(1))

	for i := 0; i < 4; i++ {
		postFrom(router, "10.0.0.1:5000")
	}
	if w := postFrom(router, "10.0.0.1:5000"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected first client to be limited, got %d", w.Code)
	}

	// Второй клиент стартует со своим нетронутым лимитом
	if w := postFrom(router, "10.0.0.2:5000"); w.Code != http.StatusAccepted {
		t.Errorf("Expected second client to pass, got %d", w.Code)
	}
}

// TestUploadRateLimiterDisabled проверяет пропуск всех запросов при
// неположительном лимите
func TestUploadRateLimiterDisabled(t *testing.T) {
	router := limiterRouter(NewUploadRateLimiter(0))

	for i := 0; i < 20; i++ {
		if w := postFrom(router, "10.0.0.1:5000"); w.Code != http.StatusAccepted {
			t.Fatalf("Request %d: expected status 202 with limiter off, got %d", i+1, w.Code)
		}
	}
}

// TestUploadRateLimiterEvictsIdle проверяет удаление давно не обращавшихся
// клиентов из таблицы лимитера
func TestUploadRateLimiterEvictsIdle(t *testing.T) {
	limiter := NewUploadRateLimiter(1)

	limiter.allow("10.0.0.1")
	limiter.allow("10.0.0.2")

	limiter.mu.Lock()
	limiter.clients["10.0.0.1"].lastSeen = time.Now().Add(-clientIdleExpiry - time.Minute)
	limiter.evictIdleLocked()
	_, staleKept := limiter.clients["10.0.0.1"]
	_, freshKept := limiter.clients["10.0.0.2"]
	limiter.mu.Unlock()

	if staleKept {
		t.Error("Expected idle client to be evicted")
	}
	if !freshKept {
		t.Error("Expected active client to survive eviction")
	}
}

// TestRequestIDContextRoundtrip проверяет сохранение и чтение идентификатора
// запроса в контексте
func TestRequestIDContextRoundtrip(t *testing.T) {
	ctx := context.Background()
	if got := GetRequestID(ctx); got != "" {
		t.Errorf("Expected empty request ID on bare context, got %q", got)
	}

	ctx = SetRequestID(ctx, "req-123")
	if got := GetRequestID(ctx); got != "req-123" {
		t.Errorf("Expected req-123, got %q", got)
	}
}

// TestRequestIDMiddleware проверяет генерацию идентификатора и проброс
// клиентского значения
func TestRequestIDMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware())

	var seenInContext string
	router.GET("/ping", func(c *gin.Context) {
		seenInContext = GetRequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))
	generated := w.Header().Get("X-Request-ID")
	if generated == "" {
		t.Fatal("Expected generated X-Request-ID header")
	}
	if seenInContext != generated {
		t.Errorf("Expected handler context ID %q to match header %q", seenInContext, generated)
	}

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("X-Request-ID", "client-id-1")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "client-id-1" {
		t.Errorf("Expected client ID to be reused, got %q", got)
	}
	if seenInContext != "client-id-1" {
		t.Errorf("Expected handler to see client ID, got %q", seenInContext)
	}
}
