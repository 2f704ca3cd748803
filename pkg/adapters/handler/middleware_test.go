package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/go-devlinks/pkg/config"
	"github.com/wadjakorntonsri/go-devlinks/pkg/logging"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{
		JWTSecret: "testservlet",
	}
	mw := NewMiddleware(cfg, testLogger)

	tests := []struct {
		name           string
		path           string
		cookieValue    string
		bearer         string
		expectedStatus int
		expectedUID    string
	}{
		{
			name:           "No Cookie - API",
			path:           "/api/v1/draft",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "No Cookie - Browser",
			path:           "/editor",
			expectedStatus: http.StatusTemporaryRedirect,
		},
		{
			name:           "Invalid Cookie - API",
			path:           "/api/v1/draft",
			cookieValue:    "invalid",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong Secret - API",
			path:           "/api/v1/draft",
			cookieValue:    generateTestToken(t, "other", "uid-1", time.Minute),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Expired - API",
			path:           "/api/v1/draft",
			cookieValue:    generateTestToken(t, cfg.JWTSecret, "uid-1", -time.Minute),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Valid Cookie - API",
			path:           "/api/v1/draft",
			cookieValue:    generateTestToken(t, cfg.JWTSecret, "uid-1", time.Minute),
			expectedStatus: http.StatusOK,
			expectedUID:    "uid-1",
		},
		{
			name:           "Valid Bearer - API",
			path:           "/api/v1/draft",
			bearer:         generateTestToken(t, cfg.JWTSecret, "uid-2", time.Minute),
			expectedStatus: http.StatusOK,
			expectedUID:    "uid-2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.cookieValue != "" {
				req.AddCookie(&http.Cookie{Name: authCookie, Value: tt.cookieValue})
			}
			if tt.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tt.bearer)
			}

			var gotUID string
			rr := httptest.NewRecorder()
			handler := mw.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUID, _ = UserIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectedUID, gotUID)
		})
	}
}

func TestRejectsNoneAlgorithm(t *testing.T) {
	claims := &jwt.RegisteredClaims{Subject: "uid-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, ok := parseToken(token, []byte("secret"))
	assert.False(t, ok)
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(testLogger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = logging.RequestIDFromContext(r.Context())
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get("X-Request-Id"))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-Id", "client-id")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, "client-id", seen)
	assert.Equal(t, "client-id", rr.Header().Get("X-Request-Id"))
}

func TestRecover(t *testing.T) {
	handler := Recover(testLogger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	hit := func(addr string) int {
		req := httptest.NewRequest("GET", "/u/1", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, hit("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1:1002"))
	// Other clients have their own bucket.
	assert.Equal(t, http.StatusOK, hit("10.0.0.2:1000"))

	rl.evict(time.Now().Add(time.Hour))
	assert.Equal(t, http.StatusOK, hit("10.0.0.1:1003"))
}

func generateTestToken(t *testing.T, secret, uid string, ttl time.Duration) string {
	t.Helper()
	tokenString, _, err := IssueToken([]byte(secret), uid, ttl)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return tokenString
}
