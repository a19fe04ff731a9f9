package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"book-catalog/internal/service"
)

func setupProtectedRouter(tokenSvc *service.TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", JWTAuthMiddleware(tokenSvc), func(c *gin.Context) {
		userID, ok := GetAuthUserID(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "missing identity"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return r
}

func TestJWTAuthMiddleware_MissingHeader(t *testing.T) {
	r := setupProtectedRouter(service.NewTokenService("secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestJWTAuthMiddleware_BadPrefix(t *testing.T) {
	r := setupProtectedRouter(service.NewTokenService("secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestJWTAuthMiddleware_GarbageToken(t *testing.T) {
	r := setupProtectedRouter(service.NewTokenService("secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer aaa.bbb.ccc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestJWTAuthMiddleware_WrongSecret(t *testing.T) {
	other := service.NewTokenService("other-secret", time.Hour)
	token, err := other.Issue("u1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := setupProtectedRouter(service.NewTokenService("secret", time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	tokenSvc := service.NewTokenService("secret", time.Hour)
	token, err := tokenSvc.Issue("u1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := setupProtectedRouter(tokenSvc)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
