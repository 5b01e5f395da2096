package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"learnoted/internal/domain"
	"learnoted/internal/service"
)

func newProtectedRouter(jwtSvc *service.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", JWTAuthMiddleware(jwtSvc), func(c *gin.Context) {
		claims, ok := GetAuthClaims(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user_id":       claims.UserID,
			"display_name":  claims.DisplayName,
			"auth_provider": claims.AuthProvider,
		})
	})
	return r
}

func protectedRequest(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthMiddleware_ExposesUserClaims(t *testing.T) {
	jwtSvc := newTestJWTService()
	pair, err := jwtSvc.GeneratePair(domain.User{
		ID:           "u1",
		Email:        "ana@example.com",
		DisplayName:  "Ana",
		AuthProvider: "google",
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	rec := protectedRequest(newProtectedRouter(jwtSvc), "Bearer "+pair.AccessToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"user_id":"u1"`) || !strings.Contains(body, `"auth_provider":"google"`) {
		t.Fatalf("expected user claims in response, got %s", body)
	}
}

func TestJWTAuthMiddleware_SchemeIsCaseInsensitive(t *testing.T) {
	jwtSvc := newTestJWTService()
	pair, err := jwtSvc.GeneratePair(domain.User{ID: "u1", Email: "ana@example.com", CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	rec := protectedRequest(newProtectedRouter(jwtSvc), "bearer "+pair.AccessToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for lowercase scheme, got %d", rec.Code)
	}
}

func TestJWTAuthMiddleware_RejectsMissingOrMalformedHeader(t *testing.T) {
	r := newProtectedRouter(newTestJWTService())

	for _, header := range []string{"", "Bearer", "Basic dXNlcjpwYXNz", "Bearer a b"} {
		if rec := protectedRequest(r, header); rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for header %q, got %d", header, rec.Code)
		}
	}
}

func TestJWTAuthMiddleware_RejectsRefreshTokenOnProtectedRoute(t *testing.T) {
	jwtSvc := newTestJWTService()
	pair, err := jwtSvc.GeneratePair(domain.User{ID: "u1", Email: "ana@example.com", CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	rec := protectedRequest(newProtectedRouter(jwtSvc), "Bearer "+pair.RefreshToken)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for refresh token, got %d", rec.Code)
	}
}

func TestJWTAuthMiddleware_ReportsExpiredToken(t *testing.T) {
	jwtSvc := newTestJWTService()
	now := time.Now().UTC()
	claims := service.Claims{
		UserID:    "u1",
		Email:     "ana@example.com",
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "learnoted",
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-30 * time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	rec := protectedRequest(newProtectedRouter(jwtSvc), "Bearer "+signed)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "expired") {
		t.Fatalf("expected expiry reported, got %s", rec.Body.String())
	}
}
