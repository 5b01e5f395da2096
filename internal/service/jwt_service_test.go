package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"learnoted/internal/domain"
)

func newJWTService() *JWTService {
	return NewJWTServiceWithStore("secret", 15*time.Minute, 30*time.Minute, NewMemoryRefreshTokenStore())
}

func googleUser() domain.User {
	return domain.User{
		ID:           "u1",
		Email:        "ana@example.com",
		DisplayName:  "Ana",
		AuthProvider: "google",
		CreatedAt:    time.Now().UTC(),
	}
}

func TestJWTService_AccessTokenCarriesUserProfile(t *testing.T) {
	svc := newJWTService()

	pair, err := svc.GeneratePair(googleUser())
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", pair)
	}
	if pair.ExpiresIn != int64((15 * time.Minute).Seconds()) {
		t.Fatalf("expected access TTL in seconds, got %d", pair.ExpiresIn)
	}

	claims, err := svc.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "ana@example.com" {
		t.Fatalf("unexpected identity claims: %+v", claims)
	}
	if claims.DisplayName != "Ana" || claims.AuthProvider != "google" {
		t.Fatalf("expected profile claims preserved, got %+v", claims)
	}
	if claims.Issuer != "learnoted" || claims.Subject != "u1" {
		t.Fatalf("unexpected registered claims: %+v", claims.RegisteredClaims)
	}
}

func TestJWTService_RefreshRotationPreservesIdentity(t *testing.T) {
	svc := newJWTService()
	pair, err := svc.GeneratePair(googleUser())
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	refreshed, err := svc.RefreshPair(pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh pair: %v", err)
	}
	claims, err := svc.ParseAccessToken(refreshed.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated access: %v", err)
	}
	if claims.UserID != "u1" || claims.DisplayName != "Ana" || claims.AuthProvider != "google" {
		t.Fatalf("expected identity to survive rotation, got %+v", claims)
	}

	// El refresh token rota en cada uso; el anterior queda fuera de circulación.
	if _, err := svc.RefreshPair(pair.RefreshToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected rotated-out refresh token rejected, got %v", err)
	}
}

func TestJWTService_RevokedRefreshCannotRotate(t *testing.T) {
	svc := newJWTService()
	pair, err := svc.GeneratePair(googleUser())
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	if err := svc.RevokeRefresh(pair.RefreshToken); err != nil {
		t.Fatalf("revoke refresh: %v", err)
	}
	if _, err := svc.RefreshPair(pair.RefreshToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected revoked refresh token rejected, got %v", err)
	}
}

func TestJWTService_TokenTypesAreNotInterchangeable(t *testing.T) {
	svc := newJWTService()
	pair, err := svc.GeneratePair(googleUser())
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	if _, err := svc.RefreshPair(pair.AccessToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected access token rejected in refresh flow, got %v", err)
	}
	if _, err := svc.ParseAccessToken(pair.RefreshToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected refresh token rejected as access token, got %v", err)
	}
}

func TestJWTService_RejectsForeignIssuer(t *testing.T) {
	svc := newJWTService()
	now := time.Now().UTC()
	claims := Claims{
		UserID:    "u1",
		Email:     "ana@example.com",
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := svc.ParseAccessToken(signed); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected foreign issuer rejected, got %v", err)
	}
}

func TestJWTService_RejectsTokenSignedWithOtherSecret(t *testing.T) {
	svc := newJWTService()
	other := NewJWTServiceWithStore("other-secret", 15*time.Minute, 30*time.Minute, NewMemoryRefreshTokenStore())

	pair, err := other.GeneratePair(googleUser())
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	if _, err := svc.ParseAccessToken(pair.AccessToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected wrong signature rejected, got %v", err)
	}
}

func TestJWTService_ExpiredAccessTokenReported(t *testing.T) {
	svc := newJWTService()
	now := time.Now().UTC()
	claims := Claims{
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

	if _, err := svc.ParseAccessToken(signed); !errors.Is(err, ErrJWTExpired) {
		t.Fatalf("expected ErrJWTExpired, got %v", err)
	}
}

func TestJWTService_EmptySecretIssuesNothing(t *testing.T) {
	svc := NewJWTServiceWithStore("", 15*time.Minute, 30*time.Minute, NewMemoryRefreshTokenStore())

	if _, err := svc.GeneratePair(googleUser()); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid on empty secret, got %v", err)
	}
	if _, err := svc.ParseAccessToken("whatever"); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected parse refused without secret, got %v", err)
	}
}
