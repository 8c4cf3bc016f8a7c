package jwt_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/earnzy/earnzy-api/internal/pkg/jwt"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := jwt.NewService("test-secret", 15*time.Minute)
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(userID, "device-1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user %s, got %s", userID, claims.UserID)
	}
	if claims.Device != "device-1" {
		t.Fatalf("expected device-1, got %s", claims.Device)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := jwt.NewService("test-secret", -time.Minute)
	token, err := svc.GenerateAccessToken(uuid.New(), "")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	_, err = svc.ValidateAccessToken(token)
	if !errors.Is(err, jwt.ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	token, err := jwt.NewService("secret-a", time.Minute).GenerateAccessToken(uuid.New(), "")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	_, err = jwt.NewService("secret-b", time.Minute).ValidateAccessToken(token)
	if !errors.Is(err, jwt.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
