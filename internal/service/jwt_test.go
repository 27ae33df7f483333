package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTRoundTrip(t *testing.T) {
	InitJWT("test-secret")
	token, err := GenerateJWT(42, "alice")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	claims, err := ParseClaims(token)
	if err != nil {
		t.Fatalf("ParseClaims: %v", err)
	}
	if claims.UserID != 42 || claims.Name != "alice" {
		t.Fatalf("claims = %+v", claims)
	}
	id, err := ParseJWT(token)
	if err != nil || id != 42 {
		t.Fatalf("ParseJWT = %d %v", id, err)
	}
}

func TestJWTRejects(t *testing.T) {
	InitJWT("test-secret")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"exp":     time.Now().Add(-time.Minute).Unix(),
	})
	expiredToken, _ := expired.SignedString(jwtSecret)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 1})
	noExpToken, _ := noExp.SignedString(jwtSecret)

	otherKey := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	otherToken, _ := otherKey.SignedString([]byte("other"))

	noUser := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	noUserToken, _ := noUser.SignedString(jwtSecret)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"expired", expiredToken},
		{"missing exp", noExpToken},
		{"wrong key", otherToken},
		{"missing user", noUserToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseClaims(tt.token); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}
