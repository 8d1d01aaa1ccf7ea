package websocket

import (
	"crypto/rsa"
	"fmt"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/ToyoKou0322/my-sns-app/internal/middleware"
	"github.com/ToyoKou0322/my-sns-app/internal/utils"
)

type AuthenticatorFunc func(r *http.Request) (userID string, err error)

type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// JWTWebSocketAuth verifies the bearer token and the device session during
// the handshake. Expired tokens cannot be refreshed mid-handshake; the client
// refreshes over http and reconnects.
func JWTWebSocketAuth(publicKey *rsa.PublicKey, rdb *redis.Client) AuthenticatorFunc {
	return func(r *http.Request) (string, error) {
		fp, ok := r.Context().Value(middleware.FingerprintKey).(string)
		if !ok || fp == "" {
			return "", &AuthError{Message: "missing device fingerprint"}
		}

		token := getTokenFromRequest(r)
		if token == "" {
			return "", &AuthError{Message: "missing token"}
		}

		claims, err := utils.ParseAndVerifySign(token, publicKey)
		if err != nil {
			return "", &AuthError{Message: "invalid or expired token, refresh and reconnect"}
		}

		sessionKey := fmt.Sprintf("session:%s:%s", claims.Sub, fp)
		exists, err := rdb.Exists(r.Context(), sessionKey).Result()
		if err != nil || exists == 0 {
			return "", &AuthError{Message: "session not found or revoked"}
		}

		return claims.Sub, nil
	}
}

func getTokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	// browsers cannot set headers on the ws handshake, so the token usually
	// arrives as a query parameter
	token := r.URL.Query().Get("token")
	if token != "" {
		return token
	}

	cookie, err := r.Cookie("access_token")
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return ""
}
