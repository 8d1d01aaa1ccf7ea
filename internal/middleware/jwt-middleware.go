package middleware

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	app_error "github.com/ToyoKou0322/my-sns-app/internal/errors"
	"github.com/ToyoKou0322/my-sns-app/internal/utils"
)

type claimsKey string

const UserClaimsKey claimsKey = "userClaims"

// JWTAuth verifies the bearer token and checks the device still holds a live
// session. Expired tokens are not refreshed here; the client calls the
// refresh endpoint and retries.
func JWTAuth(publicKey *rsa.PublicKey, rdb *redis.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fp, ok := r.Context().Value(FingerprintKey).(string)
			if !ok || fp == "" {
				writeAppError(w, app_error.NewAppError(http.StatusUnauthorized, "Missing device fingerprint", "fingerprint"))
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAppError(w, app_error.NewAppError(http.StatusUnauthorized, "Missing Authorization header", "auth"))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				writeAppError(w, app_error.NewAppError(http.StatusUnauthorized, "Invalid Authorization header format", "auth"))
				return
			}

			tokenStr := parts[1]

			claims, err := utils.ParseAndVerifySign(tokenStr, publicKey)
			if err != nil {
				log.Error().Err(err).Msg("jwt verify failed")
				writeAppError(w, app_error.NewAppError(http.StatusUnauthorized, "Invalid or expired token", "auth"))
				return
			}

			sessionKey := fmt.Sprintf("session:%s:%s", claims.Sub, fp)
			exists, rErr := rdb.Exists(r.Context(), sessionKey).Result()
			if rErr != nil || exists == 0 {
				writeAppError(w, app_error.NewAppError(http.StatusUnauthorized, "Session not found or revoked", "session"))
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAppError(w http.ResponseWriter, appErr *app_error.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Code)
	_ = appErr.JSON(w)
}
