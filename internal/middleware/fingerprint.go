package middleware

import (
	"context"
	"net/http"

	app_error "github.com/ToyoKou0322/my-sns-app/internal/errors"
)

type fingerprintKey string

const FingerprintKey fingerprintKey = "deviceFingerprint"

// GetDeviceFingerprint requires the per-device id the client generates on
// first load. Read markers and sessions are keyed by it, so requests without
// one are rejected up front.
func GetDeviceFingerprint(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fingerprint := r.Header.Get("X-Device-Fingerprint")
		if fingerprint == "" {
			writeAppError(w, app_error.NewAppError(http.StatusBadRequest, "Missing device fingerprint", "fingerprint"))
			return
		}
		ctx := context.WithValue(r.Context(), FingerprintKey, fingerprint)
		r = r.WithContext(ctx)

		next.ServeHTTP(w, r)
	})
}
