package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRequestIdInjectsContextAndHeader(t *testing.T) {
	var seen string
	h := WithRequestId(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(RequestIdKey).(string)
		assert.Equal(t, seen, r.Header.Get("X-Request-ID"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, seen)
}

func TestGetDeviceFingerprintRequiresHeader(t *testing.T) {
	called := false
	h := GetDeviceFingerprint(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		fp, _ := r.Context().Value(FingerprintKey).(string)
		assert.Equal(t, "device-1", fp)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, called)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Device-Fingerprint", "device-1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.True(t, called)
}
