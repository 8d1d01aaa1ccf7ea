package state

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestKeyPair(t *testing.T, dir string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "private.pem"), privBytes, 0600))

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubBytes := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubDER,
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "public.pem"), pubBytes, 0644))
}

func chdirTemp(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestInitSecret_Success(t *testing.T) {
	dir := chdirTemp(t)
	writeTestKeyPair(t, dir)

	secret, err := InitSecret()

	require.NoError(t, err)
	require.NotNil(t, secret)
	assert.NotNil(t, secret.Private)
	assert.NotNil(t, secret.Public)
	assert.Equal(t, &secret.Private.PublicKey, secret.Public, "key pair should match")
}

func TestInitSecret_MissingPrivateKey(t *testing.T) {
	chdirTemp(t)

	secret, err := InitSecret()

	assert.Error(t, err)
	assert.Nil(t, secret)
}

func TestInitSecret_MalformedKey(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "private.pem"), []byte("not a pem"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "public.pem"), []byte("not a pem"), 0644))

	secret, err := InitSecret()

	assert.Error(t, err)
	assert.Nil(t, secret)
}
