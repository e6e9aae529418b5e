package crypto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veritum/veritum-pro/pkg/crypto"
)

func TestEncryptor_RoundTrip(t *testing.T) {
	enc, err := crypto.NewEncryptor("")
	require.NoError(t, err)

	t.Run("encrypts and decrypts bytes", func(t *testing.T) {
		plaintext := []byte("sb-secret-key-for-tenant-database")

		ciphertext, err := enc.Encrypt(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, ciphertext)

		decrypted, err := enc.Decrypt(ciphertext)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	})

	t.Run("encrypts and decrypts strings", func(t *testing.T) {
		sealed, err := enc.EncryptString("https://tenant.example.db")
		require.NoError(t, err)

		opened, err := enc.DecryptString(sealed)
		require.NoError(t, err)
		assert.Equal(t, "https://tenant.example.db", opened)
	})

	t.Run("different encryptor cannot decrypt", func(t *testing.T) {
		other, err := crypto.NewEncryptor("")
		require.NoError(t, err)

		sealed, err := enc.EncryptString("secret")
		require.NoError(t, err)

		_, err = other.DecryptString(sealed)
		assert.Error(t, err)
	})
}

func TestEncryptor_PersistentKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	first, err := crypto.NewEncryptor(key)
	require.NoError(t, err)

	sealed, err := first.EncryptString("carried across restarts")
	require.NoError(t, err)

	// A second encryptor from the same identity reads the first's output.
	second, err := crypto.NewEncryptor(key)
	require.NoError(t, err)

	opened, err := second.DecryptString(sealed)
	require.NoError(t, err)
	assert.Equal(t, "carried across restarts", opened)
}

func TestNewEncryptor_InvalidKey(t *testing.T) {
	_, err := crypto.NewEncryptor("not-an-age-identity")
	assert.Error(t, err)
}

func TestGenerateRandomString(t *testing.T) {
	s, err := crypto.GenerateRandomString(32)
	require.NoError(t, err)
	assert.Len(t, s, 32)

	other, err := crypto.GenerateRandomString(32)
	require.NoError(t, err)
	assert.NotEqual(t, s, other)
}
