package auth

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testKeyHex = "707172737475767778797a7b7c7d7e7f808182838485868788898a8b8c8d8e8f"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("secret-password")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := VerifyPassword(hash, "secret-password")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.False(t, NeedsRehash(hash))
}

func TestHashPassword_Rejects(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)

	_, err = HashPassword(strings.Repeat("a", MaxPasswordLength+1))
	assert.Error(t, err)
}

func TestVerifyPassword_Bcrypt(t *testing.T) {
	raw, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := VerifyPassword(string(raw), "secret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(string(raw), "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.True(t, NeedsRehash(string(raw)))
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	ok, err := VerifyPassword("$argon2id$garbage", "secret")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenService_RoundTrip(t *testing.T) {
	ts, err := NewTokenService(testKeyHex, time.Hour, 24*time.Hour)
	require.NoError(t, err)

	token, err := ts.GenerateAccessToken("user-1", "dicoding")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "v4.local."))

	claims, err := ts.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "dicoding", claims.Username)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestTokenService_Expired(t *testing.T) {
	ts, err := NewTokenService(testKeyHex, time.Minute, time.Hour)
	require.NoError(t, err)

	ts.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := ts.GenerateAccessToken("user-1", "dicoding")
	require.NoError(t, err)

	ts.now = time.Now
	_, err = ts.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestTokenService_WrongKey(t *testing.T) {
	a, err := NewTokenService(testKeyHex, time.Hour, time.Hour)
	require.NoError(t, err)
	b, err := NewTokenService(strings.Repeat("ab", 32), time.Hour, time.Hour)
	require.NoError(t, err)

	token, err := a.GenerateAccessToken("user-1", "dicoding")
	require.NoError(t, err)

	_, err = b.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestNewTokenService_BadKey(t *testing.T) {
	_, err := NewTokenService("abcd", time.Hour, time.Hour)
	assert.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	ts, err := NewTokenService(testKeyHex, time.Hour, time.Hour)
	require.NoError(t, err)

	a, err := ts.GenerateRefreshToken()
	require.NoError(t, err)
	b, err := ts.GenerateRefreshToken()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, HashRefreshToken(a), 64)
	assert.Equal(t, HashRefreshToken(a), HashRefreshToken(a))
	assert.NotEqual(t, HashRefreshToken(a), HashRefreshToken(b))
}

func TestResolveKey(t *testing.T) {
	dir := t.TempDir()

	got, err := ResolveKey(testKeyHex, dir)
	require.NoError(t, err)
	assert.Equal(t, testKeyHex, got)

	_, err = ResolveKey("zz", dir)
	assert.Error(t, err)

	generated, err := ResolveKey("", dir)
	require.NoError(t, err)
	assert.Len(t, generated, keyHexSize)

	onDisk, err := os.ReadFile(filepath.Join(dir, KeyFileName))
	require.NoError(t, err)
	assert.Equal(t, generated, string(onDisk))

	again, err := ResolveKey("", dir)
	require.NoError(t, err)
	assert.Equal(t, generated, again)
}
