package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestStore_SetAndRead(t *testing.T) {
	s := NewStore(NewMemoryProvider())

	_, ok := s.Token()
	assert.False(t, ok, "fresh store must have no token")

	require.NoError(t, s.SetSession("T1", "a@x.com"))

	token, ok := s.Token()
	assert.True(t, ok)
	assert.Equal(t, "T1", token)
	assert.Equal(t, "a@x.com", s.Email())
}

func TestStore_EmptyTokenIsAbsent(t *testing.T) {
	s := NewStore(NewMemoryProvider())
	require.NoError(t, s.SetSession("", "a@x.com"))

	_, ok := s.Token()
	assert.False(t, ok)

	_, ok = s.Current()
	assert.False(t, ok)
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	s := NewStore(NewMemoryProvider())
	require.NoError(t, s.SetSession("T1", "a@x.com"))

	require.NoError(t, s.ClearSession())
	require.NoError(t, s.ClearSession())

	_, ok := s.Token()
	assert.False(t, ok)
	assert.Empty(t, s.Email())
}

func TestStore_EmailFallsBackToClaim(t *testing.T) {
	p := NewMemoryProvider()
	s := NewStore(p)
	token := signedToken(t, jwt.MapClaims{"sub": "7", "email": "claim@x.com"})
	require.NoError(t, p.Set(KeyToken, token))

	assert.Equal(t, "claim@x.com", s.Email())
}

func TestTokenSource_ReadsAtCallTime(t *testing.T) {
	s := NewStore(NewMemoryProvider())
	ts := s.TokenSource()

	_, err := ts.Token()
	assert.True(t, errors.Is(err, ErrNoSession))

	require.NoError(t, s.SetSession("T1", "a@x.com"))
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "T1", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.Type())

	require.NoError(t, s.SetSession("T2", "a@x.com"))
	tok, err = ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "T2", tok.AccessToken)
}

func TestParseClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, jwt.MapClaims{
		"sub":   "42",
		"email": "a@x.com",
		"name":  "Alice",
		"exp":   exp.Unix(),
	})

	claims, err := ParseClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "Alice", claims.Name)
	assert.True(t, claims.ExpiresAt.Equal(exp))
}

func TestParseClaims_Opaque(t *testing.T) {
	_, err := ParseClaims("T1")
	assert.Error(t, err)
}

func TestFileProvider_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	first := NewStore(NewFileProvider(dir))
	require.NoError(t, first.SetSession("T1", "a@x.com"))

	second := NewStore(NewFileProvider(dir))
	token, ok := second.Token()
	assert.True(t, ok)
	assert.Equal(t, "T1", token)
	assert.Equal(t, "a@x.com", second.Email())

	info, err := os.Stat(filepath.Join(dir, "session.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileProvider_ClearRemovesFile(t *testing.T) {
	dir := t.TempDir()
	p := NewFileProvider(dir)
	s := NewStore(p)
	require.NoError(t, s.SetSession("T1", "a@x.com"))

	require.NoError(t, s.ClearSession())

	_, err := os.Stat(p.Path())
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, s.ClearSession())
}

func TestFileProvider_CorruptFileReadsEmpty(t *testing.T) {
	dir := t.TempDir()
	p := NewFileProvider(dir)
	require.NoError(t, os.WriteFile(p.Path(), []byte("{not json"), 0600))

	_, ok := p.Get(KeyToken)
	assert.False(t, ok)

	require.NoError(t, p.Set(KeyToken, "T1"))
	v, ok := p.Get(KeyToken)
	assert.True(t, ok)
	assert.Equal(t, "T1", v)
}
