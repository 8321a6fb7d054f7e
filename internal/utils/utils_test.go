package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_NeverPlaintext(t *testing.T) {
	for _, pw := range []string{"longenough", "correct horse battery", "12345678"} {
		h, err := HashPassword(pw, bcrypt.MinCost)
		require.NoError(t, err)
		assert.NotEqual(t, pw, h)
		assert.True(t, VerifyPassword(h, pw))
		assert.False(t, VerifyPassword(h, pw+"x"))
	}
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("longenough", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := HashPassword("longenough", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashPassword_Cost(t *testing.T) {
	h, err := HashPassword("longenough", 10)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(h))
	require.NoError(t, err)
	assert.Equal(t, 10, cost)
}

func TestHashPassword_RejectsOverlong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("p", MaxPasswordBytes+1), bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	h, err := HashPassword(strings.Repeat("p", MaxPasswordBytes), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(h, strings.Repeat("p", MaxPasswordBytes)))
}

func TestVerifyMissing_DoesBcryptWork(t *testing.T) {
	VerifyMissing("warm-up")
	cost, err := bcrypt.Cost(missHash())
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestSessionToken_RoundTrip(t *testing.T) {
	sid, err := NewSessionID()
	require.NoError(t, err)
	assert.Len(t, sid, 64)

	tok, err := SignSessionToken("secret", sid, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, 5*time.Second)

	got, err := ParseSessionToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, sid, got)
}

func TestParseSessionToken_Rejects(t *testing.T) {
	tok, err := SignSessionToken("secret", "sid", time.Hour)
	require.NoError(t, err)
	expired, err := SignSessionToken("secret", "sid", -time.Minute)
	require.NoError(t, err)
	noID, err := SignSessionToken("secret", "", time.Hour)
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"wrong key": tok.Token,
		"garbage":   "not-a-jwt",
		"empty":     "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSessionToken("other", raw)
			assert.ErrorIs(t, err, ErrInvalidSessionToken)
		})
	}

	_, err = ParseSessionToken("secret", expired.Token)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
	_, err = ParseSessionToken("secret", noID.Token)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}
