package utils // package utils provides helpers for password hashing and session tokens

import (
	"crypto/rand"  // secure random number generation
	"encoding/hex" // hex encoding of random ids
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for signing session cookies
)

// ErrInvalidSessionToken is returned for tokens that are malformed, signed
// with another key, expired, or missing the session id.
var ErrInvalidSessionToken = errors.New("invalid session token")

// SessionToken is the signed form of a session id handed to the client.
// Only the id inside is meaningful server-side; the signature lets
// forged cookies be rejected before the session store is consulted.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewSessionID returns 32 bytes of secure random data, hex encoded.
func NewSessionID() (string, error) {
	return randomHex(32)
}

// SignSessionToken builds an HS256 JWT whose jti claim is the session id.
func SignSessionToken(secret, sessionID string, ttl time.Duration) (SessionToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies signature and expiry and returns the session id.
func ParseSessionToken(secret, raw string) (string, error) {
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		// Type assert the signing method to HMAC; reject others.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSessionToken
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid || claims.ID == "" {
		return "", ErrInvalidSessionToken
	}
	return claims.ID, nil
}

// randomHex returns a hex‑encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
