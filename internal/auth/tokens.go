package auth

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"aidanwoods.dev/go-paseto"
)

const (
	// PASETO v4 symmetric key requirements.
	keyBytesSize = 32
	keyHexSize   = 64
)

var ErrInvalidToken = errors.New("invalid token")

// TokenService issues and verifies PASETO v4.local bearer tokens. The subject
// claim carries the author ID.
type TokenService struct {
	symmetricKey paseto.V4SymmetricKey
	ttl          time.Duration
	issuer       string
	audience     string
	now          func() time.Time
}

// NewTokenService creates a token service from a 64 character hex key.
func NewTokenService(keyHex string, ttl time.Duration, issuer, audience string) (*TokenService, error) {
	if len(keyHex) != keyHexSize {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d hex characters (%d bytes), got %d", keyHexSize, keyBytesSize, len(keyHex))
	}

	keyBytes, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string for PASETO key: %w", err)
	}

	key, err := paseto.V4SymmetricKeyFromBytes(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &TokenService{
		symmetricKey: key,
		ttl:          ttl,
		issuer:       issuer,
		audience:     audience,
		now:          time.Now,
	}, nil
}

// Issue creates an access token for the author.
func (s *TokenService) Issue(authorID uint) (string, time.Time) {
	now := s.now()
	expires := now.Add(s.ttl)

	token := paseto.NewToken()
	token.SetIssuer(s.issuer)
	token.SetSubject(strconv.FormatUint(uint64(authorID), 10))
	token.SetAudience(s.audience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(expires)

	return token.V4Encrypt(s.symmetricKey, nil), expires
}

// Verify decrypts a token, checks its claims and returns the author ID.
func (s *TokenService) Verify(tokenString string) (uint, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(s.audience))
	parser.AddRule(paseto.IssuedBy(s.issuer))
	parser.AddRule(paseto.ValidAt(s.now()))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	subject, err := token.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	id, err := strconv.ParseUint(subject, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, subject)
	}
	return uint(id), nil
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}
