// Package token mints and verifies the signed session and association
// tokens handed to clients. Tokens are two URL-safe base64 halves joined by
// a dot: the raw payload and its HMAC-SHA-256 signature under a
// process-wide key.
package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultExpiry is how long a freshly minted session token stays valid.
const DefaultExpiry = 30 * 24 * time.Hour

const (
	sessionPayloadLen = 12 // user id u32 BE + expiry u64 BE unix seconds
	assocPayloadLen   = 16 // raw uuid
	signatureLen      = sha256.Size
	keyLen            = 32
)

var (
	// ErrExpired means the signature checked out but the token is stale.
	ErrExpired = errors.New("token: expired")
	// ErrInvalid means the token is malformed or the signature is wrong.
	ErrInvalid = errors.New("token: invalid")
)

var encoding = base64.RawURLEncoding

// Service signs and verifies tokens with one persistent key.
type Service struct {
	key []byte
	now func() time.Time
}

// NewService wraps an existing 32-byte key.
func NewService(key []byte) (*Service, error) {
	if len(key) != keyLen {
		return nil, fmt.Errorf("token: key must be %d bytes, got %d", keyLen, len(key))
	}
	return &Service{key: key, now: time.Now}, nil
}

// Load reads the signing key from path, generating and persisting a fresh
// one on first start. Restarting without the key file invalidates every
// outstanding token.
func Load(path string) (*Service, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		return NewService(key)
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("token: reading key %s: %w", path, err)
	}

	key = make([]byte, keyLen)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("token: generating key: %w", err)
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("token: persisting key %s: %w", path, err)
	}
	slog.Info("generated new token signing key", "path", path)
	return NewService(key)
}

func (s *Service) sign(payload []byte) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(payload)
	sig := mac.Sum(nil)
	return encoding.EncodeToString(payload) + "." + encoding.EncodeToString(sig)
}

func (s *Service) open(token string, payloadLen int) ([]byte, error) {
	msg, sig, ok := strings.Cut(token, ".")
	if !ok {
		return nil, ErrInvalid
	}
	payload, err := encoding.DecodeString(msg)
	if err != nil || len(payload) != payloadLen {
		return nil, ErrInvalid
	}
	signature, err := encoding.DecodeString(sig)
	if err != nil || len(signature) != signatureLen {
		return nil, ErrInvalid
	}
	mac := hmac.New(sha256.New, s.key)
	mac.Write(payload)
	if !hmac.Equal(mac.Sum(nil), signature) {
		return nil, ErrInvalid
	}
	return payload, nil
}

// Mint issues a session token for userID with the default expiry.
func (s *Service) Mint(userID uint32) string {
	return s.MintWithExpiry(userID, DefaultExpiry)
}

// MintWithExpiry issues a session token valid for ttl.
func (s *Service) MintWithExpiry(userID uint32, ttl time.Duration) string {
	var payload [sessionPayloadLen]byte
	binary.BigEndian.PutUint32(payload[0:4], userID)
	binary.BigEndian.PutUint64(payload[4:12], uint64(s.now().Add(ttl).Unix()))
	return s.sign(payload[:])
}

// Verify checks a session token and returns the user id it was minted for.
func (s *Service) Verify(token string) (uint32, error) {
	payload, err := s.open(token, sessionPayloadLen)
	if err != nil {
		return 0, err
	}
	userID := binary.BigEndian.Uint32(payload[0:4])
	expiry := int64(binary.BigEndian.Uint64(payload[4:12]))
	if s.now().Unix() > expiry {
		return 0, ErrExpired
	}
	return userID, nil
}

// MintAssoc issues an association token over a fresh UUID payload.
func (s *Service) MintAssoc() (string, uuid.UUID) {
	id := uuid.New()
	return s.sign(id[:]), id
}

// VerifyAssoc checks an association token and returns its UUID.
func (s *Service) VerifyAssoc(token string) (uuid.UUID, error) {
	payload, err := s.open(token, assocPayloadLen)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.FromBytes(payload)
}
