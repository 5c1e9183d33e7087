// Package signedurl mints and verifies expiring download tokens bound to a file id.
//
// A token is rendered as the query parameters file_id, expires and signature.
// The signature is HMAC-SHA256 over a versioned canonical encoding of the file id
// and the absolute expiry, so any replica holding the same secret can verify a
// token without shared state.
package signedurl

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

const (
	// Query parameter names.
	ParamFileID    = "file_id"
	ParamExpires   = "expires"
	ParamSignature = "signature"

	// CanonicalVersion prefixes every MAC input. Changing the payload layout
	// requires a new version tag.
	CanonicalVersion = "fgw-url-v1"

	// MinSecretLength is the minimum accepted secret size in bytes.
	MinSecretLength = 32
)

var (
	ErrSecretTooShort = errors.New("signing secret is too short")
	ErrInvalidTTL     = errors.New("ttl must be positive")
	ErrEmptyFileID    = errors.New("file id is required")
)

// Config holds signer settings. Secret is read-only after construction.
type Config struct {
	Secret []byte
	// ClockSkew is a grace window added to the expiry during verification.
	ClockSkew time.Duration
	// Now overrides the time source; nil means time.Now.
	Now func() time.Time
}

// Token is a minted download credential.
type Token struct {
	FileID    string
	ExpiresAt int64
	Signature string
	// Label is a display name for rendering only. It is not signed.
	Label string
}

// Query encodes the signed fields as URL query parameters.
func (t Token) Query() url.Values {
	v := url.Values{}
	v.Set(ParamFileID, t.FileID)
	v.Set(ParamExpires, strconv.FormatInt(t.ExpiresAt, 10))
	v.Set(ParamSignature, t.Signature)
	return v
}

// Signer is safe for concurrent use.
type Signer struct {
	secret    []byte
	clockSkew time.Duration
	now       func() time.Time
}

// New validates cfg and builds a signer. The secret is copied.
func New(cfg *Config) (*Signer, error) {
	if cfg == nil || len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: need at least %d bytes", ErrSecretTooShort, MinSecretLength)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	skew := cfg.ClockSkew
	if skew < 0 {
		skew = 0
	}

	return &Signer{secret: secret, clockSkew: skew, now: now}, nil
}

// Sign mints a token valid until now+ttl (truncated to whole seconds).
func (s *Signer) Sign(fileID string, ttl time.Duration, label string) (Token, error) {
	if fileID == "" {
		return Token{}, ErrEmptyFileID
	}
	if ttl <= 0 {
		return Token{}, ErrInvalidTTL
	}
	expiresAt := s.now().Add(ttl).Unix()
	return Token{
		FileID:    fileID,
		ExpiresAt: expiresAt,
		Signature: hex.EncodeToString(s.mac(fileID, expiresAt)),
		Label:     label,
	}, nil
}

// Verify checks a token rendered as query parameters and returns its file id.
// The MAC is checked before the expiry so a forged tuple never reports Expired.
func (s *Signer) Verify(query url.Values) (string, error) {
	fileID := query.Get(ParamFileID)
	rawExpires := query.Get(ParamExpires)
	rawSig := query.Get(ParamSignature)
	if fileID == "" || rawExpires == "" || rawSig == "" {
		return "", newError(ReasonMalformed, "missing token field")
	}

	expiresAt, err := parseExpires(rawExpires)
	if err != nil {
		return "", newError(ReasonMalformed, err.Error())
	}

	provided, err := hex.DecodeString(rawSig)
	if err != nil {
		return "", newError(ReasonInvalid, "signature is not hex")
	}
	if !hmac.Equal(provided, s.mac(fileID, expiresAt)) {
		return "", newError(ReasonInvalid, "signature mismatch")
	}

	deadline := time.Unix(expiresAt, 0).Add(s.clockSkew)
	if s.now().After(deadline) {
		return "", newError(ReasonExpired, fmt.Sprintf("expired at %d", expiresAt))
	}

	return fileID, nil
}

func (s *Signer) mac(fileID string, expiresAt int64) []byte {
	h := hmac.New(sha256.New, s.secret)
	_, _ = h.Write(canonical(fileID, expiresAt))
	return h.Sum(nil)
}

// canonical returns the v1 MAC input: version, file id and decimal expiry
// separated by NUL bytes. File ids never contain NUL.
func canonical(fileID string, expiresAt int64) []byte {
	b := make([]byte, 0, len(CanonicalVersion)+len(fileID)+22)
	b = append(b, CanonicalVersion...)
	b = append(b, 0)
	b = append(b, fileID...)
	b = append(b, 0)
	b = strconv.AppendInt(b, expiresAt, 10)
	return b
}

// parseExpires accepts only plain decimal digits; signs and spaces are rejected.
func parseExpires(raw string) (int64, error) {
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, fmt.Errorf("expires is not numeric")
		}
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("expires out of range")
	}
	return v, nil
}
