package blobstore

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrURLExpired      = errors.New("signed url has expired")
	ErrBadSignature    = errors.New("signed url signature mismatch")
	ErrMalformedSigned = errors.New("malformed signed url parameters")
)

// Signer produces and verifies time-limited download URLs. The signature
// covers the object key and the expiry so neither can be swapped out.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSigner(secret []byte, ttl time.Duration) *Signer {
	return &Signer{secret: secret, ttl: ttl, now: time.Now}
}

// SignedURL returns a relative download URL for the given object key, valid
// for the signer's TTL.
func (s *Signer) SignedURL(key string) string {
	exp := s.now().Add(s.ttl).Unix()
	sig := s.signature(key, exp)
	return fmt.Sprintf("/files/%s?exp=%d&sig=%s", urlEscapeKey(key), exp, sig)
}

// Verify checks the expiry and signature carried by a download request.
func (s *Signer) Verify(key, expParam, sigParam string) error {
	if expParam == "" || sigParam == "" {
		return ErrMalformedSigned
	}
	exp, err := strconv.ParseInt(expParam, 10, 64)
	if err != nil {
		return ErrMalformedSigned
	}
	expected := s.signature(key, exp)
	if !hmac.Equal([]byte(expected), []byte(sigParam)) {
		return ErrBadSignature
	}
	if s.now().Unix() > exp {
		return ErrURLExpired
	}
	return nil
}

func (s *Signer) signature(key string, exp int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s\n%d", key, exp)
	return hex.EncodeToString(mac.Sum(nil))
}

// urlEscapeKey escapes each key segment while keeping the separating slash.
func urlEscapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
