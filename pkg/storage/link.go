package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidLink covers malformed tokens and bad signatures.
	ErrInvalidLink = errors.New("invalid download link")
	// ErrLinkExpired is returned once a link is past its expiry.
	ErrLinkExpired = errors.New("download link expired")
)

// Link is the payload of a signed download token.
type Link struct {
	JobID     string
	Key       string
	ExpiresAt time.Time
}

// LinkSigner issues HMAC-SHA256 tokens of the form
// jobID.expiryUnix.base64(key).signature.
type LinkSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewLinkSigner constructs a signer. A zero ttl means 15 minutes.
func NewLinkSigner(secret string, ttl time.Duration) *LinkSigner {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &LinkSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is how long issued links stay valid.
func (s *LinkSigner) TTL() time.Duration { return s.ttl }

// Sign returns a token granting access to key for the signer's TTL.
func (s *LinkSigner) Sign(jobID, key string) (string, Link, error) {
	if jobID == "" || key == "" {
		return "", Link{}, fmt.Errorf("job id and key are required")
	}
	if strings.Contains(jobID, ".") {
		return "", Link{}, fmt.Errorf("job id %q cannot be signed", jobID)
	}
	if len(s.secret) == 0 {
		return "", Link{}, fmt.Errorf("link signing secret missing")
	}
	link := Link{JobID: jobID, Key: key, ExpiresAt: s.now().Add(s.ttl).Truncate(time.Second)}
	payload := strings.Join([]string{
		jobID,
		strconv.FormatInt(link.ExpiresAt.Unix(), 10),
		base64.RawURLEncoding.EncodeToString([]byte(key)),
	}, ".")
	return payload + "." + s.mac(payload), link, nil
}

// Verify checks the signature and expiry of token.
func (s *LinkSigner) Verify(token string) (Link, error) {
	idx := strings.LastIndex(token, ".")
	if idx < 0 || len(s.secret) == 0 {
		return Link{}, ErrInvalidLink
	}
	payload, signature := token[:idx], token[idx+1:]
	if !hmac.Equal([]byte(s.mac(payload)), []byte(signature)) {
		return Link{}, ErrInvalidLink
	}

	parts := strings.Split(payload, ".")
	if len(parts) != 3 {
		return Link{}, ErrInvalidLink
	}
	expiry, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Link{}, ErrInvalidLink
	}
	key, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return Link{}, ErrInvalidLink
	}

	link := Link{JobID: parts[0], Key: string(key), ExpiresAt: time.Unix(expiry, 0)}
	if !s.now().Before(link.ExpiresAt) {
		return link, ErrLinkExpired
	}
	return link, nil
}

func (s *LinkSigner) mac(payload string) string {
	h := hmac.New(sha256.New, s.secret)
	_, _ = h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}
