package sessiontoken

// Package sessiontoken implements the SessionCodec port as an HMAC-SHA256
// signed, base64url-encoded token. The payload is readable by the client;
// the signature makes tampering detectable. Decode fails closed: any
// malformed or tampered input is ErrInvalidToken, never a trusted session.

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	domainauth "github.com/guildtools/rosterd/internal/domain/auth"
	"github.com/guildtools/rosterd/internal/ports"
)

// ErrInvalidToken is returned for any token that cannot be authenticated
// and decoded. Callers treat it as "no session".
var ErrInvalidToken = errors.New("invalid session token")

// maxTokenLen bounds accepted token size before any parsing work.
const maxTokenLen = 8 << 10

// minKeyLen matches the HMAC-SHA256 output size; shorter keys weaken the MAC.
const minKeyLen = 32

// Codec signs and verifies session tokens with a server-held key.
type Codec struct {
	key []byte
}

var _ ports.SessionCodec = (*Codec)(nil)

// NewCodec creates a codec from the server signing secret.
func NewCodec(secret string) (*Codec, error) {
	if len(secret) < minKeyLen {
		return nil, fmt.Errorf("session secret must be at least %d bytes", minKeyLen)
	}
	return &Codec{key: []byte(secret)}, nil
}

// Encode serializes and signs a session into the opaque cookie value.
func (c *Codec) Encode(sess domainauth.Session) (string, error) {
	if sess.ID == "" {
		return "", errors.New("session ID cannot be empty")
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + c.sign(encoded), nil
}

// Decode verifies and deserializes a token back into a session. It performs
// no expiry check; that is a separate, explicit step in the caller.
func (c *Codec) Decode(token string) (domainauth.Session, error) {
	if token == "" || len(token) > maxTokenLen {
		return domainauth.Session{}, ErrInvalidToken
	}

	encoded, sig, ok := strings.Cut(token, ".")
	if !ok || encoded == "" || sig == "" {
		return domainauth.Session{}, ErrInvalidToken
	}

	if !hmac.Equal([]byte(sig), []byte(c.sign(encoded))) {
		return domainauth.Session{}, ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return domainauth.Session{}, ErrInvalidToken
	}

	var sess domainauth.Session
	if unmarshalErr := json.Unmarshal(payload, &sess); unmarshalErr != nil {
		return domainauth.Session{}, ErrInvalidToken
	}
	if sess.ID == "" || sess.User.ID == "" {
		return domainauth.Session{}, ErrInvalidToken
	}

	return sess, nil
}

func (c *Codec) sign(encoded string) string {
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
