package sessiontoken

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/guildtools/rosterd/internal/domain/auth"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testSession() domainauth.Session {
	return domainauth.Session{
		ID: "sess-1",
		User: domainauth.User{
			ID:       "user-1",
			Username: "tester",
			Level:    domainauth.LevelModerator,
			Roles:    []string{"role-mod"},
		},
		AccessToken: "access-token",
		ExpiresAt:   time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}
}

func TestNewCodec_RejectsShortSecret(t *testing.T) {
	_, err := NewCodec("too-short")
	require.Error(t, err)

	_, err = NewCodec(testSecret)
	require.NoError(t, err)
}

func TestCodec_RoundTrip(t *testing.T) {
	codec, err := NewCodec(testSecret)
	require.NoError(t, err)

	token, err := codec.Encode(testSession())
	require.NoError(t, err)
	require.Contains(t, token, ".")

	decoded, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", decoded.ID)
	assert.Equal(t, "user-1", decoded.User.ID)
	assert.Equal(t, domainauth.LevelModerator, decoded.User.Level)
	assert.Equal(t, []string{"role-mod"}, decoded.User.Roles)
}

func TestCodec_Encode_RequiresSessionID(t *testing.T) {
	codec, err := NewCodec(testSecret)
	require.NoError(t, err)

	sess := testSession()
	sess.ID = ""
	_, err = codec.Encode(sess)
	require.Error(t, err)
}

func TestCodec_Decode_RejectsTampering(t *testing.T) {
	codec, err := NewCodec(testSecret)
	require.NoError(t, err)

	token, err := codec.Encode(testSession())
	require.NoError(t, err)

	payload, sig, ok := strings.Cut(token, ".")
	require.True(t, ok)

	// Flip a payload character; the signature no longer matches.
	flipped := []byte(payload)
	if flipped[0] == 'A' {
		flipped[0] = 'B'
	} else {
		flipped[0] = 'A'
	}
	_, err = codec.Decode(string(flipped) + "." + sig)
	require.ErrorIs(t, err, ErrInvalidToken)

	// Truncated signature.
	_, err = codec.Decode(payload + "." + sig[:len(sig)-2])
	require.ErrorIs(t, err, ErrInvalidToken)

	// Signature from a different key.
	otherCodec, err := NewCodec("ffffffffffffffffffffffffffffffff")
	require.NoError(t, err)
	otherToken, err := otherCodec.Encode(testSession())
	require.NoError(t, err)
	_, err = codec.Decode(otherToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_Decode_RejectsMalformedInput(t *testing.T) {
	codec, err := NewCodec(testSecret)
	require.NoError(t, err)

	for _, token := range []string{
		"",
		"no-dot",
		".sig-only",
		"payload-only.",
		"!!!not-base64!!!.signature",
		strings.Repeat("a", 9000) + ".sig",
	} {
		_, decodeErr := codec.Decode(token)
		if !errors.Is(decodeErr, ErrInvalidToken) {
			t.Fatalf("Decode(%q) = %v, want ErrInvalidToken", token, decodeErr)
		}
	}
}

func TestCodec_Decode_NoExpiryCheck(t *testing.T) {
	codec, err := NewCodec(testSecret)
	require.NoError(t, err)

	sess := testSession()
	sess.ExpiresAt = time.Now().Add(-time.Hour)
	token, err := codec.Encode(sess)
	require.NoError(t, err)

	// Expiry is the caller's explicit step, not the codec's.
	decoded, err := codec.Decode(token)
	require.NoError(t, err)
	assert.True(t, decoded.Expired(time.Now()))
}
