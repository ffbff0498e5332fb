package token

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	for _, tc := range []struct {
		id   int64
		role string
	}{
		{1, "user"},
		{42, "teacher"},
		{9001, "admin"},
	} {
		signed, err := svc.Issue(tc.id, tc.role)
		require.NoError(t, err)

		claims, err := svc.Verify(signed)
		require.NoError(t, err)
		require.Equal(t, tc.id, claims.UserID)
		require.Equal(t, tc.role, claims.Role)
		require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
	}
}

func TestVerifyExpired(t *testing.T) {
	svc := NewService("test-secret", -time.Minute)
	signed, err := svc.Issue(1, "user")
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerifyTamperedSignature(t *testing.T) {
	svc := NewService("test-secret", time.Hour)
	signed, err := svc.Issue(1, "user")
	require.NoError(t, err)

	parts := strings.Split(signed, ".")
	require.Len(t, parts, 3)
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	require.NoError(t, err)
	for i := range sig {
		mutated := make([]byte, len(sig))
		copy(mutated, sig)
		mutated[i] ^= 0x01
		tampered := parts[0] + "." + parts[1] + "." + base64.RawURLEncoding.EncodeToString(mutated)
		_, err := svc.Verify(tampered)
		require.ErrorIs(t, err, ErrInvalid, "flipped signature byte %d must not verify", i)
	}
}

func TestVerifyTamperedPayload(t *testing.T) {
	svc := NewService("test-secret", time.Hour)
	signed, err := svc.Issue(1, "user")
	require.NoError(t, err)

	parts := strings.Split(signed, ".")
	// Swap in a payload claiming admin; the signature no longer matches.
	other, err := svc.Issue(1, "admin")
	require.NoError(t, err)
	otherParts := strings.Split(other, ".")

	_, err = svc.Verify(parts[0] + "." + otherParts[1] + "." + parts[2])
	require.ErrorIs(t, err, ErrInvalid)
}

func TestVerifyWrongSecret(t *testing.T) {
	signed, err := NewService("secret-a", time.Hour).Issue(1, "user")
	require.NoError(t, err)

	_, err = NewService("secret-b", time.Hour).Verify(signed)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestVerifyGarbage(t *testing.T) {
	svc := NewService("test-secret", time.Hour)
	for _, raw := range []string{"", "junk", "a.b", "a.b.c.d"} {
		_, err := svc.Verify(raw)
		require.ErrorIs(t, err, ErrInvalid, "raw=%q", raw)
	}
}

func TestDefaultTTL(t *testing.T) {
	require.Equal(t, DefaultTTL, NewService("s", 0).TTL())
	require.Equal(t, time.Minute, NewService("s", time.Minute).TTL())
}
