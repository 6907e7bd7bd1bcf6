package otpx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSecret(t *testing.T) {
	t.Parallel()

	key := []byte("test-otp-key")

	t.Run("deterministic per inputs", func(t *testing.T) {
		require.Equal(t, Secret(key, "register", "a@x.com"), Secret(key, "register", "a@x.com"))
	})

	t.Run("differs across purposes and subjects", func(t *testing.T) {
		base := Secret(key, "register", "a@x.com")
		require.NotEqual(t, base, Secret(key, "reset-password", "a@x.com"))
		require.NotEqual(t, base, Secret(key, "register", "b@x.com"))
	})

	t.Run("purpose and subject boundary cannot shift", func(t *testing.T) {
		require.NotEqual(t, Secret(key, "ab", "c"), Secret(key, "a", "bc"))
	})
}

func TestCode(t *testing.T) {
	t.Parallel()

	secret := Secret([]byte("test-otp-key"), "register", "a@x.com")
	issued := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	code, err := Code(secret, issued)
	require.NoError(t, err)
	require.Len(t, code, 6)

	t.Run("different issuance time yields a different code", func(t *testing.T) {
		later, err := Code(secret, issued.Add(time.Second))
		require.NoError(t, err)
		require.NotEqual(t, code, later)
	})

	t.Run("matches accepts the derived code", func(t *testing.T) {
		require.True(t, Matches(secret, code, issued))
	})

	t.Run("matches rejects a tampered code", func(t *testing.T) {
		tampered := []byte(code)
		tampered[0] = '0' + (tampered[0]-'0'+1)%10
		require.False(t, Matches(secret, string(tampered), issued))
	})

	t.Run("matches rejects the right code at the wrong time", func(t *testing.T) {
		require.False(t, Matches(secret, code, issued.Add(time.Second)))
	})
}
