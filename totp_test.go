package steam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// base64 of "sharedsecret0123true", 20 raw bytes like a real shared
// secret.
const testSharedSecret = "c2hhcmVkc2VjcmV0MDEyM3RydWU="

func TestGenerateTwoFactorCodeForTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		time int64
		want string
	}{
		{"window start", 1700000000, "FH4G3"},
		{"next window", 1700000015, "HYCFH"},
		{"older epoch", 1234567890, "KKVTM"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			code, err := GenerateTwoFactorCodeForTime(testSharedSecret, tt.time)
			require.NoError(t, err)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestGenerateTwoFactorCodeStableWithinWindow(t *testing.T) {
	t.Parallel()

	// 1700000015 and 1700000029 share the [1700000010, 1700000040)
	// window; 1700000000 is the previous one.
	a, err := GenerateTwoFactorCodeForTime(testSharedSecret, 1700000015)
	require.NoError(t, err)
	b, err := GenerateTwoFactorCodeForTime(testSharedSecret, 1700000029)
	require.NoError(t, err)
	c, err := GenerateTwoFactorCodeForTime(testSharedSecret, 1700000000)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestGenerateTwoFactorCodeAlphabet(t *testing.T) {
	t.Parallel()

	code, err := GenerateTwoFactorCodeForTime(testSharedSecret, 1700000000)
	require.NoError(t, err)
	require.Len(t, code, 5)
	for _, r := range code {
		assert.Contains(t, twoFactorChars, string(r))
	}
}

func TestGenerateTwoFactorCodeBadSecret(t *testing.T) {
	t.Parallel()

	_, err := GenerateTwoFactorCodeForTime("not base64 !!!", 1700000000)
	assert.Error(t, err)
}
