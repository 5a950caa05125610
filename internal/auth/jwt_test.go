package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueParseRoundTrip(t *testing.T) {
	pair, err := Issue("kiosk-7", "device", "faceattend", "secret", 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := Parse(pair.AccessToken, "secret", "faceattend")
	require.NoError(t, err)
	assert.Equal(t, "kiosk-7", claims.Subject)
	assert.Equal(t, "device", claims.Role)
}

func TestParseRejectsWrongKey(t *testing.T) {
	pair, err := Issue("kiosk-7", "device", "faceattend", "secret", time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = Parse(pair.AccessToken, "other-secret", "faceattend")
	assert.Error(t, err)
}

func TestParseRejectsIssuerMismatch(t *testing.T) {
	pair, err := Issue("kiosk-7", "device", "someone-else", "secret", time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = Parse(pair.AccessToken, "secret", "faceattend")
	assert.Error(t, err)
}
