package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "example.com", want: "https://example.com"},
		{in: "  http://example.com/path  ", want: "http://example.com/path"},
		{in: "HTTPS://Example.com", want: "https://Example.com"},
		{in: "", wantErr: true},
		{in: "   ", wantErr: true},
		{in: "https://", wantErr: true},
	}
	for _, tt := range tests {
		got, err := NormalizeURL(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidURL, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestHostnameAndRegistrable(t *testing.T) {
	h, err := Hostname("https://Login.Example.co.uk/a")
	require.NoError(t, err)
	assert.Equal(t, "login.example.co.uk", h)
	assert.Equal(t, "example.co.uk", Registrable(h))
	assert.Equal(t, "127.0.0.1", Registrable("127.0.0.1"))

	_, err = Hostname("/relative")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "Safe | No PhishStats match", ResultString(StatusSafe, "No PhishStats match"))
	assert.Equal(t, "Malicious", ResultString(StatusMalicious, ""))

	s, ok := StatusFromResult("Suspicious | PhishStats match")
	assert.True(t, ok)
	assert.Equal(t, StatusSuspicious, s)
	s, ok = StatusFromResult("Malicious")
	assert.True(t, ok)
	assert.Equal(t, StatusMalicious, s)
	_, ok = StatusFromResult("whatever")
	assert.False(t, ok)
}
