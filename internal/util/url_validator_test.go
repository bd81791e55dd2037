package util

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequestURL_Valid(t *testing.T) {
	tests := []struct {
		name string
		url  string
		host string
	}{
		{"https", "https://restcountries.com/v3.1/all", "restcountries.com"},
		{"http with port", "http://127.0.0.1:8089/v3.1/name/israel", "127.0.0.1"},
		{"with query", "https://restcountries.com/v3.1/all?fields=name,cca2", "restcountries.com"},
		{"upper case scheme", "HTTPS://restcountries.com", "restcountries.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseRequestURL(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.host, parsed.Hostname())
		})
	}
}

func TestParseRequestURL_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		reason string
	}{
		{"empty", "", "URL cannot be empty"},
		{"blank", "   ", "URL cannot be empty"},
		{"no scheme", "restcountries.com/v3.1/all", "unsupported scheme"},
		{"file scheme", "file:///etc/passwd", "unsupported scheme"},
		{"javascript scheme", "javascript:alert(1)", "unsupported scheme"},
		{"missing host", "http://", "missing host"},
		{"bad syntax", "http://[::1", "invalid URL syntax"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRequestURL(tt.url)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.reason)

			var validationErr *URLValidationError
			assert.True(t, errors.As(err, &validationErr))
		})
	}
}

func TestValidateBaseURL_PrivateHosts(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"localhost", "http://localhost:8089/v3.1"},
		{"loopback", "http://127.0.0.1:8089"},
		{"private 10/8", "http://10.1.2.3"},
		{"private 192.168", "http://192.168.1.10"},
		{"link local", "http://169.254.169.254/latest"},
		{"carrier grade nat", "http://100.64.0.1"},
		{"test net", "http://203.0.113.7"},
		{"ipv6 loopback", "http://[::1]:8080"},
		{"unspecified", "http://0.0.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBaseURL(tt.url, false)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "allow-private-ips")

			assert.NoError(t, ValidateBaseURL(tt.url, true))
		})
	}
}

func TestValidateBaseURL_PublicIP(t *testing.T) {
	assert.NoError(t, ValidateBaseURL("https://8.8.8.8/v3.1", false))
}

func TestValidateBaseURL_RejectsSyntaxEvenWhenPrivateAllowed(t *testing.T) {
	assert.Error(t, ValidateBaseURL("ftp://127.0.0.1", true))
}

func TestURLValidationError_Message(t *testing.T) {
	err := &URLValidationError{URL: "x", Reason: "missing host"}
	assert.Equal(t, `invalid URL "x": missing host`, err.Error())
}
