package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseJWKSEndpoints(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]string
	}{
		{
			name:     "empty",
			input:    "",
			expected: map[string]string{},
		},
		{
			name:  "single pair",
			input: "https://auth.example.com=https://auth.example.com/.well-known/jwks.json",
			expected: map[string]string{
				"https://auth.example.com": "https://auth.example.com/.well-known/jwks.json",
			},
		},
		{
			name:  "multiple pairs with whitespace",
			input: "a=1, b=2",
			expected: map[string]string{
				"a": "1",
				"b": "2",
			},
		},
		{
			name:     "malformed pair skipped",
			input:    "no-equals-sign",
			expected: map[string]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseJWKSEndpoints(tt.input))
		})
	}
}

func TestConnectionString(t *testing.T) {
	cfg := &DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "cairn",
		Password: "secret",
		Database: "cairn_engine",
		SSLMode:  "require",
	}
	got := cfg.ConnectionString()
	assert.Contains(t, got, "host=db.internal")
	assert.Contains(t, got, "port=5433")
	assert.Contains(t, got, "sslmode=require")
}
