package searchproviders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestIsSearchEngine tests hostname recognition.
func TestIsSearchEngine(t *testing.T) {
	tests := []struct {
		hostname string
		want     bool
	}{
		{"www.google.com", true},
		{"duckduckgo.com", true},
		{"search.yahoo.com", true},
		{"WWW.BING.COM", true},
		{"www.amazon.com", false},
		{"example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.hostname, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSearchEngine(tt.hostname))
		})
	}
}
