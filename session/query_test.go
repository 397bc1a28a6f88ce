package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBlank(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{" \t\n", true},
		{"\u200b\u200d", true},
		{"\ufeff ", true},
		{"a", false},
		{" \u200bhi ", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isBlank(tt.in), "%q", tt.in)
	}
}
