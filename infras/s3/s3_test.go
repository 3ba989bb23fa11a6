package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKeyFromURL(t *testing.T) {
	svc := &s3Impl{
		bucket: "roombook",
		public: "https://cdn.example.com",
		api:    "https://s3.example.com",
	}

	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{name: "public domain", url: "https://cdn.example.com/rooms/icon.png", expected: "rooms/icon.png"},
		{name: "api endpoint", url: "https://s3.example.com/roombook/rooms/icon.png", expected: "rooms/icon.png"},
		{name: "other host", url: "https://elsewhere.example.com/rooms/icon.png", expected: ""},
		{name: "empty", url: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, svc.ObjectKeyFromURL(tt.url))
		})
	}
}
