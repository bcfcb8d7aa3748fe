package utils

import (
	"errors"
	"testing"
)

func TestValidateTargetURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{"Valid HTTP URL", "http://example.com", nil},
		{"Valid HTTPS URL", "https://example.com/path?q=1", nil},
		{"Localhost is allowed", "http://localhost:8080/page", nil},
		{"Empty URL", "", ErrEmptyURL},
		{"Missing scheme", "example.com/page", ErrInvalidURL},
		{"FTP scheme", "ftp://example.com", ErrInvalidScheme},
		{"Javascript scheme", "javascript:alert(1)", ErrInvalidScheme},
		{"Empty host", "https://", ErrEmptyHost},
		{"Whitespace only", "   ", ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTargetURL(tt.url)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateTargetURL(%q) = %v, want %v", tt.url, err, tt.wantErr)
			}
		})
	}
}
