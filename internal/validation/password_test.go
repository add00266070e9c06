package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"Valid", "SecurePass12!@", nil},
		{"Exactly Min Length", "abcdef", nil},
		{"Exactly Max Length", strings.Repeat("b", 128), nil},
		{"Too Short", "abcde", ErrWeakPassword},
		{"Empty", "", ErrWeakPassword},
		{"Too Long", strings.Repeat("b", 129), ErrLongPassword},
		{"Unicode Counts Runes", "ÅÅÅÅÅÅ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, ValidatePassword(tt.password))
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		email   string
		want    string
		wantErr bool
	}{
		{"Valid", "aisha@alist.digital", "aisha@alist.digital", false},
		{"Trim And Lower", "  Priya@Scale.IO ", "priya@scale.io", false},
		{"Empty", "   ", "", true},
		{"No At", "priya.scale.io", "", true},
		{"Display Name", "Priya <priya@scale.io>", "", true},
		{"No TLD", "priya@localhost", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeEmail(tt.email)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidEmail)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
