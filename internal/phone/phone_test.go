package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"already normalized", "+22961234567", "+22961234567", false},
		{"missing plus", "22961234567", "+22961234567", false},
		{"hyphenated", "229-61-23-45-67", "+22961234567", false},
		{"spaces and parens", "+229 (61) 23 45 67", "+22961234567", false},
		{"french mobile", "+33612345678", "", true},
		{"too short", "+2296123456", "", true},
		{"too long", "+229612345678", "", true},
		{"letters", "+229abcd5678", "", true},
		{"empty", "", "", true},
		{"bare country code", "+229", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPhone)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"+22961234567", "22961234567", "229-61-23-45-67", "+229 90 11 22 33"}
	for _, in := range inputs {
		first, err := Normalize(in)
		require.NoError(t, err)
		second, err := Normalize(first)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestMask(t *testing.T) {
	assert.Equal(t, "+229****4567", Mask("+22961234567"))
	assert.Equal(t, "short", Mask("short"))
}
