package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		wantErr bool
	}{
		{"plain decimal", "12.5", 12.5, false},
		{"integer", "7", 7, false},
		{"surrounding whitespace", "  3.25 ", 3.25, false},
		{"empty", "", 0, true},
		{"whitespace only", "   ", 0, true},
		{"unit suffix", "12.5kg", 0, true},
		{"comma decimal separator", "12,5", 0, true},
		{"zero", "0", 0, true},
		{"negative", "-4", 0, true},
		{"not a number", "NaN", 0, true},
		{"infinity", "Inf", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateStruct(t *testing.T) {
	type sample struct {
		Email string `validate:"required,email"`
		Count int    `validate:"min=1"`
	}

	t.Run("valid struct", func(t *testing.T) {
		assert.NoError(t, ValidateStruct(&sample{Email: "a@b.com", Count: 2}))
	})

	t.Run("failing fields are named", func(t *testing.T) {
		err := ValidateStruct(&sample{Email: "not-an-email", Count: 0})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Email")
		assert.Contains(t, err.Error(), "Count")
	})

	t.Run("nil is accepted", func(t *testing.T) {
		assert.NoError(t, ValidateStruct(nil))
	})

	t.Run("non-struct is rejected", func(t *testing.T) {
		assert.Error(t, ValidateStruct("hello"))
	})
}
