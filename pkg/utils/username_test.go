package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUsername(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "ada_lovelace", false},
		{"digits first", "42answers", false},
		{"too short", "ab", true},
		{"too long", "abcdefghijklmnopqrstu", true},
		{"bad chars", "ada-lovelace", true},
		{"leading underscore", "_ada", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateUsername(tc.input)
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "username", verr.Field)
		})
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("ada@example.org"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("Ada <ada@example.org>"))
	assert.Equal(t, "ada@example.org", NormalizeEmail("  Ada@Example.org "))
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"ml", "Graphs", "nlp"}, SplitTags(" ml, Graphs ,, nlp, ML "))
	assert.Equal(t, []string{}, SplitTags(""))
}
