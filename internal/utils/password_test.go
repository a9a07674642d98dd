package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pitchapp/pitch-api/internal/utils"
)

func TestValidatePasswordStrength(t *testing.T) {
	require.ErrorIs(t, utils.ValidatePasswordStrength("short"), utils.ErrPasswordTooShort)
	require.ErrorIs(t, utils.ValidatePasswordStrength("aaaaaaaaaa"), utils.ErrPasswordTooWeak)
	require.ErrorIs(t, utils.ValidatePasswordStrength("12345678"), utils.ErrPasswordTooWeak)
	require.NoError(t, utils.ValidatePasswordStrength("Str0ngPassw0rd!"))
	require.NoError(t, utils.ValidatePasswordStrength("correct-horse-battery"))
}
