package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReferralCode(t *testing.T) {
	code, err := GenerateReferralCode(8)
	require.NoError(t, err)
	assert.Len(t, code, 8)

	for _, r := range code {
		assert.True(t, strings.ContainsRune(referralCodeAlphabet, r), "unexpected rune %q", r)
	}

	// not a proof of randomness, just a sanity check against a constant output
	other, err := GenerateReferralCode(8)
	require.NoError(t, err)
	if code == other {
		third, err := GenerateReferralCode(8)
		require.NoError(t, err)
		assert.NotEqual(t, code, third)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "12.30", FormatAmount(12.3))
	assert.Equal(t, "0.00", FormatAmount(0))
	assert.Equal(t, "1,234.50", FormatAmount(1234.5))
}

func TestFormatIncome(t *testing.T) {
	assert.Equal(t, "0.215", FormatIncome(0.215))
	assert.Equal(t, "0.001", FormatIncome(0.001))
}
