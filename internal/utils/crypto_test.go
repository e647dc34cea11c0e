package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceFormats(t *testing.T) {
	orderPattern := regexp.MustCompile(`^ORDER_\d{13}_[A-Z0-9]{9}$`)
	refundPattern := regexp.MustCompile(`^REFUND_\d{13}_[A-Z0-9]{9}$`)
	linkPattern := regexp.MustCompile(`^LINK_\d{13}_[A-Z0-9]{9}$`)

	for i := 0; i < 50; i++ {
		assert.Regexp(t, orderPattern, OrderID())
		assert.Regexp(t, refundPattern, RefundID())
		assert.Regexp(t, linkPattern, LinkID())
	}
}

func TestRandomRef(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]+$`)

	ref := RandomRef(9)
	assert.Len(t, ref, 9)
	assert.Regexp(t, pattern, ref)

	// Collisions across a small sample would indicate broken randomness.
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		seen[RandomRef(9)] = true
	}
	assert.Greater(t, len(seen), 990)
}

func TestGenerateSecureToken(t *testing.T) {
	token, err := GenerateSecureToken()
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]+$`), token)

	other, err := GenerateSecureToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
