package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentReferenceRoundTrip(t *testing.T) {
	ref := PaymentReference(123456789, "plan_mensal", "joao")

	userID, planKey, username, err := ParsePaymentReference(ref)
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), userID)
	assert.Equal(t, "plan_mensal", planKey)
	assert.Equal(t, "joao", username)
}

func TestPaymentReferencesAreUnique(t *testing.T) {
	a := PaymentReference(1, "plan_mensal", "u")
	b := PaymentReference(1, "plan_mensal", "u")
	assert.NotEqual(t, a, b)
}

func TestParsePaymentReferenceRejectsGarbage(t *testing.T) {
	for _, ref := range []string{
		"",
		"zeus-sub:1:plan_mensal",
		"other-prefix:1:plan_mensal:u:abc",
		"zeus-sub:notanumber:plan_mensal:u:abc",
	} {
		_, _, _, err := ParsePaymentReference(ref)
		assert.Error(t, err, "ref %q", ref)
	}
}
