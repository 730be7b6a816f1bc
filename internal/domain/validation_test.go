package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corefin/ledger/internal/domain"
)

func TestValidateCurrency(t *testing.T) {
	require.NoError(t, domain.ValidateCurrency("USD"))
	require.NoError(t, domain.ValidateCurrency(" eur "))
	require.ErrorIs(t, domain.ValidateCurrency("XXX"), domain.ErrInvalidCurrency)
	require.ErrorIs(t, domain.ValidateCurrency(""), domain.ErrInvalidCurrency)
}

func TestValidateReasonCode(t *testing.T) {
	require.NoError(t, domain.ValidateReasonCode("deposit"))
	require.ErrorIs(t, domain.ValidateReasonCode("  "), domain.ErrInvalidReasonCode)
	require.ErrorIs(t, domain.ValidateReasonCode(strings.Repeat("x", 65)), domain.ErrInvalidReasonCode)
}

func TestValidateIdempotencyKey(t *testing.T) {
	require.NoError(t, domain.ValidateIdempotencyKey("k1"))
	require.ErrorIs(t, domain.ValidateIdempotencyKey(""), domain.ErrInvalidKey)
	require.ErrorIs(t, domain.ValidateIdempotencyKey(strings.Repeat("k", 256)), domain.ErrInvalidKey)
}

func TestValidateMetadata(t *testing.T) {
	require.NoError(t, domain.ValidateMetadata(nil))
	require.NoError(t, domain.ValidateMetadata(map[string]any{"channel": "api"}))

	big := map[string]any{"blob": strings.Repeat("a", domain.MaxMetadataSize+1)}
	require.ErrorIs(t, domain.ValidateMetadata(big), domain.ErrMetadataTooLarge)
}

func TestValidatePagination(t *testing.T) {
	limit, offset := domain.ValidatePagination(0, -5)
	assert.Equal(t, 50, limit)
	assert.Equal(t, 0, offset)

	limit, offset = domain.ValidatePagination(5000, 10)
	assert.Equal(t, 1000, limit)
	assert.Equal(t, 10, offset)
}
