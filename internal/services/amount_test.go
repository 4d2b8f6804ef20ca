package services_test

import (
	"testing"

	"marketplace/internal/apperrors"
	"marketplace/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountNormalizer_Normalize(t *testing.T) {
	n := services.NewAmountNormalizer(services.DefaultMaxTransactionAmount)

	cases := []struct {
		raw  string
		want int64
	}{
		{"500", 50000},
		{"100000", 10000000},   // boundary: still major units
		{"100001", 100001},     // above the threshold: already minor units
		{"10000000", 10000000}, // exactly the ceiling
		{"499.99", 49999},
		{"0.015", 2}, // half up
		{"1.004", 100},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := n.Normalize(price(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAmountNormalizer_Rejects(t *testing.T) {
	n := services.NewAmountNormalizer(services.DefaultMaxTransactionAmount)

	_, err := n.Normalize(price("0"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)

	_, err = n.Normalize(price("-10"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)

	_, err = n.Normalize(price("0.001"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)

	_, err = n.Normalize(price("10000001"))
	assert.ErrorIs(t, err, apperrors.ErrAmountExceedsLimit)
	assert.Contains(t, apperrors.Message(err), "split")
}

func TestAmountNormalizer_ConfiguredCeiling(t *testing.T) {
	n := services.NewAmountNormalizer(50000)

	got, err := n.Normalize(price("500"))
	require.NoError(t, err)
	assert.Equal(t, int64(50000), got)

	_, err = n.Normalize(price("500.01"))
	assert.ErrorIs(t, err, apperrors.ErrAmountExceedsLimit)

	assert.NotNil(t, services.NewAmountNormalizer(0))
}

func TestAmountNormalizer_FromMajor(t *testing.T) {
	n := services.NewAmountNormalizer(services.DefaultMaxTransactionAmount)

	got, err := n.FromMajor(price("2501.00"))
	require.NoError(t, err)
	assert.Equal(t, int64(250100), got)

	// Large totals are never reinterpreted as minor units
	got, err = n.FromMajor(price("99999.99"))
	require.NoError(t, err)
	assert.Equal(t, int64(9999999), got)

	_, err = n.FromMajor(price("150000.00"))
	assert.ErrorIs(t, err, apperrors.ErrAmountExceedsLimit)

	_, err = n.FromMajor(price("0"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
}
