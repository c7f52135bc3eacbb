package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMethod(t *testing.T) {
	t.Run("valid method starts disabled", func(t *testing.T) {
		m, err := NewMethod(ProviderSlugLydia, "Lydia", 10, decimal.NewFromFloat(1.5))
		require.NoError(t, err)
		assert.False(t, m.IsEnabled)
		m.Enable()
		assert.True(t, m.IsEnabled)
	})

	t.Run("unknown slug rejected", func(t *testing.T) {
		_, err := NewMethod(ProviderSlug("paypal"), "PayPal", 0, decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("negative fees rejected", func(t *testing.T) {
		_, err := NewMethod(ProviderSlugLydia, "Lydia", -1, decimal.Zero)
		assert.Error(t, err)
		_, err = NewMethod(ProviderSlugLydia, "Lydia", 0, decimal.NewFromInt(-1))
		assert.Error(t, err)
	})

	t.Run("percentage at or above 100 rejected", func(t *testing.T) {
		_, err := NewMethod(ProviderSlugLydia, "Lydia", 0, decimal.NewFromInt(100))
		assert.Error(t, err)
	})
}

func TestPreviewTotalCents(t *testing.T) {
	tests := []struct {
		name        string
		fixedCents  int64
		percent     string
		amountCents int64
		want        int64
	}{
		// ceil((2000+10) / (1 - 0.015)) = ceil(2040.609...) = 2041
		{"fixed and percentage", 10, "1.5", 2000, 2041},
		{"no fees passes through", 0, "0", 2000, 2000},
		// ceil(1000 / 0.986) = ceil(1014.198...) = 1015
		{"percentage only", 0, "1.4", 1000, 1015},
		// ceil((1+25) / 0.985) = ceil(26.395...) = 27
		{"tiny amount rounds up", 25, "1.5", 1, 27},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			percent, err := decimal.NewFromString(tt.percent)
			require.NoError(t, err)
			m, err := NewMethod(ProviderSlugLydia, "Lydia", tt.fixedCents, percent)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.PreviewTotalCents(tt.amountCents))
		})
	}
}
