package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/soathero/backend/internal/config"
	"github.com/soathero/backend/internal/models"
)

func testPricingConfig() *config.PricingConfig {
	return &config.PricingConfig{
		Tables: []config.TariffTable{
			{
				Name:          "2025",
				EffectiveFrom: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
				UpTo99CC:      286200,
				From100To200:  373300,
				Commission:    30000,
			},
			{
				Name:          "vigente",
				EffectiveFrom: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
				UpTo99CC:      243700,
				From100To200:  326600,
				Commission:    30000,
			},
		},
		LowBalanceThreshold: 2000000,
	}
}

func TestPricingService_Rate(t *testing.T) {
	service := NewPricingService(testPricingConfig())
	service.now = func() time.Time { return time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC) }

	t.Run("current table prices both classes", func(t *testing.T) {
		base, commission, err := service.Rate(models.VehicleUpTo99CC)
		assert.NoError(t, err)
		assert.Equal(t, int64(243700), base)
		assert.Equal(t, int64(30000), commission)

		base, commission, err = service.Rate(models.Vehicle100To200)
		assert.NoError(t, err)
		assert.Equal(t, int64(326600), base)
		assert.Equal(t, int64(30000), commission)
	})

	t.Run("unknown class rejected", func(t *testing.T) {
		_, _, err := service.Rate(models.VehicleClass("250cc"))
		assert.ErrorIs(t, err, ErrUnknownVehicleClass)
	})

	t.Run("empty class rejected", func(t *testing.T) {
		_, _, err := service.Rate(models.VehicleClass(""))
		assert.ErrorIs(t, err, ErrUnknownVehicleClass)
	})
}

func TestPricingService_RateAt(t *testing.T) {
	service := NewPricingService(testPricingConfig())

	t.Run("prior tariff year still resolvable", func(t *testing.T) {
		base, _, err := service.RateAt(models.VehicleUpTo99CC, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		assert.NoError(t, err)
		assert.Equal(t, int64(286200), base)
	})

	t.Run("date before every table falls back to the oldest", func(t *testing.T) {
		base, _, err := service.RateAt(models.Vehicle100To200, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		assert.NoError(t, err)
		assert.Equal(t, int64(373300), base)
	})
}
