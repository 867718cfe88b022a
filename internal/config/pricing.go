package config

import (
	"sort"
	"time"

	"github.com/spf13/viper"
)

// TariffTable is one tariff year for the SOAT catalog. Base premiums are
// whole COP owed to the insurer; Commission is the flat margin added on top.
type TariffTable struct {
	Name          string
	EffectiveFrom time.Time
	UpTo99CC      int64
	From100To200  int64
	Commission    int64
}

// PricingConfig holds the versioned tariff tables plus the advisory
// low-balance threshold. Tables are kept sorted by EffectiveFrom ascending.
type PricingConfig struct {
	Tables              []TariffTable
	LowBalanceThreshold int64
}

// LoadPricingConfig reads the current tariff from viper (env-overridable)
// and keeps the superseded prior-year table for historical reference.
func LoadPricingConfig() *PricingConfig {
	viper.SetDefault("tarifas.hasta_99cc", int64(243700))
	viper.SetDefault("tarifas.100_200cc", int64(326600))
	viper.SetDefault("tarifas.comision", int64(30000))
	viper.SetDefault("tarifas.vigencia", "2026-01-01")
	viper.SetDefault("bolsa.umbral_saldo_bajo", int64(2000000))

	effective, err := time.Parse("2006-01-02", viper.GetString("tarifas.vigencia"))
	if err != nil {
		effective = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	tables := []TariffTable{
		{
			Name:          "2025",
			EffectiveFrom: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			UpTo99CC:      286200,
			From100To200:  373300,
			Commission:    30000,
		},
		{
			Name:          "vigente",
			EffectiveFrom: effective,
			UpTo99CC:      viper.GetInt64("tarifas.hasta_99cc"),
			From100To200:  viper.GetInt64("tarifas.100_200cc"),
			Commission:    viper.GetInt64("tarifas.comision"),
		},
	}
	sort.Slice(tables, func(i, j int) bool {
		return tables[i].EffectiveFrom.Before(tables[j].EffectiveFrom)
	})

	return &PricingConfig{
		Tables:              tables,
		LowBalanceThreshold: viper.GetInt64("bolsa.umbral_saldo_bajo"),
	}
}

// Current returns the table in effect at t.
func (c *PricingConfig) Current(t time.Time) TariffTable {
	table := c.Tables[0]
	for _, candidate := range c.Tables {
		if !candidate.EffectiveFrom.After(t) {
			table = candidate
		}
	}
	return table
}
