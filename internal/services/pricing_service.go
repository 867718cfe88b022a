package services

import (
	"errors"
	"time"

	"github.com/soathero/backend/internal/config"
	"github.com/soathero/backend/internal/models"
)

var ErrUnknownVehicleClass = errors.New("unknown vehicle class")

// PricingService is the SOAT catalog: a pure lookup from vehicle class to
// (base premium, commission) against the tariff table in effect.
type PricingService struct {
	cfg *config.PricingConfig
	now func() time.Time
}

func NewPricingService(cfg *config.PricingConfig) *PricingService {
	return &PricingService{cfg: cfg, now: time.Now}
}

// Rate prices a class against the current tariff table.
func (s *PricingService) Rate(class models.VehicleClass) (basePremium, commission int64, err error) {
	return s.RateAt(class, s.now())
}

// RateAt prices a class against the table in effect at t.
func (s *PricingService) RateAt(class models.VehicleClass, t time.Time) (int64, int64, error) {
	table := s.cfg.Current(t)
	switch class {
	case models.VehicleUpTo99CC:
		return table.UpTo99CC, table.Commission, nil
	case models.Vehicle100To200:
		return table.From100To200, table.Commission, nil
	default:
		return 0, 0, ErrUnknownVehicleClass
	}
}

// LowBalanceThreshold returns the advisory floor surfaced on balance reads.
// It is never enforced: issuance must not halt while insurer settlement lags.
func (s *PricingService) LowBalanceThreshold() int64 {
	return s.cfg.LowBalanceThreshold
}
