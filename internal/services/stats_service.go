package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/soathero/backend/internal/logger"
	"github.com/soathero/backend/internal/models"
)

const statsCacheTTL = 30 * time.Second

// StatsService derives the read-only dashboard aggregates. All queries run
// inside one repeatable-read transaction so the numbers are consistent with
// a single point in the posting log, and the result is cached briefly in
// redis keyed by the caller's day boundary.
type StatsService struct {
	db        *sql.DB
	redis     *redis.Client
	threshold int64
}

func NewStatsService(db *sql.DB, redisClient *redis.Client, lowBalanceThreshold int64) *StatsService {
	return &StatsService{db: db, redis: redisClient, threshold: lowBalanceThreshold}
}

// Stats computes the dashboard metrics. "Today" is the caller-supplied
// half-open interval [dayStart, dayEnd).
func (s *StatsService) Stats(ctx context.Context, dayStart, dayEnd time.Time) (*models.DashboardStats, error) {
	cacheKey := fmt.Sprintf("dashboard:stats:%d", dayStart.Unix())
	if s.redis != nil {
		if data, err := s.redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached models.DashboardStats
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("tx begin failed: %w", err)
	}
	defer tx.Rollback()

	stats := &models.DashboardStats{}
	err = tx.QueryRow(`SELECT saldo_actual FROM bolsa LIMIT 1`).Scan(&stats.Balance)
	if err == sql.ErrNoRows {
		return nil, ErrAccountMissing
	}
	if err != nil {
		return nil, err
	}
	stats.LowBalance = stats.Balance < s.threshold

	if err := tx.QueryRow(`SELECT COUNT(*) FROM soats_expedidos`).Scan(&stats.TotalIssuances); err != nil {
		return nil, err
	}
	if err := tx.QueryRow(`SELECT COALESCE(SUM(comision), 0) FROM soats_expedidos`).Scan(&stats.TotalCommissions); err != nil {
		return nil, err
	}
	if err := tx.QueryRow(`SELECT COALESCE(SUM(monto), 0) FROM recargas`).Scan(&stats.TotalTopUps); err != nil {
		return nil, err
	}
	err = tx.QueryRow(
		`SELECT COUNT(*) FROM soats_expedidos WHERE fecha_expedicion >= $1 AND fecha_expedicion < $2`,
		dayStart, dayEnd).Scan(&stats.IssuancesToday)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("tx commit failed: %w", err)
	}

	if s.redis != nil {
		if data, err := json.Marshal(stats); err == nil {
			if err := s.redis.Set(ctx, cacheKey, data, statsCacheTTL).Err(); err != nil {
				log := logger.FromContext(ctx)
				log.Warn().Err(err).Msg("stats cache write failed")
			}
		}
	}
	return stats, nil
}
