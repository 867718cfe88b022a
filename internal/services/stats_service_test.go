package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"

	"github.com/soathero/backend/internal/models"
)

func expectStatsQueries(mock sqlmock.Sqlmock, balance, total, commissions, topups, today int64, dayStart, dayEnd time.Time) {
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT saldo_actual FROM bolsa").
		WillReturnRows(sqlmock.NewRows([]string{"saldo_actual"}).AddRow(balance))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM soats_expedidos`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(total))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(comision\), 0\) FROM soats_expedidos`).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(commissions))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(monto\), 0\) FROM recargas`).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(topups))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM soats_expedidos WHERE fecha_expedicion`).
		WithArgs(dayStart, dayEnd).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(today))
	mock.ExpectCommit()
}

func TestStatsService_Stats(t *testing.T) {
	dayStart := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)
	cacheKey := fmt.Sprintf("dashboard:stats:%d", dayStart.Unix())

	t.Run("aggregates are snapshot consistent and cached", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		rdb, rmock := redismock.NewClientMock()

		rmock.ExpectGet(cacheKey).RedisNil()
		expectStatsQueries(mock, 3500000, 42, 1260000, 5000000, 3, dayStart, dayEnd)

		expected := &models.DashboardStats{
			Balance:          3500000,
			LowBalance:       false,
			IssuancesToday:   3,
			TotalIssuances:   42,
			TotalCommissions: 1260000,
			TotalTopUps:      5000000,
		}
		data, _ := json.Marshal(expected)
		rmock.ExpectSet(cacheKey, data, statsCacheTTL).SetVal("OK")

		service := NewStatsService(db, rdb, 2000000)
		stats, err := service.Stats(context.Background(), dayStart, dayEnd)
		assert.NoError(t, err)
		assert.Equal(t, expected, stats)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.NoError(t, rmock.ExpectationsWereMet())
	})

	t.Run("cache hit skips the database", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		rdb, rmock := redismock.NewClientMock()

		cached := models.DashboardStats{Balance: 1500000, LowBalance: true, TotalIssuances: 40}
		data, _ := json.Marshal(cached)
		rmock.ExpectGet(cacheKey).SetVal(string(data))

		service := NewStatsService(db, rdb, 2000000)
		stats, err := service.Stats(context.Background(), dayStart, dayEnd)
		assert.NoError(t, err)
		assert.Equal(t, &cached, stats)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("low balance flagged under the advisory threshold", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		expectStatsQueries(mock, 1999999, 10, 300000, 2000000, 0, dayStart, dayEnd)

		service := NewStatsService(db, nil, 2000000)
		stats, err := service.Stats(context.Background(), dayStart, dayEnd)
		assert.NoError(t, err)
		assert.True(t, stats.LowBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("works without redis", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		expectStatsQueries(mock, 2500000, 1, 30000, 500000, 1, dayStart, dayEnd)

		service := NewStatsService(db, nil, 2000000)
		stats, err := service.Stats(context.Background(), dayStart, dayEnd)
		assert.NoError(t, err)
		assert.False(t, stats.LowBalance)
		assert.Equal(t, int64(1), stats.IssuancesToday)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
