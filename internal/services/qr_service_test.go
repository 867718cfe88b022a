package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
)

func TestQRService_GenerateVerification(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	rdb, rmock := redismock.NewClientMock()

	service := NewQRService(db, rdb)

	t.Run("known soat produces token and png", func(t *testing.T) {
		issued := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
		mock.ExpectQuery("SELECT id, placa, fecha_expedicion FROM soats_expedidos").
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "placa", "fecha_expedicion"}).
				AddRow(int64(5), "ABC12D", issued))
		rmock.Regexp().ExpectSet(`soatqr:.+`, `.+`, verificationTTL).SetVal("OK")

		token, png, err := service.GenerateVerification(context.Background(), 5)
		assert.NoError(t, err)
		assert.NotEmpty(t, png)

		decoded, err := base64.URLEncoding.DecodeString(token)
		assert.NoError(t, err)
		var payload VerificationPayload
		assert.NoError(t, json.Unmarshal(decoded, &payload))
		assert.Equal(t, int64(5), payload.IssuanceID)
		assert.Equal(t, "ABC12D", payload.Plate)
		assert.NotEmpty(t, payload.Nonce)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing soat", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, placa, fecha_expedicion FROM soats_expedidos").
			WithArgs(int64(404)).
			WillReturnError(sql.ErrNoRows)

		_, _, err := service.GenerateVerification(context.Background(), 404)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestQRService_Verify(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	rdb, rmock := redismock.NewClientMock()

	service := NewQRService(db, rdb)

	t.Run("valid token resolves", func(t *testing.T) {
		payload := VerificationPayload{IssuanceID: 5, Plate: "ABC12D", Nonce: "n1"}
		data, _ := json.Marshal(payload)
		token := base64.URLEncoding.EncodeToString(data)
		rmock.ExpectGet("soatqr:" + token).SetVal(string(data))

		got, err := service.Verify(context.Background(), token)
		assert.NoError(t, err)
		assert.Equal(t, payload.Plate, got.Plate)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		rmock.ExpectGet("soatqr:stale").RedisNil()

		_, err := service.Verify(context.Background(), "stale")
		assert.Error(t, err)
	})
}
