package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestTopUpService_RecordTopUp(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewTopUpService(db, NewLedgerService(db))

	t.Run("recarga and credit land in one transaction", func(t *testing.T) {
		reference := "consignación 4411"
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO recargas").
			WithArgs(int64(500000), &reference, nil, nil, int64(7), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(14)))
		expectBolsaLock(mock, 0)
		expectNoReplay(mock, "topup:14:create")
		mock.ExpectQuery("INSERT INTO postings").
			WithArgs("CREDIT", int64(500000), int64(500000), "TOPUP", int64(14), int64(7), "topup:14:create", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(30)))
		mock.ExpectExec("UPDATE bolsa").
			WithArgs(int64(500000), sqlmock.AnyArg(), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		topup, err := service.RecordTopUp(context.Background(),
			TopUpInput{Amount: 500000, Reference: &reference}, 7)
		assert.NoError(t, err)
		assert.Equal(t, int64(14), topup.ID)
		assert.Equal(t, int64(500000), topup.Amount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("non-positive amount rejected before persisting", func(t *testing.T) {
		_, err := service.RecordTopUp(context.Background(), TopUpInput{Amount: 0}, 7)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ledger failure rolls the recarga back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO recargas").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(15)))
		mock.ExpectQuery("SELECT id, saldo_actual FROM bolsa LIMIT 1 FOR UPDATE").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := service.RecordTopUp(context.Background(), TopUpInput{Amount: 1000}, 7)
		assert.ErrorIs(t, err, ErrAccountMissing)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTopUpService_AttachReceipt(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewTopUpService(db, NewLedgerService(db))

	t.Run("first attach succeeds", func(t *testing.T) {
		mock.ExpectQuery("SELECT documento_comprobante FROM recargas").
			WithArgs(int64(14)).
			WillReturnRows(sqlmock.NewRows([]string{"documento_comprobante"}).AddRow(nil))
		mock.ExpectExec("UPDATE recargas SET documento_comprobante").
			WithArgs("recargas/9f3b.pdf", int64(14)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := service.AttachReceipt(context.Background(), 14, "recargas/9f3b.pdf")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("second attach fails", func(t *testing.T) {
		mock.ExpectQuery("SELECT documento_comprobante FROM recargas").
			WithArgs(int64(14)).
			WillReturnRows(sqlmock.NewRows([]string{"documento_comprobante"}).AddRow("recargas/9f3b.pdf"))

		err := service.AttachReceipt(context.Background(), 14, "recargas/other.pdf")
		assert.ErrorIs(t, err, ErrAlreadyAttached)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown recarga", func(t *testing.T) {
		mock.ExpectQuery("SELECT documento_comprobante FROM recargas").
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)

		err := service.AttachReceipt(context.Background(), 99, "recargas/x.pdf")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTopUpService_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	service := NewTopUpService(db, NewLedgerService(db))

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM recargas ORDER BY fecha_recarga DESC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "monto", "referencia", "observaciones", "documento_comprobante", "usuario_registro_id", "fecha_recarga"}).
			AddRow(int64(2), int64(300000), "ref-2", nil, nil, int64(7), now).
			AddRow(int64(1), int64(500000), nil, "primera recarga", "recargas/a.pdf", int64(7), now.Add(-time.Hour)))

	topups, err := service.List(context.Background())
	assert.NoError(t, err)
	assert.Len(t, topups, 2)
	assert.Equal(t, int64(2), topups[0].ID)
	assert.Nil(t, topups[0].Notes)
	assert.NotNil(t, topups[1].Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}
