package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/soathero/backend/internal/models"
)

func newRevisionFixture(t *testing.T) (*RevisionService, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	catalog := NewPricingService(testPricingConfig())
	catalog.now = func() time.Time { return time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC) }
	return NewRevisionService(db, catalog, NewLedgerService(db)), mock, db
}

func expectSoatLock(mock sqlmock.Sqlmock, id int64, class models.VehicleClass, base, commission int64) {
	columns := []string{"id", "placa", "cedula", "nombre_propietario", "tipo_moto", "valor_soat", "comision", "total",
		"observaciones", "documento_factura", "documento_soat", "documento_poliza", "usuario_registro_id", "fecha_expedicion"}
	mock.ExpectQuery("SELECT (.+) FROM soats_expedidos WHERE id = (.+) FOR UPDATE").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(id, "ABC12D", nil, "MARÍA LÓPEZ", string(class), base, commission, base+commission,
				nil, nil, nil, nil, int64(7), time.Now()))
}

func TestRevisionService_Revise(t *testing.T) {
	t.Run("class upgrade posts exactly one positive adjustment", func(t *testing.T) {
		service, mock, db := newRevisionFixture(t)
		defer db.Close()

		// 243,700 -> 326,600: the bolsa owes 82,900 more to the insurer.
		newClass := models.Vehicle100To200
		mock.ExpectBegin()
		expectSoatLock(mock, 5, models.VehicleUpTo99CC, 243700, 30000)
		mock.ExpectQuery("INSERT INTO revisiones").
			WithArgs(int64(5), "hasta_99cc", "100_200cc", int64(243700), int64(326600), int64(82900), int64(7), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
		expectBolsaLock(mock, 1000000)
		expectNoReplay(mock, "revision:3:price-change")
		mock.ExpectQuery("INSERT INTO postings").
			WithArgs("ADJUSTMENT", int64(82900), int64(82900), "REVISION", int64(3), int64(7), "revision:3:price-change", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(50)))
		mock.ExpectExec("UPDATE bolsa").
			WithArgs(int64(82900), sqlmock.AnyArg(), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE soats_expedidos").
			WithArgs("ABC12D", nil, "MARÍA LÓPEZ", "100_200cc", int64(326600), int64(30000), int64(356600), nil, int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		issuance, err := service.Revise(context.Background(), 5, RevisePatch{VehicleClass: &newClass}, 7)
		assert.NoError(t, err)
		assert.Equal(t, models.Vehicle100To200, issuance.VehicleClass)
		assert.Equal(t, int64(326600), issuance.BasePremium)
		assert.Equal(t, int64(356600), issuance.Total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("class downgrade refunds the bolsa", func(t *testing.T) {
		service, mock, db := newRevisionFixture(t)
		defer db.Close()

		newClass := models.VehicleUpTo99CC
		mock.ExpectBegin()
		expectSoatLock(mock, 8, models.Vehicle100To200, 326600, 30000)
		mock.ExpectQuery("INSERT INTO revisiones").
			WithArgs(int64(8), "100_200cc", "hasta_99cc", int64(326600), int64(243700), int64(-82900), int64(7), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(4)))
		expectBolsaLock(mock, 1000000)
		expectNoReplay(mock, "revision:4:price-change")
		mock.ExpectQuery("INSERT INTO postings").
			WithArgs("ADJUSTMENT", int64(82900), int64(-82900), "REVISION", int64(4), int64(7), "revision:4:price-change", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(51)))
		mock.ExpectExec("UPDATE bolsa").
			WithArgs(int64(-82900), sqlmock.AnyArg(), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE soats_expedidos").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		issuance, err := service.Revise(context.Background(), 8, RevisePatch{VehicleClass: &newClass}, 7)
		assert.NoError(t, err)
		assert.Equal(t, int64(243700), issuance.BasePremium)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unchanged class touches no ledger", func(t *testing.T) {
		service, mock, db := newRevisionFixture(t)
		defer db.Close()

		sameClass := models.VehicleUpTo99CC
		plate := "xyz98k"
		notes := "corrección de placa"
		mock.ExpectBegin()
		expectSoatLock(mock, 5, models.VehicleUpTo99CC, 243700, 30000)
		mock.ExpectExec("UPDATE soats_expedidos").
			WithArgs("XYZ98K", nil, "MARÍA LÓPEZ", "hasta_99cc", int64(243700), int64(30000), int64(273700), &notes, int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		issuance, err := service.Revise(context.Background(), 5,
			RevisePatch{Plate: &plate, VehicleClass: &sameClass, Notes: &notes}, 7)
		assert.NoError(t, err)
		assert.Equal(t, "XYZ98K", issuance.Plate)
		assert.Equal(t, int64(243700), issuance.BasePremium)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing soat", func(t *testing.T) {
		service, mock, db := newRevisionFixture(t)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM soats_expedidos WHERE id = (.+) FOR UPDATE").
			WithArgs(int64(404)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := service.Revise(context.Background(), 404, RevisePatch{}, 7)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown class rejected before any transaction", func(t *testing.T) {
		service, mock, db := newRevisionFixture(t)
		defer db.Close()

		bad := models.VehicleClass("250cc")
		_, err := service.Revise(context.Background(), 5, RevisePatch{VehicleClass: &bad}, 7)
		assert.ErrorIs(t, err, ErrUnknownVehicleClass)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
