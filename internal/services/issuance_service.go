package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/soathero/backend/internal/models"
)

var ErrInvalidPlate = errors.New("plate must not be empty")

// IssuanceService expedites SOATs. Pricing is snapshotted from the catalog
// at issuance time and only the base premium is debited from the bolsa; the
// commission is margin kept outside the pool.
type IssuanceService struct {
	db      *sql.DB
	catalog *PricingService
	ledger  *LedgerService
}

func NewIssuanceService(db *sql.DB, catalog *PricingService, ledger *LedgerService) *IssuanceService {
	return &IssuanceService{db: db, catalog: catalog, ledger: ledger}
}

type IssueInput struct {
	Plate          string
	VehicleClass   models.VehicleClass
	NationalID     *string
	OwnerName      *string
	Notes          *string
	InvoiceRef     *string
	CertificateRef *string
}

// Issue prices, persists and ledgers a new SOAT in one transaction.
func (s *IssuanceService) Issue(ctx context.Context, in IssueInput, actorID int64) (*models.Issuance, error) {
	plate := strings.ToUpper(strings.TrimSpace(in.Plate))
	if plate == "" {
		return nil, ErrInvalidPlate
	}

	basePremium, commission, err := s.catalog.Rate(in.VehicleClass)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("tx begin failed: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	issuance := &models.Issuance{
		Plate:          plate,
		NationalID:     upperOptional(in.NationalID),
		OwnerName:      upperOptional(in.OwnerName),
		VehicleClass:   in.VehicleClass,
		BasePremium:    basePremium,
		Commission:     commission,
		Total:          basePremium + commission,
		Notes:          trimOptional(in.Notes),
		InvoiceRef:     in.InvoiceRef,
		CertificateRef: in.CertificateRef,
		IssuedAt:       now,
		IssuedByID:     actorID,
	}
	err = tx.QueryRow(`
		INSERT INTO soats_expedidos (placa, cedula, nombre_propietario, tipo_moto, valor_soat, comision, total, observaciones, documento_factura, documento_soat, usuario_registro_id, fecha_expedicion)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		issuance.Plate, issuance.NationalID, issuance.OwnerName, issuance.VehicleClass,
		issuance.BasePremium, issuance.Commission, issuance.Total, issuance.Notes,
		issuance.InvoiceRef, issuance.CertificateRef, actorID, now).Scan(&issuance.ID)
	if err != nil {
		return nil, fmt.Errorf("soat insert failed: %w", err)
	}

	// Only the insurer-cost portion leaves the pooled balance.
	ref := models.Reference{Kind: models.RefIssuance, ID: issuance.ID, Purpose: "create"}
	if _, err := s.ledger.DebitTx(tx, basePremium, ref, actorID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("tx commit failed: %w", err)
	}
	return issuance, nil
}

// AttachPolicy sets the póliza document reference once. No ledger effect.
func (s *IssuanceService) AttachPolicy(ctx context.Context, id int64, documentRef string) error {
	var existing sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT documento_poliza FROM soats_expedidos WHERE id = $1`, id).Scan(&existing)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if existing.Valid {
		return ErrAlreadyAttached
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE soats_expedidos SET documento_poliza = $1 WHERE id = $2 AND documento_poliza IS NULL`,
		documentRef, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAlreadyAttached
	}
	return nil
}

const issuanceColumns = `id, placa, cedula, nombre_propietario, tipo_moto, valor_soat, comision, total, observaciones, documento_factura, documento_soat, documento_poliza, usuario_registro_id, fecha_expedicion`

// Get returns one SOAT by id.
func (s *IssuanceService) Get(ctx context.Context, id int64) (*models.Issuance, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+issuanceColumns+` FROM soats_expedidos WHERE id = $1`, id)
	issuance, err := scanIssuance(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return issuance, nil
}

// List returns SOATs newest first, optionally filtered by plate prefix.
func (s *IssuanceService) List(ctx context.Context, plateFilter string) ([]models.Issuance, error) {
	query := `SELECT ` + issuanceColumns + ` FROM soats_expedidos`
	args := []any{}
	if plate := strings.ToUpper(strings.TrimSpace(plateFilter)); plate != "" {
		query += ` WHERE placa LIKE $1`
		args = append(args, plate+"%")
	}
	query += ` ORDER BY fecha_expedicion DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issuances []models.Issuance
	for rows.Next() {
		issuance, err := scanIssuance(rows)
		if err != nil {
			return nil, err
		}
		issuances = append(issuances, *issuance)
	}
	return issuances, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIssuance(row rowScanner) (*models.Issuance, error) {
	var i models.Issuance
	err := row.Scan(&i.ID, &i.Plate, &i.NationalID, &i.OwnerName, &i.VehicleClass,
		&i.BasePremium, &i.Commission, &i.Total, &i.Notes, &i.InvoiceRef,
		&i.CertificateRef, &i.PolicyRef, &i.IssuedByID, &i.IssuedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func upperOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.ToUpper(strings.TrimSpace(*s))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
