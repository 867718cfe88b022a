package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/soathero/backend/internal/models"
)

// RevisionService edits already-expedited SOATs. A vehicle class change
// reprices against the current catalog and posts the base-premium delta as
// one ADJUSTMENT; identity field changes never touch the ledger. The whole
// edit is a single transaction: either every change lands or none do.
type RevisionService struct {
	db      *sql.DB
	catalog *PricingService
	ledger  *LedgerService
}

func NewRevisionService(db *sql.DB, catalog *PricingService, ledger *LedgerService) *RevisionService {
	return &RevisionService{db: db, catalog: catalog, ledger: ledger}
}

// RevisePatch carries the subset of mutable fields to change. Nil means
// leave the stored value untouched.
type RevisePatch struct {
	Plate        *string
	NationalID   *string
	OwnerName    *string
	VehicleClass *models.VehicleClass
	Notes        *string
}

// Revise applies the patch to the SOAT identified by issuanceID.
func (s *RevisionService) Revise(ctx context.Context, issuanceID int64, patch RevisePatch, actorID int64) (*models.Issuance, error) {
	if patch.VehicleClass != nil {
		if _, _, err := s.catalog.Rate(*patch.VehicleClass); err != nil {
			return nil, err
		}
	}
	if patch.Plate != nil && strings.TrimSpace(*patch.Plate) == "" {
		return nil, ErrInvalidPlate
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("tx begin failed: %w", err)
	}
	defer tx.Rollback()

	// Lock the SOAT row so concurrent revisions of the same policy serialize.
	row := tx.QueryRow(`SELECT `+issuanceColumns+` FROM soats_expedidos WHERE id = $1 FOR UPDATE`, issuanceID)
	issuance, err := scanIssuance(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("soat lock failed: %w", err)
	}

	if patch.VehicleClass != nil && *patch.VehicleClass != issuance.VehicleClass {
		if err := s.repriceTx(tx, issuance, *patch.VehicleClass, actorID); err != nil {
			return nil, err
		}
	}

	if patch.Plate != nil {
		issuance.Plate = strings.ToUpper(strings.TrimSpace(*patch.Plate))
	}
	if patch.NationalID != nil {
		issuance.NationalID = upperOptional(patch.NationalID)
	}
	if patch.OwnerName != nil {
		issuance.OwnerName = upperOptional(patch.OwnerName)
	}
	if patch.Notes != nil {
		issuance.Notes = trimOptional(patch.Notes)
	}

	_, err = tx.Exec(`
		UPDATE soats_expedidos
		SET placa = $1, cedula = $2, nombre_propietario = $3, tipo_moto = $4, valor_soat = $5, comision = $6, total = $7, observaciones = $8
		WHERE id = $9`,
		issuance.Plate, issuance.NationalID, issuance.OwnerName, issuance.VehicleClass,
		issuance.BasePremium, issuance.Commission, issuance.Total, issuance.Notes,
		issuance.ID)
	if err != nil {
		return nil, fmt.Errorf("soat update failed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("tx commit failed: %w", err)
	}
	return issuance, nil
}

// repriceTx records the revision audit row, posts the base-premium delta and
// rewrites the pricing snapshot on the in-memory issuance.
func (s *RevisionService) repriceTx(tx *sql.Tx, issuance *models.Issuance, newClass models.VehicleClass, actorID int64) error {
	newBase, newCommission, err := s.catalog.Rate(newClass)
	if err != nil {
		return err
	}
	delta := newBase - issuance.BasePremium

	var revisionID int64
	err = tx.QueryRow(`
		INSERT INTO revisiones (soat_id, tipo_moto_anterior, tipo_moto_nuevo, valor_anterior, valor_nuevo, delta, usuario_registro_id, fecha_revision)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		issuance.ID, issuance.VehicleClass, newClass, issuance.BasePremium, newBase,
		delta, actorID, time.Now()).Scan(&revisionID)
	if err != nil {
		return fmt.Errorf("revision insert failed: %w", err)
	}

	// Two classes can share a premium across tariff years; no posting then.
	if delta != 0 {
		ref := models.Reference{Kind: models.RefRevision, ID: revisionID, Purpose: "price-change"}
		if _, err := s.ledger.AdjustTx(tx, delta, ref, actorID); err != nil {
			return err
		}
	}

	issuance.VehicleClass = newClass
	issuance.BasePremium = newBase
	issuance.Commission = newCommission
	issuance.Total = newBase + newCommission
	return nil
}

// Revisions lists the audit trail for one SOAT, oldest first.
func (s *RevisionService) Revisions(ctx context.Context, issuanceID int64) ([]models.Revision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, soat_id, tipo_moto_anterior, tipo_moto_nuevo, valor_anterior, valor_nuevo, delta, usuario_registro_id, fecha_revision
		FROM revisiones
		WHERE soat_id = $1
		ORDER BY id ASC`, issuanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revisions []models.Revision
	for rows.Next() {
		var rev models.Revision
		if err := rows.Scan(&rev.ID, &rev.IssuanceID, &rev.OldClass, &rev.NewClass,
			&rev.OldPremium, &rev.NewPremium, &rev.Delta, &rev.ActorID, &rev.CreatedAt); err != nil {
			return nil, err
		}
		revisions = append(revisions, rev)
	}
	return revisions, rows.Err()
}
