package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/soathero/backend/internal/models"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrAlreadyAttached = errors.New("document already attached")
)

// TopUpService records recargas and credits the bolsa, both in one
// transaction so a recarga row can never exist without its posting.
type TopUpService struct {
	db     *sql.DB
	ledger *LedgerService
}

func NewTopUpService(db *sql.DB, ledger *LedgerService) *TopUpService {
	return &TopUpService{db: db, ledger: ledger}
}

type TopUpInput struct {
	Amount     int64
	Reference  *string
	Notes      *string
	ReceiptRef *string
}

// RecordTopUp persists the recarga and issues the matching CREDIT posting.
func (s *TopUpService) RecordTopUp(ctx context.Context, in TopUpInput, actorID int64) (*models.TopUp, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("tx begin failed: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	topup := &models.TopUp{
		Amount:      in.Amount,
		Reference:   in.Reference,
		Notes:       in.Notes,
		ReceiptRef:  in.ReceiptRef,
		CreatedAt:   now,
		CreatedByID: actorID,
	}
	err = tx.QueryRow(`
		INSERT INTO recargas (monto, referencia, observaciones, documento_comprobante, usuario_registro_id, fecha_recarga)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		in.Amount, in.Reference, in.Notes, in.ReceiptRef, actorID, now).Scan(&topup.ID)
	if err != nil {
		return nil, fmt.Errorf("recarga insert failed: %w", err)
	}

	ref := models.Reference{Kind: models.RefTopUp, ID: topup.ID, Purpose: "create"}
	if _, err := s.ledger.CreditTx(tx, in.Amount, ref, actorID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("tx commit failed: %w", err)
	}
	return topup, nil
}

// AttachReceipt sets the receipt document reference once. No ledger effect.
func (s *TopUpService) AttachReceipt(ctx context.Context, id int64, documentRef string) error {
	var existing sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT documento_comprobante FROM recargas WHERE id = $1`, id).Scan(&existing)
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
		`UPDATE recargas SET documento_comprobante = $1 WHERE id = $2 AND documento_comprobante IS NULL`,
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

// Get returns one recarga by id.
func (s *TopUpService) Get(ctx context.Context, id int64) (*models.TopUp, error) {
	var t models.TopUp
	err := s.db.QueryRowContext(ctx, `
		SELECT id, monto, referencia, observaciones, documento_comprobante, usuario_registro_id, fecha_recarga
		FROM recargas
		WHERE id = $1`, id).
		Scan(&t.ID, &t.Amount, &t.Reference, &t.Notes, &t.ReceiptRef, &t.CreatedByID, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns all recargas, newest first.
func (s *TopUpService) List(ctx context.Context) ([]models.TopUp, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, monto, referencia, observaciones, documento_comprobante, usuario_registro_id, fecha_recarga
		FROM recargas
		ORDER BY fecha_recarga DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topups []models.TopUp
	for rows.Next() {
		var t models.TopUp
		if err := rows.Scan(&t.ID, &t.Amount, &t.Reference, &t.Notes, &t.ReceiptRef,
			&t.CreatedByID, &t.CreatedAt); err != nil {
			return nil, err
		}
		topups = append(topups, t)
	}
	return topups, rows.Err()
}
