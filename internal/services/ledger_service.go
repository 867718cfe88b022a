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
	ErrInvalidAmount  = errors.New("amount must be positive")
	ErrAccountMissing = errors.New("bolsa not initialized")
)

// LedgerService owns the singleton bolsa and its append-only posting log.
// Every mutation runs under the bolsa row lock: lock, replay-check the
// idempotency key, append the posting, update the materialized balance.
// Debits never block on insufficient funds; the balance is allowed to go
// negative because insurer settlement lags issuance.
type LedgerService struct {
	db *sql.DB
}

func NewLedgerService(db *sql.DB) *LedgerService {
	return &LedgerService{db: db}
}

// Credit appends a CREDIT posting and increases the balance.
func (s *LedgerService) Credit(ctx context.Context, amount int64, ref models.Reference, actorID int64) (*models.Posting, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return s.withTx(ctx, func(tx *sql.Tx) (*models.Posting, error) {
		return s.CreditTx(tx, amount, ref, actorID)
	})
}

// Debit appends a DEBIT posting and decreases the balance.
func (s *LedgerService) Debit(ctx context.Context, amount int64, ref models.Reference, actorID int64) (*models.Posting, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return s.withTx(ctx, func(tx *sql.Tx) (*models.Posting, error) {
		return s.DebitTx(tx, amount, ref, actorID)
	})
}

// Adjust appends an ADJUSTMENT posting with an explicit signed delta.
// Positive means an additional debit, negative a refund into the bolsa.
func (s *LedgerService) Adjust(ctx context.Context, delta int64, ref models.Reference, actorID int64) (*models.Posting, error) {
	if delta == 0 {
		return nil, ErrInvalidAmount
	}
	return s.withTx(ctx, func(tx *sql.Tx) (*models.Posting, error) {
		return s.AdjustTx(tx, delta, ref, actorID)
	})
}

// CreditTx is the in-transaction variant used by composite operations.
func (s *LedgerService) CreditTx(tx *sql.Tx, amount int64, ref models.Reference, actorID int64) (*models.Posting, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return s.appendTx(tx, models.PostingCredit, amount, amount, ref, actorID)
}

// DebitTx is the in-transaction variant used by composite operations.
func (s *LedgerService) DebitTx(tx *sql.Tx, amount int64, ref models.Reference, actorID int64) (*models.Posting, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return s.appendTx(tx, models.PostingDebit, amount, -amount, ref, actorID)
}

// AdjustTx is the in-transaction variant used by RevisionService.
func (s *LedgerService) AdjustTx(tx *sql.Tx, delta int64, ref models.Reference, actorID int64) (*models.Posting, error) {
	if delta == 0 {
		return nil, ErrInvalidAmount
	}
	amount := delta
	if amount < 0 {
		amount = -amount
	}
	return s.appendTx(tx, models.PostingAdjustment, amount, delta, ref, actorID)
}

// appendTx serializes on the bolsa row, resolves idempotent replays, appends
// the posting and updates the materialized balance, all inside tx. The replay
// check happens after the lock so concurrent retries of the same reference
// cannot both insert.
func (s *LedgerService) appendTx(tx *sql.Tx, kind models.PostingKind, amount, delta int64, ref models.Reference, actorID int64) (*models.Posting, error) {
	var accountID, balance int64
	err := tx.QueryRow(`
		SELECT id, saldo_actual
		FROM bolsa
		LIMIT 1
		FOR UPDATE`).Scan(&accountID, &balance)
	if err == sql.ErrNoRows {
		return nil, ErrAccountMissing
	}
	if err != nil {
		return nil, fmt.Errorf("bolsa lock failed: %w", err)
	}

	key := ref.Key()
	existing := &models.Posting{}
	err = tx.QueryRow(`
		SELECT id, kind, amount, delta, reference_kind, reference_id, actor_id, idempotency_key, created_at
		FROM postings
		WHERE idempotency_key = $1`, key).
		Scan(&existing.ID, &existing.Kind, &existing.Amount, &existing.Delta,
			&existing.ReferenceKind, &existing.ReferenceID, &existing.ActorID,
			&existing.IdempotencyKey, &existing.CreatedAt)
	if err == nil {
		return existing, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("idempotency lookup failed: %w", err)
	}

	now := time.Now()
	posting := &models.Posting{
		Kind:           kind,
		Amount:         amount,
		Delta:          delta,
		ReferenceKind:  ref.Kind,
		ReferenceID:    ref.ID,
		ActorID:        actorID,
		IdempotencyKey: key,
		CreatedAt:      now,
	}
	err = tx.QueryRow(`
		INSERT INTO postings (kind, amount, delta, reference_kind, reference_id, actor_id, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		kind, amount, delta, ref.Kind, ref.ID, actorID, key, now).Scan(&posting.ID)
	if err != nil {
		return nil, fmt.Errorf("posting insert failed: %w", err)
	}

	_, err = tx.Exec(`
		UPDATE bolsa
		SET saldo_actual = saldo_actual + $1, fecha_actualizacion = $2
		WHERE id = $3`,
		delta, now, accountID)
	if err != nil {
		return nil, fmt.Errorf("balance update failed: %w", err)
	}

	return posting, nil
}

// CurrentBalance returns the materialized bolsa balance.
func (s *LedgerService) CurrentBalance(ctx context.Context) (*models.Account, error) {
	var account models.Account
	err := s.db.QueryRowContext(ctx, `
		SELECT id, saldo_actual, fecha_actualizacion
		FROM bolsa
		LIMIT 1`).Scan(&account.ID, &account.Balance, &account.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrAccountMissing
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// HistoryFilter narrows a posting history query.
type HistoryFilter struct {
	ReferenceKind *models.ReferenceKind
	Since         *time.Time
}

// History lists postings ordered by id ascending.
func (s *LedgerService) History(ctx context.Context, filter HistoryFilter) ([]models.Posting, error) {
	query := `
		SELECT id, kind, amount, delta, reference_kind, reference_id, actor_id, idempotency_key, created_at
		FROM postings`
	args := []any{}
	where := ""
	if filter.ReferenceKind != nil {
		args = append(args, *filter.ReferenceKind)
		where = fmt.Sprintf(" WHERE reference_kind = $%d", len(args))
	}
	if filter.Since != nil {
		args = append(args, *filter.Since)
		if where == "" {
			where = fmt.Sprintf(" WHERE created_at >= $%d", len(args))
		} else {
			where += fmt.Sprintf(" AND created_at >= $%d", len(args))
		}
	}
	query += where + " ORDER BY id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var postings []models.Posting
	for rows.Next() {
		var p models.Posting
		if err := rows.Scan(&p.ID, &p.Kind, &p.Amount, &p.Delta, &p.ReferenceKind,
			&p.ReferenceID, &p.ActorID, &p.IdempotencyKey, &p.CreatedAt); err != nil {
			return nil, err
		}
		postings = append(postings, p)
	}
	return postings, rows.Err()
}

func (s *LedgerService) withTx(ctx context.Context, fn func(tx *sql.Tx) (*models.Posting, error)) (*models.Posting, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("tx begin failed: %w", err)
	}
	defer tx.Rollback()

	posting, err := fn(tx)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("tx commit failed: %w", err)
	}
	return posting, nil
}
