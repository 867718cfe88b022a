package models

import (
	"fmt"
	"strings"
	"time"
)

// PostingKind classifies a ledger posting.
type PostingKind string

const (
	PostingCredit     PostingKind = "CREDIT"
	PostingDebit      PostingKind = "DEBIT"
	PostingAdjustment PostingKind = "ADJUSTMENT"
)

// ReferenceKind identifies the record a posting settles.
type ReferenceKind string

const (
	RefTopUp    ReferenceKind = "TOPUP"
	RefIssuance ReferenceKind = "ISSUANCE"
	RefRevision ReferenceKind = "REVISION"
)

// Account is the single shared prepaid "bolsa". Exactly one row exists;
// Balance is a materialized projection of the posting log and may go negative.
type Account struct {
	ID        int64     `json:"id" db:"id"`
	Balance   int64     `json:"saldo_actual" db:"saldo_actual"`
	UpdatedAt time.Time `json:"fecha_actualizacion" db:"fecha_actualizacion"`
}

// Posting is one immutable ledger entry. Amount is always positive;
// Delta carries the signed effect applied to the account balance.
type Posting struct {
	ID             int64         `json:"id" db:"id"`
	Kind           PostingKind   `json:"kind" db:"kind"`
	Amount         int64         `json:"amount" db:"amount"`
	Delta          int64         `json:"delta" db:"delta"`
	ReferenceKind  ReferenceKind `json:"reference_kind" db:"reference_kind"`
	ReferenceID    int64         `json:"reference_id" db:"reference_id"`
	ActorID        int64         `json:"actor_id" db:"actor_id"`
	IdempotencyKey string        `json:"-" db:"idempotency_key"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
}

// Reference names the business record behind a ledger mutation and doubles
// as the idempotency key source: a retry with the same reference is a replay.
type Reference struct {
	Kind    ReferenceKind
	ID      int64
	Purpose string
}

// Key derives the idempotency key, e.g. "issuance:42:create".
func (r Reference) Key() string {
	return fmt.Sprintf("%s:%d:%s", strings.ToLower(string(r.Kind)), r.ID, r.Purpose)
}
