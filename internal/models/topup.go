package models

import "time"

// TopUp is a "recarga": a deposit into the bolsa. Immutable once recorded,
// except for a one-time attach of the receipt document reference.
type TopUp struct {
	ID          int64     `json:"id" db:"id"`
	Amount      int64     `json:"monto" db:"monto"`
	Reference   *string   `json:"referencia,omitempty" db:"referencia"`
	Notes       *string   `json:"observaciones,omitempty" db:"observaciones"`
	ReceiptRef  *string   `json:"documento_comprobante,omitempty" db:"documento_comprobante"`
	CreatedAt   time.Time `json:"fecha_recarga" db:"fecha_recarga"`
	CreatedByID int64     `json:"usuario_registro_id" db:"usuario_registro_id"`
}
