package models

import "time"

// VehicleClass is the closed set of motorcycle displacement tiers the
// catalog prices. Values match the wire format the frontend sends.
type VehicleClass string

const (
	VehicleUpTo99CC VehicleClass = "hasta_99cc"
	Vehicle100To200 VehicleClass = "100_200cc"
)

func (c VehicleClass) Valid() bool {
	switch c {
	case VehicleUpTo99CC, Vehicle100To200:
		return true
	}
	return false
}

// Issuance is an expedited SOAT policy. BasePremium and Commission are
// snapshots of the catalog at issuance time; they change only through an
// explicit revision, never because the catalog moved.
type Issuance struct {
	ID             int64        `json:"id" db:"id"`
	Plate          string       `json:"placa" db:"placa"`
	NationalID     *string      `json:"cedula,omitempty" db:"cedula"`
	OwnerName      *string      `json:"nombre_propietario,omitempty" db:"nombre_propietario"`
	VehicleClass   VehicleClass `json:"tipo_moto" db:"tipo_moto"`
	BasePremium    int64        `json:"valor_soat" db:"valor_soat"`
	Commission     int64        `json:"comision" db:"comision"`
	Total          int64        `json:"total" db:"total"`
	Notes          *string      `json:"observaciones,omitempty" db:"observaciones"`
	InvoiceRef     *string      `json:"documento_factura,omitempty" db:"documento_factura"`
	CertificateRef *string      `json:"documento_soat,omitempty" db:"documento_soat"`
	PolicyRef      *string      `json:"documento_poliza,omitempty" db:"documento_poliza"`
	IssuedAt       time.Time    `json:"fecha_expedicion" db:"fecha_expedicion"`
	IssuedByID     int64        `json:"usuario_registro_id" db:"usuario_registro_id"`
}

// Revision is the audit record of an edit to an issued SOAT. A class change
// produces exactly one ADJUSTMENT posting referencing this row.
type Revision struct {
	ID         int64        `json:"id" db:"id"`
	IssuanceID int64        `json:"soat_id" db:"soat_id"`
	OldClass   VehicleClass `json:"tipo_moto_anterior" db:"tipo_moto_anterior"`
	NewClass   VehicleClass `json:"tipo_moto_nuevo" db:"tipo_moto_nuevo"`
	OldPremium int64        `json:"valor_anterior" db:"valor_anterior"`
	NewPremium int64        `json:"valor_nuevo" db:"valor_nuevo"`
	Delta      int64        `json:"delta" db:"delta"`
	ActorID    int64        `json:"usuario_registro_id" db:"usuario_registro_id"`
	CreatedAt  time.Time    `json:"fecha_revision" db:"fecha_revision"`
}

// DashboardStats is the read-only aggregate the dashboard renders.
type DashboardStats struct {
	Balance          int64 `json:"saldo_actual"`
	LowBalance       bool  `json:"saldo_bajo"`
	IssuancesToday   int64 `json:"soats_hoy"`
	TotalIssuances   int64 `json:"total_soats_expedidos"`
	TotalCommissions int64 `json:"total_comisiones_generadas"`
	TotalTopUps      int64 `json:"total_recargas"`
}
