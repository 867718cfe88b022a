package main

import (
	"database/sql"

	"github.com/spf13/viper"

	"github.com/soathero/backend/internal/database"
	"github.com/soathero/backend/internal/logger"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS bolsa (
		id                  BIGSERIAL PRIMARY KEY,
		saldo_actual        BIGINT NOT NULL DEFAULT 0,
		fecha_actualizacion TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS postings (
		id              BIGSERIAL PRIMARY KEY,
		kind            TEXT NOT NULL CHECK (kind IN ('CREDIT', 'DEBIT', 'ADJUSTMENT')),
		amount          BIGINT NOT NULL CHECK (amount > 0),
		delta           BIGINT NOT NULL,
		reference_kind  TEXT NOT NULL CHECK (reference_kind IN ('TOPUP', 'ISSUANCE', 'REVISION')),
		reference_id    BIGINT NOT NULL,
		actor_id        BIGINT NOT NULL,
		idempotency_key TEXT NOT NULL UNIQUE,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS recargas (
		id                     BIGSERIAL PRIMARY KEY,
		monto                  BIGINT NOT NULL CHECK (monto > 0),
		referencia             TEXT,
		observaciones          TEXT,
		documento_comprobante  TEXT,
		usuario_registro_id    BIGINT NOT NULL,
		fecha_recarga          TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS soats_expedidos (
		id                  BIGSERIAL PRIMARY KEY,
		placa               TEXT NOT NULL,
		cedula              TEXT,
		nombre_propietario  TEXT,
		tipo_moto           TEXT NOT NULL CHECK (tipo_moto IN ('hasta_99cc', '100_200cc')),
		valor_soat          BIGINT NOT NULL,
		comision            BIGINT NOT NULL,
		total               BIGINT NOT NULL,
		observaciones       TEXT,
		documento_factura   TEXT,
		documento_soat      TEXT,
		documento_poliza    TEXT,
		usuario_registro_id BIGINT NOT NULL,
		fecha_expedicion    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_soats_placa ON soats_expedidos (placa)`,
	`CREATE INDEX IF NOT EXISTS idx_soats_fecha ON soats_expedidos (fecha_expedicion)`,
	`CREATE TABLE IF NOT EXISTS revisiones (
		id                  BIGSERIAL PRIMARY KEY,
		soat_id             BIGINT NOT NULL REFERENCES soats_expedidos (id),
		tipo_moto_anterior  TEXT NOT NULL,
		tipo_moto_nuevo     TEXT NOT NULL,
		valor_anterior      BIGINT NOT NULL,
		valor_nuevo         BIGINT NOT NULL,
		delta               BIGINT NOT NULL,
		usuario_registro_id BIGINT NOT NULL,
		fecha_revision      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

func main() {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	log := logger.New()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("config file not found, using defaults")
	}

	db := database.InitDatabase()
	defer db.Close()

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatal().Err(err).Msg("schema migration failed")
		}
	}

	if err := seedAccount(db); err != nil {
		log.Fatal().Err(err).Msg("seeding bolsa failed")
	}

	log.Info().Msg("schema ready, bolsa seeded")
}

// seedAccount creates the single bolsa row when the table is empty.
func seedAccount(db *sql.DB) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM bolsa`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err := db.Exec(`INSERT INTO bolsa (saldo_actual) VALUES (0)`)
	return err
}
