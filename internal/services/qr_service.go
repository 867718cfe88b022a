package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

const verificationTTL = 10 * time.Minute

// QRService issues short-lived verification codes for expedited SOATs.
// The code embeds the policy identity; the payload lives in redis with a
// TTL so a scanned code can be checked exactly once per issue.
type QRService struct {
	db    *sql.DB
	redis *redis.Client
}

func NewQRService(db *sql.DB, redisClient *redis.Client) *QRService {
	return &QRService{db: db, redis: redisClient}
}

type VerificationPayload struct {
	IssuanceID int64     `json:"soat_id"`
	Plate      string    `json:"placa"`
	IssuedAt   time.Time `json:"fecha_expedicion"`
	Nonce      string    `json:"nonce"`
}

// GenerateVerification builds a QR PNG for the SOAT and registers its
// payload in redis. Returns the token alongside the image bytes.
func (s *QRService) GenerateVerification(ctx context.Context, issuanceID int64) (string, []byte, error) {
	var payload VerificationPayload
	err := s.db.QueryRowContext(ctx,
		`SELECT id, placa, fecha_expedicion FROM soats_expedidos WHERE id = $1`, issuanceID).
		Scan(&payload.IssuanceID, &payload.Plate, &payload.IssuedAt)
	if err == sql.ErrNoRows {
		return "", nil, ErrNotFound
	}
	if err != nil {
		return "", nil, err
	}
	payload.Nonce = uuid.NewString()

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", nil, err
	}
	token := base64.URLEncoding.EncodeToString(jsonData)

	if s.redis != nil {
		key := fmt.Sprintf("soatqr:%s", token)
		if err := s.redis.Set(ctx, key, jsonData, verificationTTL).Err(); err != nil {
			return "", nil, err
		}
	}

	png, err := qrcode.Encode(token, qrcode.Medium, 256)
	if err != nil {
		return "", nil, err
	}
	return token, png, nil
}

// Verify resolves a scanned token back to its payload, or fails when the
// token is unknown or expired.
func (s *QRService) Verify(ctx context.Context, token string) (*VerificationPayload, error) {
	if s.redis == nil {
		return nil, fmt.Errorf("verification unavailable")
	}
	key := fmt.Sprintf("soatqr:%s", token)
	data, err := s.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("invalid or expired verification code")
	}
	if err != nil {
		return nil, err
	}

	var payload VerificationPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
