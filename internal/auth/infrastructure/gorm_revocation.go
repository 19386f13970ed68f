package infrastructure

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RevokedToken é a linha da tabela revoked_tokens.
type RevokedToken struct {
	TokenID   string    `gorm:"primaryKey;size:36"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

func (RevokedToken) TableName() string {
	return "revoked_tokens"
}

// GormRevocationStore guarda a lista de revogação no banco relacional.
type GormRevocationStore struct {
	db *gorm.DB
}

func NewGormRevocationStore(db *gorm.DB) *GormRevocationStore {
	return &GormRevocationStore{db: db}
}

func (s *GormRevocationStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&RevokedToken{TokenID: tokenID, ExpiresAt: expiresAt}).Error
}

func (s *GormRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&RevokedToken{}).Where("token_id = ?", tokenID).Count(&count).Error
	return count > 0, err
}

// Cleanup apaga as entradas de tokens já expirados.
func (s *GormRevocationStore) Cleanup(ctx context.Context, now time.Time) (int, error) {
	result := s.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&RevokedToken{})
	return int(result.RowsAffected), result.Error
}
