package repository

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/mohammadpnp/user-pipeline/internal/domain/user"
	"github.com/mohammadpnp/user-pipeline/internal/infrastructure/db/models"
	"gorm.io/gorm"
)

// LegacyUserRepository reads the store being migrated from. It never writes.
type LegacyUserRepository struct {
	db *gorm.DB
}

func NewLegacyUserRepository(db *gorm.DB) *LegacyUserRepository {
	return &LegacyUserRepository{db: db}
}

func (r *LegacyUserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.LegacyUser{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count legacy users: %w", err)
	}
	return count, nil
}

// ListAfter pages by primary key so concurrent inserts never shift a page.
func (r *LegacyUserRepository) ListAfter(ctx context.Context, afterID uint64, limit int) ([]domain.LegacyUser, error) {
	var rows []models.LegacyUser
	err := r.db.WithContext(ctx).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list legacy users after %d: %w", afterID, err)
	}

	out := make([]domain.LegacyUser, 0, len(rows))
	for _, row := range rows {
		out = append(out, legacyToDomain(row))
	}
	return out, nil
}

func (r *LegacyUserRepository) GetByID(ctx context.Context, id uint64) (*domain.LegacyUser, error) {
	var row models.LegacyUser
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLegacyUserNotFound
		}
		return nil, fmt.Errorf("get legacy user %d: %w", id, err)
	}
	u := legacyToDomain(row)
	return &u, nil
}

func legacyToDomain(row models.LegacyUser) domain.LegacyUser {
	return domain.LegacyUser{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Phone:     row.Phone,
		Gender:    row.Gender,
		CreatedAt: row.CreatedAt,
	}
}
