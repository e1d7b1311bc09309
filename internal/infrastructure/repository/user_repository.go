package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	domain "github.com/mohammadpnp/user-pipeline/internal/domain/user"
	"github.com/mohammadpnp/user-pipeline/internal/infrastructure/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// existingEmailsChunk bounds the IN clause size of ExistingEmails.
const existingEmailsChunk = 500

type UserRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db, now: time.Now}
}

func (r *UserRepository) Create(ctx context.Context, u domain.User) (domain.User, error) {
	row := r.toModel(u)

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.User{}, domain.ErrDuplicateEmail
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	return toDomain(row), nil
}

// InsertBatch writes a chunk in one transaction; rows losing the email race are skipped.
func (r *UserRepository) InsertBatch(ctx context.Context, _ string, users []domain.User) ([]domain.User, error) {
	if len(users) == 0 {
		return nil, nil
	}

	inserted := make([]domain.User, 0, len(users))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range users {
			row := r.toModel(u)
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "email"}},
				DoNothing: true,
			}).Create(&row)
			if res.Error != nil {
				return fmt.Errorf("insert user %s: %w", row.Email, res.Error)
			}
			if res.RowsAffected == 0 {
				continue
			}
			inserted = append(inserted, toDomain(row))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return inserted, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", domain.NormalizeEmail(email)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check user email: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepository) ExistingEmails(ctx context.Context, emails []string) (map[string]struct{}, error) {
	found := make(map[string]struct{}, len(emails))

	normalized := make([]string, 0, len(emails))
	for _, email := range emails {
		if email = domain.NormalizeEmail(email); email != "" {
			normalized = append(normalized, email)
		}
	}

	for start := 0; start < len(normalized); start += existingEmailsChunk {
		end := min(start+existingEmailsChunk, len(normalized))

		var rows []string
		err := r.db.WithContext(ctx).
			Model(&models.User{}).
			Where("email IN ?", normalized[start:end]).
			Pluck("email", &rows).Error
		if err != nil {
			return nil, fmt.Errorf("lookup user emails: %w", err)
		}
		for _, email := range rows {
			found[email] = struct{}{}
		}
	}

	return found, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// List returns users in insertion order.
func (r *UserRepository) List(ctx context.Context, limit int) ([]domain.User, error) {
	query := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.User
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return toDomainSlice(rows), nil
}

func (r *UserRepository) Search(ctx context.Context, term string) ([]domain.User, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return r.List(ctx, 0)
	}

	pattern := "%" + escapeLike(term) + "%"
	var rows []models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? ESCAPE '\\' OR email LIKE ? ESCAPE '\\'", pattern, pattern).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return toDomainSlice(rows), nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	var row models.User

	err := r.db.WithContext(ctx).First(&row, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	u := toDomain(row)
	return &u, nil
}

func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", userID)
	if res.Error != nil {
		return fmt.Errorf("delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) toModel(u domain.User) models.User {
	id := u.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now().UTC()
	}
	return models.User{
		ID:        id,
		Name:      u.Name,
		Email:     domain.NormalizeEmail(u.Email),
		Phone:     u.Phone,
		Gender:    u.Gender,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func toDomain(row models.User) domain.User {
	return domain.User{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Phone:     row.Phone,
		Gender:    row.Gender,
		CreatedAt: row.CreatedAt,
	}
}

func toDomainSlice(rows []models.User) []domain.User {
	out := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomain(row))
	}
	return out
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
