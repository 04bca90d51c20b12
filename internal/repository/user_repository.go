package repository

import (
	"context"

	"github.com/atlasfield/fieldtrack-api/internal/domain"
	"gorm.io/gorm"
)

// UserRepository handles read access to users. The ticket core only needs
// users to derive employee initials.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context, activeOnly bool) ([]domain.User, error) {
	query := r.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var users []domain.User
	err := query.Order("name ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) Upsert(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}
