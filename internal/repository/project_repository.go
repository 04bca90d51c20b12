package repository

import (
	"context"

	"github.com/atlasfield/fieldtrack-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectRepository handles database operations for projects
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).Preload("Customer").Where("id = ?", id).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) List(ctx context.Context, customerID *uuid.UUID) ([]domain.Project, error) {
	query := r.db.WithContext(ctx)
	if customerID != nil {
		query = query.Where("customer_id = ?", *customerID)
	}
	var projects []domain.Project
	err := query.Order("name ASC").Find(&projects).Error
	return projects, err
}
