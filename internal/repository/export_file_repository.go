package repository

import (
	"context"

	"github.com/atlasfield/fieldtrack-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExportFileRepository handles metadata rows for stored ticket export PDFs
type ExportFileRepository struct {
	db *gorm.DB
}

// NewExportFileRepository creates a new ExportFileRepository
func NewExportFileRepository(db *gorm.DB) *ExportFileRepository {
	return &ExportFileRepository{db: db}
}

func (r *ExportFileRepository) Create(ctx context.Context, file *domain.ExportFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *ExportFileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ExportFile, error) {
	var file domain.ExportFile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *ExportFileRepository) ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]domain.ExportFile, error) {
	var files []domain.ExportFile
	err := r.db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("created_at DESC").
		Find(&files).Error
	return files, err
}

func (r *ExportFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.ExportFile{}, "id = ?", id).Error
}
