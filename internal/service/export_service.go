package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/atlasfield/fieldtrack-api/internal/domain"
	"github.com/atlasfield/fieldtrack-api/internal/mapper"
	"github.com/atlasfield/fieldtrack-api/internal/repository"
	"github.com/atlasfield/fieldtrack-api/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ExportService archives exported ticket documents. A stored export advances
// an approved ticket to pdf_exported; tickets further along keep their
// status, since re-exporting a sent ticket must not rewind the pipeline.
type ExportService struct {
	exportRepo *repository.ExportFileRepository
	tickets    *TicketService
	store      storage.Storage
	logger     *zap.Logger
}

// NewExportService creates a new ExportService
func NewExportService(exportRepo *repository.ExportFileRepository, tickets *TicketService, store storage.Storage, logger *zap.Logger) *ExportService {
	return &ExportService{
		exportRepo: exportRepo,
		tickets:    tickets,
		store:      store,
		logger:     logger,
	}
}

// StoreExport uploads an exported document for an approved, numbered ticket
func (s *ExportService) StoreExport(ctx context.Context, isDemo bool, ticketID uuid.UUID, filename, contentType string, data io.Reader) (*domain.ExportFileDTO, error) {
	ticket, err := s.tickets.getTicket(ctx, isDemo, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.IsFrozen() {
		return nil, ErrTicketNotExportable
	}

	storagePath, size, err := s.store.Upload(ctx, filename, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("uploading export: %w", err)
	}

	file := &domain.ExportFile{
		TicketID:    ticketID,
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		StoragePath: storagePath,
	}
	if err := s.exportRepo.Create(ctx, file); err != nil {
		// Orphaned blob is preferable to a dangling row
		if delErr := s.store.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to remove blob after record failure",
				zap.String("storage_path", storagePath), zap.Error(delErr))
		}
		return nil, fmt.Errorf("recording export file: %w", err)
	}

	if ticket.WorkflowStatus == domain.WorkflowStatusApproved {
		if _, err := s.tickets.UpdateWorkflowStatus(ctx, isDemo, ticketID, domain.WorkflowStatusPDFExported, ""); err != nil {
			s.logger.Warn("failed to advance ticket to pdf_exported",
				zap.String("ticket_id", ticketID.String()), zap.Error(err))
		}
	}

	dto := mapper.ToExportFileDTO(file)
	return &dto, nil
}

// OpenExport streams a stored export document
func (s *ExportService) OpenExport(ctx context.Context, exportID uuid.UUID) (io.ReadCloser, *domain.ExportFileDTO, error) {
	file, err := s.getExport(ctx, exportID)
	if err != nil {
		return nil, nil, err
	}
	reader, err := s.store.Download(ctx, file.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("downloading export %s: %w", exportID, err)
	}
	dto := mapper.ToExportFileDTO(file)
	return reader, &dto, nil
}

// ListExports returns the export documents stored for a ticket
func (s *ExportService) ListExports(ctx context.Context, ticketID uuid.UUID) ([]domain.ExportFileDTO, error) {
	files, err := s.exportRepo.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("listing exports: %w", err)
	}
	dtos := make([]domain.ExportFileDTO, len(files))
	for i := range files {
		dtos[i] = mapper.ToExportFileDTO(&files[i])
	}
	return dtos, nil
}

// DeleteExport removes an export document and its record
func (s *ExportService) DeleteExport(ctx context.Context, exportID uuid.UUID) error {
	file, err := s.getExport(ctx, exportID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, file.StoragePath); err != nil {
		return fmt.Errorf("deleting export blob: %w", err)
	}
	if err := s.exportRepo.Delete(ctx, exportID); err != nil {
		return fmt.Errorf("deleting export record: %w", err)
	}
	return nil
}

func (s *ExportService) getExport(ctx context.Context, exportID uuid.UUID) (*domain.ExportFile, error) {
	file, err := s.exportRepo.GetByID(ctx, exportID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrExportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading export %s: %w", exportID, err)
	}
	return file, nil
}
