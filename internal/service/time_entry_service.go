package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atlasfield/fieldtrack-api/internal/domain"
	"github.com/atlasfield/fieldtrack-api/internal/mapper"
	"github.com/atlasfield/fieldtrack-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const entryDateLayout = "2006-01-02"

// TimeEntryService manages time entries and drives ticket derivation: every
// billable entry with a project is consolidated into a service ticket on
// save, and the ticket is torn down again when its last entry disappears.
type TimeEntryService struct {
	entryRepo   *repository.TimeEntryRepository
	projectRepo *repository.ProjectRepository
	tickets     *TicketService
	logger      *zap.Logger
}

// NewTimeEntryService creates a new TimeEntryService
func NewTimeEntryService(entryRepo *repository.TimeEntryRepository, projectRepo *repository.ProjectRepository, tickets *TicketService, logger *zap.Logger) *TimeEntryService {
	return &TimeEntryService{
		entryRepo:   entryRepo,
		projectRepo: projectRepo,
		tickets:     tickets,
		logger:      logger,
	}
}

// CreateTimeEntry saves a new entry for a user and derives its ticket
func (s *TimeEntryService) CreateTimeEntry(ctx context.Context, isDemo bool, userID string, req domain.CreateTimeEntryRequest) (*domain.TimeEntryDTO, error) {
	entryDate, err := time.Parse(entryDateLayout, req.EntryDate)
	if err != nil {
		return nil, fmt.Errorf("invalid entry date %q: %w", req.EntryDate, err)
	}

	entry := &domain.TimeEntry{
		UserID:      userID,
		EntryDate:   domain.DateOnly(entryDate),
		ProjectID:   req.ProjectID,
		Billable:    req.Billable,
		Hours:       req.Hours,
		Location:    req.Location,
		PoAfe:       req.PoAfe,
		Description: req.Description,
	}
	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("creating time entry: %w", err)
	}

	if err := s.deriveTicket(ctx, isDemo, entry); err != nil {
		return nil, err
	}

	dto := mapper.ToTimeEntryDTO(entry)
	return &dto, nil
}

// UpdateTimeEntry edits an entry and re-derives its ticket grouping. When
// the edit moved the entry out of its old group, the old ticket is cleaned
// up if it became empty.
func (s *TimeEntryService) UpdateTimeEntry(ctx context.Context, isDemo bool, entryID uuid.UUID, req domain.UpdateTimeEntryRequest) (*domain.TimeEntryDTO, error) {
	entry, err := s.getEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	old := *entry

	if req.EntryDate != nil {
		entryDate, err := time.Parse(entryDateLayout, *req.EntryDate)
		if err != nil {
			return nil, fmt.Errorf("invalid entry date %q: %w", *req.EntryDate, err)
		}
		entry.EntryDate = domain.DateOnly(entryDate)
	}
	if req.ProjectID != nil {
		entry.ProjectID = req.ProjectID
	}
	if req.Billable != nil {
		entry.Billable = *req.Billable
	}
	if req.Hours != nil {
		entry.Hours = *req.Hours
	}
	if req.Location != nil {
		entry.Location = *req.Location
	}
	if req.PoAfe != nil {
		entry.PoAfe = *req.PoAfe
	}
	if req.Description != nil {
		entry.Description = *req.Description
	}

	if err := s.entryRepo.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("updating time entry: %w", err)
	}

	// Old group first: with the entry already re-saved, the count sees the
	// new state, so an unchanged group is a harmless no-op here.
	if old.Billable && old.ProjectID != nil {
		if err := s.tickets.DeleteTicketIfNoTimeEntriesFor(ctx, DeleteParams{
			IsDemo:    isDemo,
			UserID:    old.UserID,
			EntryDate: old.EntryDate,
			ProjectID: old.ProjectID,
			PoAfe:     old.PoAfe,
		}); err != nil {
			return nil, err
		}
	}
	if err := s.deriveTicket(ctx, isDemo, entry); err != nil {
		return nil, err
	}

	dto := mapper.ToTimeEntryDTO(entry)
	return &dto, nil
}

// DeleteTimeEntry removes an entry and tears down its ticket when the entry
// was the last one feeding it.
func (s *TimeEntryService) DeleteTimeEntry(ctx context.Context, isDemo bool, entryID uuid.UUID) error {
	entry, err := s.getEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if err := s.entryRepo.Delete(ctx, entryID); err != nil {
		return fmt.Errorf("deleting time entry: %w", err)
	}
	if entry.Billable && entry.ProjectID != nil {
		if err := s.tickets.DeleteTicketIfNoTimeEntriesFor(ctx, DeleteParams{
			IsDemo:    isDemo,
			UserID:    entry.UserID,
			EntryDate: entry.EntryDate,
			ProjectID: entry.ProjectID,
			PoAfe:     entry.PoAfe,
		}); err != nil {
			return err
		}
	}
	return nil
}

// GetTimeEntry returns one entry as a DTO
func (s *TimeEntryService) GetTimeEntry(ctx context.Context, entryID uuid.UUID) (*domain.TimeEntryDTO, error) {
	entry, err := s.getEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToTimeEntryDTO(entry)
	return &dto, nil
}

// ListTimeEntries returns a user's entries, optionally bounded by date
func (s *TimeEntryService) ListTimeEntries(ctx context.Context, userID string, from, to *time.Time) ([]domain.TimeEntryDTO, error) {
	entries, err := s.entryRepo.ListByUser(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing time entries: %w", err)
	}
	return mapper.ToTimeEntryDTOs(entries), nil
}

// deriveTicket consolidates a billable entry into its ticket. Non-billable
// and project-less entries never produce tickets.
func (s *TimeEntryService) deriveTicket(ctx context.Context, isDemo bool, entry *domain.TimeEntry) error {
	if !entry.Billable || entry.ProjectID == nil {
		return nil
	}

	project, err := s.projectRepo.GetByID(ctx, *entry.ProjectID)
	if err != nil {
		return fmt.Errorf("loading project %s: %w", *entry.ProjectID, err)
	}
	customerID := project.CustomerID

	params := TicketParams{
		IsDemo:     isDemo,
		EntryDate:  entry.EntryDate,
		UserID:     entry.UserID,
		CustomerID: &customerID,
		ProjectID:  entry.ProjectID,
		Location:   entry.Location,
		PoAfe:      entry.PoAfe,
	}
	if _, err := s.tickets.GetOrCreateTicket(ctx, params); err != nil {
		return fmt.Errorf("deriving ticket for entry %s: %w", entry.ID, err)
	}
	if err := s.tickets.SyncTicketHeaderFromTimeEntry(ctx, params); err != nil {
		return fmt.Errorf("syncing ticket header for entry %s: %w", entry.ID, err)
	}
	return nil
}

func (s *TimeEntryService) getEntry(ctx context.Context, entryID uuid.UUID) (*domain.TimeEntry, error) {
	entry, err := s.entryRepo.GetByID(ctx, entryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTimeEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading time entry %s: %w", entryID, err)
	}
	return entry, nil
}
