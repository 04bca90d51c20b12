package repository

import (
	"context"
	"time"

	"github.com/atlasfield/fieldtrack-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TimeEntryRepository handles database operations for time entries. The
// ticket core only ever counts entries through this repository; writes come
// exclusively from the time-entry service.
type TimeEntryRepository struct {
	db *gorm.DB
}

// NewTimeEntryRepository creates a new TimeEntryRepository
func NewTimeEntryRepository(db *gorm.DB) *TimeEntryRepository {
	return &TimeEntryRepository{db: db}
}

func (r *TimeEntryRepository) Create(ctx context.Context, entry *domain.TimeEntry) error {
	entry.EntryDate = domain.DateOnly(entry.EntryDate)
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *TimeEntryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TimeEntry, error) {
	var entry domain.TimeEntry
	err := r.db.WithContext(ctx).
		Preload("Project").
		Where("id = ?", id).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *TimeEntryRepository) Update(ctx context.Context, entry *domain.TimeEntry) error {
	entry.EntryDate = domain.DateOnly(entry.EntryDate)
	return r.db.WithContext(ctx).Omit("Project").Save(entry).Error
}

func (r *TimeEntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.TimeEntry{}, "id = ?", id).Error
}

// ListByUser returns a user's entries in a date window, newest first
func (r *TimeEntryRepository) ListByUser(ctx context.Context, userID string, from, to *time.Time) ([]domain.TimeEntry, error) {
	query := r.db.WithContext(ctx).
		Preload("Project").
		Where("user_id = ?", userID)
	if from != nil {
		query = query.Where("entry_date >= ?", domain.DateOnly(*from))
	}
	if to != nil {
		query = query.Where("entry_date <= ?", domain.DateOnly(*to))
	}
	var entries []domain.TimeEntry
	err := query.Order("entry_date DESC, created_at DESC").Find(&entries).Error
	return entries, err
}

// CountBillableForTicket counts the billable entries that still feed a
// ticket's grouping: user, date, project, and PO/AFE
func (r *TimeEntryRepository) CountBillableForTicket(ctx context.Context, userID string, entryDate time.Time, projectID uuid.UUID, poAfe string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.TimeEntry{}).
		Where("billable = ?", true).
		Where("user_id = ?", userID).
		Where("entry_date = ?", domain.DateOnly(entryDate)).
		Where("project_id = ?", projectID).
		Where("LOWER(TRIM(po_afe)) = LOWER(TRIM(?))", poAfe).
		Count(&count).Error
	return count, err
}
