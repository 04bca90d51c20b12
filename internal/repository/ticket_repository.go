package repository

import (
	"context"
	"time"

	"github.com/atlasfield/fieldtrack-api/internal/database"
	"github.com/atlasfield/fieldtrack-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TicketRepository handles database operations for service tickets. Every
// method takes an isDemo flag selecting between the production table and the
// isolated sandbox table; the two share one schema and one struct.
type TicketRepository struct {
	db *gorm.DB
}

// NewTicketRepository creates a new TicketRepository
func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) table(isDemo bool) string {
	if isDemo {
		return database.DemoTicketsTable
	}
	return domain.ServiceTicket{}.TableName()
}

func (r *TicketRepository) scope(ctx context.Context, isDemo bool) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.table(isDemo))
}

func (r *TicketRepository) Create(ctx context.Context, isDemo bool, ticket *domain.ServiceTicket) error {
	return r.scope(ctx, isDemo).Create(ticket).Error
}

func (r *TicketRepository) GetByID(ctx context.Context, isDemo bool, id uuid.UUID) (*domain.ServiceTicket, error) {
	var ticket domain.ServiceTicket
	err := r.scope(ctx, isDemo).Where("id = ?", id).First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// Save writes back a full ticket row
func (r *TicketRepository) Save(ctx context.Context, isDemo bool, ticket *domain.ServiceTicket) error {
	ticket.UpdatedAt = time.Now().UTC()
	return r.scope(ctx, isDemo).Where("id = ?", ticket.ID).Updates(ticket).Error
}

// UpdateFields applies a partial update and reports how many rows changed.
// Callers treat zero rows affected as a permissions problem, not a no-op.
func (r *TicketRepository) UpdateFields(ctx context.Context, isDemo bool, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	fields["updated_at"] = time.Now().UTC()
	result := r.scope(ctx, isDemo).Where("id = ?", id).Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *TicketRepository) Delete(ctx context.Context, isDemo bool, id uuid.UUID) error {
	return r.scope(ctx, isDemo).Where("id = ?", id).Delete(&domain.ServiceTicket{}).Error
}

// CandidateFilter narrows the ticket rows a time entry could belong to.
// ProjectID and Location are optional filters; nil means "don't filter".
type CandidateFilter struct {
	EntryDate  time.Time
	UserID     string
	CustomerID uuid.UUID
	ProjectID  *uuid.UUID
	Location   *string
}

// ListCandidates returns the non-discarded tickets matching a grouping
// filter, oldest first so the matcher's tiers see stable ordering.
func (r *TicketRepository) ListCandidates(ctx context.Context, isDemo bool, f CandidateFilter) ([]domain.ServiceTicket, error) {
	query := r.scope(ctx, isDemo).
		Where("entry_date = ?", domain.DateOnly(f.EntryDate)).
		Where("user_id = ?", f.UserID).
		Where("customer_id = ?", f.CustomerID).
		Where("is_discarded = ?", false)
	if f.ProjectID != nil {
		query = query.Where("project_id = ?", *f.ProjectID)
	}
	if f.Location != nil {
		query = query.Where("location = ?", *f.Location)
	}
	var tickets []domain.ServiceTicket
	err := query.Order("created_at ASC").Find(&tickets).Error
	return tickets, err
}

// ListUsedSequences returns every sequence number held for an employee/year
// across all tickets regardless of discard or workflow status: discarded
// tickets still occupy their number permanently.
func (r *TicketRepository) ListUsedSequences(ctx context.Context, isDemo bool, initials string, year int) ([]int, error) {
	var sequences []int
	err := r.scope(ctx, isDemo).
		Where("employee_initials = ?", initials).
		Where("ticket_year = ?", year).
		Where("sequence_number IS NOT NULL").
		Pluck("sequence_number", &sequences).Error
	return sequences, err
}

// ListForProjectDate returns the non-discarded tickets for one user, entry
// date and project, used when deciding whether a ticket has become empty.
func (r *TicketRepository) ListForProjectDate(ctx context.Context, isDemo bool, userID string, entryDate time.Time, projectID uuid.UUID) ([]domain.ServiceTicket, error) {
	var tickets []domain.ServiceTicket
	err := r.scope(ctx, isDemo).
		Where("entry_date = ?", domain.DateOnly(entryDate)).
		Where("user_id = ?", userID).
		Where("project_id = ?", projectID).
		Where("is_discarded = ?", false).
		Order("created_at ASC").
		Find(&tickets).Error
	return tickets, err
}

// ListFilter narrows the ticket listing exposed to the UI
type ListFilter struct {
	UserID           string
	CustomerID       *uuid.UUID
	Status           *domain.WorkflowStatus
	From             *time.Time
	To               *time.Time
	IncludeDiscarded bool
	DiscardedOnly    bool
	Page             int
	PageSize         int
}

// List returns a page of tickets plus the total row count
func (r *TicketRepository) List(ctx context.Context, isDemo bool, f ListFilter) ([]domain.ServiceTicket, int64, error) {
	query := r.scope(ctx, isDemo)

	if f.DiscardedOnly {
		query = query.Where("is_discarded = ?", true)
	} else if !f.IncludeDiscarded {
		query = query.Where("is_discarded = ?", false)
	}
	if f.UserID != "" {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.CustomerID != nil {
		query = query.Where("customer_id = ?", *f.CustomerID)
	}
	if f.Status != nil {
		query = query.Where("workflow_status = ?", *f.Status)
	}
	if f.From != nil {
		query = query.Where("entry_date >= ?", domain.DateOnly(*f.From))
	}
	if f.To != nil {
		query = query.Where("entry_date <= ?", domain.DateOnly(*f.To))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	pageSize := f.PageSize
	if pageSize < 1 {
		pageSize = 50
	}

	var tickets []domain.ServiceTicket
	err := query.
		Order("entry_date DESC, created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&tickets).Error
	return tickets, total, err
}

// ListReadyForExport returns approved, numbered, non-discarded tickets
func (r *TicketRepository) ListReadyForExport(ctx context.Context, isDemo bool) ([]domain.ServiceTicket, error) {
	var tickets []domain.ServiceTicket
	err := r.scope(ctx, isDemo).
		Where("workflow_status = ?", domain.WorkflowStatusApproved).
		Where("ticket_number IS NOT NULL").
		Where("is_discarded = ?", false).
		Order("entry_date ASC, ticket_number ASC").
		Find(&tickets).Error
	return tickets, err
}

// ListDrafts returns every unnumbered draft/rejected ticket, for the
// cleanup sweep
func (r *TicketRepository) ListDrafts(ctx context.Context, isDemo bool) ([]domain.ServiceTicket, error) {
	var tickets []domain.ServiceTicket
	err := r.scope(ctx, isDemo).
		Where("ticket_number IS NULL").
		Where("workflow_status IN ?", []domain.WorkflowStatus{domain.WorkflowStatusDraft, domain.WorkflowStatusRejected}).
		Where("is_discarded = ?", false).
		Find(&tickets).Error
	return tickets, err
}
