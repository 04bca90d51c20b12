package repository

import (
	"context"

	"github.com/atlasfield/fieldtrack-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TicketExpenseRepository handles database operations for ticket expense
// line items. Expenses for demo and production tickets share one table;
// rows are tied to their parent by ticket id.
type TicketExpenseRepository struct {
	db *gorm.DB
}

// NewTicketExpenseRepository creates a new TicketExpenseRepository
func NewTicketExpenseRepository(db *gorm.DB) *TicketExpenseRepository {
	return &TicketExpenseRepository{db: db}
}

func (r *TicketExpenseRepository) Create(ctx context.Context, expense *domain.ServiceTicketExpense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *TicketExpenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceTicketExpense, error) {
	var expense domain.ServiceTicketExpense
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&expense).Error
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *TicketExpenseRepository) Update(ctx context.Context, expense *domain.ServiceTicketExpense) error {
	return r.db.WithContext(ctx).Save(expense).Error
}

func (r *TicketExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.ServiceTicketExpense{}, "id = ?", id).Error
}

func (r *TicketExpenseRepository) ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]domain.ServiceTicketExpense, error) {
	var expenses []domain.ServiceTicketExpense
	err := r.db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("created_at ASC").
		Find(&expenses).Error
	return expenses, err
}

// DeleteByTicket removes every expense child of a ticket, child-before-parent
func (r *TicketExpenseRepository) DeleteByTicket(ctx context.Context, ticketID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Delete(&domain.ServiceTicketExpense{}).Error
}
