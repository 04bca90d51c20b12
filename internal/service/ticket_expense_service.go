package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/atlasfield/fieldtrack-api/internal/domain"
	"github.com/atlasfield/fieldtrack-api/internal/mapper"
	"github.com/atlasfield/fieldtrack-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TicketExpenseService manages expense line items on service tickets. The
// line amount is always quantity times rate; callers never set it directly.
// Expenses on a frozen ticket cannot be changed, since they are part of the
// bill the ticket number was issued against.
type TicketExpenseService struct {
	expenseRepo *repository.TicketExpenseRepository
	ticketRepo  *repository.TicketRepository
	logger      *zap.Logger
}

// NewTicketExpenseService creates a new TicketExpenseService
func NewTicketExpenseService(expenseRepo *repository.TicketExpenseRepository, ticketRepo *repository.TicketRepository, logger *zap.Logger) *TicketExpenseService {
	return &TicketExpenseService{
		expenseRepo: expenseRepo,
		ticketRepo:  ticketRepo,
		logger:      logger,
	}
}

// AddExpense adds a line item to an unapproved ticket
func (s *TicketExpenseService) AddExpense(ctx context.Context, isDemo bool, ticketID uuid.UUID, req domain.CreateExpenseRequest) (*domain.ServiceTicketExpenseDTO, error) {
	if !req.Category.IsValid() {
		return nil, fmt.Errorf("invalid expense category: %q", req.Category)
	}
	if err := s.requireEditableTicket(ctx, isDemo, ticketID); err != nil {
		return nil, err
	}

	expense := &domain.ServiceTicketExpense{
		TicketID:    ticketID,
		Category:    req.Category,
		Description: req.Description,
		Quantity:    req.Quantity,
		Rate:        req.Rate,
		Amount:      req.Quantity * req.Rate,
	}
	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("creating expense: %w", err)
	}

	dto := mapper.ToExpenseDTO(expense)
	return &dto, nil
}

// UpdateExpense edits a line item; nil request fields are untouched
func (s *TicketExpenseService) UpdateExpense(ctx context.Context, isDemo bool, expenseID uuid.UUID, req domain.UpdateExpenseRequest) (*domain.ServiceTicketExpenseDTO, error) {
	expense, err := s.getExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEditableTicket(ctx, isDemo, expense.TicketID); err != nil {
		return nil, err
	}

	if req.Category != nil {
		if !req.Category.IsValid() {
			return nil, fmt.Errorf("invalid expense category: %q", *req.Category)
		}
		expense.Category = *req.Category
	}
	if req.Description != nil {
		expense.Description = *req.Description
	}
	if req.Quantity != nil {
		expense.Quantity = *req.Quantity
	}
	if req.Rate != nil {
		expense.Rate = *req.Rate
	}
	expense.Amount = expense.Quantity * expense.Rate

	if err := s.expenseRepo.Update(ctx, expense); err != nil {
		return nil, fmt.Errorf("updating expense: %w", err)
	}
	dto := mapper.ToExpenseDTO(expense)
	return &dto, nil
}

// DeleteExpense removes a line item from an unapproved ticket
func (s *TicketExpenseService) DeleteExpense(ctx context.Context, isDemo bool, expenseID uuid.UUID) error {
	expense, err := s.getExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	if err := s.requireEditableTicket(ctx, isDemo, expense.TicketID); err != nil {
		return err
	}
	if err := s.expenseRepo.Delete(ctx, expenseID); err != nil {
		return fmt.Errorf("deleting expense: %w", err)
	}
	return nil
}

// ListExpenses returns a ticket's line items
func (s *TicketExpenseService) ListExpenses(ctx context.Context, isDemo bool, ticketID uuid.UUID) ([]domain.ServiceTicketExpenseDTO, error) {
	if _, err := s.ticketRepo.GetByID(ctx, isDemo, ticketID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("loading ticket %s: %w", ticketID, err)
	}
	expenses, err := s.expenseRepo.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	return mapper.ToExpenseDTOs(expenses), nil
}

func (s *TicketExpenseService) getExpense(ctx context.Context, expenseID uuid.UUID) (*domain.ServiceTicketExpense, error) {
	expense, err := s.expenseRepo.GetByID(ctx, expenseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrExpenseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading expense %s: %w", expenseID, err)
	}
	return expense, nil
}

func (s *TicketExpenseService) requireEditableTicket(ctx context.Context, isDemo bool, ticketID uuid.UUID) error {
	ticket, err := s.ticketRepo.GetByID(ctx, isDemo, ticketID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTicketNotFound
	}
	if err != nil {
		return fmt.Errorf("loading ticket %s: %w", ticketID, err)
	}
	if ticket.IsFrozen() {
		return ErrTicketFrozen
	}
	return nil
}
