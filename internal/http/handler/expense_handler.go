package handler

import (
	"encoding/json"
	"net/http"

	"github.com/atlasfield/fieldtrack-api/internal/domain"
	"github.com/atlasfield/fieldtrack-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ExpenseHandler struct {
	expenseService *service.TicketExpenseService
	logger         *zap.Logger
}

func NewExpenseHandler(expenseService *service.TicketExpenseService, logger *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		logger:         logger,
	}
}

// @Summary List a ticket's expense line items
// @Tags Expenses
// @Produce json
// @Param id path string true "Ticket ID"
// @Param demo query bool false "Use the demo sandbox table"
// @Success 200 {array} domain.ServiceTicketExpenseDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /tickets/{id}/expenses [get]
func (h *ExpenseHandler) ListByTicket(w http.ResponseWriter, r *http.Request) {
	ticketID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid ticket ID: must be a valid UUID")
		return
	}

	expenses, err := h.expenseService.ListExpenses(r.Context(), isDemoRequest(r), ticketID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, expenses)
}

// @Summary Add an expense line item
// @Tags Expenses
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param request body domain.CreateExpenseRequest true "Expense data"
// @Param demo query bool false "Use the demo sandbox table"
// @Success 201 {object} domain.ServiceTicketExpenseDTO
// @Failure 409 {object} domain.ErrorResponse "Ticket is frozen"
// @Security BearerAuth
// @Router /tickets/{id}/expenses [post]
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	ticketID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid ticket ID: must be a valid UUID")
		return
	}

	var req domain.CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	expense, err := h.expenseService.AddExpense(r.Context(), isDemoRequest(r), ticketID, req)
	if err != nil {
		h.logger.Error("failed to add expense",
			zap.String("ticket_id", ticketID.String()), zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, expense)
}

// @Summary Update an expense line item
// @Tags Expenses
// @Accept json
// @Produce json
// @Param id path string true "Expense ID"
// @Param request body domain.UpdateExpenseRequest true "Fields to change"
// @Param demo query bool false "Use the demo sandbox table"
// @Success 200 {object} domain.ServiceTicketExpenseDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /expenses/{id} [put]
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid expense ID: must be a valid UUID")
		return
	}

	var req domain.UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	expense, err := h.expenseService.UpdateExpense(r.Context(), isDemoRequest(r), id, req)
	if err != nil {
		h.logger.Error("failed to update expense",
			zap.String("expense_id", id.String()), zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, expense)
}

// @Summary Delete an expense line item
// @Tags Expenses
// @Param id path string true "Expense ID"
// @Param demo query bool false "Use the demo sandbox table"
// @Success 204
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /expenses/{id} [delete]
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid expense ID: must be a valid UUID")
		return
	}
	if err := h.expenseService.DeleteExpense(r.Context(), isDemoRequest(r), id); err != nil {
		h.logger.Error("failed to delete expense",
			zap.String("expense_id", id.String()), zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
