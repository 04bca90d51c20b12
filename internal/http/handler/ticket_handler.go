package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/atlasfield/fieldtrack-api/internal/auth"
	"github.com/atlasfield/fieldtrack-api/internal/domain"
	"github.com/atlasfield/fieldtrack-api/internal/repository"
	"github.com/atlasfield/fieldtrack-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TicketHandler struct {
	ticketService *service.TicketService
	logger        *zap.Logger
}

func NewTicketHandler(ticketService *service.TicketService, logger *zap.Logger) *TicketHandler {
	return &TicketHandler{
		ticketService: ticketService,
		logger:        logger,
	}
}

// @Summary List service tickets
// @Tags Tickets
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(50)
// @Param status query string false "Filter by workflow status"
// @Param customerId query string false "Filter by customer ID"
// @Param from query string false "Earliest entry date (YYYY-MM-DD)"
// @Param to query string false "Latest entry date (YYYY-MM-DD)"
// @Param discardedOnly query bool false "Only discarded tickets (trash view)"
// @Param demo query bool false "Use the demo sandbox table"
// @Success 200 {object} domain.PagedTicketsResponse
// @Security BearerAuth
// @Router /tickets [get]
func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	filter := repository.ListFilter{}
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.PageSize, _ = strconv.Atoi(r.URL.Query().Get("pageSize"))
	if filter.PageSize > 200 {
		filter.PageSize = 200
	}

	// Employees see their own tickets; approvers and admins see everyone's
	if userCtx.IsApprover() {
		filter.UserID = r.URL.Query().Get("userId")
	} else {
		filter.UserID = userCtx.UserID
	}

	if cid := r.URL.Query().Get("customerId"); cid != "" {
		if id, err := uuid.Parse(cid); err == nil {
			filter.CustomerID = &id
		}
	}
	if st := r.URL.Query().Get("status"); st != "" {
		status := domain.WorkflowStatus(st)
		if !status.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid workflow status filter")
			return
		}
		filter.Status = &status
	}
	if from := r.URL.Query().Get("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.From = &t
		}
	}
	if to := r.URL.Query().Get("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			filter.To = &t
		}
	}
	filter.DiscardedOnly = r.URL.Query().Get("discardedOnly") == "true"
	filter.IncludeDiscarded = r.URL.Query().Get("includeDiscarded") == "true"

	result, err := h.ticketService.GetAllTickets(r.Context(), isDemoRequest(r), filter)
	if err != nil {
		h.logger.Error("failed to list tickets", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// @Summary Get a service ticket
// @Tags Tickets
// @Produce json
// @Param id path string true "Ticket ID"
// @Param demo query bool false "Use the demo sandbox table"
// @Success 200 {object} domain.ServiceTicketDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /tickets/{id} [get]
func (h *TicketHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid ticket ID: must be a valid UUID")
		return
	}

	ticket, err := h.ticketService.GetTicket(r.Context(), isDemoRequest(r), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ticket)
}

// @Summary Create a ticket record
// @Description Creates an approved, numbered ticket directly, for manually
// @Description entered work that has no time entries behind it.
// @Tags Tickets
// @Accept json
// @Produce json
// @Param request body domain.CreateTicketRecordRequest true "Ticket data"
// @Param demo query bool false "Use the demo sandbox table"
// @Success 201 {object} domain.ServiceTicketDTO
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /tickets [post]
func (h *TicketHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTicketRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	ticket, err := h.ticketService.CreateTicketRecord(r.Context(), isDemoRequest(r), req)
	if err != nil {
		h.logger.Error("failed to create ticket record", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/tickets/"+ticket.ID.String())
	respondJSON(w, http.StatusCreated, ticket)
}

// @Summary Get the next assignable ticket number
// @Tags Tickets
// @Produce json
// @Param initials query string true "Employee initials"
// @Param demo query bool false "Use the demo sandbox table"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /tickets/next-number [get]
func (h *TicketHandler) NextNumber(w http.ResponseWriter, r *http.Request) {
	initials := r.URL.Query().Get("initials")
	if initials == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'initials' is required")
		return
	}

	number, err := h.ticketService.GetNextTicketNumber(r.Context(), isDemoRequest(r), initials)
	if err != nil {
		h.logger.Error("failed to compute next ticket number", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"ticketNumber": number})
}

// @Summary List tickets ready for export
// @Tags Tickets
// @Produce json
// @Param demo query bool false "Use the demo sandbox table"
// @Success 200 {array} domain.ServiceTicketDTO
// @Security BearerAuth
// @Router /tickets/ready-for-export [get]
func (h *TicketHandler) ReadyForExport(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.ticketService.GetTicketsReadyForExport(r.Context(), isDemoRequest(r))
	if err != nil {
		h.logger.Error("failed to list exportable tickets", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tickets)
}

// @Summary Assign or unassign a ticket number
// @Description Assigning a number approves the ticket and freezes its
// @Description financial snapshot; a null number unassigns it while keeping
// @Description the ticket approved.
// @Tags Tickets
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param request body domain.UpdateTicketNumberRequest true "Number assignment"
// @Param demo query bool false "Use the demo sandbox table"
// @Success 200 {object} domain.ServiceTicketDTO
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Number allocation exhausted"
// @Security BearerAuth
// @Router /tickets/{id}/number [put]
func (h *TicketHandler) UpdateNumber(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid ticket ID: must be a valid UUID")
		return
	}

	var req domain.UpdateTicketNumberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	approvedByID := ""
	if userCtx, ok := auth.FromContext(r.Context()); ok {
		approvedByID = userCtx.UserID
	}

	ticket, err := h.ticketService.UpdateTicketNumber(r.Context(), isDemoRequest(r), id, req, approvedByID)
	if err != nil {
		h.logger.Error("failed to update ticket number",
			zap.String("ticket_id", id.String()), zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ticket)
}

// @Summary Update workflow status
// @Tags Tickets
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param request body domain.UpdateWorkflowStatusRequest true "New status"
// @Param demo query bool false "Use the demo sandbox table"
// @Success 200 {object} domain.ServiceTicketDTO
// @Failure 409 {object} domain.ErrorResponse "Backward transition"
// @Security BearerAuth
// @Router /tickets/{id}/status [put]
func (h *TicketHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid ticket ID: must be a valid UUID")
		return
	}

	var req domain.UpdateWorkflowStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	ticket, err := h.ticketService.UpdateWorkflowStatus(r.Context(), isDemoRequest(r), id, req.Status, req.RejectionNotes)
	if err != nil {
		h.logger.Error("failed to update workflow status",
			zap.String("ticket_id", id.String()), zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ticket)
}

// @Summary Move a ticket to the trash
// @Tags Tickets
// @Param id path string true "Ticket ID"
// @Param demo query bool false "Use the demo sandbox table"
// @Success 204
// @Security BearerAuth
// @Router /tickets/{id}/discard [post]
func (h *TicketHandler) Discard(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid ticket ID: must be a valid UUID")
		return
	}
	if err := h.ticketService.DiscardTicket(r.Context(), isDemoRequest(r), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// @Summary Restore a ticket from the trash
// @Tags Tickets
// @Param id path string true "Ticket ID"
// @Param demo query bool false "Use the demo sandbox table"
// @Success 204
// @Security BearerAuth
// @Router /tickets/{id}/restore [post]
func (h *TicketHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid ticket ID: must be a valid UUID")
		return
	}
	if err := h.ticketService.RestoreTicket(r.Context(), isDemoRequest(r), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// @Summary Permanently delete a ticket
// @Description Admin-only, irreversible. Deletes expense children first,
// @Description then the ticket row. Time entries are never touched.
// @Tags Tickets
// @Param id path string true "Ticket ID"
// @Param demo query bool false "Use the demo sandbox table"
// @Success 204
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /tickets/{id} [delete]
func (h *TicketHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid ticket ID: must be a valid UUID")
		return
	}
	if err := h.ticketService.DeletePermanently(r.Context(), isDemoRequest(r), id); err != nil {
		h.logger.Error("failed to delete ticket",
			zap.String("ticket_id", id.String()), zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
