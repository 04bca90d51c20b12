package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/atlasfield/fieldtrack-api/internal/auth"
	"github.com/atlasfield/fieldtrack-api/internal/domain"
	"github.com/atlasfield/fieldtrack-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TimeEntryHandler struct {
	entryService *service.TimeEntryService
	logger       *zap.Logger
}

func NewTimeEntryHandler(entryService *service.TimeEntryService, logger *zap.Logger) *TimeEntryHandler {
	return &TimeEntryHandler{
		entryService: entryService,
		logger:       logger,
	}
}

// @Summary List own time entries
// @Tags TimeEntries
// @Produce json
// @Param from query string false "Earliest entry date (YYYY-MM-DD)"
// @Param to query string false "Latest entry date (YYYY-MM-DD)"
// @Success 200 {array} domain.TimeEntryDTO
// @Security BearerAuth
// @Router /time-entries [get]
func (h *TimeEntryHandler) List(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var from, to *time.Time
	if f := r.URL.Query().Get("from"); f != "" {
		if t, err := time.Parse("2006-01-02", f); err == nil {
			from = &t
		}
	}
	if tq := r.URL.Query().Get("to"); tq != "" {
		if t, err := time.Parse("2006-01-02", tq); err == nil {
			to = &t
		}
	}

	entries, err := h.entryService.ListTimeEntries(r.Context(), userCtx.UserID, from, to)
	if err != nil {
		h.logger.Error("failed to list time entries", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// @Summary Create a time entry
// @Description Saves an entry for the authenticated user. A billable entry
// @Description with a project is consolidated into a service ticket.
// @Tags TimeEntries
// @Accept json
// @Produce json
// @Param request body domain.CreateTimeEntryRequest true "Entry data"
// @Param demo query bool false "Use the demo sandbox ticket table"
// @Success 201 {object} domain.TimeEntryDTO
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /time-entries [post]
func (h *TimeEntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req domain.CreateTimeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	entry, err := h.entryService.CreateTimeEntry(r.Context(), isDemoRequest(r), userCtx.UserID, req)
	if err != nil {
		h.logger.Error("failed to create time entry", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/time-entries/"+entry.ID.String())
	respondJSON(w, http.StatusCreated, entry)
}

// @Summary Get a time entry
// @Tags TimeEntries
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} domain.TimeEntryDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /time-entries/{id} [get]
func (h *TimeEntryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.loadOwnEntry(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// @Summary Update a time entry
// @Description Edits an entry and re-derives its ticket grouping; an entry
// @Description moved out of its old group tears down the old ticket when it
// @Description became empty.
// @Tags TimeEntries
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param request body domain.UpdateTimeEntryRequest true "Fields to change"
// @Param demo query bool false "Use the demo sandbox ticket table"
// @Success 200 {object} domain.TimeEntryDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /time-entries/{id} [put]
func (h *TimeEntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.loadOwnEntry(w, r)
	if !ok {
		return
	}

	var req domain.UpdateTimeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	updated, err := h.entryService.UpdateTimeEntry(r.Context(), isDemoRequest(r), entry.ID, req)
	if err != nil {
		h.logger.Error("failed to update time entry",
			zap.String("entry_id", entry.ID.String()), zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// @Summary Delete a time entry
// @Tags TimeEntries
// @Param id path string true "Entry ID"
// @Param demo query bool false "Use the demo sandbox ticket table"
// @Success 204
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /time-entries/{id} [delete]
func (h *TimeEntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.loadOwnEntry(w, r)
	if !ok {
		return
	}
	if err := h.entryService.DeleteTimeEntry(r.Context(), isDemoRequest(r), entry.ID); err != nil {
		h.logger.Error("failed to delete time entry",
			zap.String("entry_id", entry.ID.String()), zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// loadOwnEntry resolves the path id and enforces that non-approvers can only
// touch their own entries. Foreign entries read as not found rather than
// forbidden, to avoid confirming their existence.
func (h *TimeEntryHandler) loadOwnEntry(w http.ResponseWriter, r *http.Request) (*domain.TimeEntryDTO, bool) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Missing user context")
		return nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid entry ID: must be a valid UUID")
		return nil, false
	}

	entry, err := h.entryService.GetTimeEntry(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return nil, false
	}
	if entry.UserID != userCtx.UserID && !userCtx.IsApprover() {
		respondWithError(w, http.StatusNotFound, service.ErrTimeEntryNotFound.Error())
		return nil, false
	}
	return entry, true
}
