package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/atlasfield/fieldtrack-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ExportHandler struct {
	exportService *service.ExportService
	maxUploadSize int64
	logger        *zap.Logger
}

func NewExportHandler(exportService *service.ExportService, maxUploadSizeMB int64, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		maxUploadSize: maxUploadSizeMB * 1024 * 1024,
		logger:        logger,
	}
}

// @Summary Upload an exported ticket document
// @Description Stores a rendered PDF for an approved, numbered ticket and
// @Description advances the ticket to pdf_exported.
// @Tags Exports
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Ticket ID"
// @Param file formData file true "Exported document"
// @Param demo query bool false "Use the demo sandbox table"
// @Success 201 {object} domain.ExportFileDTO
// @Failure 409 {object} domain.ErrorResponse "Ticket not exportable"
// @Security BearerAuth
// @Router /tickets/{id}/exports [post]
func (h *ExportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ticketID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid ticket ID: must be a valid UUID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form or file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Form field 'file' is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	dto, err := h.exportService.StoreExport(r.Context(), isDemoRequest(r), ticketID, header.Filename, contentType, file)
	if err != nil {
		h.logger.Error("failed to store export",
			zap.String("ticket_id", ticketID.String()), zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto)
}

// @Summary List a ticket's export documents
// @Tags Exports
// @Produce json
// @Param id path string true "Ticket ID"
// @Success 200 {array} domain.ExportFileDTO
// @Security BearerAuth
// @Router /tickets/{id}/exports [get]
func (h *ExportHandler) ListByTicket(w http.ResponseWriter, r *http.Request) {
	ticketID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid ticket ID: must be a valid UUID")
		return
	}
	files, err := h.exportService.ListExports(r.Context(), ticketID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, files)
}

// @Summary Download an export document
// @Tags Exports
// @Produce application/octet-stream
// @Param id path string true "Export file ID"
// @Success 200 {file} binary
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /exports/{id}/download [get]
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid export ID: must be a valid UUID")
		return
	}

	reader, dto, err := h.exportService.OpenExport(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", dto.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(dto.Size, 10))
	w.Header().Set("Content-Disposition", `attachment; filename="`+dto.Filename+`"`)
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("failed to stream export",
			zap.String("export_id", id.String()), zap.Error(err))
	}
}

// @Summary Delete an export document
// @Tags Exports
// @Param id path string true "Export file ID"
// @Success 204
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /exports/{id} [delete]
func (h *ExportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid export ID: must be a valid UUID")
		return
	}
	if err := h.exportService.DeleteExport(r.Context(), id); err != nil {
		h.logger.Error("failed to delete export",
			zap.String("export_id", id.String()), zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
