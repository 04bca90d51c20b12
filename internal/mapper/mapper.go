package mapper

import (
	"time"

	"github.com/atlasfield/fieldtrack-api/internal/domain"
)

const entryDateLayout = "2006-01-02"

// ToServiceTicketDTO converts a ServiceTicket model to its DTO
func ToServiceTicketDTO(t *domain.ServiceTicket) domain.ServiceTicketDTO {
	dto := domain.ServiceTicketDTO{
		ID:                 t.ID,
		TicketNumber:       t.TicketNumber,
		EmployeeInitials:   t.EmployeeInitials,
		TicketYear:         t.TicketYear,
		SequenceNumber:     t.SequenceNumber,
		EntryDate:          t.EntryDate.Format(entryDateLayout),
		UserID:             t.UserID,
		CustomerID:         t.CustomerID,
		ProjectID:          t.ProjectID,
		Location:           t.Location,
		Header:             t.Header(),
		WorkflowStatus:     t.WorkflowStatus,
		TotalHours:         t.TotalHours,
		TotalAmount:        t.TotalAmount,
		EditedHours:        t.EditedHours.Data(),
		EditedDescriptions: t.EditedDescriptions.Data(),
		IsDiscarded:        t.IsDiscarded,
		RejectionNotes:     t.RejectionNotes,
		ApprovedByID:       t.ApprovedByID,
		CreatedAt:          t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          t.UpdatedAt.Format(time.RFC3339),
	}
	if t.RejectedAt != nil {
		rejected := t.RejectedAt.Format(time.RFC3339)
		dto.RejectedAt = &rejected
	}
	return dto
}

// ToServiceTicketDTOs converts a slice of ServiceTicket models to DTOs
func ToServiceTicketDTOs(tickets []domain.ServiceTicket) []domain.ServiceTicketDTO {
	dtos := make([]domain.ServiceTicketDTO, len(tickets))
	for i := range tickets {
		dtos[i] = ToServiceTicketDTO(&tickets[i])
	}
	return dtos
}

// ToExpenseDTO converts a ServiceTicketExpense model to its DTO
func ToExpenseDTO(e *domain.ServiceTicketExpense) domain.ServiceTicketExpenseDTO {
	return domain.ServiceTicketExpenseDTO{
		ID:          e.ID,
		TicketID:    e.TicketID,
		Category:    e.Category,
		Description: e.Description,
		Quantity:    e.Quantity,
		Rate:        e.Rate,
		Amount:      e.Amount,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   e.UpdatedAt.Format(time.RFC3339),
	}
}

// ToExpenseDTOs converts a slice of ServiceTicketExpense models to DTOs
func ToExpenseDTOs(expenses []domain.ServiceTicketExpense) []domain.ServiceTicketExpenseDTO {
	dtos := make([]domain.ServiceTicketExpenseDTO, len(expenses))
	for i := range expenses {
		dtos[i] = ToExpenseDTO(&expenses[i])
	}
	return dtos
}

// ToTimeEntryDTO converts a TimeEntry model to its DTO. Project name and
// customer id are filled when the entry was loaded with its project.
func ToTimeEntryDTO(e *domain.TimeEntry) domain.TimeEntryDTO {
	dto := domain.TimeEntryDTO{
		ID:          e.ID,
		UserID:      e.UserID,
		EntryDate:   e.EntryDate.Format(entryDateLayout),
		ProjectID:   e.ProjectID,
		Billable:    e.Billable,
		Hours:       e.Hours,
		Location:    e.Location,
		PoAfe:       e.PoAfe,
		Description: e.Description,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   e.UpdatedAt.Format(time.RFC3339),
	}
	if e.Project != nil {
		dto.ProjectName = e.Project.Name
		customerID := e.Project.CustomerID
		dto.CustomerID = &customerID
	}
	return dto
}

// ToTimeEntryDTOs converts a slice of TimeEntry models to DTOs
func ToTimeEntryDTOs(entries []domain.TimeEntry) []domain.TimeEntryDTO {
	dtos := make([]domain.TimeEntryDTO, len(entries))
	for i := range entries {
		dtos[i] = ToTimeEntryDTO(&entries[i])
	}
	return dtos
}

// ToExportFileDTO converts an ExportFile model to its DTO
func ToExportFileDTO(f *domain.ExportFile) domain.ExportFileDTO {
	return domain.ExportFileDTO{
		ID:          f.ID,
		TicketID:    f.TicketID,
		Filename:    f.Filename,
		ContentType: f.ContentType,
		Size:        f.Size,
		CreatedAt:   f.CreatedAt.Format(time.RFC3339),
	}
}
