package domain

import (
	"github.com/google/uuid"
)

// DTOs for API responses. Dates are ISO 8601 strings; entry dates are
// calendar dates (YYYY-MM-DD).

type ServiceTicketDTO struct {
	ID                 uuid.UUID          `json:"id"`
	TicketNumber       *string            `json:"ticketNumber,omitempty"`
	EmployeeInitials   string             `json:"employeeInitials"`
	TicketYear         int                `json:"ticketYear,omitempty"`
	SequenceNumber     *int               `json:"sequenceNumber,omitempty"`
	EntryDate          string             `json:"entryDate"`
	UserID             string             `json:"userId"`
	CustomerID         uuid.UUID          `json:"customerId"`
	ProjectID          *uuid.UUID         `json:"projectId,omitempty"`
	Location           string             `json:"location,omitempty"`
	Header             TicketHeader       `json:"headerOverrides"`
	WorkflowStatus     WorkflowStatus     `json:"workflowStatus"`
	TotalHours         float64            `json:"totalHours"`
	TotalAmount        float64            `json:"totalAmount"`
	EditedHours        map[string]float64 `json:"editedHours,omitempty"`
	EditedDescriptions map[string]string  `json:"editedDescriptions,omitempty"`
	IsDiscarded        bool               `json:"isDiscarded"`
	RejectedAt         *string            `json:"rejectedAt,omitempty"`
	RejectionNotes     string             `json:"rejectionNotes,omitempty"`
	ApprovedByID       string             `json:"approvedById,omitempty"`
	CreatedAt          string             `json:"createdAt"`
	UpdatedAt          string             `json:"updatedAt"`
}

type ServiceTicketExpenseDTO struct {
	ID          uuid.UUID       `json:"id"`
	TicketID    uuid.UUID       `json:"ticketId"`
	Category    ExpenseCategory `json:"category"`
	Description string          `json:"description,omitempty"`
	Quantity    float64         `json:"quantity"`
	Rate        float64         `json:"rate"`
	Amount      float64         `json:"amount"`
	CreatedAt   string          `json:"createdAt"`
	UpdatedAt   string          `json:"updatedAt"`
}

type TimeEntryDTO struct {
	ID          uuid.UUID  `json:"id"`
	UserID      string     `json:"userId"`
	EntryDate   string     `json:"entryDate"`
	ProjectID   *uuid.UUID `json:"projectId,omitempty"`
	ProjectName string     `json:"projectName,omitempty"`
	CustomerID  *uuid.UUID `json:"customerId,omitempty"`
	Billable    bool       `json:"billable"`
	Hours       float64    `json:"hours"`
	Location    string     `json:"location,omitempty"`
	PoAfe       string     `json:"poAfe,omitempty"`
	Description string     `json:"description,omitempty"`
	CreatedAt   string     `json:"createdAt"`
	UpdatedAt   string     `json:"updatedAt"`
}

type ExportFileDTO struct {
	ID          uuid.UUID `json:"id"`
	TicketID    uuid.UUID `json:"ticketId"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   string    `json:"createdAt"`
}

// PagedTicketsResponse wraps a ticket listing with pagination metadata
type PagedTicketsResponse struct {
	Tickets  []ServiceTicketDTO `json:"tickets"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// ---------------------------------------------------------------------------
// Requests
// ---------------------------------------------------------------------------

// CreateTimeEntryRequest creates a time entry; a billable entry with a
// project triggers ticket derivation.
type CreateTimeEntryRequest struct {
	EntryDate   string     `json:"entryDate" validate:"required,datetime=2006-01-02"`
	ProjectID   *uuid.UUID `json:"projectId,omitempty"`
	Billable    bool       `json:"billable"`
	Hours       float64    `json:"hours" validate:"gte=0,lte=24"`
	Location    string     `json:"location,omitempty" validate:"max=200"`
	PoAfe       string     `json:"poAfe,omitempty" validate:"max=500"`
	Description string     `json:"description,omitempty" validate:"max=2000"`
}

// UpdateTimeEntryRequest mirrors the create request; nil fields are untouched
type UpdateTimeEntryRequest struct {
	EntryDate   *string    `json:"entryDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ProjectID   *uuid.UUID `json:"projectId,omitempty"`
	Billable    *bool      `json:"billable,omitempty"`
	Hours       *float64   `json:"hours,omitempty" validate:"omitempty,gte=0,lte=24"`
	Location    *string    `json:"location,omitempty" validate:"omitempty,max=200"`
	PoAfe       *string    `json:"poAfe,omitempty" validate:"omitempty,max=500"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// UpdateTicketNumberRequest assigns (or, with a null number, unassigns) a
// ticket number. Assignment freezes the optional financial snapshot.
type UpdateTicketNumberRequest struct {
	TicketNumber       *string            `json:"ticketNumber"`
	TotalHours         *float64           `json:"totalHours,omitempty" validate:"omitempty,gte=0"`
	TotalAmount        *float64           `json:"totalAmount,omitempty" validate:"omitempty,gte=0"`
	EditedHours        map[string]float64 `json:"editedHours,omitempty"`
	EditedDescriptions map[string]string  `json:"editedDescriptions,omitempty"`
}

// UpdateWorkflowStatusRequest moves a ticket through the workflow
type UpdateWorkflowStatusRequest struct {
	Status         WorkflowStatus `json:"status" validate:"required"`
	RejectionNotes string         `json:"rejectionNotes,omitempty" validate:"max=2000"`
}

// CreateTicketRecordRequest creates a ticket row directly, with an assigned
// number, bypassing get-or-create. Used for manually entered tickets.
type CreateTicketRecordRequest struct {
	EntryDate  string       `json:"entryDate" validate:"required,datetime=2006-01-02"`
	UserID     string       `json:"userId" validate:"required"`
	CustomerID uuid.UUID    `json:"customerId" validate:"required"`
	ProjectID  *uuid.UUID   `json:"projectId,omitempty"`
	Location   string       `json:"location,omitempty" validate:"max=200"`
	Header     TicketHeader `json:"headerOverrides"`
}

// CreateExpenseRequest adds a line item to a ticket
type CreateExpenseRequest struct {
	Category    ExpenseCategory `json:"category" validate:"required"`
	Description string          `json:"description,omitempty" validate:"max=500"`
	Quantity    float64         `json:"quantity" validate:"gte=0"`
	Rate        float64         `json:"rate" validate:"gte=0"`
}

// UpdateExpenseRequest edits a line item; nil fields are untouched
type UpdateExpenseRequest struct {
	Category    *ExpenseCategory `json:"category,omitempty"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=500"`
	Quantity    *float64         `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Rate        *float64         `json:"rate,omitempty" validate:"omitempty,gte=0"`
}
