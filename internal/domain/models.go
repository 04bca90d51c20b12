package domain

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when the caller didn't provide one
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// WorkflowStatus represents where a service ticket sits in the billing workflow
type WorkflowStatus string

const (
	WorkflowStatusDraft           WorkflowStatus = "draft"
	WorkflowStatusRejected        WorkflowStatus = "rejected"
	WorkflowStatusApproved        WorkflowStatus = "approved"
	WorkflowStatusPDFExported     WorkflowStatus = "pdf_exported"
	WorkflowStatusSentToCNRL      WorkflowStatus = "sent_to_cnrl"
	WorkflowStatusCNRLApproved    WorkflowStatus = "cnrl_approved"
	WorkflowStatusSubmittedToCNRL WorkflowStatus = "submitted_to_cnrl"
)

// IsValid checks if the WorkflowStatus is a valid enum value
func (ws WorkflowStatus) IsValid() bool {
	switch ws {
	case WorkflowStatusDraft, WorkflowStatusRejected, WorkflowStatusApproved,
		WorkflowStatusPDFExported, WorkflowStatusSentToCNRL,
		WorkflowStatusCNRLApproved, WorkflowStatusSubmittedToCNRL:
		return true
	}
	return false
}

// workflowRank orders the post-approval pipeline. Draft and rejected sit
// below approved; everything past approved only ever moves forward.
var workflowRank = map[WorkflowStatus]int{
	WorkflowStatusDraft:           0,
	WorkflowStatusRejected:        0,
	WorkflowStatusApproved:        1,
	WorkflowStatusPDFExported:     2,
	WorkflowStatusSentToCNRL:      3,
	WorkflowStatusCNRLApproved:    4,
	WorkflowStatusSubmittedToCNRL: 5,
}

// Rank returns the pipeline position of a status
func (ws WorkflowStatus) Rank() int {
	return workflowRank[ws]
}

// IsEditable reports whether a ticket in this status may still be mutated
// by time-entry edits. Approved and later tickets are frozen.
func (ws WorkflowStatus) IsEditable() bool {
	return ws == WorkflowStatusDraft || ws == WorkflowStatusRejected
}

// TicketHeader is the typed header-override block stored on every service
// ticket. It is the source of truth for the billing key once a ticket exists:
// edits to approver/CC after ticket creation must not silently orphan the
// ticket, so the keys derived at write time are persisted here.
type TicketHeader struct {
	Approver        string `json:"approver,omitempty"`
	PoAfe           string `json:"poAfe,omitempty"`
	CC              string `json:"cc,omitempty"`
	Other           string `json:"other,omitempty"`
	ServiceLocation string `json:"serviceLocation,omitempty"`
	GroupingKey     string `json:"groupingKey,omitempty"`
	BillingKey      string `json:"billingKey,omitempty"`
}

// EffectiveGroupingKey returns the stored grouping key, deriving it from the
// raw PO/AFE field for legacy rows written before keys were persisted.
func (h TicketHeader) EffectiveGroupingKey() string {
	if h.GroupingKey != "" {
		return h.GroupingKey
	}
	return BuildGroupingKey(h.PoAfe)
}

// ServiceTicket is the billing-ready consolidation of the time entries
// sharing one date/user/customer/project/location/billing-key group.
//
// A ticket with a non-nil TicketNumber is approved and frozen: its grouping
// attributes and financial snapshot survive later edits or deletions of the
// underlying time entries.
//
// Indexes, including the unique (employee_initials, ticket_year,
// sequence_number) backstop, are created per table by the migrations and by
// testutil, because the demo sandbox table shares this struct and index
// names are database-global.
type ServiceTicket struct {
	BaseModel
	TicketNumber       *string                                `gorm:"type:varchar(20);column:ticket_number"`
	EmployeeInitials   string                                 `gorm:"type:varchar(4);not null;column:employee_initials"`
	TicketYear         int                                    `gorm:"not null;default:0;column:ticket_year"`
	SequenceNumber     *int                                   `gorm:"column:sequence_number"`
	EntryDate          time.Time                              `gorm:"type:date;not null;column:entry_date"`
	UserID             string                                 `gorm:"type:varchar(100);not null;column:user_id"`
	CustomerID         uuid.UUID                              `gorm:"type:uuid;not null;column:customer_id"`
	ProjectID          *uuid.UUID                             `gorm:"type:uuid;column:project_id"`
	Location           string                                 `gorm:"type:varchar(200)"`
	HeaderOverrides    datatypes.JSONType[TicketHeader]       `gorm:"column:header_overrides"`
	WorkflowStatus     WorkflowStatus                         `gorm:"type:varchar(50);not null;default:'draft';column:workflow_status"`
	TotalHours         float64                                `gorm:"type:decimal(10,2);not null;default:0;column:total_hours"`
	TotalAmount        float64                                `gorm:"type:decimal(15,2);not null;default:0;column:total_amount"`
	EditedHours        datatypes.JSONType[map[string]float64] `gorm:"column:edited_hours"`
	EditedDescriptions datatypes.JSONType[map[string]string]  `gorm:"column:edited_descriptions"`
	IsDiscarded        bool                                   `gorm:"not null;default:false;column:is_discarded"`
	RejectedAt         *time.Time                             `gorm:"column:rejected_at"`
	RejectionNotes     string                                 `gorm:"type:text;column:rejection_notes"`
	ApprovedByID       string                                 `gorm:"type:varchar(100);column:approved_by_id"`
}

// TableName returns the production table; the demo sandbox table is selected
// at the repository level via Table scoping.
func (ServiceTicket) TableName() string {
	return "service_tickets"
}

// Header returns the typed header-override block
func (t *ServiceTicket) Header() TicketHeader {
	return t.HeaderOverrides.Data()
}

// IsFrozen reports whether the ticket carries an assigned ticket number.
// Frozen tickets are never candidates for header sync or empty-draft cleanup.
func (t *ServiceTicket) IsFrozen() bool {
	return t.TicketNumber != nil && *t.TicketNumber != ""
}

// ExpenseCategory classifies a service-ticket expense line item
type ExpenseCategory string

const (
	ExpenseCategoryTravel      ExpenseCategory = "travel"
	ExpenseCategorySubsistence ExpenseCategory = "subsistence"
	ExpenseCategoryExpense     ExpenseCategory = "expense"
	ExpenseCategoryEquipment   ExpenseCategory = "equipment"
)

// IsValid checks if the ExpenseCategory is a valid enum value
func (ec ExpenseCategory) IsValid() bool {
	switch ec {
	case ExpenseCategoryTravel, ExpenseCategorySubsistence, ExpenseCategoryExpense, ExpenseCategoryEquipment:
		return true
	}
	return false
}

// ServiceTicketExpense is a travel/subsistence/expense/equipment line item
// owned by exactly one ticket. Expense rows are deleted in cascade whenever
// the parent ticket is permanently deleted.
type ServiceTicketExpense struct {
	BaseModel
	TicketID    uuid.UUID       `gorm:"type:uuid;not null;index;column:ticket_id"`
	Category    ExpenseCategory `gorm:"type:varchar(50);not null;default:'expense'"`
	Description string          `gorm:"type:varchar(500)"`
	Quantity    float64         `gorm:"type:decimal(10,2);not null;default:0"`
	Rate        float64         `gorm:"type:decimal(15,2);not null;default:0"`
	Amount      float64         `gorm:"type:decimal(15,2);not null;default:0"`
}

// TimeEntry is the source signal tickets are derived from. The ticket core
// consumes entries read-only; only the time-entry service itself writes them.
type TimeEntry struct {
	BaseModel
	UserID      string     `gorm:"type:varchar(100);not null;index;column:user_id"`
	EntryDate   time.Time  `gorm:"type:date;not null;index;column:entry_date"`
	ProjectID   *uuid.UUID `gorm:"type:uuid;index;column:project_id"`
	Project     *Project   `gorm:"foreignKey:ProjectID"`
	Billable    bool       `gorm:"not null;default:true"`
	Hours       float64    `gorm:"type:decimal(10,2);not null;default:0"`
	Location    string     `gorm:"type:varchar(200)"`
	PoAfe       string     `gorm:"type:varchar(500);column:po_afe"` // bundled approver / PO-AFE / CC free text
	Description string     `gorm:"type:text"`
}

// Customer represents an organization billed through service tickets
type Customer struct {
	BaseModel
	Name           string `gorm:"type:varchar(200);not null;index"`
	Email          string `gorm:"type:varchar(255)"`
	Phone          string `gorm:"type:varchar(50)"`
	Address        string `gorm:"type:varchar(500)"`
	City           string `gorm:"type:varchar(100)"`
	Province       string `gorm:"type:varchar(100)"`
	PostalCode     string `gorm:"type:varchar(20)"`
	BillingContact string `gorm:"type:varchar(200);column:billing_contact"`
	BillingEmail   string `gorm:"type:varchar(255);column:billing_email"`
	IsActive       bool   `gorm:"not null;default:true;column:is_active"`
}

// Project represents work performed for a customer in the field
type Project struct {
	BaseModel
	Name            string    `gorm:"type:varchar(200);not null;index"`
	CustomerID      uuid.UUID `gorm:"type:uuid;not null;index;column:customer_id"`
	Customer        *Customer `gorm:"foreignKey:CustomerID"`
	DefaultLocation string    `gorm:"type:varchar(200);column:default_location"`
	IsActive        bool      `gorm:"not null;default:true;column:is_active"`
}

// UserRoleType represents a role a user can have
type UserRoleType string

const (
	RoleAdmin    UserRoleType = "admin"
	RoleApprover UserRoleType = "approver"
	RoleEmployee UserRoleType = "employee"
)

// User represents an employee logging time
type User struct {
	ID          string                      `gorm:"type:varchar(100);primaryKey" json:"id"`
	Email       string                      `gorm:"type:varchar(255);not null;unique" json:"email"`
	FirstName   string                      `gorm:"type:varchar(100);column:first_name" json:"firstName,omitempty"`
	LastName    string                      `gorm:"type:varchar(100);column:last_name" json:"lastName,omitempty"`
	DisplayName string                      `gorm:"type:varchar(200);not null;column:name" json:"displayName"`
	Roles       datatypes.JSONSlice[string] `gorm:"not null" json:"roles"`
	IsActive    bool                        `gorm:"not null;default:true;column:is_active" json:"isActive"`
	CreatedAt   time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// PlaceholderInitials is used when a user has no name on file; the
// employee_initials column is required, so it is never left empty.
const PlaceholderInitials = "XX"

// initialFold maps accented and Nordic first letters onto the A-Z alphabet
// ticket numbers are built from.
var initialFold = map[rune]rune{
	'Æ': 'A', 'Ø': 'O', 'Å': 'A',
	'Ä': 'A', 'Ö': 'O', 'Ü': 'U',
	'É': 'E', 'È': 'E', 'Ê': 'E',
	'Á': 'A', 'À': 'A', 'Í': 'I', 'Ó': 'O', 'Ú': 'U', 'Ñ': 'N',
}

// initialLetter returns the uppercased first letter of a name, folded onto
// A-Z. Names starting outside that range report false.
func initialLetter(name string) (rune, bool) {
	r, _ := utf8.DecodeRuneInString(name)
	r = unicode.ToUpper(r)
	if folded, ok := initialFold[r]; ok {
		r = folded
	}
	if r < 'A' || r > 'Z' {
		return 0, false
	}
	return r, true
}

// Initials derives the two-letter employee initials used in ticket numbers.
// Both letters must land in A-Z for the number to parse back, so anything
// that cannot be folded falls back to the placeholder.
func (u *User) Initials() string {
	first := strings.TrimSpace(u.FirstName)
	last := strings.TrimSpace(u.LastName)
	if first == "" || last == "" {
		parts := strings.Fields(strings.TrimSpace(u.DisplayName))
		if len(parts) >= 2 {
			first, last = parts[0], parts[len(parts)-1]
		}
	}
	if first == "" || last == "" {
		return PlaceholderInitials
	}
	f, okFirst := initialLetter(first)
	l, okLast := initialLetter(last)
	if !okFirst || !okLast {
		return PlaceholderInitials
	}
	return string([]rune{f, l})
}

// FullName returns the user's full name, or display name if first/last not set
func (u *User) FullName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.DisplayName
}

// ExportFile represents a stored PDF artifact for an exported ticket
type ExportFile struct {
	BaseModel
	TicketID    uuid.UUID `gorm:"type:uuid;not null;index;column:ticket_id"`
	Filename    string    `gorm:"type:varchar(255);not null"`
	ContentType string    `gorm:"type:varchar(100);not null"`
	Size        int64     `gorm:"not null"`
	StoragePath string    `gorm:"type:varchar(500);not null;unique"`
}

// DateOnly truncates a timestamp to its calendar date in UTC. Ticket grouping
// compares dates, never times, so every entry_date is normalized on write.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
