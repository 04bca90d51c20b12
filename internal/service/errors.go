package service

import "errors"

// Sentinel errors returned by the service layer. Handlers map these onto
// HTTP status codes; everything else surfaces as an internal error.
var (
	// ErrTicketNotFound is returned when a service ticket does not exist
	ErrTicketNotFound = errors.New("service ticket not found")

	// ErrExpenseNotFound is returned when a ticket expense does not exist
	ErrExpenseNotFound = errors.New("ticket expense not found")

	// ErrTimeEntryNotFound is returned when a time entry does not exist
	ErrTimeEntryNotFound = errors.New("time entry not found")

	// ErrExportNotFound is returned when an export file does not exist
	ErrExportNotFound = errors.New("export file not found")

	// ErrCustomerRequired is returned when a ticket operation is attempted
	// without a customer to group under
	ErrCustomerRequired = errors.New("customer is required for service tickets")

	// ErrInvalidStatus is returned when a workflow status value is not one
	// of the known statuses
	ErrInvalidStatus = errors.New("invalid workflow status")

	// ErrWorkflowBackward is returned when a status change would move a
	// ticket backward through the post-approval pipeline
	ErrWorkflowBackward = errors.New("workflow status cannot move backward")

	// ErrTicketFrozen is returned when a mutation targets a ticket that has
	// already been approved and numbered
	ErrTicketFrozen = errors.New("ticket is approved and can no longer be modified")

	// ErrTicketUpdateDenied is returned when an update matched no rows,
	// which in practice means a row-level permission rejected the write
	ErrTicketUpdateDenied = errors.New("ticket update affected no rows; check permissions")

	// ErrTicketNumberExhausted is returned when the allocator cannot find a
	// free ticket number within the configured number of attempts
	ErrTicketNumberExhausted = errors.New("no available ticket number found")

	// ErrTicketNotExportable is returned when an export is requested for a
	// ticket that has not been approved and numbered yet
	ErrTicketNotExportable = errors.New("ticket must be approved and numbered before export")

	// ErrInvalidTicketNumber is returned when a supplied ticket number does
	// not match the INITIALS_YYNNN format
	ErrInvalidTicketNumber = errors.New("ticket number must match the INITIALS_YYNNN format")
)
