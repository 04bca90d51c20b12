package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atlasfield/fieldtrack-api/internal/config"
	"github.com/atlasfield/fieldtrack-api/internal/domain"
	"github.com/atlasfield/fieldtrack-api/internal/mapper"
	"github.com/atlasfield/fieldtrack-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TicketService orchestrates the service-ticket lifecycle: get-or-create from
// time entries, header synchronization, number assignment, workflow status
// transitions, duplicate cleanup and deletion. Tickets with an assigned
// number are frozen; no path here mutates them except the explicit
// number/status operations.
type TicketService struct {
	ticketRepo  *repository.TicketRepository
	expenseRepo *repository.TicketExpenseRepository
	entryRepo   *repository.TimeEntryRepository
	userRepo    *repository.UserRepository
	numbers     *TicketNumberService
	cfg         *config.TicketsConfig
	logger      *zap.Logger
}

// NewTicketService creates a new TicketService
func NewTicketService(
	ticketRepo *repository.TicketRepository,
	expenseRepo *repository.TicketExpenseRepository,
	entryRepo *repository.TimeEntryRepository,
	userRepo *repository.UserRepository,
	numbers *TicketNumberService,
	cfg *config.TicketsConfig,
	logger *zap.Logger,
) *TicketService {
	return &TicketService{
		ticketRepo:  ticketRepo,
		expenseRepo: expenseRepo,
		entryRepo:   entryRepo,
		userRepo:    userRepo,
		numbers:     numbers,
		cfg:         cfg,
		logger:      logger,
	}
}

// TicketParams carries the grouping identity and header fields a time entry
// resolves to. Approver/PoAfe/CC may be left empty and parsed from BillingKey
// instead when the caller only holds the encoded key.
type TicketParams struct {
	IsDemo     bool
	EntryDate  time.Time
	UserID     string
	CustomerID *uuid.UUID
	ProjectID  *uuid.UUID
	Location   string
	Approver   string
	PoAfe      string
	CC         string
	Other      string
	BillingKey string
}

func (p TicketParams) header() domain.TicketHeader {
	approver, poAfe, cc := p.Approver, p.PoAfe, p.CC
	if approver == "" && poAfe == "" && cc == "" && p.BillingKey != "" {
		approver, poAfe, cc = domain.ParseBillingKey(p.BillingKey)
	}
	return domain.TicketHeader{
		Approver:        approver,
		PoAfe:           poAfe,
		CC:              cc,
		Other:           p.Other,
		ServiceLocation: p.Location,
		GroupingKey:     domain.BuildGroupingKey(poAfe),
		BillingKey:      domain.BuildBillingKey(approver, poAfe, cc),
	}
}

// GetOrCreateTicket resolves the ticket a billable time entry belongs to,
// creating a draft when no tier of the matcher finds one. Calling it twice
// with identical parameters returns the same ticket id and creates exactly
// one row.
func (s *TicketService) GetOrCreateTicket(ctx context.Context, p TicketParams) (uuid.UUID, error) {
	if p.CustomerID == nil {
		return uuid.Nil, ErrCustomerRequired
	}

	header := p.header()
	found, tier, err := s.findTicketFor(ctx, p.IsDemo, ticketTarget{
		EntryDate:   p.EntryDate,
		UserID:      p.UserID,
		CustomerID:  *p.CustomerID,
		ProjectID:   p.ProjectID,
		Location:    p.Location,
		GroupingKey: header.GroupingKey,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("matching ticket: %w", err)
	}

	switch tier {
	case matchExact, matchLegacy:
		return found.ID, nil

	case matchRelaxed:
		// Legacy rows created before location became a filter field get
		// their location backfilled. Best effort: the match still stands.
		if found.Location == "" && p.Location != "" {
			if _, err := s.ticketRepo.UpdateFields(ctx, p.IsDemo, found.ID, map[string]interface{}{
				"location": p.Location,
			}); err != nil {
				s.logger.Warn("failed to backfill ticket location",
					zap.String("ticket_id", found.ID.String()), zap.Error(err))
			}
		}
		return found.ID, nil

	case matchReuse:
		// The user edited billing metadata before approval; repurpose the
		// existing draft instead of leaving a duplicate behind.
		merged := mergeHeaders(found.Header(), header)
		if _, err := s.ticketRepo.UpdateFields(ctx, p.IsDemo, found.ID, map[string]interface{}{
			"header_overrides": datatypes.NewJSONType(merged),
			"location":         p.Location,
		}); err != nil {
			return uuid.Nil, fmt.Errorf("reusing draft ticket %s: %w", found.ID, err)
		}
		return found.ID, nil
	}

	initials, err := s.lookupInitials(ctx, p.UserID)
	if err != nil {
		return uuid.Nil, err
	}

	ticket := &domain.ServiceTicket{
		EmployeeInitials: initials,
		EntryDate:        domain.DateOnly(p.EntryDate),
		UserID:           p.UserID,
		CustomerID:       *p.CustomerID,
		ProjectID:        p.ProjectID,
		Location:         p.Location,
		HeaderOverrides:  datatypes.NewJSONType(header),
		WorkflowStatus:   domain.WorkflowStatusDraft,
	}
	if err := s.ticketRepo.Create(ctx, p.IsDemo, ticket); err != nil {
		return uuid.Nil, fmt.Errorf("creating draft ticket: %w", err)
	}

	s.logger.Info("created draft ticket",
		zap.String("ticket_id", ticket.ID.String()),
		zap.String("user_id", p.UserID),
		zap.String("grouping_key", header.GroupingKey),
		zap.Bool("demo", p.IsDemo))
	return ticket.ID, nil
}

// SyncTicketHeaderFromTimeEntry re-derives the grouping key from a saved
// entry and merges its header fields into the matching ticket, when one
// exists and is still draft or rejected. Approved tickets are never touched.
func (s *TicketService) SyncTicketHeaderFromTimeEntry(ctx context.Context, p TicketParams) error {
	if p.CustomerID == nil {
		return nil
	}

	header := p.header()
	found, tier, err := s.findTicketFor(ctx, p.IsDemo, ticketTarget{
		EntryDate:   p.EntryDate,
		UserID:      p.UserID,
		CustomerID:  *p.CustomerID,
		ProjectID:   p.ProjectID,
		Location:    p.Location,
		GroupingKey: header.GroupingKey,
	})
	if err != nil {
		return fmt.Errorf("matching ticket for header sync: %w", err)
	}
	if tier == matchNone || found.IsFrozen() || !found.WorkflowStatus.IsEditable() {
		return nil
	}

	merged := mergeHeaders(found.Header(), header)
	fields := map[string]interface{}{
		"header_overrides": datatypes.NewJSONType(merged),
	}
	if p.Location != "" {
		fields["location"] = p.Location
	}
	if _, err := s.ticketRepo.UpdateFields(ctx, p.IsDemo, found.ID, fields); err != nil {
		return fmt.Errorf("syncing ticket header %s: %w", found.ID, err)
	}
	return nil
}

// DeleteParams identifies the ticket group a removed time entry belonged to
type DeleteParams struct {
	IsDemo    bool
	UserID    string
	EntryDate time.Time
	ProjectID *uuid.UUID
	PoAfe     string
}

// DeleteTicketIfNoTimeEntriesFor removes the draft tickets left behind when
// the last billable entry sharing their project and PO/AFE is deleted.
// Tickets that carry a number survive on their frozen snapshot. Entries
// without a project never produced a ticket through this path, so a nil
// project id is a no-op.
func (s *TicketService) DeleteTicketIfNoTimeEntriesFor(ctx context.Context, p DeleteParams) error {
	if p.ProjectID == nil {
		return nil
	}

	remaining, err := s.entryRepo.CountBillableForTicket(ctx, p.UserID, p.EntryDate, *p.ProjectID, p.PoAfe)
	if err != nil {
		return fmt.Errorf("counting remaining entries: %w", err)
	}
	if remaining > 0 {
		return nil
	}

	tickets, err := s.ticketRepo.ListForProjectDate(ctx, p.IsDemo, p.UserID, p.EntryDate, *p.ProjectID)
	if err != nil {
		return fmt.Errorf("listing tickets for cleanup: %w", err)
	}

	groupingKey := domain.BuildGroupingKey(p.PoAfe)
	for i := range tickets {
		ticket := &tickets[i]
		if ticket.IsFrozen() {
			continue
		}
		header := ticket.Header()
		// Legacy rows may predate persisted keys; fall back to the raw field
		if header.EffectiveGroupingKey() != groupingKey && !domain.SamePoAfe(header.PoAfe, p.PoAfe) {
			continue
		}
		if err := s.expenseRepo.DeleteByTicket(ctx, ticket.ID); err != nil {
			return fmt.Errorf("deleting expenses for empty draft %s: %w", ticket.ID, err)
		}
		if err := s.ticketRepo.Delete(ctx, p.IsDemo, ticket.ID); err != nil {
			return fmt.Errorf("deleting empty draft %s: %w", ticket.ID, err)
		}
		s.logger.Info("deleted empty draft ticket",
			zap.String("ticket_id", ticket.ID.String()),
			zap.String("grouping_key", groupingKey),
			zap.Bool("demo", p.IsDemo))
	}
	return nil
}

// UpdateTicketNumber is the approval/unassignment entry point. Assigning a
// number flips the ticket to approved, freezes the optional financial
// snapshot and cleans up duplicate drafts; a nil number clears the number
// fields but deliberately preserves workflow status and approver, leaving
// the ticket approved and pending a new number. Concurrent number claims are
// reconciled by retrying against the unique index, bounded by configuration.
func (s *TicketService) UpdateTicketNumber(ctx context.Context, isDemo bool, ticketID uuid.UUID, req domain.UpdateTicketNumberRequest, approvedByID string) (*domain.ServiceTicket, error) {
	if _, err := s.getTicket(ctx, isDemo, ticketID); err != nil {
		return nil, err
	}

	if req.TicketNumber == nil {
		rows, err := s.ticketRepo.UpdateFields(ctx, isDemo, ticketID, map[string]interface{}{
			"ticket_number":   nil,
			"sequence_number": nil,
			"ticket_year":     0,
		})
		if err != nil {
			return nil, fmt.Errorf("unassigning ticket number: %w", err)
		}
		if rows == 0 {
			return nil, ErrTicketUpdateDenied
		}
		s.logger.Info("unassigned ticket number", zap.String("ticket_id", ticketID.String()))
		return s.getTicket(ctx, isDemo, ticketID)
	}

	number := strings.TrimSpace(*req.TicketNumber)
	maxAttempts := s.cfg.MaxNumberAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		initials, year, seq, err := domain.ParseTicketNumber(number)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTicketNumber, number)
		}

		fields := map[string]interface{}{
			"ticket_number":     number,
			"employee_initials": initials,
			"ticket_year":       year,
			"sequence_number":   seq,
			"workflow_status":   domain.WorkflowStatusApproved,
			"rejected_at":       nil,
			"rejection_notes":   "",
		}
		if approvedByID != "" {
			fields["approved_by_id"] = approvedByID
		}
		if req.TotalHours != nil {
			fields["total_hours"] = *req.TotalHours
		}
		if req.TotalAmount != nil {
			fields["total_amount"] = *req.TotalAmount
		}
		// Fresh override maps replace the old ones; absent maps clear any
		// stale per-entry overrides from a previous approval.
		if req.EditedHours != nil {
			fields["edited_hours"] = datatypes.NewJSONType(req.EditedHours)
		} else {
			fields["edited_hours"] = nil
		}
		if req.EditedDescriptions != nil {
			fields["edited_descriptions"] = datatypes.NewJSONType(req.EditedDescriptions)
		} else {
			fields["edited_descriptions"] = nil
		}

		rows, err := s.ticketRepo.UpdateFields(ctx, isDemo, ticketID, fields)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.logger.Warn("ticket number already taken, recomputing",
				zap.String("ticket_id", ticketID.String()),
				zap.String("number", number),
				zap.Int("attempt", attempt))
			number, err = s.numbers.NextTicketNumber(ctx, isDemo, initials)
			if err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("assigning ticket number: %w", err)
		}
		if rows == 0 {
			return nil, ErrTicketUpdateDenied
		}

		s.logger.Info("assigned ticket number",
			zap.String("ticket_id", ticketID.String()),
			zap.String("number", number),
			zap.Int("attempt", attempt))

		// Best effort: a failed cleanup must not fail the approval
		results, err := s.DeleteOtherDraftRecordsForTicket(ctx, isDemo, ticketID)
		if err != nil {
			s.logger.Warn("duplicate draft cleanup failed",
				zap.String("ticket_id", ticketID.String()), zap.Error(err))
		}
		for _, res := range results {
			if res.Err != nil {
				s.logger.Warn("failed to delete duplicate draft",
					zap.String("ticket_id", res.TicketID.String()), zap.Error(res.Err))
			}
		}

		return s.getTicket(ctx, isDemo, ticketID)
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrTicketNumberExhausted, maxAttempts)
}

// DeletionResult reports the outcome for one ticket in a batch delete
type DeletionResult struct {
	TicketID uuid.UUID
	Err      error
}

// DeleteOtherDraftRecordsForTicket permanently removes the unnumbered,
// non-discarded rows sharing an approved ticket's date/user/customer/project/
// location and PO/AFE, including their expense children. Item failures are
// recorded and skipped; the batch never aborts.
func (s *TicketService) DeleteOtherDraftRecordsForTicket(ctx context.Context, isDemo bool, ticketID uuid.UUID) ([]DeletionResult, error) {
	ticket, err := s.getTicket(ctx, isDemo, ticketID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.ticketRepo.ListCandidates(ctx, isDemo, repository.CandidateFilter{
		EntryDate:  ticket.EntryDate,
		UserID:     ticket.UserID,
		CustomerID: ticket.CustomerID,
		ProjectID:  ticket.ProjectID,
		Location:   &ticket.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("listing duplicate candidates: %w", err)
	}

	poAfe := ticket.Header().PoAfe
	var intents []uuid.UUID
	for i := range candidates {
		cand := &candidates[i]
		if cand.ID == ticket.ID || cand.IsFrozen() {
			continue
		}
		if !domain.SamePoAfe(cand.Header().PoAfe, poAfe) {
			continue
		}
		intents = append(intents, cand.ID)
	}

	results := make([]DeletionResult, 0, len(intents))
	for _, id := range intents {
		err := s.deleteTicketWithExpenses(ctx, isDemo, id)
		results = append(results, DeletionResult{TicketID: id, Err: err})
	}
	return results, nil
}

// UpdateWorkflowStatus moves a ticket through the workflow. Setting rejected
// stamps a timestamp and stores the note; any other status clears both.
// Transitions past approved are monotonic. A zero-row update is surfaced as
// an error rather than silently ignored.
func (s *TicketService) UpdateWorkflowStatus(ctx context.Context, isDemo bool, ticketID uuid.UUID, status domain.WorkflowStatus, rejectionNotes string) (*domain.ServiceTicket, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	ticket, err := s.getTicket(ctx, isDemo, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.WorkflowStatus.Rank() > domain.WorkflowStatusApproved.Rank() && status.Rank() < ticket.WorkflowStatus.Rank() {
		return nil, fmt.Errorf("%w: %s -> %s", ErrWorkflowBackward, ticket.WorkflowStatus, status)
	}

	fields := map[string]interface{}{
		"workflow_status": status,
	}
	if status == domain.WorkflowStatusRejected {
		fields["rejected_at"] = time.Now().UTC()
		fields["rejection_notes"] = rejectionNotes
	} else {
		fields["rejected_at"] = nil
		fields["rejection_notes"] = ""
	}

	rows, err := s.ticketRepo.UpdateFields(ctx, isDemo, ticketID, fields)
	if err != nil {
		return nil, fmt.Errorf("updating workflow status: %w", err)
	}
	if rows == 0 {
		return nil, ErrTicketUpdateDenied
	}

	s.logger.Info("updated workflow status",
		zap.String("ticket_id", ticketID.String()),
		zap.String("status", string(status)),
		zap.Bool("demo", isDemo))
	return s.getTicket(ctx, isDemo, ticketID)
}

// CreateTicketRecord creates an approved, numbered ticket row directly,
// bypassing get-or-create. The insert is optimistic: a uniqueness violation
// on the number means another caller claimed it first, so the next free one
// is computed and the insert retried, bounded by configuration.
func (s *TicketService) CreateTicketRecord(ctx context.Context, isDemo bool, req domain.CreateTicketRecordRequest) (*domain.ServiceTicket, error) {
	entryDate, err := time.Parse("2006-01-02", req.EntryDate)
	if err != nil {
		return nil, fmt.Errorf("invalid entry date %q: %w", req.EntryDate, err)
	}

	initials, err := s.lookupInitials(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	header := req.Header
	if header.GroupingKey == "" {
		header.GroupingKey = domain.BuildGroupingKey(header.PoAfe)
	}
	if header.BillingKey == "" {
		header.BillingKey = domain.BuildBillingKey(header.Approver, header.PoAfe, header.CC)
	}

	maxAttempts := s.cfg.MaxNumberAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		number, err := s.numbers.NextTicketNumber(ctx, isDemo, initials)
		if err != nil {
			return nil, err
		}
		numberInitials, year, seq, err := domain.ParseTicketNumber(number)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTicketNumber, number)
		}

		ticket := &domain.ServiceTicket{
			TicketNumber:     &number,
			EmployeeInitials: numberInitials,
			TicketYear:       year,
			SequenceNumber:   &seq,
			EntryDate:        domain.DateOnly(entryDate),
			UserID:           req.UserID,
			CustomerID:       req.CustomerID,
			ProjectID:        req.ProjectID,
			Location:         req.Location,
			HeaderOverrides:  datatypes.NewJSONType(header),
			WorkflowStatus:   domain.WorkflowStatusApproved,
		}
		err = s.ticketRepo.Create(ctx, isDemo, ticket)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.logger.Warn("ticket number claimed concurrently, retrying",
				zap.String("number", number), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("creating ticket record: %w", err)
		}

		s.logger.Info("created ticket record",
			zap.String("ticket_id", ticket.ID.String()),
			zap.String("number", number),
			zap.Bool("demo", isDemo))
		return ticket, nil
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrTicketNumberExhausted, maxAttempts)
}

// GetNextTicketNumber returns the next assignable number for an employee
func (s *TicketService) GetNextTicketNumber(ctx context.Context, isDemo bool, initials string) (string, error) {
	return s.numbers.NextTicketNumber(ctx, isDemo, initials)
}

// GetTicket returns one ticket as a DTO
func (s *TicketService) GetTicket(ctx context.Context, isDemo bool, ticketID uuid.UUID) (*domain.ServiceTicketDTO, error) {
	ticket, err := s.getTicket(ctx, isDemo, ticketID)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToServiceTicketDTO(ticket)
	return &dto, nil
}

// GetAllTickets returns a filtered, paginated ticket listing
func (s *TicketService) GetAllTickets(ctx context.Context, isDemo bool, f repository.ListFilter) (*domain.PagedTicketsResponse, error) {
	tickets, total, err := s.ticketRepo.List(ctx, isDemo, f)
	if err != nil {
		return nil, fmt.Errorf("listing tickets: %w", err)
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	pageSize := f.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	return &domain.PagedTicketsResponse{
		Tickets:  mapper.ToServiceTicketDTOs(tickets),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// GetTicketsReadyForExport returns approved, numbered, non-discarded tickets
func (s *TicketService) GetTicketsReadyForExport(ctx context.Context, isDemo bool) ([]domain.ServiceTicketDTO, error) {
	tickets, err := s.ticketRepo.ListReadyForExport(ctx, isDemo)
	if err != nil {
		return nil, fmt.Errorf("listing exportable tickets: %w", err)
	}
	return mapper.ToServiceTicketDTOs(tickets), nil
}

// DiscardTicket soft-deletes a ticket into the trash. Its number stays
// occupied: numbers are never recycled from a discarded ticket.
func (s *TicketService) DiscardTicket(ctx context.Context, isDemo bool, ticketID uuid.UUID) error {
	return s.setDiscarded(ctx, isDemo, ticketID, true)
}

// RestoreTicket returns a discarded ticket from the trash
func (s *TicketService) RestoreTicket(ctx context.Context, isDemo bool, ticketID uuid.UUID) error {
	return s.setDiscarded(ctx, isDemo, ticketID, false)
}

func (s *TicketService) setDiscarded(ctx context.Context, isDemo bool, ticketID uuid.UUID, discarded bool) error {
	if _, err := s.getTicket(ctx, isDemo, ticketID); err != nil {
		return err
	}
	rows, err := s.ticketRepo.UpdateFields(ctx, isDemo, ticketID, map[string]interface{}{
		"is_discarded": discarded,
	})
	if err != nil {
		return fmt.Errorf("updating discard flag: %w", err)
	}
	if rows == 0 {
		return ErrTicketUpdateDenied
	}
	return nil
}

// DeletePermanently hard-deletes a ticket and its expense children. Time
// entries are never touched: historical time survives its ticket. The
// expense cascade is best effort so an expense failure cannot strand the
// primary delete.
func (s *TicketService) DeletePermanently(ctx context.Context, isDemo bool, ticketID uuid.UUID) error {
	if _, err := s.getTicket(ctx, isDemo, ticketID); err != nil {
		return err
	}
	if err := s.expenseRepo.DeleteByTicket(ctx, ticketID); err != nil {
		s.logger.Warn("failed to cascade expense deletion",
			zap.String("ticket_id", ticketID.String()), zap.Error(err))
	}
	if err := s.ticketRepo.Delete(ctx, isDemo, ticketID); err != nil {
		return fmt.Errorf("deleting ticket %s: %w", ticketID, err)
	}
	s.logger.Info("permanently deleted ticket",
		zap.String("ticket_id", ticketID.String()), zap.Bool("demo", isDemo))
	return nil
}

// CleanupEmptyDrafts sweeps unnumbered draft/rejected tickets whose last
// billable entry has disappeared, deleting them with their expenses. Run by
// the scheduled job; item failures are logged and skipped.
func (s *TicketService) CleanupEmptyDrafts(ctx context.Context, isDemo bool) (int, error) {
	drafts, err := s.ticketRepo.ListDrafts(ctx, isDemo)
	if err != nil {
		return 0, fmt.Errorf("listing drafts: %w", err)
	}

	deleted := 0
	for i := range drafts {
		draft := &drafts[i]
		if draft.ProjectID == nil {
			continue
		}
		remaining, err := s.entryRepo.CountBillableForTicket(ctx, draft.UserID, draft.EntryDate, *draft.ProjectID, draft.Header().PoAfe)
		if err != nil {
			s.logger.Warn("failed to count entries for draft",
				zap.String("ticket_id", draft.ID.String()), zap.Error(err))
			continue
		}
		if remaining > 0 {
			continue
		}
		if err := s.deleteTicketWithExpenses(ctx, isDemo, draft.ID); err != nil {
			s.logger.Warn("failed to delete empty draft",
				zap.String("ticket_id", draft.ID.String()), zap.Error(err))
			continue
		}
		deleted++
	}
	return deleted, nil
}

func (s *TicketService) deleteTicketWithExpenses(ctx context.Context, isDemo bool, ticketID uuid.UUID) error {
	if err := s.expenseRepo.DeleteByTicket(ctx, ticketID); err != nil {
		return fmt.Errorf("deleting expenses: %w", err)
	}
	if err := s.ticketRepo.Delete(ctx, isDemo, ticketID); err != nil {
		return fmt.Errorf("deleting ticket: %w", err)
	}
	return nil
}

func (s *TicketService) getTicket(ctx context.Context, isDemo bool, ticketID uuid.UUID) (*domain.ServiceTicket, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, isDemo, ticketID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading ticket %s: %w", ticketID, err)
	}
	return ticket, nil
}

func (s *TicketService) lookupInitials(ctx context.Context, userID string) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.PlaceholderInitials, nil
	}
	if err != nil {
		return "", fmt.Errorf("loading user %s: %w", userID, err)
	}
	return user.Initials(), nil
}

// mergeHeaders overlays incoming header fields onto an existing block, then
// recomputes both keys from the merged PO/AFE. Empty incoming fields leave
// the existing value in place.
func mergeHeaders(existing, incoming domain.TicketHeader) domain.TicketHeader {
	merged := existing
	if incoming.Approver != "" {
		merged.Approver = incoming.Approver
	}
	if incoming.PoAfe != "" {
		merged.PoAfe = incoming.PoAfe
	}
	if incoming.CC != "" {
		merged.CC = incoming.CC
	}
	if incoming.Other != "" {
		merged.Other = incoming.Other
	}
	if incoming.ServiceLocation != "" {
		merged.ServiceLocation = incoming.ServiceLocation
	}
	merged.GroupingKey = domain.BuildGroupingKey(merged.PoAfe)
	merged.BillingKey = domain.BuildBillingKey(merged.Approver, merged.PoAfe, merged.CC)
	return merged
}
