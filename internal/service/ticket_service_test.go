package service

import (
	"context"
	"testing"
	"time"

	"github.com/atlasfield/fieldtrack-api/internal/config"
	"github.com/atlasfield/fieldtrack-api/internal/domain"
	"github.com/atlasfield/fieldtrack-api/internal/repository"
	"github.com/atlasfield/fieldtrack-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func datatypesHeader(h domain.TicketHeader) datatypes.JSONType[domain.TicketHeader] {
	return datatypes.NewJSONType(h)
}

type ticketServiceFixture struct {
	db      *gorm.DB
	svc     *TicketService
	tickets *repository.TicketRepository
	entries *repository.TimeEntryRepository
}

func newTicketServiceFixture(t *testing.T) *ticketServiceFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)

	cfg := &config.TicketsConfig{MaxNumberAttempts: 100}
	ticketRepo := repository.NewTicketRepository(db)
	numbers := NewTicketNumberService(ticketRepo, cfg, zap.NewNop())
	numbers.now = func() time.Time {
		return time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	}

	svc := NewTicketService(
		ticketRepo,
		repository.NewTicketExpenseRepository(db),
		repository.NewTimeEntryRepository(db),
		repository.NewUserRepository(db),
		numbers,
		cfg,
		zap.NewNop(),
	)

	return &ticketServiceFixture{
		db:      db,
		svc:     svc,
		tickets: ticketRepo,
		entries: repository.NewTimeEntryRepository(db),
	}
}

func (f *ticketServiceFixture) params(customerID, projectID uuid.UUID) TicketParams {
	return TicketParams{
		EntryDate:  testutil.Date(2026, time.March, 10),
		UserID:     "user-1",
		CustomerID: &customerID,
		ProjectID:  &projectID,
		Location:   "North Pad 7",
		Approver:   "J. Reimer",
		PoAfe:      "PO-4521",
		CC:         "CC-09",
	}
}

func (f *ticketServiceFixture) seedEntry(t *testing.T, projectID uuid.UUID, poAfe string) *domain.TimeEntry {
	t.Helper()
	entry := &domain.TimeEntry{
		UserID:    "user-1",
		EntryDate: testutil.Date(2026, time.March, 10),
		ProjectID: &projectID,
		Billable:  true,
		Hours:     8,
		PoAfe:     poAfe,
	}
	require.NoError(t, f.entries.Create(context.Background(), entry))
	return entry
}

func (f *ticketServiceFixture) countTickets(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Table("service_tickets").Count(&count).Error)
	return count
}

func TestGetOrCreateTicketRequiresCustomer(t *testing.T) {
	f := newTicketServiceFixture(t)

	_, err := f.svc.GetOrCreateTicket(context.Background(), TicketParams{
		EntryDate: testutil.Date(2026, time.March, 10),
		UserID:    "user-1",
	})
	require.ErrorIs(t, err, ErrCustomerRequired)
	require.Zero(t, f.countTickets(t))
}

func TestGetOrCreateTicketIsIdempotent(t *testing.T) {
	f := newTicketServiceFixture(t)
	p := f.params(uuid.New(), uuid.New())

	first, err := f.svc.GetOrCreateTicket(context.Background(), p)
	require.NoError(t, err)

	second, err := f.svc.GetOrCreateTicket(context.Background(), p)
	require.NoError(t, err)

	require.Equal(t, first, second, "same parameters resolve to the same ticket")
	require.EqualValues(t, 1, f.countTickets(t))

	ticket, err := f.tickets.GetByID(context.Background(), false, first)
	require.NoError(t, err)
	require.Equal(t, domain.WorkflowStatusDraft, ticket.WorkflowStatus)
	require.Equal(t, "PO-4521", ticket.Header().GroupingKey)
	require.Equal(t, "J. Reimer::PO-4521::CC-09", ticket.Header().BillingKey)
	require.Equal(t, domain.PlaceholderInitials, ticket.EmployeeInitials, "unknown user falls back to placeholder initials")
}

func TestGetOrCreateTicketUsesEmployeeInitials(t *testing.T) {
	f := newTicketServiceFixture(t)
	testutil.CreateTestUser(t, f.db, "user-1", "Dana", "Bergstrom")
	p := f.params(uuid.New(), uuid.New())

	id, err := f.svc.GetOrCreateTicket(context.Background(), p)
	require.NoError(t, err)

	ticket, err := f.tickets.GetByID(context.Background(), false, id)
	require.NoError(t, err)
	require.Equal(t, "DB", ticket.EmployeeInitials)
}

func TestGetOrCreateTicketSplitsByProject(t *testing.T) {
	f := newTicketServiceFixture(t)
	customerID := uuid.New()
	p := f.params(customerID, uuid.New())

	first, err := f.svc.GetOrCreateTicket(context.Background(), p)
	require.NoError(t, err)

	p2 := p
	otherProject := uuid.New()
	p2.ProjectID = &otherProject
	second, err := f.svc.GetOrCreateTicket(context.Background(), p2)
	require.NoError(t, err)

	require.NotEqual(t, first, second, "a different project starts a new ticket")
	require.EqualValues(t, 2, f.countTickets(t))
}

func TestGetOrCreateTicketSingleCandidateLeniency(t *testing.T) {
	f := newTicketServiceFixture(t)
	p := f.params(uuid.New(), uuid.New())

	first, err := f.svc.GetOrCreateTicket(context.Background(), p)
	require.NoError(t, err)

	// Same group, same location, corrected PO/AFE: the lone existing row is
	// treated as the same logical ticket rather than duplicated.
	p2 := p
	p2.PoAfe = "PO-4521-REV2"
	second, err := f.svc.GetOrCreateTicket(context.Background(), p2)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.EqualValues(t, 1, f.countTickets(t))
}

func TestGetOrCreateTicketBackfillsEmptyLocation(t *testing.T) {
	f := newTicketServiceFixture(t)
	p := f.params(uuid.New(), uuid.New())
	p.Location = ""

	first, err := f.svc.GetOrCreateTicket(context.Background(), p)
	require.NoError(t, err)

	p2 := p
	p2.Location = "North Pad 7"
	second, err := f.svc.GetOrCreateTicket(context.Background(), p2)
	require.NoError(t, err)
	require.Equal(t, first, second, "location-relaxed tier finds the row")

	ticket, err := f.tickets.GetByID(context.Background(), false, first)
	require.NoError(t, err)
	require.Equal(t, "North Pad 7", ticket.Location, "empty location is backfilled")
}

func TestGetOrCreateTicketReusesEditedDraft(t *testing.T) {
	f := newTicketServiceFixture(t)
	p := f.params(uuid.New(), uuid.New())

	first, err := f.svc.GetOrCreateTicket(context.Background(), p)
	require.NoError(t, err)

	// The user moved the entry to another site and changed billing metadata
	// before approval; the old draft is repurposed instead of orphaned.
	p2 := p
	p2.Location = "South Pad 2"
	p2.PoAfe = "PO-7000"
	second, err := f.svc.GetOrCreateTicket(context.Background(), p2)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.EqualValues(t, 1, f.countTickets(t))

	ticket, err := f.tickets.GetByID(context.Background(), false, first)
	require.NoError(t, err)
	require.Equal(t, "South Pad 2", ticket.Location)
	require.Equal(t, "PO-7000", ticket.Header().PoAfe)
	require.Equal(t, "PO-7000", ticket.Header().GroupingKey, "grouping key recomputed after merge")
}

func TestGetOrCreateTicketNeverReusesApproved(t *testing.T) {
	f := newTicketServiceFixture(t)
	p := f.params(uuid.New(), uuid.New())

	first, err := f.svc.GetOrCreateTicket(context.Background(), p)
	require.NoError(t, err)

	number := "DB_26001"
	_, err = f.svc.UpdateTicketNumber(context.Background(), false, first, domain.UpdateTicketNumberRequest{
		TicketNumber: &number,
	}, "approver-1")
	require.NoError(t, err)

	p2 := p
	p2.Location = "South Pad 2"
	p2.PoAfe = "PO-7000"
	second, err := f.svc.GetOrCreateTicket(context.Background(), p2)
	require.NoError(t, err)

	require.NotEqual(t, first, second, "approved tickets are frozen, a new draft is created")
	require.EqualValues(t, 2, f.countTickets(t))
}

func TestGetOrCreateTicketParsesBillingKey(t *testing.T) {
	f := newTicketServiceFixture(t)
	customerID := uuid.New()

	id, err := f.svc.GetOrCreateTicket(context.Background(), TicketParams{
		EntryDate:  testutil.Date(2026, time.March, 10),
		UserID:     "user-1",
		CustomerID: &customerID,
		BillingKey: "J. Reimer::PO-4521::_",
	})
	require.NoError(t, err)

	ticket, err := f.tickets.GetByID(context.Background(), false, id)
	require.NoError(t, err)
	require.Equal(t, "J. Reimer", ticket.Header().Approver)
	require.Equal(t, "PO-4521", ticket.Header().PoAfe)
	require.Empty(t, ticket.Header().CC)
	require.Equal(t, "PO-4521", ticket.Header().GroupingKey)
}

func TestUpdateTicketNumberAssignsAndFreezes(t *testing.T) {
	f := newTicketServiceFixture(t)
	p := f.params(uuid.New(), uuid.New())

	id, err := f.svc.GetOrCreateTicket(context.Background(), p)
	require.NoError(t, err)

	number := "DB_26007"
	hours, amount := 12.5, 1875.0
	updated, err := f.svc.UpdateTicketNumber(context.Background(), false, id, domain.UpdateTicketNumberRequest{
		TicketNumber: &number,
		TotalHours:   &hours,
		TotalAmount:  &amount,
		EditedHours:  map[string]float64{"entry-1": 8},
	}, "approver-1")
	require.NoError(t, err)

	require.NotNil(t, updated.TicketNumber)
	require.Equal(t, "DB_26007", *updated.TicketNumber)
	require.Equal(t, "DB", updated.EmployeeInitials)
	require.Equal(t, 26, updated.TicketYear)
	require.NotNil(t, updated.SequenceNumber)
	require.Equal(t, 7, *updated.SequenceNumber)
	require.Equal(t, domain.WorkflowStatusApproved, updated.WorkflowStatus)
	require.Equal(t, "approver-1", updated.ApprovedByID)
	require.Equal(t, 12.5, updated.TotalHours)
	require.Equal(t, 1875.0, updated.TotalAmount)
	require.True(t, updated.IsFrozen())
}

func TestUpdateTicketNumberUnassignPreservesApproval(t *testing.T) {
	f := newTicketServiceFixture(t)
	p := f.params(uuid.New(), uuid.New())

	id, err := f.svc.GetOrCreateTicket(context.Background(), p)
	require.NoError(t, err)

	number := "DB_26001"
	hours, amount := 7.5, 1125.0
	_, err = f.svc.UpdateTicketNumber(context.Background(), false, id, domain.UpdateTicketNumberRequest{
		TicketNumber: &number,
		TotalHours:   &hours,
		TotalAmount:  &amount,
	}, "approver-1")
	require.NoError(t, err)

	updated, err := f.svc.UpdateTicketNumber(context.Background(), false, id, domain.UpdateTicketNumberRequest{
		TicketNumber: nil,
	}, "")
	require.NoError(t, err)

	require.Nil(t, updated.TicketNumber)
	require.Nil(t, updated.SequenceNumber)
	require.Zero(t, updated.TicketYear)
	require.Equal(t, domain.WorkflowStatusApproved, updated.WorkflowStatus, "unassignment keeps the ticket approved")
	require.Equal(t, "approver-1", updated.ApprovedByID, "unassignment keeps the approver")
	require.Equal(t, hours, updated.TotalHours, "unassignment keeps the hours snapshot")
	require.Equal(t, amount, updated.TotalAmount, "unassignment keeps the amount snapshot")
}

func TestUpdateTicketNumberRejectsBadFormat(t *testing.T) {
	f := newTicketServiceFixture(t)
	p := f.params(uuid.New(), uuid.New())

	id, err := f.svc.GetOrCreateTicket(context.Background(), p)
	require.NoError(t, err)

	for _, bad := range []string{"db_26001", "DB26001", "DB_261", "totally wrong"} {
		number := bad
		_, err = f.svc.UpdateTicketNumber(context.Background(), false, id, domain.UpdateTicketNumberRequest{
			TicketNumber: &number,
		}, "approver-1")
		require.ErrorIs(t, err, ErrInvalidTicketNumber, "number %q", bad)
	}
}

func TestUpdateTicketNumberUnknownTicket(t *testing.T) {
	f := newTicketServiceFixture(t)

	number := "DB_26001"
	_, err := f.svc.UpdateTicketNumber(context.Background(), false, uuid.New(), domain.UpdateTicketNumberRequest{
		TicketNumber: &number,
	}, "approver-1")
	require.ErrorIs(t, err, ErrTicketNotFound)
}

func TestUpdateTicketNumberRetriesOnCollision(t *testing.T) {
	f := newTicketServiceFixture(t)
	p := f.params(uuid.New(), uuid.New())

	first, err := f.svc.GetOrCreateTicket(context.Background(), p)
	require.NoError(t, err)

	p2 := p
	p2.Location = "South Pad 2"
	p2.PoAfe = "PO-9999"
	second, err := f.svc.GetOrCreateTicket(context.Background(), p2)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	number := "DB_26001"
	_, err = f.svc.UpdateTicketNumber(context.Background(), false, first, domain.UpdateTicketNumberRequest{
		TicketNumber: &number,
	}, "approver-1")
	require.NoError(t, err)

	// The same number again collides with the unique index and is recomputed
	sameNumber := "DB_26001"
	updated, err := f.svc.UpdateTicketNumber(context.Background(), false, second, domain.UpdateTicketNumberRequest{
		TicketNumber: &sameNumber,
	}, "approver-1")
	require.NoError(t, err)
	require.NotNil(t, updated.TicketNumber)
	require.Equal(t, "DB_26002", *updated.TicketNumber)
}

func TestUpdateTicketNumberCleansDuplicateDrafts(t *testing.T) {
	f := newTicketServiceFixture(t)
	p := f.params(uuid.New(), uuid.New())

	id, err := f.svc.GetOrCreateTicket(context.Background(), p)
	require.NoError(t, err)

	// A duplicate draft sharing the group, as left behind by historical races
	duplicate := &domain.ServiceTicket{
		EmployeeInitials: domain.PlaceholderInitials,
		EntryDate:        domain.DateOnly(p.EntryDate),
		UserID:           p.UserID,
		CustomerID:       *p.CustomerID,
		ProjectID:        p.ProjectID,
		Location:         p.Location,
		HeaderOverrides:  datatypesHeader(p.header()),
		WorkflowStatus:   domain.WorkflowStatusDraft,
	}
	require.NoError(t, f.tickets.Create(context.Background(), false, duplicate))
	require.EqualValues(t, 2, f.countTickets(t))

	number := "DB_26001"
	_, err = f.svc.UpdateTicketNumber(context.Background(), false, id, domain.UpdateTicketNumberRequest{
		TicketNumber: &number,
	}, "approver-1")
	require.NoError(t, err)

	require.EqualValues(t, 1, f.countTickets(t), "duplicate drafts are removed on approval")
	_, err = f.tickets.GetByID(context.Background(), false, duplicate.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteOtherDraftRecordsSkipsNumberedTickets(t *testing.T) {
	f := newTicketServiceFixture(t)
	p := f.params(uuid.New(), uuid.New())

	id, err := f.svc.GetOrCreateTicket(context.Background(), p)
	require.NoError(t, err)

	seq := 42
	otherNumber := "DB_26042"
	numbered := &domain.ServiceTicket{
		TicketNumber:     &otherNumber,
		EmployeeInitials: "DB",
		TicketYear:       26,
		SequenceNumber:   &seq,
		EntryDate:        domain.DateOnly(p.EntryDate),
		UserID:           p.UserID,
		CustomerID:       *p.CustomerID,
		ProjectID:        p.ProjectID,
		Location:         p.Location,
		HeaderOverrides:  datatypesHeader(p.header()),
		WorkflowStatus:   domain.WorkflowStatusApproved,
	}
	require.NoError(t, f.tickets.Create(context.Background(), false, numbered))

	number := "DB_26001"
	_, err = f.svc.UpdateTicketNumber(context.Background(), false, id, domain.UpdateTicketNumberRequest{
		TicketNumber: &number,
	}, "approver-1")
	require.NoError(t, err)

	_, err = f.tickets.GetByID(context.Background(), false, numbered.ID)
	require.NoError(t, err, "numbered tickets survive duplicate cleanup")
}

func TestUpdateWorkflowStatus(t *testing.T) {
	f := newTicketServiceFixture(t)
	p := f.params(uuid.New(), uuid.New())

	id, err := f.svc.GetOrCreateTicket(context.Background(), p)
	require.NoError(t, err)

	t.Run("rejection stamps timestamp and notes", func(t *testing.T) {
		updated, err := f.svc.UpdateWorkflowStatus(context.Background(), false, id, domain.WorkflowStatusRejected, "missing cost centre")
		require.NoError(t, err)
		require.Equal(t, domain.WorkflowStatusRejected, updated.WorkflowStatus)
		require.NotNil(t, updated.RejectedAt)
		require.Equal(t, "missing cost centre", updated.RejectionNotes)
	})

	t.Run("leaving rejected clears the rejection fields", func(t *testing.T) {
		updated, err := f.svc.UpdateWorkflowStatus(context.Background(), false, id, domain.WorkflowStatusApproved, "")
		require.NoError(t, err)
		require.Equal(t, domain.WorkflowStatusApproved, updated.WorkflowStatus)
		require.Nil(t, updated.RejectedAt)
		require.Empty(t, updated.RejectionNotes)
	})

	t.Run("pipeline advances forward", func(t *testing.T) {
		updated, err := f.svc.UpdateWorkflowStatus(context.Background(), false, id, domain.WorkflowStatusPDFExported, "")
		require.NoError(t, err)
		require.Equal(t, domain.WorkflowStatusPDFExported, updated.WorkflowStatus)

		updated, err = f.svc.UpdateWorkflowStatus(context.Background(), false, id, domain.WorkflowStatusSentToCNRL, "")
		require.NoError(t, err)
		require.Equal(t, domain.WorkflowStatusSentToCNRL, updated.WorkflowStatus)
	})

	t.Run("pipeline never moves backward past approved", func(t *testing.T) {
		_, err := f.svc.UpdateWorkflowStatus(context.Background(), false, id, domain.WorkflowStatusApproved, "")
		require.ErrorIs(t, err, ErrWorkflowBackward)

		_, err = f.svc.UpdateWorkflowStatus(context.Background(), false, id, domain.WorkflowStatusDraft, "")
		require.ErrorIs(t, err, ErrWorkflowBackward)
	})

	t.Run("invalid status is rejected", func(t *testing.T) {
		_, err := f.svc.UpdateWorkflowStatus(context.Background(), false, id, domain.WorkflowStatus("shredded"), "")
		require.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestDeleteTicketIfNoTimeEntriesFor(t *testing.T) {
	f := newTicketServiceFixture(t)
	customerID, projectID := uuid.New(), uuid.New()
	p := f.params(customerID, projectID)

	t.Run("nil project is a no-op", func(t *testing.T) {
		require.NoError(t, f.svc.DeleteTicketIfNoTimeEntriesFor(context.Background(), DeleteParams{
			UserID:    "user-1",
			EntryDate: p.EntryDate,
		}))
	})

	t.Run("draft with no remaining entries is deleted", func(t *testing.T) {
		id, err := f.svc.GetOrCreateTicket(context.Background(), p)
		require.NoError(t, err)

		require.NoError(t, f.svc.DeleteTicketIfNoTimeEntriesFor(context.Background(), DeleteParams{
			UserID:    p.UserID,
			EntryDate: p.EntryDate,
			ProjectID: &projectID,
			PoAfe:     p.PoAfe,
		}))

		_, err = f.tickets.GetByID(context.Background(), false, id)
		require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("draft with a remaining entry survives", func(t *testing.T) {
		id, err := f.svc.GetOrCreateTicket(context.Background(), p)
		require.NoError(t, err)
		f.seedEntry(t, projectID, p.PoAfe)

		require.NoError(t, f.svc.DeleteTicketIfNoTimeEntriesFor(context.Background(), DeleteParams{
			UserID:    p.UserID,
			EntryDate: p.EntryDate,
			ProjectID: &projectID,
			PoAfe:     p.PoAfe,
		}))

		_, err = f.tickets.GetByID(context.Background(), false, id)
		require.NoError(t, err)
	})

	t.Run("numbered ticket survives on its frozen snapshot", func(t *testing.T) {
		p2 := f.params(uuid.New(), uuid.New())
		p2.PoAfe = "PO-FROZEN"
		id, err := f.svc.GetOrCreateTicket(context.Background(), p2)
		require.NoError(t, err)

		number := "DB_26099"
		_, err = f.svc.UpdateTicketNumber(context.Background(), false, id, domain.UpdateTicketNumberRequest{
			TicketNumber: &number,
		}, "approver-1")
		require.NoError(t, err)

		require.NoError(t, f.svc.DeleteTicketIfNoTimeEntriesFor(context.Background(), DeleteParams{
			UserID:    p2.UserID,
			EntryDate: p2.EntryDate,
			ProjectID: p2.ProjectID,
			PoAfe:     p2.PoAfe,
		}))

		_, err = f.tickets.GetByID(context.Background(), false, id)
		require.NoError(t, err)
	})
}

func TestCleanupEmptyDrafts(t *testing.T) {
	f := newTicketServiceFixture(t)
	customerID := uuid.New()
	emptyProject, liveProject := uuid.New(), uuid.New()

	p := f.params(customerID, emptyProject)
	_, err := f.svc.GetOrCreateTicket(context.Background(), p)
	require.NoError(t, err)

	p2 := f.params(customerID, liveProject)
	p2.Location = "South Pad 2"
	kept, err := f.svc.GetOrCreateTicket(context.Background(), p2)
	require.NoError(t, err)
	f.seedEntry(t, liveProject, p2.PoAfe)

	// Tickets without a project are skipped by the sweep
	noProject := f.params(uuid.New(), uuid.New())
	noProject.ProjectID = nil
	noProject.Location = "East Yard"
	skipped, err := f.svc.GetOrCreateTicket(context.Background(), noProject)
	require.NoError(t, err)

	deleted, err := f.svc.CleanupEmptyDrafts(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 1, deleted)

	_, err = f.tickets.GetByID(context.Background(), false, kept)
	require.NoError(t, err)
	_, err = f.tickets.GetByID(context.Background(), false, skipped)
	require.NoError(t, err)
}

func TestCreateTicketRecord(t *testing.T) {
	f := newTicketServiceFixture(t)
	testutil.CreateTestUser(t, f.db, "user-1", "Dana", "Bergstrom")

	ticket, err := f.svc.CreateTicketRecord(context.Background(), false, domain.CreateTicketRecordRequest{
		EntryDate:  "2026-03-10",
		UserID:     "user-1",
		CustomerID: uuid.New(),
		Location:   "North Pad 7",
		Header:     domain.TicketHeader{Approver: "J. Reimer", PoAfe: "PO-4521"},
	})
	require.NoError(t, err)

	require.NotNil(t, ticket.TicketNumber)
	require.Equal(t, "DB_26001", *ticket.TicketNumber)
	require.Equal(t, domain.WorkflowStatusApproved, ticket.WorkflowStatus)
	require.Equal(t, "PO-4521", ticket.Header().GroupingKey)
	require.Equal(t, "J. Reimer::PO-4521::_", ticket.Header().BillingKey)

	// The next record takes the next free sequence
	second, err := f.svc.CreateTicketRecord(context.Background(), false, domain.CreateTicketRecordRequest{
		EntryDate:  "2026-03-11",
		UserID:     "user-1",
		CustomerID: uuid.New(),
		Header:     domain.TicketHeader{PoAfe: "PO-9999"},
	})
	require.NoError(t, err)
	require.Equal(t, "DB_26002", *second.TicketNumber)
}

func TestCreateTicketRecordRejectsBadDate(t *testing.T) {
	f := newTicketServiceFixture(t)

	_, err := f.svc.CreateTicketRecord(context.Background(), false, domain.CreateTicketRecordRequest{
		EntryDate:  "03/10/2026",
		UserID:     "user-1",
		CustomerID: uuid.New(),
	})
	require.Error(t, err)
}

func TestDiscardAndRestoreTicket(t *testing.T) {
	f := newTicketServiceFixture(t)
	p := f.params(uuid.New(), uuid.New())

	id, err := f.svc.GetOrCreateTicket(context.Background(), p)
	require.NoError(t, err)

	require.NoError(t, f.svc.DiscardTicket(context.Background(), false, id))
	ticket, err := f.tickets.GetByID(context.Background(), false, id)
	require.NoError(t, err)
	require.True(t, ticket.IsDiscarded)

	// A discarded ticket no longer matches new entries
	second, err := f.svc.GetOrCreateTicket(context.Background(), p)
	require.NoError(t, err)
	require.NotEqual(t, id, second)

	require.NoError(t, f.svc.RestoreTicket(context.Background(), false, id))
	ticket, err = f.tickets.GetByID(context.Background(), false, id)
	require.NoError(t, err)
	require.False(t, ticket.IsDiscarded)
}

func TestDeletePermanentlyCascadesExpenses(t *testing.T) {
	f := newTicketServiceFixture(t)
	p := f.params(uuid.New(), uuid.New())

	id, err := f.svc.GetOrCreateTicket(context.Background(), p)
	require.NoError(t, err)

	expenseRepo := repository.NewTicketExpenseRepository(f.db)
	expense := &domain.ServiceTicketExpense{
		TicketID: id,
		Category: domain.ExpenseCategoryTravel,
		Quantity: 120,
		Rate:     0.68,
		Amount:   81.6,
	}
	require.NoError(t, expenseRepo.Create(context.Background(), expense))

	require.NoError(t, f.svc.DeletePermanently(context.Background(), false, id))

	_, err = f.tickets.GetByID(context.Background(), false, id)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	remaining, err := expenseRepo.ListByTicket(context.Background(), id)
	require.NoError(t, err)
	require.Empty(t, remaining)
}

func TestDemoTicketsAreIsolated(t *testing.T) {
	f := newTicketServiceFixture(t)
	p := f.params(uuid.New(), uuid.New())

	prodID, err := f.svc.GetOrCreateTicket(context.Background(), p)
	require.NoError(t, err)

	demo := p
	demo.IsDemo = true
	demoID, err := f.svc.GetOrCreateTicket(context.Background(), demo)
	require.NoError(t, err)

	require.NotEqual(t, prodID, demoID)
	require.EqualValues(t, 1, f.countTickets(t), "demo tickets live in their own table")
	_, err = f.tickets.GetByID(context.Background(), true, demoID)
	require.NoError(t, err)
	_, err = f.tickets.GetByID(context.Background(), true, prodID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
