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
	"gorm.io/gorm"
)

type timeEntryFixture struct {
	db      *gorm.DB
	svc     *TimeEntryService
	tickets *repository.TicketRepository
	project *domain.Project
}

func newTimeEntryFixture(t *testing.T) *timeEntryFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)

	customer := testutil.CreateTestCustomer(t, db, "CNRL")
	project := testutil.CreateTestProject(t, db, customer.ID, "Horizon Site Services")
	testutil.CreateTestUser(t, db, "user-1", "Dana", "Bergstrom")

	cfg := &config.TicketsConfig{MaxNumberAttempts: 100}
	ticketRepo := repository.NewTicketRepository(db)
	numbers := NewTicketNumberService(ticketRepo, cfg, zap.NewNop())
	numbers.now = func() time.Time {
		return time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	}
	ticketSvc := NewTicketService(
		ticketRepo,
		repository.NewTicketExpenseRepository(db),
		repository.NewTimeEntryRepository(db),
		repository.NewUserRepository(db),
		numbers,
		cfg,
		zap.NewNop(),
	)

	svc := NewTimeEntryService(
		repository.NewTimeEntryRepository(db),
		repository.NewProjectRepository(db),
		ticketSvc,
		zap.NewNop(),
	)

	return &timeEntryFixture{db: db, svc: svc, tickets: ticketRepo, project: project}
}

func (f *timeEntryFixture) listTickets(t *testing.T) []domain.ServiceTicket {
	t.Helper()
	var tickets []domain.ServiceTicket
	require.NoError(t, f.db.Table("service_tickets").Find(&tickets).Error)
	return tickets
}

func TestCreateTimeEntryDerivesTicket(t *testing.T) {
	f := newTimeEntryFixture(t)

	dto, err := f.svc.CreateTimeEntry(context.Background(), false, "user-1", domain.CreateTimeEntryRequest{
		EntryDate: "2026-03-10",
		ProjectID: &f.project.ID,
		Billable:  true,
		Hours:     8,
		Location:  "North Pad 7",
		PoAfe:     "PO-4521",
	})
	require.NoError(t, err)
	require.Equal(t, "2026-03-10", dto.EntryDate)
	require.Equal(t, "Horizon Site Services", dto.ProjectName)

	tickets := f.listTickets(t)
	require.Len(t, tickets, 1)
	require.Equal(t, domain.WorkflowStatusDraft, tickets[0].WorkflowStatus)
	require.Equal(t, "user-1", tickets[0].UserID)
	require.Equal(t, f.project.CustomerID, tickets[0].CustomerID)
	require.Equal(t, "PO-4521", tickets[0].Header().GroupingKey)
	require.Equal(t, "DB", tickets[0].EmployeeInitials)
}

func TestCreateTimeEntryNonBillableSkipsTicket(t *testing.T) {
	f := newTimeEntryFixture(t)

	_, err := f.svc.CreateTimeEntry(context.Background(), false, "user-1", domain.CreateTimeEntryRequest{
		EntryDate: "2026-03-10",
		ProjectID: &f.project.ID,
		Billable:  false,
		Hours:     8,
	})
	require.NoError(t, err)
	require.Empty(t, f.listTickets(t))
}

func TestCreateTimeEntryWithoutProjectSkipsTicket(t *testing.T) {
	f := newTimeEntryFixture(t)

	_, err := f.svc.CreateTimeEntry(context.Background(), false, "user-1", domain.CreateTimeEntryRequest{
		EntryDate: "2026-03-10",
		Billable:  true,
		Hours:     8,
	})
	require.NoError(t, err)
	require.Empty(t, f.listTickets(t))
}

func TestTwoEntriesSameGroupShareOneTicket(t *testing.T) {
	f := newTimeEntryFixture(t)

	for _, hours := range []float64{4, 6} {
		_, err := f.svc.CreateTimeEntry(context.Background(), false, "user-1", domain.CreateTimeEntryRequest{
			EntryDate: "2026-03-10",
			ProjectID: &f.project.ID,
			Billable:  true,
			Hours:     hours,
			Location:  "North Pad 7",
			PoAfe:     "PO-4521",
		})
		require.NoError(t, err)
	}

	require.Len(t, f.listTickets(t), 1, "entries in the same group consolidate into one ticket")
}

func TestDeleteLastEntryRemovesDraftTicket(t *testing.T) {
	f := newTimeEntryFixture(t)

	dto, err := f.svc.CreateTimeEntry(context.Background(), false, "user-1", domain.CreateTimeEntryRequest{
		EntryDate: "2026-03-10",
		ProjectID: &f.project.ID,
		Billable:  true,
		Hours:     8,
		PoAfe:     "PO-4521",
	})
	require.NoError(t, err)
	require.Len(t, f.listTickets(t), 1)

	require.NoError(t, f.svc.DeleteTimeEntry(context.Background(), false, dto.ID))
	require.Empty(t, f.listTickets(t), "the empty draft is torn down with its last entry")
}

func TestDeleteEntryKeepsTicketWhileOthersRemain(t *testing.T) {
	f := newTimeEntryFixture(t)

	first, err := f.svc.CreateTimeEntry(context.Background(), false, "user-1", domain.CreateTimeEntryRequest{
		EntryDate: "2026-03-10",
		ProjectID: &f.project.ID,
		Billable:  true,
		Hours:     4,
		PoAfe:     "PO-4521",
	})
	require.NoError(t, err)
	_, err = f.svc.CreateTimeEntry(context.Background(), false, "user-1", domain.CreateTimeEntryRequest{
		EntryDate: "2026-03-10",
		ProjectID: &f.project.ID,
		Billable:  true,
		Hours:     6,
		PoAfe:     "PO-4521",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteTimeEntry(context.Background(), false, first.ID))
	require.Len(t, f.listTickets(t), 1)
}

func TestDeleteLastEntryKeepsNumberedTicket(t *testing.T) {
	f := newTimeEntryFixture(t)

	dto, err := f.svc.CreateTimeEntry(context.Background(), false, "user-1", domain.CreateTimeEntryRequest{
		EntryDate: "2026-03-10",
		ProjectID: &f.project.ID,
		Billable:  true,
		Hours:     8,
		PoAfe:     "PO-4521",
	})
	require.NoError(t, err)

	tickets := f.listTickets(t)
	require.Len(t, tickets, 1)

	ticketSvc := f.svc.tickets
	number := "DB_26001"
	_, err = ticketSvc.UpdateTicketNumber(context.Background(), false, tickets[0].ID, domain.UpdateTicketNumberRequest{
		TicketNumber: &number,
	}, "approver-1")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteTimeEntry(context.Background(), false, dto.ID))
	remaining := f.listTickets(t)
	require.Len(t, remaining, 1, "numbered tickets survive the deletion of their entries")
	require.NotNil(t, remaining[0].TicketNumber)
}

func TestUpdateEntryMovesTicketGroup(t *testing.T) {
	f := newTimeEntryFixture(t)

	dto, err := f.svc.CreateTimeEntry(context.Background(), false, "user-1", domain.CreateTimeEntryRequest{
		EntryDate: "2026-03-10",
		ProjectID: &f.project.ID,
		Billable:  true,
		Hours:     8,
		PoAfe:     "PO-4521",
	})
	require.NoError(t, err)

	// Move the entry to a different project; the old draft becomes empty and
	// is removed, and a new one appears under the new project.
	otherCustomer := testutil.CreateTestCustomer(t, f.db, "Suncor")
	otherProject := testutil.CreateTestProject(t, f.db, otherCustomer.ID, "Base Plant Turnaround")

	_, err = f.svc.UpdateTimeEntry(context.Background(), false, dto.ID, domain.UpdateTimeEntryRequest{
		ProjectID: &otherProject.ID,
	})
	require.NoError(t, err)

	tickets := f.listTickets(t)
	require.Len(t, tickets, 1)
	require.NotNil(t, tickets[0].ProjectID)
	require.Equal(t, otherProject.ID, *tickets[0].ProjectID)
	require.Equal(t, otherCustomer.ID, tickets[0].CustomerID)
}

func TestUpdateEntryUnchangedGroupKeepsTicket(t *testing.T) {
	f := newTimeEntryFixture(t)

	dto, err := f.svc.CreateTimeEntry(context.Background(), false, "user-1", domain.CreateTimeEntryRequest{
		EntryDate: "2026-03-10",
		ProjectID: &f.project.ID,
		Billable:  true,
		Hours:     8,
		PoAfe:     "PO-4521",
	})
	require.NoError(t, err)
	before := f.listTickets(t)
	require.Len(t, before, 1)

	newHours := 10.0
	_, err = f.svc.UpdateTimeEntry(context.Background(), false, dto.ID, domain.UpdateTimeEntryRequest{
		Hours: &newHours,
	})
	require.NoError(t, err)

	after := f.listTickets(t)
	require.Len(t, after, 1)
	require.Equal(t, before[0].ID, after[0].ID, "an hours-only edit keeps the same ticket")
}

func TestUpdateEntryToNonBillableRemovesTicket(t *testing.T) {
	f := newTimeEntryFixture(t)

	dto, err := f.svc.CreateTimeEntry(context.Background(), false, "user-1", domain.CreateTimeEntryRequest{
		EntryDate: "2026-03-10",
		ProjectID: &f.project.ID,
		Billable:  true,
		Hours:     8,
		PoAfe:     "PO-4521",
	})
	require.NoError(t, err)

	billable := false
	_, err = f.svc.UpdateTimeEntry(context.Background(), false, dto.ID, domain.UpdateTimeEntryRequest{
		Billable: &billable,
	})
	require.NoError(t, err)

	require.Empty(t, f.listTickets(t))
}

func TestUpdateEntrySyncsHeaderToDraft(t *testing.T) {
	f := newTimeEntryFixture(t)

	dto, err := f.svc.CreateTimeEntry(context.Background(), false, "user-1", domain.CreateTimeEntryRequest{
		EntryDate: "2026-03-10",
		ProjectID: &f.project.ID,
		Billable:  true,
		Hours:     8,
		PoAfe:     "PO-4521",
	})
	require.NoError(t, err)

	location := "North Pad 7"
	_, err = f.svc.UpdateTimeEntry(context.Background(), false, dto.ID, domain.UpdateTimeEntryRequest{
		Location: &location,
	})
	require.NoError(t, err)

	tickets := f.listTickets(t)
	require.Len(t, tickets, 1)
	require.Equal(t, "North Pad 7", tickets[0].Location)
	require.Equal(t, "North Pad 7", tickets[0].Header().ServiceLocation)
}

func TestGetTimeEntryNotFound(t *testing.T) {
	f := newTimeEntryFixture(t)

	_, err := f.svc.GetTimeEntry(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrTimeEntryNotFound)
}

func TestListTimeEntriesWindow(t *testing.T) {
	f := newTimeEntryFixture(t)

	for _, day := range []string{"2026-03-08", "2026-03-10", "2026-03-12"} {
		_, err := f.svc.CreateTimeEntry(context.Background(), false, "user-1", domain.CreateTimeEntryRequest{
			EntryDate: day,
			Billable:  false,
			Hours:     8,
		})
		require.NoError(t, err)
	}

	from := testutil.Date(2026, time.March, 9)
	to := testutil.Date(2026, time.March, 11)
	entries, err := f.svc.ListTimeEntries(context.Background(), "user-1", &from, &to)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "2026-03-10", entries[0].EntryDate)
}
