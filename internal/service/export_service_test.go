package service

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/atlasfield/fieldtrack-api/internal/config"
	"github.com/atlasfield/fieldtrack-api/internal/domain"
	"github.com/atlasfield/fieldtrack-api/internal/repository"
	"github.com/atlasfield/fieldtrack-api/internal/storage"
	"github.com/atlasfield/fieldtrack-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type exportFixture struct {
	svc       *ExportService
	ticketSvc *TicketService
	ticketID  uuid.UUID
}

func newExportFixture(t *testing.T) *exportFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)

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

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	customerID, projectID := uuid.New(), uuid.New()
	ticketID, err := ticketSvc.GetOrCreateTicket(context.Background(), TicketParams{
		EntryDate:  testutil.Date(2026, time.March, 10),
		UserID:     "user-1",
		CustomerID: &customerID,
		ProjectID:  &projectID,
		PoAfe:      "PO-4521",
	})
	require.NoError(t, err)

	return &exportFixture{
		svc:       NewExportService(repository.NewExportFileRepository(db), ticketSvc, store, zap.NewNop()),
		ticketSvc: ticketSvc,
		ticketID:  ticketID,
	}
}

func (f *exportFixture) approve(t *testing.T) {
	t.Helper()
	number := "DB_26001"
	_, err := f.ticketSvc.UpdateTicketNumber(context.Background(), false, f.ticketID, domain.UpdateTicketNumberRequest{
		TicketNumber: &number,
	}, "approver-1")
	require.NoError(t, err)
}

func TestStoreExportRequiresNumberedTicket(t *testing.T) {
	f := newExportFixture(t)

	_, err := f.svc.StoreExport(context.Background(), false, f.ticketID, "DB_26001.pdf", "application/pdf", bytes.NewReader([]byte("%PDF-1.7")))
	require.ErrorIs(t, err, ErrTicketNotExportable, "unnumbered drafts cannot be exported")
}

func TestStoreExportAdvancesWorkflow(t *testing.T) {
	f := newExportFixture(t)
	f.approve(t)

	content := []byte("%PDF-1.7 ticket document")
	dto, err := f.svc.StoreExport(context.Background(), false, f.ticketID, "DB_26001.pdf", "application/pdf", bytes.NewReader(content))
	require.NoError(t, err)
	require.Equal(t, f.ticketID, dto.TicketID)
	require.Equal(t, "DB_26001.pdf", dto.Filename)
	require.EqualValues(t, len(content), dto.Size)

	ticket, err := f.ticketSvc.GetTicket(context.Background(), false, f.ticketID)
	require.NoError(t, err)
	require.Equal(t, domain.WorkflowStatusPDFExported, ticket.WorkflowStatus)
}

func TestStoreExportKeepsLaterWorkflowStatus(t *testing.T) {
	f := newExportFixture(t)
	f.approve(t)

	_, err := f.svc.StoreExport(context.Background(), false, f.ticketID, "v1.pdf", "application/pdf", bytes.NewReader([]byte("one")))
	require.NoError(t, err)
	_, err = f.ticketSvc.UpdateWorkflowStatus(context.Background(), false, f.ticketID, domain.WorkflowStatusSentToCNRL, "")
	require.NoError(t, err)

	// Re-exporting a sent ticket must not rewind the pipeline
	_, err = f.svc.StoreExport(context.Background(), false, f.ticketID, "v2.pdf", "application/pdf", bytes.NewReader([]byte("two")))
	require.NoError(t, err)

	ticket, err := f.ticketSvc.GetTicket(context.Background(), false, f.ticketID)
	require.NoError(t, err)
	require.Equal(t, domain.WorkflowStatusSentToCNRL, ticket.WorkflowStatus)
}

func TestOpenExportRoundTrip(t *testing.T) {
	f := newExportFixture(t)
	f.approve(t)

	content := []byte("%PDF-1.7 round trip")
	dto, err := f.svc.StoreExport(context.Background(), false, f.ticketID, "DB_26001.pdf", "application/pdf", bytes.NewReader(content))
	require.NoError(t, err)

	reader, meta, err := f.svc.OpenExport(context.Background(), dto.ID)
	require.NoError(t, err)
	defer reader.Close()

	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Equal(t, content, got)
	require.Equal(t, "application/pdf", meta.ContentType)
}

func TestListAndDeleteExports(t *testing.T) {
	f := newExportFixture(t)
	f.approve(t)

	first, err := f.svc.StoreExport(context.Background(), false, f.ticketID, "v1.pdf", "application/pdf", bytes.NewReader([]byte("one")))
	require.NoError(t, err)
	_, err = f.svc.StoreExport(context.Background(), false, f.ticketID, "v2.pdf", "application/pdf", bytes.NewReader([]byte("two")))
	require.NoError(t, err)

	exports, err := f.svc.ListExports(context.Background(), f.ticketID)
	require.NoError(t, err)
	require.Len(t, exports, 2)

	require.NoError(t, f.svc.DeleteExport(context.Background(), first.ID))

	exports, err = f.svc.ListExports(context.Background(), f.ticketID)
	require.NoError(t, err)
	require.Len(t, exports, 1)

	_, _, err = f.svc.OpenExport(context.Background(), first.ID)
	require.ErrorIs(t, err, ErrExportNotFound)
}
