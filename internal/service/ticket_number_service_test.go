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

func newNumberService(t *testing.T, db *gorm.DB, reserved map[string]map[int]int) *TicketNumberService {
	t.Helper()
	cfg := &config.TicketsConfig{
		ReservedSequences: reserved,
		MaxNumberAttempts: 100,
	}
	svc := NewTicketNumberService(repository.NewTicketRepository(db), cfg, zap.NewNop())
	svc.now = func() time.Time {
		return time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func seedNumberedTicket(t *testing.T, db *gorm.DB, initials string, year, sequence int, discarded bool) {
	t.Helper()
	number := domain.FormatTicketNumber(initials, year, sequence)
	seq := sequence
	ticket := &domain.ServiceTicket{
		TicketNumber:     &number,
		EmployeeInitials: initials,
		TicketYear:       year,
		SequenceNumber:   &seq,
		EntryDate:        testutil.Date(2026, time.March, 10),
		UserID:           "user-1",
		CustomerID:       uuid.New(),
		WorkflowStatus:   domain.WorkflowStatusApproved,
		IsDiscarded:      discarded,
	}
	require.NoError(t, repository.NewTicketRepository(db).Create(context.Background(), false, ticket))
}

func TestNextSequenceStartsAtOne(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newNumberService(t, db, nil)

	seq, err := svc.NextSequence(context.Background(), false, "DB", 26)
	require.NoError(t, err)
	require.Equal(t, 1, seq)
}

func TestNextSequenceFillsGaps(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newNumberService(t, db, nil)

	seedNumberedTicket(t, db, "DB", 26, 1, false)
	seedNumberedTicket(t, db, "DB", 26, 2, false)
	seedNumberedTicket(t, db, "DB", 26, 4, false)

	seq, err := svc.NextSequence(context.Background(), false, "DB", 26)
	require.NoError(t, err)
	require.Equal(t, 3, seq, "allocator fills the gap left at 3")
}

func TestNextSequenceSkipsDiscardedNumbers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newNumberService(t, db, nil)

	// Discarded tickets keep their numbers permanently
	seedNumberedTicket(t, db, "DB", 26, 1, true)

	seq, err := svc.NextSequence(context.Background(), false, "DB", 26)
	require.NoError(t, err)
	require.Equal(t, 2, seq)
}

func TestNextSequenceRespectsReservedRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newNumberService(t, db, map[string]map[int]int{
		"HV": {26: 49},
	})

	seq, err := svc.NextSequence(context.Background(), false, "HV", 26)
	require.NoError(t, err)
	require.Equal(t, 50, seq, "allocation starts above the reserved ceiling")
}

func TestNextSequenceReservedRangeIsPerEmployeeAndYear(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newNumberService(t, db, map[string]map[int]int{
		"HV": {26: 49},
	})

	seq, err := svc.NextSequence(context.Background(), false, "DB", 26)
	require.NoError(t, err)
	require.Equal(t, 1, seq, "other employees are unaffected by HV's reservation")

	seq, err = svc.NextSequence(context.Background(), false, "HV", 25)
	require.NoError(t, err)
	require.Equal(t, 1, seq, "other years are unaffected by the 26 reservation")
}

func TestNextTicketNumber(t *testing.T) {
	tests := []struct {
		name     string
		initials string
		reserved map[string]map[int]int
		seed     func(t *testing.T, db *gorm.DB)
		expected string
	}{
		{
			name:     "first number for fresh employee",
			initials: "DB",
			expected: "DB_26001",
		},
		{
			name:     "first number above reserved range",
			initials: "HV",
			reserved: map[string]map[int]int{"HV": {26: 49}},
			expected: "HV_26050",
		},
		{
			name:     "initials are trimmed and upper-cased",
			initials: " db ",
			expected: "DB_26001",
		},
		{
			name:     "empty initials fall back to placeholder",
			initials: "",
			expected: "XX_26001",
		},
		{
			name:     "existing numbers advance the sequence",
			initials: "DB",
			seed: func(t *testing.T, db *gorm.DB) {
				seedNumberedTicket(t, db, "DB", 26, 1, false)
			},
			expected: "DB_26002",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			svc := newNumberService(t, db, tc.reserved)
			if tc.seed != nil {
				tc.seed(t, db)
			}

			number, err := svc.NextTicketNumber(context.Background(), false, tc.initials)
			require.NoError(t, err)
			require.Equal(t, tc.expected, number)
		})
	}
}

func TestNextSequenceDemoTableIsIsolated(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newNumberService(t, db, nil)

	seedNumberedTicket(t, db, "DB", 26, 1, false)
	seedNumberedTicket(t, db, "DB", 26, 2, false)

	seq, err := svc.NextSequence(context.Background(), true, "DB", 26)
	require.NoError(t, err)
	require.Equal(t, 1, seq, "demo allocation ignores production rows")
}
