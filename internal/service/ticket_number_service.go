package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atlasfield/fieldtrack-api/internal/config"
	"github.com/atlasfield/fieldtrack-api/internal/domain"
	"github.com/atlasfield/fieldtrack-api/internal/repository"
	"go.uber.org/zap"
)

// TicketNumberService allocates per-employee, per-year ticket numbers. It
// fills gaps left by deleted drafts rather than tracking a high-water mark:
// the authoritative state is the set of sequence numbers currently held in
// the table, plus any reserved ranges from configuration.
type TicketNumberService struct {
	ticketRepo *repository.TicketRepository
	cfg        *config.TicketsConfig
	logger     *zap.Logger
	now        func() time.Time
}

// NewTicketNumberService creates a new TicketNumberService
func NewTicketNumberService(ticketRepo *repository.TicketRepository, cfg *config.TicketsConfig, logger *zap.Logger) *TicketNumberService {
	return &TicketNumberService{
		ticketRepo: ticketRepo,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// CurrentTicketYear returns the two-digit year used in ticket numbers
func (s *TicketNumberService) CurrentTicketYear() int {
	return s.now().UTC().Year() % 100
}

// NextSequence returns the lowest free sequence number for the employee and
// year, skipping numbers inside a configured reserved range. Discarded and
// rejected tickets still hold their numbers, so the scan sees them too.
func (s *TicketNumberService) NextSequence(ctx context.Context, isDemo bool, initials string, year int) (int, error) {
	used, err := s.ticketRepo.ListUsedSequences(ctx, isDemo, initials, year)
	if err != nil {
		return 0, fmt.Errorf("listing used sequence numbers for %s/%02d: %w", initials, year, err)
	}

	taken := make(map[int]bool, len(used))
	for _, seq := range used {
		taken[seq] = true
	}

	start := s.cfg.LastReserved(initials, year) + 1
	if start < 1 {
		start = 1
	}
	for seq := start; ; seq++ {
		if !taken[seq] {
			return seq, nil
		}
	}
}

// NextTicketNumber computes the next formatted ticket number for an employee
// in the current year. The number is not reserved until a row carrying it is
// written; concurrent callers are reconciled by the unique index and the
// caller's retry loop.
func (s *TicketNumberService) NextTicketNumber(ctx context.Context, isDemo bool, initials string) (string, error) {
	initials = strings.ToUpper(strings.TrimSpace(initials))
	if initials == "" {
		initials = domain.PlaceholderInitials
	}

	year := s.CurrentTicketYear()
	seq, err := s.NextSequence(ctx, isDemo, initials, year)
	if err != nil {
		return "", err
	}

	number := domain.FormatTicketNumber(initials, year, seq)
	s.logger.Debug("computed next ticket number",
		zap.String("initials", initials),
		zap.Int("year", year),
		zap.Int("sequence", seq),
		zap.Bool("demo", isDemo))
	return number, nil
}
