package service

import (
	"context"
	"time"

	"github.com/atlasfield/fieldtrack-api/internal/domain"
	"github.com/atlasfield/fieldtrack-api/internal/repository"
	"github.com/google/uuid"
)

// matchTier records which search tier produced a ticket match. The caller
// uses it to decide follow-up work: relaxed matches may need a location
// backfill, reuse matches need their header merged.
type matchTier int

const (
	matchNone matchTier = iota
	matchExact
	matchRelaxed
	matchLegacy
	matchReuse
)

// ticketTarget is the grouping identity a time entry resolves to
type ticketTarget struct {
	EntryDate   time.Time
	UserID      string
	CustomerID  uuid.UUID
	ProjectID   *uuid.UUID
	Location    string
	GroupingKey string
}

// findTicketFor locates the existing ticket a target belongs to, trying
// progressively looser tiers. Ordering matters: duplicate rows must not
// accumulate while users iteratively correct billing metadata, but rows at
// approved or beyond are never reused.
func (s *TicketService) findTicketFor(ctx context.Context, isDemo bool, t ticketTarget) (*domain.ServiceTicket, matchTier, error) {
	exact, err := s.ticketRepo.ListCandidates(ctx, isDemo, repository.CandidateFilter{
		EntryDate:  t.EntryDate,
		UserID:     t.UserID,
		CustomerID: t.CustomerID,
		ProjectID:  t.ProjectID,
		Location:   &t.Location,
	})
	if err != nil {
		return nil, matchNone, err
	}
	if found := matchByGroupingKey(exact, t.GroupingKey); found != nil {
		return found, matchExact, nil
	}
	// Single-candidate leniency: one location-filtered row with a different
	// key is still taken to be the same logical ticket.
	if len(exact) == 1 {
		return &exact[0], matchExact, nil
	}

	relaxed, err := s.ticketRepo.ListCandidates(ctx, isDemo, repository.CandidateFilter{
		EntryDate:  t.EntryDate,
		UserID:     t.UserID,
		CustomerID: t.CustomerID,
		ProjectID:  t.ProjectID,
	})
	if err != nil {
		return nil, matchNone, err
	}
	if found := matchByGroupingKey(relaxed, t.GroupingKey); found != nil {
		return found, matchRelaxed, nil
	}

	// Legacy rows predate location as a filter field and carry none at all
	for i := range relaxed {
		if relaxed[i].Location == "" {
			return &relaxed[i], matchLegacy, nil
		}
	}

	// Reuse an unapproved row whose billing metadata was edited out from
	// under it, preferring one at the same location.
	var reusable *domain.ServiceTicket
	for i := range relaxed {
		status := relaxed[i].WorkflowStatus
		if status != domain.WorkflowStatusDraft && status != domain.WorkflowStatusRejected {
			continue
		}
		if relaxed[i].Location == t.Location {
			return &relaxed[i], matchReuse, nil
		}
		if reusable == nil {
			reusable = &relaxed[i]
		}
	}
	if reusable != nil {
		return reusable, matchReuse, nil
	}

	return nil, matchNone, nil
}

func matchByGroupingKey(candidates []domain.ServiceTicket, groupingKey string) *domain.ServiceTicket {
	for i := range candidates {
		if candidates[i].Header().EffectiveGroupingKey() == groupingKey {
			return &candidates[i]
		}
	}
	return nil
}
