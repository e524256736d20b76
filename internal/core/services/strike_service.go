package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"gearbook-backend/internal/adapters/persistence/models"
	"gearbook-backend/internal/adapters/persistence/repositories"
	"gearbook-backend/internal/core/domain"
	"gearbook-backend/internal/core/strikes"
)

// Strike service errors
var (
	ErrStrikeNotFound       = errors.New("strike not found")
	ErrStrikeAlreadyRevoked = errors.New("strike already revoked")
	ErrRevokeReasonRequired = errors.New("revoke requires a reason")
)

// StrikeService handles the late-return policy: issuing, revoking and
// querying strikes. Every mutation recomputes the subject's derived
// standing inside the same transaction.
type StrikeService struct {
	strikeRepo repositories.StrikeRepository
	notifier   Notifier
}

// NewStrikeService creates a new strike service
func NewStrikeService(strikeRepo repositories.StrikeRepository, notifier Notifier) *StrikeService {
	return &StrikeService{strikeRepo: strikeRepo, notifier: notifier}
}

// IssueStrikeInput represents a new strike
type IssueStrikeInput struct {
	SubjectID     string `json:"subject_id" validate:"required"`
	ReservationID string `json:"reservation_id,omitempty"`
	DaysOverdue   int    `json:"days_overdue,omitempty"`
}

// Issue records a strike for the subject and escalates their standing.
// issuedBy nil marks an automatic strike (confirmed late return).
func (s *StrikeService) Issue(ctx context.Context, input *IssueStrikeInput, issuedBy *string) (*models.StrikeRecord, error) {
	now := time.Now()
	var record *models.StrikeRecord

	err := s.strikeRepo.Transaction(ctx, func(tx repositories.StrikeRepository) error {
		// Lock the subject's active strikes so concurrent issues cannot
		// both read the same count.
		active, err := tx.ListActiveBySubject(ctx, input.SubjectID, true)
		if err != nil {
			return err
		}

		escalation := strikes.Escalate(len(active), now)
		record = &models.StrikeRecord{
			ID:              uuid.New().String(),
			SubjectID:       input.SubjectID,
			ReservationID:   input.ReservationID,
			StrikeNumber:    escalation.StrikeNumber,
			DaysOverdue:     input.DaysOverdue,
			RestrictionDays: escalation.RestrictionDays,
			IssuedBy:        issuedBy,
			IssuedAt:        now,
		}
		if err := tx.CreateRecord(ctx, record); err != nil {
			return err
		}

		return tx.SaveState(ctx, &models.SubjectStrikeState{
			SubjectID:      input.SubjectID,
			StrikeCount:    escalation.StrikeNumber,
			BlacklistUntil: escalation.BlacklistUntil,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("⚠️ Strike %d issued to %s (restriction %d days)",
		record.StrikeNumber, input.SubjectID, record.RestrictionDays)
	if s.notifier != nil {
		s.notifier.NotifyStrikeIssued(input.SubjectID, record.StrikeNumber, record.RestrictionDays)
	}
	return record, nil
}

// Revoke marks one strike as revoked and recomputes the subject's
// standing from the records that remain.
func (s *StrikeService) Revoke(ctx context.Context, strikeID string, actor domain.Actor, reason string) (*models.SubjectStrikeState, error) {
	if reason == "" {
		return nil, ErrRevokeReasonRequired
	}

	now := time.Now()
	var state *models.SubjectStrikeState

	err := s.strikeRepo.Transaction(ctx, func(tx repositories.StrikeRepository) error {
		record, err := tx.GetRecord(ctx, strikeID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return ErrStrikeNotFound
			}
			return err
		}

		changed, err := tx.RevokeRecord(ctx, strikeID, actor.ID, reason, now)
		if err != nil {
			return err
		}
		if changed == 0 {
			return ErrStrikeAlreadyRevoked
		}

		state, err = s.recomputeState(ctx, tx, record.SubjectID)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Strike %s revoked by %s (subject %s now at %d)",
		strikeID, actor.ID, state.SubjectID, state.StrikeCount)
	return state, nil
}

// ResetResult reports a bulk strike reset
type ResetResult struct {
	SubjectID string `json:"subject_id,omitempty"` // empty on a board-wide reset
	Revoked   int64  `json:"revoked"`
	Subjects  int    `json:"subjects"`
}

// ResetAll revokes every active strike of every subject in one
// transaction and clears each affected standing (semester rollover).
// Idempotent: a second run revokes zero records.
func (s *StrikeService) ResetAll(ctx context.Context, actor domain.Actor, reason string) (*ResetResult, error) {
	if reason == "" {
		return nil, ErrRevokeReasonRequired
	}

	now := time.Now()
	result := &ResetResult{}

	err := s.strikeRepo.Transaction(ctx, func(tx repositories.StrikeRepository) error {
		subjects, err := tx.ListActiveSubjects(ctx)
		if err != nil {
			return err
		}

		revoked, err := tx.RevokeAllActive(ctx, actor.ID, reason, now)
		if err != nil {
			return err
		}
		result.Revoked = revoked
		result.Subjects = len(subjects)

		for _, subjectID := range subjects {
			if _, err := s.recomputeState(ctx, tx, subjectID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🧹 Strike board reset by %s: %d revoked across %d subjects", actor.ID, result.Revoked, result.Subjects)
	return result, nil
}

// ResetSubject revokes every active strike of one subject in one
// transaction. Idempotent: resetting a clean subject revokes zero
// records.
func (s *StrikeService) ResetSubject(ctx context.Context, subjectID string, actor domain.Actor, reason string) (*ResetResult, error) {
	if reason == "" {
		return nil, ErrRevokeReasonRequired
	}

	now := time.Now()
	result := &ResetResult{SubjectID: subjectID}

	err := s.strikeRepo.Transaction(ctx, func(tx repositories.StrikeRepository) error {
		revoked, err := tx.RevokeActiveBySubject(ctx, subjectID, actor.ID, reason, now)
		if err != nil {
			return err
		}
		result.Revoked = revoked
		if revoked > 0 {
			result.Subjects = 1
		}

		_, err = s.recomputeState(ctx, tx, subjectID)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🧹 Strike reset for %s by %s: %d revoked", subjectID, actor.ID, result.Revoked)
	return result, nil
}

// Status returns the subject's derived standing
func (s *StrikeService) Status(ctx context.Context, subjectID string) (*models.SubjectStrikeState, error) {
	return s.strikeRepo.GetState(ctx, subjectID)
}

// AssertEligible fails with a BlacklistError when the subject is
// currently restricted from booking
func (s *StrikeService) AssertEligible(ctx context.Context, subjectID string, now time.Time) error {
	state, err := s.strikeRepo.GetState(ctx, subjectID)
	if err != nil {
		return err
	}
	standing := strikes.SubjectState{StrikeCount: state.StrikeCount, BlacklistUntil: state.BlacklistUntil}
	if standing.Blacklisted(now) {
		return &domain.BlacklistError{
			SubjectID:   subjectID,
			StrikeCount: state.StrikeCount,
			Until:       state.BlacklistUntil,
		}
	}
	return nil
}

// History returns the subject's strike records, optionally including
// revoked ones (full audit view)
func (s *StrikeService) History(ctx context.Context, subjectID string, includeRevoked bool) ([]models.StrikeRecord, error) {
	records, err := s.strikeRepo.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if includeRevoked {
		return records, nil
	}
	active := []models.StrikeRecord{}
	for _, r := range records {
		if r.RevokedAt == nil {
			active = append(active, r)
		}
	}
	return active, nil
}

// ListFlagged returns subjects currently restricted from booking
func (s *StrikeService) ListFlagged(ctx context.Context) ([]models.SubjectStrikeState, error) {
	return s.strikeRepo.ListFlagged(ctx, time.Now())
}

// recomputeState rebuilds the derived standing from the active records
// and persists it. Must run inside the caller's transaction.
func (s *StrikeService) recomputeState(ctx context.Context, tx repositories.StrikeRepository, subjectID string) (*models.SubjectStrikeState, error) {
	active, err := tx.ListActiveBySubject(ctx, subjectID, false)
	if err != nil {
		return nil, err
	}
	derived := strikes.Recompute(models.StrikeRecordsToDomain(active))
	state := &models.SubjectStrikeState{
		SubjectID:      subjectID,
		StrikeCount:    derived.StrikeCount,
		BlacklistUntil: derived.BlacklistUntil,
	}
	return state, tx.SaveState(ctx, state)
}
