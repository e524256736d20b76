package services

import (
	"context"
	"log"
	"time"

	"gearbook-backend/internal/adapters/persistence/repositories"
	"gearbook-backend/internal/core/domain"
)

// ============================================================
// Background sweeps: activation + overdue detection
// ============================================================

// ReservationAutoService runs background goroutines that move
// reservations along the clock-driven transitions: approved→active when
// the range starts, active→overdue when the effective end passes.
type ReservationAutoService struct {
	reservationRepo repositories.ReservationRepository
	notifier        Notifier
	sweepInterval   time.Duration
	stopChan        chan struct{}
}

// NewReservationAutoService creates a new auto service
func NewReservationAutoService(reservationRepo repositories.ReservationRepository, notifier Notifier) *ReservationAutoService {
	return &ReservationAutoService{
		reservationRepo: reservationRepo,
		notifier:        notifier,
		sweepInterval:   5 * time.Minute,
		stopChan:        make(chan struct{}),
	}
}

// Start launches the sweep goroutine
func (s *ReservationAutoService) Start() {
	log.Println("🚀 ReservationAutoService started")
	go s.runSweepLoop()
}

// Stop gracefully stops the sweep goroutine
func (s *ReservationAutoService) Stop() {
	close(s.stopChan)
	log.Println("🛑 ReservationAutoService stopped")
}

func (s *ReservationAutoService) runSweepLoop() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	// One sweep at startup so a restart catches up immediately.
	s.Sweep(context.Background(), time.Now())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background(), time.Now())
		case <-s.stopChan:
			return
		}
	}
}

// Sweep runs both clock-driven passes once. Exported so the cron job
// and tests can drive it with a fixed time.
func (s *ReservationAutoService) Sweep(ctx context.Context, now time.Time) {
	s.activateStarted(ctx, now)
	s.flagOverdue(ctx, now)
}

// activateStarted moves approved reservations whose range has started
func (s *ReservationAutoService) activateStarted(ctx context.Context, now time.Time) {
	due, err := s.reservationRepo.ListDueForActivation(ctx, now)
	if err != nil {
		log.Printf("❌ Activation sweep query error: %v", err)
		return
	}

	activated := 0
	for _, r := range due {
		updates := map[string]interface{}{
			"status": string(domain.StatusActive),
		}
		if err := s.reservationRepo.UpdateStatus(ctx, r.ID, updates); err != nil {
			log.Printf("❌ Activate reservation %s error: %v", r.ID, err)
			continue
		}
		activated++
	}

	if activated > 0 {
		log.Printf("✅ Activated %d started reservations", activated)
	}
}

// flagOverdue moves active reservations past their effective end
func (s *ReservationAutoService) flagOverdue(ctx context.Context, now time.Time) {
	overdue, err := s.reservationRepo.ListOverdue(ctx, now)
	if err != nil {
		log.Printf("❌ Overdue sweep query error: %v", err)
		return
	}

	flagged := 0
	today := domain.Midnight(now)
	for _, r := range overdue {
		updates := map[string]interface{}{
			"status": string(domain.StatusOverdue),
		}
		if err := s.reservationRepo.UpdateStatus(ctx, r.ID, updates); err != nil {
			log.Printf("❌ Flag overdue reservation %s error: %v", r.ID, err)
			continue
		}
		flagged++

		if s.notifier != nil {
			daysOverdue := domain.DaysBetween(domain.Midnight(r.EndDate), today)
			s.notifier.NotifyOverdue(r.ToDomain(), r.Resource.Name, daysOverdue)
		}
	}

	if flagged > 0 {
		log.Printf("🚨 Flagged %d overdue reservations", flagged)
	}
}
