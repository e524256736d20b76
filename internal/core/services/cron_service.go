package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"gearbook-backend/internal/adapters/persistence/repositories"
)

// CronService schedules the daily jobs: morning return reminders plus a
// catch-up sweep for anything the interval loop missed overnight.
type CronService struct {
	reservationRepo repositories.ReservationRepository
	autoService     *ReservationAutoService
	notifier        Notifier
	scheduler       *cron.Cron
}

// NewCronService creates a new cron service
func NewCronService(
	reservationRepo repositories.ReservationRepository,
	autoService *ReservationAutoService,
	notifier Notifier,
) *CronService {
	return &CronService{
		reservationRepo: reservationRepo,
		autoService:     autoService,
		notifier:        notifier,
		scheduler:       cron.New(),
	}
}

// Start registers and launches the scheduled jobs
func (s *CronService) Start() error {
	// 08:30 every day: remind requesters whose return is due today.
	if _, err := s.scheduler.AddFunc("30 8 * * *", s.sendReturnReminders); err != nil {
		return err
	}

	// Midnight: clock-driven transitions catch up right at the day edge.
	if _, err := s.scheduler.AddFunc("0 0 * * *", s.runNightlySweep); err != nil {
		return err
	}

	s.scheduler.Start()
	log.Println("🚀 CronService started (reminders 08:30, sweep 00:00)")
	return nil
}

// Stop halts the scheduler, waiting for a running job to finish
func (s *CronService) Stop() {
	ctx := s.scheduler.Stop()
	<-ctx.Done()
	log.Println("🛑 CronService stopped")
}

func (s *CronService) sendReturnReminders() {
	ctx := context.Background()
	now := time.Now()

	due, err := s.reservationRepo.ListEndingOn(ctx, now)
	if err != nil {
		log.Printf("❌ Reminder query error: %v", err)
		return
	}

	sent := 0
	for _, r := range due {
		if s.notifier != nil {
			s.notifier.NotifyReturnReminder(r.ToDomain(), r.Resource.Name)
		}
		if err := s.reservationRepo.MarkReminderSent(ctx, r.ID); err != nil {
			log.Printf("❌ Mark reminder sent for %s error: %v", r.ID, err)
			continue
		}
		sent++
	}

	if sent > 0 {
		log.Printf("📅 Sent %d return reminders", sent)
	}
}

func (s *CronService) runNightlySweep() {
	if s.autoService != nil {
		s.autoService.Sweep(context.Background(), time.Now())
	}
}
