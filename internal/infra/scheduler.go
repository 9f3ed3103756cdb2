package infra

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"papertrade/internal/service"
)

// Scheduler manages the background session purge
type Scheduler struct {
	cron     *cron.Cron
	sessions *service.SessionService
}

// NewScheduler creates a new scheduler
func NewScheduler(sessions *service.SessionService) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		sessions: sessions,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("@hourly", func() {
		ctx := context.Background()
		if err := s.sessions.PurgeExpired(ctx); err != nil {
			log.Printf("ERROR: Session purge failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Println("[OK] Scheduler started (session purge @hourly)")
	return nil
}

// Stop stops the scheduler gracefully
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[OK] Scheduler stopped")
}
