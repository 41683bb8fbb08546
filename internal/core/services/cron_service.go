package services

import (
	"context"
	"log"
	"time"

	"insureadmin/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CronService runs the nightly maintenance jobs
type CronService struct {
	cron             *cron.Cron
	enrollmentRepo   repositories.EnrollmentRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	notifier         *NotificationService
}

// NewCronService creates a new cron service
func NewCronService(
	enrollmentRepo repositories.EnrollmentRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	notifier *NotificationService,
) *CronService {
	return &CronService{
		cron:             cron.New(),
		enrollmentRepo:   enrollmentRepo,
		refreshTokenRepo: refreshTokenRepo,
		notifier:         notifier,
	}
}

// Start registers and starts the scheduled jobs
func (s *CronService) Start() error {
	// 00:05 daily: lapse enrollments whose policy term has ended
	if _, err := s.cron.AddFunc("5 0 * * *", s.lapseExpiredEnrollments); err != nil {
		return err
	}

	// 01:00 daily: purge expired refresh tokens
	if _, err := s.cron.AddFunc("0 1 * * *", s.purgeExpiredTokens); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("⏰ Cron jobs started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("⏰ Cron jobs stopped")
}

func (s *CronService) lapseExpiredEnrollments() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	affected, err := s.enrollmentRepo.LapseExpired(ctx)
	if err != nil {
		log.Printf("⚠️ Lapse job failed: %v", err)
		return
	}
	if affected > 0 {
		log.Printf("✅ Lapsed %d expired enrollments", affected)
		s.notifier.Notify("lapse", "Nightly lapse run marked enrollments as lapsed")
	}
}

func (s *CronService) purgeExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.refreshTokenRepo.DeleteExpired(ctx); err != nil {
		log.Printf("⚠️ Token purge failed: %v", err)
		return
	}
	log.Println("✅ Expired refresh tokens purged")
}
