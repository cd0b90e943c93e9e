package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"obozy/internal/repository"
)

const (
	staleSigningCodeHours    = 24
	abandonedReservationTime = 48 * time.Hour
)

type JobService struct {
	Repo *repository.JobRepository
}

func NewJobService(repo *repository.JobRepository) *JobService {
	return &JobService{Repo: repo}
}

// ExpireStaleSigningCodes pushes signature requests whose SMS code was never
// verified back to unsigned so the documents can be signed again later.
func (s *JobService) ExpireStaleSigningCodes(ctx context.Context) error {
	count, err := s.Repo.ExpireStaleSigningCodes(ctx, staleSigningCodeHours)
	if err != nil {
		return fmt.Errorf("cron job: failed to expire stale signing codes: %w", err)
	}
	if count > 0 {
		log.Printf("Cron Job: expired %d stale signing codes.", count)
	}
	return nil
}

// CancelAbandonedReservations cancels reservations whose deposit was never
// paid within the grace window.
func (s *JobService) CancelAbandonedReservations() error {
	before := time.Now().UTC().Add(-abandonedReservationTime)
	count, err := s.Repo.CancelAbandonedReservations(before)
	if err != nil {
		return fmt.Errorf("cron job: failed to cancel abandoned reservations: %w", err)
	}
	if count > 0 {
		log.Printf("Cron Job: canceled %d abandoned pending reservations.", count)
	}
	return nil
}
