package repository

import (
	"context"
	"database/sql"
	"time"
)

// JobRepository groups the queries the background cron jobs run.
type JobRepository struct {
	Reservations *ReservationRepository
	Signing      *SigningRepository
}

func NewJobRepository(database *sql.DB) *JobRepository {
	return &JobRepository{
		Reservations: NewReservationRepository(database),
		Signing:      NewSigningRepository(database),
	}
}

func (r *JobRepository) CancelAbandonedReservations(before time.Time) (int64, error) {
	return r.Reservations.CancelPendingOlderThan(before)
}

func (r *JobRepository) ExpireStaleSigningCodes(ctx context.Context, olderThanHours int) (int64, error) {
	return r.Signing.ExpireStaleCodes(ctx, olderThanHours)
}
