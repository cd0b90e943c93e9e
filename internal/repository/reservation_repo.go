package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"obozy/internal/db"
)

type ReservationRepository struct {
	DB *sql.DB
}

func NewReservationRepository(database *sql.DB) *ReservationRepository {
	return &ReservationRepository{DB: database}
}

func (r *ReservationRepository) CreateReservation(res *db.Reservation) error {
	query := `
	INSERT INTO reservations
		(code, session_id, camp_id, property_id, participant_name, guardian_name, email, phone,
		 total_price, status, payment_status, stripe_session_id, language, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	RETURNING id`
	return r.DB.QueryRow(query,
		res.Code, res.SessionID, res.CampID, res.PropertyID, res.ParticipantName, res.GuardianName,
		res.Email, res.Phone, res.TotalPrice, res.Status, res.PaymentStatus, res.StripeSessionID,
		res.Language, res.CreatedAt, res.UpdatedAt,
	).Scan(&res.ID)
}

// SetStripeSessionID attaches the checkout session opened for a reservation
// after its row exists.
func (r *ReservationRepository) SetStripeSessionID(id int, stripeSessionID string) error {
	_, err := r.DB.Exec(
		`UPDATE reservations SET stripe_session_id = $2, updated_at = NOW() WHERE id = $1`,
		id, stripeSessionID)
	return err
}

// ListReservations supports the admin panel's filters. Empty filter values
// are skipped.
func (r *ReservationRepository) ListReservations(campID, status, date string) ([]db.Reservation, error) {
	query := `
	SELECT id, code, session_id, camp_id, property_id, participant_name, guardian_name, email, phone,
	       total_price, status, payment_status, COALESCE(stripe_session_id, ''), language, created_at, updated_at
	FROM reservations
	WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if campID != "" {
		query += " AND camp_id = $" + strconv.Itoa(idx)
		args = append(args, campID)
		idx++
	}
	if status != "" {
		query += " AND status = $" + strconv.Itoa(idx)
		args = append(args, status)
		idx++
	}
	if date != "" {
		query += " AND DATE(created_at) = $" + strconv.Itoa(idx)
		args = append(args, date)
		idx++
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []db.Reservation
	for rows.Next() {
		var res db.Reservation
		err := rows.Scan(
			&res.ID, &res.Code, &res.SessionID, &res.CampID, &res.PropertyID, &res.ParticipantName,
			&res.GuardianName, &res.Email, &res.Phone, &res.TotalPrice, &res.Status, &res.PaymentStatus,
			&res.StripeSessionID, &res.Language, &res.CreatedAt, &res.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

func (r *ReservationRepository) GetReservationByID(id int) (*db.Reservation, error) {
	var res db.Reservation
	err := r.DB.QueryRow(`
	SELECT id, code, session_id, camp_id, property_id, participant_name, guardian_name, email, phone,
	       total_price, status, payment_status, COALESCE(stripe_session_id, ''), language, created_at, updated_at
	FROM reservations WHERE id = $1`, id).Scan(
		&res.ID, &res.Code, &res.SessionID, &res.CampID, &res.PropertyID, &res.ParticipantName,
		&res.GuardianName, &res.Email, &res.Phone, &res.TotalPrice, &res.Status, &res.PaymentStatus,
		&res.StripeSessionID, &res.Language, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying reservation %d: %w", id, err)
	}
	return &res, nil
}

func (r *ReservationRepository) GetReservationByCode(code string) (*db.Reservation, error) {
	var res db.Reservation
	err := r.DB.QueryRow(`
	SELECT id, code, session_id, camp_id, property_id, participant_name, guardian_name, email, phone,
	       total_price, status, payment_status, COALESCE(stripe_session_id, ''), language, created_at, updated_at
	FROM reservations WHERE code = $1`, code).Scan(
		&res.ID, &res.Code, &res.SessionID, &res.CampID, &res.PropertyID, &res.ParticipantName,
		&res.GuardianName, &res.Email, &res.Phone, &res.TotalPrice, &res.Status, &res.PaymentStatus,
		&res.StripeSessionID, &res.Language, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying reservation %s: %w", code, err)
	}
	return &res, nil
}

func (r *ReservationRepository) UpdateReservationStatus(id int, status string) error {
	_, err := r.DB.Exec(
		`UPDATE reservations SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (r *ReservationRepository) UpdatePaymentStatusBySessionID(stripeSessionID, paymentStatus, status string) error {
	_, err := r.DB.Exec(
		`UPDATE reservations SET payment_status = $2, status = $3, updated_at = NOW() WHERE stripe_session_id = $1`,
		stripeSessionID, paymentStatus, status)
	return err
}

// UpdatePaymentStatusAndIntentBySessionID additionally records the
// PaymentIntent id so refund webhooks can be matched back to the reservation.
func (r *ReservationRepository) UpdatePaymentStatusAndIntentBySessionID(stripeSessionID, paymentStatus, status, paymentIntentID string) error {
	_, err := r.DB.Exec(
		`UPDATE reservations
		 SET payment_status = $2, status = $3, payment_intent_id = $4, updated_at = NOW()
		 WHERE stripe_session_id = $1`,
		stripeSessionID, paymentStatus, status, paymentIntentID)
	return err
}

func (r *ReservationRepository) GetSessionIDByPaymentIntentID(paymentIntentID string) (string, error) {
	var sessionID string
	err := r.DB.QueryRow(
		`SELECT stripe_session_id FROM reservations WHERE payment_intent_id = $1`,
		paymentIntentID).Scan(&sessionID)
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

func (r *ReservationRepository) GetReservationByStripeSessionID(stripeSessionID string) (*db.Reservation, error) {
	var res db.Reservation
	err := r.DB.QueryRow(`
	SELECT id, code, session_id, camp_id, property_id, participant_name, guardian_name, email, phone,
	       total_price, status, payment_status, COALESCE(stripe_session_id, ''), language, created_at, updated_at
	FROM reservations WHERE stripe_session_id = $1`, stripeSessionID).Scan(
		&res.ID, &res.Code, &res.SessionID, &res.CampID, &res.PropertyID, &res.ParticipantName,
		&res.GuardianName, &res.Email, &res.Phone, &res.TotalPrice, &res.Status, &res.PaymentStatus,
		&res.StripeSessionID, &res.Language, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying reservation for checkout session %s: %w", stripeSessionID, err)
	}
	return &res, nil
}

// CancelPendingOlderThan cancels reservations still pending after the cutoff,
// used by the cleanup cron.
func (r *ReservationRepository) CancelPendingOlderThan(before time.Time) (int64, error) {
	result, err := r.DB.Exec(
		`UPDATE reservations SET status = 'canceled', updated_at = NOW()
		 WHERE status = 'pending' AND created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("error canceling pending reservations: %w", err)
	}
	return result.RowsAffected()
}
