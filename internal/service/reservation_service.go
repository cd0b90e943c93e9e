package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"

	"obozy/internal/db"
	"obozy/internal/entities"
	"obozy/internal/repository"
	"obozy/internal/wizard"
)

const (
	statusPending = "pending"
	statusCancel  = "canceled"

	// The checkout collects a deposit, not the full price; the remainder is
	// settled by bank transfer before the camp starts.
	depositRate = 0.3

	reservationCodeAttempts = 3
)

// generateReservationCode returns 8 hex characters of randomness. Guardians
// quote the code over the phone, so it stays short; collisions are caught by
// the unique index and retried.
func generateReservationCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating reservation code: %w", err)
	}
	return fmt.Sprintf("%X", b), nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

type ReservationService struct {
	Repo          *repository.ReservationRepository
	stripeService *StripeService
}

func NewReservationService(repo *repository.ReservationRepository, stripeService *StripeService) *ReservationService {
	return &ReservationService{
		Repo:          repo,
		stripeService: stripeService,
	}
}

// SubmitWizard finalizes a wizard session: all section validators must pass,
// the priced line items become the reservation total, a Stripe checkout is
// opened for the deposit and confirmations go out asynchronously.
func (s *ReservationService) SubmitWizard(session *wizard.Session, req *entities.SubmitRequest) (*entities.SubmitResponse, error) {
	if ok, failed := session.Validate(); !ok {
		return nil, &entities.ValidationError{Section: failed}
	}

	total := req.BasePrice + session.Total()
	deposit := int64(total * depositRate * 100)
	if deposit < 0 {
		return nil, fmt.Errorf("reservation total %0.2f is negative, refusing to submit", total)
	}

	reservation := &db.Reservation{
		SessionID:       session.ID,
		CampID:          req.CampID,
		PropertyID:      req.PropertyID,
		ParticipantName: req.ParticipantName,
		GuardianName:    req.GuardianName,
		Email:           req.Email,
		Phone:           req.Phone,
		TotalPrice:      total,
		Status:          statusPending,
		PaymentStatus:   statusPending,
		Language:        req.Language,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}

	var err error
	for attempt := 0; attempt < reservationCodeAttempts; attempt++ {
		var code string
		code, err = generateReservationCode()
		if err != nil {
			return nil, err
		}
		reservation.Code = code
		if err = s.Repo.CreateReservation(reservation); err == nil {
			break
		}
		if !isUniqueViolation(err) {
			log.Printf("Error creating reservation in repository: %v", err)
			return nil, err
		}
	}
	if err != nil {
		return nil, fmt.Errorf("allocating a unique reservation code: %w", err)
	}

	// Unpaid rows left behind by a failed checkout are swept by the
	// abandoned-reservation cleanup job.
	checkoutURL, stripeSessionID, err := s.stripeService.CreateCheckoutSession(
		deposit, "pln", fmt.Sprintf("Zaliczka za rezerwacje %s", reservation.Code), req.Email)
	if err != nil {
		return nil, fmt.Errorf("opening checkout for reservation %s: %w", reservation.Code, err)
	}
	reservation.StripeSessionID = stripeSessionID
	if err := s.Repo.SetStripeSessionID(reservation.ID, stripeSessionID); err != nil {
		return nil, fmt.Errorf("attaching checkout session to reservation %s: %w", reservation.Code, err)
	}

	s.sendConfirmations(reservation, session)

	return &entities.SubmitResponse{
		Code:        reservation.Code,
		Total:       total,
		CheckoutURL: checkoutURL,
	}, nil
}

// ConfirmPayment is called from the checkout webhook once the deposit is
// paid. It records the PaymentIntent id for later refund matching and sends
// the paid confirmation to the guardian.
func (s *ReservationService) ConfirmPayment(stripeSessionID, paymentIntentID string) error {
	err := s.Repo.UpdatePaymentStatusAndIntentBySessionID(stripeSessionID, "succeeded", "confirmed", paymentIntentID)
	if err != nil {
		return err
	}
	reservation, err := s.Repo.GetReservationByStripeSessionID(stripeSessionID)
	if err != nil {
		return err
	}
	if reservation == nil {
		return fmt.Errorf("no reservation for checkout session %s", stripeSessionID)
	}

	go func(email, name, code string) {
		subject := fmt.Sprintf("Zaliczka za rezerwacje %s oplacona", code)
		body := fmt.Sprintf("Witaj %s,\n\nZaliczka za rezerwacje %s zostala zaksiegowana. Rezerwacja jest potwierdzona.\n\nObozy", name, code)
		if err := SendEmailWithSendGrid(email, name, subject, body, ""); err != nil {
			log.Printf("WARNING (async): payment confirmation email for reservation %s failed: %v", code, err)
		}
	}(reservation.Email, reservation.GuardianName, reservation.Code)
	return nil
}

func (s *ReservationService) SessionIDByPaymentIntentID(paymentIntentID string) (string, error) {
	return s.Repo.GetSessionIDByPaymentIntentID(paymentIntentID)
}

// MarkRefunded flags a reservation refunded and canceled after Stripe reports
// the charge was refunded.
func (s *ReservationService) MarkRefunded(stripeSessionID string) error {
	return s.Repo.UpdatePaymentStatusBySessionID(stripeSessionID, "refunded", statusCancel)
}

func (s *ReservationService) GetReservationByCode(code string) (*db.Reservation, error) {
	return s.Repo.GetReservationByCode(code)
}

func (s *ReservationService) ListReservations(campID, status, date string) ([]db.Reservation, error) {
	return s.Repo.ListReservations(campID, status, date)
}

func (s *ReservationService) GetReservationByID(id int) (*db.Reservation, error) {
	return s.Repo.GetReservationByID(id)
}

// CancelReservation refunds the deposit and marks the reservation canceled.
func (s *ReservationService) CancelReservation(id int) error {
	reservation, err := s.Repo.GetReservationByID(id)
	if err != nil {
		return err
	}
	if reservation == nil {
		return fmt.Errorf("reservation %d not found", id)
	}
	if reservation.StripeSessionID != "" && reservation.PaymentStatus != statusPending {
		if err := s.stripeService.RefundPaymentBySessionID(reservation.StripeSessionID); err != nil {
			return err
		}
	}
	if err := s.Repo.UpdateReservationStatus(id, statusCancel); err != nil {
		return err
	}

	go func(email, name, code string) {
		subject := fmt.Sprintf("Rezerwacja %s zostala anulowana", code)
		body := fmt.Sprintf("Witaj %s,\n\nTwoja rezerwacja %s zostala anulowana. Zaliczka zostanie zwrocona.\n\nObozy", name, code)
		if err := SendEmailWithSendGrid(email, name, subject, body, ""); err != nil {
			log.Printf("WARNING (async): cancellation email for reservation %s failed: %v", code, err)
		}
	}(reservation.Email, reservation.GuardianName, reservation.Code)
	return nil
}

func (s *ReservationService) sendConfirmations(reservation *db.Reservation, session *wizard.Session) {
	var lines string
	for _, item := range session.Items() {
		lines += fmt.Sprintf("- %s: %.2f PLN\n", item.Name, item.Price)
	}
	subject := fmt.Sprintf("Potwierdzenie rezerwacji %s", reservation.Code)
	body := fmt.Sprintf(
		"Witaj %s,\n\nDziekujemy za rezerwacje %s dla %s.\n\nWybrane pozycje:\n%s\nLaczna kwota: %.2f PLN\n\nObozy",
		reservation.GuardianName, reservation.Code, reservation.ParticipantName, lines, reservation.TotalPrice,
	)

	go func() {
		if err := SendEmailWithSendGrid(reservation.Email, reservation.GuardianName, subject, body, ""); err != nil {
			log.Printf("WARNING (async): confirmation email for reservation %s failed: %v", reservation.Code, err)
		}
	}()

	sms := fmt.Sprintf("Obozy: rezerwacja %s przyjeta. Kwota: %.2f PLN. Szczegoly w emailu.",
		reservation.Code, reservation.TotalPrice)
	if err := SendSMS(reservation.Phone, sms); err != nil {
		log.Printf("WARNING: reservation %s created but confirmation SMS to %s failed: %v",
			reservation.Code, reservation.Phone, err)
	}
}
