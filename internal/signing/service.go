package signing

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"
)

type Status string

const (
	StatusUnsigned       Status = "unsigned"
	StatusCodeRequested  Status = "code_requested"
	StatusSigned         Status = "signed"
	StatusInVerification Status = "in_verification"
	StatusAccepted       Status = "accepted"
	StatusRejected       Status = "rejected"
)

const (
	codeLength     = 4
	resendCooldown = 60 * time.Second
)

var (
	// ErrSigningBlocked: the latest document for this (reservation, type) is
	// signed, under review, or accepted; only rejected permits a new request.
	ErrSigningBlocked = errors.New("signing: document already signed or under verification")
	ErrResendCooldown = errors.New("signing: resend requested before cooldown elapsed")
	ErrMalformedCode  = errors.New("signing: code must be exactly 4 digits")
	ErrCodeMismatch   = errors.New("signing: code does not match")
	ErrNotRequested   = errors.New("signing: no pending code for this document")
	ErrNotFound       = errors.New("signing: document not found")
)

// Document is one legal document (contract, qualification card) going through
// the SMS e-signature flow for a reservation. Payload is snapshotted when the
// code is requested, so the signed content is fixed before the user types the
// code in.
type Document struct {
	ID              int             `json:"id"`
	ReservationID   string          `json:"reservation_id"`
	DocumentType    string          `json:"document_type"`
	Payload         json.RawMessage `json:"payload,omitempty"`
	Phone           string          `json:"-"`
	Code            string          `json:"-"`
	Status          Status          `json:"status"`
	CodeRequestedAt time.Time       `json:"code_requested_at"`
	SignedAt        *time.Time      `json:"signed_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Repository persists signing documents. LatestByReservationAndType returns
// nil, nil when the document type was never requested for the reservation.
type Repository interface {
	Create(ctx context.Context, doc *Document) error
	GetByID(ctx context.Context, id int) (*Document, error)
	LatestByReservationAndType(ctx context.Context, reservationID, documentType string) (*Document, error)
	Update(ctx context.Context, doc *Document) error
	ListByReservation(ctx context.Context, reservationID string) ([]Document, error)
}

// SMSSender dispatches the one-time code out-of-band. Twilio in production.
type SMSSender func(to, body string) error

type Service struct {
	repo    Repository
	sendSMS SMSSender
	now     func() time.Time
}

func NewService(repo Repository, sender SMSSender) *Service {
	return &Service{repo: repo, sendSMS: sender, now: time.Now}
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RequestCode starts (or restarts) a signature for a document type. The guard
// checks the latest known status first: signed, in_verification and accepted
// block; only rejected (or no prior document) allows signing again.
func (s *Service) RequestCode(ctx context.Context, reservationID, documentType string, payload json.RawMessage, phone string) (*Document, error) {
	latest, err := s.repo.LatestByReservationAndType(ctx, reservationID, documentType)
	if err != nil {
		return nil, fmt.Errorf("signing: checking latest document: %w", err)
	}
	if latest != nil {
		switch latest.Status {
		case StatusSigned, StatusInVerification, StatusAccepted:
			return nil, ErrSigningBlocked
		}
	}

	code, err := generateCode()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	doc := &Document{
		ReservationID:   reservationID,
		DocumentType:    documentType,
		Payload:         payload,
		Phone:           phone,
		Code:            code,
		Status:          StatusCodeRequested,
		CodeRequestedAt: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("signing: storing document: %w", err)
	}
	if err := s.sendSMS(phone, smsBody(documentType, code)); err != nil {
		return nil, fmt.Errorf("signing: dispatching code: %w", err)
	}
	return doc, nil
}

// ResendCode issues a fresh code for a pending document. Allowed once the 60 s
// cooldown from the previous dispatch has elapsed; the cooldown timer resets.
func (s *Service) ResendCode(ctx context.Context, documentID int) error {
	doc, err := s.repo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrNotFound
	}
	if doc.Status != StatusCodeRequested {
		return ErrNotRequested
	}
	now := s.now().UTC()
	if now.Sub(doc.CodeRequestedAt) < resendCooldown {
		return ErrResendCooldown
	}
	code, err := generateCode()
	if err != nil {
		return err
	}
	doc.Code = code
	doc.CodeRequestedAt = now
	doc.UpdatedAt = now
	if err := s.repo.Update(ctx, doc); err != nil {
		return fmt.Errorf("signing: storing resent code: %w", err)
	}
	if err := s.sendSMS(doc.Phone, smsBody(doc.DocumentType, code)); err != nil {
		return fmt.Errorf("signing: dispatching resent code: %w", err)
	}
	return nil
}

// VerifyCode checks the submitted code against the pending one. A mismatch
// keeps the document in code_requested; a match flips it to signed.
func (s *Service) VerifyCode(ctx context.Context, documentID int, code string) (*Document, error) {
	if !validCode(code) {
		return nil, ErrMalformedCode
	}
	doc, err := s.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	if doc.Status != StatusCodeRequested {
		return nil, ErrNotRequested
	}
	if doc.Code != code {
		return nil, ErrCodeMismatch
	}
	now := s.now().UTC()
	doc.Status = StatusSigned
	doc.SignedAt = &now
	doc.UpdatedAt = now
	if err := s.repo.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("signing: storing signature: %w", err)
	}
	return doc, nil
}

// DocumentView is a document plus the sign action the UI may offer for it.
type DocumentView struct {
	Document
	AvailableAction string `json:"available_action,omitempty"`
}

func (s *Service) DocumentsForReservation(ctx context.Context, reservationID string) ([]DocumentView, error) {
	docs, err := s.repo.ListByReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	views := make([]DocumentView, 0, len(docs))
	for _, d := range docs {
		views = append(views, DocumentView{Document: d, AvailableAction: AvailableAction(d.Status)})
	}
	return views, nil
}

// AvailableAction maps the latest known status to the sign affordance:
// a first-time "sign", a distinctly labeled "sign_again" after rejection, or
// nothing at all.
func AvailableAction(status Status) string {
	switch status {
	case StatusUnsigned, "":
		return "sign"
	case StatusRejected:
		return "sign_again"
	default:
		return ""
	}
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("signing: generating code: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

func validCode(code string) bool {
	if len(code) != codeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func smsBody(documentType, code string) string {
	return fmt.Sprintf("Obozy: kod do podpisu dokumentu (%s): %s", documentType, code)
}
