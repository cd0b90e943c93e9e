package signing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type memoryRepo struct {
	docs   map[int]*Document
	nextID int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{docs: make(map[int]*Document), nextID: 1}
}

func (r *memoryRepo) Create(ctx context.Context, doc *Document) error {
	doc.ID = r.nextID
	r.nextID++
	copied := *doc
	r.docs[doc.ID] = &copied
	return nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id int) (*Document, error) {
	doc, ok := r.docs[id]
	if !ok {
		return nil, nil
	}
	copied := *doc
	return &copied, nil
}

func (r *memoryRepo) LatestByReservationAndType(ctx context.Context, reservationID, documentType string) (*Document, error) {
	var latest *Document
	for _, doc := range r.docs {
		if doc.ReservationID != reservationID || doc.DocumentType != documentType {
			continue
		}
		if latest == nil || doc.ID > latest.ID {
			latest = doc
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (r *memoryRepo) Update(ctx context.Context, doc *Document) error {
	copied := *doc
	r.docs[doc.ID] = &copied
	return nil
}

func (r *memoryRepo) ListByReservation(ctx context.Context, reservationID string) ([]Document, error) {
	var out []Document
	for id := 1; id < r.nextID; id++ {
		doc, ok := r.docs[id]
		if ok && doc.ReservationID == reservationID {
			out = append(out, *doc)
		}
	}
	return out, nil
}

type sentSMS struct {
	to   string
	body string
}

func newTestService(repo *memoryRepo, sent *[]sentSMS) *Service {
	sender := func(to, body string) error {
		*sent = append(*sent, sentSMS{to: to, body: body})
		return nil
	}
	return NewService(repo, sender)
}

func TestRequestCodeSendsFourDigitSMS(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	var sent []sentSMS
	svc := newTestService(repo, &sent)

	doc, err := svc.RequestCode(ctx, "res-1", "contract", json.RawMessage(`{"v":1}`), "+48123456789")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Status != StatusCodeRequested {
		t.Fatalf("expected status code_requested, got %q", doc.Status)
	}
	if !validCode(doc.Code) {
		t.Fatalf("expected 4-digit code, got %q", doc.Code)
	}
	if len(sent) != 1 || sent[0].to != "+48123456789" {
		t.Fatalf("expected one SMS to the given phone, got %+v", sent)
	}
}

func TestRequestCodeBlockedAfterSigning(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	var sent []sentSMS
	svc := newTestService(repo, &sent)

	doc, err := svc.RequestCode(ctx, "res-1", "contract", nil, "+48111222333")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.VerifyCode(ctx, doc.ID, repo.docs[doc.ID].Code); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.RequestCode(ctx, "res-1", "contract", nil, "+48111222333"); !errors.Is(err, ErrSigningBlocked) {
		t.Fatalf("expected ErrSigningBlocked, got %v", err)
	}
	// A different document type for the same reservation is unaffected.
	if _, err := svc.RequestCode(ctx, "res-1", "qualification_card", nil, "+48111222333"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequestCodeAllowedAfterRejection(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	var sent []sentSMS
	svc := newTestService(repo, &sent)

	doc, err := svc.RequestCode(ctx, "res-1", "contract", nil, "+48111222333")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo.docs[doc.ID].Status = StatusRejected

	if _, err := svc.RequestCode(ctx, "res-1", "contract", nil, "+48111222333"); err != nil {
		t.Fatalf("expected rejected document to permit re-signing, got %v", err)
	}
}

func TestResendCooldown(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	var sent []sentSMS
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	svc := newTestService(repo, &sent).WithClock(func() time.Time { return now })

	doc, err := svc.RequestCode(ctx, "res-1", "contract", nil, "+48111222333")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now = base.Add(30 * time.Second)
	if err := svc.ResendCode(ctx, doc.ID); !errors.Is(err, ErrResendCooldown) {
		t.Fatalf("expected ErrResendCooldown, got %v", err)
	}

	now = base.Add(61 * time.Second)
	if err := svc.ResendCode(ctx, doc.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sent) != 2 {
		t.Fatalf("expected 2 SMS dispatches, got %d", len(sent))
	}

	// The cooldown timer resets from the resend, not the original request.
	now = base.Add(90 * time.Second)
	if err := svc.ResendCode(ctx, doc.ID); !errors.Is(err, ErrResendCooldown) {
		t.Fatalf("expected cooldown to restart after resend, got %v", err)
	}
}

func TestVerifyCodeValidation(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	var sent []sentSMS
	svc := newTestService(repo, &sent)

	doc, err := svc.RequestCode(ctx, "res-1", "contract", nil, "+48111222333")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, bad := range []string{"", "12", "12345", "12a4", "١٢٣٤"} {
		if _, err := svc.VerifyCode(ctx, doc.ID, bad); !errors.Is(err, ErrMalformedCode) {
			t.Fatalf("expected ErrMalformedCode for %q, got %v", bad, err)
		}
	}

	wrong := "0000"
	if repo.docs[doc.ID].Code == "0000" {
		wrong = "0001"
	}
	if _, err := svc.VerifyCode(ctx, doc.ID, wrong); !errors.Is(err, ErrCodeMismatch) {
		t.Fatalf("expected ErrCodeMismatch, got %v", err)
	}
	// A mismatch leaves the document pending; the right code still works.
	signed, err := svc.VerifyCode(ctx, doc.ID, repo.docs[doc.ID].Code)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if signed.Status != StatusSigned || signed.SignedAt == nil {
		t.Fatalf("expected signed document with timestamp, got %+v", signed)
	}

	if _, err := svc.VerifyCode(ctx, doc.ID, signed.Code); !errors.Is(err, ErrNotRequested) {
		t.Fatalf("expected ErrNotRequested on double verify, got %v", err)
	}
	if _, err := svc.VerifyCode(ctx, 999, "1234"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAvailableAction(t *testing.T) {
	cases := []struct {
		status Status
		want   string
	}{
		{StatusUnsigned, "sign"},
		{Status(""), "sign"},
		{StatusRejected, "sign_again"},
		{StatusCodeRequested, ""},
		{StatusSigned, ""},
		{StatusInVerification, ""},
		{StatusAccepted, ""},
	}
	for _, c := range cases {
		if got := AvailableAction(c.status); got != c.want {
			t.Fatalf("AvailableAction(%q) = %q, want %q", c.status, got, c.want)
		}
	}
}

func TestDocumentsForReservationCarriesActions(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	var sent []sentSMS
	svc := newTestService(repo, &sent)

	doc, err := svc.RequestCode(ctx, "res-1", "contract", nil, "+48111222333")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo.docs[doc.ID].Status = StatusRejected

	views, err := svc.DocumentsForReservation(ctx, "res-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 document, got %d", len(views))
	}
	if views[0].AvailableAction != "sign_again" {
		t.Fatalf("expected sign_again, got %q", views[0].AvailableAction)
	}
}
