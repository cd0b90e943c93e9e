package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"obozy/internal/signing"
)

// SigningRepository persists signed documents and their SMS-code state.
type SigningRepository struct {
	DB *sql.DB
}

func NewSigningRepository(database *sql.DB) *SigningRepository {
	return &SigningRepository{DB: database}
}

const signingColumns = `id, reservation_id, document_type, payload, phone, code, status,
	code_requested_at, signed_at, created_at, updated_at`

func (r *SigningRepository) Create(ctx context.Context, doc *signing.Document) error {
	query := `
	INSERT INTO signed_documents
		(reservation_id, document_type, payload, phone, code, status, code_requested_at, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id`
	return r.DB.QueryRowContext(ctx, query,
		doc.ReservationID, doc.DocumentType, []byte(doc.Payload), doc.Phone, doc.Code,
		string(doc.Status), doc.CodeRequestedAt, doc.CreatedAt, doc.UpdatedAt,
	).Scan(&doc.ID)
}

func (r *SigningRepository) GetByID(ctx context.Context, id int) (*signing.Document, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+signingColumns+` FROM signed_documents WHERE id = $1`, id)
	return scanSigningDocument(row)
}

func (r *SigningRepository) LatestByReservationAndType(ctx context.Context, reservationID, documentType string) (*signing.Document, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+signingColumns+` FROM signed_documents
		 WHERE reservation_id = $1 AND document_type = $2
		 ORDER BY created_at DESC LIMIT 1`,
		reservationID, documentType)
	return scanSigningDocument(row)
}

func (r *SigningRepository) Update(ctx context.Context, doc *signing.Document) error {
	_, err := r.DB.ExecContext(ctx, `
	UPDATE signed_documents
	SET code = $2, status = $3, code_requested_at = $4, signed_at = $5, updated_at = $6
	WHERE id = $1`,
		doc.ID, doc.Code, string(doc.Status), doc.CodeRequestedAt, doc.SignedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error updating signed document %d: %w", doc.ID, err)
	}
	return nil
}

func (r *SigningRepository) ListByReservation(ctx context.Context, reservationID string) ([]signing.Document, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+signingColumns+` FROM signed_documents
		 WHERE reservation_id = $1 ORDER BY created_at DESC`, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []signing.Document
	for rows.Next() {
		doc, err := scanSigningRow(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// ExpireStaleCodes pushes code_requested documents whose code was never
// verified back to unsigned, used by the cleanup cron.
func (r *SigningRepository) ExpireStaleCodes(ctx context.Context, olderThanHours int) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `
	UPDATE signed_documents
	SET status = 'unsigned', code = '', updated_at = NOW()
	WHERE status = 'code_requested' AND code_requested_at < NOW() - ($1 || ' hours')::interval`,
		olderThanHours)
	if err != nil {
		return 0, fmt.Errorf("error expiring stale signing codes: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSigningDocument(row *sql.Row) (*signing.Document, error) {
	doc, err := scanSigningRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return doc, nil
}

func scanSigningRow(row rowScanner) (*signing.Document, error) {
	var doc signing.Document
	var payload []byte
	var status string
	var signedAt sql.NullTime
	err := row.Scan(
		&doc.ID, &doc.ReservationID, &doc.DocumentType, &payload, &doc.Phone, &doc.Code,
		&status, &doc.CodeRequestedAt, &signedAt, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.Payload = payload
	doc.Status = signing.Status(status)
	if signedAt.Valid {
		doc.SignedAt = &signedAt.Time
	}
	return &doc, nil
}
