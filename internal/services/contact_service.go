// Package services – ContactService
//
// ContactService accepts contact-form submissions from the public site and
// lets staff work through them. Submissions carrying an Idempotency-Key are
// recorded per (client, key) so that a retried POST returns the message
// created by the first attempt instead of storing a duplicate.
package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"gorm.io/gorm"

	"github.com/tbourn/go-church-backend/internal/domain"
	"github.com/tbourn/go-church-backend/internal/repo"
	"github.com/tbourn/go-church-backend/internal/utils"
	"github.com/tbourn/go-church-backend/internal/validation"
)

const (
	contactScope           = "contact"
	DefaultContactPageSize = 20
	DefaultIdempotencyTTL  = 24 * time.Hour
)

// ContactInput is a contact-form submission.
type ContactInput struct {
	Name    string `json:"name" form:"name" validate:"notblank,max=100"`
	Email   string `json:"email" form:"email" validate:"notblank,email"`
	Phone   string `json:"phone" form:"phone" validate:"max=20"`
	Subject string `json:"subject" form:"subject" validate:"max=200"`
	Message string `json:"message" form:"message" validate:"notblank,max=2000"`
}

// ContactPatch updates a message's workflow state.
type ContactPatch struct {
	Status *string `json:"status" form:"status" validate:"omitnil,oneof=new read replied archived"`
	Notes  *string `json:"notes" form:"notes"`
}

// ContactListParams selects a page of the inbox.
type ContactListParams struct {
	Status string
	Page   int
	Limit  int
}

// ContactService implements the contact-form use-cases.
type ContactService struct {
	DB             *gorm.DB
	IdempotencyTTL time.Duration
	Now            func() time.Time
}

// NewContactService constructs a ContactService keeping idempotency keys for
// ttl.
func NewContactService(db *gorm.DB, ttl time.Duration) *ContactService {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &ContactService{DB: db, IdempotencyTTL: ttl}
}

// Submit stores a message. When idemKey is set and a message was already
// stored for (clientID, idemKey), that message is returned with replay true.
func (s *ContactService) Submit(ctx context.Context, in ContactInput, clientID, ip, idemKey string) (msg *domain.ContactMessage, replay bool, err error) {
	ctx, span := otel.Tracer("services/ContactService").Start(ctx, "Submit",
		trace.WithAttributes(attribute.Bool("idempotency.key_present", idemKey != "")),
	)
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	in.Email = cases.Fold().String(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)
	if err := validation.Struct(&in); err != nil {
		return nil, false, invalid(err)
	}

	idemKey = strings.TrimSpace(idemKey)
	if idemKey != "" {
		if m, ok, err := s.replay(ctx, s.DB, clientID, idemKey); err != nil || ok {
			return m, ok, err
		}
	}

	m := &domain.ContactMessage{
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Subject:   in.Subject,
		Message:   in.Message,
		Status:    domain.ContactStatusNew,
		IPAddress: ip,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateContact(ctx, tx, m); err != nil {
			return err
		}
		if idemKey == "" {
			return nil
		}
		_, err := repo.CreateIdempotency(ctx, tx, clientID, contactScope, idemKey, m.ID, http.StatusCreated, s.IdempotencyTTL)
		return err
	})
	if errors.Is(err, repo.ErrDuplicate) {
		// A concurrent request with the same key committed first.
		if prev, ok, rerr := s.replay(ctx, s.DB, clientID, idemKey); rerr == nil && ok {
			return prev, true, nil
		}
	}
	if err != nil {
		return nil, false, err
	}
	return m, false, nil
}

func (s *ContactService) replay(ctx context.Context, db *gorm.DB, clientID, key string) (*domain.ContactMessage, bool, error) {
	rec, err := repo.GetIdempotency(ctx, db, clientID, contactScope, key, nowUTC(s.Now))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	m, err := repo.GetContact(ctx, db, rec.ResourceID)
	if errors.Is(err, repo.ErrNotFound) {
		// The message was deleted since; release the key.
		return nil, false, repo.DeleteIdempotency(ctx, db, clientID, contactScope, key)
	}
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}

// List returns one page of messages, newest first, optionally filtered by
// status.
func (s *ContactService) List(ctx context.Context, p ContactListParams) (PageResult[domain.ContactMessage], error) {
	ctx, span := otel.Tracer("services/ContactService").Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("status", p.Status),
			attribute.Int("page", p.Page),
			attribute.Int("limit", p.Limit),
		),
	)
	defer span.End()

	if p.Status != "" && !validStatus(p.Status) {
		return PageResult[domain.ContactMessage]{}, ErrInvalidStatus
	}
	page := utils.NewPage(p.Page, p.Limit, DefaultContactPageSize, MaxPageSize)
	total, err := repo.CountContacts(ctx, s.DB, p.Status)
	if err != nil {
		return PageResult[domain.ContactMessage]{}, err
	}
	if total == 0 {
		return newPageResult[domain.ContactMessage](nil, 0, page), nil
	}
	items, err := repo.ListContactsPage(ctx, s.DB, p.Status, page.Offset(), page.Size)
	if err != nil {
		return PageResult[domain.ContactMessage]{}, err
	}
	return newPageResult(items, total, page), nil
}

// Open returns a message and marks it read on first view.
func (s *ContactService) Open(ctx context.Context, id string) (*domain.ContactMessage, error) {
	ctx, span := otel.Tracer("services/ContactService").Start(ctx, "Open",
		trace.WithAttributes(attribute.String("contact.id", id)),
	)
	defer span.End()

	m, err := repo.GetContact(ctx, s.DB, id)
	if err != nil {
		return nil, notFound(err, ErrMessageNotFound)
	}
	if m.IsRead {
		return m, nil
	}
	if err := repo.MarkContactRead(ctx, s.DB, id, nowUTC(s.Now)); err != nil {
		return nil, err
	}
	m, err = repo.GetContact(ctx, s.DB, id)
	if err != nil {
		return nil, notFound(err, ErrMessageNotFound)
	}
	return m, nil
}

// Update changes a message's status and/or notes.
func (s *ContactService) Update(ctx context.Context, id string, patch ContactPatch) (*domain.ContactMessage, error) {
	ctx, span := otel.Tracer("services/ContactService").Start(ctx, "Update",
		trace.WithAttributes(attribute.String("contact.id", id)),
	)
	defer span.End()

	if err := validation.Struct(&patch); err != nil {
		return nil, invalid(err)
	}
	fields := map[string]any{}
	if patch.Status != nil {
		fields["status"] = *patch.Status
	}
	if patch.Notes != nil {
		fields["notes"] = strings.TrimSpace(*patch.Notes)
	}
	if len(fields) > 0 {
		fields["updated_at"] = nowUTC(s.Now)
	}
	if err := repo.UpdateContact(ctx, s.DB, id, fields); err != nil {
		return nil, notFound(err, ErrMessageNotFound)
	}
	m, err := repo.GetContact(ctx, s.DB, id)
	if err != nil {
		return nil, notFound(err, ErrMessageNotFound)
	}
	return m, nil
}

// Delete removes a message.
func (s *ContactService) Delete(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("services/ContactService").Start(ctx, "Delete",
		trace.WithAttributes(attribute.String("contact.id", id)),
	)
	defer span.End()

	return notFound(repo.DeleteContact(ctx, s.DB, id), ErrMessageNotFound)
}

func validStatus(s string) bool {
	switch s {
	case domain.ContactStatusNew, domain.ContactStatusRead, domain.ContactStatusReplied, domain.ContactStatusArchived:
		return true
	}
	return false
}
