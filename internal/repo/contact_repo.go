package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-church-backend/internal/domain"
)

func contactScope(db *gorm.DB, status string) *gorm.DB {
	q := db.Model(&domain.ContactMessage{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	return q
}

// CreateContact inserts m, assigning an ID when missing.
func CreateContact(ctx context.Context, db *gorm.DB, m *domain.ContactMessage) error {
	if m.ID == "" {
		m.ID = domain.NewID()
	}
	return db.WithContext(ctx).Create(m).Error
}

// GetContact fetches a contact message by ID or returns ErrNotFound.
func GetContact(ctx context.Context, db *gorm.DB, id string) (*domain.ContactMessage, error) {
	var m domain.ContactMessage
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// CountContacts returns the number of messages, optionally with one status.
func CountContacts(ctx context.Context, db *gorm.DB, status string) (int64, error) {
	var total int64
	err := contactScope(db.WithContext(ctx), status).Count(&total).Error
	return total, err
}

// ListContactsPage returns one page of messages, newest first.
func ListContactsPage(ctx context.Context, db *gorm.DB, status string, offset, limit int) ([]domain.ContactMessage, error) {
	var out []domain.ContactMessage
	err := contactScope(db.WithContext(ctx), status).
		Order("created_at desc, id asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// MarkContactRead flags an unread message as read at now. Already-read
// messages keep their original read time.
func MarkContactRead(ctx context.Context, db *gorm.DB, id string, now time.Time) error {
	return db.WithContext(ctx).Model(&domain.ContactMessage{}).
		Where("id = ? AND is_read = ?", id, false).
		Updates(map[string]any{
			"is_read": true,
			"read_at": now,
			"status":  gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END", domain.ContactStatusNew, domain.ContactStatusRead),
		}).Error
}

// UpdateContact applies the given column updates to one message.
func UpdateContact(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return rowsOrNotFound(db.WithContext(ctx).Model(&domain.ContactMessage{}).Where("id = ?", id).Updates(fields))
}

// DeleteContact removes a message by ID.
func DeleteContact(ctx context.Context, db *gorm.DB, id string) error {
	return rowsOrNotFound(db.WithContext(ctx).Where("id = ?", id).Delete(&domain.ContactMessage{}))
}
