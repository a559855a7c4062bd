package contact

import (
	"context"

	"gorm.io/gorm"

	"github.com/ortizlabs/storefront-backend/pkg/db/models"
	"github.com/ortizlabs/storefront-backend/pkg/pagination"
)

// Repository exposes persistence operations for contact messages.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a contact repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) MessageRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new contact message.
func (r *Repository) Create(ctx context.Context, message *models.ContactMessage) (*models.ContactMessage, error) {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// List returns a page of messages, newest first.
func (r *Repository) List(ctx context.Context, params pagination.Params) ([]models.ContactMessage, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.ContactMessage
	if err := query.Find(&rows).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}
