package contact

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"gorm.io/gorm"

	"github.com/ortizlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ortizlabs/storefront-backend/pkg/errors"
	"github.com/ortizlabs/storefront-backend/pkg/pagination"
)

// MessageRepository defines the persistence surface required by the service.
type MessageRepository interface {
	WithTx(tx *gorm.DB) MessageRepository
	Create(ctx context.Context, message *models.ContactMessage) (*models.ContactMessage, error)
	List(ctx context.Context, params pagination.Params) ([]models.ContactMessage, string, error)
}

// SubmitInput carries a contact-form submission.
type SubmitInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Service exposes contact-form operations.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.ContactMessage, error)
	Inbox(ctx context.Context, params pagination.Params) ([]models.ContactMessage, string, error)
}

type service struct {
	repo MessageRepository
}

// NewService builds a contact service backed by the provided repository.
func NewService(repo MessageRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("message repository required")
	}
	return &service{repo: repo}, nil
}

// Submit stores an inbound message after basic validation.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.ContactMessage, error) {
	name := strings.TrimSpace(input.Name)
	subject := strings.TrimSpace(input.Subject)
	body := strings.TrimSpace(input.Message)
	if name == "" || subject == "" || body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, subject, and message are required")
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid email address")
	}

	message := &models.ContactMessage{
		Name:    name,
		Email:   strings.ToLower(strings.TrimSpace(input.Email)),
		Subject: subject,
		Message: body,
	}
	created, err := s.repo.Create(ctx, message)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store contact message")
	}
	return created, nil
}

// Inbox returns stored messages for admin review.
func (s *service) Inbox(ctx context.Context, params pagination.Params) ([]models.ContactMessage, string, error) {
	rows, next, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list contact messages")
	}
	return rows, next, nil
}
