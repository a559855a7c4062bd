package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ortizlabs/storefront-backend/api/responses"
	"github.com/ortizlabs/storefront-backend/api/validators"
	"github.com/ortizlabs/storefront-backend/internal/contact"
	"github.com/ortizlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ortizlabs/storefront-backend/pkg/errors"
	"github.com/ortizlabs/storefront-backend/pkg/logger"
)

type contactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}

type contactMessageResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type contactInboxResponse struct {
	Messages   []contactMessageResponse `json:"messages"`
	NextCursor string                   `json:"next_cursor,omitempty"`
}

func newContactMessageResponse(msg *models.ContactMessage) contactMessageResponse {
	return contactMessageResponse{
		ID:        msg.ID,
		Name:      msg.Name,
		Email:     msg.Email,
		Subject:   msg.Subject,
		Message:   msg.Message,
		CreatedAt: msg.CreatedAt,
	}
}

// SubmitContact accepts a public contact-form submission.
func SubmitContact(svc contact.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contact service unavailable"))
			return
		}

		var body contactRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		msg, err := svc.Submit(r.Context(), contact.SubmitInput{
			Name:    body.Name,
			Email:   body.Email,
			Subject: body.Subject,
			Message: body.Message,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newContactMessageResponse(msg))
	}
}

// AdminContactInbox lists inbound messages, newest first.
func AdminContactInbox(svc contact.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contact service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, next, err := svc.Inbox(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]contactMessageResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newContactMessageResponse(&rows[i]))
		}
		responses.WriteSuccess(w, contactInboxResponse{Messages: out, NextCursor: next})
	}
}
