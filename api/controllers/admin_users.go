package controllers

import (
	"net/http"
	"strings"

	"github.com/ortizlabs/storefront-backend/api/middleware"
	"github.com/ortizlabs/storefront-backend/api/responses"
	"github.com/ortizlabs/storefront-backend/api/validators"
	"github.com/ortizlabs/storefront-backend/internal/users"
	"github.com/ortizlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/ortizlabs/storefront-backend/pkg/errors"
	"github.com/ortizlabs/storefront-backend/pkg/logger"
)

type setUserActiveRequest struct {
	Active bool `json:"active"`
}

type setUserRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type userListResponse struct {
	Users      []userResponse `json:"users"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// AdminListUsers returns accounts filtered by role.
func AdminListUsers(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		raw := strings.TrimSpace(r.URL.Query().Get("role"))
		if raw == "" {
			raw = string(enums.UserRoleCustomer)
		}
		role, err := enums.ParseUserRole(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role filter"))
			return
		}

		rows, next, err := svc.ListByRole(r.Context(), role, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]userResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newUserResponse(&rows[i]))
		}
		responses.WriteSuccess(w, userListResponse{Users: out, NextCursor: next})
	}
}

// AdminGetUser returns a single account.
func AdminGetUser(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		userID, err := pathUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.GetByID(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newUserResponse(user))
	}
}

// AdminSetUserActive blocks or unblocks an account.
func AdminSetUserActive(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		actorID, ok := middleware.ActorID(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		userID, err := pathUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setUserActiveRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetActive(r.Context(), actorID, userID, body.Active); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"active": body.Active})
	}
}

// AdminSetUserRole grants a role, e.g. promoting an account to courier.
func AdminSetUserRole(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		actorID, ok := middleware.ActorID(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		userID, err := pathUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setUserRoleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		role, err := enums.ParseUserRole(strings.TrimSpace(body.Role))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}

		if err := svc.SetRole(r.Context(), actorID, userID, role); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"role": string(role)})
	}
}
