package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ortizlabs/storefront-backend/api/responses"
	"github.com/ortizlabs/storefront-backend/api/validators"
	"github.com/ortizlabs/storefront-backend/internal/catalog"
	"github.com/ortizlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ortizlabs/storefront-backend/pkg/errors"
	"github.com/ortizlabs/storefront-backend/pkg/logger"
)

type categoryRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
	ImagePath   *string `json:"image_path,omitempty"`
}

type categoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	ImagePath   *string   `json:"image_path,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func newCategoryResponse(category *models.Category) categoryResponse {
	return categoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		ImagePath:   category.ImagePath,
		CreatedAt:   category.CreatedAt,
	}
}

// ListCategories returns the full category list.
func ListCategories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		rows, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]categoryResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newCategoryResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

func AdminCreateCategory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var body categoryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateCategory(r.Context(), catalog.CategoryInput{
			Name:        body.Name,
			Description: body.Description,
			ImagePath:   body.ImagePath,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCategoryResponse(created))
	}
}

func AdminUpdateCategory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := pathUUID(r, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body categoryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateCategory(r.Context(), id, catalog.CategoryInput{
			Name:        body.Name,
			Description: body.Description,
			ImagePath:   body.ImagePath,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCategoryResponse(updated))
	}
}

func AdminDeleteCategory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := pathUUID(r, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteCategory(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
