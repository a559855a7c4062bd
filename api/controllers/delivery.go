package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ortizlabs/storefront-backend/api/middleware"
	"github.com/ortizlabs/storefront-backend/api/responses"
	"github.com/ortizlabs/storefront-backend/api/validators"
	"github.com/ortizlabs/storefront-backend/internal/orders"
	"github.com/ortizlabs/storefront-backend/pkg/db/models"
	"github.com/ortizlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/ortizlabs/storefront-backend/pkg/errors"
	"github.com/ortizlabs/storefront-backend/pkg/logger"
)

type updateDeliveryStatusRequest struct {
	Status string  `json:"status" validate:"required"`
	Notes  *string `json:"notes,omitempty"`
}

type deliveryEventResponse struct {
	ID               uuid.UUID  `json:"id"`
	OrderID          uuid.UUID  `json:"order_id"`
	DeliveryPersonID *uuid.UUID `json:"delivery_person_id,omitempty"`
	Status           string     `json:"status"`
	Notes            *string    `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func newDeliveryEventResponse(event *models.DeliveryEvent) deliveryEventResponse {
	return deliveryEventResponse{
		ID:               event.ID,
		OrderID:          event.OrderID,
		DeliveryPersonID: event.DeliveryPersonID,
		Status:           string(event.Status),
		Notes:            event.Notes,
		CreatedAt:        event.CreatedAt,
	}
}

// ListAssignedOrders returns the orders assigned to the calling courier.
func ListAssignedOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actorID, ok := middleware.ActorID(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, next, err := svc.ListAssigned(r.Context(), actorID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderListResponse(rows, next))
	}
}

// UpdateDeliveryStatus appends a delivery event and projects the order status.
// Couriers can only report on orders assigned to them.
func UpdateDeliveryStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actorID, ok := middleware.ActorID(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateDeliveryStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseDeliveryStatus(strings.TrimSpace(body.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery status"))
			return
		}

		order, err := svc.UpdateDeliveryStatus(r.Context(), actorID, orderID, orders.UpdateDeliveryInput{
			Status: status,
			Notes:  body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// CourierDeliveryHistory returns the event log for an order assigned to the
// calling courier. Orders assigned elsewhere read as not found.
func CourierDeliveryHistory(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actorID, ok := middleware.ActorID(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		events, err := svc.DeliveryHistoryFor(r.Context(), actorID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]deliveryEventResponse, 0, len(events))
		for i := range events {
			out = append(out, newDeliveryEventResponse(&events[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// DeliveryHistory returns the append-only event log for an order without
// actor scoping; admin routes only.
func DeliveryHistory(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		events, err := svc.DeliveryHistory(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]deliveryEventResponse, 0, len(events))
		for i := range events {
			out = append(out, newDeliveryEventResponse(&events[i]))
		}
		responses.WriteSuccess(w, out)
	}
}
