package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ortizlabs/storefront-backend/api/middleware"
	"github.com/ortizlabs/storefront-backend/api/responses"
	"github.com/ortizlabs/storefront-backend/api/validators"
	"github.com/ortizlabs/storefront-backend/internal/orders"
	"github.com/ortizlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/ortizlabs/storefront-backend/pkg/errors"
	"github.com/ortizlabs/storefront-backend/pkg/logger"
)

// Address is optional; a blank value falls back to the address on the
// customer's profile.
type checkoutRequest struct {
	Address       string `json:"address"`
	PaymentMethod string `json:"payment_method" validate:"required"`
}

type buyNowRequest struct {
	ProductID     string `json:"product_id" validate:"required,uuid"`
	Quantity      int    `json:"quantity"`
	Address       string `json:"address"`
	PaymentMethod string `json:"payment_method" validate:"required"`
}

func (r checkoutRequest) toInput() (orders.PlaceOrderInput, error) {
	method, err := enums.ParsePaymentMethod(strings.TrimSpace(r.PaymentMethod))
	if err != nil {
		return orders.PlaceOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}
	return orders.PlaceOrderInput{Address: r.Address, PaymentMethod: method}, nil
}

// Checkout converts the caller's cart into an order.
func Checkout(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CheckoutCart(r.Context(), actorID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}

// BuyNow places a single-product order without touching the cart.
func BuyNow(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body buyNowRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := uuid.Parse(body.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}
		method, err := enums.ParsePaymentMethod(strings.TrimSpace(body.PaymentMethod))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		order, err := svc.BuyNow(r.Context(), actorID, productID, body.Quantity, orders.PlaceOrderInput{
			Address:       body.Address,
			PaymentMethod: method,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}
