package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-menu-platform/internal/models"
	"github.com/pribylovaa/go-menu-platform/internal/service"
	"github.com/pribylovaa/go-menu-platform/internal/transport/http/httperr"
	"github.com/pribylovaa/go-menu-platform/internal/transport/http/middleware"
)

type orderItemRequest struct {
	ArticleID uuid.UUID `json:"article_id"`
	Quantity  int       `json:"quantity"`
}

type placeOrderRequest struct {
	LocationID   uuid.UUID          `json:"location_id"`
	CustomerName string             `json:"customer_name"`
	Items        []orderItemRequest `json:"items"`
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

// PlaceOrder — публичный гостевой заказ. Цены в запросе не принимаются:
// сумма всегда считается сервером из текущих позиций меню.
func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var in placeOrderRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	items := make([]service.OrderItemInput, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, service.OrderItemInput{
			ArticleID: item.ArticleID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.Service.PlaceOrder(r.Context(), service.PlaceOrderInput{
		LocationID:   in.LocationID,
		CustomerName: in.CustomerName,
		Items:        items,
	})
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	locationID, err := pathID(r, "id")
	if err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	loc, err := h.Service.GetLocation(r.Context(), locationID)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}
	if !canManageLocation(user, loc) {
		httperr.WriteError(w, r, service.ErrPermissionDenied)
		return
	}

	orders, err := h.Service.ListOrders(r.Context(), locationID)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

func (h *Handlers) SetOrderStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	order, err := h.Service.GetOrder(r.Context(), id)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	loc, err := h.Service.GetLocation(r.Context(), order.LocationID)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}
	if !canManageLocation(user, loc) {
		httperr.WriteError(w, r, service.ErrPermissionDenied)
		return
	}

	var in orderStatusRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	order, err = h.Service.SetOrderStatus(r.Context(), id, models.OrderStatus(in.Status))
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
