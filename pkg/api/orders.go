package api

import (
	"net/http"

	"inventoryflow/pkg/otel"
)

type orderRequest struct {
	ProductID int64 `json:"product_id" example:"1"`
	Quantity  int   `json:"quantity" example:"2"`
}

// createOrderHandler places an order, taking its quantity out of stock.
// @Summary Place order
// @Accept json
// @Produce json
// @Param order body orderRequest true "Order"
// @Success 200 {object} inventory.Order
// @Failure 400 {object} errorResponse "insufficient stock or product not found"
// @Failure 422 {object} errorResponse
// @Failure 503 {object} errorResponse
// @Router /orders [post]
func (h *handler) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "createOrderHandler")
	defer span.End()
	r = r.WithContext(ctx)

	var req orderRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, "place order", err)
		return
	}
	o, err := h.orders.PlaceOrder(ctx, req.ProductID, req.Quantity)
	if err != nil {
		h.writeError(w, r, "place order", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// listOrdersHandler lists orders.
// @Summary List orders
// @Produce json
// @Success 200 {array} inventory.Order
// @Router /orders [get]
func (h *handler) listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listOrdersHandler")
	defer span.End()
	r = r.WithContext(ctx)

	orders, err := h.orders.List(ctx)
	if err != nil {
		h.writeError(w, r, "list orders", err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// getOrderHandler retrieves an order by ID.
// @Summary Get order
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} inventory.Order
// @Failure 404 {object} errorResponse
// @Router /orders/{id} [get]
func (h *handler) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getOrderHandler")
	defer span.End()
	r = r.WithContext(ctx)

	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}
	o, err := h.orders.Get(ctx, id)
	if err != nil {
		h.writeError(w, r, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// deliverOrderHandler marks a pending order delivered.
// @Summary Deliver order
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} inventory.Order
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /orders/{id}/deliver [post]
func (h *handler) deliverOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "deliverOrderHandler")
	defer span.End()
	r = r.WithContext(ctx)

	id, ok := pathID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, "not found")
		return
	}
	o, err := h.orders.Deliver(ctx, id)
	if err != nil {
		h.writeError(w, r, "deliver order", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
