// Package api exposes products, suppliers and orders over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel/trace"

	"inventoryflow/pkg/inventory"
	"inventoryflow/pkg/logger"
)

// Orders places and tracks orders.
type Orders interface {
	PlaceOrder(ctx context.Context, productID int64, quantity int) (inventory.Order, error)
	Get(ctx context.Context, id int64) (inventory.Order, error)
	List(ctx context.Context) ([]inventory.Order, error)
	Deliver(ctx context.Context, id int64) (inventory.Order, error)
}

// StockLedger serializes every write to a product: restocks, patches and
// deletes all wait for the product's lock.
type StockLedger interface {
	Release(ctx context.Context, productID int64, quantity int) (inventory.Product, error)
	UpdateProduct(ctx context.Context, productID int64, patch inventory.ProductPatch) (inventory.Product, error)
	DeleteProduct(ctx context.Context, productID int64) error
}

// Deps are the collaborators the handlers call.
type Deps struct {
	Store  inventory.Store
	Orders Orders
	Stock  StockLedger
	Log    *logger.Logger
	Tracer trace.Tracer
}

type handler struct {
	store  inventory.Store
	orders Orders
	stock  StockLedger
	log    *logger.Logger
	tracer trace.Tracer
}

// NewRouter registers every route and its middleware.
func NewRouter(d Deps) *mux.Router {
	h := &handler{store: d.Store, orders: d.Orders, stock: d.Stock, log: d.Log, tracer: d.Tracer}
	if h.log == nil {
		h.log = logger.Nop()
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.Use(h.requestIDMiddleware, h.traceMiddleware, h.loggingMiddleware)

	r.HandleFunc("/healthz", h.healthHandler).Methods(http.MethodGet)

	products := r.PathPrefix("/products").Subrouter()
	products.HandleFunc("", h.createProductHandler).Methods(http.MethodPost)
	products.HandleFunc("", h.listProductsHandler).Methods(http.MethodGet)
	products.HandleFunc("/{id}", h.getProductHandler).Methods(http.MethodGet)
	products.HandleFunc("/{id}", h.updateProductHandler).Methods(http.MethodPatch)
	products.HandleFunc("/{id}", h.deleteProductHandler).Methods(http.MethodDelete)
	products.HandleFunc("/{id}/restock", h.restockProductHandler).Methods(http.MethodPost)

	suppliers := r.PathPrefix("/suppliers").Subrouter()
	suppliers.HandleFunc("", h.createSupplierHandler).Methods(http.MethodPost)
	suppliers.HandleFunc("", h.listSuppliersHandler).Methods(http.MethodGet)
	suppliers.HandleFunc("/{id}", h.getSupplierHandler).Methods(http.MethodGet)
	suppliers.HandleFunc("/{id}", h.updateSupplierHandler).Methods(http.MethodPatch)

	orders := r.PathPrefix("/orders").Subrouter()
	orders.HandleFunc("", h.createOrderHandler).Methods(http.MethodPost)
	orders.HandleFunc("", h.listOrdersHandler).Methods(http.MethodGet)
	orders.HandleFunc("/{id}", h.getOrderHandler).Methods(http.MethodGet)
	orders.HandleFunc("/{id}/deliver", h.deliverOrderHandler).Methods(http.MethodPost)

	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)
	return r
}

type healthResponse struct {
	Status string `json:"status"`
}

// healthHandler reports whether the store is reachable.
// @Summary Health check
// @Produce json
// @Success 200 {object} healthResponse
// @Failure 503 {object} errorResponse
// @Router /healthz [get]
func (h *handler) healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.log.Warn(r.Context(), "health check", "error", err)
		writeDetail(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
